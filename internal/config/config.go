package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	DefaultHost             = "localhost"
	DefaultPort             = 50000
	DefaultTransport        = "local"
	defaultWait             = 10 * time.Second
	defaultLogLevel         = "warn"
	defaultSampleInterval   = time.Second
	defaultSnapshotInterval = 30 * time.Second
	defaultDirPageSize      = 16

	envHost           = "METRICLS_HOST"
	envPort           = "METRICLS_PORT"
	envTransport      = "METRICLS_TRANSPORT"
	envWait           = "METRICLS_WAIT"
	envLogLevel       = "METRICLS_LOG_LEVEL"
	envSampleInterval = "METRICD_SAMPLE_INTERVAL"
	envPageSize       = "METRICD_PAGE_SIZE"
)

// Config aggregates client defaults and daemon tunables.
type Config struct {
	Host      string
	Port      uint16
	Transport string
	Wait      time.Duration
	LogLevel  string
	// MaxSets bounds the client registry; zero is unbounded.
	MaxSets int

	SampleInterval   time.Duration
	SnapshotInterval time.Duration
	DirPageSize      int
	// SnapshotPath overrides the daemon catalog snapshot location.
	SnapshotPath string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Host:             DefaultHost,
		Port:             DefaultPort,
		Transport:        DefaultTransport,
		Wait:             defaultWait,
		LogLevel:         defaultLogLevel,
		SampleInterval:   defaultSampleInterval,
		SnapshotInterval: defaultSnapshotInterval,
		DirPageSize:      defaultDirPageSize,
	}
}

// Load builds a Config from an optional JSON file path plus environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("load config %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// ResolveTransport applies the host switch: the local transport only
// reaches this machine, so any host other than localhost moves it to sock.
func ResolveTransport(host, kind string) string {
	if kind == "local" && host != DefaultHost {
		return "sock"
	}
	return kind
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(envTransport); v != "" {
		cfg.Transport = v
	}
	if v := os.Getenv(envPort); v != "" {
		if port, err := parsePort(v); err == nil {
			cfg.Port = port
		} else {
			log.Warn().Err(err).Str("var", envPort).Str("value", v).Msg("ignoring invalid environment value")
		}
	}
	if v := os.Getenv(envWait); v != "" {
		if dur, err := parseWait(v); err == nil {
			cfg.Wait = dur
		} else {
			log.Warn().Err(err).Str("var", envWait).Str("value", v).Msg("ignoring invalid environment value")
		}
	}
	if v := os.Getenv(envLogLevel); v != "" {
		if _, err := zerolog.ParseLevel(v); err == nil {
			cfg.LogLevel = v
		} else {
			log.Warn().Err(err).Str("var", envLogLevel).Str("value", v).Msg("ignoring invalid environment value")
		}
	}
	if v := os.Getenv(envSampleInterval); v != "" {
		if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
			cfg.SampleInterval = dur
		} else {
			log.Warn().Str("var", envSampleInterval).Str("value", v).Msg("ignoring invalid environment value")
		}
	}
	if v := os.Getenv(envPageSize); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DirPageSize = n
		} else {
			log.Warn().Str("var", envPageSize).Str("value", v).Msg("ignoring invalid environment value")
		}
	}
}

// parseWait accepts whole seconds, as the -w flag does, or a Go duration.
func parseWait(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, errors.New("wait must be > 0")
		}
		return time.Duration(secs) * time.Second, nil
	}
	dur, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if dur <= 0 {
		return 0, errors.New("wait must be > 0")
	}
	return dur, nil
}

func parsePort(v string) (uint16, error) {
	n, err := strconv.ParseUint(v, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("parse port: %w", err)
	}
	return uint16(n), nil
}

type fileConfig struct {
	Host             string `json:"host"`
	Port             *int   `json:"port"`
	Transport        string `json:"transport"`
	Wait             string `json:"wait"`
	LogLevel         string `json:"log_level"`
	MaxSets          *int   `json:"max_sets"`
	SampleInterval   string `json:"sample_interval"`
	SnapshotInterval string `json:"snapshot_interval"`
	DirPageSize      *int   `json:"dir_page_size"`
	SnapshotPath     string `json:"snapshot_path"`
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw fileConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.Host != "" {
		cfg.Host = raw.Host
	}
	if raw.Transport != "" {
		cfg.Transport = raw.Transport
	}
	if raw.SnapshotPath != "" {
		cfg.SnapshotPath = raw.SnapshotPath
	}
	if raw.Port != nil {
		if *raw.Port <= 0 || *raw.Port > 65535 {
			return fmt.Errorf("port %d out of range", *raw.Port)
		}
		cfg.Port = uint16(*raw.Port)
	}
	if raw.Wait != "" {
		dur, err := parseWait(raw.Wait)
		if err != nil {
			return fmt.Errorf("parse wait: %w", err)
		}
		cfg.Wait = dur
	}
	if raw.LogLevel != "" {
		if _, err := zerolog.ParseLevel(raw.LogLevel); err != nil {
			return fmt.Errorf("parse log_level: %w", err)
		}
		cfg.LogLevel = raw.LogLevel
	}
	if raw.MaxSets != nil {
		if *raw.MaxSets < 0 {
			return errors.New("max_sets must be >= 0")
		}
		cfg.MaxSets = *raw.MaxSets
	}
	if raw.DirPageSize != nil {
		if *raw.DirPageSize <= 0 {
			return errors.New("dir_page_size must be > 0")
		}
		cfg.DirPageSize = *raw.DirPageSize
	}
	if raw.SampleInterval != "" {
		dur, err := time.ParseDuration(raw.SampleInterval)
		if err != nil {
			return fmt.Errorf("parse sample_interval: %w", err)
		}
		if dur <= 0 {
			return errors.New("sample_interval must be > 0")
		}
		cfg.SampleInterval = dur
	}
	if raw.SnapshotInterval != "" {
		dur, err := time.ParseDuration(raw.SnapshotInterval)
		if err != nil {
			return fmt.Errorf("parse snapshot_interval: %w", err)
		}
		if dur <= 0 {
			return errors.New("snapshot_interval must be > 0")
		}
		cfg.SnapshotInterval = dur
	}

	return nil
}
