package app

import (
	"bytes"
	"context"
	"errors"
	"syscall"
	"testing"

	"metricls/internal/config"
)

func defaultConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	return cfg
}

func TestAppBrowse(t *testing.T) {
	m := catalog()
	m.missing = map[string]bool{"node1/gone": true}
	kind := useTransport(t, m)
	app := New(Options{Stderr: &bytes.Buffer{}})

	views, err := app.Browse(context.Background(), BrowseParams{Transport: kind})
	if err != nil {
		t.Fatalf("Browse returned error: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 sets, got %d", len(views))
	}
	if views[0].Name != "node1/gone" || !errors.Is(views[0].Err, syscall.ENOENT) {
		t.Fatalf("unexpected first view %+v", views[0])
	}
	load := views[1]
	if load.Name != "node1/loadavg" || load.Detail.MetricCount != 1 {
		t.Fatalf("unexpected view %+v", load)
	}
	if got := load.Metrics[0]; got.Name != "load1" || got.Type != "d" || got.Value != "0.250000" {
		t.Fatalf("unexpected metric %+v", got)
	}
}

func TestAppBrowseUnknownTransport(t *testing.T) {
	useTransport(t, catalog())
	app := New(Options{Stderr: &bytes.Buffer{}})
	if _, err := app.Browse(context.Background(), BrowseParams{Transport: "carrier-pigeon"}); err == nil {
		t.Fatal("expected transport error")
	}
}
