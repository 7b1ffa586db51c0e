package registry

import (
	"fmt"
	"strings"
	"unicode"

	"metricls/internal/xprt"
)

const (
	maxNameLen       = 255
	maxMetricNameLen = 64
)

// normalizeName validates a set name. Sets are conventionally named
// "<producer>/<schema>", so '/' and ':' are allowed besides the metric name
// characters.
func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("set name must not be empty")
	}
	if len(name) > maxNameLen {
		return "", fmt.Errorf("set name %q is too long (max %d characters)", name, maxNameLen)
	}
	for _, r := range name {
		if isAllowedNameRune(r) || r == '/' || r == ':' {
			continue
		}
		return "", fmt.Errorf("set name %q contains invalid character %q (allowed: letters, digits, '.', '-', '_', '/', ':')", name, r)
	}
	return name, nil
}

func normalizeSchema(schema []MetricSchema) ([]MetricSchema, error) {
	out := make([]MetricSchema, 0, len(schema))
	seen := make(strset, len(schema))
	for _, m := range schema {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			return nil, fmt.Errorf("metric name must not be empty")
		}
		if len(name) > maxMetricNameLen {
			return nil, fmt.Errorf("metric name %q is too long (max %d characters)", name, maxMetricNameLen)
		}
		for _, r := range name {
			if !isAllowedNameRune(r) {
				return nil, fmt.Errorf("metric name %q contains invalid character %q (allowed: letters, digits, '.', '-', '_')", name, r)
			}
		}
		if seen.has(name) {
			return nil, fmt.Errorf("duplicate metric %q", name)
		}
		seen.add(name)
		t, err := xprt.ParseValueType(m.Type)
		if err != nil {
			return nil, fmt.Errorf("metric %q: unknown type %q", name, m.Type)
		}
		out = append(out, MetricSchema{Name: name, Type: t.String()})
	}
	return out, nil
}

func isAllowedNameRune(r rune) bool {
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return true
	}
	switch r {
	case '-', '_', '.':
		return true
	default:
		return false
	}
}
