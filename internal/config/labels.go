package config

import (
	"strings"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/metrics"
)

// ParseLabels reads the extra metric labels input. It accepts a YAML mapping, either
// block style ("team: infra") or flow style ("{team: infra, env: ci}"), and also plain
// name=value pairs separated by commas or newlines. Declaration order is preserved.
func ParseLabels(raw string) (metrics.Labels, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.Contains(raw, ":") && strings.Contains(raw, "=") {
		return parsePairs(raw)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, errors.SeverityWarning, "invalid metric labels").
			WithContext("field", "prometheus_metric_labels")
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, errors.ValidationFailed("prometheus_metric_labels", "expected a mapping of label name to value")
	}
	m := doc.Content[0]
	out := make(metrics.Labels, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		key, val := m.Content[i], m.Content[i+1]
		if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
			return nil, errors.ValidationFailed("prometheus_metric_labels", "label names and values must be scalars").
				WithContext("line", key.Line)
		}
		out = append(out, metrics.Label{Name: key.Value, Value: val.Value})
	}
	return out, out.Validate()
}

func parsePairs(raw string) (metrics.Labels, error) {
	fields := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' || r == '\n' })
	out := make(metrics.Labels, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		name, value, ok := strings.Cut(f, "=")
		if !ok {
			return nil, errors.ValidationFailed("prometheus_metric_labels", "expected name=value").
				WithContext("pair", f)
		}
		out = append(out, metrics.Label{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return out, out.Validate()
}
