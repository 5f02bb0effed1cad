package metrics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/prometheus/common/model"
)

// Label is a single name/value pair attached to a sample.
type Label struct {
	Name  string
	Value string
}

// Labels is an ordered label set. Order is preserved on every emitted line.
type Labels []Label

// Get returns the value of the named label.
func (ls Labels) Get(name string) (string, bool) {
	for _, l := range ls {
		if l.Name == name {
			return l.Value, true
		}
	}
	return "", false
}

// Validate rejects label names Prometheus cannot ingest and duplicate names.
func (ls Labels) Validate() error {
	seen := make(map[string]struct{}, len(ls))
	for _, l := range ls {
		if !model.LegacyValidation.IsValidLabelName(l.Name) {
			return fmt.Errorf("invalid label name %q", l.Name)
		}
		if strings.HasPrefix(l.Name, model.ReservedLabelPrefix) {
			return fmt.Errorf("label name %q uses the reserved prefix %q", l.Name, model.ReservedLabelPrefix)
		}
		if _, dup := seen[l.Name]; dup {
			return fmt.Errorf("duplicate label name %q", l.Name)
		}
		seen[l.Name] = struct{}{}
	}
	return nil
}

// merge appends extra to fixed, dropping extra labels whose name fixed already
// defines. Fixed labels always win.
func merge(fixed, extra Labels) Labels {
	out := make(Labels, 0, len(fixed)+len(extra))
	out = append(out, fixed...)
	for _, l := range extra {
		if _, taken := out.Get(l.Name); taken {
			continue
		}
		out = append(out, l)
	}
	return out
}

// ReservedLabelNames lists the label names the serializer sets itself.
var ReservedLabelNames = []string{labelStepName, labelStepConclusion, labelHeadSHA, labelJobConclusion}

// Collisions returns the extra label names that will be dropped because a fixed job or
// step label of the same name takes precedence.
func Collisions(extra Labels) []string {
	var out []string
	for _, l := range extra {
		if slices.Contains(ReservedLabelNames, l.Name) {
			out = append(out, l.Name)
		}
	}
	return out
}

func withoutReserved(extra Labels) Labels {
	dropped := Collisions(extra)
	if len(dropped) == 0 {
		return extra
	}
	out := make(Labels, 0, len(extra))
	for _, l := range extra {
		if !slices.Contains(dropped, l.Name) {
			out = append(out, l)
		}
	}
	return out
}

func escapeLabelValue(v string) string {
	return strings.ReplaceAll(v, `"`, `\"`)
}

func (ls Labels) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, l := range ls {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(l.Name)
		b.WriteString(`="`)
		b.WriteString(escapeLabelValue(l.Value))
		b.WriteByte('"')
	}
	b.WriteByte('}')
	return b.String()
}
