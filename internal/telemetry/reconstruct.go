package telemetry

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"git.home.luguber.info/inful/workflow-telemetry/internal/logfields"
)

const backgroundSuffix = "(background)"

// attachPattern matches the wrapper step that joins a background step. It is anchored
// and case-sensitive so ordinary steps mentioning "Attach" are left alone.
var attachPattern = regexp.MustCompile(`^Attach "(.*)" and wait for completion$`)

// MarkerSource supplies authoritative start and end instants written out-of-band by
// background work. Implementations return an error when no usable marker exists.
type MarkerSource interface {
	StartedAt(name string) (time.Time, error)
	CompletedAt(name string) (time.Time, error)
}

// Reconstructor turns a Job snapshot into an ordered list of Events.
type Reconstructor struct {
	markers MarkerSource
	logger  *slog.Logger
}

// NewReconstructor returns a Reconstructor reading overrides from markers. A nil
// MarkerSource disables overrides; a nil logger uses slog.Default().
func NewReconstructor(markers MarkerSource, logger *slog.Logger) *Reconstructor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{markers: markers, logger: logger}
}

// IsBackground reports whether a step name denotes a detached background step.
func IsBackground(name string) bool {
	return strings.HasSuffix(strings.ToLower(strings.TrimSpace(name)), backgroundSuffix)
}

// AttachedName returns the background step name joined by an
// `Attach "<name>" and wait for completion` wrapper step.
func AttachedName(name string) (string, bool) {
	m := attachPattern.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Reconstruct returns one Event per foreground step whose start and end could be
// resolved, in foreground order. Skipped steps and steps with unresolved timing are
// dropped without error.
func (r *Reconstructor) Reconstruct(job Job) []Event {
	background := make(map[string]Step)
	foreground := make([]Step, 0, len(job.Steps))
	for _, step := range job.Steps {
		if IsBackground(step.Name) {
			if _, seen := background[step.Name]; !seen {
				background[step.Name] = step
			}
			continue
		}
		foreground = append(foreground, step)
	}

	events := make([]Event, 0, len(foreground))
	for _, step := range foreground {
		log := r.logger.With(logfields.StepName(step.Name), logfields.StepNumber(step.Number))
		log.Info("Step", logfields.StepConclusion(step.Conclusion))

		if step.Conclusion == ConclusionSkipped {
			continue
		}

		name := step.Name
		startedAt, completedAt := step.StartedAt, step.CompletedAt

		if attached, ok := AttachedName(step.Name); ok {
			name = attached
			log.Debug("Found background step", logfields.BackgroundStep(name))
			startedAt = r.backgroundStart(log, name, step, background)
			completedAt = r.backgroundEnd(log, name, step)
		}

		if startedAt == nil || completedAt == nil {
			log.Debug("Skipping step with unresolved timing")
			continue
		}

		conclusion := step.Conclusion
		if conclusion == "" {
			conclusion = ConclusionUnknown
		}
		events = append(events, Event{
			Number:     step.Number,
			Name:       name,
			Conclusion: conclusion,
			StartTime:  *startedAt,
			EndTime:    *completedAt,
		})
	}
	return events
}

// backgroundStart resolves the start of an attached background step: the start marker,
// then the paired background record, and last the wrapper's own completion.
func (r *Reconstructor) backgroundStart(log *slog.Logger, name string, wrapper Step, background map[string]Step) *time.Time {
	bg, ok := background[name+" "+backgroundSuffix]
	if !ok {
		log.Info("Unable to find starting step for background step, using the time the attach step finished",
			logfields.BackgroundStep(name))
		return wrapper.CompletedAt
	}
	if r.markers == nil {
		return bg.StartedAt
	}
	t, err := r.markers.StartedAt(name)
	if err != nil {
		log.Info("Unable to read start marker, using the time the step started in the background",
			logfields.BackgroundStep(name), logfields.Error(err))
		return bg.StartedAt
	}
	return &t
}

// backgroundEnd resolves the end of an attached background step: the completion marker,
// then the wrapper's own completion.
func (r *Reconstructor) backgroundEnd(log *slog.Logger, name string, wrapper Step) *time.Time {
	if r.markers == nil {
		return wrapper.CompletedAt
	}
	t, err := r.markers.CompletedAt(name)
	if err != nil {
		log.Info("Unable to read completion marker, using the time the attach step finished",
			logfields.BackgroundStep(name), logfields.Error(err))
		return wrapper.CompletedAt
	}
	return &t
}
