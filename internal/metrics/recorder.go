package metrics

import "time"

// OutcomeLabel enumerates reporting pass outcomes for counters.
type OutcomeLabel string

const (
	OutcomeReported OutcomeLabel = "reported"
	OutcomeNoJob    OutcomeLabel = "no_job"
	OutcomeFailed   OutcomeLabel = "failed"
)

// Recorder defines observability hooks for the reporting pass itself. Implementations
// may forward to Prometheus, OpenTelemetry, etc. All methods must be safe for nil receivers
// when using the NoopRecorder (allowing optional injection).
type Recorder interface {
	ObservePassDuration(d time.Duration)
	IncPassOutcome(outcome OutcomeLabel)
	SetResolveAttempts(n int)
	SetReconstruction(steps, events int)
	IncPushResult(success bool)
	IncPublishResult(target string, success bool)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObservePassDuration(time.Duration)  {}
func (NoopRecorder) IncPassOutcome(OutcomeLabel)        {}
func (NoopRecorder) SetResolveAttempts(int)             {}
func (NoopRecorder) SetReconstruction(int, int)         {}
func (NoopRecorder) IncPushResult(bool)                 {}
func (NoopRecorder) IncPublishResult(string, bool)      {}
