// Package telemetry reconstructs a chronologically accurate list of step events from a
// CI job snapshot, pairing "attach and wait" wrapper steps with the background steps
// they joined.
package telemetry

import "time"

// Well-known conclusion values reported by the platform for a step or job.
const (
	ConclusionSuccess   = "success"
	ConclusionFailure   = "failure"
	ConclusionSkipped   = "skipped"
	ConclusionCancelled = "cancelled"
	ConclusionUnknown   = "unknown"
)

// Step is one executed CI step as reported by the platform. StartedAt and CompletedAt
// are nil while the step has not started or finished.
type Step struct {
	Number      int64
	Name        string
	Status      string
	Conclusion  string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

// Job is a snapshot of the running CI job.
type Job struct {
	ID          int64
	Name        string
	HeadSHA     string
	Status      string
	Conclusion  string
	StartedAt   *time.Time
	CompletedAt *time.Time
	Steps       []Step
}

// Event is the resolved timing and outcome of one foreground step.
type Event struct {
	Number     int64
	Name       string
	Conclusion string
	StartTime  time.Time
	EndTime    time.Time
}

// Duration returns EndTime - StartTime. It is negative when the input reported an end
// before the start.
func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}
