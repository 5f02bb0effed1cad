package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyPassID         = "pass_id"
	KeyJobID          = "job_id"
	KeyJobName        = "job_name"
	KeyJobStatus      = "job_status"
	KeyRunID          = "run_id"
	KeyRepo           = "repository"
	KeyStepName       = "step_name"
	KeyStepNumber     = "step_number"
	KeyStepConclusion = "step_conclusion"
	KeyBackgroundStep = "background_step"
	KeyMarker         = "marker"
	KeyPath           = "path"
	KeyURL            = "url"
	KeyStatus         = "status_code"
	KeyAttempt        = "attempt"
	KeyEvents         = "events"
	KeyLabel          = "label"
	KeyDurationMS     = "duration_ms"
	KeyTarget         = "target"
	KeyCommit         = "commit"
	KeyError          = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func PassID(id string) slog.Attr          { return slog.String(KeyPassID, id) }
func JobID(id int64) slog.Attr            { return slog.Int64(KeyJobID, id) }
func JobName(n string) slog.Attr          { return slog.String(KeyJobName, n) }
func JobStatus(s string) slog.Attr        { return slog.String(KeyJobStatus, s) }
func RunID(id int64) slog.Attr            { return slog.Int64(KeyRunID, id) }
func Repository(r string) slog.Attr       { return slog.String(KeyRepo, r) }
func StepName(n string) slog.Attr         { return slog.String(KeyStepName, n) }
func StepNumber(n int64) slog.Attr        { return slog.Int64(KeyStepNumber, n) }
func StepConclusion(c string) slog.Attr   { return slog.String(KeyStepConclusion, c) }
func BackgroundStep(n string) slog.Attr   { return slog.String(KeyBackgroundStep, n) }
func Marker(p string) slog.Attr           { return slog.String(KeyMarker, p) }
func Path(p string) slog.Attr             { return slog.String(KeyPath, p) }
func URL(u string) slog.Attr              { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr           { return slog.Int(KeyStatus, code) }
func Attempt(n int) slog.Attr             { return slog.Int(KeyAttempt, n) }
func Events(n int) slog.Attr              { return slog.Int(KeyEvents, n) }
func Label(name string) slog.Attr         { return slog.String(KeyLabel, name) }
func DurationMS(ms float64) slog.Attr     { return slog.Float64(KeyDurationMS, ms) }
func Target(t string) slog.Attr           { return slog.String(KeyTarget, t) }
func Commit(sha string) slog.Attr         { return slog.String(KeyCommit, sha) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
