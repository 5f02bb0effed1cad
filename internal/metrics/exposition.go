package metrics

import (
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/workflow-telemetry/internal/telemetry"
)

const (
	labelHeadSHA        = "head_sha"
	labelJobConclusion  = "job_conclusion"
	labelStepName       = "step_name"
	labelStepConclusion = "step_conclusion"
)

const namespace = "github_actions_"

// Exported series names.
const (
	JobStartTimeSeconds              = namespace + "job_start_time_seconds"
	JobEndTimeSeconds                = namespace + "job_end_time_seconds"
	JobDurationSeconds               = namespace + "job_duration_seconds"
	JobConclusion                    = namespace + "job_conclusion"
	StepStartTimeSeconds             = namespace + "step_start_time_seconds"
	StepEndTimeSeconds               = namespace + "step_end_time_seconds"
	StepDurationSeconds              = namespace + "step_duration_seconds"
	StepDurationSinceJobStartSeconds = namespace + "step_duration_since_job_start_seconds"
	StepConclusion                   = namespace + "step_conclusion"
)

type family struct {
	name string
	help string
}

// families is the document-wide header order.
var families = []family{
	{JobStartTimeSeconds, "Start time of the job in seconds since the Unix epoch"},
	{JobEndTimeSeconds, "End time of the job in seconds since the Unix epoch"},
	{JobDurationSeconds, "Elapsed time for the job in seconds"},
	{JobConclusion, "Conclusion of the job. 1 for success, 0 for failure"},
	{StepStartTimeSeconds, "Start time of the step in seconds since the Unix epoch"},
	{StepEndTimeSeconds, "End time of the step in seconds since the Unix epoch"},
	{StepDurationSeconds, "Elapsed time for the step in seconds"},
	{StepDurationSinceJobStartSeconds, "Elapsed time from the start of the job to the end of the step in seconds"},
	{StepConclusion, "Conclusion of the step. 1 for success, 0 for failure"},
}

// JobMetadata carries the job-level facts the exposition needs.
type JobMetadata struct {
	Name    string
	HeadSHA string
}

// Serialize renders events as a Prometheus text exposition document. Job timing comes
// from the first event's start and the last event's end; jobStatus stands in for the
// job conclusion the platform has not recorded yet. Extra labels are appended to every
// sample; an extra label named like a fixed job or step label is dropped everywhere.
func Serialize(job JobMetadata, events []telemetry.Event, extra Labels, jobStatus string) string {
	lines := make([]string, 0, 3*len(families)+5*len(events)+6)
	for _, f := range families {
		lines = append(lines,
			"# TYPE "+f.name+" gauge",
			"# HELP "+f.name+" "+f.help,
			"",
		)
	}

	extra = withoutReserved(extra)
	jobLabels := merge(Labels{
		{Name: labelHeadSHA, Value: job.HeadSHA},
		{Name: labelJobConclusion, Value: jobStatus},
	}, extra)
	js := jobLabels.String()

	var jobStart time.Time
	if len(events) > 0 {
		jobStart = events[0].StartTime
		jobEnd := events[len(events)-1].EndTime
		lines = append(lines,
			sample(JobStartTimeSeconds, js, epochSeconds(jobStart)),
			sample(JobEndTimeSeconds, js, epochSeconds(jobEnd)),
			sample(JobDurationSeconds, js, jobEnd.Sub(jobStart).Seconds()),
		)
	}
	lines = append(lines, sample(JobConclusion, js, boolValue(jobStatus == telemetry.ConclusionSuccess)))

	if len(events) > 0 {
		lines = append(lines, "")
	}
	for _, e := range events {
		ss := merge(Labels{
			{Name: labelStepName, Value: e.Name},
			{Name: labelStepConclusion, Value: e.Conclusion},
		}, jobLabels).String()
		lines = append(lines,
			sample(StepStartTimeSeconds, ss, epochSeconds(e.StartTime)),
			sample(StepEndTimeSeconds, ss, epochSeconds(e.EndTime)),
			sample(StepDurationSeconds, ss, e.Duration().Seconds()),
			sample(StepDurationSinceJobStartSeconds, ss, e.EndTime.Sub(jobStart).Seconds()),
			sample(StepConclusion, ss, boolValue(e.Conclusion == telemetry.ConclusionSuccess)),
		)
	}

	return strings.Join(lines, "\n") + "\n"
}

func sample(name, labels string, v float64) string {
	return name + labels + " " + strconv.FormatFloat(v, 'f', -1, 64)
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixMilli()) / 1000
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
