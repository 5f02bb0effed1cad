package github

import (
	"time"

	gh "github.com/google/go-github/v69/github"

	"git.home.luguber.info/inful/workflow-telemetry/internal/telemetry"
)

// ToJob converts an API workflow job into the reconstructor's input model.
func ToJob(j *gh.WorkflowJob) telemetry.Job {
	job := telemetry.Job{
		ID:          j.GetID(),
		Name:        j.GetName(),
		HeadSHA:     j.GetHeadSHA(),
		Status:      j.GetStatus(),
		Conclusion:  j.GetConclusion(),
		StartedAt:   timestamp(j.StartedAt),
		CompletedAt: timestamp(j.CompletedAt),
		Steps:       make([]telemetry.Step, 0, len(j.Steps)),
	}
	for _, s := range j.Steps {
		if s == nil {
			continue
		}
		job.Steps = append(job.Steps, telemetry.Step{
			Number:      s.GetNumber(),
			Name:        s.GetName(),
			Status:      s.GetStatus(),
			Conclusion:  s.GetConclusion(),
			StartedAt:   timestamp(s.StartedAt),
			CompletedAt: timestamp(s.CompletedAt),
		})
	}
	return job
}

func timestamp(ts *gh.Timestamp) *time.Time {
	if ts == nil || ts.IsZero() {
		return nil
	}
	t := ts.Time
	return &t
}
