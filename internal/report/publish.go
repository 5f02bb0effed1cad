package report

import (
	"context"
	"os"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
)

// Target names used in logs and self-metrics.
const (
	TargetSummary = "job_summary"
	TargetComment = "pr_comment"
)

// Publisher delivers a finished report somewhere.
type Publisher interface {
	Target() string
	Publish(ctx context.Context, body string) error
}

// SummaryFile appends reports to the job summary file.
type SummaryFile struct {
	Path string
}

func (s SummaryFile) Target() string { return TargetSummary }

func (s SummaryFile) Publish(_ context.Context, body string) error {
	if s.Path == "" {
		return errors.ConfigRequired("GITHUB_STEP_SUMMARY")
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityWarning, "failed to open job summary").
			WithContext("path", s.Path)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(body + "\n"); err != nil {
		return errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityWarning, "failed to write job summary").
			WithContext("path", s.Path)
	}
	return nil
}

// Commenter posts a comment on a pull request.
type Commenter interface {
	CreateComment(ctx context.Context, number int, body string) error
}

// PRComment posts reports as a comment on one pull request.
type PRComment struct {
	Commenter Commenter
	Number    int
}

func (p PRComment) Target() string { return TargetComment }

func (p PRComment) Publish(ctx context.Context, body string) error {
	return p.Commenter.CreateComment(ctx, p.Number, Truncate(body, MaxCommentLength))
}
