package pass

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/workflow-telemetry/internal/config"
	"git.home.luguber.info/inful/workflow-telemetry/internal/github"
	"git.home.luguber.info/inful/workflow-telemetry/internal/logfields"
	"git.home.luguber.info/inful/workflow-telemetry/internal/marker"
	"git.home.luguber.info/inful/workflow-telemetry/internal/report"
)

// FromConfig wires a Runner against the GitHub API, the marker directory and the
// configured report targets. Extra options are applied last.
func FromConfig(ctx context.Context, cfg config.Config, logger *slog.Logger, opts ...Option) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := github.NewClient(ctx, cfg.Token, cfg.Owner(), cfg.Name(),
		github.WithAPIURL(cfg.APIURL), github.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	policy := cfg.ResolvePolicy()
	logger.Debug("Resolving current job", logfields.RunID(cfg.RunID),
		logfields.Attempt(policy.Attempts()), slog.Duration("budget", policy.Budget()))
	resolver := github.NewJobResolver(client, cfg.RunID, cfg.RunnerName, policy)

	pr, err := github.ReadPullRequest(cfg.EventPath)
	if err != nil {
		logger.Warn("Ignoring unreadable event payload", logfields.Path(cfg.EventPath), logfields.Error(err))
	}

	base := []Option{
		WithLogger(logger),
		WithMarkers(marker.NewDir(cfg.MarkerDir)),
		WithCommit(commitFor(cfg, pr, logger)),
	}
	if cfg.JobSummary {
		base = append(base, WithPublishers(report.SummaryFile{Path: cfg.SummaryPath}))
	}
	if cfg.CommentOnPR && pr != nil {
		base = append(base, WithPublishers(report.PRComment{Commenter: client, Number: pr.Number}))
	} else {
		logger.Debug("Couldn't find Pull Request")
	}

	return New(cfg, resolver, append(base, opts...)...), nil
}

// commitFor prefers the pull request head, then the configured SHA, then the local
// checkout's HEAD.
func commitFor(cfg config.Config, pr *github.PullRequest, logger *slog.Logger) string {
	if pr != nil && pr.HeadSHA != "" {
		return pr.HeadSHA
	}
	if cfg.SHA != "" {
		return cfg.SHA
	}
	sha, err := config.HeadCommit(".")
	if err != nil {
		logger.Debug("No commit configured and no local checkout", logfields.Error(err))
		return ""
	}
	return sha
}
