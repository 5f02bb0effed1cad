// Package github resolves the running job and posts pull request comments through the
// GitHub REST API.
package github

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v69/github"
	"golang.org/x/oauth2"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/logfields"
	"git.home.luguber.info/inful/workflow-telemetry/internal/retry"
	"git.home.luguber.info/inful/workflow-telemetry/internal/telemetry"
	"git.home.luguber.info/inful/workflow-telemetry/internal/version"
)

const (
	pageSize         = 100
	statusInProgress = "in_progress"
)

// Client wraps the GitHub REST API for one repository.
type Client struct {
	gh     *gh.Client
	owner  string
	repo   string
	logger *slog.Logger
}

// Option customizes a Client.
type Option func(*Client) error

// WithAPIURL points the client at a GitHub Enterprise or test API root.
func WithAPIURL(apiURL string) Option {
	return func(c *Client) error {
		if apiURL == "" {
			return nil
		}
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		u, err := url.Parse(apiURL)
		if err != nil {
			return errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "invalid GitHub API URL").
				WithContext("url", apiURL)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// WithLogger sets the logger used for resolver diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.logger = l
		}
		return nil
	}
}

// NewClient returns a token-authenticated client for owner/repo.
func NewClient(ctx context.Context, token, owner, repo string, opts ...Option) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	httpClient.Timeout = 30 * time.Second

	c := &Client{
		gh:     gh.NewClient(httpClient),
		owner:  owner,
		repo:   repo,
		logger: slog.Default(),
	}
	c.gh.UserAgent = version.UserAgent()
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// JobResolver finds the in-progress job of a workflow run executing on a runner.
type JobResolver struct {
	client     *Client
	runID      int64
	runnerName string
	policy     retry.Policy
}

// NewJobResolver returns a resolver polling with policy. The first lookup is attempt 1;
// up to policy.Retries further lookups follow, separated by policy.Delay.
func NewJobResolver(c *Client, runID int64, runnerName string, policy retry.Policy) *JobResolver {
	return &JobResolver{client: c, runID: runID, runnerName: runnerName, policy: policy}
}

// ResolveJob returns the running job, or nil with a nil error when no matching job
// appeared within the retry budget. attempts reports how many lookups were made.
func (r *JobResolver) ResolveJob(ctx context.Context) (job *telemetry.Job, attempts int, err error) {
	log := r.client.logger.With(logfields.RunID(r.runID))
	for attempt := 1; attempt <= r.policy.Attempts(); attempt++ {
		attempts = attempt
		found, err := r.client.findRunningJob(ctx, r.runID, r.runnerName)
		if err != nil {
			return nil, attempts, err
		}
		if found != nil && found.GetID() != 0 {
			j := ToJob(found)
			return &j, attempts, nil
		}
		if attempt > r.policy.Retries {
			break
		}
		log.Debug("Running job not listed yet", logfields.Attempt(attempt))
		if err := r.policy.Wait(ctx, attempt); err != nil {
			return nil, attempts, errors.Wrap(err, errors.CategoryRuntime, errors.SeverityError, "job resolution interrupted")
		}
	}
	return nil, attempts, nil
}

func (c *Client) findRunningJob(ctx context.Context, runID int64, runnerName string) (*gh.WorkflowJob, error) {
	for page := 1; ; page++ {
		jobs, _, err := c.gh.Actions.ListWorkflowJobs(ctx, c.owner, c.repo, runID, &gh.ListWorkflowJobsOptions{
			ListOptions: gh.ListOptions{Page: page, PerPage: pageSize},
		})
		if err != nil {
			return nil, errors.GitHubAPIError("list workflow jobs", err).
				WithContext("run_id", runID).
				WithContext("hint", `make sure the workflow has the "actions:read" permission`)
		}
		if jobs == nil || len(jobs.Jobs) == 0 {
			return nil, nil
		}
		for _, j := range jobs.Jobs {
			if j.GetStatus() == statusInProgress && j.GetRunnerName() == runnerName {
				return j, nil
			}
		}
		// A short page is the last one.
		if len(jobs.Jobs) < pageSize {
			return nil, nil
		}
	}
}

// CreateComment posts body as a comment on the pull request with the given number.
func (c *Client) CreateComment(ctx context.Context, number int, body string) error {
	_, _, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, number, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return errors.GitHubAPIError("create comment", err).WithContext("pull_request", number)
	}
	return nil
}
