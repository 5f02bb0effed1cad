// Package config holds the settings of one reporting pass, bound from the GitHub
// Actions environment and action inputs.
package config

import (
	"strings"
	"time"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/metrics"
	"git.home.luguber.info/inful/workflow-telemetry/internal/retry"
)

// Config is built once by the CLI and passed by value into the reporting pass.
type Config struct {
	Token      string
	Repository string // owner/name
	RunID      int64
	RunnerName string
	Workflow   string
	SHA        string
	EventPath  string
	APIURL     string
	ServerURL  string

	SummaryPath string
	JobSummary  bool
	CommentOnPR bool

	PushGatewayURL string
	Labels         metrics.Labels
	JobStatus      string

	MarkerDir       string
	SelfMetricsFile string

	ResolveAttempts int
	ResolveInterval time.Duration
	ResolveBackoff  retry.Backoff
}

// Defaults for the job resolver.
const (
	DefaultResolveAttempts = 10
	DefaultResolveInterval = time.Second
)

// ApplyDefaults fills zero values with their defaults.
func (c *Config) ApplyDefaults() {
	if c.ResolveAttempts <= 0 {
		c.ResolveAttempts = DefaultResolveAttempts
	}
	if c.ResolveInterval <= 0 {
		c.ResolveInterval = DefaultResolveInterval
	}
	if c.ResolveBackoff == "" {
		c.ResolveBackoff = retry.BackoffFixed
	}
	if c.ServerURL == "" {
		c.ServerURL = "https://github.com"
	}
	if c.MarkerDir == "" {
		c.MarkerDir = "/tmp"
	}
}

// Owner returns the repository owner.
func (c Config) Owner() string {
	owner, _, _ := strings.Cut(c.Repository, "/")
	return owner
}

// Name returns the repository name without its owner.
func (c Config) Name() string {
	_, name, _ := strings.Cut(c.Repository, "/")
	return name
}

// Validate checks the settings required to find the running job.
func (c Config) Validate() error {
	if c.Token == "" {
		return errors.ConfigRequired("GITHUB_TOKEN")
	}
	owner, name, ok := strings.Cut(c.Repository, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return errors.ValidationFailed("GITHUB_REPOSITORY", "expected owner/name").
			WithContext("value", c.Repository)
	}
	if c.RunID <= 0 {
		return errors.ConfigRequired("GITHUB_RUN_ID")
	}
	if c.RunnerName == "" {
		return errors.ConfigRequired("RUNNER_NAME")
	}
	if _, err := retry.ParseBackoff(string(c.ResolveBackoff)); err != nil {
		return err
	}
	return c.Labels.Validate()
}

// ResolvePolicy is the polling policy for finding the running job. Growing backoffs
// are capped at attempts times the interval.
func (c Config) ResolvePolicy() retry.Policy {
	return retry.NewPolicy(c.ResolveBackoff, c.ResolveInterval,
		c.ResolveInterval*time.Duration(max(c.ResolveAttempts, 1)), c.ResolveAttempts-1)
}
