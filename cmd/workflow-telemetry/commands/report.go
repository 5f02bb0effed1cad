package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/workflow-telemetry/internal/config"
	"git.home.luguber.info/inful/workflow-telemetry/internal/logfields"
	"git.home.luguber.info/inful/workflow-telemetry/internal/metrics"
	"git.home.luguber.info/inful/workflow-telemetry/internal/pass"
	"git.home.luguber.info/inful/workflow-telemetry/internal/retry"
)

// ReportCmd implements the 'report' command. Its inputs come from the runner
// environment; telemetry failures are logged and never change the exit status.
type ReportCmd struct {
	Token      string `env:"INPUT_GITHUB_TOKEN,GITHUB_TOKEN" help:"Token used to read job details and comment on pull requests"`
	Repository string `env:"GITHUB_REPOSITORY" help:"Repository as owner/name"`
	RunID      int64  `name:"run-id" env:"GITHUB_RUN_ID" help:"Workflow run id"`
	RunnerName string `env:"RUNNER_NAME" help:"Name of the runner executing the job"`
	Workflow   string `env:"GITHUB_WORKFLOW" help:"Workflow name shown in the report title"`
	SHA        string `name:"sha" env:"GITHUB_SHA" help:"Commit the run was triggered for"`
	EventPath  string `env:"GITHUB_EVENT_PATH" help:"Path of the webhook event payload" type:"path"`
	APIURL     string `name:"api-url" env:"GITHUB_API_URL" help:"GitHub REST API root"`
	ServerURL  string `name:"server-url" env:"GITHUB_SERVER_URL" default:"https://github.com" help:"GitHub web root used for links"`

	SummaryPath string `name:"summary-path" env:"GITHUB_STEP_SUMMARY" help:"Job summary file"`
	JobSummary  string `env:"INPUT_JOB_SUMMARY" default:"true" help:"Append the report to the job summary (true|false)"`
	CommentOnPR string `name:"comment-on-pr" env:"INPUT_COMMENT_ON_PR" default:"true" help:"Comment the report on the pull request (true|false)"`

	PushGatewayURL string `name:"push-gateway-url" env:"INPUT_PROMETHEUS_PUSH_GATEWAY_URL" help:"Push gateway URL containing /job/<name>"`
	MetricLabels   string `name:"metric-labels" env:"INPUT_PROMETHEUS_METRIC_LABELS" help:"Extra metric labels as a YAML mapping or name=value pairs"`
	JobStatus      string `name:"job-status" env:"INPUT_JOB_STATUS" help:"Job status to report as job_conclusion"`

	MarkerDir       string        `name:"marker-dir" env:"INPUT_MARKER_DIR" default:"/tmp" help:"Directory holding background step markers"`
	SelfMetricsFile string        `name:"self-metrics-file" help:"Write the reporter's own metrics to this node-exporter textfile"`
	Attempts        int           `default:"10" help:"Job lookups before giving up"`
	Interval        time.Duration `default:"1s" help:"Wait between job lookups"`
	Backoff         string        `default:"fixed" env:"INPUT_JOB_LOOKUP_BACKOFF" help:"Growth of the wait between job lookups (fixed, linear, exponential)"`
	Timeout         time.Duration `default:"5m" help:"Upper bound for the whole pass"`
	Print           bool          `help:"Also print the report to stdout"`

	stdout io.Writer
}

// Config builds the pass configuration from the parsed flags.
func (cmd *ReportCmd) Config() (config.Config, error) {
	labels, err := config.ParseLabels(cmd.MetricLabels)
	cfg := config.Config{
		Token:           cmd.Token,
		Repository:      cmd.Repository,
		RunID:           cmd.RunID,
		RunnerName:      cmd.RunnerName,
		Workflow:        cmd.Workflow,
		SHA:             cmd.SHA,
		EventPath:       cmd.EventPath,
		APIURL:          cmd.APIURL,
		ServerURL:       cmd.ServerURL,
		SummaryPath:     cmd.SummaryPath,
		JobSummary:      cmd.JobSummary == "true",
		CommentOnPR:     cmd.CommentOnPR == "true",
		PushGatewayURL:  cmd.PushGatewayURL,
		Labels:          labels,
		JobStatus:       cmd.JobStatus,
		MarkerDir:       cmd.MarkerDir,
		SelfMetricsFile: cmd.SelfMetricsFile,
		ResolveAttempts: cmd.Attempts,
		ResolveInterval: cmd.Interval,
		ResolveBackoff:  retry.Backoff(cmd.Backoff),
	}
	return cfg, err
}

// Run executes the report command.
func (cmd *ReportCmd) Run(g *Global, _ *CLI) error {
	logger := g.Logger

	cfg, err := cmd.Config()
	if err != nil {
		logger.Error("Ignoring invalid metric labels", logfields.Error(err))
		cfg.Labels = nil
	}

	var recorder metrics.Recorder = metrics.NoopRecorder{}
	var promRecorder *metrics.PrometheusRecorder
	if cfg.SelfMetricsFile != "" {
		promRecorder = metrics.NewPrometheusRecorder(prom.NewRegistry())
		recorder = promRecorder
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}

	runner, err := pass.FromConfig(ctx, cfg, logger, pass.WithRecorder(recorder))
	if err != nil {
		logger.Error("Couldn't start reporting pass, no data will be reported", logfields.Error(err))
		recorder.IncPassOutcome(metrics.OutcomeFailed)
		cmd.writeSelfMetrics(g, promRecorder, cfg.SelfMetricsFile)
		return nil
	}

	res := runner.Run(ctx)
	if cmd.Print && res.Report != "" {
		out := cmd.stdout
		if out == nil {
			out = os.Stdout
		}
		_, _ = fmt.Fprintln(out, res.Report)
	}
	cmd.writeSelfMetrics(g, promRecorder, cfg.SelfMetricsFile)
	return nil
}

func (cmd *ReportCmd) writeSelfMetrics(g *Global, rec *metrics.PrometheusRecorder, path string) {
	if rec == nil {
		return
	}
	if err := rec.WriteTextfile(path); err != nil {
		g.Logger.Warn("Failed to write self metrics", logfields.Path(path), logfields.Error(err))
	}
}
