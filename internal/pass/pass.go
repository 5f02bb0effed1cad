// Package pass runs one reporting pass: resolve the running job, reconstruct its step
// events, push metrics, and publish the markdown report. A pass never fails the job it
// reports on; every problem is logged and the pass carries on or stops quietly.
package pass

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/workflow-telemetry/internal/config"
	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/logfields"
	"git.home.luguber.info/inful/workflow-telemetry/internal/metrics"
	"git.home.luguber.info/inful/workflow-telemetry/internal/report"
	"git.home.luguber.info/inful/workflow-telemetry/internal/telemetry"
	"git.home.luguber.info/inful/workflow-telemetry/internal/timeline"
)

// JobResolver finds the job the pass reports on.
type JobResolver interface {
	ResolveJob(ctx context.Context) (*telemetry.Job, int, error)
}

// Pusher delivers an exposition document.
type Pusher interface {
	Push(ctx context.Context, body string) (int, error)
}

// Result summarizes what a pass produced.
type Result struct {
	PassID    string
	Job       *telemetry.Job
	Events    []telemetry.Event
	Metrics   string
	Pushed    bool
	Report    string
	Published []string
}

// Runner executes reporting passes.
type Runner struct {
	cfg        config.Config
	resolver   JobResolver
	markers    telemetry.MarkerSource
	pusher     Pusher
	publishers []report.Publisher
	recorder   metrics.Recorder
	logger     *slog.Logger
	commit     string
	now        func() time.Time
}

// Option customizes a Runner.
type Option func(*Runner)

// WithMarkers sets the sidecar marker source used for background steps.
func WithMarkers(m telemetry.MarkerSource) Option { return func(r *Runner) { r.markers = m } }

// WithPusher overrides the push gateway client built from the configured URL.
func WithPusher(p Pusher) Option { return func(r *Runner) { r.pusher = p } }

// WithPublishers sets where the report goes.
func WithPublishers(p ...report.Publisher) Option {
	return func(r *Runner) { r.publishers = append(r.publishers, p...) }
}

func WithRecorder(rec metrics.Recorder) Option {
	return func(r *Runner) {
		if rec != nil {
			r.recorder = rec
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithCommit sets the commit shown in the report header.
func WithCommit(sha string) Option { return func(r *Runner) { r.commit = sha } }

// New returns a Runner for cfg.
func New(cfg config.Config, resolver JobResolver, opts ...Option) *Runner {
	r := &Runner{
		cfg:      cfg,
		resolver: resolver,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
		commit:   cfg.SHA,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes one pass. It never returns an error; the outcome is logged and recorded.
func (r *Runner) Run(ctx context.Context) (res Result) {
	res.PassID = uuid.NewString()
	log := r.logger.With(logfields.PassID(res.PassID))
	start := r.now()
	outcome := metrics.OutcomeFailed

	defer func() {
		if p := recover(); p != nil {
			log.Error("Reporting pass panicked", slog.String("panic", fmt.Sprint(p)))
			outcome = metrics.OutcomeFailed
		}
		r.recorder.IncPassOutcome(outcome)
		r.recorder.ObservePassDuration(r.now().Sub(start))
	}()

	log.Info("Finishing ...")

	job, err := r.resolve(ctx, log)
	if err != nil || job == nil {
		if err == nil {
			log.Error("Couldn't find current job, no data will be reported")
		}
		outcome = metrics.OutcomeNoJob
		return res
	}
	res.Job = job
	log = log.With(logfields.JobID(job.ID), logfields.JobName(job.Name))

	res.Events = telemetry.NewReconstructor(r.markers, log).Reconstruct(*job)
	r.recorder.SetReconstruction(len(job.Steps), len(res.Events))
	log.Info("Reconstructed step events", logfields.Events(len(res.Events)))

	res.Metrics, res.Pushed = r.pushMetrics(ctx, log, job, res.Events)

	content := ""
	if len(res.Events) > 0 {
		content = timeline.Section(job.Name, res.Events) + "\n"
	}
	res.Report = report.Build(report.Header{
		Workflow:   r.cfg.Workflow,
		JobName:    job.Name,
		JobID:      job.ID,
		Repository: r.cfg.Repository,
		ServerURL:  r.cfg.ServerURL,
		Commit:     r.commit,
	}, content)
	log.Debug("Report assembled", logfields.Commit(r.commit))

	res.Published = r.publish(ctx, log, res.Report)

	outcome = metrics.OutcomeReported
	log.Info("Finish completed", logfields.DurationMS(float64(r.now().Sub(start).Milliseconds())))
	return res
}

func (r *Runner) resolve(ctx context.Context, log *slog.Logger) (*telemetry.Job, error) {
	if r.resolver == nil {
		return nil, nil
	}
	job, attempts, err := r.resolver.ResolveJob(ctx)
	r.recorder.SetResolveAttempts(attempts)
	if err != nil {
		logError(ctx, log, "Unable to get current workflow job info", err, logfields.Attempt(attempts))
		log.Error(`Make sure the workflow has the "actions:read" permission`)
		return nil, err
	}
	if job != nil {
		log.Debug("Current job resolved", logfields.JobID(job.ID), logfields.JobStatus(job.Status), logfields.Attempt(attempts))
	}
	return job, nil
}

func (r *Runner) pushMetrics(ctx context.Context, log *slog.Logger, job *telemetry.Job, events []telemetry.Event) (string, bool) {
	ok, err := metrics.ValidatePushGatewayURL(r.cfg.PushGatewayURL)
	if err != nil {
		log.Error("Prometheus Push Gateway URL must contain the job name, "+
			"expected http(s)://<host>(:<port>)/metrics/job/<job-name>/<labelname1>/<labelvalue1>/...",
			logfields.URL(r.cfg.PushGatewayURL))
		log.Error("Skipping reporting metrics to Prometheus Push Gateway")
		return "", false
	}
	if !ok {
		return "", false
	}

	for _, name := range metrics.Collisions(r.cfg.Labels) {
		log.Warn("Extra label collides with a built-in label and is ignored", logfields.Label(name))
	}
	body := metrics.Serialize(metrics.JobMetadata{Name: job.Name, HeadSHA: job.HeadSHA}, events, r.cfg.Labels, r.cfg.JobStatus)

	pusher := r.pusher
	if pusher == nil {
		pusher = metrics.NewPushGateway(r.cfg.PushGatewayURL)
	}
	log.Info("Reporting metrics to Prometheus Push Gateway", logfields.URL(r.cfg.PushGatewayURL))
	status, err := pusher.Push(ctx, body)
	r.recorder.IncPushResult(err == nil)
	if err != nil {
		logError(ctx, log, "Unable to report metrics to Prometheus Push Gateway", err, logfields.Status(status))
		return body, false
	}
	log.Info("Reported metrics to Prometheus Push Gateway", logfields.Status(status))
	return body, true
}

func (r *Runner) publish(ctx context.Context, log *slog.Logger, body string) []string {
	var done []string
	for _, p := range r.publishers {
		err := p.Publish(ctx, body)
		r.recorder.IncPublishResult(p.Target(), err == nil)
		if err != nil {
			logError(ctx, log, "Failed to publish report", err, logfields.Target(p.Target()))
			continue
		}
		log.Info("Published report", logfields.Target(p.Target()))
		done = append(done, p.Target())
	}
	return done
}

// logError logs err at the level its severity asks for, with its context attached.
func logError(ctx context.Context, log *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	log.LogAttrs(ctx, errors.LogLevel(err), msg, append(attrs, errors.LogAttrs(err)...)...)
}
