package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	reg             *prom.Registry
	passDuration    prom.Gauge
	passOutcome     *prom.CounterVec
	resolveAttempts prom.Gauge
	steps           prom.Gauge
	events          prom.Gauge
	pushResults     *prom.CounterVec
	publishResults  *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.passDuration = prom.NewGauge(prom.GaugeOpts{
			Namespace: "workflow_telemetry",
			Name:      "pass_duration_seconds",
			Help:      "Duration of the last reporting pass",
		})
		pr.passOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "workflow_telemetry",
			Name:      "pass_outcomes_total",
			Help:      "Reporting pass outcomes",
		}, []string{"outcome"})
		pr.resolveAttempts = prom.NewGauge(prom.GaugeOpts{
			Namespace: "workflow_telemetry",
			Name:      "job_resolve_attempts",
			Help:      "Attempts needed to find the running job",
		})
		pr.steps = prom.NewGauge(prom.GaugeOpts{
			Namespace: "workflow_telemetry",
			Name:      "job_steps",
			Help:      "Steps reported by the platform for the job",
		})
		pr.events = prom.NewGauge(prom.GaugeOpts{
			Namespace: "workflow_telemetry",
			Name:      "step_events",
			Help:      "Step events reconstructed from the job",
		})
		pr.pushResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "workflow_telemetry",
			Name:      "push_results_total",
			Help:      "Push gateway deliveries by result",
		}, []string{"result"})
		pr.publishResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "workflow_telemetry",
			Name:      "publish_results_total",
			Help:      "Report publications by target and result",
		}, []string{"target", "result"})
		reg.MustRegister(pr.passDuration, pr.passOutcome, pr.resolveAttempts, pr.steps, pr.events, pr.pushResults, pr.publishResults)
	})
	return pr
}

// Gatherer exposes the registry backing the recorder.
func (p *PrometheusRecorder) Gatherer() prom.Gatherer { return p.reg }

func (p *PrometheusRecorder) ObservePassDuration(d time.Duration) {
	if p == nil || p.passDuration == nil {
		return
	}
	p.passDuration.Set(d.Seconds())
}

func (p *PrometheusRecorder) IncPassOutcome(outcome OutcomeLabel) {
	if p == nil || p.passOutcome == nil {
		return
	}
	p.passOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) SetResolveAttempts(n int) {
	if p == nil || p.resolveAttempts == nil {
		return
	}
	p.resolveAttempts.Set(float64(n))
}

func (p *PrometheusRecorder) SetReconstruction(steps, events int) {
	if p == nil || p.steps == nil {
		return
	}
	p.steps.Set(float64(steps))
	p.events.Set(float64(events))
}

func (p *PrometheusRecorder) IncPushResult(success bool) {
	if p == nil || p.pushResults == nil {
		return
	}
	p.pushResults.WithLabelValues(result(success)).Inc()
}

func (p *PrometheusRecorder) IncPublishResult(target string, success bool) {
	if p == nil || p.publishResults == nil {
		return
	}
	p.publishResults.WithLabelValues(target, result(success)).Inc()
}

// WriteTextfile writes the recorder's metrics in text format for the node exporter
// textfile collector.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	return prom.WriteToTextfile(path, p.reg)
}

func result(success bool) string {
	if success {
		return "success"
	}
	return "failed"
}
