// Package metrics turns reconstructed step events into Prometheus metrics.
//
// # Exposition
//
// Serialize renders a job's events as a text exposition document with one gauge
// family per series. Every family's TYPE and HELP lines appear once at the top of
// the document, followed by the job samples and then the step samples in event order.
// Labels keep their declared order on every line:
//
//	github_actions_step_duration_seconds{step_name="build",step_conclusion="success",head_sha="abc",job_conclusion="success",env="ci"} 42
//
// Fixed labels (step_name, step_conclusion, head_sha, job_conclusion) win over extra
// labels of the same name.
//
// # Delivery
//
// PushGateway PUTs the document to a push gateway grouping key. Only URLs that
// contain a /job/ segment are accepted (see ValidatePushGatewayURL).
//
// # Self-instrumentation
//
// Recorder observes the reporting pass itself. Components default to NoopRecorder;
// PrometheusRecorder keeps the values in a registry that can be written to a
// node exporter textfile after the pass.
package metrics
