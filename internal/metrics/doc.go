// Package metrics provides observability hooks for the roster daemon.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks and costs nothing
// when disabled. When Prometheus is configured, the daemon swaps in a
// PrometheusRecorder registered against its own registry and serves it via
// HTTPHandler on the admin endpoint.
package metrics
