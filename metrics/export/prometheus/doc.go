// Package prometheus provides a Prometheus collector for authcore metrics.
//
// [NewCollector] accepts an [authcore.Guard] and implements
// [prometheus.Collector] over its metrics snapshot. Counter names are prefixed
// authcore_*_total; the single histogram is authcore_verify_latency_seconds.
// [Handler] wraps the collector in a private registry for callers that only
// want an [http.Handler].
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry — callers register
//     the Collector or mount the Handler.
//   - Mutate guard state.
package prometheus
