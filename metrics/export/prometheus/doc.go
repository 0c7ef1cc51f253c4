// Package prometheus renders engine metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] wraps a [goCognito.Engine] and exposes an [http.Handler].
// Counters are named gocognito_*_total; the single histogram is
// gocognito_get_identity_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the Handler.
//   - Mutate engine state.
package prometheus
