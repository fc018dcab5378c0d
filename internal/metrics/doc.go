// Package metrics turns hookbot activity into InfluxDB time series.
//
// The Recorder implements the dispatcher's Observer callback and a few
// event helpers (service starts and stops, chat traffic). Every method
// is safe on a nil Recorder, so deployments without InfluxDB wire nil
// and the hot path stays branch-free at the call sites.
//
// The stats webhook reads the recorded data back through RouteStats,
// which merges the per-route request counts and mean handling times
// returned by the Flux queries in internal/infrastructure/influxdb.
package metrics
