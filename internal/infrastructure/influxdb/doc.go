// Package influxdb provides InfluxDB connectivity for hookbot.
//
// It wraps the official influxdb-client-go v2 library with hookbot-specific
// patterns for connection management, metric writing, Flux queries, and
// health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Webhook request metrics (path, method, status, duration)
//   - Webhook service lifecycle events (starts, stops)
//   - Channel activity counts
//
// The stats webhook reads the same data back via Flux queries.
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "hookbot",
//	    Bucket: "metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record a handled request
//	client.WriteRequestMetric("/announce/bots", "POST", 200, 3*time.Millisecond)
//
//	// Read back per-route counts for the stats webhook
//	counts, err := client.RequestCounts(ctx, 24*time.Hour)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection, query, and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This keeps the webhook hot path free of blocking metric writes.
package influxdb
