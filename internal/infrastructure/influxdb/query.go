package influxdb

import (
	"context"
	"fmt"
	"time"
)

// RequestCounts returns the number of webhook requests handled per route
// path within the given window.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - window: How far back to count (e.g., 24h)
//
// Returns:
//   - map[string]int64: Request count keyed by route path
//   - error: nil on success, otherwise the query error
func (c *Client) RequestCounts(ctx context.Context, window time.Duration) (map[string]int64, error) {
	if c == nil || !c.IsConnected() {
		return nil, ErrNotConnected
	}
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive")
	}

	flux := fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%ds)
  |> filter(fn: (r) => r._measurement == "webhook_request")
  |> filter(fn: (r) => r._field == "duration_ms")
  |> group(columns: ["path"])
  |> count()`, c.cfg.Bucket, int64(window.Seconds()))

	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer result.Close()

	counts := make(map[string]int64)
	for result.Next() {
		record := result.Record()
		path, ok := record.ValueByKey("path").(string)
		if !ok {
			continue
		}
		if v, ok := record.Value().(int64); ok {
			counts[path] += v
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, result.Err())
	}

	return counts, nil
}

// AverageDurations returns the mean handling time in milliseconds per
// route path within the given window.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - window: How far back to average (e.g., 24h)
//
// Returns:
//   - map[string]float64: Mean duration_ms keyed by route path
//   - error: nil on success, otherwise the query error
func (c *Client) AverageDurations(ctx context.Context, window time.Duration) (map[string]float64, error) {
	if c == nil || !c.IsConnected() {
		return nil, ErrNotConnected
	}
	if window <= 0 {
		return nil, fmt.Errorf("window must be positive")
	}

	flux := fmt.Sprintf(`
from(bucket: %q)
  |> range(start: -%ds)
  |> filter(fn: (r) => r._measurement == "webhook_request")
  |> filter(fn: (r) => r._field == "duration_ms")
  |> group(columns: ["path"])
  |> mean()`, c.cfg.Bucket, int64(window.Seconds()))

	result, err := c.queryAPI.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, err)
	}
	defer result.Close()

	means := make(map[string]float64)
	for result.Next() {
		record := result.Record()
		path, ok := record.ValueByKey("path").(string)
		if !ok {
			continue
		}
		if v, ok := record.Value().(float64); ok {
			means[path] = v
		}
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("%w: %w", ErrQueryFailed, result.Err())
	}

	return means, nil
}
