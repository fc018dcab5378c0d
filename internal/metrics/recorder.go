package metrics

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/ashwyne/hookbot/internal/infrastructure/influxdb"
)

// ErrDisabled is returned by query methods when no metrics backend is
// configured.
var ErrDisabled = errors.New("metrics: not enabled")

// Service lifecycle event names recorded to the webhook_service
// measurement.
const (
	EventStarted = "started"
	EventStopped = "stopped"
)

// Recorder records hookbot activity to InfluxDB.
//
// A nil Recorder, or one built over a nil client, drops every write
// and reports ErrDisabled from queries. Callers never need to check
// whether metrics are configured.
type Recorder struct {
	influx *influxdb.Client
}

// NewRecorder creates a recorder over an InfluxDB client. The client
// may be nil when metrics are disabled.
func NewRecorder(influx *influxdb.Client) *Recorder {
	return &Recorder{influx: influx}
}

// Enabled reports whether a metrics backend is wired.
func (r *Recorder) Enabled() bool {
	return r != nil && r.influx.IsConnected()
}

// Observe records one dispatched webhook request. It satisfies the
// dispatcher's Observer interface.
func (r *Recorder) Observe(path, method string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.influx.WriteRequestMetric(path, method, status, duration)
}

// ServiceStarted records that the webhook listener came up on port.
func (r *Recorder) ServiceStarted(port int) {
	if r == nil {
		return
	}
	r.influx.WriteServiceEvent(EventStarted, port)
}

// ServiceStopped records that the webhook listener went down on port.
func (r *Recorder) ServiceStopped(port int) {
	if r == nil {
		return
	}
	r.influx.WriteServiceEvent(EventStopped, port)
}

// MessageSeen records one chat message in channel. Only the channel
// name is recorded.
func (r *Recorder) MessageSeen(channel string) {
	if r == nil {
		return
	}
	r.influx.WriteChatMessage(channel)
}

// RouteStats is the per-route traffic summary served by the stats
// webhook.
type RouteStats struct {
	Path        string
	Requests    int64
	AvgDuration float64 // milliseconds
}

// RouteStats returns request counts and mean handling times per route
// within the window, busiest routes first. Returns ErrDisabled when no
// backend is configured.
func (r *Recorder) RouteStats(ctx context.Context, window time.Duration) ([]RouteStats, error) {
	if r == nil || r.influx == nil {
		return nil, ErrDisabled
	}

	counts, err := r.influx.RequestCounts(ctx, window)
	if err != nil {
		if errors.Is(err, influxdb.ErrNotConnected) {
			return nil, ErrDisabled
		}
		return nil, fmt.Errorf("querying request counts: %w", err)
	}

	means, err := r.influx.AverageDurations(ctx, window)
	if err != nil {
		return nil, fmt.Errorf("querying mean durations: %w", err)
	}

	return mergeRouteStats(counts, means), nil
}

// mergeRouteStats joins count and mean maps into a single sorted
// summary. Routes appearing in only one map still get an entry; order
// is busiest first, ties broken by path.
func mergeRouteStats(counts map[string]int64, means map[string]float64) []RouteStats {
	stats := make([]RouteStats, 0, len(counts))
	for path, count := range counts {
		stats = append(stats, RouteStats{
			Path:        path,
			Requests:    count,
			AvgDuration: means[path],
		})
	}
	for path, mean := range means {
		if _, ok := counts[path]; !ok {
			stats = append(stats, RouteStats{Path: path, AvgDuration: mean})
		}
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Requests != stats[j].Requests {
			return stats[i].Requests > stats[j].Requests
		}
		return stats[i].Path < stats[j].Path
	})

	return stats
}
