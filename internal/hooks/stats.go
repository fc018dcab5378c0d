package hooks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ashwyne/hookbot/internal/extension"
	"github.com/ashwyne/hookbot/internal/metrics"
	"github.com/ashwyne/hookbot/internal/webhook"
)

// defaultStatsWindow is how far back the stats route looks when the
// request does not say.
const defaultStatsWindow = 24 * time.Hour

// routeStatsSource is the slice of the metrics recorder the stats
// route needs.
type routeStatsSource interface {
	RouteStats(ctx context.Context, window time.Duration) ([]metrics.RouteStats, error)
}

// Stats registers GET /stats, an authenticated summary of webhook
// traffic per route read back from the metrics backend. Deployments
// without InfluxDB answer 503.
func Stats(host extension.Host) error {
	handler := webhook.Authenticated(statsHandler(host.Metrics), host.Credentials)
	host.Registry.Add("/stats", nil, handler)
	return nil
}

func statsHandler(source routeStatsSource) webhook.Handler {
	return func(_ http.ResponseWriter, r *http.Request, _ webhook.Sender) ([]byte, error) {
		window := defaultStatsWindow
		if v := r.FormValue("window"); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil || d <= 0 {
				return nil, webhook.NewError(http.StatusBadRequest, "window must be a positive duration, e.g. 24h")
			}
			window = d
		}

		stats, err := source.RouteStats(r.Context(), window)
		if err != nil {
			if errors.Is(err, metrics.ErrDisabled) {
				return nil, webhook.NewError(http.StatusServiceUnavailable, "metrics not enabled")
			}
			return nil, fmt.Errorf("reading route stats: %w", err)
		}

		if len(stats) == 0 {
			return []byte(fmt.Sprintf("no requests recorded in the last %s\n", window)), nil
		}

		var b strings.Builder
		fmt.Fprintf(&b, "requests by route, last %s:\n", window)
		for _, s := range stats {
			fmt.Fprintf(&b, "%d %s (avg %.1fms)\n", s.Requests, s.Path, s.AvgDuration)
		}
		return []byte(b.String()), nil
	}
}
