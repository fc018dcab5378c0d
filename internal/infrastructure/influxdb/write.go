package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteRequestMetric records a single handled webhook request.
//
// This is the primary method for recording webhook traffic.
// The write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - path: Registered route path (e.g., "/announce/bots")
//   - method: HTTP method of the request
//   - status: HTTP status code written to the response
//   - duration: Time spent handling the request
//
// Example:
//
//	client.WriteRequestMetric("/announce/bots", "POST", 200, 3*time.Millisecond)
func (c *Client) WriteRequestMetric(path string, method string, status int, duration time.Duration) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"webhook_request",
		map[string]string{
			"path":   path,
			"method": method,
			"status": strconv.Itoa(status),
		},
		map[string]interface{}{
			"duration_ms": float64(duration) / float64(time.Millisecond),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteServiceEvent records a webhook service lifecycle event.
//
// Used for tracking starts and stops of the listener, whether from
// chat commands or daemon startup.
//
// Parameters:
//   - event: Event name (e.g., "started", "stopped")
//   - port: Listener port the event applies to
func (c *Client) WriteServiceEvent(event string, port int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"webhook_service",
		map[string]string{
			"event": event,
		},
		map[string]interface{}{
			"port": port,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteChatMessage records that a chat message was seen in a channel.
//
// Used for channel activity stats. Only the channel name is recorded,
// never the message text or nick.
//
// Parameters:
//   - channel: Channel the message was seen in (e.g., "#bots")
func (c *Client) WriteChatMessage(channel string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"chat_message",
		map[string]string{
			"channel": channel,
		},
		map[string]interface{}{
			"count": 1,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("bot_stats",
//	    map[string]string{"host": "bot-01"},
//	    map[string]interface{}{"channels": 4, "routes": 12})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
