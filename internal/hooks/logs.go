package hooks

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/ashwyne/hookbot/internal/extension"
	"github.com/ashwyne/hookbot/internal/msglog"
	"github.com/ashwyne/hookbot/internal/webhook"
)

// Logs registers GET /logs, listing every channel with logged
// messages, and GET /logs/<channel> per joined channel, returning its
// recent messages as plain text.
func Logs(host extension.Host) error {
	if host.Messages == nil {
		return errors.New("hooks: logs requires the message store")
	}
	if host.Channels == nil {
		return errors.New("hooks: logs requires the channel set")
	}

	host.Registry.Add("/logs", nil, channelIndex(host.Messages))
	for _, channel := range host.Channels.Channels() {
		host.Registry.Add("/logs/"+channelSegment(channel), nil, channelLog(host.Messages, channel))
	}
	return nil
}

// channelIndex lists the channels that have logged messages, one per
// line.
func channelIndex(store msglog.Store) webhook.Handler {
	return func(_ http.ResponseWriter, r *http.Request, _ webhook.Sender) ([]byte, error) {
		channels, err := store.Channels(r.Context())
		if err != nil {
			return nil, fmt.Errorf("listing logged channels: %w", err)
		}

		if len(channels) == 0 {
			return []byte("no messages logged yet\n"), nil
		}
		var b strings.Builder
		for _, channel := range channels {
			fmt.Fprintln(&b, channel)
		}
		return []byte(b.String()), nil
	}
}

// channelLog returns the recent messages for channel, oldest first so
// the body reads like a log. An optional limit query parameter caps
// the count; the store applies its own default and maximum.
func channelLog(store msglog.Store, channel string) webhook.Handler {
	return func(_ http.ResponseWriter, r *http.Request, _ webhook.Sender) ([]byte, error) {
		limit := 0
		if v := r.FormValue("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return nil, webhook.NewError(http.StatusBadRequest, "limit must be a non-negative number")
			}
			limit = n
		}

		messages, err := store.Recent(r.Context(), channel, limit)
		if err != nil {
			return nil, fmt.Errorf("reading log for %s: %w", channel, err)
		}

		var b strings.Builder
		for i := len(messages) - 1; i >= 0; i-- {
			m := messages[i]
			fmt.Fprintf(&b, "%s <%s> %s\n", m.SentAt.Format("15:04:05"), m.Nick, m.Text)
		}
		return []byte(b.String()), nil
	}
}
