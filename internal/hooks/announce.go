package hooks

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ashwyne/hookbot/internal/extension"
	"github.com/ashwyne/hookbot/internal/webhook"
)

// Announce registers one authenticated POST route per joined channel
// that relays the "message" form parameter into that channel.
//
//	curl -u user:pass -d message="deploy finished" http://bot:8080/announce/bots
func Announce(host extension.Host) error {
	if host.Channels == nil {
		return errors.New("hooks: announce requires the channel set")
	}

	for _, channel := range host.Channels.Channels() {
		path := "/announce/" + channelSegment(channel)
		handler := webhook.Authenticated(announceTo(host.Channels, channel), host.Credentials)
		host.Registry.Add(path, []string{http.MethodPost}, handler)
	}
	return nil
}

// announceTo relays the message parameter into channel. The route was
// registered while the bot was in the channel; if it has left since,
// the answer is a 404 as if the route never existed.
func announceTo(channels extension.ChannelSet, channel string) webhook.Handler {
	return func(_ http.ResponseWriter, r *http.Request, chat webhook.Sender) ([]byte, error) {
		if !channels.InChannel(channel) {
			return nil, webhook.StatusError(http.StatusNotFound)
		}

		message := r.FormValue("message")
		if message == "" {
			return nil, webhook.NewError(http.StatusBadRequest, "missing 'message' parameter")
		}

		if err := chat.Msg(channel, message); err != nil {
			return nil, fmt.Errorf("announcing to %s: %w", channel, err)
		}
		return []byte("Message Sent"), nil
	}
}
