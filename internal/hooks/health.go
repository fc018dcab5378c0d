package hooks

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ashwyne/hookbot/internal/extension"
	"github.com/ashwyne/hookbot/internal/webhook"
)

// Health registers GET /health. Reaching it at all proves the webhook
// service is up; the body adds a route count and, when the message
// store is wired, a message count that doubles as a database liveness
// check.
func Health(host extension.Host) error {
	host.Registry.Add("/health", nil, healthHandler(host))
	return nil
}

func healthHandler(host extension.Host) webhook.Handler {
	return func(_ http.ResponseWriter, r *http.Request, _ webhook.Sender) ([]byte, error) {
		var b strings.Builder
		b.WriteString("OK\n")
		fmt.Fprintf(&b, "routes: %d\n", host.Registry.Len())

		if host.Messages != nil {
			count, err := host.Messages.Count(r.Context())
			if err != nil {
				return nil, fmt.Errorf("counting logged messages: %w", err)
			}
			fmt.Fprintf(&b, "messages: %d\n", count)
		}

		return []byte(b.String()), nil
	}
}
