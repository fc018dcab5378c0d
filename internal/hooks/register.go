package hooks

import (
	"strings"

	"github.com/ashwyne/hookbot/internal/extension"
)

// Register adds every built-in hook to provider under the webhook
// extension group. The webhooks.enabled allow-list applies to these
// names the same way it applies to external extensions.
func Register(provider *extension.StaticProvider) {
	provider.Add(extension.Group, "announce", Announce)
	provider.Add(extension.Group, "logs", Logs)
	provider.Add(extension.Group, "health", Health)
	provider.Add(extension.Group, "stats", Stats)
}

// channelSegment converts a channel name into a route path segment by
// stripping the IRC channel sigil, so "#bots" serves under .../bots.
// Matching stays exact: the segment is fixed at registration time.
func channelSegment(channel string) string {
	s := strings.TrimLeft(channel, "#&+!")
	if s == "" {
		return "_"
	}
	return s
}
