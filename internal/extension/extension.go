package extension

import (
	"github.com/ashwyne/hookbot/internal/metrics"
	"github.com/ashwyne/hookbot/internal/msglog"
	"github.com/ashwyne/hookbot/internal/webhook"
)

// Group is the entry point group webhook extensions register under.
const Group = "hookbot.webhooks"

// RegisterFunc is the entry point an extension exposes. It runs once
// at load time and registers the extension's routes on the host.
type RegisterFunc func(host Host) error

// Host grants a loading extension access to the bot's facilities.
// Registry is always set; the rest depends on the deployment and may
// be nil (or, for Metrics, disabled), so extensions check what they
// need and fail their load with an error when something is missing.
type Host struct {
	// Registry receives the extension's routes.
	Registry *webhook.Registry

	// Credentials are the configured pairs for webhook.Authenticated.
	// Empty means authenticated routes are open (the gate fails open).
	Credentials []webhook.Credential

	// Channels answers membership questions about the bot's channels.
	Channels ChannelSet

	// Messages is the chat message log.
	Messages msglog.Store

	// Metrics records and reports request traffic. Nil-safe.
	Metrics *metrics.Recorder

	// Logger for load-time reporting. May be nil.
	Logger Logger
}

// ChannelSet answers which chat channels the bot is in.
type ChannelSet interface {
	// Channels returns the joined channel names.
	Channels() []string
	// InChannel reports whether the bot is in channel.
	InChannel(channel string) bool
}

// EntryPoint is one discoverable extension. Resolve is deferred so
// that enumerating never triggers extension code; only selected entry
// points get resolved.
type EntryPoint struct {
	Name    string
	Resolve func() (RegisterFunc, error)
}

// Provider enumerates the entry points registered for a group.
type Provider interface {
	Enumerate(group string) []EntryPoint
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
