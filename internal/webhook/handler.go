package webhook

import (
	"net/http"
	"time"
)

// Handler processes a matched webhook request.
//
// The returned bytes become the response body on a nil error. A
// returned *Error controls the status and body instead; any other
// error reaches the dispatcher's fallback and is answered with a 500.
//
// Handlers may call w.WriteHeader to pick a non-200 success status
// and may write body bytes directly. Output is held back until the
// handler returns, so the status line and Server header are decided
// by the dispatcher, not by the first write.
type Handler func(w http.ResponseWriter, r *http.Request, chat Sender) ([]byte, error)

// Sender is the chat surface exposed to webhook handlers. The
// MQTT-backed chat client implements it; tests use recorders.
type Sender interface {
	// Msg sends text to a channel or nick.
	Msg(target, text string) error
	// Me sends an action ("/me ...") to a channel.
	Me(channel, action string) error
}

// Observer receives one callback per dispatched request, after the
// response is written. It feeds request metrics without coupling the
// dispatcher to a metrics backend.
type Observer interface {
	Observe(path, method string, status int, duration time.Duration)
}

// Logger defines the logging interface used by this package.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
