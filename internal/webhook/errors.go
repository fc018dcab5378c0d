package webhook

import (
	"errors"
	"fmt"
	"net/http"
)

// Lifecycle errors returned by Start and Stop. The chat control
// surface translates these into operator-facing acknowledgements.
var (
	// ErrAlreadyRunning is returned by Start when the service is up.
	ErrAlreadyRunning = errors.New("webhook service already running")

	// ErrNotRunning is returned by Stop when the service is down.
	ErrNotRunning = errors.New("webhook service not running")
)

// Error is an HTTP error raised by a webhook handler. The dispatcher
// writes Status and Message verbatim as the response; the Server
// header stays unset, matching the dispatcher's own 404/405 answers.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("webhook: %d %s", e.Status, e.Message)
}

// NewError returns an *Error with the given status and body.
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// StatusError returns an *Error whose body is the bare status line
// text, e.g. "404 Not Found".
func StatusError(status int) *Error {
	return &Error{
		Status:  status,
		Message: fmt.Sprintf("%d %s", status, http.StatusText(status)),
	}
}
