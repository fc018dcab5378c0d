package webhook

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// ServerHeader is the Server header value stamped on successful
// responses. Error responses never carry it.
const ServerHeader = "hookbot"

// FallbackFunc answers handler errors that are not *Error.
type FallbackFunc func(w http.ResponseWriter, r *http.Request, err error)

// Root dispatches incoming requests against a route registry.
//
// Matching runs in two steps: a path with no route is a 404, a known
// path whose route does not list the request method is a 405. Both
// bodies are the bare status line text and carry no Server header.
// A matched handler runs exactly once per request.
type Root struct {
	registry *Registry
	chat     Sender
	logger   Logger
	observer Observer
	limiter  *rate.Limiter
	fallback FallbackFunc
}

// NewRoot creates a dispatcher over registry. The chat client is
// handed to every handler. Configure the optional collaborators with
// the Set methods before serving.
func NewRoot(registry *Registry, chat Sender) *Root {
	return &Root{
		registry: registry,
		chat:     chat,
		logger:   noopLogger{},
		fallback: defaultFallback,
	}
}

// SetLogger sets the logger for request dispatch.
func (rt *Root) SetLogger(logger Logger) {
	rt.logger = logger
}

// SetObserver installs a per-request metrics callback.
func (rt *Root) SetObserver(observer Observer) {
	rt.observer = observer
}

// SetLimiter installs a global request rate limit. Requests rejected
// by the limiter are answered 429 before any route lookup.
func (rt *Root) SetLimiter(limiter *rate.Limiter) {
	rt.limiter = limiter
}

// SetFallback replaces the answer for handler errors that are not
// *Error. The default writes a bare 500.
func (rt *Root) SetFallback(fallback FallbackFunc) {
	if fallback != nil {
		rt.fallback = fallback
	}
}

func (rt *Root) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	requestID := r.Header.Get("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set("X-Request-ID", requestID)

	status := rt.dispatch(w, r)

	duration := time.Since(start)
	if rt.observer != nil {
		rt.observer.Observe(r.URL.Path, r.Method, status, duration)
	}
	rt.logger.Info("webhook request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"duration_ms", duration.Milliseconds(),
		"request_id", requestID,
	)
}

// dispatch routes one request and reports the status it answered.
func (rt *Root) dispatch(w http.ResponseWriter, r *http.Request) int {
	if rt.limiter != nil && !rt.limiter.Allow() {
		return writeError(w, StatusError(http.StatusTooManyRequests))
	}

	route, ok := rt.registry.Lookup(r.URL.Path)
	if !ok {
		return writeError(w, StatusError(http.StatusNotFound))
	}
	if !methodAllowed(route.Methods, r.Method) {
		return writeError(w, StatusError(http.StatusMethodNotAllowed))
	}

	dw := &deferredWriter{w: w}
	body, err := route.Handler(dw, r, rt.chat)
	if err != nil {
		var herr *Error
		if errors.As(err, &herr) {
			return writeError(w, herr)
		}
		rt.fallback(w, r, err)
		return http.StatusInternalServerError
	}

	w.Header().Set("Server", ServerHeader)
	return dw.commit(body)
}

// methodAllowed reports whether method appears in the route's list.
// Comparison is exact; routes list methods in canonical upper case.
func methodAllowed(methods []string, method string) bool {
	for _, m := range methods {
		if m == method {
			return true
		}
	}
	return false
}

// writeError answers with the error's status and message and reports
// the status written. The Server header is never set on this path.
func writeError(w http.ResponseWriter, e *Error) int {
	w.WriteHeader(e.Status)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	io.WriteString(w, e.Message)
	return e.Status
}

// defaultFallback answers unclassified handler errors with a bare 500.
// The service installs a logging fallback over this.
func defaultFallback(w http.ResponseWriter, _ *http.Request, _ error) {
	writeError(w, StatusError(http.StatusInternalServerError))
}

// deferredWriter buffers handler output so the dispatcher can decide
// the final status line and headers after the handler returns.
// Header() exposes the real header map, WriteHeader records without
// sending, and Write collects body bytes. Nothing reaches the client
// until commit; a handler error drops the buffer entirely.
type deferredWriter struct {
	w      http.ResponseWriter
	status int
	buf    bytes.Buffer
}

func (d *deferredWriter) Header() http.Header {
	return d.w.Header()
}

func (d *deferredWriter) WriteHeader(status int) {
	d.status = status
}

func (d *deferredWriter) Write(p []byte) (int, error) {
	return d.buf.Write(p)
}

// commit sends the recorded status (200 when unset), the buffered
// handler output, then body. Returns the status written.
func (d *deferredWriter) commit(body []byte) int {
	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	d.w.WriteHeader(status)
	if d.buf.Len() > 0 {
		d.w.Write(d.buf.Bytes()) //nolint:errcheck // Best-effort write to response
	}
	if len(body) > 0 {
		d.w.Write(body) //nolint:errcheck // Best-effort write to response
	}
	return status
}
