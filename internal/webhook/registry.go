package webhook

import (
	"net/http"
	"sync"
)

// defaultMethods is applied when a route is registered without any
// methods.
var defaultMethods = []string{http.MethodGet}

// Route is a registered path with its allowed methods and handler.
type Route struct {
	Path    string
	Methods []string
	Handler Handler
}

// Registry maps exact request paths to routes.
//
// Matching is plain string equality: no patterns, no normalisation,
// so "/foo" and "/foo/" are distinct routes. Registering a path again
// replaces its methods and handler but keeps its original position in
// Routes(), so listings stay stable while extensions reload.
//
// All methods are safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	routes map[string]Route
	order  []string
	logger Logger
}

// NewRegistry creates an empty route registry.
func NewRegistry() *Registry {
	return &Registry{
		routes: make(map[string]Route),
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for registry operations.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Add registers handler for path. An empty method list defaults to
// GET. The slice is copied and its order preserved, so listings show
// methods the way the route declared them.
func (r *Registry) Add(path string, methods []string, handler Handler) {
	if len(methods) == 0 {
		methods = defaultMethods
	}
	ms := make([]string, len(methods))
	copy(ms, methods)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routes[path]; !exists {
		r.order = append(r.order, path)
	}
	r.routes[path] = Route{Path: path, Methods: ms, Handler: handler}
	r.logger.Debug("route registered", "path", path, "methods", ms)
}

// Lookup returns the route registered for path, if any.
func (r *Registry) Lookup(path string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	route, ok := r.routes[path]
	return route, ok
}

// Routes returns every route in registration order. Callers must not
// modify the returned method slices.
func (r *Registry) Routes() []Route {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Route, 0, len(r.order))
	for _, path := range r.order {
		out = append(out, r.routes[path])
	}
	return out
}

// Len returns the number of registered routes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
