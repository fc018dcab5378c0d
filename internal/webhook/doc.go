// Package webhook implements hookbot's HTTP webhook service.
//
// This package provides:
//   - An exact-match route registry with per-route method lists
//   - A dispatcher that maps unknown paths to 404 and disallowed
//     methods to 405, and stamps the Server header on success only
//   - HTTP Basic authentication for protected routes
//   - A start/stop lifecycle driven from chat commands
//
// # Dispatch
//
// Routes are exact path strings: no patterns, no trailing-slash
// normalisation. A request is matched in two steps (path first, then
// method), runs its handler with the chat client attached, and the
// returned bytes become the response body. Handlers signal HTTP
// failures by returning *Error; any other error is a 500.
//
// # Lifecycle
//
// The service starts stopped. Start binds the configured port and
// serves in the background; Stop closes the listener and any open
// connections. The dispatcher and its registry survive restarts, so
// routes registered while the service is down are live after the
// next Start.
package webhook
