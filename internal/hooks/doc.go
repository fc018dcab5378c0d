// Package hooks ships hookbot's built-in webhook extensions.
//
// Each hook is a plain extension.RegisterFunc; Register adds them all
// to a StaticProvider so the loader treats built-ins exactly like
// third-party extensions, allow-list included.
//
// Built-ins:
//   - announce: POST /announce/<channel> relays a message into chat
//     (authenticated)
//   - logs: GET /logs and /logs/<channel> expose the message log
//   - health: GET /health liveness probe
//   - stats: GET /stats per-route traffic summary from the metrics
//     backend (authenticated)
package hooks
