// Package extension discovers and loads webhook extensions.
//
// An extension is a named entry point in the "hookbot.webhooks" group
// that, when resolved, yields a register function. The loader invokes
// that function once with a Host giving it access to the route
// registry and the bot's other facilities, and the extension calls
// Add for each route it serves.
//
// Discovery is behind the Provider interface so the loader can be fed
// from anywhere; the in-tree hooks register through a StaticProvider.
// The webhooks.enabled allow-list in config.yaml filters by entry
// point name BEFORE resolution: an unselected extension is never
// resolved, so whatever side effects resolution has never happen for
// disabled extensions. A nil allow-list loads everything; an empty one
// loads nothing.
package extension
