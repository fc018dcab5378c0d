// Package chat connects the webhook layer to IRC through the MQTT
// message bus.
//
// A gateway process owns the IRC connection itself; this package
// talks to it over the hookbot/chat and hookbot/command topics. The
// Client implements webhook.Sender for outbound messages, records
// inbound channel traffic in the message log, and dispatches bot
// commands to registered handlers. Control implements the "webhooks"
// command for starting and stopping the service and listing routes.
package chat
