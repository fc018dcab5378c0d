// Package msglog stores the chat messages hookbot sees.
//
// The chat client records every inbound channel line; the logs webhook
// reads them back. Messages live in the messages table (see
// migrations/) keyed by a generated id, with an index on
// (channel, sent_at) because "recent messages for one channel" is the
// dominant query.
//
// Timestamps are stored as fixed-width RFC 3339 strings so that string
// order matches time order, which the sent_at index relies on.
package msglog
