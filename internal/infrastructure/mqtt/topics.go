package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the hookbot message bus.
//
// The chat gateway bridges IRC traffic onto these topics and relays
// published messages back to IRC. Channel names are sanitised into a
// single topic level; the real channel name always travels in the
// message payload, never in the topic.
const (
	// TopicPrefix is the root of all hookbot topics.
	TopicPrefix = "hookbot"

	// TopicPrefixChat is the base for per-channel chat traffic.
	TopicPrefixChat = "hookbot/chat"

	// TopicPrefixCommand is the base for bot commands parsed by the gateway.
	TopicPrefixCommand = "hookbot/command"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "hookbot/system"
)

// Topics provides builders for hookbot MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	msgTopic := topics.ChannelMessage("#bots")
//	// Returns: "hookbot/chat/bots/message"
type Topics struct{}

// =============================================================================
// Chat Topics
// =============================================================================

// ChannelMessage returns the message topic for a channel.
// Both directions share it: the gateway publishes lines seen in the
// channel, and the bot publishes lines for the gateway to relay.
//
// Example: hookbot/chat/bots/message
func (Topics) ChannelMessage(channel string) string {
	return fmt.Sprintf("%s/%s/message", TopicPrefixChat, topicSegment(channel))
}

// ChannelAction returns the action (/me) topic for a channel.
//
// Example: hookbot/chat/bots/action
func (Topics) ChannelAction(channel string) string {
	return fmt.Sprintf("%s/%s/action", TopicPrefixChat, topicSegment(channel))
}

// =============================================================================
// Command Topics
// =============================================================================

// Command returns the topic for a named bot command. The gateway
// publishes here when a user addresses the bot ("hookbot: webhooks stop").
//
// Example: hookbot/command/webhooks
func (Topics) Command(name string) string {
	return fmt.Sprintf("%s/%s", TopicPrefixCommand, topicSegment(name))
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the bot status topic used for LWT and
// graceful online/offline announcements.
//
// Example: hookbot/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// =============================================================================
// Wildcard Patterns for Subscriptions
// =============================================================================

// AllChannelMessages returns a pattern matching messages in every channel.
//
// Pattern: hookbot/chat/+/message
func (Topics) AllChannelMessages() string {
	return fmt.Sprintf("%s/+/message", TopicPrefixChat)
}

// AllChannelActions returns a pattern matching actions in every channel.
//
// Pattern: hookbot/chat/+/action
func (Topics) AllChannelActions() string {
	return fmt.Sprintf("%s/+/action", TopicPrefixChat)
}

// AllCommands returns a pattern matching every bot command.
//
// Pattern: hookbot/command/+
func (Topics) AllCommands() string {
	return fmt.Sprintf("%s/+", TopicPrefixCommand)
}

// AllTopics returns a pattern matching all hookbot topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: hookbot/#
func (Topics) AllTopics() string {
	return "hookbot/#"
}

// CommandName extracts the command name from a command topic.
// Returns an empty string if the topic is not under the command prefix.
func (Topics) CommandName(topic string) string {
	name, ok := strings.CutPrefix(topic, TopicPrefixCommand+"/")
	if !ok || strings.Contains(name, "/") {
		return ""
	}
	return name
}

// topicSegment converts a channel or command name into a single MQTT
// topic level. IRC channel sigils (#, &, +, !) are stripped, characters
// reserved by MQTT (/, +, #) are replaced, and the result is lowercased
// because IRC channel names are case-insensitive.
func topicSegment(name string) string {
	s := strings.TrimLeft(name, "#&+!")
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case '/', '+', '#', ' ':
			b.WriteRune('-')
		default:
			b.WriteRune(r)
		}
	}

	if b.Len() == 0 {
		// An empty level would split the topic; keep it addressable.
		return "_"
	}
	return b.String()
}
