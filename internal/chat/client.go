package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ashwyne/hookbot/internal/infrastructure/config"
	"github.com/ashwyne/hookbot/internal/infrastructure/mqtt"
	"github.com/ashwyne/hookbot/internal/metrics"
	"github.com/ashwyne/hookbot/internal/msglog"
)

// recordTimeout bounds the message log write for one inbound message.
const recordTimeout = 5 * time.Second

// Bus is the slice of the MQTT client the chat layer uses. Tests
// substitute an in-memory implementation.
type Bus interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Message is the payload exchanged on channel message and action
// topics, in both directions.
type Message struct {
	Channel string `json:"channel"`
	Nick    string `json:"nick"`
	Text    string `json:"text"`
}

// Command is a parsed bot command. The gateway publishes one when a
// user addresses the bot ("hookbot: webhooks stop"); the name comes
// from the topic, the rest from the payload.
type Command struct {
	Name    string   `json:"-"`
	Channel string   `json:"channel"`
	Nick    string   `json:"nick"`
	Args    []string `json:"args"`
}

// CommandHandler consumes one bot command. Returned errors are logged
// by the bus layer without acknowledgement side effects.
type CommandHandler func(cmd Command) error

// Logger is the logging interface the chat client uses.
// Compatible with logging.Logger and slog.Logger.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Deps holds the dependencies required by the chat client.
type Deps struct {
	Bus      Bus
	Config   config.ChatConfig
	QoS      byte
	Messages msglog.Store      // optional, inbound messages are logged when set
	Metrics  *metrics.Recorder // optional
	Logger   Logger            // optional, defaults to no-op
}

// Client is the bot's presence on the message bus.
//
// It publishes outbound messages and actions for the gateway to relay
// to IRC, and consumes what the gateway publishes: channel traffic,
// which it records in the message log, and bot commands, which it
// dispatches to handlers registered with OnCommand.
//
// All methods are safe for concurrent use.
type Client struct {
	bus       Bus
	nick      string
	channels  []string
	operators []string
	qos       byte
	store     msglog.Store
	metrics   *metrics.Recorder
	logger    Logger
	topics    mqtt.Topics

	mu       sync.RWMutex
	handlers map[string]CommandHandler
}

// New creates a chat client from its dependencies.
func New(deps Deps) (*Client, error) {
	if deps.Bus == nil {
		return nil, fmt.Errorf("chat client requires a message bus")
	}
	if deps.Config.Nick == "" {
		return nil, fmt.Errorf("chat client requires a nick")
	}

	c := &Client{
		bus:       deps.Bus,
		nick:      deps.Config.Nick,
		channels:  append([]string(nil), deps.Config.Channels...),
		operators: append([]string(nil), deps.Config.Operators...),
		qos:       deps.QoS,
		store:     deps.Messages,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		handlers:  make(map[string]CommandHandler),
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	return c, nil
}

// Start subscribes to inbound channel messages and bot commands.
// Call it once, after every OnCommand registration that must not miss
// early traffic.
func (c *Client) Start() error {
	if err := c.bus.Subscribe(c.topics.AllChannelMessages(), c.qos, c.handleMessage); err != nil {
		return fmt.Errorf("subscribing to channel messages: %w", err)
	}
	if err := c.bus.Subscribe(c.topics.AllCommands(), c.qos, c.handleCommand); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	c.logger.Info("chat client started", "nick", c.nick, "channels", len(c.channels))
	return nil
}

// OnCommand registers a handler for a named bot command. The name is
// matched against the command topic level, which the gateway
// lowercases; registering the same name again replaces the handler.
func (c *Client) OnCommand(name string, handler CommandHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[strings.ToLower(name)] = handler
}

// Msg publishes text to target's message topic for the gateway to
// relay. Target may be a channel or a nick.
func (c *Client) Msg(target, text string) error {
	return c.publish(c.topics.ChannelMessage(target), Message{Channel: target, Nick: c.nick, Text: text})
}

// Me publishes an action ("/me ...") to channel's action topic.
func (c *Client) Me(channel, action string) error {
	return c.publish(c.topics.ChannelAction(channel), Message{Channel: channel, Nick: c.nick, Text: action})
}

func (c *Client) publish(topic string, msg Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encoding chat message: %w", err)
	}
	if err := c.bus.Publish(topic, payload, c.qos, false); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

// Nick returns the bot's nick.
func (c *Client) Nick() string {
	return c.nick
}

// Channels returns a copy of the channels the bot sits in.
func (c *Client) Channels() []string {
	out := make([]string, len(c.channels))
	copy(out, c.channels)
	return out
}

// InChannel reports whether the bot sits in channel. Channel names
// compare case-insensitively, as IRC does.
func (c *Client) InChannel(channel string) bool {
	for _, ch := range c.channels {
		if strings.EqualFold(ch, channel) {
			return true
		}
	}
	return false
}

// IsOperator reports whether nick is configured as a bot operator.
func (c *Client) IsOperator(nick string) bool {
	for _, op := range c.operators {
		if op == nick {
			return true
		}
	}
	return false
}

// handleMessage consumes one inbound channel message: skips the bot's
// own echoes, records the rest in the message log and counts them.
func (c *Client) handleMessage(topic string, payload []byte) error {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return fmt.Errorf("decoding message on %s: %w", topic, err)
	}

	if msg.Channel == "" || msg.Text == "" {
		c.logger.Debug("ignoring incomplete chat message", "topic", topic)
		return nil
	}
	if strings.EqualFold(msg.Nick, c.nick) {
		// The gateway republishes everything said in a channel,
		// including lines the bot sent itself.
		return nil
	}

	c.metrics.MessageSeen(msg.Channel)

	if c.store == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	if _, err := c.store.Record(ctx, msg.Channel, msg.Nick, msg.Text); err != nil {
		return fmt.Errorf("recording message from %s: %w", msg.Channel, err)
	}
	return nil
}

// handleCommand consumes one inbound bot command and dispatches it to
// the registered handler, if any.
func (c *Client) handleCommand(topic string, payload []byte) error {
	name := strings.ToLower(c.topics.CommandName(topic))
	if name == "" {
		c.logger.Debug("ignoring command with unparseable topic", "topic", topic)
		return nil
	}

	var cmd Command
	if err := json.Unmarshal(payload, &cmd); err != nil {
		return fmt.Errorf("decoding command on %s: %w", topic, err)
	}
	cmd.Name = name

	c.mu.RLock()
	handler, ok := c.handlers[name]
	c.mu.RUnlock()
	if !ok {
		c.logger.Debug("no handler for command", "command", name)
		return nil
	}

	if err := handler(cmd); err != nil {
		return fmt.Errorf("handling command %q: %w", name, err)
	}
	return nil
}
