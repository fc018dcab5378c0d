package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashwyne/hookbot/internal/metrics"
	"github.com/ashwyne/hookbot/internal/webhook"
)

// Lifecycle is the slice of the webhook service the control command
// drives.
type Lifecycle interface {
	Start() error
	Stop() error
	Port() int
}

// ControlDeps holds the dependencies required by the webhooks control
// command.
type ControlDeps struct {
	Service   Lifecycle
	Registry  *webhook.Registry
	Sender    webhook.Sender
	Operators []string
	Metrics   *metrics.Recorder // optional
	Logger    Logger            // optional, defaults to no-op
}

// Control implements the "webhooks" bot command.
//
// "webhooks start" and "webhooks stop" drive the service lifecycle
// and are restricted to operators. "webhooks routes", the default
// when no subcommand is given, whispers the route table to the asking
// user.
type Control struct {
	service   Lifecycle
	registry  *webhook.Registry
	sender    webhook.Sender
	operators []string
	metrics   *metrics.Recorder
	logger    Logger
}

// NewControl creates the webhooks control command from its
// dependencies.
func NewControl(deps ControlDeps) (*Control, error) {
	if deps.Service == nil {
		return nil, fmt.Errorf("webhooks control requires the webhook service")
	}
	if deps.Registry == nil {
		return nil, fmt.Errorf("webhooks control requires the route registry")
	}
	if deps.Sender == nil {
		return nil, fmt.Errorf("webhooks control requires a chat sender")
	}

	c := &Control{
		service:   deps.Service,
		registry:  deps.Registry,
		sender:    deps.Sender,
		operators: append([]string(nil), deps.Operators...),
		metrics:   deps.Metrics,
		logger:    deps.Logger,
	}
	if c.logger == nil {
		c.logger = noopLogger{}
	}
	return c, nil
}

// Handle dispatches one "webhooks" command. Without arguments it
// lists routes.
func (c *Control) Handle(cmd Command) error {
	sub := "routes"
	if len(cmd.Args) > 0 {
		sub = strings.ToLower(cmd.Args[0])
	}

	switch sub {
	case "start":
		return c.start(cmd)
	case "stop":
		return c.stop(cmd)
	default:
		return c.listRoutes(cmd)
	}
}

func (c *Control) start(cmd Command) error {
	if !c.isOperator(cmd.Nick) {
		return c.refuse(cmd)
	}

	err := c.service.Start()
	switch {
	case errors.Is(err, webhook.ErrAlreadyRunning):
		return c.sender.Msg(cmd.Channel, "Webhooks service already running")
	case err != nil:
		c.logger.Error("webhook service start failed", "error", err, "nick", cmd.Nick)
		return c.sender.Msg(cmd.Channel, "Webhooks service failed to start")
	}

	c.metrics.ServiceStarted(c.service.Port())
	c.logger.Info("webhook service started", "port", c.service.Port(), "nick", cmd.Nick)
	return c.sender.Msg(cmd.Channel, "Webhooks service started")
}

func (c *Control) stop(cmd Command) error {
	if !c.isOperator(cmd.Nick) {
		return c.refuse(cmd)
	}

	err := c.service.Stop()
	switch {
	case errors.Is(err, webhook.ErrNotRunning):
		return c.sender.Msg(cmd.Channel, "Webhooks service not running")
	case err != nil:
		c.logger.Error("webhook service stop failed", "error", err, "nick", cmd.Nick)
		return c.sender.Msg(cmd.Channel, "Webhooks service failed to stop")
	}

	c.metrics.ServiceStopped(c.service.Port())
	c.logger.Info("webhook service stopped", "nick", cmd.Nick)
	return c.sender.Msg(cmd.Channel, "Webhooks service stopped")
}

// listRoutes whispers the route table to the asking user, announcing
// the whisper in the channel first.
func (c *Control) listRoutes(cmd Command) error {
	if err := c.sender.Me(cmd.Channel, "whispers to "+cmd.Nick); err != nil {
		return err
	}
	if err := c.sender.Msg(cmd.Nick, fmt.Sprintf("%s, here are the routes I know about", cmd.Nick)); err != nil {
		return err
	}
	for _, route := range c.registry.Routes() {
		line := fmt.Sprintf("[%s] %s", strings.Join(route.Methods, ","), route.Path)
		if err := c.sender.Msg(cmd.Nick, line); err != nil {
			return err
		}
	}
	return nil
}

func (c *Control) refuse(cmd Command) error {
	return c.sender.Msg(cmd.Channel, fmt.Sprintf("Sorry %s, Only an operator can do that", cmd.Nick))
}

func (c *Control) isOperator(nick string) bool {
	for _, op := range c.operators {
		if op == nick {
			return true
		}
	}
	return false
}
