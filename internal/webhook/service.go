package webhook

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/ashwyne/hookbot/internal/infrastructure/config"
)

// Status represents the webhook service state.
type Status string

const (
	// StatusStopped means the service is not listening.
	StatusStopped Status = "stopped"
	// StatusRunning means the service is serving requests.
	StatusRunning Status = "running"
)

// DefaultPort is used when the configuration leaves the port unset.
const DefaultPort = 8080

// ListenFunc opens the TCP listener for the service. Tests inject one
// to count binds and hand out ephemeral ports.
type ListenFunc func(addr string) (net.Listener, error)

// Deps holds the dependencies required by the webhook service.
type Deps struct {
	Config   config.WebhooksConfig
	Registry *Registry
	Chat     Sender
	Logger   Logger     // optional, defaults to no-op
	Observer Observer   // optional, per-request metrics callback
	Listen   ListenFunc // optional, defaults to net.Listen on tcp
}

// Service owns the webhook HTTP listener lifecycle.
//
// A service is created stopped. Start and Stop may be called any
// number of times in any order: starting a running service returns
// ErrAlreadyRunning, stopping a stopped one returns ErrNotRunning,
// and neither disturbs the current listener. The dispatcher is built
// once and reused across restarts, so registered routes survive a
// stop/start cycle.
type Service struct {
	cfg      config.WebhooksConfig
	registry *Registry
	chat     Sender
	logger   Logger
	observer Observer
	listen   ListenFunc

	mu        sync.Mutex
	status    Status
	root      *Root
	server    *http.Server
	startedAt time.Time
}

// New creates a webhook service from its dependencies.
func New(deps Deps) (*Service, error) {
	if deps.Registry == nil {
		return nil, fmt.Errorf("webhook service requires a route registry")
	}
	if deps.Chat == nil {
		return nil, fmt.Errorf("webhook service requires a chat client")
	}

	s := &Service{
		cfg:      deps.Config,
		registry: deps.Registry,
		chat:     deps.Chat,
		logger:   deps.Logger,
		observer: deps.Observer,
		listen:   deps.Listen,
		status:   StatusStopped,
	}
	if s.cfg.Port == 0 {
		s.cfg.Port = DefaultPort
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	if s.listen == nil {
		s.listen = func(addr string) (net.Listener, error) {
			return net.Listen("tcp", addr)
		}
	}
	return s, nil
}

// Start binds the configured port and serves webhooks in the
// background. Returns ErrAlreadyRunning if the service is up.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusRunning {
		return ErrAlreadyRunning
	}

	if s.root == nil {
		s.root = s.buildRoot()
	}

	ln, err := s.listen(fmt.Sprintf(":%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("webhook listener on port %d: %w", s.cfg.Port, err)
	}

	srv := &http.Server{
		Handler:           s.root,
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}
	s.server = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("webhook server error", "error", err)
		}
	}()

	s.status = StatusRunning
	s.startedAt = time.Now()
	s.logger.Info("webhook service started",
		"port", s.cfg.Port,
		"routes", s.registry.Len(),
	)
	return nil
}

// Stop closes the listener and any open connections. In-flight
// handlers are not waited for. Returns ErrNotRunning if the service
// is down.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRunning {
		return ErrNotRunning
	}

	if err := s.server.Close(); err != nil {
		s.logger.Warn("closing webhook server", "error", err)
	}
	s.server = nil
	s.status = StatusStopped
	s.logger.Info("webhook service stopped", "port", s.cfg.Port)
	return nil
}

// Close stops the service if it is running. Safe to call during
// shutdown regardless of state.
func (s *Service) Close() error {
	if err := s.Stop(); err != nil && !errors.Is(err, ErrNotRunning) {
		return err
	}
	return nil
}

// Status returns the current service state.
func (s *Service) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// IsRunning reports whether the service is serving requests.
func (s *Service) IsRunning() bool {
	return s.Status() == StatusRunning
}

// Port returns the port the service binds.
func (s *Service) Port() int {
	return s.cfg.Port
}

// Uptime returns how long the service has been running, or zero when
// stopped.
func (s *Service) Uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status != StatusRunning {
		return 0
	}
	return time.Since(s.startedAt)
}

// HealthCheck verifies the service is running.
func (s *Service) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("webhook health check cancelled: %w", ctx.Err())
	default:
	}
	if !s.IsRunning() {
		return ErrNotRunning
	}
	return nil
}

// buildRoot assembles the dispatcher with the service's logger,
// metrics observer, rate limit, and a fallback that logs handler
// errors before answering 500.
func (s *Service) buildRoot() *Root {
	root := NewRoot(s.registry, s.chat)
	root.SetLogger(s.logger)
	if s.observer != nil {
		root.SetObserver(s.observer)
	}
	if s.cfg.RateLimit.Enabled && s.cfg.RateLimit.RequestsPerMinute > 0 {
		perSecond := rate.Limit(float64(s.cfg.RateLimit.RequestsPerMinute) / 60.0)
		root.SetLimiter(rate.NewLimiter(perSecond, s.cfg.RateLimit.RequestsPerMinute))
	}
	root.SetFallback(func(w http.ResponseWriter, r *http.Request, err error) {
		s.logger.Error("webhook handler error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, StatusError(http.StatusInternalServerError))
	})
	return root
}
