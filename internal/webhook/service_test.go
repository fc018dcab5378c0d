package webhook

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/ashwyne/hookbot/internal/infrastructure/config"
)

// listenRecorder opens ephemeral loopback listeners and counts binds,
// so tests never fight over a fixed port.
type listenRecorder struct {
	mu    sync.Mutex
	binds int
	addrs []string
}

func (l *listenRecorder) listen(_ string) (net.Listener, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.binds++
	l.addrs = append(l.addrs, ln.Addr().String())
	l.mu.Unlock()
	return ln, nil
}

func (l *listenRecorder) bindCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.binds
}

func (l *listenRecorder) lastAddr() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.addrs) == 0 {
		return ""
	}
	return l.addrs[len(l.addrs)-1]
}

func testWebhooksConfig() config.WebhooksConfig {
	return config.WebhooksConfig{
		Port: 8080,
		Timeouts: config.WebhookTimeoutConfig{
			Read:  5,
			Write: 5,
			Idle:  5,
		},
	}
}

func newTestService(t *testing.T, cfg config.WebhooksConfig) (*Service, *Registry, *listenRecorder) {
	t.Helper()

	registry := NewRegistry()
	rec := &listenRecorder{}
	svc, err := New(Deps{
		Config:   cfg,
		Registry: registry,
		Chat:     &mockSender{},
		Listen:   rec.listen,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { svc.Close() }) //nolint:errcheck // Test cleanup

	return svc, registry, rec
}

// get fetches a path from the running service and returns the
// response with its body read.
func get(t *testing.T, addr, path string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get("http://" + addr + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // Test cleanup

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	return resp, string(body)
}

// ─── Construction ───────────────────────────────────────────────────

func TestService_New_RequiresRegistry(t *testing.T) {
	_, err := New(Deps{Chat: &mockSender{}})
	if err == nil {
		t.Error("New() without registry succeeded, want error")
	}
}

func TestService_New_RequiresChat(t *testing.T) {
	_, err := New(Deps{Registry: NewRegistry()})
	if err == nil {
		t.Error("New() without chat client succeeded, want error")
	}
}

func TestService_New_DefaultPort(t *testing.T) {
	svc, err := New(Deps{
		Config:   config.WebhooksConfig{},
		Registry: NewRegistry(),
		Chat:     &mockSender{},
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if got := svc.Port(); got != DefaultPort {
		t.Errorf("Port() = %d, want %d", got, DefaultPort)
	}
}

// ─── Lifecycle ──────────────────────────────────────────────────────

func TestService_StartStop(t *testing.T) {
	svc, _, _ := newTestService(t, testWebhooksConfig())

	if svc.Status() != StatusStopped {
		t.Fatalf("initial status = %v, want stopped", svc.Status())
	}
	if svc.IsRunning() {
		t.Fatal("IsRunning() = true before Start")
	}

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if svc.Status() != StatusRunning {
		t.Errorf("status after Start = %v, want running", svc.Status())
	}
	if !svc.IsRunning() {
		t.Error("IsRunning() = false after Start")
	}

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if svc.Status() != StatusStopped {
		t.Errorf("status after Stop = %v, want stopped", svc.Status())
	}
}

func TestService_StartTwice(t *testing.T) {
	svc, _, rec := newTestService(t, testWebhooksConfig())

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	err := svc.Start()
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() = %v, want ErrAlreadyRunning", err)
	}
	if got := rec.bindCount(); got != 1 {
		t.Errorf("bind count = %d, want 1", got)
	}
}

func TestService_StopWhenStopped(t *testing.T) {
	svc, _, _ := newTestService(t, testWebhooksConfig())

	if err := svc.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("Stop() on stopped service = %v, want ErrNotRunning", err)
	}
}

func TestService_DoubleStop(t *testing.T) {
	svc, _, _ := newTestService(t, testWebhooksConfig())

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := svc.Stop(); !errors.Is(err, ErrNotRunning) {
		t.Errorf("second Stop() = %v, want ErrNotRunning", err)
	}
}

func TestService_CloseWhenStopped(t *testing.T) {
	svc, _, _ := newTestService(t, testWebhooksConfig())

	if err := svc.Close(); err != nil {
		t.Errorf("Close() on stopped service = %v, want nil", err)
	}
}

func TestService_Uptime(t *testing.T) {
	svc, _, _ := newTestService(t, testWebhooksConfig())

	if got := svc.Uptime(); got != 0 {
		t.Errorf("Uptime() while stopped = %v, want 0", got)
	}

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	if got := svc.Uptime(); got <= 0 {
		t.Errorf("Uptime() while running = %v, want > 0", got)
	}
}

// ─── Serving ────────────────────────────────────────────────────────

func TestService_ServesRegisteredRoutes(t *testing.T) {
	svc, registry, rec := newTestService(t, testWebhooksConfig())
	registry.Add("/ping", []string{"GET"}, namedHandler("pong"))

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	resp, body := get(t, rec.lastAddr(), "/ping")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if body != "pong" {
		t.Errorf("body = %q, want pong", body)
	}
	if got := resp.Header.Get("Server"); got != ServerHeader {
		t.Errorf("Server header = %q, want %q", got, ServerHeader)
	}

	resp, body = get(t, rec.lastAddr(), "/missing")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if body != "404 Not Found" {
		t.Errorf("body = %q, want %q", body, "404 Not Found")
	}
	if got := resp.Header.Get("Server"); got != "" {
		t.Errorf("Server header on 404 = %q, want unset", got)
	}
}

func TestService_RoutesAddedWhileRunning(t *testing.T) {
	svc, registry, rec := newTestService(t, testWebhooksConfig())

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	registry.Add("/late", []string{"GET"}, namedHandler("late"))

	resp, body := get(t, rec.lastAddr(), "/late")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	if body != "late" {
		t.Errorf("body = %q, want late", body)
	}
}

func TestService_HandlerErrorAnswers500(t *testing.T) {
	svc, registry, rec := newTestService(t, testWebhooksConfig())
	registry.Add("/boom", []string{"GET"}, func(_ http.ResponseWriter, _ *http.Request, _ Sender) ([]byte, error) {
		return nil, errors.New("database on fire")
	})

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	resp, body := get(t, rec.lastAddr(), "/boom")
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if body != "500 Internal Server Error" {
		t.Errorf("body = %q, want %q", body, "500 Internal Server Error")
	}
	if got := resp.Header.Get("Server"); got != "" {
		t.Errorf("Server header on 500 = %q, want unset", got)
	}
}

// ─── Restart Behaviour ──────────────────────────────────────────────

func TestService_RootReusedAcrossRestarts(t *testing.T) {
	svc, registry, rec := newTestService(t, testWebhooksConfig())
	registry.Add("/ping", []string{"GET"}, namedHandler("pong"))

	if err := svc.Start(); err != nil {
		t.Fatalf("first Start() error: %v", err)
	}
	first := svc.root
	if first == nil {
		t.Fatal("root not built on Start")
	}

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}
	if err := svc.Start(); err != nil {
		t.Fatalf("second Start() error: %v", err)
	}

	if svc.root != first {
		t.Error("dispatcher rebuilt on restart, want the same instance")
	}

	resp, body := get(t, rec.lastAddr(), "/ping")
	if resp.StatusCode != http.StatusOK || body != "pong" {
		t.Errorf("after restart: status = %d body = %q, want 200 pong", resp.StatusCode, body)
	}
}

func TestService_StopClosesListener(t *testing.T) {
	svc, _, rec := newTestService(t, testWebhooksConfig())

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	addr := rec.lastAddr()

	if err := svc.Stop(); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	if _, err := http.Get("http://" + addr + "/ping"); err == nil {
		t.Error("GET after Stop succeeded, want connection error")
	}
}

// ─── Health ─────────────────────────────────────────────────────────

func TestService_HealthCheck(t *testing.T) {
	svc, _, _ := newTestService(t, testWebhooksConfig())

	if err := svc.HealthCheck(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("HealthCheck() while stopped = %v, want ErrNotRunning", err)
	}

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	if err := svc.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() while running = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() with cancelled context = nil, want error")
	}
}

// ─── Wiring ─────────────────────────────────────────────────────────

func TestService_ObserverWired(t *testing.T) {
	registry := NewRegistry()
	registry.Add("/ping", []string{"GET"}, namedHandler("pong"))
	rec := &listenRecorder{}
	obs := &mockObserver{}

	svc, err := New(Deps{
		Config:   testWebhooksConfig(),
		Registry: registry,
		Chat:     &mockSender{},
		Observer: obs,
		Listen:   rec.listen,
	})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { svc.Close() }) //nolint:errcheck // Test cleanup

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	get(t, rec.lastAddr(), "/ping")

	seen := obs.observations()
	if len(seen) != 1 {
		t.Fatalf("observations = %d, want 1", len(seen))
	}
	if seen[0].path != "/ping" || seen[0].status != http.StatusOK {
		t.Errorf("observation = %+v, want /ping 200", seen[0])
	}
}

func TestService_RateLimitFromConfig(t *testing.T) {
	cfg := testWebhooksConfig()
	cfg.RateLimit = config.RateLimitConfig{Enabled: true, RequestsPerMinute: 1}

	svc, registry, rec := newTestService(t, cfg)
	registry.Add("/ping", []string{"GET"}, namedHandler("pong"))

	if err := svc.Start(); err != nil {
		t.Fatalf("Start() error: %v", err)
	}

	resp, _ := get(t, rec.lastAddr(), "/ping")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", resp.StatusCode)
	}

	resp, body := get(t, rec.lastAddr(), "/ping")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", resp.StatusCode)
	}
	if body != "429 Too Many Requests" {
		t.Errorf("body = %q, want %q", body, "429 Too Many Requests")
	}
}
