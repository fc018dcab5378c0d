package hooks

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestLogs_RequiresStoreAndChannels(t *testing.T) {
	host := testHost(newFakeChannels("#bots"), nil, nil)
	if err := Logs(host); err == nil {
		t.Error("Logs() without a message store succeeded, want error")
	}

	host = testHost(nil, newFakeStore(), nil)
	if err := Logs(host); err == nil {
		t.Error("Logs() without a channel set succeeded, want error")
	}
}

func TestLogs_RegistersIndexAndChannelRoutes(t *testing.T) {
	host := testHost(newFakeChannels("#bots", "#ops"), newFakeStore(), nil)
	if err := Logs(host); err != nil {
		t.Fatalf("Logs() error: %v", err)
	}

	for _, path := range []string{"/logs", "/logs/bots", "/logs/ops"} {
		route, ok := host.Registry.Lookup(path)
		if !ok {
			t.Errorf("route %s not registered", path)
			continue
		}
		if len(route.Methods) != 1 || route.Methods[0] != http.MethodGet {
			t.Errorf("route %s methods = %v, want [GET]", path, route.Methods)
		}
	}
}

func TestLogs_IndexListsChannels(t *testing.T) {
	store := newFakeStore()
	store.add("#ops", "alice", "on call", time.Now())
	store.add("#bots", "bob", "deploying", time.Now())

	host := testHost(newFakeChannels("#bots", "#ops"), store, nil)
	if err := Logs(host); err != nil {
		t.Fatalf("Logs() error: %v", err)
	}

	w := dispatch(host.Registry, &chatRecorder{}, httptest.NewRequest(http.MethodGet, "/logs", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got, want := w.Body.String(), "#bots\n#ops\n"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestLogs_IndexEmpty(t *testing.T) {
	host := testHost(newFakeChannels("#bots"), newFakeStore(), nil)
	if err := Logs(host); err != nil {
		t.Fatalf("Logs() error: %v", err)
	}

	w := dispatch(host.Registry, &chatRecorder{}, httptest.NewRequest(http.MethodGet, "/logs", nil))

	if got, want := w.Body.String(), "no messages logged yet\n"; got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestLogs_ChannelLogOldestFirst(t *testing.T) {
	base := time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	store := newFakeStore()
	store.add("#bots", "alice", "first", base)
	store.add("#bots", "bob", "second", base.Add(time.Minute))

	host := testHost(newFakeChannels("#bots"), store, nil)
	if err := Logs(host); err != nil {
		t.Fatalf("Logs() error: %v", err)
	}

	w := dispatch(host.Registry, &chatRecorder{}, httptest.NewRequest(http.MethodGet, "/logs/bots", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	want := "09:30:00 <alice> first\n09:31:00 <bob> second\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestLogs_LimitParameter(t *testing.T) {
	base := time.Date(2026, 8, 25, 9, 0, 0, 0, time.UTC)
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		store.add("#bots", "alice", "msg", base.Add(time.Duration(i)*time.Minute))
	}

	host := testHost(newFakeChannels("#bots"), store, nil)
	if err := Logs(host); err != nil {
		t.Fatalf("Logs() error: %v", err)
	}

	w := dispatch(host.Registry, &chatRecorder{}, httptest.NewRequest(http.MethodGet, "/logs/bots?limit=2", nil))

	// The two most recent messages, printed oldest first.
	if got := strings.Count(w.Body.String(), "\n"); got != 2 {
		t.Errorf("lines = %d, want 2", got)
	}
	if !strings.Contains(w.Body.String(), "09:04:00") {
		t.Errorf("body = %q, want it to include the newest message", w.Body.String())
	}
}

func TestLogs_BadLimit(t *testing.T) {
	host := testHost(newFakeChannels("#bots"), newFakeStore(), nil)
	if err := Logs(host); err != nil {
		t.Fatalf("Logs() error: %v", err)
	}

	for _, limit := range []string{"abc", "-3"} {
		w := dispatch(host.Registry, &chatRecorder{}, httptest.NewRequest(http.MethodGet, "/logs/bots?limit="+limit, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("limit=%s status = %d, want 400", limit, w.Code)
		}
		if got, want := w.Body.String(), "limit must be a non-negative number"; got != want {
			t.Errorf("limit=%s body = %q, want %q", limit, got, want)
		}
	}
}

func TestLogs_StoreErrorAnswers500(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("disk gone")

	host := testHost(newFakeChannels("#bots"), store, nil)
	if err := Logs(host); err != nil {
		t.Fatalf("Logs() error: %v", err)
	}

	w := dispatch(host.Registry, &chatRecorder{}, httptest.NewRequest(http.MethodGet, "/logs/bots", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}
