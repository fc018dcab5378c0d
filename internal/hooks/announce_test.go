package hooks

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashwyne/hookbot/internal/webhook"
)

// announceRequest builds a POST with the message form parameter and
// optional basic auth.
func announceRequest(path, message, user, pass string) *http.Request {
	body := ""
	if message != "" {
		body = "message=" + message
	}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if user != "" {
		req.SetBasicAuth(user, pass)
	}
	return req
}

func TestAnnounce_RegistersRoutePerChannel(t *testing.T) {
	host := testHost(newFakeChannels("#bots", "#ops"), nil, nil)

	if err := Announce(host); err != nil {
		t.Fatalf("Announce() error: %v", err)
	}

	for _, path := range []string{"/announce/bots", "/announce/ops"} {
		route, ok := host.Registry.Lookup(path)
		if !ok {
			t.Errorf("route %s not registered", path)
			continue
		}
		if len(route.Methods) != 1 || route.Methods[0] != http.MethodPost {
			t.Errorf("route %s methods = %v, want [POST]", path, route.Methods)
		}
	}
}

func TestAnnounce_RequiresChannelSet(t *testing.T) {
	host := testHost(nil, nil, nil)
	if err := Announce(host); err == nil {
		t.Error("Announce() without channel set succeeded, want error")
	}
}

func TestAnnounce_RelaysMessage(t *testing.T) {
	host := testHost(newFakeChannels("#bots"), nil, nil)
	if err := Announce(host); err != nil {
		t.Fatalf("Announce() error: %v", err)
	}

	chat := &chatRecorder{}
	w := dispatch(host.Registry, chat, announceRequest("/announce/bots", "deploy+finished", "", ""))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if got := w.Body.String(); got != "Message Sent" {
		t.Errorf("body = %q, want %q", got, "Message Sent")
	}
	sent := chat.sent()
	if len(sent) != 1 {
		t.Fatalf("chat messages sent = %d, want 1", len(sent))
	}
	if sent[0][0] != "#bots" || sent[0][1] != "deploy finished" {
		t.Errorf("sent = %v, want [#bots deploy finished]", sent[0])
	}
}

func TestAnnounce_MissingMessageParameter(t *testing.T) {
	host := testHost(newFakeChannels("#bots"), nil, nil)
	if err := Announce(host); err != nil {
		t.Fatalf("Announce() error: %v", err)
	}

	chat := &chatRecorder{}
	w := dispatch(host.Registry, chat, announceRequest("/announce/bots", "", "", ""))

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if got := w.Body.String(); got != "missing 'message' parameter" {
		t.Errorf("body = %q, want the missing parameter message", got)
	}
	if len(chat.sent()) != 0 {
		t.Error("chat message sent despite missing parameter")
	}
}

func TestAnnounce_LeftChannelAnswers404(t *testing.T) {
	channels := newFakeChannels("#bots")
	host := testHost(channels, nil, nil)
	if err := Announce(host); err != nil {
		t.Fatalf("Announce() error: %v", err)
	}

	channels.leave("#bots")

	chat := &chatRecorder{}
	w := dispatch(host.Registry, chat, announceRequest("/announce/bots", "hello", "", ""))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
	if len(chat.sent()) != 0 {
		t.Error("chat message sent to a channel the bot left")
	}
}

func TestAnnounce_Authenticated(t *testing.T) {
	creds := []webhook.Credential{{User: "foo", Password: "bar"}}
	host := testHost(newFakeChannels("#bots"), nil, creds)
	if err := Announce(host); err != nil {
		t.Fatalf("Announce() error: %v", err)
	}

	chat := &chatRecorder{}

	// Wrong credentials never reach the handler.
	w := dispatch(host.Registry, chat, announceRequest("/announce/bots", "hello", "foo", "wrong"))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status with bad credentials = %d, want 401", w.Code)
	}
	if len(chat.sent()) != 0 {
		t.Error("chat message sent despite failed auth")
	}

	// Matching credentials do.
	w = dispatch(host.Registry, chat, announceRequest("/announce/bots", "hello", "foo", "bar"))
	if w.Code != http.StatusOK {
		t.Errorf("status with good credentials = %d, want 200", w.Code)
	}
	if len(chat.sent()) != 1 {
		t.Errorf("chat messages sent = %d, want 1", len(chat.sent()))
	}
}

func TestAnnounce_QueryParameterWorksToo(t *testing.T) {
	host := testHost(newFakeChannels("#bots"), nil, nil)
	if err := Announce(host); err != nil {
		t.Fatalf("Announce() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/announce/bots?message=ping", nil)
	chat := &chatRecorder{}
	w := dispatch(host.Registry, chat, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	sent := chat.sent()
	if len(sent) != 1 || sent[0][1] != "ping" {
		t.Errorf("sent = %v, want one message %q", sent, "ping")
	}
}
