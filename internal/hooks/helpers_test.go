package hooks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/ashwyne/hookbot/internal/extension"
	"github.com/ashwyne/hookbot/internal/msglog"
	"github.com/ashwyne/hookbot/internal/webhook"
)

// fakeChannels is a mutable ChannelSet: Channels() returns the
// registration-time list, InChannel consults the joined map so tests
// can simulate leaving a channel after routes were registered.
type fakeChannels struct {
	channels []string
	joined   map[string]bool
}

func newFakeChannels(channels ...string) *fakeChannels {
	joined := make(map[string]bool, len(channels))
	for _, c := range channels {
		joined[c] = true
	}
	return &fakeChannels{channels: channels, joined: joined}
}

func (f *fakeChannels) Channels() []string { return f.channels }

func (f *fakeChannels) InChannel(channel string) bool { return f.joined[channel] }

func (f *fakeChannels) leave(channel string) { f.joined[channel] = false }

// fakeStore is an in-memory msglog.Store. Messages are held newest
// first, matching the SQLite store's Recent order.
type fakeStore struct {
	messages map[string][]msglog.Message
	err      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{messages: make(map[string][]msglog.Message)}
}

func (f *fakeStore) add(channel, nick, text string, at time.Time) {
	msg := msglog.Message{Channel: channel, Nick: nick, Text: text, SentAt: at}
	f.messages[channel] = append([]msglog.Message{msg}, f.messages[channel]...)
}

func (f *fakeStore) Record(_ context.Context, channel, nick, text string) (*msglog.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.add(channel, nick, text, time.Now())
	return &f.messages[channel][0], nil
}

func (f *fakeStore) Recent(_ context.Context, channel string, limit int) ([]msglog.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	msgs := f.messages[channel]
	if limit > 0 && limit < len(msgs) {
		msgs = msgs[:limit]
	}
	out := make([]msglog.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (f *fakeStore) Channels(_ context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	channels := make([]string, 0, len(f.messages))
	for channel := range f.messages {
		channels = append(channels, channel)
	}
	// Deterministic like the SQLite store: sorted.
	sort.Strings(channels)
	return channels, nil
}

func (f *fakeStore) Count(_ context.Context) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	total := 0
	for _, msgs := range f.messages {
		total += len(msgs)
	}
	return total, nil
}

// chatRecorder records messages handlers send through the Sender.
type chatRecorder struct {
	mu   sync.Mutex
	msgs [][2]string
}

func (c *chatRecorder) Msg(target, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, [2]string{target, text})
	return nil
}

func (c *chatRecorder) Me(string, string) error { return nil }

func (c *chatRecorder) sent() [][2]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][2]string, len(c.msgs))
	copy(out, c.msgs)
	return out
}

// dispatch runs one request through a dispatcher over registry.
func dispatch(registry *webhook.Registry, chat webhook.Sender, req *http.Request) *httptest.ResponseRecorder {
	root := webhook.NewRoot(registry, chat)
	w := httptest.NewRecorder()
	root.ServeHTTP(w, req)
	return w
}

// testHost returns a Host over a fresh registry with the given
// collaborators.
func testHost(channels extension.ChannelSet, store msglog.Store, creds []webhook.Credential) extension.Host {
	return extension.Host{
		Registry:    webhook.NewRegistry(),
		Credentials: creds,
		Channels:    channels,
		Messages:    store,
	}
}
