package msglog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Limits applied to Recent queries.
const (
	defaultLimit = 50
	maxLimit     = 200
)

// timeLayout is RFC 3339 with a fixed nine-digit fraction. The fixed
// width keeps lexicographic order equal to chronological order, so the
// (channel, sent_at) index sorts correctly.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Message is a single chat line seen by the bot.
type Message struct {
	ID      string    `json:"id"`
	Channel string    `json:"channel"`
	Nick    string    `json:"nick"`
	Text    string    `json:"text"`
	SentAt  time.Time `json:"sent_at"`
}

// Store defines the message log operations.
type Store interface {
	Record(ctx context.Context, channel, nick, text string) (*Message, error)
	Recent(ctx context.Context, channel string, limit int) ([]Message, error)
	Channels(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// SQLiteStore persists chat messages in SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a message store over an open database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Record inserts one message. The id and timestamp are generated here;
// the stored message is returned so callers can log or display it.
func (s *SQLiteStore) Record(ctx context.Context, channel, nick, text string) (*Message, error) {
	msg := &Message{
		ID:      uuid.NewString(),
		Channel: channel,
		Nick:    nick,
		Text:    text,
		SentAt:  time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (id, channel, nick, text, sent_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.Channel, msg.Nick, msg.Text,
		msg.SentAt.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting message: %w", err)
	}

	return msg, nil
}

// Recent returns the newest messages for a channel, most recent first.
// A non-positive limit uses the default; large limits are clamped.
func (s *SQLiteStore) Recent(ctx context.Context, channel string, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, channel, nick, text, sent_at FROM messages
		 WHERE channel = ? ORDER BY sent_at DESC LIMIT ?`,
		channel, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var msg Message
		var sentAt string

		if err := rows.Scan(&msg.ID, &msg.Channel, &msg.Nick, &msg.Text, &sentAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		t, err := time.Parse(time.RFC3339Nano, sentAt)
		if err != nil {
			return nil, fmt.Errorf("parsing message timestamp %q: %w", sentAt, err)
		}
		msg.SentAt = t

		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	if messages == nil {
		messages = []Message{}
	}
	return messages, nil
}

// Channels returns every channel that has logged messages, sorted.
func (s *SQLiteStore) Channels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT channel FROM messages ORDER BY channel`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	var channels []string
	for rows.Next() {
		var channel string
		if err := rows.Scan(&channel); err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		channels = append(channels, channel)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating channels: %w", err)
	}

	if channels == nil {
		channels = []string{}
	}
	return channels, nil
}

// Count returns the total number of logged messages.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting messages: %w", err)
	}
	return count, nil
}
