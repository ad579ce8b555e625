package bot

import "time"

// StoredMessage is a persisted transcript entry for one chat.
type StoredMessage struct {
	Sender string
	Text   string
}

// Digest is a scheduled prompt. Cron says when to fire, Prompt is routed
// through the Router as if ChatID had sent it, and the reply is delivered
// to that chat.
type Digest struct {
	Name      string
	Cron      string
	ChatID    int64
	Prompt    string
	Enabled   bool
	CreatedAt time.Time
}

// Store persists chat transcripts and scheduled digests across restarts.
type Store interface {
	// Init creates the required tables if they don't exist.
	Init() error

	// Close releases the underlying database resources.
	Close() error

	// InsertChatMessage appends a transcript entry for a chat.
	InsertChatMessage(chatID int64, sender, text string) error

	// ListChatMessages returns the most recent limit entries for a chat,
	// oldest first. A non-positive limit returns everything.
	ListChatMessages(chatID int64, limit int) ([]StoredMessage, error)

	// DeleteChatMessages removes all transcript entries for a chat.
	DeleteChatMessages(chatID int64) error

	// UpsertDigest inserts a digest or replaces the one with the same name.
	UpsertDigest(d Digest) error

	// ListDigests returns all digests ordered by name.
	ListDigests() ([]Digest, error)

	// DeleteDigest removes a digest by name. Missing names are an error.
	DeleteDigest(name string) error
}
