package bot

import (
	"database/sql"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using modernc.org/sqlite (pure Go).
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent reads.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Init creates the schema tables.
func (s *SQLiteStore) Init() error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id    INTEGER NOT NULL,
		sender     TEXT NOT NULL,
		text       TEXT NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS digests (
		name       TEXT PRIMARY KEY,
		cron       TEXT NOT NULL,
		chat_id    INTEGER NOT NULL,
		prompt     TEXT NOT NULL,
		enabled    INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_chat_messages_chat ON chat_messages(chat_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertChatMessage persists a transcript entry for a chat.
func (s *SQLiteStore) InsertChatMessage(chatID int64, sender, text string) error {
	_, err := s.db.Exec(
		`INSERT INTO chat_messages (chat_id, sender, text) VALUES (?, ?, ?)`,
		chatID, sender, text,
	)
	return err
}

// ListChatMessages returns the most recent limit entries for a chat, oldest
// first. A non-positive limit returns everything.
func (s *SQLiteStore) ListChatMessages(chatID int64, limit int) ([]StoredMessage, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT sender, text FROM (
		   SELECT id, sender, text FROM chat_messages
		   WHERE chat_id = ? ORDER BY id DESC LIMIT ?
		 ) ORDER BY id ASC`,
		chatID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []StoredMessage
	for rows.Next() {
		var m StoredMessage
		if err := rows.Scan(&m.Sender, &m.Text); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// DeleteChatMessages removes all transcript entries for a chat.
func (s *SQLiteStore) DeleteChatMessages(chatID int64) error {
	_, err := s.db.Exec(`DELETE FROM chat_messages WHERE chat_id = ?`, chatID)
	return err
}

// UpsertDigest inserts a digest or replaces the one with the same name.
func (s *SQLiteStore) UpsertDigest(d Digest) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO digests (name, cron, chat_id, prompt, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		d.Name, d.Cron, d.ChatID, d.Prompt, d.Enabled, d.CreatedAt,
	)
	return err
}

// ListDigests returns all digests ordered by name.
func (s *SQLiteStore) ListDigests() ([]Digest, error) {
	rows, err := s.db.Query(
		`SELECT name, cron, chat_id, prompt, enabled, created_at
		 FROM digests ORDER BY name ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var digests []Digest
	for rows.Next() {
		var d Digest
		if err := rows.Scan(&d.Name, &d.Cron, &d.ChatID, &d.Prompt, &d.Enabled, &d.CreatedAt); err != nil {
			return nil, err
		}
		digests = append(digests, d)
	}
	return digests, rows.Err()
}

// DeleteDigest removes a digest by name.
func (s *SQLiteStore) DeleteDigest(name string) error {
	result, err := s.db.Exec(`DELETE FROM digests WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
