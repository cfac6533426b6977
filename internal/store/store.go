// Package store persists conversation turns in a durable, append-only,
// session-partitioned SQLite log. The store owns the persisted messages;
// anything the UI caches is a non-authoritative copy of this log.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"campuschat/internal/logger"
	"campuschat/pkg/chattypes"
)

// DefaultHistoryLimit bounds how many messages a read returns when the caller
// does not pick a window size.
const DefaultHistoryLimit = 50

// MessageStore is an append-only message log keyed by session. It supports
// only append and read; messages are immutable once written.
type MessageStore struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path, ensures the parent
// directory exists and creates the schema if absent. Repeated opens against
// an existing store are safe no-ops.
func Open(path string) (*MessageStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &chattypes.StorageError{Op: "open", Err: fmt.Errorf("create db directory %s: %w", dir, err)}
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, &chattypes.StorageError{Op: "open", Err: fmt.Errorf("open db at %s: %w", path, err)}
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, &chattypes.StorageError{Op: "open", Err: fmt.Errorf("ping db at %s: %w", path, err)}
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, &chattypes.StorageError{Op: "open", Err: fmt.Errorf("init schema: %w", err)}
	}

	logger.Debug("message store opened", "path", path)
	return &MessageStore{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			timestamp DATETIME NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_messages_session_timestamp ON messages(session_id, timestamp);
	`)
	return err
}

// Append durably persists one conversation turn and returns it with the
// assigned id and timestamp. The id is strictly increasing and serves as the
// ordering tie-break when timestamps collide.
func (s *MessageStore) Append(ctx context.Context, sessionID, role, content string) (chattypes.Message, error) {
	if sessionID == "" {
		return chattypes.Message{}, fmt.Errorf("store: session id must not be empty")
	}
	if !chattypes.ValidRole(role) {
		return chattypes.Message{}, fmt.Errorf("store: invalid role %q", role)
	}
	if content == "" {
		return chattypes.Message{}, fmt.Errorf("store: content must not be empty")
	}

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, timestamp) VALUES (?, ?, ?, ?)`,
		sessionID, role, content, now,
	)
	if err != nil {
		return chattypes.Message{}, &chattypes.StorageError{Op: "append", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return chattypes.Message{}, &chattypes.StorageError{Op: "append", Err: err}
	}

	return chattypes.Message{
		ID:        id,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: now,
	}, nil
}

// Load returns the most recent limit messages for a session in chronological
// (oldest-first) order. limit <= 0 falls back to DefaultHistoryLimit. A
// session with no messages yields an empty result, not an error. Older
// messages beyond the window are dropped from the view only; the durable log
// keeps them.
func (s *MessageStore) Load(ctx context.Context, sessionID string, limit int) ([]chattypes.Message, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, timestamp FROM messages
		WHERE session_id = ?
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`,
		sessionID, limit,
	)
	if err != nil {
		return nil, &chattypes.StorageError{Op: "load", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var msgs []chattypes.Message
	for rows.Next() {
		var m chattypes.Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.Timestamp); err != nil {
			return nil, &chattypes.StorageError{Op: "load", Err: err}
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, &chattypes.StorageError{Op: "load", Err: err}
	}

	// Rows arrive newest-first; the conversation reads oldest-first.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// Close releases the underlying database handle.
func (s *MessageStore) Close() error {
	return s.db.Close()
}
