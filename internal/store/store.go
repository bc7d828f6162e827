// Package store persists chat sessions and their messages in a local
// SQLite database. Sessions are append-only: messages are never updated
// or deleted, and their insertion order is the conversation order.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/claii/claii/internal/provider"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    title    TEXT NOT NULL DEFAULT '',
    model    TEXT NOT NULL,
    provider TEXT NOT NULL,
    updated  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL REFERENCES sessions(id),
    role       TEXT NOT NULL CHECK (role IN ('system', 'user', 'assistant')),
    content    TEXT NOT NULL,
    timestamp  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated ON sessions(updated);
CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, timestamp);
`

// ErrSessionNotFound is returned when a session id does not exist.
// Callers match it with errors.Is.
var ErrSessionNotFound = errors.New("session not found")

// Session is one conversation. Title is empty until the first user prompt
// names it; Updated moves forward on every message append.
type Session struct {
	ID       int64
	Title    string
	Model    string
	Provider string
	Updated  time.Time
}

// Message is one row of a session transcript.
type Message struct {
	ID        int64
	SessionID int64
	Role      provider.Role
	Content   string
	Timestamp time.Time
}

// Store is a SQLite-backed session store.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path (~/.local/share/claii/claii.db).
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", "claii", "claii.db"), nil
}

// Open opens (or creates) a SQLite database at dbPath and ensures the schema
// exists. Schema creation is idempotent and never touches existing rows.
func Open(dbPath string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// modernc.org/sqlite allows a single writer; serialize all access
	// through one connection so writes never race each other.
	db.SetMaxOpenConns(1)

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	log.Debug("session store ready", zap.String("path", dbPath))
	return &Store{db: db}, nil
}

// InsertSession creates a new session and returns its id.
// An empty title is allowed; it is set later from the first user prompt.
func (s *Store) InsertSession(title, model, providerName string) (int64, error) {
	now := time.Now().UTC()
	res, err := s.db.Exec(`
		INSERT INTO sessions (title, model, provider, updated)
		VALUES (?, ?, ?, ?)`,
		title, model, providerName, now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("session id: %w", err)
	}
	return id, nil
}

// GetSession loads a single session by id.
func (s *Store) GetSession(id int64) (Session, error) {
	row := s.db.QueryRow(`
		SELECT id, title, model, provider, updated
		FROM sessions WHERE id = ?`, id)

	var sess Session
	var updated string
	err := row.Scan(&sess.ID, &sess.Title, &sess.Model, &sess.Provider, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, fmt.Errorf("session %d: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return Session{}, fmt.Errorf("load session: %w", err)
	}
	sess.Updated, _ = time.Parse(time.RFC3339Nano, updated)
	return sess, nil
}

// UpdateSessionTitle sets the session title. The caller guards the
// set-at-most-once rule; the store only requires the session to exist.
func (s *Store) UpdateSessionTitle(id int64, title string) error {
	res, err := s.db.Exec("UPDATE sessions SET title = ? WHERE id = ?", title, id)
	if err != nil {
		return fmt.Errorf("update title: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("session %d: %w", id, ErrSessionNotFound)
	}
	return nil
}

// InsertMessage appends one message to a session and bumps the session's
// updated time, atomically. The timestamp is assigned here, at write time,
// so the (timestamp, id) order of the messages table is the append order.
func (s *Store) InsertMessage(sessionID int64, role provider.Role, content string) error {
	if !provider.ValidRole(role) {
		return fmt.Errorf("invalid role %q", role)
	}
	if content == "" && role != provider.RoleSystem {
		return fmt.Errorf("empty %s message content", role)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRow("SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("session %d: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}

	ts := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.Exec(`
		INSERT INTO messages (session_id, role, content, timestamp)
		VALUES (?, ?, ?, ?)`,
		sessionID, string(role), content, ts,
	); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if _, err := tx.Exec("UPDATE sessions SET updated = ? WHERE id = ?", ts, sessionID); err != nil {
		return fmt.Errorf("bump session updated: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit message: %w", err)
	}
	return nil
}

// ListSessions returns all sessions ordered by updated time ascending.
// Ties keep insertion order, so the listing is stable.
func (s *Store) ListSessions() ([]Session, error) {
	rows, err := s.db.Query(`
		SELECT id, title, model, provider, updated
		FROM sessions ORDER BY updated ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var updated string
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Model, &sess.Provider, &updated); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Updated, _ = time.Parse(time.RFC3339Nano, updated)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// ListMessages returns a session's full transcript in conversation order.
func (s *Store) ListMessages(sessionID int64) ([]Message, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM sessions WHERE id = ?", sessionID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("check session: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, session_id, role, content, timestamp
		FROM messages WHERE session_id = ?
		ORDER BY timestamp ASC, id ASC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var role, ts string
		if err := rows.Scan(&m.ID, &m.SessionID, &role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Role = provider.Role(role)
		m.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}
