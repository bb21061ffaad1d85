// Package history persists composer input across sessions in SQLite.
package history

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite" // register sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id       TEXT PRIMARY KEY,
	root     TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entries (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	session  TEXT NOT NULL,
	text     TEXT NOT NULL,
	created  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entries_session ON entries(session);
`

// Entry is one submitted input.
type Entry struct {
	Session string
	Text    string
	Created time.Time
}

// Store is a SQLite-backed input history capped at maxEntries rows.
type Store struct {
	mu         sync.Mutex
	db         *sql.DB
	maxEntries int
}

// Open creates or opens a history database at the given path.
func Open(dbPath string, maxEntries int) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{db: db, maxEntries: maxEntries}
	s.mu.Lock()
	s.trim()
	s.mu.Unlock()
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

// StartSession records a composer session for root and returns its ID.
// Returns "" on a nil receiver.
func (s *Store) StartSession(root string) (string, error) {
	if s == nil {
		return "", nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	_, err := s.db.Exec(
		"INSERT INTO sessions (id, root, created) VALUES (?, ?, ?)",
		id, root, time.Now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("root", root).Msg("failed to start history session")
		return "", err
	}
	return id, nil
}

// Add appends text to the history. Blank input and a repeat of the most recent
// entry are skipped. Reports whether a row was written. No-op on nil receiver.
func (s *Store) Add(session, text string) bool {
	if s == nil || strings.TrimSpace(text) == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var last string
	err := s.db.QueryRow("SELECT text FROM entries ORDER BY id DESC LIMIT 1").Scan(&last)
	if err == nil && last == text {
		return false
	}

	_, err = s.db.Exec(
		"INSERT INTO entries (session, text, created) VALUES (?, ?, ?)",
		session, text, time.Now().Unix(),
	)
	if err != nil {
		log.Warn().Err(err).Str("session", session).Msg("failed to save history entry")
		return false
	}
	s.trim()
	return true
}

// Recent returns up to limit entries, newest first. Safe on a nil receiver.
func (s *Store) Recent(limit int) []Entry {
	if s == nil || limit <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(
		"SELECT session, text, created FROM entries ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load history")
		return nil
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created int64
		if err := rows.Scan(&e.Session, &e.Text, &created); err != nil {
			continue
		}
		e.Created = time.Unix(created, 0)
		out = append(out, e)
	}
	return out
}

// Texts returns the text of up to limit entries, newest first.
func (s *Store) Texts(limit int) []string {
	entries := s.Recent(limit)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM entries").Scan(&n); err != nil {
		return 0
	}
	return n
}

// trim drops the oldest entries beyond maxEntries. Caller holds mu.
func (s *Store) trim() {
	if s.maxEntries <= 0 {
		return
	}
	res, err := s.db.Exec(
		"DELETE FROM entries WHERE id NOT IN (SELECT id FROM entries ORDER BY id DESC LIMIT ?)",
		s.maxEntries,
	)
	if err != nil {
		log.Warn().Err(err).Msg("failed to trim history")
		return
	}
	if n, _ := res.RowsAffected(); n > 0 {
		log.Debug().Int64("deleted", n).Msg("trimmed history")
	}
}
