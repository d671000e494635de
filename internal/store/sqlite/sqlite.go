package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// Schema creates the journal table. Safe to run on every start.
const Schema = `
CREATE TABLE IF NOT EXISTS session_events (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	kind       TEXT NOT NULL,
	nick       TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	detail     TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_session_events_nick ON session_events(nick, id DESC);
CREATE INDEX IF NOT EXISTS idx_session_events_session ON session_events(session_id, id DESC);
`

// SQLiteStore implements store.Journal for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ store.Journal = (*SQLiteStore)(nil)

// New opens (or creates) the database at dbPath and applies Schema.
func New(dbPath string) (*SQLiteStore, error) {
	return NewWithSetup(dbPath, func(db *sql.DB) error {
		_, err := db.Exec(Schema)
		return err
	})
}

// NewWithSetup opens the database and runs a setup function before the first ping.
// Useful for tests that need a custom schema or seed rows.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with single connection; it also keeps :memory: databases alive.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Record appends a session event.
func (s *SQLiteStore) Record(ctx context.Context, ev *store.SessionEvent) error {
	if ev == nil {
		return fmt.Errorf("record event: nil event")
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO session_events (session_id, kind, nick, address, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, ev.SessionID, string(ev.Kind), ev.Nick, ev.Address, ev.Detail, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}
	ev.ID = id
	return nil
}

// ListEvents returns matching events, newest first.
func (s *SQLiteStore) ListEvents(ctx context.Context, filter store.EventFilter) ([]*store.SessionEvent, error) {
	var (
		where []string
		args  []any
	)
	if filter.SessionID != "" {
		where = append(where, "session_id = ?")
		args = append(args, filter.SessionID)
	}
	if filter.Nick != "" {
		where = append(where, "nick = ?")
		args = append(args, filter.Nick)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, string(filter.Kind))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	query := `SELECT id, session_id, kind, nick, address, detail, created_at FROM session_events`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	events := make([]*store.SessionEvent, 0)
	for rows.Next() {
		var (
			ev   store.SessionEvent
			kind string
		)
		if err := rows.Scan(&ev.ID, &ev.SessionID, &kind, &ev.Nick, &ev.Address, &ev.Detail, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		ev.Kind = store.EventKind(kind)
		events = append(events, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session events: %w", err)
	}

	return events, nil
}
