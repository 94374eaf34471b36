package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE VIRTUAL TABLE IF NOT EXISTS facts USING fts5(content, timestamp UNINDEXED);
`

// Options tunes context assembly.
type Options struct {
	Window    int // recent messages per context
	FactLimit int // facts per context
}

// SQLiteStore persists messages and facts in a single SQLite database.
// Facts live in an FTS5 table for relevance search.
type SQLiteStore struct {
	db        *sql.DB
	window    int
	factLimit int
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (or creates) the database at path. Use ":memory:" for an
// ephemeral store.
func Open(path string, opts Options) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create memory dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writes.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL: %w", err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	if opts.Window <= 0 {
		opts.Window = DefaultWindow
	}
	if opts.FactLimit <= 0 {
		opts.FactLimit = DefaultFactLimit
	}
	return &SQLiteStore{db: db, window: opts.Window, factLimit: opts.FactLimit}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveMessage appends a message to the conversation log.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO messages (role, content, timestamp) VALUES (?, ?, ?)",
		string(msg.Role), msg.Content, msg.Timestamp.UnixMilli())
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

// RecentMessages returns the last limit messages in chronological order.
func (s *SQLiteStore) RecentMessages(ctx context.Context, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT role, content, timestamp FROM messages ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var (
			m  Message
			ts int64
		)
		if err := rows.Scan(&m.Role, &m.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Timestamp = time.UnixMilli(ts)
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// MessageCount returns the number of logged messages.
func (s *SQLiteStore) MessageCount(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}

// SaveFact stores a fact unless an identical one exists. It reports whether
// a new fact was written.
func (s *SQLiteStore) SaveFact(ctx context.Context, content string) (bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return false, errors.New("fact content is empty")
	}

	var rowid int64
	err := s.db.QueryRowContext(ctx, "SELECT rowid FROM facts WHERE content = ?", content).Scan(&rowid)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, sql.ErrNoRows):
		return false, fmt.Errorf("lookup fact: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		"INSERT INTO facts (content, timestamp) VALUES (?, ?)",
		content, time.Now().UnixMilli()); err != nil {
		return false, fmt.Errorf("save fact: %w", err)
	}
	return true, nil
}

// DeleteFact removes a fact by id.
func (s *SQLiteStore) DeleteFact(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM facts WHERE rowid = ?", id)
	if err != nil {
		return fmt.Errorf("delete fact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("fact %d not found", id)
	}
	return nil
}

// SearchFacts returns facts matching any word of query, best match first.
func (s *SQLiteStore) SearchFacts(ctx context.Context, query string, limit int) ([]Fact, error) {
	match := ftsQuery(query)
	if match == "" {
		return nil, nil
	}
	return s.queryFacts(ctx,
		"SELECT rowid, content, timestamp FROM facts WHERE facts MATCH ? ORDER BY rank LIMIT ?",
		match, limit)
}

// RecentFacts returns the most recently stored facts.
func (s *SQLiteStore) RecentFacts(ctx context.Context, limit int) ([]Fact, error) {
	return s.queryFacts(ctx,
		"SELECT rowid, content, timestamp FROM facts ORDER BY timestamp DESC, rowid DESC LIMIT ?",
		limit)
}

func (s *SQLiteStore) queryFacts(ctx context.Context, query string, args ...any) ([]Fact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query facts: %w", err)
	}
	defer rows.Close()

	var facts []Fact
	for rows.Next() {
		var (
			f  Fact
			ts int64
		)
		if err := rows.Scan(&f.ID, &f.Content, &ts); err != nil {
			return nil, fmt.Errorf("scan fact: %w", err)
		}
		f.Timestamp = time.UnixMilli(ts)
		facts = append(facts, f)
	}
	return facts, rows.Err()
}

// GetContext assembles the recent-message window and the facts relevant to
// query. With an empty query, or when nothing matches, the most recent facts
// are used instead.
func (s *SQLiteStore) GetContext(ctx context.Context, query string) (*Context, error) {
	msgs, err := s.RecentMessages(ctx, s.window)
	if err != nil {
		return nil, err
	}

	var facts []Fact
	if strings.TrimSpace(query) != "" {
		facts, err = s.SearchFacts(ctx, query, s.factLimit)
		if err != nil {
			return nil, err
		}
	}
	if len(facts) == 0 {
		facts, err = s.RecentFacts(ctx, s.factLimit)
		if err != nil {
			return nil, err
		}
	}

	return &Context{RecentMessages: msgs, RelevantFacts: facts}, nil
}
