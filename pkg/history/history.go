package history

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"clipwatch/pkg/watcher"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const selectEntries = `SELECT
		id,
		source,
		content,
		hash,
		session_id,
		seq,
		observed_at
	FROM changes WHERE 1=1
	`

type Entry struct {
	ID         string    `json:"id" yaml:"id"`
	Source     string    `json:"source" yaml:"source"`
	Content    string    `json:"content" yaml:"content"`
	Hash       string    `json:"hash" yaml:"hash"`
	SessionID  string    `json:"session_id" yaml:"session_id"`
	Seq        int64     `json:"seq" yaml:"seq"`
	ObservedAt time.Time `json:"observed_at" yaml:"observed_at"`
}

// Store is a SQLite log of every change a watcher delivered.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the history database under the user cache directory.
func DefaultPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "clipwatch", "history.db"), nil
}

func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return s, nil
}

func (s *Store) init() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS changes (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			content TEXT NOT NULL,
			hash TEXT NOT NULL,
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			observed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_observed_at ON changes(observed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_source ON changes(source)`,
		`CREATE INDEX IF NOT EXISTS idx_changes_hash ON changes(hash)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Hash returns the hex sha256 of content.
func Hash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum)
}

// Record stores a change and returns the stored entry.
func (s *Store) Record(ctx context.Context, c watcher.Change) (Entry, error) {
	e := Entry{
		ID:         uuid.New().String(),
		Source:     string(c.Source),
		Content:    c.Value,
		Hash:       Hash(c.Value),
		SessionID:  c.SessionID,
		Seq:        c.Seq,
		ObservedAt: c.ObservedAt.UTC(),
	}
	if e.ObservedAt.IsZero() {
		e.ObservedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO changes (id, source, content, hash, session_id, seq, observed_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Source, e.Content, e.Hash, e.SessionID, e.Seq, e.ObservedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to insert change: %w", err)
	}
	return e, nil
}

// Recent returns the newest entries first. An empty source matches all.
func (s *Store) Recent(ctx context.Context, source string, limit int) ([]Entry, error) {
	query := selectEntries
	var args []any
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	query += " ORDER BY observed_at DESC, seq DESC LIMIT ?"
	args = append(args, normalizeLimit(limit))
	return s.query(ctx, query, args...)
}

// Search returns entries whose content contains query, newest first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	q := selectEntries + " AND content LIKE ? ESCAPE '\\' ORDER BY observed_at DESC, seq DESC LIMIT ?"
	return s.query(ctx, q, "%"+escapeLike(query)+"%", normalizeLimit(limit))
}

func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM changes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count changes: %w", err)
	}
	return n, nil
}

// Prune keeps the newest keep entries and deletes the rest. It returns the
// number of deleted rows.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM changes WHERE id NOT IN (
			SELECT id FROM changes ORDER BY observed_at DESC, seq DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune changes: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query changes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Source, &e.Content, &e.Hash, &e.SessionID, &e.Seq, &e.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan change: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	return limit
}

// escapeLike works on bytes so clipboard contents that are not valid UTF-8
// pass through unchanged.
func escapeLike(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '%' || c == '_' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
