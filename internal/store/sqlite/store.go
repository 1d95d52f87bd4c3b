// Package sqlite provides SQLite-backed chat persistence.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lexileapp/lexile-server/internal/store"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store provides SQLite-backed persistence for chats and messages.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	mu      sync.RWMutex
	indexer store.MessageIndexer
}

var _ store.ChatStore = (*Store)(nil)

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	return &Store{
		db:      db,
		logger:  logger,
		indexer: store.NewNoopMessageIndexer(),
	}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SetMessageIndexer sets the indexer new messages are pushed to.
// This is set after store creation since the index is opened separately.
func (s *Store) SetMessageIndexer(indexer store.MessageIndexer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if indexer == nil {
		indexer = store.NewNoopMessageIndexer()
	}
	s.indexer = indexer
}

func (s *Store) messageIndexer() store.MessageIndexer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexer
}

// formatTime formats a time.Time to RFC3339Nano for storage.
// Fixed-width fractional seconds keep lexical and chronological order equal.
func formatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}

// parseTime parses a stored timestamp back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
