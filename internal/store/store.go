// Package store provides durable key-value storage on BadgerDB.
//
// Each authenticated subject gets its own keyspace through Scope, which is
// where per-profile preferences, screening results and the preferred voice
// live.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens a Store at path. An empty path opens an in-memory database,
// which tests and ephemeral deployments use.
func New(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
		opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path, "in_memory", path == "")
	}

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// Ping reports whether the database accepts reads.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return ErrUnavailable.WithMessage("badger database is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// Scope returns the keyspace of one profile.
func (s *Store) Scope(profile string) KV {
	return &scopedKV{store: s, prefix: profilePrefix + profile + ":"}
}

// Get retrieves a value by key.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return s.get(ctx, []byte(key))
}

// Set stores a value by key.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, []byte(key), value)
}

// Delete removes a key. Deleting an absent key is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	return s.delete(ctx, []byte(key))
}

func (s *Store) get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, ErrUnavailable.WithCause(err)
	}
	return out, nil
}

func (s *Store) set(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
	if err != nil {
		return ErrUnavailable.WithCause(err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
	if err != nil {
		return ErrUnavailable.WithCause(err)
	}
	return nil
}

// scopedKV prefixes every key with its profile namespace.
type scopedKV struct {
	store  *Store
	prefix string
}

func (k *scopedKV) Get(ctx context.Context, key string) ([]byte, error) {
	full := buildKey(k.prefix, key)
	defer releaseKey(full)
	return k.store.get(ctx, full)
}

func (k *scopedKV) Set(ctx context.Context, key string, value []byte) error {
	full := buildKey(k.prefix, key)
	defer releaseKey(full)
	return k.store.set(ctx, full, value)
}

func (k *scopedKV) Delete(ctx context.Context, key string) error {
	full := buildKey(k.prefix, key)
	defer releaseKey(full)
	return k.store.delete(ctx, full)
}
