package providers

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/lexileapp/lexile-server/internal/config"
	"github.com/lexileapp/lexile-server/internal/logger"
	"github.com/lexileapp/lexile-server/internal/store"
	"github.com/lexileapp/lexile-server/internal/store/sqlite"
)

// StoreHandle wraps the preference KV store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the BadgerDB preference store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Preference store initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// ChatStoreHandle wraps the SQLite chat store with shutdown capability.
type ChatStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *ChatStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideChatStore provides the SQLite chat store. New messages are pushed
// to the search index.
func ProvideChatStore(i do.Injector) (*ChatStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(cfg.Data.BasePath, "chats.db")
	db, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}
	db.SetMessageIndexer(indexHandle.SearchIndex)

	log.Info("Chat store initialized", "path", dbPath)

	return &ChatStoreHandle{Store: db}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
