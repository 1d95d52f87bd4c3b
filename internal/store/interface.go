package store

import (
	"context"

	"github.com/lexileapp/lexile-server/internal/domain"
)

// KV is a flat key-value keyspace. Values are opaque bytes; callers own the
// encoding. Get returns ErrNotFound for absent keys.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// ChatStore persists chats and messages scoped by authenticated subject.
type ChatStore interface {
	// ListChats returns the subject's chats, most recently updated first.
	ListChats(ctx context.Context, userSub string) ([]*domain.Chat, error)
	CreateChat(ctx context.Context, chat *domain.Chat) error
	// GetChat returns ErrNotFound when the chat does not exist or belongs to
	// another subject.
	GetChat(ctx context.Context, userSub, chatID string) (*domain.Chat, error)
	// ListMessages returns a chat's messages, oldest first.
	ListMessages(ctx context.Context, chatID string) ([]*domain.Message, error)
	// CreateMessage inserts the message and bumps the chat's updated_at.
	CreateMessage(ctx context.Context, msg *domain.Message) error
	Ping(ctx context.Context) error
	Close() error
}

// MessageIndexer keeps the search index in sync with stored messages.
type MessageIndexer interface {
	IndexMessage(ctx context.Context, userSub string, msg *domain.Message) error
}

// NoopMessageIndexer is a no-op implementation for testing.
type NoopMessageIndexer struct{}

// IndexMessage is a no-op.
func (NoopMessageIndexer) IndexMessage(context.Context, string, *domain.Message) error { return nil }

// NewNoopMessageIndexer creates a new no-op indexer.
func NewNoopMessageIndexer() MessageIndexer { return NoopMessageIndexer{} }
