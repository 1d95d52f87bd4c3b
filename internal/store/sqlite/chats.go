package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/store"
)

// chatColumns is the ordered list of columns selected in chat queries.
// Must match the scan order in scanChat.
const chatColumns = `id, user_sub, title, created_at, updated_at`

// messageColumns must match the scan order in scanMessage.
const messageColumns = `id, chat_id, role, content, created_at`

// scanChat scans a sql.Row (or sql.Rows via its Scan method) into a domain.Chat.
func scanChat(scanner interface{ Scan(dest ...any) error }) (*domain.Chat, error) {
	var (
		c         domain.Chat
		createdAt string
		updatedAt string
	)
	if err := scanner.Scan(&c.ID, &c.UserSub, &c.Title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanMessage(scanner interface{ Scan(dest ...any) error }) (*domain.Message, error) {
	var (
		m         domain.Message
		createdAt string
	)
	if err := scanner.Scan(&m.ID, &m.ChatID, &m.Role, &m.Content, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListChats returns the subject's chats ordered by updated_at descending.
func (s *Store) ListChats(ctx context.Context, userSub string) ([]*domain.Chat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+chatColumns+` FROM ext_chats WHERE user_sub = ? ORDER BY updated_at DESC, id`,
		userSub)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	chats := []*domain.Chat{}
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	return chats, rows.Err()
}

// CreateChat inserts a chat. Zero timestamps are set to now.
func (s *Store) CreateChat(ctx context.Context, chat *domain.Chat) error {
	if chat.ID == "" || chat.UserSub == "" {
		return store.ErrInvalidInput.WithMessage("chat id and user_sub are required")
	}
	now := time.Now()
	if chat.CreatedAt.IsZero() {
		chat.CreatedAt = now
	}
	if chat.UpdatedAt.IsZero() {
		chat.UpdatedAt = chat.CreatedAt
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ext_chats (id, user_sub, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		chat.ID, chat.UserSub, chat.Title, formatTime(chat.CreatedAt), formatTime(chat.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert chat: %w", err)
	}
	return nil
}

// GetChat returns the chat if it exists and is owned by userSub.
func (s *Store) GetChat(ctx context.Context, userSub, chatID string) (*domain.Chat, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+chatColumns+` FROM ext_chats WHERE id = ? AND user_sub = ?`,
		chatID, userSub)
	c, err := scanChat(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound.WithMessage("chat not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return c, nil
}

// ListMessages returns the chat's messages in ascending created_at order.
func (s *Store) ListMessages(ctx context.Context, chatID string) ([]*domain.Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+messageColumns+` FROM ext_messages WHERE chat_id = ? ORDER BY created_at ASC, rowid ASC`,
		chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []*domain.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CreateMessage inserts the message and bumps the parent chat's updated_at in
// one transaction, then pushes the message to the search index. Index
// failures are logged and do not fail the write.
func (s *Store) CreateMessage(ctx context.Context, msg *domain.Message) error {
	if msg.ID == "" || msg.ChatID == "" {
		return store.ErrInvalidInput.WithMessage("message id and chat_id are required")
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var userSub string
	err = tx.QueryRowContext(ctx, `SELECT user_sub FROM ext_chats WHERE id = ?`, msg.ChatID).Scan(&userSub)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound.WithMessage("chat not found")
	}
	if err != nil {
		return fmt.Errorf("lookup chat: %w", err)
	}

	ts := formatTime(msg.CreatedAt)
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO ext_messages (id, chat_id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ChatID, msg.Role, msg.Content, ts); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE ext_chats SET updated_at = ? WHERE id = ?`, ts, msg.ChatID); err != nil {
		return fmt.Errorf("touch chat: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	if err := s.messageIndexer().IndexMessage(ctx, userSub, msg); err != nil && s.logger != nil {
		s.logger.Warn("Failed to index message", "message_id", msg.ID, "error", err)
	}
	return nil
}
