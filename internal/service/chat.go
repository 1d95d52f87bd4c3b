package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lexileapp/lexile-server/internal/domain"
	domainerrors "github.com/lexileapp/lexile-server/internal/errors"
	"github.com/lexileapp/lexile-server/internal/id"
	"github.com/lexileapp/lexile-server/internal/llm"
	"github.com/lexileapp/lexile-server/internal/mindmap"
	"github.com/lexileapp/lexile-server/internal/store"
)

// Mindmap generation modes.
const (
	MindmapHeuristic = "heuristic"
	MindmapLLM       = "llm"
)

// Mindmap is a generated Mermaid mindmap for one chat.
type Mindmap struct {
	Source string `json:"source"`
	Topic  string `json:"topic"`
	Mode   string `json:"mode"`
}

// ChatService owns chat and message persistence for authenticated subjects
// and the assistant features that read a chat's history.
type ChatService struct {
	chats     store.ChatStore
	completer llm.Completer
	mindmaps  *mindmap.LLMGenerator
	logger    *slog.Logger
}

// NewChatService creates a chat service. A nil completer disables replies and
// LLM mindmaps.
func NewChatService(chats store.ChatStore, completer llm.Completer, logger *slog.Logger) *ChatService {
	s := &ChatService{
		chats:     chats,
		completer: completer,
		logger:    logger,
	}
	if completer != nil {
		s.mindmaps = mindmap.NewLLMGenerator(completer)
	}
	return s
}

// ListChats returns the subject's chats, most recently updated first.
func (s *ChatService) ListChats(ctx context.Context, userSub string) ([]*domain.Chat, error) {
	chats, err := s.chats.ListChats(ctx, userSub)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return chats, nil
}

// CreateChat creates a chat owned by userSub.
func (s *ChatService) CreateChat(ctx context.Context, userSub, title string) (*domain.Chat, error) {
	chatID, err := id.NewChatID()
	if err != nil {
		return nil, fmt.Errorf("generate chat id: %w", err)
	}

	chat := &domain.Chat{
		ID:      chatID,
		UserSub: userSub,
		Title:   domain.NormalizeChatTitle(title),
	}
	if err := s.chats.CreateChat(ctx, chat); err != nil {
		return nil, fmt.Errorf("create chat: %w", err)
	}

	s.logger.Debug("chat created", "chat_id", chat.ID, "user_sub", userSub)
	return chat, nil
}

// ListMessages returns the messages of a chat owned by userSub.
func (s *ChatService) ListMessages(ctx context.Context, userSub, chatID string) ([]*domain.Message, error) {
	if _, err := s.ownedChat(ctx, userSub, chatID); err != nil {
		return nil, err
	}
	messages, err := s.chats.ListMessages(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return messages, nil
}

// CreateMessage appends a message to a chat owned by userSub.
func (s *ChatService) CreateMessage(ctx context.Context, userSub, chatID, role, content string) (*domain.Message, error) {
	if role == "" || content == "" {
		return nil, domainerrors.Validation("role and content required")
	}
	if _, err := s.ownedChat(ctx, userSub, chatID); err != nil {
		return nil, err
	}
	return s.appendMessage(ctx, chatID, role, content)
}

// Reply sends the chat history to the language model and stores its answer
// as an assistant message.
func (s *ChatService) Reply(ctx context.Context, userSub, chatID string) (*domain.Message, error) {
	if s.completer == nil {
		return nil, domainerrors.Upstream("assistant is not configured", llm.ErrNotConfigured)
	}

	messages, err := s.ListMessages(ctx, userSub, chatID)
	if err != nil {
		return nil, err
	}
	if len(messages) == 0 {
		return nil, domainerrors.Validation("chat has no messages to reply to")
	}

	history := make([]llm.Message, 0, len(messages))
	for _, m := range messages {
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	answer, err := llm.Chat(ctx, s.completer, history)
	if err != nil {
		s.logger.Warn("assistant reply failed", "chat_id", chatID, "error", err)
		return nil, domainerrors.Upstream("failed to get a response from the assistant", err)
	}
	if strings.TrimSpace(answer) == "" {
		return nil, domainerrors.Upstream("assistant returned an empty response", llm.ErrBadResponse)
	}

	return s.appendMessage(ctx, chatID, domain.RoleAssistant, answer)
}

// Mindmap builds a Mermaid mindmap of a chat. The llm mode falls back to the
// heuristic generator when the model fails or answers with invalid syntax.
func (s *ChatService) Mindmap(ctx context.Context, userSub, chatID, mode string) (*Mindmap, error) {
	switch mode {
	case "":
		mode = MindmapHeuristic
	case MindmapHeuristic, MindmapLLM:
	default:
		return nil, domainerrors.Validationf("unknown mindmap mode %q", mode)
	}

	messages, err := s.ListMessages(ctx, userSub, chatID)
	if err != nil {
		return nil, err
	}

	result := &Mindmap{Topic: mindmap.ExtractChatTopic(messages), Mode: MindmapHeuristic}
	if mode == MindmapLLM && s.mindmaps != nil && len(messages) > 0 {
		source, err := s.mindmaps.Generate(ctx, messages)
		if err == nil {
			result.Source = source
			result.Mode = MindmapLLM
			return result, nil
		}
		s.logger.Warn("llm mindmap failed, using heuristic", "chat_id", chatID, "error", err)
	}

	result.Source = mindmap.Generate(messages)
	return result, nil
}

func (s *ChatService) ownedChat(ctx context.Context, userSub, chatID string) (*domain.Chat, error) {
	chat, err := s.chats.GetChat(ctx, userSub, chatID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFound("chat not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get chat: %w", err)
	}
	return chat, nil
}

func (s *ChatService) appendMessage(ctx context.Context, chatID, role, content string) (*domain.Message, error) {
	msgID, err := id.NewMessageID()
	if err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	msg := &domain.Message{
		ID:      msgID,
		ChatID:  chatID,
		Role:    role,
		Content: content,
	}
	if err := s.chats.CreateMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return msg, nil
}
