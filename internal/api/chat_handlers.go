package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/service"
)

func (s *Server) registerChatRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listChats",
		Method:      http.MethodGet,
		Path:        "/api/chats",
		Summary:     "List chats",
		Description: "Returns the caller's chats, most recently updated first",
		Tags:        []string{"Chats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListChats)

	huma.Register(s.api, huma.Operation{
		OperationID: "createChat",
		Method:      http.MethodPost,
		Path:        "/api/chats",
		Summary:     "Create chat",
		Description: "Creates a chat owned by the caller",
		Tags:        []string{"Chats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateChat)

	huma.Register(s.api, huma.Operation{
		OperationID: "listMessages",
		Method:      http.MethodGet,
		Path:        "/api/chats/{id}/messages",
		Summary:     "List messages",
		Description: "Returns a chat's messages, oldest first",
		Tags:        []string{"Chats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMessages)

	huma.Register(s.api, huma.Operation{
		OperationID: "createMessage",
		Method:      http.MethodPost,
		Path:        "/api/chats/{id}/messages",
		Summary:     "Create message",
		Description: "Appends a message to one of the caller's chats",
		Tags:        []string{"Chats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateMessage)

	huma.Register(s.api, huma.Operation{
		OperationID: "replyToChat",
		Method:      http.MethodPost,
		Path:        "/api/chats/{id}/reply",
		Summary:     "Assistant reply",
		Description: "Sends the chat history to the assistant and stores its answer",
		Tags:        []string{"Chats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReply)

	huma.Register(s.api, huma.Operation{
		OperationID: "chatMindmap",
		Method:      http.MethodGet,
		Path:        "/api/chats/{id}/mindmap",
		Summary:     "Chat mindmap",
		Description: "Returns Mermaid mindmap source summarising the chat",
		Tags:        []string{"Chats"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMindmap)
}

// === DTOs ===

// ChatResponse contains chat data in API responses.
type ChatResponse struct {
	ID        string    `json:"id" doc:"Chat ID"`
	UserSub   string    `json:"user_sub" doc:"Owning subject"`
	Title     string    `json:"title" doc:"Chat title"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Time of the latest message"`
}

// MessageResponse contains message data in API responses.
type MessageResponse struct {
	ID        string    `json:"id" doc:"Message ID"`
	ChatID    string    `json:"chat_id" doc:"Parent chat ID"`
	Role      string    `json:"role" doc:"user, assistant or system"`
	Content   string    `json:"content" doc:"Message text"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
}

// ListChatsOutput wraps the chat list for Huma.
type ListChatsOutput struct {
	Body struct {
		Chats []ChatResponse `json:"chats" doc:"Caller's chats"`
	}
}

// CreateChatInput wraps the create chat request for Huma.
type CreateChatInput struct {
	Body struct {
		Title string `json:"title,omitempty" doc:"Chat title; defaults to New Chat and is cut to 200 characters"`
	} `required:"false"`
}

// ChatOutput wraps a single chat for Huma.
type ChatOutput struct {
	Body struct {
		Chat ChatResponse `json:"chat"`
	}
}

// ChatPathInput addresses a chat.
type ChatPathInput struct {
	ID string `path:"id" doc:"Chat ID"`
}

// ListMessagesOutput wraps the message list for Huma.
type ListMessagesOutput struct {
	Body struct {
		Messages []MessageResponse `json:"messages" doc:"Messages, oldest first"`
	}
}

// CreateMessageInput wraps the create message request for Huma.
// Role and content are checked by the service so a missing field answers
// with the same message as an empty one.
type CreateMessageInput struct {
	ID   string `path:"id" doc:"Chat ID"`
	Body struct {
		Role    string `json:"role,omitempty" required:"false" doc:"user, assistant or system"`
		Content string `json:"content,omitempty" required:"false" doc:"Message text"`
	}
}

// MessageOutput wraps a single message for Huma.
type MessageOutput struct {
	Body struct {
		Message MessageResponse `json:"message"`
	}
}

// MindmapInput selects the mindmap generator.
type MindmapInput struct {
	ID   string `path:"id" doc:"Chat ID"`
	Mode string `query:"mode" enum:"heuristic,llm" default:"heuristic" doc:"Generator to use"`
}

// MindmapOutput wraps a mindmap for Huma.
type MindmapOutput struct {
	Body service.Mindmap
}

// === Handlers ===

func (s *Server) handleListChats(ctx context.Context, _ *struct{}) (*ListChatsOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	chats, err := s.services.Chat.ListChats(ctx, sub)
	if err != nil {
		return nil, err
	}

	out := &ListChatsOutput{}
	out.Body.Chats = make([]ChatResponse, 0, len(chats))
	for _, c := range chats {
		out.Body.Chats = append(out.Body.Chats, toChatResponse(c))
	}
	return out, nil
}

func (s *Server) handleCreateChat(ctx context.Context, input *CreateChatInput) (*ChatOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	chat, err := s.services.Chat.CreateChat(ctx, sub, input.Body.Title)
	if err != nil {
		return nil, err
	}

	out := &ChatOutput{}
	out.Body.Chat = toChatResponse(chat)
	return out, nil
}

func (s *Server) handleListMessages(ctx context.Context, input *ChatPathInput) (*ListMessagesOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	messages, err := s.services.Chat.ListMessages(ctx, sub, input.ID)
	if err != nil {
		return nil, err
	}

	out := &ListMessagesOutput{}
	out.Body.Messages = make([]MessageResponse, 0, len(messages))
	for _, m := range messages {
		out.Body.Messages = append(out.Body.Messages, toMessageResponse(m))
	}
	return out, nil
}

func (s *Server) handleCreateMessage(ctx context.Context, input *CreateMessageInput) (*MessageOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := s.services.Chat.CreateMessage(ctx, sub, input.ID, input.Body.Role, input.Body.Content)
	if err != nil {
		return nil, err
	}

	out := &MessageOutput{}
	out.Body.Message = toMessageResponse(msg)
	return out, nil
}

func (s *Server) handleReply(ctx context.Context, input *ChatPathInput) (*MessageOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	msg, err := s.services.Chat.Reply(ctx, sub, input.ID)
	if err != nil {
		return nil, err
	}

	out := &MessageOutput{}
	out.Body.Message = toMessageResponse(msg)
	return out, nil
}

func (s *Server) handleMindmap(ctx context.Context, input *MindmapInput) (*MindmapOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	mm, err := s.services.Chat.Mindmap(ctx, sub, input.ID, input.Mode)
	if err != nil {
		return nil, err
	}
	return &MindmapOutput{Body: *mm}, nil
}

func toChatResponse(c *domain.Chat) ChatResponse {
	return ChatResponse{
		ID:        c.ID,
		UserSub:   c.UserSub,
		Title:     c.Title,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		ID:        m.ID,
		ChatID:    m.ChatID,
		Role:      m.Role,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
}
