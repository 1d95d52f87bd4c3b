// Package search provides full-text search over chat messages using Bleve.
// Every query is scoped to one authenticated subject.
package search

import (
	"github.com/lexileapp/lexile-server/internal/domain"
)

// MessageDocument is the indexed form of a chat message.
type MessageDocument struct {
	ID        string `json:"id"`
	UserSub   string `json:"user_sub"`
	ChatID    string `json:"chat_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedAt int64  `json:"created_at"` // Unix millis
}

// NewMessageDocument builds the index document for a message owned by userSub.
func NewMessageDocument(userSub string, msg *domain.Message) *MessageDocument {
	return &MessageDocument{
		ID:        msg.ID,
		UserSub:   userSub,
		ChatID:    msg.ChatID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt.UnixMilli(),
	}
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
func (d *MessageDocument) ToMap() map[string]any {
	return map[string]any{
		"id":         d.ID,
		"user_sub":   d.UserSub,
		"chat_id":    d.ChatID,
		"role":       d.Role,
		"content":    d.Content,
		"created_at": d.CreatedAt,
	}
}
