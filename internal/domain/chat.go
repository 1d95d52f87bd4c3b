package domain

import "time"

// Message roles accepted by the chat proxy.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// DefaultChatTitle is used when a chat is created without a title.
const DefaultChatTitle = "New Chat"

// MaxChatTitleLength bounds stored chat titles, in characters.
const MaxChatTitleLength = 200

// Chat is a conversation owned by one authenticated subject.
type Chat struct {
	ID        string    `json:"id"`
	UserSub   string    `json:"user_sub"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is a single turn in a chat.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NormalizeChatTitle applies the default and length cap to a requested title.
func NormalizeChatTitle(title string) string {
	if title == "" {
		return DefaultChatTitle
	}
	r := []rune(title)
	if len(r) > MaxChatTitleLength {
		return string(r[:MaxChatTitleLength])
	}
	return title
}
