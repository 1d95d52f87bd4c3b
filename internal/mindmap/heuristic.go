// Package mindmap turns a chat conversation into Mermaid mindmap source.
package mindmap

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/lexileapp/lexile-server/internal/domain"
)

// Truncation limits, in characters.
const (
	maxQuestionLength = 100
	maxAnswerLength   = 150
	maxPointLength    = 80
	maxLabelLength    = 100
	maxTopicLength    = 50
	minPointLength    = 10
	maxKeyPoints      = 3
)

// EmptyMindmap is returned for a conversation with no messages.
const EmptyMindmap = "mindmap\n  root((Chat Mindmap))\n    No messages yet"

// DefaultTopic names a conversation without user messages.
const DefaultTopic = "Chat Conversation"

var (
	sentencePattern = regexp.MustCompile(`[^.!?]+[.!?]+`)
	syntaxChars     = strings.NewReplacer("#", "", "[", "", "]", "", "{", "", "}", "", "(", "", ")", "")
)

type topic struct {
	question string
	answer   string
}

// Generate builds a mindmap with one branch per answered question and up to
// three key points from each answer beneath it.
func Generate(messages []*domain.Message) string {
	if len(messages) == 0 {
		return EmptyMindmap
	}

	var topics []topic
	question := ""
	for _, m := range messages {
		switch {
		case m.Role == domain.RoleUser:
			question = truncate(m.Content, maxQuestionLength)
		case m.Role == domain.RoleAssistant && question != "":
			topics = append(topics, topic{question: question, answer: truncate(m.Content, maxAnswerLength)})
		}
	}

	var sb strings.Builder
	sb.WriteString("mindmap\n  root((Chat Overview))\n")
	if len(topics) == 0 {
		sb.WriteString("    \"No conversation yet\"\n")
		return sb.String()
	}

	for _, t := range topics {
		sb.WriteString("    \"" + Sanitize(t.question) + "\"\n")
		for _, point := range keyPoints(t.answer) {
			sb.WriteString("      \"" + Sanitize(point) + "\"\n")
		}
	}
	return sb.String()
}

// ExtractChatTopic returns a short title from the first user message.
func ExtractChatTopic(messages []*domain.Message) string {
	for _, m := range messages {
		if m.Role == domain.RoleUser {
			return truncate(Sanitize(m.Content), maxTopicLength)
		}
	}
	return DefaultTopic
}

// keyPoints returns up to three leading sentences longer than ten characters.
// Text without sentence punctuation is one sentence.
func keyPoints(text string) []string {
	sentences := sentencePattern.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{text}
	}
	if len(sentences) > maxKeyPoints {
		sentences = sentences[:maxKeyPoints]
	}

	var points []string
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if len([]rune(s)) <= minPointLength {
			continue
		}
		points = append(points, truncate(s, maxPointLength))
	}
	return points
}

// Sanitize makes text safe inside a quoted Mermaid label: double quotes
// become single quotes, Mermaid shape characters are dropped, whitespace runs
// collapse to one space, and the result is capped at 100 characters.
func Sanitize(text string) string {
	text = norm.NFC.String(text)
	text = strings.ReplaceAll(text, `"`, "'")
	text = syntaxChars.Replace(text)
	text = strings.Join(strings.Fields(text), " ")
	return truncate(text, maxLabelLength)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
