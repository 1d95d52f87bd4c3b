package llm

import (
	"fmt"
	"strings"
)

// CompanionPrompt is prepended to every chat conversation.
const CompanionPrompt = "You are a helpful companion designed for learners with dyslexia. " +
	"Please respond in clear, simple language without using ### symbols, ** bold markers, * italics, or any other markdown formatting. " +
	"Just use plain text with proper spacing between paragraphs. Make your responses easy to read and understand. " +
	"Remember that the learner may have trouble with long words, so use shorter alternatives where possible unless they ask for a detailed answer. " +
	"Do not use bold characters."

// SummaryPrompt instructs the model to summarise a document.
const SummaryPrompt = "You are a helpful educational assistant designed for learners with dyslexia. " +
	"Provide a clear, concise summary of the given text. " +
	"Use simple language without markdown formatting, ### symbols, ** bold markers, or * italics. " +
	"Just use plain text with proper spacing between paragraphs. Make it easy to read and understand."

// SuggestionsPrompt asks for follow-up questions about a document.
const SuggestionsPrompt = `You are a helpful educational assistant. Based on the document content and the current conversation, suggest 3 clear and simple follow-up questions that would help the user better understand the material.

Rules:
- Generate exactly 3 questions
- Keep each question simple and short (under 15 words)
- Make questions relevant to the document content
- Use simple words suitable for learners with dyslexia
- Return ONLY the questions, one per line, without numbering or bullet points
- No markdown or special formatting`

// SummaryRequest returns the user turn asking for a summary of text.
func SummaryRequest(text string) string {
	return "Please provide a clear and concise summary of the following text:\n\n" + text
}

// DocumentPrompt is the system prompt for questions about a document.
func DocumentPrompt(text string) string {
	return fmt.Sprintf("You are a helpful educational assistant designed for learners with dyslexia. "+
		"You are helping the user understand a document. Here is the full text of the document for context:\n\n%s\n\n"+
		"Answer questions about this document clearly and concisely. "+
		"Use simple language without markdown formatting, ### symbols, ** bold markers, or * italics. "+
		"Just use plain text with proper spacing between paragraphs. Make it easy to read and understand.", text)
}

// Transcript renders messages as "User: ..." / "Assistant: ..." paragraphs.
func Transcript(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		speaker := "Assistant"
		if m.Role == RoleUser {
			speaker = "User"
		}
		parts = append(parts, speaker+": "+m.Content)
	}
	return strings.Join(parts, "\n\n")
}

// SuggestionsRequest returns the user turn asking for follow-up questions.
func SuggestionsRequest(text string, history []Message, lastAnswer string) string {
	return fmt.Sprintf("Here is the document text:\n\n%s\n\nHere is our conversation so far:\n\n%s\n\n"+
		"Assistant's last message: %s\n\nPlease suggest 3 follow-up questions that would help clarify the content.",
		text, Transcript(history), lastAnswer)
}

// ParseSuggestions keeps the first three non-empty lines that are not
// numbered or bulleted.
func ParseSuggestions(response string) []string {
	questions := []string{}
	for line := range strings.SplitSeq(response, "\n") {
		q := strings.TrimSpace(line)
		if q == "" || isListMarker(q) {
			continue
		}
		questions = append(questions, q)
		if len(questions) == 3 {
			break
		}
	}
	return questions
}

func isListMarker(s string) bool {
	if s[0] == '-' || s[0] == '*' {
		return true
	}
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > 0 && i < len(s) && s[i] == '.'
}
