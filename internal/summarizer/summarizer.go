// Package summarizer extracts text from uploaded documents and asks a
// language model to summarise them and answer questions about them.
package summarizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lexileapp/lexile-server/internal/llm"
)

const suggestionsMaxTokens = 500

// Summarizer talks to the model about one document at a time.
type Summarizer struct {
	completer llm.Completer
	model     string
	logger    *slog.Logger
}

// New creates a Summarizer. An empty model uses the completer's default.
func New(completer llm.Completer, model string, logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Summarizer{completer: completer, model: model, logger: logger}
}

// Summarize returns a plain-language summary of text.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	out, err := s.completer.Complete(ctx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: llm.SummaryPrompt},
			{Role: llm.RoleUser, Content: llm.SummaryRequest(text)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return out, nil
}

// Ask answers question about the document text given the conversation so far.
func (s *Summarizer) Ask(ctx context.Context, text string, history []llm.Message, question string) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: llm.DocumentPrompt(text)})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: question})

	out, err := s.completer.Complete(ctx, llm.Request{Model: s.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("ask: %w", err)
	}
	return out, nil
}

// SuggestQuestions proposes up to three follow-up questions. Failures yield
// no suggestions.
func (s *Summarizer) SuggestQuestions(ctx context.Context, text string, history []llm.Message, lastAnswer string) []string {
	out, err := s.completer.Complete(ctx, llm.Request{
		Model: s.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: llm.SuggestionsPrompt},
			{Role: llm.RoleUser, Content: llm.SuggestionsRequest(text, history, lastAnswer)},
		},
		MaxTokens: suggestionsMaxTokens,
	})
	if err != nil {
		s.logger.Warn("failed to generate suggested questions", "error", err)
		return []string{}
	}
	return llm.ParseSuggestions(out)
}
