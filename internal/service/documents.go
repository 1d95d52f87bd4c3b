package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lexileapp/lexile-server/internal/domain"
	domainerrors "github.com/lexileapp/lexile-server/internal/errors"
	"github.com/lexileapp/lexile-server/internal/llm"
	"github.com/lexileapp/lexile-server/internal/summarizer"
)

// Summary is the result of summarising an uploaded document.
type Summary struct {
	Kind        string   `json:"kind"`
	Text        string   `json:"text"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// Answer is the model's reply to a question about a document.
type Answer struct {
	Answer      string   `json:"answer"`
	Suggestions []string `json:"suggestions"`
}

// DocumentService summarises documents and answers questions about them.
type DocumentService struct {
	summarizer *summarizer.Summarizer
	logger     *slog.Logger
}

// NewDocumentService creates a document service.
func NewDocumentService(s *summarizer.Summarizer, logger *slog.Logger) *DocumentService {
	return &DocumentService{summarizer: s, logger: logger}
}

// Summarize extracts the text of a PDF, HTML or plain-text document and
// summarises it.
func (s *DocumentService) Summarize(ctx context.Context, contentType string, data []byte) (*Summary, error) {
	if len(data) == 0 {
		return nil, domainerrors.Validation("document is empty")
	}

	kind, err := summarizer.DetectKind(contentType, data)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "unsupported document type")
	}

	text, err := summarizer.ExtractText(contentType, data)
	switch {
	case errors.Is(err, summarizer.ErrNoText):
		return nil, domainerrors.Validation(summarizer.ErrNoText.Error())
	case err != nil:
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "failed to read document")
	}

	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		s.logger.Warn("document summary failed", "kind", kind, "error", err)
		return nil, domainerrors.Upstream("failed to summarize document", err)
	}

	return &Summary{
		Kind:        kind,
		Text:        text,
		Summary:     summary,
		Suggestions: s.summarizer.SuggestQuestions(ctx, text, nil, summary),
	}, nil
}

// Ask answers question about text, continuing history.
func (s *DocumentService) Ask(ctx context.Context, text string, history []llm.Message, question string) (*Answer, error) {
	question = strings.TrimSpace(question)
	if strings.TrimSpace(text) == "" || question == "" {
		return nil, domainerrors.Validation("text and question required")
	}
	for _, m := range history {
		if m.Role != domain.RoleUser && m.Role != domain.RoleAssistant {
			return nil, domainerrors.Validationf("invalid history role %q", m.Role)
		}
	}

	answer, err := s.summarizer.Ask(ctx, text, history, question)
	if err != nil {
		s.logger.Warn("document question failed", "error", err)
		return nil, domainerrors.Upstream("failed to answer question", err)
	}

	convo := append(append([]llm.Message{}, history...), llm.Message{Role: llm.RoleUser, Content: question})
	return &Answer{
		Answer:      answer,
		Suggestions: s.summarizer.SuggestQuestions(ctx, text, convo, answer),
	}, nil
}
