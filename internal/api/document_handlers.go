package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lexileapp/lexile-server/internal/llm"
	"github.com/lexileapp/lexile-server/internal/service"
)

// MaxDocumentSize is the largest document accepted for summarising (20 MB).
const MaxDocumentSize = 20 << 20

func (s *Server) registerDocumentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:  "summarizeDocument",
		Method:       http.MethodPost,
		Path:         "/api/summarize",
		Summary:      "Summarize document",
		Description:  "Extracts the text of a PDF, HTML or plain-text upload and summarises it. The Content-Type header selects the parser.",
		Tags:         []string{"Documents"},
		Security:     []map[string][]string{{"bearer": {}}},
		MaxBodyBytes: MaxDocumentSize,
	}, s.handleSummarize)

	huma.Register(s.api, huma.Operation{
		OperationID: "askDocument",
		Method:      http.MethodPost,
		Path:        "/api/summarize/ask",
		Summary:     "Ask about a document",
		Description: "Answers a question about previously extracted document text",
		Tags:        []string{"Documents"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAskDocument)
}

// === DTOs ===

// SummarizeInput carries the raw document.
type SummarizeInput struct {
	ContentType string `header:"Content-Type" doc:"application/pdf, text/html or text/plain"`
	RawBody     []byte
}

// SummarizeOutput wraps the summary for Huma.
type SummarizeOutput struct {
	Body *service.Summary
}

// ChatTurn is one prior exchange about a document.
type ChatTurn struct {
	Role    string `json:"role" enum:"user,assistant" doc:"Speaker"`
	Content string `json:"content" doc:"Message text"`
}

// AskDocumentInput wraps a question about a document.
type AskDocumentInput struct {
	Body struct {
		Text     string     `json:"text" doc:"Extracted document text"`
		Question string     `json:"question" doc:"The question to answer"`
		History  []ChatTurn `json:"history,omitempty" doc:"Earlier questions and answers"`
	}
}

// AskDocumentOutput wraps the answer for Huma.
type AskDocumentOutput struct {
	Body *service.Answer
}

// === Handlers ===

func (s *Server) handleSummarize(ctx context.Context, input *SummarizeInput) (*SummarizeOutput, error) {
	if _, err := RequireSubject(ctx); err != nil {
		return nil, err
	}

	summary, err := s.services.Documents.Summarize(ctx, input.ContentType, input.RawBody)
	if err != nil {
		return nil, err
	}
	return &SummarizeOutput{Body: summary}, nil
}

func (s *Server) handleAskDocument(ctx context.Context, input *AskDocumentInput) (*AskDocumentOutput, error) {
	if _, err := RequireSubject(ctx); err != nil {
		return nil, err
	}

	history := make([]llm.Message, 0, len(input.Body.History))
	for _, turn := range input.Body.History {
		history = append(history, llm.Message{Role: turn.Role, Content: turn.Content})
	}

	answer, err := s.services.Documents.Ask(ctx, input.Body.Text, history, input.Body.Question)
	if err != nil {
		return nil, err
	}
	return &AskDocumentOutput{Body: answer}, nil
}
