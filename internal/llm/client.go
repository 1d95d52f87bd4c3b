// Package llm is a client for an OpenRouter-compatible chat-completions API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lexileapp/lexile-server/internal/config"
	"github.com/lexileapp/lexile-server/internal/ratelimit"
)

const (
	// HTTP client settings
	defaultTimeout = 90 * time.Second

	// Generation defaults
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
	DefaultTopP        = 1.0

	limiterKey = "completions"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a completion request. Zero values take the client defaults.
type Request struct {
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Completer produces assistant text for a conversation.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Client is a rate-limited chat-completions client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger

	baseURL string
	apiKey  string
	model   string
	referer string
	title   string
}

// New creates a new client.
func New(cfg config.LLMConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.PerMinute(cfg.RequestsPerMinute),
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.ChatModel,
		referer: cfg.Referer,
		title:   cfg.Title,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Shutdown implements do.Shutdownable.
func (c *Client) Shutdown() error {
	c.Close()
	return nil
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
}

type completionResponse struct {
	Choices []struct {
		Message *Message `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the conversation and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, req Request) (string, error) {
	const op = "complete"

	if !c.Configured() {
		return "", wrapError(op, 0, "", ErrNotConfigured)
	}
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return "", wrapError(op, 0, "", fmt.Errorf("rate limit wait: %w", err))
	}

	payload, err := json.Marshal(c.withDefaults(req))
	if err != nil {
		return "", wrapError(op, 0, "", fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", wrapError(op, 0, "", fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	if c.referer != "" {
		httpReq.Header.Set("HTTP-Referer", c.referer)
	}
	if c.title != "" {
		httpReq.Header.Set("X-Title", c.title)
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", wrapError(op, 0, "", fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", wrapError(op, resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("llm request",
		"model", req.Model,
		"messages", len(req.Messages),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		return "", wrapError(op, resp.StatusCode, providerMessage(body), statusError(resp.StatusCode))
	}

	var out completionResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", wrapError(op, resp.StatusCode, "", fmt.Errorf("%w: %w", ErrBadResponse, err))
	}
	if len(out.Choices) == 0 || out.Choices[0].Message == nil {
		return "", wrapError(op, resp.StatusCode, "", ErrBadResponse)
	}
	return out.Choices[0].Message.Content, nil
}

func (c *Client) withDefaults(req Request) completionRequest {
	out := completionRequest{
		Model:       req.Model,
		Messages:    req.Messages,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
		TopP:        req.TopP,
	}
	if out.Model == "" {
		out.Model = c.model
	}
	if out.Temperature == 0 {
		out.Temperature = DefaultTemperature
	}
	if out.MaxTokens == 0 {
		out.MaxTokens = DefaultMaxTokens
	}
	if out.TopP == 0 {
		out.TopP = DefaultTopP
	}
	return out
}

// providerMessage extracts error.message, or returns the raw body.
func providerMessage(body []byte) string {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return strings.TrimSpace(string(body))
}

func statusError(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

// Chat answers a conversation with the companion prompt prepended.
func Chat(ctx context.Context, c Completer, history []Message) (string, error) {
	messages := make([]Message, 0, len(history)+1)
	messages = append(messages, Message{Role: RoleSystem, Content: CompanionPrompt})
	messages = append(messages, history...)
	return c.Complete(ctx, Request{Messages: messages})
}
