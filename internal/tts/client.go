// Package tts is a client for the ElevenLabs text-to-speech API.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lexileapp/lexile-server/internal/config"
	"github.com/lexileapp/lexile-server/internal/ratelimit"
)

const (
	// Rate limit: 2 requests per second, burst of 4
	defaultRPS   = 2.0
	defaultBurst = 4

	// HTTP client settings
	defaultTimeout = 60 * time.Second

	// Voice settings tuned for natural sounding speech.
	defaultStability       = 0.25
	defaultSimilarityBoost = 0.95

	// FallbackVoice is used when no voice can be resolved.
	FallbackVoice = "alloy"

	// AudioContentType is the type of synthesized audio.
	AudioContentType = "audio/mpeg"

	limiterKey = "elevenlabs"
)

// Voice is an available voice.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client is a rate-limited ElevenLabs client.
type Client struct {
	http    *http.Client
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger

	baseURL string
	apiKey  string
	model   string
}

// New creates a new client.
func New(cfg config.TTSConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
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

type rawVoice struct {
	VoiceID   string `json:"voice_id"`
	ID        string `json:"id"`
	AltID     string `json:"_id"`
	Name      string `json:"name"`
	VoiceName string `json:"voice_name"`
}

// ListVoices returns the voices available to the account.
func (c *Client) ListVoices(ctx context.Context) ([]Voice, error) {
	const op = "listVoices"

	body, err := c.do(ctx, op, "", http.MethodGet, "/voices", nil, "application/json")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Voices []rawVoice `json:"voices"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, wrapError(op, "", 0, "", fmt.Errorf("decode voices: %w", err))
	}

	voices := make([]Voice, 0, len(resp.Voices))
	for _, v := range resp.Voices {
		voices = append(voices, Voice{
			ID:   firstNonEmpty(v.VoiceID, v.ID, v.AltID),
			Name: firstNonEmpty(v.Name, v.VoiceName),
		})
	}
	return voices, nil
}

type synthesisRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id,omitempty"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize renders text with voiceID and returns MP3 audio.
func (c *Client) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	const op = "synthesize"

	if strings.TrimSpace(text) == "" {
		return nil, wrapError(op, voiceID, 0, "", ErrEmptyText)
	}

	payload, err := json.Marshal(synthesisRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: voiceSettings{
			Stability:       defaultStability,
			SimilarityBoost: defaultSimilarityBoost,
		},
	})
	if err != nil {
		return nil, wrapError(op, voiceID, 0, "", fmt.Errorf("encode request: %w", err))
	}

	path := "/text-to-speech/" + url.PathEscape(voiceID)
	return c.do(ctx, op, voiceID, http.MethodPost, path, payload, AudioContentType)
}

func (c *Client) do(ctx context.Context, op, voice, method, path string, payload []byte, accept string) ([]byte, error) {
	if !c.Configured() {
		return nil, wrapError(op, voice, 0, "", ErrNotConfigured)
	}
	if err := c.limiter.Wait(ctx, limiterKey); err != nil {
		return nil, wrapError(op, voice, 0, "", fmt.Errorf("rate limit wait: %w", err))
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, wrapError(op, voice, 0, "", fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", accept)
	req.Header.Set("xi-api-key", c.apiKey)

	c.logger.Debug("tts request", "op", op, "voice", voice)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError(op, voice, 0, "", fmt.Errorf("execute request: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapError(op, voice, resp.StatusCode, "", fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, wrapError(op, voice, resp.StatusCode, strings.TrimSpace(string(body)), statusError(resp.StatusCode))
	}
	return body, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
