package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexileapp/lexile-server/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(config.LLMConfig{
		APIKey:    "test-key",
		BaseURL:   server.URL + "/",
		ChatModel: "test/model",
		Referer:   "https://lexile.test",
		Title:     "Lexile",
	}, nil)
	t.Cleanup(client.Close)
	return client
}

func TestComplete_Success(t *testing.T) {
	var got completionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://lexile.test", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "Lexile", r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello there"}}]}`))
	})

	text, err := client.Complete(context.Background(), Request{
		Messages: []Message{{Role: RoleUser, Content: "hi"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)

	assert.Equal(t, "test/model", got.Model)
	assert.Equal(t, DefaultTemperature, got.Temperature)
	assert.Equal(t, DefaultMaxTokens, got.MaxTokens)
	assert.Equal(t, DefaultTopP, got.TopP)
}

func TestComplete_Overrides(t *testing.T) {
	var got completionRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	})

	_, err := client.Complete(context.Background(), Request{Model: "other", Temperature: 0.3, MaxTokens: 500})
	require.NoError(t, err)
	assert.Equal(t, "other", got.Model)
	assert.Equal(t, 0.3, got.Temperature)
	assert.Equal(t, 500, got.MaxTokens)
}

func TestComplete_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  error
		wantText string
	}{
		{"provider message", http.StatusBadRequest, `{"error":{"message":"model not found"}}`, ErrBadRequest, "model not found"},
		{"raw body", http.StatusBadGateway, `upstream down`, ErrServer, "upstream down"},
		{"unauthorized", http.StatusUnauthorized, `{}`, ErrUnauthorized, "401"},
		{"rate limited", http.StatusTooManyRequests, `{}`, ErrRateLimited, "429"},
		{"no choices", http.StatusOK, `{"choices":[]}`, ErrBadResponse, ""},
		{"no message", http.StatusOK, `{"choices":[{}]}`, ErrBadResponse, ""},
		{"not json", http.StatusOK, `<html>`, ErrBadResponse, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := client.Complete(context.Background(), Request{})
			require.ErrorIs(t, err, tt.wantErr)

			var llmErr *Error
			require.ErrorAs(t, err, &llmErr)
			assert.Equal(t, "complete", llmErr.Op)
			assert.Contains(t, err.Error(), tt.wantText)
		})
	}
}

func TestComplete_NotConfigured(t *testing.T) {
	client := New(config.LLMConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	defer client.Close()

	_, err := client.Complete(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.False(t, client.Configured())
}

type recordingCompleter struct {
	req   Request
	reply string
	err   error
}

func (r *recordingCompleter) Complete(_ context.Context, req Request) (string, error) {
	r.req = req
	return r.reply, r.err
}

func TestChat_PrependsCompanionPrompt(t *testing.T) {
	rec := &recordingCompleter{reply: "answer"}
	history := []Message{{Role: RoleUser, Content: "What is a noun?"}}

	got, err := Chat(context.Background(), rec, history)
	require.NoError(t, err)
	assert.Equal(t, "answer", got)

	require.Len(t, rec.req.Messages, 2)
	assert.Equal(t, RoleSystem, rec.req.Messages[0].Role)
	assert.Equal(t, CompanionPrompt, rec.req.Messages[0].Content)
	assert.Equal(t, history[0], rec.req.Messages[1])
}

func TestParseSuggestions(t *testing.T) {
	in := "1. Numbered one\nWhat is photosynthesis?\n\n- bullet\n* star\n  Why do leaves change colour?  \nHow do roots drink water?\nA fourth question?"

	assert.Equal(t, []string{
		"What is photosynthesis?",
		"Why do leaves change colour?",
		"How do roots drink water?",
	}, ParseSuggestions(in))

	assert.Empty(t, ParseSuggestions(""))
	assert.Equal(t, []string{"2024 was a year"}, ParseSuggestions("2024 was a year"))
}

func TestTranscript(t *testing.T) {
	got := Transcript([]Message{
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	assert.Equal(t, "User: hi\n\nAssistant: hello", got)
}
