package tts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexileapp/lexile-server/internal/config"
)

const voicesJSON = `{"voices":[
	{"voice_id":"v-rachel","name":"Rachel"},
	{"id":"v-mark","name":"Mark - Natural Conversations"},
	{"_id":"v-old","voice_name":"Legacy Voice"}
]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := New(config.TTSConfig{APIKey: "xi-test", BaseURL: server.URL, Model: "eleven_multilingual_v1"}, nil)
	t.Cleanup(client.Close)
	return client
}

func TestListVoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/voices", r.URL.Path)
		assert.Equal(t, "xi-test", r.Header.Get("xi-api-key"))
		w.Write([]byte(voicesJSON))
	})

	voices, err := client.ListVoices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Voice{
		{ID: "v-rachel", Name: "Rachel"},
		{ID: "v-mark", Name: "Mark - Natural Conversations"},
		{ID: "v-old", Name: "Legacy Voice"},
	}, voices)
}

func TestSynthesize(t *testing.T) {
	var got synthesisRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/text-to-speech/v-rachel", r.URL.Path)
		assert.Equal(t, AudioContentType, r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", AudioContentType)
		w.Write([]byte("ID3audio"))
	})

	audio, err := client.Synthesize(context.Background(), "Hello reader", "v-rachel")
	require.NoError(t, err)
	assert.Equal(t, []byte("ID3audio"), audio)

	assert.Equal(t, "Hello reader", got.Text)
	assert.Equal(t, "eleven_multilingual_v1", got.ModelID)
	assert.Equal(t, 0.25, got.VoiceSettings.Stability)
	assert.Equal(t, 0.95, got.VoiceSettings.SimilarityBoost)
}

func TestSynthesize_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantErr error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"unknown voice", http.StatusNotFound, ErrNotFound},
		{"quota", http.StatusTooManyRequests, ErrRateLimited},
		{"server", http.StatusInternalServerError, ErrServer},
		{"bad request", http.StatusUnprocessableEntity, ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"detail":"nope"}`))
			})

			_, err := client.Synthesize(context.Background(), "text", "v1")
			require.ErrorIs(t, err, tt.wantErr)

			var ttsErr *Error
			require.True(t, errors.As(err, &ttsErr))
			assert.Equal(t, tt.status, ttsErr.Status)
			assert.Equal(t, "v1", ttsErr.Voice)
		})
	}
}

func TestSynthesize_EmptyText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})

	_, err := client.Synthesize(context.Background(), "   ", "v1")
	assert.ErrorIs(t, err, ErrEmptyText)
}

func TestNotConfigured(t *testing.T) {
	client := New(config.TTSConfig{}, nil)
	defer client.Close()

	_, err := client.ListVoices(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}
