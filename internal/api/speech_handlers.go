package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lexileapp/lexile-server/internal/tts"
)

func (s *Server) registerSpeechRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "synthesizeSpeech",
		Method:      http.MethodPost,
		Path:        "/api/tts",
		Summary:     "Synthesize speech",
		Description: "Returns MP3 audio for the text. On provider failure the error details carry fallback=speech-synthesis.",
		Tags:        []string{"Speech"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSynthesize)

	huma.Register(s.api, huma.Operation{
		OperationID: "listVoices",
		Method:      http.MethodGet,
		Path:        "/api/tts/voices",
		Summary:     "List voices",
		Description: "Returns the available voices and the caller's preferred voice",
		Tags:        []string{"Speech"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListVoices)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPreferredVoice",
		Method:      http.MethodPut,
		Path:        "/api/tts/voice",
		Summary:     "Set preferred voice",
		Description: "Stores a voice id or display name; names are resolved on first use",
		Tags:        []string{"Speech"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetVoice)
}

// === DTOs ===

// SynthesizeInput wraps a synthesis request.
type SynthesizeInput struct {
	Body struct {
		Text  string `json:"text" maxLength:"5000" doc:"Text to speak"`
		Voice string `json:"voice,omitempty" doc:"Voice id or display name; defaults to the preferred voice"`
	}
}

// SynthesizeOutput is raw audio.
type SynthesizeOutput struct {
	ContentType string `header:"Content-Type"`
	VoiceID     string `header:"X-Voice-Id"`
	Body        []byte
}

// VoicesOutput wraps the voice list for Huma.
type VoicesOutput struct {
	Body struct {
		Voices    []tts.Voice `json:"voices" doc:"Available voices"`
		Preferred string      `json:"preferred" doc:"Caller's preferred voice"`
	}
}

// SetVoiceInput wraps a voice preference.
type SetVoiceInput struct {
	Body struct {
		Voice string `json:"voice" minLength:"1" doc:"Voice id or display name"`
	}
}

// SetVoiceOutput echoes the stored preference.
type SetVoiceOutput struct {
	Body struct {
		Preferred string `json:"preferred"`
	}
}

// === Handlers ===

func (s *Server) handleSynthesize(ctx context.Context, input *SynthesizeInput) (*SynthesizeOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	speech, err := s.services.Speech.Synthesize(ctx, sub, input.Body.Text, input.Body.Voice)
	if err != nil {
		return nil, err
	}
	return &SynthesizeOutput{
		ContentType: speech.ContentType,
		VoiceID:     speech.Voice,
		Body:        speech.Audio,
	}, nil
}

func (s *Server) handleListVoices(ctx context.Context, _ *struct{}) (*VoicesOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	voices, err := s.services.Speech.ListVoices(ctx)
	if err != nil {
		return nil, err
	}

	out := &VoicesOutput{}
	out.Body.Voices = voices
	out.Body.Preferred = s.services.Speech.PreferredVoice(ctx, sub)
	return out, nil
}

func (s *Server) handleSetVoice(ctx context.Context, input *SetVoiceInput) (*SetVoiceOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Speech.SetPreferredVoice(ctx, sub, input.Body.Voice); err != nil {
		return nil, err
	}

	out := &SetVoiceOutput{}
	out.Body.Preferred = s.services.Speech.PreferredVoice(ctx, sub)
	return out, nil
}
