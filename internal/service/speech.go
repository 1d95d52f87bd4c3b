package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	domainerrors "github.com/lexileapp/lexile-server/internal/errors"
	"github.com/lexileapp/lexile-server/internal/preferences"
	"github.com/lexileapp/lexile-server/internal/store"
	"github.com/lexileapp/lexile-server/internal/tts"
)

// KeyPreferredVoice holds a profile's preferred voice, either a voice id or a
// display name that is resolved on first use.
const KeyPreferredVoice = "eleven_preferred_voice"

// SpeechFallback is reported to clients when synthesis fails so they can
// switch to local speech synthesis.
const SpeechFallback = "speech-synthesis"

// Synthesizer turns text into audio with a named voice.
type Synthesizer interface {
	tts.VoiceLister
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}

// Speech is synthesized audio and the voice that produced it.
type Speech struct {
	Audio       []byte
	ContentType string
	Voice       string
}

// SpeechService synthesizes speech with a per-profile preferred voice.
type SpeechService struct {
	tts          Synthesizer
	profiles     preferences.Scoper
	defaultVoice string
	logger       *slog.Logger
}

// NewSpeechService creates a speech service. defaultVoice seeds profiles that
// have not chosen a voice.
func NewSpeechService(synth Synthesizer, profiles preferences.Scoper, defaultVoice string, logger *slog.Logger) *SpeechService {
	return &SpeechService{
		tts:          synth,
		profiles:     profiles,
		defaultVoice: defaultVoice,
		logger:       logger,
	}
}

// ListVoices returns the voices the provider offers.
func (s *SpeechService) ListVoices(ctx context.Context) ([]tts.Voice, error) {
	voices, err := s.tts.ListVoices(ctx)
	if err != nil {
		return nil, domainerrors.Upstream("failed to list voices", err)
	}
	return voices, nil
}

// PreferredVoice returns the stored preference for profile, or the default.
func (s *SpeechService) PreferredVoice(ctx context.Context, profile string) string {
	data, err := s.profiles.Scope(profile).Get(ctx, KeyPreferredVoice)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to read preferred voice", "profile", profile, "error", err)
		}
		return s.defaultVoice
	}
	if v := strings.TrimSpace(string(data)); v != "" {
		return v
	}
	return s.defaultVoice
}

// SetPreferredVoice stores a voice id or display name for profile.
func (s *SpeechService) SetPreferredVoice(ctx context.Context, profile, voice string) error {
	voice = strings.TrimSpace(voice)
	if voice == "" {
		return domainerrors.Validation("voice is required")
	}
	if err := s.profiles.Scope(profile).Set(ctx, KeyPreferredVoice, []byte(voice)); err != nil {
		return domainerrors.Internal("failed to save preferred voice").WithCause(err)
	}
	return nil
}

// ResolveVoice picks the voice id for a request. An explicit voice wins over
// the stored preference. A resolved id is persisted so later calls skip the
// voice lookup. When nothing resolves, the first listed voice is used.
func (s *SpeechService) ResolveVoice(ctx context.Context, profile, requested string) string {
	pref := strings.TrimSpace(requested)
	if pref == "" {
		pref = s.PreferredVoice(ctx, profile)
	}

	if resolved := tts.ResolveVoice(ctx, s.tts, pref); resolved != "" {
		if resolved != pref || requested != "" {
			s.persistVoice(ctx, profile, resolved)
		}
		return resolved
	}

	if pref != "" {
		s.logger.Debug("voice preference did not resolve", "profile", profile, "voice", pref)
	}
	return tts.DefaultVoice(ctx, s.tts)
}

// Synthesize renders text with the profile's voice.
func (s *SpeechService) Synthesize(ctx context.Context, profile, text, voice string) (*Speech, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domainerrors.Validation("text is required")
	}

	voiceID := s.ResolveVoice(ctx, profile, voice)
	audio, err := s.tts.Synthesize(ctx, text, voiceID)
	if err != nil {
		s.logger.Warn("speech synthesis failed", "voice", voiceID, "error", err)
		return nil, domainerrors.Upstream("speech synthesis failed", err).
			WithDetails(map[string]string{"fallback": SpeechFallback})
	}

	return &Speech{
		Audio:       audio,
		ContentType: tts.AudioContentType,
		Voice:       voiceID,
	}, nil
}

func (s *SpeechService) persistVoice(ctx context.Context, profile, voice string) {
	if err := s.profiles.Scope(profile).Set(ctx, KeyPreferredVoice, []byte(voice)); err != nil {
		s.logger.Warn("failed to persist resolved voice", "profile", profile, "error", err)
	}
}
