package tts

import (
	"context"
	"strings"
)

// maxVoiceIDLength bounds strings treated as ids rather than display names.
const maxVoiceIDLength = 64

// VoiceLister lists available voices.
type VoiceLister interface {
	ListVoices(ctx context.Context) ([]Voice, error)
}

// LooksLikeID reports whether pref is a voice id rather than a display name.
func LooksLikeID(pref string) bool {
	return pref != "" && !strings.Contains(pref, " ") && len(pref) < maxVoiceIDLength
}

// ResolveVoice maps a preference to a voice id. Ids pass through unchanged.
// Display names match case-insensitively, exact match first, then substring.
// It returns "" when nothing matches or the voice list is unavailable.
func ResolveVoice(ctx context.Context, lister VoiceLister, pref string) string {
	if pref == "" {
		return ""
	}
	if LooksLikeID(pref) {
		return pref
	}

	voices, err := lister.ListVoices(ctx)
	if err != nil {
		return ""
	}
	return matchVoice(voices, pref)
}

func matchVoice(voices []Voice, pref string) string {
	lc := strings.ToLower(pref)
	for _, v := range voices {
		if strings.ToLower(v.Name) == lc {
			return v.ID
		}
	}
	for _, v := range voices {
		if strings.Contains(strings.ToLower(v.Name), lc) {
			return v.ID
		}
	}
	return ""
}

// DefaultVoice picks the first listed voice, or FallbackVoice.
func DefaultVoice(ctx context.Context, lister VoiceLister) string {
	voices, err := lister.ListVoices(ctx)
	if err != nil || len(voices) == 0 {
		return FallbackVoice
	}
	return voices[0].ID
}
