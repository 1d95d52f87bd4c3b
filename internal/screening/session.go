package screening

import (
	"context"
	"sync"
	"time"

	"github.com/lexileapp/lexile-server/internal/dom"
	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/preferences"
)

// SamplePassage is the text previewed while the sliders move.
const SamplePassage = "The quick brown fox jumps over the lazy dog. This passage is intentionally dense to challenge the visual processing system. Adjust the sliders until the text stops 'swimming' or feels comfortable."

// Slider steps. Values between steps are accepted.
const (
	LetterSpacingStep = 0.5
	LineHeightStep    = 0.05
	FontWeightStep    = 50
)

// Session holds the slider state of one screening run.
type Session struct {
	store   *preferences.Store
	applier *preferences.Applier

	mu            sync.Mutex
	letterSpacing float64
	lineHeight    float64
	fontWeight    float64
}

// NewSession starts a session at the default typography. applier drives
// Preview and may be nil.
func NewSession(store *preferences.Store, applier *preferences.Applier) *Session {
	s := &Session{store: store, applier: applier}
	s.Reset()
	return s
}

// SetLetterSpacing sets letter spacing in px, clamped to the slider range.
func (s *Session) SetLetterSpacing(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.letterSpacing = clamp(v, domain.MinLetterSpacing, domain.MaxLetterSpacing)
}

// SetLineHeight sets the unitless line height, clamped to the slider range.
func (s *Session) SetLineHeight(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lineHeight = clamp(v, domain.MinLineHeight, domain.MaxLineHeight)
}

// SetFontWeight sets the font weight, clamped to the slider range.
func (s *Session) SetFontWeight(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fontWeight = clamp(v, domain.MinFontWeight, domain.MaxFontWeight)
}

// Reset returns the sliders to the defaults.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.letterSpacing = domain.DefaultLetterSpacing
	s.lineHeight = domain.DefaultLineHeight
	s.fontWeight = domain.DefaultFontWeight
}

// Settings returns the slider values as an enabled record.
func (s *Session) Settings() domain.PreferenceSettings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.PreferenceSettings{
		Enabled:       true,
		LetterSpacing: s.letterSpacing,
		LineHeight:    s.lineHeight,
		FontWeight:    s.fontWeight,
	}
}

// Score scores the current sliders.
func (s *Session) Score() Assessment {
	st := s.Settings()
	return Score(st.LetterSpacing, st.LineHeight, st.FontWeight)
}

// Preview applies the sliders to doc without persisting anything.
func (s *Session) Preview(ctx context.Context, doc dom.Document) {
	if s.applier == nil {
		return
	}
	s.applier.Apply(ctx, s.Settings(), doc)
}

// Save records the current sliders and score in the screening log.
func (s *Session) Save(ctx context.Context) domain.ScreeningResult {
	st := s.Settings()
	score := Score(st.LetterSpacing, st.LineHeight, st.FontWeight)
	result := domain.ScreeningResult{
		Date:          time.Now().UTC(),
		LetterSpacing: st.LetterSpacing,
		LineHeight:    st.LineHeight,
		FontWeight:    st.FontWeight,
		Level:         score.Level,
		AdjScore:      score.AdjScore,
	}
	s.store.SaveResult(ctx, result)
	return result
}

// EnableRecommended makes the sliders the profile's standing preference.
func (s *Session) EnableRecommended(ctx context.Context) domain.PreferenceSettings {
	return s.store.SetRecommendationEnabled(ctx, true, domain.InputFrom(s.Settings()))
}
