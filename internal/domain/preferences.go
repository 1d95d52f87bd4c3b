package domain

import "time"

// Typography defaults used when a field is missing from a write or a stored record.
const (
	DefaultLetterSpacing = 0.0
	DefaultLineHeight    = 1.2
	DefaultFontWeight    = 400.0
)

// Typography ranges accepted from clients.
const (
	MinLetterSpacing = 0.0
	MaxLetterSpacing = 8.0
	MinLineHeight    = 1.0
	MaxLineHeight    = 2.0
	MinFontWeight    = 300.0
	MaxFontWeight    = 900.0
)

// MaxScreeningResults is the length cap of the screening log.
const MaxScreeningResults = 10

// PreferenceSettings is a profile's standing accessibility preference.
// It is overwritten wholesale on every write and never deleted; disabling only
// flips Enabled so the numeric values survive for a later re-enable.
type PreferenceSettings struct {
	Enabled       bool    `json:"enabled"`
	LetterSpacing float64 `json:"letterSpacing" validate:"gte=0,lte=8"`
	LineHeight    float64 `json:"lineHeight" validate:"gte=1,lte=2"`
	FontWeight    float64 `json:"fontWeight" validate:"gte=300,lte=900"`
}

// DefaultSettings returns a disabled record holding the default typography.
func DefaultSettings() PreferenceSettings {
	return PreferenceSettings{
		LetterSpacing: DefaultLetterSpacing,
		LineHeight:    DefaultLineHeight,
		FontWeight:    DefaultFontWeight,
	}
}

// SettingsInput carries the optional typography fields of a write.
// Nil fields take the defaults, not the previously stored values.
type SettingsInput struct {
	LetterSpacing *float64 `json:"letterSpacing,omitempty" validate:"omitempty,gte=0,lte=8"`
	LineHeight    *float64 `json:"lineHeight,omitempty" validate:"omitempty,gte=1,lte=2"`
	FontWeight    *float64 `json:"fontWeight,omitempty" validate:"omitempty,gte=300,lte=900"`
}

// Build constructs a full record from the input, filling missing fields with defaults.
func (in *SettingsInput) Build(enabled bool) PreferenceSettings {
	s := DefaultSettings()
	s.Enabled = enabled
	if in == nil {
		return s
	}
	if in.LetterSpacing != nil {
		s.LetterSpacing = *in.LetterSpacing
	}
	if in.LineHeight != nil {
		s.LineHeight = *in.LineHeight
	}
	if in.FontWeight != nil {
		s.FontWeight = *in.FontWeight
	}
	return s
}

// Empty reports whether the input carries no typography field.
func (in *SettingsInput) Empty() bool {
	return in == nil || (in.LetterSpacing == nil && in.LineHeight == nil && in.FontWeight == nil)
}

// InputFrom returns an input carrying every field of s.
func InputFrom(s PreferenceSettings) *SettingsInput {
	return &SettingsInput{
		LetterSpacing: &s.LetterSpacing,
		LineHeight:    &s.LineHeight,
		FontWeight:    &s.FontWeight,
	}
}

// ScreeningResult is one completed self-assessment. Entries are never mutated
// after they enter the log.
type ScreeningResult struct {
	Date          time.Time `json:"date"`
	LetterSpacing float64   `json:"letterSpacing"`
	LineHeight    float64   `json:"lineHeight"`
	FontWeight    float64   `json:"fontWeight"`
	Level         int       `json:"level"`
	AdjScore      float64   `json:"adjScore"`
}
