package service

import (
	"context"
	"log/slog"

	"github.com/lexileapp/lexile-server/internal/dom"
	"github.com/lexileapp/lexile-server/internal/domain"
	domainerrors "github.com/lexileapp/lexile-server/internal/errors"
	"github.com/lexileapp/lexile-server/internal/preferences"
	"github.com/lexileapp/lexile-server/internal/screening"
	"github.com/lexileapp/lexile-server/internal/validation"
)

// maxRenderBytes bounds documents accepted by Render.
const maxRenderBytes = 5 << 20

// ReaderService exposes a profile's reading preferences, its screening log,
// and server-side rendering of documents with the preferences applied.
type ReaderService struct {
	prefs     *preferences.Service
	validator *validation.Validator
	logger    *slog.Logger
}

// NewReaderService creates a reader service.
func NewReaderService(prefs *preferences.Service, v *validation.Validator, logger *slog.Logger) *ReaderService {
	return &ReaderService{prefs: prefs, validator: v, logger: logger}
}

// Preferences returns the stored record of profile, or nil.
func (s *ReaderService) Preferences(ctx context.Context, profile string) *domain.PreferenceSettings {
	return s.prefs.For(profile).GetRecommendationStore(ctx)
}

// SetPreferences validates and stores a record for profile. A write without
// typography fields only flips Enabled on the stored record.
func (s *ReaderService) SetPreferences(ctx context.Context, profile string, enabled bool, in *domain.SettingsInput) (domain.PreferenceSettings, error) {
	store := s.prefs.For(profile)
	if in.Empty() {
		in = domain.InputFrom(preferences.Toggle(enabled, store.GetRecommendationStore(ctx)))
	}
	if err := s.validator.Validate(in); err != nil {
		return domain.PreferenceSettings{}, err
	}
	return store.SetRecommendationEnabled(ctx, enabled, in), nil
}

// Results returns the screening log of profile, newest first.
func (s *ReaderService) Results(ctx context.Context, profile string) []domain.ScreeningResult {
	return s.prefs.For(profile).LoadResults(ctx)
}

// ClearResults empties the screening log of profile.
func (s *ReaderService) ClearResults(ctx context.Context, profile string) {
	s.prefs.For(profile).ClearResults(ctx)
}

// RecordScreening scores the submitted slider values and appends the result
// to the log. When enable is set the values also become the standing
// preference.
func (s *ReaderService) RecordScreening(ctx context.Context, profile string, in *domain.SettingsInput, enable bool) (domain.ScreeningResult, error) {
	session, err := s.session(profile, in)
	if err != nil {
		return domain.ScreeningResult{}, err
	}
	result := session.Save(ctx)
	if enable {
		session.EnableRecommended(ctx)
	}
	return result, nil
}

// Score scores slider values without recording them.
func (s *ReaderService) Score(in *domain.SettingsInput) (screening.Assessment, error) {
	if in == nil {
		in = &domain.SettingsInput{}
	}
	if err := s.validator.Validate(in); err != nil {
		return screening.Assessment{}, err
	}
	st := in.Build(true)
	return screening.Score(st.LetterSpacing, st.LineHeight, st.FontWeight), nil
}

// Render parses an HTML document and applies the profile's stored preference
// to it. A non-nil preview is applied instead and nothing is persisted.
func (s *ReaderService) Render(ctx context.Context, profile, source string, preview *domain.SettingsInput) (string, error) {
	if len(source) > maxRenderBytes {
		return "", domainerrors.Validation("document too large")
	}

	doc, err := dom.ParseString(source)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid html document")
	}

	ctx, wait := preferences.TrackTypefaceLoads(ctx)
	if preview != nil {
		session, err := s.session(profile, preview)
		if err != nil {
			return "", err
		}
		session.Preview(ctx, doc)
	} else {
		s.prefs.For(profile).InitRecommendationsFromStore(ctx, doc)
	}
	wait()

	return doc.String(), nil
}

func (s *ReaderService) session(profile string, in *domain.SettingsInput) (*screening.Session, error) {
	if in == nil {
		in = &domain.SettingsInput{}
	}
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}
	session := screening.NewSession(s.prefs.For(profile), s.prefs.Applier())
	st := in.Build(true)
	session.SetLetterSpacing(st.LetterSpacing)
	session.SetLineHeight(st.LineHeight)
	session.SetFontWeight(st.FontWeight)
	return session, nil
}
