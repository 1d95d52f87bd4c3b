package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/screening"
)

func (s *Server) registerPreferenceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getPreferences",
		Method:      http.MethodGet,
		Path:        "/api/preferences",
		Summary:     "Get preferences",
		Description: "Returns the caller's stored accessibility preference, or null",
		Tags:        []string{"Preferences"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetPreferences)

	huma.Register(s.api, huma.Operation{
		OperationID: "setPreferences",
		Method:      http.MethodPut,
		Path:        "/api/preferences",
		Summary:     "Set preferences",
		Description: "Overwrites the preference record. Missing typography fields take the defaults, not the stored values.",
		Tags:        []string{"Preferences"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSetPreferences)
}

func (s *Server) registerScreeningRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listScreeningResults",
		Method:      http.MethodGet,
		Path:        "/api/screening/results",
		Summary:     "List screening results",
		Description: "Returns up to ten screening results, newest first",
		Tags:        []string{"Screening"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListScreeningResults)

	huma.Register(s.api, huma.Operation{
		OperationID: "recordScreeningResult",
		Method:      http.MethodPost,
		Path:        "/api/screening/results",
		Summary:     "Record screening result",
		Description: "Scores the slider values and prepends the result to the log",
		Tags:        []string{"Screening"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRecordScreening)

	huma.Register(s.api, huma.Operation{
		OperationID:   "clearScreeningResults",
		Method:        http.MethodDelete,
		Path:          "/api/screening/results",
		Summary:       "Clear screening results",
		Tags:          []string{"Screening"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleClearScreening)

	huma.Register(s.api, huma.Operation{
		OperationID: "scoreScreening",
		Method:      http.MethodPost,
		Path:        "/api/screening/score",
		Summary:     "Score slider values",
		Description: "Computes the risk level without recording it",
		Tags:        []string{"Screening"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleScoreScreening)
}

func (s *Server) registerReaderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "renderDocument",
		Method:      http.MethodPost,
		Path:        "/api/reader/render",
		Summary:     "Render document",
		Description: "Returns the HTML document with the caller's preference applied, or with the query values when preview is set",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRender)
}

// === DTOs ===

// Typography carries optional slider values.
type Typography struct {
	LetterSpacing *float64 `json:"letterSpacing,omitempty" minimum:"0" maximum:"8" doc:"Letter spacing in px"`
	LineHeight    *float64 `json:"lineHeight,omitempty" minimum:"1" maximum:"2" doc:"Unitless line height"`
	FontWeight    *float64 `json:"fontWeight,omitempty" minimum:"300" maximum:"900" doc:"Font weight"`
}

func (t Typography) input() *domain.SettingsInput {
	return &domain.SettingsInput{
		LetterSpacing: t.LetterSpacing,
		LineHeight:    t.LineHeight,
		FontWeight:    t.FontWeight,
	}
}

// PreferencesOutput wraps the stored record for Huma.
type PreferencesOutput struct {
	Body struct {
		Settings *domain.PreferenceSettings `json:"settings" doc:"Stored record, null when none"`
	}
}

// SetPreferencesInput wraps a preference write.
type SetPreferencesInput struct {
	Body struct {
		Enabled bool `json:"enabled" doc:"Whether the preference is applied"`
		Typography
	}
}

// ScreeningResultsOutput wraps the screening log for Huma.
type ScreeningResultsOutput struct {
	Body struct {
		Results []domain.ScreeningResult `json:"results"`
	}
}

// RecordScreeningInput wraps a completed screening.
type RecordScreeningInput struct {
	Body struct {
		Typography
		Enable bool `json:"enable,omitempty" doc:"Also make these values the standing preference"`
	}
}

// ScreeningResultOutput wraps one result for Huma.
type ScreeningResultOutput struct {
	Body struct {
		Result domain.ScreeningResult `json:"result"`
	}
}

// ScoreInput wraps slider values to score.
type ScoreInput struct {
	Body Typography
}

// ScoreOutput wraps a score for Huma.
type ScoreOutput struct {
	Body screening.Assessment
}

// RenderInput carries an HTML document and optional preview values.
type RenderInput struct {
	Preview       bool    `query:"preview" doc:"Apply the query values instead of the stored preference"`
	LetterSpacing float64 `query:"letterSpacing" default:"0" minimum:"0" maximum:"8"`
	LineHeight    float64 `query:"lineHeight" default:"1.2" minimum:"1" maximum:"2"`
	FontWeight    float64 `query:"fontWeight" default:"400" minimum:"300" maximum:"900"`
	RawBody       []byte
}

// RenderOutput is the rendered document.
type RenderOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

// === Handlers ===

func (s *Server) handleGetPreferences(ctx context.Context, _ *struct{}) (*PreferencesOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	out := &PreferencesOutput{}
	out.Body.Settings = s.services.Reader.Preferences(ctx, sub)
	return out, nil
}

func (s *Server) handleSetPreferences(ctx context.Context, input *SetPreferencesInput) (*PreferencesOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	settings, err := s.services.Reader.SetPreferences(ctx, sub, input.Body.Enabled, input.Body.input())
	if err != nil {
		return nil, err
	}

	out := &PreferencesOutput{}
	out.Body.Settings = &settings
	return out, nil
}

func (s *Server) handleListScreeningResults(ctx context.Context, _ *struct{}) (*ScreeningResultsOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	out := &ScreeningResultsOutput{}
	out.Body.Results = s.services.Reader.Results(ctx, sub)
	return out, nil
}

func (s *Server) handleRecordScreening(ctx context.Context, input *RecordScreeningInput) (*ScreeningResultOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Reader.RecordScreening(ctx, sub, input.Body.input(), input.Body.Enable)
	if err != nil {
		return nil, err
	}

	out := &ScreeningResultOutput{}
	out.Body.Result = result
	return out, nil
}

func (s *Server) handleClearScreening(ctx context.Context, _ *struct{}) (*struct{}, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	s.services.Reader.ClearResults(ctx, sub)
	return nil, nil
}

func (s *Server) handleScoreScreening(ctx context.Context, input *ScoreInput) (*ScoreOutput, error) {
	if _, err := RequireSubject(ctx); err != nil {
		return nil, err
	}

	result, err := s.services.Reader.Score(input.Body.input())
	if err != nil {
		return nil, err
	}
	return &ScoreOutput{Body: result}, nil
}

func (s *Server) handleRender(ctx context.Context, input *RenderInput) (*RenderOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	var preview *domain.SettingsInput
	if input.Preview {
		preview = &domain.SettingsInput{
			LetterSpacing: &input.LetterSpacing,
			LineHeight:    &input.LineHeight,
			FontWeight:    &input.FontWeight,
		}
	}

	doc, err := s.services.Reader.Render(ctx, sub, string(input.RawBody), preview)
	if err != nil {
		return nil, err
	}
	return &RenderOutput{
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(doc),
	}, nil
}
