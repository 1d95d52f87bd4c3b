package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lexileapp/lexile-server/internal/wordtiming"
)

func (s *Server) registerWordTimingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "estimateWordTimings",
		Method:      http.MethodPost,
		Path:        "/api/word-timings",
		Summary:     "Estimate word timings",
		Description: "Spreads the words of a text evenly over an audio duration for read-along highlighting",
		Tags:        []string{"Reading"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleWordTimings)
}

// WordTimingsInput wraps a timing request.
type WordTimingsInput struct {
	Body struct {
		Text       string   `json:"text" doc:"Spoken text"`
		DurationMs float64  `json:"durationMs" minimum:"0" doc:"Audio duration in milliseconds"`
		CurrentMs  *float64 `json:"currentMs,omitempty" minimum:"0" doc:"Playback position to resolve to a word"`
		Bionic     bool     `json:"bionic,omitempty" doc:"Also return bionic reading splits"`
	}
}

// WordTimingsOutput wraps the timings for Huma.
type WordTimingsOutput struct {
	Body struct {
		Timings      []wordtiming.WordTiming `json:"timings"`
		CurrentIndex *int                    `json:"currentIndex,omitempty" doc:"Index of the word at currentMs, -1 when between words"`
		Current      *wordtiming.WordTiming  `json:"current,omitempty"`
		Bionic       []wordtiming.BionicWord `json:"bionic,omitempty"`
	}
}

func (s *Server) handleWordTimings(ctx context.Context, input *WordTimingsInput) (*WordTimingsOutput, error) {
	if _, err := RequireSubject(ctx); err != nil {
		return nil, err
	}

	out := &WordTimingsOutput{}
	out.Body.Timings = wordtiming.EstimateWordTimings(input.Body.Text, input.Body.DurationMs)
	if input.Body.CurrentMs != nil {
		idx := wordtiming.CurrentWordIndex(out.Body.Timings, *input.Body.CurrentMs)
		out.Body.CurrentIndex = &idx
		out.Body.Current = wordtiming.HighlightedWord(out.Body.Timings, *input.Body.CurrentMs)
	}
	if input.Body.Bionic {
		out.Body.Bionic = wordtiming.BionicWords(input.Body.Text)
	}
	return out, nil
}
