package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/lexileapp/lexile-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchMessages",
		Method:      http.MethodGet,
		Path:        "/api/search",
		Summary:     "Search messages",
		Description: "Full-text search over the caller's chat messages",
		Tags:        []string{"Search"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearch)
}

// SearchInput contains search query parameters.
type SearchInput struct {
	Query  string `query:"q" doc:"Search query"`
	ChatID string `query:"chat_id" doc:"Restrict results to one chat"`
	Limit  int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
	Offset int    `query:"offset" minimum:"0" doc:"Hits to skip"`
}

// SearchOutput wraps the search result for Huma.
type SearchOutput struct {
	Body *search.Result
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	sub, err := RequireSubject(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Search.Search(ctx, search.Params{
		UserSub: sub,
		Query:   input.Query,
		ChatID:  input.ChatID,
		Limit:   input.Limit,
		Offset:  input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: result}, nil
}
