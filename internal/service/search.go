package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	domainerrors "github.com/lexileapp/lexile-server/internal/errors"
	"github.com/lexileapp/lexile-server/internal/search"
)

// Search result limits.
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// SearchService answers full-text queries over a subject's chat messages.
// Messages reach the index through the chat store's indexer hook.
type SearchService struct {
	index  *search.SearchIndex
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		logger: logger,
	}
}

// Search runs params against the index, always scoped to params.UserSub.
func (s *SearchService) Search(ctx context.Context, params search.Params) (*search.Result, error) {
	params.Query = strings.TrimSpace(params.Query)
	if params.Query == "" {
		return nil, domainerrors.Validation("query is required")
	}
	if params.UserSub == "" {
		return nil, domainerrors.Unauthorized("missing subject")
	}
	if params.Limit <= 0 {
		params.Limit = DefaultSearchLimit
	}
	params.Limit = min(params.Limit, MaxSearchLimit)
	params.Offset = max(params.Offset, 0)

	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}

	s.logger.Debug("search executed", "query", params.Query, "total", result.Total, "took_ms", result.TookMs)
	return result, nil
}
