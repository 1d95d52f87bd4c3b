package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a message search.
type Params struct {
	UserSub string // Required; results never cross subjects
	Query   string
	ChatID  string // Optional chat filter
	Limit   int
	Offset  int
}

// Result is a page of message hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single matching message.
type Hit struct {
	ID        string  `json:"id"`
	ChatID    string  `json:"chat_id"`
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Score     float64 `json:"score"`
	Highlight string  `json:"highlight,omitempty"`
}

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Search runs a relevance-ordered search over the subject's messages.
func (s *SearchIndex) Search(ctx context.Context, params Params) (*Result, error) {
	if params.UserSub == "" {
		return nil, fmt.Errorf("search: user_sub is required")
	}
	if params.Limit <= 0 {
		params.Limit = defaultLimit
	}
	params.Limit = min(params.Limit, maxLimit)

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = []string{"chat_id", "role", "content"}
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("content")

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, h := range res.Hits {
		hit := Hit{ID: h.ID, Score: h.Score}
		if v, ok := h.Fields["chat_id"].(string); ok {
			hit.ChatID = v
		}
		if v, ok := h.Fields["role"].(string); ok {
			hit.Role = v
		}
		if v, ok := h.Fields["content"].(string); ok {
			hit.Content = v
		}
		if frags := h.Fragments["content"]; len(frags) > 0 {
			hit.Highlight = frags[0]
		}
		out.Hits = append(out.Hits, hit)
	}
	return out, nil
}

// buildQuery matches content (exact terms boosted over fuzzy ones) and
// restricts by owner and optional chat.
func buildQuery(params Params) query.Query {
	owner := bleve.NewTermQuery(params.UserSub)
	owner.SetField("user_sub")
	must := []query.Query{owner}

	if params.ChatID != "" {
		chat := bleve.NewTermQuery(params.ChatID)
		chat.SetField("chat_id")
		must = append(must, chat)
	}

	text := strings.TrimSpace(params.Query)
	if text == "" {
		must = append(must, bleve.NewMatchAllQuery())
		return bleve.NewConjunctionQuery(must...)
	}

	exact := bleve.NewMatchQuery(text)
	exact.SetField("content")
	exact.SetBoost(2)

	fuzzy := bleve.NewMatchQuery(text)
	fuzzy.SetField("content")
	fuzzy.SetFuzziness(1)

	must = append(must, bleve.NewDisjunctionQuery(exact, fuzzy))
	return bleve.NewConjunctionQuery(must...)
}
