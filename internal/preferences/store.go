package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/lexileapp/lexile-server/internal/dom"
	"github.com/lexileapp/lexile-server/internal/domain"
	"github.com/lexileapp/lexile-server/internal/store"
)

// Storage keys inside a profile's keyspace.
const (
	KeyResults   = "vl_screener_results_v1"
	KeyRecommend = "vl_screener_recommend_v1"
)

// Store persists one profile's preference record and screening log.
//
// Storage failures never reach the caller. Writes that fail are logged and
// dropped; reads that fail or find malformed data behave as if nothing was stored.
type Store struct {
	kv      store.KV
	applier *Applier
	doc     dom.Document
	logger  *slog.Logger
	now     func() time.Time
}

// NewStore creates a Store over kv. applier may be nil when nothing is rendered.
func NewStore(kv store.KV, applier *Applier, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		kv:      kv,
		applier: applier,
		logger:  logger,
		now:     time.Now,
	}
}

// Bind returns a copy of s that applies settings writes to doc.
func (s *Store) Bind(doc dom.Document) *Store {
	bound := *s
	bound.doc = doc
	return &bound
}

// SaveResult prepends result to the log and keeps the newest
// domain.MaxScreeningResults entries. A zero Date is set to now.
func (s *Store) SaveResult(ctx context.Context, result domain.ScreeningResult) {
	if result.Date.IsZero() {
		result.Date = s.now().UTC()
	}

	results := append([]domain.ScreeningResult{result}, s.LoadResults(ctx)...)
	if len(results) > domain.MaxScreeningResults {
		results = results[:domain.MaxScreeningResults]
	}

	data, err := json.Marshal(results)
	if err != nil {
		s.logger.Error("failed to encode screening results", "error", err)
		return
	}
	if err := s.kv.Set(ctx, KeyResults, data); err != nil {
		s.logger.Error("failed to save screening result", "error", err)
	}
}

// LoadResults returns the log, newest first. Absent or malformed data yields
// an empty slice.
func (s *Store) LoadResults(ctx context.Context) []domain.ScreeningResult {
	results := []domain.ScreeningResult{}

	data, err := s.kv.Get(ctx, KeyResults)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to load screening results", "error", err)
		}
		return results
	}
	if err := json.Unmarshal(data, &results); err != nil {
		s.logger.Warn("discarding malformed screening results", "error", err)
		return []domain.ScreeningResult{}
	}
	if results == nil {
		return []domain.ScreeningResult{}
	}
	return results
}

// ClearResults deletes the log.
func (s *Store) ClearResults(ctx context.Context) {
	if err := s.kv.Delete(ctx, KeyResults); err != nil {
		s.logger.Error("failed to clear screening results", "error", err)
	}
}

// SetRecommendationEnabled writes a complete record built from in, with
// defaults for missing fields, then applies it to the bound document. The
// record is persisted before it is applied.
func (s *Store) SetRecommendationEnabled(ctx context.Context, enabled bool, in *domain.SettingsInput) domain.PreferenceSettings {
	settings := in.Build(enabled)

	data, err := json.Marshal(settings)
	if err != nil {
		s.logger.Error("failed to encode preferences", "error", err)
	} else if err := s.kv.Set(ctx, KeyRecommend, data); err != nil {
		s.logger.Error("failed to persist preferences", "error", err)
	}

	s.apply(ctx, settings, s.doc)
	return settings
}

// GetRecommendationStore returns the stored record, or nil when none was
// written or the stored value is malformed.
func (s *Store) GetRecommendationStore(ctx context.Context) *domain.PreferenceSettings {
	data, err := s.kv.Get(ctx, KeyRecommend)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to load preferences", "error", err)
		}
		return nil
	}

	var settings *domain.PreferenceSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		s.logger.Warn("discarding malformed preferences", "error", err)
		return nil
	}
	return settings
}

// InitRecommendationsFromStore re-applies the stored record to doc, or to the
// bound document when doc is nil. Without a stored record doc is untouched.
func (s *Store) InitRecommendationsFromStore(ctx context.Context, doc dom.Document) {
	if doc == nil {
		doc = s.doc
	}
	settings := s.GetRecommendationStore(ctx)
	if settings == nil {
		return
	}
	s.apply(ctx, *settings, doc)
}

func (s *Store) apply(ctx context.Context, settings domain.PreferenceSettings, doc dom.Document) {
	if s.applier == nil || doc == nil {
		return
	}
	s.applier.Apply(ctx, settings, doc)
}
