package preferences

import (
	"log/slog"

	"github.com/lexileapp/lexile-server/internal/store"
)

// Scoper hands out a profile's keyspace.
type Scoper interface {
	Scope(profile string) store.KV
}

// Service hands out per-profile Stores sharing one Applier.
type Service struct {
	kv      Scoper
	applier *Applier
	logger  *slog.Logger
}

// NewService creates a Service.
func NewService(kv Scoper, applier *Applier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{kv: kv, applier: applier, logger: logger}
}

// For returns the Store of profile.
func (s *Service) For(profile string) *Store {
	return NewStore(s.kv.Scope(profile), s.applier, s.logger.With("profile", profile))
}

// Applier returns the shared Applier.
func (s *Service) Applier() *Applier {
	return s.applier
}

// Shutdown waits for background typeface loads. It implements do.Shutdownable.
func (s *Service) Shutdown() error {
	s.applier.Wait()
	return nil
}
