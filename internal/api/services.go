package api

import (
	"context"

	"github.com/lexileapp/lexile-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Chat      *service.ChatService
	Search    *service.SearchService
	Documents *service.DocumentService // Document summaries and questions
	Speech    *service.SpeechService   // Text-to-speech with per-profile voice
	Reader    *service.ReaderService   // Preferences, screening and rendering
}

// Pinger reports whether a backing component is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports how many documents a component holds.
type Counter interface {
	DocumentCount() (uint64, error)
}

// Components are the health-checked dependencies of the server. Nil
// components are reported as degraded.
type Components struct {
	Preferences Pinger  // BadgerDB keyspace
	Chats       Pinger  // SQLite chat store
	Search      Counter // Bleve message index
}
