package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/lexileapp/lexile-server/internal/api"
	"github.com/lexileapp/lexile-server/internal/auth"
	"github.com/lexileapp/lexile-server/internal/config"
	"github.com/lexileapp/lexile-server/internal/logger"
	"github.com/lexileapp/lexile-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	return errors.Join(err, h.handler.Shutdown())
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	chatHandle := do.MustInvoke[*ChatStoreHandle](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	fonts := do.MustInvoke[*FontFilesHandle](i)
	verifier := do.MustInvoke[*auth.Verifier](i)

	services := &api.Services{
		Chat:      do.MustInvoke[*service.ChatService](i),
		Search:    do.MustInvoke[*service.SearchService](i),
		Documents: do.MustInvoke[*service.DocumentService](i),
		Speech:    do.MustInvoke[*service.SpeechService](i),
		Reader:    do.MustInvoke[*service.ReaderService](i),
	}

	components := api.Components{
		Preferences: storeHandle.Store,
		Chats:       chatHandle.Store,
		Search:      indexHandle.SearchIndex,
	}

	handler := api.NewServer(services, components, verifier, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequestsPerMin: cfg.Server.RequestsPerMin,
		Fonts:          fonts.Files.FS(),
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
