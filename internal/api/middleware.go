package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// corsMiddleware allows credentialed cross-origin calls. With no configured
// origins every request origin is reflected back.
func corsMiddleware(allowed []string) func(http.Handler) http.Handler {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Voice-Id", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if len(allowed) > 0 {
		opts.AllowedOrigins = allowed
	} else {
		opts.AllowOriginFunc = func(_ *http.Request, _ string) bool { return true }
	}
	return cors.Handler(opts)
}

// requestLogger logs one line per request through slog.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// withExtendedTimeout extends read and write deadlines for requests under
// the given path prefixes, such as document uploads and speech synthesis.
// It must wrap the handler before any body reading occurs.
func withExtendedTimeout(timeout time.Duration, prefixes ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasAnyPrefix(r.URL.Path, prefixes) {
				next.ServeHTTP(w, r)
				return
			}
			rc := http.NewResponseController(w)
			_ = rc.SetReadDeadline(time.Now().Add(timeout))  //nolint:errcheck // unsupported writers keep server defaults
			_ = rc.SetWriteDeadline(time.Now().Add(timeout)) //nolint:errcheck // unsupported writers keep server defaults
			next.ServeHTTP(w, r)
		})
	}
}

func hasAnyPrefix(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
