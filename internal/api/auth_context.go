package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/lexileapp/lexile-server/internal/auth"
	domainerrors "github.com/lexileapp/lexile-server/internal/errors"
)

// Authenticator resolves an Authorization header to a caller identity.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*auth.Identity, error)
}

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

const (
	identityKey ctxKey = "identity"
	authErrKey  ctxKey = "authError"
)

// Messages returned for rejected credentials.
const (
	msgMissingToken = "Missing token"
	msgInvalidToken = "Invalid token"
)

// authMiddleware verifies Bearer tokens and stores the identity in context.
// Requests without a valid token continue; the failure is recorded so
// handlers calling RequireIdentity can answer with the right message.
func authMiddleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := authenticator.Authenticate(r.Context(), r.Header.Get("Authorization"))
			ctx := r.Context()
			if err != nil {
				ctx = context.WithValue(ctx, authErrKey, err)
			} else {
				ctx = context.WithValue(ctx, identityKey, identity)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireIdentity returns the authenticated caller, or a 401 error naming
// whether the token was missing or invalid.
func RequireIdentity(ctx context.Context) (*auth.Identity, error) {
	if identity, ok := ctx.Value(identityKey).(*auth.Identity); ok && identity.Subject != "" {
		return identity, nil
	}
	err, _ := ctx.Value(authErrKey).(error)
	if err == nil || errors.Is(err, auth.ErrMissingToken) {
		return nil, domainerrors.Unauthorized(msgMissingToken)
	}
	return nil, domainerrors.Unauthorized(msgInvalidToken)
}

// RequireSubject is RequireIdentity for handlers that only need the subject.
func RequireSubject(ctx context.Context) (string, error) {
	identity, err := RequireIdentity(ctx)
	if err != nil {
		return "", err
	}
	return identity.Subject, nil
}
