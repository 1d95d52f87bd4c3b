// Package auth validates bearer tokens issued by an external identity provider.
//
// Tokens are RS256 JWTs checked against the provider's published JWKS. Keys
// are cached and refreshed in the background; unknown key ids trigger a
// rate-limited refetch.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lexileapp/lexile-server/internal/config"
)

var (
	// ErrMissingToken means the request carried no bearer token.
	ErrMissingToken = errors.New("missing token")
	// ErrInvalidToken means the token failed verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNotConfigured means no identity provider is configured.
	ErrNotConfigured = errors.New("identity provider not configured")
)

// DefaultLeeway absorbs clock skew between the provider and this server.
const DefaultLeeway = 30 * time.Second

// Verifier validates access tokens.
type Verifier struct {
	keyfunc jwt.Keyfunc
	parser  *jwt.Parser
	cancel  context.CancelFunc
}

// Option configures a Verifier.
type Option func(*verifierOptions)

type verifierOptions struct {
	audience string
	leeway   time.Duration
	now      func() time.Time
}

// WithAudience requires the aud claim to contain audience.
func WithAudience(audience string) Option {
	return func(o *verifierOptions) { o.audience = audience }
}

// WithLeeway sets the allowed clock skew.
func WithLeeway(d time.Duration) Option {
	return func(o *verifierOptions) { o.leeway = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *verifierOptions) { o.now = now }
}

// NewVerifier creates a Verifier that resolves signing keys with kf and
// requires tokens issued by issuer.
func NewVerifier(kf jwt.Keyfunc, issuer string, opts ...Option) *Verifier {
	o := verifierOptions{leeway: DefaultLeeway}
	for _, opt := range opts {
		opt(&o)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(o.leeway),
	}
	if o.audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(o.audience))
	}
	if o.now != nil {
		parserOpts = append(parserOpts, jwt.WithTimeFunc(o.now))
	}

	return &Verifier{keyfunc: kf, parser: jwt.NewParser(parserOpts...)}
}

// NewJWKSVerifier creates a Verifier backed by the provider's JWKS endpoint.
// An empty domain yields a Verifier that rejects every token.
func NewJWKSVerifier(ctx context.Context, cfg config.AuthConfig) (*Verifier, error) {
	if cfg.Domain == "" {
		return NewVerifier(func(*jwt.Token) (any, error) { return nil, ErrNotConfigured }, ""), nil
	}

	ctx, cancel := context.WithCancel(ctx)
	k, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.JWKSURL()})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create jwks keyfunc: %w", err)
	}

	v := NewVerifier(k.Keyfunc, cfg.Issuer(), WithAudience(cfg.Audience))
	v.cancel = cancel
	return v, nil
}

// Verify validates token and returns its claims.
func (v *Verifier) Verify(_ context.Context, token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims := &Claims{}
	if _, err := v.parser.ParseWithClaims(token, claims, v.keyfunc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return claims, nil
}

// Authenticate verifies the bearer token of an Authorization header value.
func (v *Verifier) Authenticate(ctx context.Context, header string) (*Identity, error) {
	token := BearerToken(header)
	if token == "" {
		return nil, ErrMissingToken
	}
	claims, err := v.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	return &Identity{Subject: claims.Subject, Email: claims.Email}, nil
}

// Shutdown stops the background key refresh.
func (v *Verifier) Shutdown() error {
	if v.cancel != nil {
		v.cancel()
	}
	return nil
}

// BearerToken returns the credential part of an Authorization header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
