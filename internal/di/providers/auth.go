package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/lexileapp/lexile-server/internal/auth"
	"github.com/lexileapp/lexile-server/internal/config"
	"github.com/lexileapp/lexile-server/internal/logger"
)

// ProvideVerifier provides the JWKS-backed bearer token verifier.
// Verifier implements do.Shutdownable and stops its key refresh.
func ProvideVerifier(i do.Injector) (*auth.Verifier, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	v, err := auth.NewJWKSVerifier(context.Background(), cfg.Auth)
	if err != nil {
		return nil, err
	}

	if cfg.Auth.Domain == "" {
		log.Warn("Auth domain not configured, every authenticated request will be rejected")
	} else {
		log.Info("Token verifier ready", "issuer", cfg.Auth.Issuer(), "audience", cfg.Auth.Audience)
	}

	return v, nil
}
