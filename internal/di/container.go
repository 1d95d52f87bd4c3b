// Package di provides dependency injection configuration for the Lexile server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/lexileapp/lexile-server/internal/auth"
	"github.com/lexileapp/lexile-server/internal/config"
	"github.com/lexileapp/lexile-server/internal/di/providers"
	"github.com/lexileapp/lexile-server/internal/logger"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Storage layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideChatStore)

	// Upstream clients
	do.Provide(injector, providers.ProvideVerifier)
	do.Provide(injector, providers.ProvideLLMClient)
	do.Provide(injector, providers.ProvideTTSClient)
	do.Provide(injector, providers.ProvideTypeface)

	// Business services
	do.Provide(injector, providers.ProvidePreferences)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideChatService)
	do.Provide(injector, providers.ProvideDocumentService)
	do.Provide(injector, providers.ProvideSpeechService)
	do.Provide(injector, providers.ProvideReaderService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.ChatStoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.Verifier](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
