package providers

import (
	"os"

	"github.com/samber/do/v2"

	"github.com/lexileapp/lexile-server/internal/config"
	"github.com/lexileapp/lexile-server/internal/llm"
	"github.com/lexileapp/lexile-server/internal/logger"
	"github.com/lexileapp/lexile-server/internal/preferences"
	"github.com/lexileapp/lexile-server/internal/service"
	"github.com/lexileapp/lexile-server/internal/summarizer"
	"github.com/lexileapp/lexile-server/internal/tts"
	"github.com/lexileapp/lexile-server/internal/typeface"
	"github.com/lexileapp/lexile-server/internal/validation"
)

// ProvideLLMClient provides the chat-completions client.
func ProvideLLMClient(i do.Injector) (*llm.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return llm.New(cfg.LLM, log.WithComponent("llm")), nil
}

// ProvideTTSClient provides the text-to-speech client.
func ProvideTTSClient(i do.Injector) (*tts.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	return tts.New(cfg.TTS, log.WithComponent("tts")), nil
}

// FontFilesHandle holds the local typeface directory and the Loader that
// injects it.
type FontFilesHandle struct {
	Files  *typeface.FSLoader
	Loader *typeface.Loader
}

// ProvideTypeface provides the OpenDyslexic loader backed by the fonts dir.
func ProvideTypeface(i do.Injector) (*FontFilesHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	files := typeface.NewFSLoader(os.DirFS(cfg.Fonts.LocalDir))
	opts := []typeface.Option{typeface.WithLogger(log.WithComponent("typeface"))}
	if cfg.Fonts.CDNStylesheet != "" {
		opts = append(opts, typeface.WithCDNStylesheet(cfg.Fonts.CDNStylesheet))
	}

	return &FontFilesHandle{Files: files, Loader: typeface.New(files, opts...)}, nil
}

// ProvidePreferences provides the per-profile preference service.
func ProvidePreferences(i do.Injector) (*preferences.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	fonts := do.MustInvoke[*FontFilesHandle](i)

	prefsLog := log.WithComponent("preferences")
	opts := []preferences.ApplierOption{preferences.WithApplierLogger(prefsLog)}
	if cfg.Fonts.AsyncLoad {
		opts = append(opts, preferences.WithAsyncTypeface())
	}
	applier := preferences.NewApplier(fonts.Loader, opts...)

	return preferences.NewService(storeHandle.Store, applier, prefsLog), nil
}

// ProvideChatService provides the chat service.
func ProvideChatService(i do.Injector) (*service.ChatService, error) {
	chatHandle := do.MustInvoke[*ChatStoreHandle](i)
	client := do.MustInvoke[*llm.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewChatService(chatHandle.Store, client, log.WithComponent("chat")), nil
}

// ProvideDocumentService provides document summarising.
func ProvideDocumentService(i do.Injector) (*service.DocumentService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*llm.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	docLog := log.WithComponent("documents")
	return service.NewDocumentService(summarizer.New(client, cfg.LLM.SummaryModel, docLog), docLog), nil
}

// ProvideSpeechService provides text-to-speech with per-profile voices.
func ProvideSpeechService(i do.Injector) (*service.SpeechService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*tts.Client](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSpeechService(client, storeHandle.Store, cfg.TTS.DefaultVoice, log.WithComponent("speech")), nil
}

// ProvideReaderService provides preferences, screening and rendering.
func ProvideReaderService(i do.Injector) (*service.ReaderService, error) {
	prefs := do.MustInvoke[*preferences.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewReaderService(prefs, validation.New(), log.WithComponent("reader")), nil
}
