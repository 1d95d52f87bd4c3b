// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Server ServerConfig
	Auth   AuthConfig
	LLM    LLMConfig
	TTS    TTSConfig
	Fonts  FontsConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json or pretty; empty picks by environment
}

// DataConfig holds on-disk storage configuration.
// Preference KV, chat database and search index all live under BasePath.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8787)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 60s, LLM calls are slow)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins; empty reflects the request origin
	RequestsPerMin int           // Per-IP inbound rate limit (default: 120)
}

// AuthConfig holds identity provider configuration.
type AuthConfig struct {
	// Domain is the Auth0 tenant domain, e.g. "example.eu.auth0.com".
	Domain string
	// Audience is optional; empty accepts the SPA default audience.
	Audience string
}

// Issuer returns the expected token issuer for the configured domain.
func (a AuthConfig) Issuer() string {
	if a.Domain == "" {
		return ""
	}
	return "https://" + a.Domain + "/"
}

// JWKSURL returns the published signing key set location.
func (a AuthConfig) JWKSURL() string {
	if a.Domain == "" {
		return ""
	}
	return "https://" + a.Domain + "/.well-known/jwks.json"
}

// LLMConfig holds chat-completion provider configuration.
type LLMConfig struct {
	APIKey            string
	BaseURL           string
	ChatModel         string
	SummaryModel      string
	Referer           string
	Title             string
	RequestsPerMinute int
}

// TTSConfig holds text-to-speech provider configuration.
type TTSConfig struct {
	APIKey       string
	BaseURL      string
	DefaultVoice string
	Model        string
}

// FontsConfig holds typeface asset configuration.
type FontsConfig struct {
	// LocalDir holds OpenDyslexic-Regular.woff2 and OpenDyslexic-Bold.woff2.
	LocalDir string
	// CDNStylesheet is linked when local faces cannot be loaded.
	CDNStylesheet string
	// AsyncLoad loads the typeface without blocking preference application.
	AsyncLoad bool
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (json, pretty; default by environment)")
	dataPath := flag.String("data-path", "", "Base path for persistent data")

	serverPort := flag.String("port", "", "Server port (default: 8787)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := flag.String("allowed-origins", "", "Comma separated CORS origins (default: reflect request origin)")

	authDomain := flag.String("auth-domain", "", "Auth0 tenant domain")
	authAudience := flag.String("auth-audience", "", "Expected token audience (optional)")

	fontsDir := flag.String("fonts-dir", "", "Directory containing OpenDyslexic woff2 files")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(*logLevel, "LOG_LEVEL", "info"),
			Format: getConfigValue(*logFormat, "LOG_FORMAT", ""),
		},
		Data: DataConfig{
			BasePath: getConfigValue(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "PORT", "8787"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "")),
			RequestsPerMin: getIntConfigValue("", "REQUESTS_PER_MINUTE", 120),
		},
		Auth: AuthConfig{
			// Deployments share variables with the SPA build.
			Domain:   getConfigValue(*authDomain, "AUTH0_MGMT_DOMAIN", os.Getenv("VITE_AUTH0_DOMAIN")),
			Audience: getConfigValue(*authAudience, "AUTH0_AUDIENCE", ""),
		},
		LLM: LLMConfig{
			APIKey:            getConfigValue("", "OPENROUTER_API_KEY", ""),
			BaseURL:           getConfigValue("", "OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
			ChatModel:         getConfigValue("", "OPENROUTER_CHAT_MODEL", "kwaipilot/kat-coder-pro:free"),
			SummaryModel:      getConfigValue("", "OPENROUTER_SUMMARY_MODEL", "openai/gpt-4o-mini"),
			Referer:           getConfigValue("", "OPENROUTER_REFERER", "https://dyslearnai.local"),
			Title:             getConfigValue("", "OPENROUTER_TITLE", "DysLearnAI"),
			RequestsPerMinute: getIntConfigValue("", "OPENROUTER_REQUESTS_PER_MINUTE", 20),
		},
		TTS: TTSConfig{
			APIKey:       getConfigValue("", "ELEVENLABS_API_KEY", ""),
			BaseURL:      getConfigValue("", "ELEVENLABS_BASE_URL", "https://api.elevenlabs.io/v1"),
			DefaultVoice: getConfigValue("", "ELEVENLABS_DEFAULT_VOICE", "Mark - Natural Conversations"),
			Model:        getConfigValue("", "ELEVENLABS_MODEL", "eleven_multilingual_v1"),
		},
		Fonts: FontsConfig{
			LocalDir:      getConfigValue(*fontsDir, "FONTS_DIR", ""),
			CDNStylesheet: getConfigValue("", "FONTS_CDN_STYLESHEET", "https://cdn.jsdelivr.net/gh/antijingoist/open-dyslexic/webkit/OpenDyslexic.css"),
			AsyncLoad:     getBoolConfigValue("", "FONTS_ASYNC_LOAD", false),
		},
	}

	durations := []struct {
		flagValue string
		envKey    string
		def       string
		dest      *time.Duration
	}{
		{*readTimeout, "SERVER_READ_TIMEOUT", "15s", &cfg.Server.ReadTimeout},
		{*writeTimeout, "SERVER_WRITE_TIMEOUT", "60s", &cfg.Server.WriteTimeout},
		{*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", &cfg.Server.IdleTimeout},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagValue, d.envKey, d.def)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", strings.ToLower(d.envKey), raw, err)
		}
		*d.dest = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.expandFontsDir(); err != nil {
		return nil, fmt.Errorf("invalid fonts dir: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Server.RequestsPerMin < 0 {
		return fmt.Errorf("invalid requests per minute: %d", c.Server.RequestsPerMin)
	}

	// Auth domain and provider keys may be empty: the server still starts,
	// protected routes then answer 401 and provider routes 502.

	return nil
}

// Missing lists the integration settings that are not configured.
func (c *Config) Missing() []string {
	var missing []string
	if c.Auth.Domain == "" {
		missing = append(missing, "AUTH0_MGMT_DOMAIN")
	}
	if c.LLM.APIKey == "" {
		missing = append(missing, "OPENROUTER_API_KEY")
	}
	if c.TTS.APIKey == "" {
		missing = append(missing, "ELEVENLABS_API_KEY")
	}
	return missing
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

func (c *Config) expandDataPath() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultPath := filepath.Join(homeDir, ".lexile", "data")

	expanded, err := expandPath(c.Data.BasePath, defaultPath)
	if err != nil {
		return err
	}
	c.Data.BasePath = expanded
	return nil
}

// expandFontsDir defaults to {data}/fonts.
func (c *Config) expandFontsDir() error {
	expanded, err := expandPath(c.Fonts.LocalDir, filepath.Join(c.Data.BasePath, "fonts"))
	if err != nil {
		return err
	}
	c.Fonts.LocalDir = expanded
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}

	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
