package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Data:   DataConfig{BasePath: "/some/path"},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_LogFormat(t *testing.T) {
	for _, format := range []string{"", "json", "pretty"} {
		cfg := validConfig()
		cfg.Logger.Format = format
		assert.NoError(t, cfg.Validate(), format)
	}

	cfg := validConfig()
	cfg.Logger.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidate_EmptyDataPath(t *testing.T) {
	cfg := validConfig()
	cfg.Data.BasePath = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data base path cannot be empty")
}

func TestValidate_NegativeRateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.Server.RequestsPerMin = -1

	assert.Error(t, cfg.Validate())
}

func TestMissing_ReportsUnsetIntegrations(t *testing.T) {
	cfg := validConfig()
	assert.ElementsMatch(t, []string{"AUTH0_MGMT_DOMAIN", "OPENROUTER_API_KEY", "ELEVENLABS_API_KEY"}, cfg.Missing())

	cfg.Auth.Domain = "tenant.auth0.com"
	cfg.LLM.APIKey = "k"
	cfg.TTS.APIKey = "k"
	assert.Empty(t, cfg.Missing())
}

func TestAuthConfig_Endpoints(t *testing.T) {
	a := AuthConfig{Domain: "tenant.eu.auth0.com"}
	assert.Equal(t, "https://tenant.eu.auth0.com/", a.Issuer())
	assert.Equal(t, "https://tenant.eu.auth0.com/.well-known/jwks.json", a.JWKSURL())

	assert.Empty(t, AuthConfig{}.Issuer())
	assert.Empty(t, AuthConfig{}.JWKSURL())
}

func TestExpandDataPath_EmptyUsesDefault(t *testing.T) {
	cfg := &Config{}

	require.NoError(t, cfg.expandDataPath())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, ".lexile", "data"), cfg.Data.BasePath)
}

func TestExpandDataPath_TildeExpansion(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "~/my-data"}}

	require.NoError(t, cfg.expandDataPath())

	homeDir, _ := os.UserHomeDir() //nolint:errcheck // Test setup
	assert.Equal(t, filepath.Join(homeDir, "my-data"), cfg.Data.BasePath)
}

func TestExpandDataPath_RelativePath(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "relative/path"}}

	require.NoError(t, cfg.expandDataPath())

	assert.True(t, filepath.IsAbs(cfg.Data.BasePath))
	assert.Contains(t, cfg.Data.BasePath, "relative/path")
}

func TestExpandFontsDir_DefaultsUnderData(t *testing.T) {
	cfg := &Config{Data: DataConfig{BasePath: "/srv/lexile"}}

	require.NoError(t, cfg.expandFontsDir())

	assert.Equal(t, "/srv/lexile/fonts", cfg.Fonts.LocalDir)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"http://a", "http://b"}, splitList(" http://a , ,http://b "))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	result := getConfigValue("flag-value", "ENV_KEY", "default-value")
	assert.Equal(t, "flag-value", result)

	t.Setenv("TEST_ENV_KEY", "env-value")

	result = getConfigValue("", "TEST_ENV_KEY", "default-value")
	assert.Equal(t, "env-value", result)

	result = getConfigValue("", "NONEXISTENT_KEY", "default-value")
	assert.Equal(t, "default-value", result)
}

func TestGetBoolAndIntConfigValue(t *testing.T) {
	t.Setenv("TEST_BOOL", "YES")
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty")

	assert.True(t, getBoolConfigValue("", "TEST_BOOL", false))
	assert.False(t, getBoolConfigValue("no", "TEST_BOOL", true))
	assert.True(t, getBoolConfigValue("", "TEST_BOOL_UNSET", true))

	assert.Equal(t, 42, getIntConfigValue("", "TEST_INT", 7))
	assert.Equal(t, 7, getIntConfigValue("", "TEST_BAD_INT", 7))
}

func TestLoadEnvFile_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")

	content := `# Test env file
LEXILE_TEST_ENV=staging
LEXILE_TEST_DATA_PATH=/test/path
# Comment line
LEXILE_TEST_QUOTED="some value"
LEXILE_TEST_SINGLE='another value'
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	keys := []string{"LEXILE_TEST_ENV", "LEXILE_TEST_DATA_PATH", "LEXILE_TEST_QUOTED", "LEXILE_TEST_SINGLE"}
	for _, k := range keys {
		os.Unsetenv(k) //nolint:errcheck // Test cleanup
	}
	defer func() {
		for _, k := range keys {
			os.Unsetenv(k) //nolint:errcheck // Test cleanup
		}
	}()

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "staging", os.Getenv("LEXILE_TEST_ENV"))
	assert.Equal(t, "/test/path", os.Getenv("LEXILE_TEST_DATA_PATH"))
	assert.Equal(t, "some value", os.Getenv("LEXILE_TEST_QUOTED"))
	assert.Equal(t, "another value", os.Getenv("LEXILE_TEST_SINGLE"))
}

func TestLoadEnvFile_InvalidFormat(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), ".env")

	content := `VALID_KEY=valid_value
INVALID LINE WITHOUT EQUALS
`
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o644))

	err := loadEnvFile(envFile)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestLoadEnvFile_NonExistentFile(t *testing.T) {
	assert.Error(t, loadEnvFile("/nonexistent/file/.env"))
}

func TestLoadEnvFile_ExistingEnvVarsNotOverwritten(t *testing.T) {
	t.Setenv("LEXILE_TEST_VAR", "original-value")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(`LEXILE_TEST_VAR=new-value`), 0o644))

	require.NoError(t, loadEnvFile(envFile))

	assert.Equal(t, "original-value", os.Getenv("LEXILE_TEST_VAR"))
}
