package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()
	require.NotNil(t, config)

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "badger", config.Storage.Type)
	assert.Equal(t, "standard", config.Analysis.DefaultDepth)
	assert.Equal(t, "eng+chi_tra", config.Parsing.OCRLanguages)
	assert.Equal(t, LLMProviderGemini, config.LLM.Provider)
	assert.Equal(t, int64(25*1024*1024), config.MaxUploadBytes())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lectio.toml")

	content := `
environment = "production"

[server]
port = 9090

[storage]
type = "postgres"

[storage.postgres]
host = "db.internal"
database = "lectio"

[analysis]
default_depth = "deep"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadFromFile(nil, path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.Equal(t, 9090, config.Server.Port)
	assert.Equal(t, "postgres", config.Storage.Type)
	assert.Equal(t, "db.internal", config.Storage.Postgres.Host)
	assert.Equal(t, "deep", config.Analysis.DefaultDepth)

	// Unspecified values keep defaults
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, "./data/lectio", config.Storage.Badger.Path)
	assert.Equal(t, LLMProviderGemini, config.LLM.Provider)
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile(nil, "/nonexistent/lectio.toml")
	assert.Error(t, err)
}

func TestLoadFromFiles_MergesInOrder(t *testing.T) {
	dir := t.TempDir()

	base := filepath.Join(dir, "base.toml")
	require.NoError(t, os.WriteFile(base, []byte(`
[server]
port = 9000
host = "0.0.0.0"
`), 0644))

	override := filepath.Join(dir, "override.toml")
	require.NoError(t, os.WriteFile(override, []byte(`
[server]
port = 9999
`), 0644))

	config, err := LoadFromFiles(nil, base, override)
	require.NoError(t, err)

	// Later files win; untouched fields keep earlier values
	assert.Equal(t, 9999, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestLoadFromFiles_EnvOverride(t *testing.T) {
	t.Setenv("LECTIO_SERVER_PORT", "7070")
	t.Setenv("LECTIO_LLM_PROVIDER", "claude")

	config, err := LoadFromFiles(nil)
	require.NoError(t, err)

	assert.Equal(t, 7070, config.Server.Port)
	assert.Equal(t, LLMProviderClaude, config.LLM.Provider)
}

func TestLoadFromFiles_ProviderKeyEnvFallback(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "sk-env-gemini")
	t.Setenv("ANTHROPIC_API_KEY", "sk-env-claude")

	config, err := LoadFromFiles(nil)
	require.NoError(t, err)

	assert.Equal(t, "sk-env-gemini", config.Gemini.APIKey)
	assert.Equal(t, "sk-env-claude", config.Claude.APIKey)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 3000, "127.0.0.1")

	assert.Equal(t, 3000, config.Server.Port)
	assert.Equal(t, "127.0.0.1", config.Server.Host)
}

func TestApplyFlagOverrides_ZeroKeepsConfig(t *testing.T) {
	config := NewDefaultConfig()
	config.Server.Port = 8081

	ApplyFlagOverrides(config, 0, "")

	assert.Equal(t, 8081, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)
}

func TestValidateSchedule(t *testing.T) {
	tests := []struct {
		name     string
		schedule string
		wantErr  bool
	}{
		{"every five minutes", "*/5 * * * *", false},
		{"hourly", "0 * * * *", false},
		{"descriptor", "@hourly", false},
		{"empty", "", true},
		{"garbage", "not a schedule", true},
		{"too many fields", "* * * * * * *", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSchedule(tt.schedule)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPostgresConfigDSN(t *testing.T) {
	pg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "lectio",
		Password: "secret",
		Database: "lectio",
		SSLMode:  "disable",
	}

	dsn := pg.DSN()
	assert.Contains(t, dsn, "host=localhost")
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "user=lectio")
	assert.Contains(t, dsn, "password=secret")
	assert.Contains(t, dsn, "dbname=lectio")
	assert.Contains(t, dsn, "sslmode=disable")
}

func TestIsProduction(t *testing.T) {
	config := NewDefaultConfig()
	assert.False(t, config.IsProduction())

	config.Environment = "production"
	assert.True(t, config.IsProduction())

	config.Environment = "PRODUCTION"
	assert.True(t, config.IsProduction())
}

func TestResolveAPIKey_EnvPriority(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "sk-from-env")

	key, err := ResolveAPIKey(context.Background(), nil, "gemini_api_key", "sk-from-config")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", key)
}

func TestResolveAPIKey_ConfigFallback(t *testing.T) {
	key, err := ResolveAPIKey(context.Background(), nil, "unknown_key", "sk-from-config")
	require.NoError(t, err)
	assert.Equal(t, "sk-from-config", key)
}

func TestResolveAPIKey_NotFound(t *testing.T) {
	_, err := ResolveAPIKey(context.Background(), nil, "unknown_key", "")
	assert.Error(t, err)
}
