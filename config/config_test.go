package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.ServerAddress)
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, "GROQ_API_KEY", cfg.LLMAPIKeyEnv)
	assert.Equal(t, 100, cfg.DailyLimit)
	assert.Equal(t, 24*time.Hour, cfg.QuotaWindow)
	assert.False(t, cfg.QuotaStrict)
	assert.Equal(t, 60*time.Second, cfg.GenerationTimeout)
	assert.Equal(t, int64(8), cfg.MaxConcurrentGenerations)
	assert.True(t, cfg.PromptAugment)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.Production())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DAILY_LIMIT", "5")
	t.Setenv("QUOTA_WINDOW", "1h")
	t.Setenv("QUOTA_STRICT", "true")
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("PROMPT_AUGMENT", "false")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://localhost:3000, https://example.com")
	t.Setenv("APP_ENV", "production")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.DailyLimit)
	assert.Equal(t, time.Hour, cfg.QuotaWindow)
	assert.True(t, cfg.QuotaStrict)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.False(t, cfg.PromptAugment)
	assert.Equal(t, []string{"http://localhost:3000", "https://example.com"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.Production())
}

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	yaml := "SERVER_ADDRESS: \":9090\"\nDAILY_LIMIT: 7\nLLM_MODEL: llama-3.3-70b-versatile\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, 7, cfg.DailyLimit)
	assert.Equal(t, "llama-3.3-70b-versatile", cfg.LLMModel)
}

func TestLoadConfig_Invalid(t *testing.T) {
	t.Setenv("DAILY_LIMIT", "0")
	t.Setenv("LLM_PROVIDER", "carrier-pigeon")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DAILY_LIMIT must be positive")
	assert.Contains(t, err.Error(), "LLM_PROVIDER")
}

func TestLookupCredential_ReadsAtCallTime(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "")
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, cfg.LookupCredential())

	t.Setenv("GROQ_API_KEY", "gsk_test")
	assert.Equal(t, "gsk_test", cfg.LookupCredential())
}
