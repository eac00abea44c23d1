package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DemoDefaults(t *testing.T) {
	t.Setenv("DEMO_MODE", "true")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderDemo, cfg.LLMProvider)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())
	assert.Equal(t, "redis:6379", cfg.RedisAddr())
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, "gpt-3.5-turbo", cfg.OpenAIModel)
	assert.Equal(t, "llama2", cfg.OllamaModel)
	assert.True(t, cfg.CORSAllowAll)
	assert.Empty(t, cfg.ContentRating)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("USE_OLLAMA", "true")
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("API_PORT", "9090")
	t.Setenv("REDIS_HOST", "localhost")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CONTENT_RATING", "PG-13")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderOllama, cfg.LLMProvider)
	assert.Equal(t, "mistral", cfg.OllamaModel)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "localhost:6380", cfg.RedisAddr())
	assert.Equal(t, 2, cfg.RedisDB)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.Equal(t, "PG-13", cfg.ContentRating)
}

func TestLoad_DemoModeWinsOverOllama(t *testing.T) {
	t.Setenv("USE_OLLAMA", "true")
	t.Setenv("DEMO_MODE", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderDemo, cfg.LLMProvider)
}

func TestLoad_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := Load("")
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
}

func TestLoad_AnthropicRequiresKey(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := Load("")
	assert.ErrorContains(t, err, "ANTHROPIC_API_KEY")

	t.Setenv("ANTHROPIC_API_KEY", "ak-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-test")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, "claude-test", cfg.AnthropicModel)
}

func TestLoad_InvalidProvider(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "carrier-pigeon")

	_, err := Load("")
	assert.ErrorContains(t, err, "invalid llm provider")
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "npc.yml")
	content := "llm_provider: demo\nport: \"7000\"\nredis_namespace: test\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("API_PORT", "7001")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ProviderDemo, cfg.LLMProvider)
	assert.Equal(t, "test", cfg.RedisNamespace)
	assert.Equal(t, "7001", cfg.Port)
}

func TestLoad_MissingFileIsIgnored(t *testing.T) {
	t.Setenv("DEMO_MODE", "1")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	require.NoError(t, err)
	assert.Equal(t, ProviderDemo, cfg.LLMProvider)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warning"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("nonsense"))
}
