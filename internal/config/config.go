package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderDemo      = "demo"
	ProviderAnthropic = "anthropic"
)

type Config struct {
	Host        string `koanf:"host"`
	Port        string `koanf:"port"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	LLMProvider      string        `koanf:"llm_provider"`
	DemoMode         bool          `koanf:"demo_mode"`
	UseOllama        bool          `koanf:"use_ollama"`
	OpenAIAPIKey     string        `koanf:"openai_api_key"`
	OpenAIModel      string        `koanf:"openai_model"`
	OpenAIBaseURL    string        `koanf:"openai_base_url"`
	AnthropicAPIKey  string        `koanf:"anthropic_api_key"`
	AnthropicModel   string        `koanf:"anthropic_model"`
	AnthropicBaseURL string        `koanf:"anthropic_base_url"`
	OllamaBaseURL    string        `koanf:"ollama_base_url"`
	OllamaModel      string        `koanf:"ollama_model"`
	LLMTimeout       time.Duration `koanf:"llm_timeout"`

	RedisHost      string `koanf:"redis_host"`
	RedisPort      int    `koanf:"redis_port"`
	RedisDB        int    `koanf:"redis_db"`
	RedisNamespace string `koanf:"redis_namespace"`

	CORSAllowAll bool `koanf:"cors_allow_all"`

	// ContentRating selects reply filtering; G, PG and PG-13 filter profanity.
	ContentRating string `koanf:"content_rating"`
}

// envKeys maps environment variables onto config keys.
var envKeys = map[string]string{
	"API_HOST":           "host",
	"API_PORT":           "port",
	"ENVIRONMENT":        "environment",
	"LOG_LEVEL":          "log_level",
	"LLM_PROVIDER":       "llm_provider",
	"DEMO_MODE":          "demo_mode",
	"USE_OLLAMA":         "use_ollama",
	"OPENAI_API_KEY":     "openai_api_key",
	"OPENAI_MODEL":       "openai_model",
	"OPENAI_BASE_URL":    "openai_base_url",
	"ANTHROPIC_API_KEY":  "anthropic_api_key",
	"ANTHROPIC_MODEL":    "anthropic_model",
	"ANTHROPIC_BASE_URL": "anthropic_base_url",
	"OLLAMA_BASE_URL":    "ollama_base_url",
	"OLLAMA_MODEL":       "ollama_model",
	"LLM_TIMEOUT":        "llm_timeout",
	"REDIS_HOST":         "redis_host",
	"REDIS_PORT":         "redis_port",
	"REDIS_DB":           "redis_db",
	"REDIS_NAMESPACE":    "redis_namespace",
	"CORS_ALLOW_ALL":     "cors_allow_all",
	"CONTENT_RATING":     "content_rating",
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Host:           "0.0.0.0",
		Port:           "8000",
		Environment:    "development",
		LogLevel:       "info",
		LLMProvider:    ProviderOpenAI,
		OpenAIModel:    "gpt-3.5-turbo",
		AnthropicModel: "claude-3-5-haiku-latest",
		OllamaBaseURL:  "http://localhost:11434",
		OllamaModel:    "llama2",
		LLMTimeout:     30 * time.Second,
		RedisHost:      "redis",
		RedisPort:      6379,
		CORSAllowAll:   true,
	}
}

// Load builds the configuration from defaults, an optional YAML file, and
// environment variables, in that order of precedence (last wins).
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", func(s string) string {
		return envKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	cfg.LLMProvider = cfg.resolveProvider()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveProvider applies the DEMO_MODE and USE_OLLAMA switches. Demo mode
// wins over everything.
func (c *Config) resolveProvider() string {
	switch {
	case c.DemoMode:
		return ProviderDemo
	case c.UseOllama:
		return ProviderOllama
	default:
		return strings.ToLower(strings.TrimSpace(c.LLMProvider))
	}
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required when using the openai provider")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY is required when using the anthropic provider")
		}
	case ProviderOllama:
		if c.OllamaBaseURL == "" {
			return fmt.Errorf("OLLAMA_BASE_URL is required when using the ollama provider")
		}
	case ProviderDemo:
	default:
		return fmt.Errorf("invalid llm provider %q: must be one of openai, anthropic, ollama, demo", c.LLMProvider)
	}
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if c.LLMTimeout <= 0 {
		return fmt.Errorf("llm_timeout must be positive")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// RedisAddr is the host:port of the Redis server.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// SlogLevel converts LogLevel into a slog level.
func (c *Config) SlogLevel() slog.Level {
	return parseLogLevel(c.LogLevel)
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
