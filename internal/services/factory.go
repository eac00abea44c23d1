package services

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/npc-engine/internal/config"
)

// NewLLMService selects the completion backend once, at startup.
func NewLLMService(cfg *config.Config, logger *slog.Logger) (LLMService, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required when using openai provider")
		}
		return NewOpenAIService(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, logger), nil
	case config.ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("Anthropic API key is required when using anthropic provider")
		}
		return NewAnthropicService(cfg.AnthropicAPIKey, cfg.AnthropicModel, cfg.AnthropicBaseURL, logger), nil
	case config.ProviderOllama:
		return NewOllamaService(cfg.OllamaBaseURL, cfg.OllamaModel, logger), nil
	case config.ProviderDemo:
		return NewDemoService(logger), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}
