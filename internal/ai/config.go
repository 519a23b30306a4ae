package ai

import (
	"context"
	"strings"

	"github.com/suPer8Hu/notechat/internal/config"
)

// NewConfiguredRegistry registers every provider the config knows about.
// An empty model passed to a factory falls back to that provider's
// configured model.
func NewConfiguredRegistry(cfg config.Config) *Registry {
	reg := NewRegistry()

	reg.Register("gemini", func(ctx context.Context, model string) (Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.GeminiModel
		}
		return NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, m, cfg.AITimeout), nil
	})

	reg.Register("ollama", func(ctx context.Context, model string) (Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OllamaModel
		}
		return NewOllamaProvider(cfg.OllamaBaseURL, m, cfg.AITimeout), nil
	})

	reg.Register("openrouter", func(ctx context.Context, model string) (Provider, error) {
		m := strings.TrimSpace(model)
		if m == "" {
			m = cfg.OpenRouterModel
		}
		return NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, m,
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName, cfg.AITimeout), nil
	})

	return reg
}

// FromConfig resolves the provider named by AI_PROVIDER.
func FromConfig(ctx context.Context, cfg config.Config) (Provider, error) {
	return NewConfiguredRegistry(cfg).Get(ctx, cfg.AIProvider, cfg.AIModel)
}
