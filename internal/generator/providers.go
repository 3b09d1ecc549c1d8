package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/honeycarbs/cypher-ask/internal/config"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderGoogleAI  = "googleai"
)

// NewModel builds the langchaingo model for cfg.Provider
func NewModel(ctx context.Context, cfg config.LLM) (llms.Model, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderAnthropic:
		opts := []anthropic.Option{anthropic.WithModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, anthropic.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		m, err := anthropic.New(opts...)
		if err != nil {
			return nil, initErr(ProviderAnthropic, err)
		}
		return m, nil

	case ProviderOpenAI:
		opts := []openai.Option{openai.WithModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, openai.WithToken(cfg.APIKey))
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		m, err := openai.New(opts...)
		if err != nil {
			return nil, initErr(ProviderOpenAI, err)
		}
		return m, nil

	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(cfg.BaseURL))
		}
		m, err := ollama.New(opts...)
		if err != nil {
			return nil, initErr(ProviderOllama, err)
		}
		return m, nil

	case ProviderGoogleAI:
		opts := []googleai.Option{googleai.WithDefaultModel(cfg.Model)}
		if cfg.APIKey != "" {
			opts = append(opts, googleai.WithAPIKey(cfg.APIKey))
		}
		m, err := googleai.New(ctx, opts...)
		if err != nil {
			return nil, initErr(ProviderGoogleAI, err)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("generator: unknown LLM provider %q", cfg.Provider)
	}
}

func initErr(provider string, err error) error {
	return fmt.Errorf("generator: init %s: %w", provider, err)
}
