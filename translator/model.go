package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/imkonsowa/nearme-nli/config"
)

// NewModel creates the generation client for the configured provider after
// checking the generation settings.
func NewModel(ctx context.Context, cfg *config.Config) (llms.Model, error) {
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}

	switch cfg.LLM.Provider {
	case config.ProviderGoogleAI:
		if strings.TrimSpace(cfg.LLM.APIKey) == "" {
			return nil, fmt.Errorf("%w: %s is not set", ErrMissingCredential, config.APIKeyEnv)
		}

		model, err := googleai.New(ctx,
			googleai.WithAPIKey(cfg.LLM.APIKey),
			googleai.WithDefaultModel(cfg.LLM.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create googleai client: %w", err)
		}

		return model, nil
	case config.ProviderOllama:
		model, err := ollama.New(
			ollama.WithServerURL(cfg.Ollama.Address()),
			ollama.WithModel(cfg.LLM.Model),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama client: %w", err)
		}

		return model, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.LLM.Provider)
}
