package ai

import (
	"context"
	"fmt"
	"log"

	"github.com/jaidee/backend/internal/config"
)

// NewGateway builds the backend selected by cfg.Provider wrapped with the
// configured retry policy.
func NewGateway(ctx context.Context, cfg config.AIConfig) (Gateway, error) {
	var (
		backend Gateway
		err     error
	)

	switch cfg.Provider {
	case config.ProviderGemini:
		backend, err = NewGeminiGateway(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Temperature32())
	case config.ProviderArk, config.ProviderOpenAI, config.ProviderLocal:
		chatModel, modelErr := cfg.NewChatModel(ctx)
		if modelErr != nil {
			return nil, fmt.Errorf("failed to create chat model: %w", modelErr)
		}
		backend, err = NewChainGateway(ctx, cfg.Provider, chatModel)
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[ai] gateway ready: provider=%s model=%s attempts=%d timeout=%s", cfg.Provider, cfg.ModelName(), cfg.MaxRetries+1, cfg.Timeout)
	return WithRetry(backend, cfg.Provider, RetryPolicy{
		Attempts: cfg.MaxRetries + 1,
		Backoff:  cfg.RetryBackoff,
		Timeout:  cfg.Timeout,
	}), nil
}
