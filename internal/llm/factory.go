package llm

import (
	"context"
	"fmt"

	"github.com/gitenglishhub/prepal/internal/store"
)

// NewProvider creates a Provider from configuration.
// It returns the provider wrapped with retry and logging middleware.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// Wrap with middleware: caller → retry → logging → base
	logged := WithLogging(base, eventRepo)
	retried := WithRetry(logged, cfg.Retry)

	return retried, nil
}

// Credential returns the CredentialProvider matching the configured backend.
func Credential(cfg Config) CredentialProvider {
	switch cfg.Provider {
	case "openai":
		return StaticCredential{Key: cfg.OpenAI.APIKey}
	case "anthropic":
		return StaticCredential{Key: cfg.Anthropic.APIKey}
	case "mock":
		return StaticCredential{Key: "mock"}
	default:
		return StaticCredential{Key: cfg.Gemini.APIKey}
	}
}
