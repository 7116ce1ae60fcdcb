package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/at-ishikawa/parentstudy/internal/config"
	"github.com/at-ishikawa/parentstudy/internal/inference"
	"github.com/at-ishikawa/parentstudy/internal/inference/gemini"
	"github.com/at-ishikawa/parentstudy/internal/inference/openai"
)

// NewInferenceClient returns the configured provider wrapped with retries.
// The returned function releases the provider's resources.
func NewInferenceClient(cfg *config.Config) (inference.Client, func(ctx context.Context) error, error) {
	settings := cfg.ProviderSettings()
	retryConfig := inference.RetryConfig{
		Attempts: cfg.Inference.MaxRetryAttempts,
		Delay:    cfg.Inference.RetryDelay,
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		client := gemini.NewClient(settings.BaseURL, settings.APIKey, settings.Model, cfg.Inference.Timeout)
		closeFn := func(context.Context) error {
			return client.Close()
		}
		return inference.NewRetryClient(client, retryConfig), closeFn, nil
	case config.ProviderOpenAI:
		// The timeout waits for response headers only so a long stream is not cut off.
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.ResponseHeaderTimeout = cfg.Inference.Timeout
		client := openai.NewClient(settings.BaseURL, settings.APIKey, settings.Model, &http.Client{
			Transport: transport,
		})
		closeFn := func(context.Context) error {
			return nil
		}
		return inference.NewRetryClient(client, retryConfig), closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
