package inference

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
)

// RetryConfig configures RetryClient.
type RetryConfig struct {
	Attempts uint
	Delay    time.Duration
	MaxDelay time.Duration
}

// RetryClient retries the calls of another Client on transient failures.
// A stream is only retried while it has not yielded any fragment yet.
type RetryClient struct {
	client Client
	config RetryConfig
}

var _ Client = (*RetryClient)(nil)

func NewRetryClient(client Client, config RetryConfig) *RetryClient {
	if config.Attempts == 0 {
		config.Attempts = DefaultMaxRetryAttempts
	}
	return &RetryClient{
		client: client,
		config: config,
	}
}

func (c *RetryClient) options(ctx context.Context, retryIf retry.RetryIfFunc) []retry.Option {
	options := []retry.Option{
		retry.Context(ctx),
		retry.Attempts(c.config.Attempts),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(retryIf),
		retry.OnRetry(func(n uint, err error) {
			if n+1 < c.config.Attempts && retryIf(err) {
				slog.Default().Warn("Retrying inference call",
					"attempt", n+1,
					"error", err)
			}
		}),
	}
	if c.config.Delay > 0 {
		options = append(options, retry.Delay(c.config.Delay))
	}
	if c.config.MaxDelay > 0 {
		options = append(options, retry.MaxDelay(c.config.MaxDelay))
	}
	return options
}

func (c *RetryClient) GenerateJSON(ctx context.Context, req StructuredRequest) (string, error) {
	var payload string
	err := retry.Do(func() error {
		result, err := c.client.GenerateJSON(ctx, req)
		if err != nil {
			return err
		}
		payload = result
		return nil
	}, c.options(ctx, IsRetryable)...)
	if err != nil {
		return "", canceledOr(ctx, err)
	}
	return payload, nil
}

func (c *RetryClient) StreamText(ctx context.Context, req TextRequest) FragmentStream {
	return func(yield func(string, error) bool) {
		var yielded, stopped bool
		err := retry.Do(func() error {
			for fragment, err := range c.client.StreamText(ctx, req) {
				if err != nil {
					return err
				}
				yielded = true
				if !yield(fragment, nil) {
					stopped = true
					return nil
				}
			}
			return nil
		}, c.options(ctx, func(err error) bool {
			return !yielded && IsRetryable(err)
		})...)
		if err != nil && !stopped {
			yield("", canceledOr(ctx, err))
		}
	}
}

// canceledOr returns ErrCanceled when ctx is done, err otherwise.
func canceledOr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
	}
	return err
}
