package inference

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Accumulate concatenates fragments in arrival order and calls onUpdate with the
// running text after every fragment. On failure it returns the text received so far
// together with the error, and onUpdate is not called again.
// Cancelling ctx stops the stream and returns ErrCanceled.
func Accumulate(ctx context.Context, fragments FragmentStream, onUpdate func(accumulated string)) (string, error) {
	var accumulated strings.Builder
	for fragment, err := range fragments {
		if ctx.Err() != nil {
			return accumulated.String(), fmt.Errorf("%w: %w", ErrCanceled, context.Cause(ctx))
		}
		if err != nil {
			return accumulated.String(), err
		}

		accumulated.WriteString(fragment)
		if onUpdate != nil {
			onUpdate(accumulated.String())
		}
	}
	return accumulated.String(), nil
}

// GenerateStream streams a generation for req and accumulates its fragments.
func GenerateStream(ctx context.Context, client Client, req TextRequest, onUpdate func(accumulated string)) (string, error) {
	text, err := Accumulate(ctx, client.StreamText(ctx, req), onUpdate)
	if err != nil {
		slog.Default().Debug("stream failed",
			"received", len(text),
			"error", err)
		return text, fmt.Errorf("client.StreamText > %w", err)
	}
	slog.Default().Debug("stream completed", "length", len(text))
	return text, nil
}
