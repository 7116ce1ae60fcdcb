package inference

import (
	"context"
	"iter"

	"github.com/sashabaranov/go-openai/jsonschema"
)

//go:generate mockgen -source=interface.go -destination=../mocks/inference/mock_client.go -package=mock_inference

// Client interface defines the calls made to a hosted text-generation model
type Client interface {
	// StreamText starts a generation and yields text fragments in arrival order.
	// A non-nil error is yielded at most once and ends the sequence.
	StreamText(ctx context.Context, req TextRequest) FragmentStream
	// GenerateJSON performs one non-streaming generation constrained to req.Schema
	// and returns the raw payload text.
	GenerateJSON(ctx context.Context, req StructuredRequest) (string, error)
}

// FragmentStream is a lazy, finite and non-restartable sequence of text fragments
type FragmentStream = iter.Seq2[string, error]

// TextRequest holds parameters for a free-form text generation
type TextRequest struct {
	Prompt            string
	SystemInstruction string // Optional: persona instruction sent ahead of the prompt
}

// StructuredRequest holds parameters for a generation constrained to a JSON schema
type StructuredRequest struct {
	Prompt            string
	SystemInstruction string
	Name              string // Schema name for providers that require one
	Schema            jsonschema.Definition
}

const (
	DefaultMaxRetryAttempts = 3
)
