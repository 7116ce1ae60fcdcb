// Package openai is an inference.Client for the OpenAI chat completions API.
package openai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/at-ishikawa/parentstudy/internal/inference"
)

const providerName = "openai"

type Client struct {
	apiClient *goopenai.Client
	model     string
}

var _ inference.Client = (*Client)(nil)

func NewClient(baseURL, apiKey, model string, httpClient *http.Client) *Client {
	config := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if httpClient != nil {
		config.HTTPClient = httpClient
	}

	return &Client{
		apiClient: goopenai.NewClientWithConfig(config),
		model:     model,
	}
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

func messages(systemInstruction, prompt string) []goopenai.ChatCompletionMessage {
	var result []goopenai.ChatCompletionMessage
	if systemInstruction != "" {
		result = append(result, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: systemInstruction,
		})
	}
	return append(result, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: prompt,
	})
}

func serviceError(err error) *inference.ServiceError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &inference.ServiceError{
			Provider:   providerName,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}
	var requestErr *goopenai.RequestError
	if errors.As(err, &requestErr) {
		message := http.StatusText(requestErr.HTTPStatusCode)
		if len(requestErr.Body) > 0 {
			message = string(requestErr.Body)
		}
		return &inference.ServiceError{
			Provider:   providerName,
			StatusCode: requestErr.HTTPStatusCode,
			Message:    message,
			Err:        err,
		}
	}
	return &inference.ServiceError{
		Provider: providerName,
		Message:  "request failed",
		Err:      err,
	}
}

// StreamText implements the inference.Client interface
func (client *Client) StreamText(ctx context.Context, req inference.TextRequest) inference.FragmentStream {
	return func(yield func(string, error) bool) {
		slog.Default().Debug("openai stream request",
			"model", client.model,
			"prompt", req.Prompt)

		stream, err := client.apiClient.CreateChatCompletionStream(ctx, goopenai.ChatCompletionRequest{
			Model:    client.model,
			Messages: messages(req.SystemInstruction, req.Prompt),
			Stream:   true,
		})
		if err != nil {
			yield("", serviceError(err))
			return
		}
		defer func() {
			_ = stream.Close()
		}()

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", serviceError(err))
				return
			}
			if len(response.Choices) == 0 {
				continue
			}

			fragment := response.Choices[0].Delta.Content
			if fragment == "" {
				continue
			}
			if !yield(fragment, nil) {
				return
			}
		}
	}
}

// GenerateJSON implements the inference.Client interface with a strict json_schema response format
func (client *Client) GenerateJSON(ctx context.Context, req inference.StructuredRequest) (string, error) {
	request := goopenai.ChatCompletionRequest{
		Model:    client.model,
		Messages: messages(req.SystemInstruction, req.Prompt),
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	if req.Schema.Type != "" {
		schema := strictSchema(req.Schema)
		name := req.Name
		if name == "" {
			name = "response"
		}
		request.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: &schema,
				Strict: true,
			},
		}
	}
	slog.Default().Debug("openai structured request",
		"model", client.model,
		"schema", req.Name,
		"prompt", req.Prompt)

	response, err := client.apiClient.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", serviceError(err)
	}
	if len(response.Choices) == 0 {
		return "", nil
	}

	choice := response.Choices[0]
	slog.Default().Debug("openai structured response",
		"finishReason", choice.FinishReason,
		"payload", choice.Message.Content)
	if choice.FinishReason == goopenai.FinishReasonLength {
		return "", &inference.PayloadError{Payload: choice.Message.Content, Err: inference.ErrTruncated}
	}
	return choice.Message.Content, nil
}

// strictSchema closes every object of def, which strict mode requires.
func strictSchema(def jsonschema.Definition) jsonschema.Definition {
	result := def
	if def.Type == jsonschema.Object {
		result.AdditionalProperties = false
	}
	if len(def.Properties) > 0 {
		result.Properties = make(map[string]jsonschema.Definition, len(def.Properties))
		for name, property := range def.Properties {
			result.Properties[name] = strictSchema(property)
		}
	}
	if def.Items != nil {
		items := strictSchema(*def.Items)
		result.Items = &items
	}
	return result
}
