// Package gemini is an inference.Client for the Gemini generateContent REST API.
package gemini

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"resty.dev/v3"

	"github.com/at-ishikawa/parentstudy/internal/inference"
)

const (
	providerName   = "gemini"
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// maxEventSize bounds a single SSE line
	maxEventSize = 1 << 20
)

type Client struct {
	httpClient *resty.Client
	model      string
	// timeout bounds a generateContent call. Streams are bounded by the caller's context only.
	timeout time.Duration
}

var _ inference.Client = (*Client)(nil)

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("x-goog-api-key", apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient: client,
		model:      model,
		timeout:    timeout,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

type generateContentRequest struct {
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	Contents          []content         `json:"contents"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMIMEType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *schema `json:"responseSchema,omitempty"`
}

type generateContentResponse struct {
	Candidates     []candidate     `json:"candidates"`
	PromptFeedback *promptFeedback `json:"promptFeedback,omitempty"`
	Error          *apiError       `json:"error,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type promptFeedback struct {
	BlockReason string `json:"blockReason,omitempty"`
}

type errorResponse struct {
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

const finishReasonMaxTokens = "MAX_TOKENS"

func newRequest(systemInstruction, prompt string, config *generationConfig) generateContentRequest {
	request := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: config,
	}
	if systemInstruction != "" {
		request.SystemInstruction = &content{Parts: []part{{Text: systemInstruction}}}
	}
	return request
}

// text joins the text parts of the first candidate.
func (response generateContentResponse) text() string {
	if len(response.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range response.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func (response generateContentResponse) finishReason() string {
	if len(response.Candidates) == 0 {
		return ""
	}
	return response.Candidates[0].FinishReason
}

func (e *apiError) serviceError(statusCode int) *inference.ServiceError {
	if e.Code != 0 {
		statusCode = e.Code
	}
	message := e.Message
	if message == "" {
		message = e.Status
	}
	return &inference.ServiceError{
		Provider:   providerName,
		StatusCode: statusCode,
		Message:    message,
	}
}

func requestError(err error) *inference.ServiceError {
	return &inference.ServiceError{
		Provider: providerName,
		Message:  "request failed",
		Err:      err,
	}
}

func responseError(statusCode int, body []byte) *inference.ServiceError {
	var errResponse errorResponse
	if err := json.Unmarshal(body, &errResponse); err == nil && errResponse.Error != nil {
		return errResponse.Error.serviceError(statusCode)
	}
	message := strings.TrimSpace(string(body))
	if message == "" {
		message = http.StatusText(statusCode)
	}
	return &inference.ServiceError{
		Provider:   providerName,
		StatusCode: statusCode,
		Message:    message,
	}
}

// StreamText implements the inference.Client interface with the SSE variant of streamGenerateContent
func (client *Client) StreamText(ctx context.Context, req inference.TextRequest) inference.FragmentStream {
	return func(yield func(string, error) bool) {
		body := newRequest(req.SystemInstruction, req.Prompt, nil)
		slog.Default().Debug("gemini stream request",
			"model", client.model,
			"prompt", req.Prompt)

		response, err := client.httpClient.R().
			SetContext(ctx).
			SetPathParam("model", client.model).
			SetQueryParam("alt", "sse").
			SetBody(body).
			SetDoNotParseResponse(true).
			Post("/models/{model}:streamGenerateContent")
		if err != nil {
			yield("", requestError(err))
			return
		}
		defer func() {
			_ = response.Body.Close()
		}()

		if response.IsError() {
			errBody, _ := io.ReadAll(response.Body)
			yield("", responseError(response.StatusCode(), errBody))
			return
		}

		scanner := bufio.NewScanner(response.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)
		for scanner.Scan() {
			data, ok := strings.CutPrefix(scanner.Text(), "data:")
			if !ok {
				continue
			}
			data = strings.TrimSpace(data)
			if data == "" {
				continue
			}

			var chunk generateContentResponse
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				yield("", &inference.ServiceError{
					Provider: providerName,
					Message:  "malformed stream event",
					Err:      fmt.Errorf("json.Unmarshal > %w", err),
				})
				return
			}
			if chunk.Error != nil {
				yield("", chunk.Error.serviceError(0))
				return
			}

			fragment := chunk.text()
			if fragment == "" {
				continue
			}
			if !yield(fragment, nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", &inference.ServiceError{
				Provider: providerName,
				Message:  "stream interrupted",
				Err:      err,
			})
		}
	}
}

// GenerateJSON implements the inference.Client interface with a JSON-typed generateContent call
func (client *Client) GenerateJSON(ctx context.Context, req inference.StructuredRequest) (string, error) {
	config := &generationConfig{
		ResponseMIMEType: "application/json",
	}
	if req.Schema.Type != "" {
		config.ResponseSchema = toSchema(req.Schema)
	}
	body := newRequest(req.SystemInstruction, req.Prompt, config)
	slog.Default().Debug("gemini structured request",
		"model", client.model,
		"schema", req.Name,
		"prompt", req.Prompt)

	if client.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, client.timeout)
		defer cancel()
	}

	var result generateContentResponse
	var errResult errorResponse
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", client.model).
		SetBody(body).
		SetResult(&result).
		SetError(&errResult).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", requestError(err))
	}
	if response.IsError() {
		if errResult.Error != nil {
			return "", errResult.Error.serviceError(response.StatusCode())
		}
		return "", responseError(response.StatusCode(), nil)
	}

	payload := result.text()
	slog.Default().Debug("gemini structured response",
		"finishReason", result.finishReason(),
		"payload", payload)
	if result.finishReason() == finishReasonMaxTokens {
		return "", &inference.PayloadError{Payload: payload, Err: inference.ErrTruncated}
	}
	return payload, nil
}
