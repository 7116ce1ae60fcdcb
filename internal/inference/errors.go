package inference

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNoData is returned when a structured generation succeeds but carries an empty payload.
	ErrNoData = errors.New("no data returned from API")
	// ErrCanceled is returned when the caller cancels a generation.
	ErrCanceled = errors.New("generation canceled")
	// ErrTruncated marks a structured payload that ends before its JSON document is complete.
	ErrTruncated = errors.New("payload ends before the JSON document is complete")
)

// ServiceError is a transport or service failure reported while talking to a provider.
type ServiceError struct {
	Provider   string
	StatusCode int // 0 when no response was received
	Message    string
	Err        error
}

func (e *ServiceError) Error() string {
	switch {
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: response error %d: %s", e.Provider, e.StatusCode, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Provider, e.Message, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Retryable reports whether sending the same request again may succeed.
func (e *ServiceError) Retryable() bool {
	if e.StatusCode == 0 {
		return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	}
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// PayloadError is returned when a structured payload is empty, malformed or invalid.
type PayloadError struct {
	Payload string
	Err     error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid structured payload: %v", e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether err is worth another attempt of the same request.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrCanceled) {
		return false
	}
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.Retryable()
	}
	var payloadErr *PayloadError
	if errors.As(err, &payloadErr) {
		// Only truncated payloads are retried; a complete document that fails the schema is not
		return errors.Is(err, ErrTruncated)
	}
	return false
}
