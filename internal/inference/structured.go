package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/at-ishikawa/parentstudy/internal/validation"
)

var payloadValidator = validation.MustNew("json")

// GenerateStructured requests a payload constrained to req.Schema and parses it into T.
// T is validated with its `validate` struct tags and, when it implements it, its Validate method.
// Every payload failure is a *PayloadError; an empty payload wraps ErrNoData.
func GenerateStructured[T any](ctx context.Context, client Client, req StructuredRequest) (T, error) {
	var zero T
	payload, err := client.GenerateJSON(ctx, req)
	if err != nil {
		return zero, fmt.Errorf("client.GenerateJSON > %w", err)
	}

	result, err := ParseStructured[T](req.Schema, payload)
	if err != nil {
		slog.Default().Debug("structured payload rejected",
			"schema", req.Name,
			"payload", payload,
			"error", err)
		return zero, err
	}
	return result, nil
}

// ParseStructured parses payload into T and checks it against schema and T's own rules.
func ParseStructured[T any](schema jsonschema.Definition, payload string) (T, error) {
	var zero T
	content := extractJSONDocument(payload)
	if content == "" {
		return zero, &PayloadError{Payload: payload, Err: ErrNoData}
	}

	var result T
	if err := decode(schema, content, &result); err != nil {
		return zero, &PayloadError{Payload: payload, Err: err}
	}

	if reflect.Indirect(reflect.ValueOf(result)).Kind() == reflect.Struct {
		if err := payloadValidator.Struct(result); err != nil {
			return zero, &PayloadError{Payload: payload, Err: err}
		}
	}
	if err := validate(&result); err != nil {
		return zero, &PayloadError{Payload: payload, Err: err}
	}
	return result, nil
}

func decode(schema jsonschema.Definition, content string, v any) error {
	var err error
	if schema.Type == "" {
		err = json.Unmarshal([]byte(content), v)
	} else {
		err = jsonschema.VerifySchemaAndUnmarshal(schema, []byte(content), v)
	}
	if err == nil {
		return nil
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) && syntaxErr.Offset >= int64(len(content)) {
		return fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	return fmt.Errorf("jsonschema.VerifySchemaAndUnmarshal > %w", err)
}

func validate(v any) error {
	type validatable interface {
		Validate() error
	}
	if target, ok := v.(validatable); ok {
		return target.Validate()
	}
	if target, ok := reflect.ValueOf(v).Elem().Interface().(validatable); ok {
		return target.Validate()
	}
	return nil
}

// extractJSONDocument trims whitespace and Markdown code fences around a JSON document.
func extractJSONDocument(payload string) string {
	content := strings.TrimSpace(payload)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		// Drop the language tag such as "json"
		content = content[i+1:]
	} else {
		content = ""
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
