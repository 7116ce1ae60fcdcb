// Package worksheet defines practice worksheets and how answers to them are scored.
package worksheet

import (
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"
)

// ErrOptionOutOfRange is returned when an option index does not exist on a question.
var ErrOptionOutOfRange = errors.New("option index out of range")

// Worksheet is a set of multiple-choice questions generated for a grade and topic.
type Worksheet struct {
	Title     string     `json:"title" validate:"required"`
	Grade     string     `json:"grade" validate:"required"`
	Topic     string     `json:"topic" validate:"required"`
	Questions []Question `json:"questions" validate:"required,min=1,dive"`
}

// Question is one multiple-choice question. CorrectAnswerIndex is zero-based.
type Question struct {
	Question           string   `json:"question" validate:"required"`
	Options            []string `json:"options" validate:"required,min=2,dive,required"`
	CorrectAnswerIndex int      `json:"correctAnswerIndex" validate:"gte=0"`
	Explanation        string   `json:"explanation"`
}

// Validate checks that every correct answer points at an existing option.
func (w Worksheet) Validate() error {
	var errs []error
	for i, q := range w.Questions {
		if err := q.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("questions[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (q Question) Validate() error {
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return fmt.Errorf("correctAnswerIndex %d with %d options: %w", q.CorrectAnswerIndex, len(q.Options), ErrOptionOutOfRange)
	}
	return nil
}

// IsCorrect reports whether option is the correct answer.
func (q Question) IsCorrect(option int) bool {
	return option == q.CorrectAnswerIndex
}

// CorrectOption returns the text of the correct answer.
func (q Question) CorrectOption() string {
	if q.CorrectAnswerIndex < 0 || q.CorrectAnswerIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectAnswerIndex]
}

// OptionLabel returns "A" for 0, "B" for 1 and so on.
func OptionLabel(option int) string {
	if option < 0 || option >= 26 {
		return fmt.Sprintf("%d", option+1)
	}
	return string(rune('A' + option))
}

// ParseOptionLabel is the inverse of OptionLabel for single letters, case-insensitive.
func ParseOptionLabel(label string) (int, bool) {
	if len(label) != 1 {
		return 0, false
	}
	c := label[0]
	switch {
	case c >= 'A' && c <= 'Z':
		return int(c - 'A'), true
	case c >= 'a' && c <= 'z':
		return int(c - 'a'), true
	}
	return 0, false
}

// Schema is the JSON schema a generated worksheet must satisfy.
func Schema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"title": {Type: jsonschema.String},
			"grade": {Type: jsonschema.String},
			"topic": {Type: jsonschema.String},
			"questions": {
				Type: jsonschema.Array,
				Items: &jsonschema.Definition{
					Type: jsonschema.Object,
					Properties: map[string]jsonschema.Definition{
						"question": {Type: jsonschema.String},
						"options": {
							Type:  jsonschema.Array,
							Items: &jsonschema.Definition{Type: jsonschema.String},
						},
						"correctAnswerIndex": {
							Type:        jsonschema.Integer,
							Description: "0-based index of the correct option",
						},
						"explanation": {Type: jsonschema.String},
					},
					Required: []string{"question", "options", "correctAnswerIndex", "explanation"},
				},
			},
		},
		Required: []string{"title", "grade", "topic", "questions"},
	}
}
