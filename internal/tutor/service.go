// Package tutor builds the parent study prompts and sends them to a text-generation client.
package tutor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/at-ishikawa/parentstudy/internal/inference"
	"github.com/at-ishikawa/parentstudy/internal/validation"
	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

// ErrInvalidInput is returned before any remote call when the caller's parameters are unusable.
var ErrInvalidInput = errors.New("invalid input")

var inputValidator = validation.MustNew("json")

type questionInput struct {
	Grade GradeLevel `json:"grade" validate:"min=1,max=8"`
	Text  string     `json:"text" validate:"required"`
}

type studyPlanInput struct {
	Grade GradeLevel `json:"grade" validate:"min=1,max=8"`
}

type worksheetInput struct {
	Grade         GradeLevel `json:"grade" validate:"min=1,max=8"`
	Subject       Subject    `json:"subject" validate:"required"`
	Topic         string     `json:"topic" validate:"required"`
	QuestionCount int        `json:"questionCount" validate:"gte=0,lte=20"`
}

// Service sends the tutor prompts to a client.
type Service struct {
	client        inference.Client
	questionCount int
}

// NewService returns a Service generating questionCount questions per worksheet unless a request overrides it.
func NewService(client inference.Client, questionCount int) *Service {
	if questionCount <= 0 {
		questionCount = DefaultQuestionCount
	}
	return &Service{
		client:        client,
		questionCount: questionCount,
	}
}

// Explain streams a simple explanation of topic, calling onUpdate with the running text.
func (s *Service) Explain(ctx context.Context, grade GradeLevel, topic string, onUpdate func(string)) (string, error) {
	topic = strings.TrimSpace(topic)
	if err := checkInput(questionInput{Grade: grade, Text: topic}); err != nil {
		return "", err
	}
	return s.stream(ctx, ExplainPrompt(grade, topic), onUpdate)
}

// HelpWithHomework streams step-by-step guidance for a homework question.
func (s *Service) HelpWithHomework(ctx context.Context, grade GradeLevel, question string, onUpdate func(string)) (string, error) {
	question = strings.TrimSpace(question)
	if err := checkInput(questionInput{Grade: grade, Text: question}); err != nil {
		return "", err
	}
	return s.stream(ctx, HomeworkPrompt(grade, question), onUpdate)
}

// PlanStudy streams a Markdown study plan. Blank fields of params take their defaults.
func (s *Service) PlanStudy(ctx context.Context, params StudyPlanParams, onUpdate func(string)) (string, error) {
	if err := checkInput(studyPlanInput{Grade: params.Grade}); err != nil {
		return "", err
	}
	return s.stream(ctx, StudyPlanPrompt(params), onUpdate)
}

// GenerateWorksheet requests a multiple-choice worksheet. Every returned question has a valid correct answer.
func (s *Service) GenerateWorksheet(ctx context.Context, req WorksheetRequest) (worksheet.Worksheet, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if err := checkInput(worksheetInput{
		Grade:         req.Grade,
		Subject:       req.Subject,
		Topic:         req.Topic,
		QuestionCount: req.QuestionCount,
	}); err != nil {
		return worksheet.Worksheet{}, err
	}
	if req.QuestionCount == 0 {
		req.QuestionCount = s.questionCount
	}

	ws, err := inference.GenerateStructured[worksheet.Worksheet](ctx, s.client, inference.StructuredRequest{
		Prompt:            WorksheetPrompt(req),
		SystemInstruction: SystemInstruction,
		Name:              "worksheet",
		Schema:            worksheet.Schema(),
	})
	if err != nil {
		return worksheet.Worksheet{}, fmt.Errorf("inference.GenerateStructured() > %w", err)
	}
	if len(ws.Questions) != req.QuestionCount {
		slog.Default().Warn("worksheet question count differs from the request",
			"requested", req.QuestionCount,
			"received", len(ws.Questions))
	}
	return ws, nil
}

func (s *Service) stream(ctx context.Context, prompt string, onUpdate func(string)) (string, error) {
	text, err := inference.GenerateStream(ctx, s.client, inference.TextRequest{
		Prompt:            prompt,
		SystemInstruction: SystemInstruction,
	}, onUpdate)
	if err != nil {
		return text, fmt.Errorf("inference.GenerateStream() > %w", err)
	}
	return text, nil
}

func checkInput(input any) error {
	if err := inputValidator.Struct(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}
