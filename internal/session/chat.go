// Package session keeps the state of each interactive screen: the chat screens, the study planner
// and the worksheet quiz. Every controller allows one generation at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/at-ishikawa/parentstudy/internal/tutor"
	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

var (
	// ErrBusy is returned when a generation is requested while another one is running.
	ErrBusy = errors.New("a request is already in progress")
	// ErrEmptyInput is returned when a chat message is blank.
	ErrEmptyInput = errors.New("message is empty")
)

const (
	ExplainerGreeting = "Hi! I can explain any school topic simply. What subject and topic are you looking at today?"
	HomeworkGreeting  = "Hi! Share a homework question and I'll walk you through how to solve it, step by step."
	ChatFailure       = "I'm sorry, I had trouble connecting. Please try again."
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Message is one entry of a chat transcript.
type Message struct {
	Role    Role
	Text    string
	IsError bool
}

// ChatMode selects what a chat screen asks the model for.
type ChatMode int

const (
	ModeExplainer ChatMode = iota
	ModeHomework
)

// Greeting returns the first model message of the screen.
func (m ChatMode) Greeting() string {
	if m == ModeHomework {
		return HomeworkGreeting
	}
	return ExplainerGreeting
}

func (m ChatMode) String() string {
	if m == ModeHomework {
		return "Homework Helper"
	}
	return "Topic Explainer"
}

// Tutor is the part of tutor.Service used by the screens.
type Tutor interface {
	Explain(ctx context.Context, grade tutor.GradeLevel, topic string, onUpdate func(string)) (string, error)
	HelpWithHomework(ctx context.Context, grade tutor.GradeLevel, question string, onUpdate func(string)) (string, error)
	PlanStudy(ctx context.Context, params tutor.StudyPlanParams, onUpdate func(string)) (string, error)
	GenerateWorksheet(ctx context.Context, req tutor.WorksheetRequest) (worksheet.Worksheet, error)
}

// Chat is the state of the Topic Explainer or Homework Helper screen.
type Chat struct {
	mu         sync.Mutex
	tutor      Tutor
	mode       ChatMode
	grade      tutor.GradeLevel
	transcript []Message
	busy       bool
}

// NewChat starts a transcript with the greeting of mode.
func NewChat(t Tutor, mode ChatMode, grade tutor.GradeLevel) *Chat {
	return &Chat{
		tutor: t,
		mode:  mode,
		grade: grade,
		transcript: []Message{
			{Role: RoleModel, Text: mode.Greeting()},
		},
	}
}

func (c *Chat) Mode() ChatMode {
	return c.mode
}

func (c *Chat) Grade() tutor.GradeLevel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.grade
}

// SetGrade changes the grade used by the following questions.
func (c *Chat) SetGrade(grade tutor.GradeLevel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.grade = grade
}

// Busy reports whether a generation is running.
func (c *Chat) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Transcript returns a copy of the messages so far.
func (c *Chat) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	transcript := make([]Message, len(c.transcript))
	copy(transcript, c.transcript)
	return transcript
}

// Ask appends input and streams the answer into a new model message.
// onChange is called with the transcript after every change.
// On failure the model message is replaced by an apology and the error is returned.
func (c *Chat) Ask(ctx context.Context, input string, onChange func([]Message)) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", ErrEmptyInput
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.busy = true
	grade := c.grade
	c.transcript = append(c.transcript,
		Message{Role: RoleUser, Text: input},
		Message{Role: RoleModel},
	)
	answerIndex := len(c.transcript) - 1
	c.mu.Unlock()
	c.notify(onChange)

	onUpdate := func(text string) {
		c.mu.Lock()
		c.transcript[answerIndex].Text = text
		c.mu.Unlock()
		c.notify(onChange)
	}

	var answer string
	var err error
	if c.mode == ModeHomework {
		answer, err = c.tutor.HelpWithHomework(ctx, grade, input, onUpdate)
		err = wrapErr("tutor.HelpWithHomework()", err)
	} else {
		answer, err = c.tutor.Explain(ctx, grade, input, onUpdate)
		err = wrapErr("tutor.Explain()", err)
	}

	c.mu.Lock()
	c.busy = false
	if err != nil {
		c.transcript[answerIndex] = Message{Role: RoleModel, Text: ChatFailure, IsError: true}
	} else {
		c.transcript[answerIndex].Text = answer
	}
	c.mu.Unlock()
	c.notify(onChange)

	if err != nil {
		return "", err
	}
	return answer, nil
}

func (c *Chat) notify(onChange func([]Message)) {
	if onChange != nil {
		onChange(c.Transcript())
	}
}

func wrapErr(callee string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s > %w", callee, err)
}
