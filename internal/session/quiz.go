package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/at-ishikawa/parentstudy/internal/tutor"
	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

var (
	ErrNoWorksheet      = errors.New("no worksheet has been generated")
	ErrAlreadySubmitted = errors.New("worksheet has already been submitted")
	ErrIncomplete       = errors.New("every question must be answered before submitting")
)

const WorksheetFailure = "Failed to generate worksheet. Please try again."

// WorksheetQuiz is the state of the worksheet screen: the form, the generated worksheet,
// the selected options and the results after submission.
type WorksheetQuiz struct {
	mu         sync.Mutex
	tutor      Tutor
	request    tutor.WorksheetRequest
	worksheet  *worksheet.Worksheet
	selections map[int]int
	submitted  bool
	failure    string
	busy       bool
}

// NewWorksheetQuiz starts with Grade 3 Math.
func NewWorksheetQuiz(t Tutor) *WorksheetQuiz {
	return &WorksheetQuiz{
		tutor: t,
		request: tutor.WorksheetRequest{
			Grade:   tutor.Grade3,
			Subject: tutor.SubjectMath,
		},
		selections: map[int]int{},
	}
}

func (q *WorksheetQuiz) Request() tutor.WorksheetRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.request
}

func (q *WorksheetQuiz) SetRequest(req tutor.WorksheetRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.request = req
}

// Worksheet returns the current worksheet, or false before one has been generated.
func (q *WorksheetQuiz) Worksheet() (worksheet.Worksheet, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.worksheet == nil {
		return worksheet.Worksheet{}, false
	}
	return *q.worksheet, true
}

func (q *WorksheetQuiz) Failure() string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.failure
}

func (q *WorksheetQuiz) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

func (q *WorksheetQuiz) Submitted() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.submitted
}

// Generate requests a new worksheet for the current form and clears previous answers.
func (q *WorksheetQuiz) Generate(ctx context.Context) (worksheet.Worksheet, error) {
	q.mu.Lock()
	if q.busy {
		q.mu.Unlock()
		return worksheet.Worksheet{}, ErrBusy
	}
	q.busy = true
	q.failure = ""
	req := q.request
	q.mu.Unlock()

	ws, err := q.tutor.GenerateWorksheet(ctx, req)

	q.mu.Lock()
	defer q.mu.Unlock()
	q.busy = false
	if err != nil {
		q.failure = WorksheetFailure
		return worksheet.Worksheet{}, wrapErr("tutor.GenerateWorksheet()", err)
	}
	q.worksheet = &ws
	q.selections = map[int]int{}
	q.submitted = false
	return ws, nil
}

// Select records option as the answer to question. Selections are fixed after submission.
func (q *WorksheetQuiz) Select(question, option int) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.worksheet == nil {
		return ErrNoWorksheet
	}
	if q.submitted {
		return ErrAlreadySubmitted
	}
	if question < 0 || question >= len(q.worksheet.Questions) {
		return fmt.Errorf("question %d of %d: %w", question, len(q.worksheet.Questions), worksheet.ErrOptionOutOfRange)
	}
	if options := q.worksheet.Questions[question].Options; option < 0 || option >= len(options) {
		return fmt.Errorf("option %d of %d: %w", option, len(options), worksheet.ErrOptionOutOfRange)
	}
	q.selections[question] = option
	return nil
}

// Selections returns a copy of the selected options by question index.
func (q *WorksheetQuiz) Selections() map[int]int {
	q.mu.Lock()
	defer q.mu.Unlock()
	selections := make(map[int]int, len(q.selections))
	for k, v := range q.selections {
		selections[k] = v
	}
	return selections
}

// Submit fixes the answers and returns the score.
func (q *WorksheetQuiz) Submit() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.worksheet == nil {
		return 0, ErrNoWorksheet
	}
	if q.submitted {
		return 0, ErrAlreadySubmitted
	}
	if missing := q.worksheet.Unanswered(q.selections); len(missing) > 0 {
		return 0, fmt.Errorf("%d unanswered: %w", len(missing), ErrIncomplete)
	}
	q.submitted = true
	return q.worksheet.Score(q.selections), nil
}

// Score returns the number of correct answers of the submitted worksheet.
func (q *WorksheetQuiz) Score() (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.worksheet == nil {
		return 0, ErrNoWorksheet
	}
	return q.worksheet.Score(q.selections), nil
}

// Results returns the per-question results of the submitted worksheet.
func (q *WorksheetQuiz) Results() ([]worksheet.QuestionResult, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.worksheet == nil {
		return nil, ErrNoWorksheet
	}
	return q.worksheet.GradeSelections(q.selections), nil
}

// Reset discards the worksheet so a new one can be created. The form is kept.
func (q *WorksheetQuiz) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.worksheet = nil
	q.selections = map[int]int{}
	q.submitted = false
	q.failure = ""
}
