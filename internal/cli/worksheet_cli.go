package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/at-ishikawa/parentstudy/internal/session"
	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

// WorksheetCLI manages the interactive CLI session of the worksheet quiz
type WorksheetCLI struct {
	*InteractiveCLI
	quiz *session.WorksheetQuiz
}

func NewWorksheetCLI(base *InteractiveCLI, quiz *session.WorksheetQuiz) *WorksheetCLI {
	return &WorksheetCLI{
		InteractiveCLI: base,
		quiz:           quiz,
	}
}

// Generate requests a worksheet for the quiz form while a spinner runs.
func (r *WorksheetCLI) Generate(ctx context.Context) (worksheet.Worksheet, error) {
	req := r.quiz.Request()
	s := newSpinner(r.stdoutWriter, fmt.Sprintf("Creating a %s %s worksheet on %s...", req.Grade, req.Subject, req.Topic))
	s.Start()
	ws, err := r.quiz.Generate(ctx)
	s.Stop()
	if err != nil {
		_, _ = r.red.Fprintf(r.stdoutWriter, "❌ %s\n", r.quiz.Failure())
		return worksheet.Worksheet{}, fmt.Errorf("quiz.Generate() > %w", err)
	}
	return ws, nil
}

// Answer asks every question in order until a valid option is chosen.
func (r *WorksheetCLI) Answer(ctx context.Context) error {
	ws, ok := r.quiz.Worksheet()
	if !ok {
		return session.ErrNoWorksheet
	}

	_, _ = r.bold.Fprintf(r.stdoutWriter, "%s\n", ws.Title)
	_, _ = r.dim.Fprintf(r.stdoutWriter, "%s - %s\n\n", ws.Grade, ws.Topic)
	for i, q := range ws.Questions {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, _ = r.bold.Fprintf(r.stdoutWriter, "%d. %s\n", i+1, q.Question)
		for j, option := range q.Options {
			_, _ = fmt.Fprintf(r.stdoutWriter, "   %s. %s\n", worksheet.OptionLabel(j), option)
		}

		for {
			input, err := r.readLine("Answer: ")
			if err != nil {
				return err
			}
			option, ok := worksheet.ParseOptionLabel(input)
			if !ok {
				_, _ = fmt.Fprintf(r.stdoutWriter, "Please enter a letter from A to %s.\n", worksheet.OptionLabel(len(q.Options)-1))
				continue
			}
			if err := r.quiz.Select(i, option); err != nil {
				if errors.Is(err, worksheet.ErrOptionOutOfRange) {
					_, _ = fmt.Fprintf(r.stdoutWriter, "Please enter a letter from A to %s.\n", worksheet.OptionLabel(len(q.Options)-1))
					continue
				}
				return fmt.Errorf("quiz.Select() > %w", err)
			}
			break
		}
		_, _ = fmt.Fprintln(r.stdoutWriter)
	}
	return nil
}

// Report submits the answers and prints the score with an explanation for every question.
func (r *WorksheetCLI) Report() (int, error) {
	score, err := r.quiz.Submit()
	if err != nil {
		return 0, fmt.Errorf("quiz.Submit() > %w", err)
	}
	results, err := r.quiz.Results()
	if err != nil {
		return 0, fmt.Errorf("quiz.Results() > %w", err)
	}

	for _, result := range results {
		_, _ = r.bold.Fprintf(r.stdoutWriter, "%d. %s\n", result.Index+1, result.Question)
		if result.Correct {
			_, _ = fmt.Fprint(r.stdoutWriter, "✅ ")
			_, _ = r.green.Fprintf(r.stdoutWriter, "Correct: %s. %s\n",
				worksheet.OptionLabel(result.CorrectIndex), result.CorrectOption)
		} else {
			_, _ = fmt.Fprint(r.stdoutWriter, "❌ ")
			_, _ = r.red.Fprintf(r.stdoutWriter, "You chose %s. %s, the answer is %s. %s\n",
				worksheet.OptionLabel(result.Selected), result.SelectedText,
				worksheet.OptionLabel(result.CorrectIndex), result.CorrectOption)
		}
		if explanation := strings.TrimSpace(result.Explanation); explanation != "" {
			_, _ = r.italic.Fprintf(r.stdoutWriter, "   %s\n", explanation)
		}
		_, _ = fmt.Fprintln(r.stdoutWriter)
	}

	total := len(results)
	scoreColor := r.green
	if score*2 < total {
		scoreColor = r.red
	}
	_, _ = scoreColor.Fprintf(r.stdoutWriter, "Score: %d / %d\n", score, total)
	return score, nil
}

// Run generates a worksheet, asks every question and prints the results.
func (r *WorksheetCLI) Run(ctx context.Context) (int, error) {
	if _, err := r.Generate(ctx); err != nil {
		return 0, err
	}
	if err := r.Answer(ctx); err != nil {
		if errors.Is(err, errEnd) {
			return 0, fmt.Errorf("input ended before every question was answered: %w", session.ErrIncomplete)
		}
		return 0, err
	}
	return r.Report()
}
