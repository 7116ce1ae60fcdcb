package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/at-ishikawa/parentstudy/internal/session"
)

// StreamPlan generates the study plan of planner and prints it to out as it arrives.
func StreamPlan(ctx context.Context, planner *session.Planner, out io.Writer) (string, error) {
	printed := 0
	plan, err := planner.Generate(ctx, func(text string) {
		if len(text) <= printed {
			return
		}
		_, _ = fmt.Fprint(out, text[printed:])
		printed = len(text)
	})
	_, _ = fmt.Fprintln(out)
	if err != nil {
		_, _ = fmt.Fprintln(out, planner.Failure())
		return plan, fmt.Errorf("planner.Generate() > %w", err)
	}
	return plan, nil
}
