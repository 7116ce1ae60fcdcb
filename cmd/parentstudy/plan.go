package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/parentstudy/internal/cli"
	"github.com/at-ishikawa/parentstudy/internal/pdf"
	"github.com/at-ishikawa/parentstudy/internal/session"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

type planOptions struct {
	weakSubjects  string
	goals         string
	timeAvailable string
	output        string
}

func newPlanCommand() *cobra.Command {
	var opts planOptions
	grade := newGradeFlag(tutor.Grade5)
	command := &cobra.Command{
		Use:   "plan",
		Short: "Create a weekly study plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, release, err := newTutorService()
			if err != nil {
				return err
			}
			defer release()

			params := tutor.StudyPlanParams{
				Grade:         grade.grade,
				WeakSubjects:  opts.weakSubjects,
				Goals:         opts.goals,
				TimeAvailable: opts.timeAvailable,
			}
			return runPlan(cmd.Context(), service, params, opts.output, cmd.OutOrStdout())
		},
	}
	command.Flags().Var(grade, "grade", "grade level from 1 to 8")
	command.Flags().StringVar(&opts.weakSubjects, "weak-subjects", "", "subjects that need more practice, e.g. \"Math, Spelling\"")
	command.Flags().StringVar(&opts.goals, "goals", "", "what the plan should achieve")
	command.Flags().StringVar(&opts.timeAvailable, "time", tutor.DefaultTimeAvailable, "study time per day")
	command.Flags().StringVarP(&opts.output, "output", "o", "", "also write the plan to a .md or .pdf file")
	return command
}

func runPlan(ctx context.Context, t session.Tutor, params tutor.StudyPlanParams, output string, stdout io.Writer) error {
	planner := session.NewPlanner(t)
	planner.SetParams(params)

	plan, err := cli.StreamPlan(ctx, planner, stdout)
	if err != nil {
		return err
	}
	if output == "" {
		return nil
	}

	path, err := pdf.WriteDocument(output, plan+"\n")
	if err != nil {
		return fmt.Errorf("pdf.WriteDocument() > %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "Study plan saved to %s\n", path)
	return nil
}
