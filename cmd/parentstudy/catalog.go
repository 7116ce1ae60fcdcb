package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/parentstudy/internal/tips"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

func newTipsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tips",
		Short: "Show study tips for parents and the daily check-in questions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := tips.Load()
			if err != nil {
				return fmt.Errorf("tips.Load() > %w", err)
			}
			return catalog.Write(cmd.OutOrStdout())
		},
	}
}

func newGradesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "grades",
		Short: "List the supported grade levels and worksheet subjects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeGrades(cmd.OutOrStdout())
		},
	}
}

func writeGrades(out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "GRADES\tSUBJECTS")
	grades := tutor.Grades()
	subjects := tutor.Subjects()
	for i := 0; i < max(len(grades), len(subjects)); i++ {
		var grade, subject string
		if i < len(grades) {
			grade = grades[i].String()
		}
		if i < len(subjects) {
			subject = string(subjects[i])
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\n", grade, subject)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("w.Flush() > %w", err)
	}
	return nil
}
