package main

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/at-ishikawa/parentstudy/internal/assets"
	"github.com/at-ishikawa/parentstudy/internal/cli"
	"github.com/at-ishikawa/parentstudy/internal/pdf"
	"github.com/at-ishikawa/parentstudy/internal/session"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

type worksheetOptions struct {
	output   string
	answers  bool
	skipQuiz bool
	template string
}

func newWorksheetCommand() *cobra.Command {
	var (
		opts      worksheetOptions
		topic     string
		questions int
	)
	grade := newGradeFlag(tutor.Grade3)
	subject := &subjectFlag{subject: tutor.SubjectMath}
	command := &cobra.Command{
		Use:   "worksheet",
		Short: "Generate a multiple-choice practice worksheet and answer it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := tutor.WorksheetRequest{
				Grade:         grade.grade,
				Subject:       subject.subject,
				Topic:         topic,
				QuestionCount: questions,
			}
			service, cfg, release, err := newTutorService()
			if err != nil {
				return err
			}
			defer release()

			opts.template = cfg.Templates.WorksheetMarkdown
			return runWorksheet(cmd.Context(), service, req, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	command.Flags().Var(grade, "grade", "grade level from 1 to 8")
	command.Flags().Var(subject, "subject", "Math, Science, English, Social Science or Computer")
	command.Flags().StringVar(&topic, "topic", "", "topic of the questions, e.g. \"Fractions\"")
	command.Flags().IntVar(&questions, "questions", 0, "number of questions (default from worksheet.question_count)")
	command.Flags().StringVarP(&opts.output, "output", "o", "", "write the worksheet to a .md or .pdf file")
	command.Flags().BoolVar(&opts.answers, "answers", false, "include the answer key in the written worksheet")
	command.Flags().BoolVar(&opts.skipQuiz, "skip-quiz", false, "only write or print the worksheet without answering it")
	_ = command.MarkFlagRequired("topic")
	return command
}

func runWorksheet(
	ctx context.Context,
	t session.Tutor,
	req tutor.WorksheetRequest,
	opts worksheetOptions,
	stdin io.Reader,
	stdout io.Writer,
) error {
	quiz := session.NewWorksheetQuiz(t)
	quiz.SetRequest(req)
	worksheetCLI := cli.NewWorksheetCLI(cli.NewInteractiveCLI(stdin, stdout), quiz)

	data := assets.WorksheetTemplate{
		Subject:   string(req.Subject),
		AnswerKey: opts.answers,
	}
	if opts.skipQuiz {
		ws, err := worksheetCLI.Generate(ctx)
		if err != nil {
			return err
		}
		data.Worksheet = ws
	} else {
		score, err := worksheetCLI.Run(ctx)
		if err != nil {
			return err
		}
		results, err := quiz.Results()
		if err != nil {
			return fmt.Errorf("quiz.Results() > %w", err)
		}
		data.Worksheet, _ = quiz.Worksheet()
		data.Results = results
		data.Score = score
	}

	if opts.output == "" && !opts.skipQuiz {
		return nil
	}
	return writeWorksheet(stdout, opts, data)
}

// writeWorksheet prints the worksheet when no output file is given.
func writeWorksheet(stdout io.Writer, opts worksheetOptions, data assets.WorksheetTemplate) error {
	var markdown bytes.Buffer
	if err := assets.WriteWorksheet(&markdown, opts.template, data); err != nil {
		return fmt.Errorf("assets.WriteWorksheet() > %w", err)
	}
	if opts.output == "" {
		_, err := stdout.Write(markdown.Bytes())
		return err
	}

	path, err := pdf.WriteDocument(opts.output, markdown.String())
	if err != nil {
		return fmt.Errorf("pdf.WriteDocument() > %w", err)
	}
	_, _ = fmt.Fprintf(stdout, "Worksheet saved to %s\n", path)
	return nil
}
