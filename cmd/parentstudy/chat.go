package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/parentstudy/internal/cli"
	"github.com/at-ishikawa/parentstudy/internal/session"
	"github.com/at-ishikawa/parentstudy/internal/tui"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

const markdownWidth = 80

type chatOptions struct {
	markdown bool
	tui      bool
}

func newExplainCommand() *cobra.Command {
	return newChatCommand("explain", "Explain a school topic simply for a child and parent", session.ModeExplainer)
}

func newHomeworkCommand() *cobra.Command {
	return newChatCommand("homework", "Guide through a homework question step by step without giving the answer away", session.ModeHomework)
}

func newChatCommand(use string, short string, mode session.ChatMode) *cobra.Command {
	var opts chatOptions
	grade := newGradeFlag(tutor.Grade1)
	command := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, _, release, err := newTutorService()
			if err != nil {
				return err
			}
			defer release()

			return runChat(cmd.Context(), service, mode, grade.grade, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	command.Flags().Var(grade, "grade", "grade level from 1 to 8")
	command.Flags().BoolVar(&opts.markdown, "markdown", false, "render each complete answer as Markdown instead of streaming it")
	command.Flags().BoolVar(&opts.tui, "tui", false, "open the full-screen chat")
	command.MarkFlagsMutuallyExclusive("markdown", "tui")
	return command
}

func runChat(
	ctx context.Context,
	t session.Tutor,
	mode session.ChatMode,
	grade tutor.GradeLevel,
	opts chatOptions,
	stdin io.Reader,
	stdout io.Writer,
) error {
	chat := session.NewChat(t, mode, grade)

	var renderer *glamour.TermRenderer
	if opts.markdown || opts.tui {
		var err error
		renderer, err = cli.NewMarkdownRenderer(markdownWidth)
		if err != nil {
			return fmt.Errorf("cli.NewMarkdownRenderer() > %w", err)
		}
	}
	if opts.tui {
		return tui.Run(ctx, chat, renderer)
	}

	chatCLI := cli.NewChatCLI(cli.NewInteractiveCLI(stdin, stdout), chat, renderer)
	chatCLI.Greet()
	return chatCLI.Run(ctx, chatCLI)
}
