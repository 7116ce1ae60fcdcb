package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/glamour"

	"github.com/at-ishikawa/parentstudy/internal/session"
)

// ChatCLI manages the interactive CLI session of the Topic Explainer and Homework Helper
type ChatCLI struct {
	*InteractiveCLI
	chat *session.Chat
	// renderer is set when answers are rendered as Markdown after they complete
	renderer *glamour.TermRenderer
}

// NewChatCLI streams answers as plain text, or renders them with renderer when it is not nil.
func NewChatCLI(base *InteractiveCLI, chat *session.Chat, renderer *glamour.TermRenderer) *ChatCLI {
	return &ChatCLI{
		InteractiveCLI: base,
		chat:           chat,
		renderer:       renderer,
	}
}

// NewMarkdownRenderer returns a terminal Markdown renderer wrapping at width columns.
func NewMarkdownRenderer(width int) (*glamour.TermRenderer, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("glamour.NewTermRenderer() > %w", err)
	}
	return renderer, nil
}

// Greet prints the header and the greeting of the screen.
func (r *ChatCLI) Greet() {
	_, _ = r.bold.Fprintf(r.stdoutWriter, "%s (%s)\n", r.chat.Mode(), r.chat.Grade())
	_, _ = r.dim.Fprintln(r.stdoutWriter, "Type 'quit' to exit.")
	transcript := r.chat.Transcript()
	_, _ = fmt.Fprintf(r.stdoutWriter, "%s\n\n", transcript[0].Text)
}

func (r *ChatCLI) Session(ctx context.Context) error {
	input, err := r.readLine("You: ")
	if err != nil {
		return err
	}
	if isQuit(input) {
		_, _ = fmt.Fprintln(r.stdoutWriter, "Session ended.")
		return errEnd
	}
	if input == "" {
		return nil
	}

	var answer string
	if r.renderer != nil {
		answer, err = r.askAndRender(ctx, input)
	} else {
		answer, err = r.askAndStream(ctx, input)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return errEnd
		}
		slog.Default().Debug("chat failed", "error", err)
		_, _ = r.red.Fprintf(r.stdoutWriter, "❌ %s\n\n", session.ChatFailure)
		return nil
	}
	slog.Default().Debug("chat answered", "length", len(answer))
	return nil
}

func (r *ChatCLI) askAndStream(ctx context.Context, input string) (string, error) {
	_, _ = r.bold.Fprint(r.stdoutWriter, "Tutor: ")
	printed := 0
	answer, err := r.chat.Ask(ctx, input, func(messages []session.Message) {
		last := messages[len(messages)-1]
		if last.IsError || len(last.Text) <= printed {
			return
		}
		_, _ = fmt.Fprint(r.stdoutWriter, last.Text[printed:])
		printed = len(last.Text)
	})
	_, _ = fmt.Fprint(r.stdoutWriter, "\n\n")
	return answer, err
}

func (r *ChatCLI) askAndRender(ctx context.Context, input string) (string, error) {
	s := newSpinner(r.stdoutWriter, "Thinking...")
	s.Start()
	answer, err := r.chat.Ask(ctx, input, nil)
	s.Stop()
	if err != nil {
		return "", err
	}

	rendered, err := r.renderer.Render(answer)
	if err != nil {
		slog.Default().Warn("failed to render markdown", "error", err)
		rendered = answer + "\n"
	}
	_, _ = fmt.Fprint(r.stdoutWriter, rendered)
	return answer, nil
}
