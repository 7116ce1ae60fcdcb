package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/at-ishikawa/parentstudy/internal/session"
)

// Run shows the chat until the user quits or ctx is done.
func Run(ctx context.Context, chat *session.Chat, renderer *glamour.TermRenderer) error {
	model := NewModel(ctx, chat, renderer)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("p.Run() > %w", err)
	}
	return nil
}
