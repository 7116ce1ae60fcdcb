// Package tui is a full-screen chat for the Topic Explainer and Homework Helper.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/at-ishikawa/parentstudy/internal/session"
)

type transcriptMsg struct {
	messages []session.Message
	updates  <-chan []session.Message
	result   <-chan error
}

type answerMsg struct {
	err error
}

type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc // nil while the chat is idle
	chat       *session.Chat
	renderer   *glamour.TermRenderer
	viewport   viewport.Model
	textInput  textinput.Model
	spinner    spinner.Model
	transcript []session.Message
	err        error
	ready      bool

	titleStyle  lipgloss.Style
	senderStyle lipgloss.Style
	botStyle    lipgloss.Style
	errorStyle  lipgloss.Style
}

// NewModel shows the transcript of chat. Completed answers are rendered with renderer when it is not nil.
func NewModel(ctx context.Context, chat *session.Chat, renderer *glamour.TermRenderer) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about a topic..."
	if chat.Mode() == session.ModeHomework {
		ti.Placeholder = "Type a homework question..."
	}
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 50

	s := spinner.New()
	s.Spinner = spinner.Dot

	return Model{
		ctx:         ctx,
		chat:        chat,
		renderer:    renderer,
		textInput:   ti,
		spinner:     s,
		transcript:  chat.Transcript(),
		titleStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		senderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("5")),
		botStyle:    lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		errorStyle:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case transcriptMsg:
		m.transcript = msg.messages
		m.refresh()
		return m, waitForUpdate(msg.updates, msg.result)

	case answerMsg:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.err = msg.err
		m.transcript = m.chat.Transcript()
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.chat.Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.inputView())
		verticalMargin := headerHeight + footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-verticalMargin)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - verticalMargin
		}
		m.textInput.Width = msg.Width - 2
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			if m.cancel != nil {
				m.cancel()
				m.cancel = nil
			}
			return m, tea.Quit
		case tea.KeyEnter:
			input := strings.TrimSpace(m.textInput.Value())
			if input == "" || m.chat.Busy() {
				return m, nil
			}
			m.textInput.SetValue("")
			ctx, cancel := context.WithCancel(m.ctx)
			m.cancel = cancel
			return m, tea.Batch(m.submit(ctx, input), m.spinner.Tick)
		}
	}

	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
	)
	m.textInput, tiCmd = m.textInput.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(tiCmd, vpCmd)
}

// submit asks input in the background until ctx is canceled. The returned command yields
// a transcriptMsg per change and an answerMsg when the answer is complete.
func (m Model) submit(ctx context.Context, input string) tea.Cmd {
	chat := m.chat
	return func() tea.Msg {
		updates := make(chan []session.Message)
		result := make(chan error, 1)
		go func() {
			_, err := chat.Ask(ctx, input, func(messages []session.Message) {
				select {
				case updates <- messages:
				case <-ctx.Done():
				}
			})
			result <- err
			close(updates)
		}()
		return waitForUpdate(updates, result)()
	}
}

func waitForUpdate(updates <-chan []session.Message, result <-chan error) tea.Cmd {
	return func() tea.Msg {
		messages, ok := <-updates
		if !ok {
			return answerMsg{err: <-result}
		}
		return transcriptMsg{
			messages: messages,
			updates:  updates,
			result:   result,
		}
	}
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.transcriptView())
	m.viewport.GotoBottom()
}

func (m Model) transcriptView() string {
	busy := m.chat.Busy()
	wrap := lipgloss.NewStyle().Width(max(m.viewport.Width, 1))

	var b strings.Builder
	for i, message := range m.transcript {
		switch {
		case message.Role == session.RoleUser:
			b.WriteString(wrap.Render(m.senderStyle.Render("You: ") + message.Text))
		case message.IsError:
			b.WriteString(wrap.Render(m.errorStyle.Render("Tutor: " + message.Text)))
		case busy && i == len(m.transcript)-1:
			text := message.Text
			if text == "" {
				text = m.spinner.View() + " Thinking..."
			}
			b.WriteString(wrap.Render(m.botStyle.Render("Tutor: ") + text))
		default:
			b.WriteString(m.botStyle.Render("Tutor:") + "\n")
			b.WriteString(m.renderMarkdown(message.Text, wrap))
		}
		b.WriteString("\n\n")
	}
	return b.String()
}

func (m Model) renderMarkdown(text string, wrap lipgloss.Style) string {
	if m.renderer == nil {
		return wrap.Render(text)
	}
	rendered, err := m.renderer.Render(text)
	if err != nil {
		return wrap.Render(text)
	}
	return strings.TrimRight(rendered, "\n")
}

func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return fmt.Sprintf(
		"%s\n%s\n%s",
		m.headerView(),
		m.viewport.View(),
		m.inputView(),
	)
}

func (m Model) headerView() string {
	return m.titleStyle.Render(fmt.Sprintf("%s - %s", m.chat.Mode(), m.chat.Grade()))
}

func (m Model) inputView() string {
	return m.textInput.View()
}
