package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/parentstudy/internal/inference"
	mock_inference "github.com/at-ishikawa/parentstudy/internal/mocks/inference"
	"github.com/at-ishikawa/parentstudy/internal/session"
	"github.com/at-ishikawa/parentstudy/internal/testutil"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

func newChat(t *testing.T, stream inference.FragmentStream) *session.Chat {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	if stream != nil {
		client.EXPECT().StreamText(gomock.Any(), gomock.Any()).Return(stream)
	}
	return session.NewChat(tutor.NewService(client, 5), session.ModeExplainer, tutor.Grade1)
}

func resize(t *testing.T, m Model) Model {
	t.Helper()
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

// drain feeds the messages of cmd back into the model until the answer is complete.
func drain(t *testing.T, m Model, cmd tea.Cmd) (Model, []string) {
	t.Helper()
	var answers []string
	for cmd != nil {
		msg := cmd()
		updated, next := m.Update(msg)
		m = updated.(Model)
		if update, ok := msg.(transcriptMsg); ok {
			answers = append(answers, update.messages[len(update.messages)-1].Text)
		}
		if _, ok := msg.(answerMsg); ok {
			require.Nil(t, next)
			break
		}
		cmd = next
	}
	return m, answers
}

func TestModel_View(t *testing.T) {
	m := NewModel(context.Background(), newChat(t, nil), nil)
	assert.Equal(t, "Initializing...", m.View())

	m = resize(t, m)

	view := m.View()
	assert.Contains(t, view, "Topic Explainer - Grade 1")
	// the greeting is wrapped to the viewport width
	assert.Contains(t, strings.Join(strings.Fields(view), " "), session.ExplainerGreeting)
}

func TestModel_Submit(t *testing.T) {
	chat := newChat(t, testutil.Fragments([]string{"Plants ", "use sunlight ", "to grow."}, nil))
	m := resize(t, NewModel(context.Background(), chat, nil))

	m, answers := drain(t, m, m.submit(context.Background(), "Photosynthesis"))

	assert.Equal(t, []string{"", "Plants ", "Plants use sunlight ", "Plants use sunlight to grow.", "Plants use sunlight to grow."}, answers)
	assert.NoError(t, m.err)
	assert.False(t, chat.Busy())
	view := m.View()
	assert.Contains(t, view, "You: Photosynthesis")
	assert.Contains(t, view, "Plants use sunlight to grow.")
}

func TestModel_SubmitFailure(t *testing.T) {
	chat := newChat(t, testutil.Fragments(nil, &inference.ServiceError{Provider: "gemini", StatusCode: 500, Message: "internal"}))
	m := resize(t, NewModel(context.Background(), chat, nil))

	m, _ = drain(t, m, m.submit(context.Background(), "Photosynthesis"))

	var serviceErr *inference.ServiceError
	assert.ErrorAs(t, m.err, &serviceErr)
	assert.Contains(t, m.View(), session.ChatFailure)
}

func TestModel_KeyEnter(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantCmd bool
	}{
		{
			name:    "blank input is ignored",
			input:   "   ",
			wantCmd: false,
		},
		{
			name:    "input is submitted",
			input:   "Photosynthesis",
			wantCmd: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := resize(t, NewModel(context.Background(), newChat(t, nil), nil))
			m.textInput.SetValue(tt.input)

			updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

			assert.Equal(t, tt.wantCmd, cmd != nil)
			assert.Equal(t, tt.wantCmd, updated.(Model).cancel != nil)
			if tt.wantCmd {
				assert.Empty(t, updated.(Model).textInput.Value())
			}
		})
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(context.Background(), newChat(t, nil), nil)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_QuitWhileAnswering(t *testing.T) {
	chat := newChat(t, testutil.Fragments([]string{"Plants ", "use sunlight ", "to grow."}, nil))
	m := resize(t, NewModel(context.Background(), chat, nil))
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	first, ok := m.submit(ctx, "Photosynthesis")().(transcriptMsg)
	require.True(t, ok)
	require.True(t, chat.Busy())

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
	assert.ErrorIs(t, ctx.Err(), context.Canceled)

	assert.Eventually(t, func() bool { return !chat.Busy() }, time.Second, 10*time.Millisecond)

	next := waitForUpdate(first.updates, first.result)
	var answer answerMsg
	for {
		msg := next()
		if got, ok := msg.(answerMsg); ok {
			answer = got
			break
		}
		update, ok := msg.(transcriptMsg)
		require.True(t, ok)
		next = waitForUpdate(update.updates, update.result)
	}
	assert.ErrorIs(t, answer.err, inference.ErrCanceled)
	assert.Contains(t, chat.Transcript()[len(chat.Transcript())-1].Text, session.ChatFailure)
}
