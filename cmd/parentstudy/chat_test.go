package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/parentstudy/internal/inference"
	"github.com/at-ishikawa/parentstudy/internal/session"
	"github.com/at-ishikawa/parentstudy/internal/testutil"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

func TestNewChatCommand_RunE_InvalidConfig(t *testing.T) {
	setConfigFile(t, setupBrokenConfigFile(t))

	for _, cmd := range []func() *cobra.Command{newExplainCommand, newHomeworkCommand} {
		command := cmd()
		command.SetArgs([]string{})
		err := command.Execute()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "configuration")
	}
}

func TestNewChatCommand_RunE_InvalidGrade(t *testing.T) {
	command := newExplainCommand()
	command.SetArgs([]string{"--grade", "9"})
	command.SetOut(&bytes.Buffer{})
	command.SetErr(&bytes.Buffer{})
	err := command.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid argument "9" for "--grade" flag`)
}

func TestNewExplainCommand_RunE(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-test:streamGenerateContent", r.URL.Path)
		w.Header().Set("Content-Type", "text/event-stream")
		for _, text := range []string{"Plants ", "use sunlight."} {
			_, _ = fmt.Fprintf(w, "data: {\"candidates\":[{\"content\":{\"role\":\"model\",\"parts\":[{\"text\":%q}]}}]}\n\n", text)
		}
	}))
	t.Cleanup(server.Close)
	setConfigFile(t, testutil.SetupTestConfig(t, t.TempDir(), server.URL))

	var stdout bytes.Buffer
	command := newExplainCommand()
	command.SetArgs([]string{"--grade", "2"})
	command.SetIn(strings.NewReader("Photosynthesis\nquit\n"))
	command.SetOut(&stdout)

	require.NoError(t, command.Execute())
	assert.Contains(t, stdout.String(), "Topic Explainer (Grade 2)")
	assert.Contains(t, stdout.String(), "Tutor: Plants use sunlight.")
}

func TestRunChat(t *testing.T) {
	tests := []struct {
		name         string
		mode         session.ChatMode
		opts         chatOptions
		input        string
		fragments    []string
		streamErr    error
		wantContains []string
	}{
		{
			name:      "homework helper streams hints",
			mode:      session.ModeHomework,
			input:     "What is 7 + 5?\nquit\n",
			fragments: []string{"Try counting ", "on from 7."},
			wantContains: []string{
				"Homework Helper (Grade 3)",
				session.HomeworkGreeting,
				"Tutor: Try counting on from 7.",
			},
		},
		{
			name:         "markdown answers are rendered",
			mode:         session.ModeExplainer,
			opts:         chatOptions{markdown: true},
			input:        "Fractions\nquit\n",
			fragments:    []string{"Fractions are parts of a whole."},
			wantContains: []string{"Fractions are parts of a whole."},
		},
		{
			name:         "failures keep the session open",
			mode:         session.ModeExplainer,
			input:        "Fractions\nquit\n",
			streamErr:    &inference.ServiceError{Provider: "gemini", StatusCode: 500, Message: "internal"},
			wantContains: []string{session.ChatFailure, "Session ended."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, client := newMockTutor(t)
			client.EXPECT().StreamText(gomock.Any(), gomock.Any()).Return(testutil.Fragments(tt.fragments, tt.streamErr))

			var stdout bytes.Buffer
			err := runChat(context.Background(), service, tt.mode, tutor.Grade3, tt.opts, strings.NewReader(tt.input), &stdout)

			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, stdout.String(), want)
			}
		})
	}
}
