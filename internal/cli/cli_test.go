package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/parentstudy/internal/inference"
	mock_cli "github.com/at-ishikawa/parentstudy/internal/mocks/cli"
	mock_inference "github.com/at-ishikawa/parentstudy/internal/mocks/inference"
	"github.com/at-ishikawa/parentstudy/internal/session"
	"github.com/at-ishikawa/parentstudy/internal/testutil"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestInteractiveCLI_Run(t *testing.T) {
	tests := []struct {
		name        string
		setupMock   func(*mock_cli.MockSession)
		cancelAfter time.Duration
		wantErr     bool
	}{
		{
			name: "Session returns error",
			setupMock: func(mockSession *mock_cli.MockSession) {
				mockSession.EXPECT().
					Session(gomock.Any()).
					Return(errors.New("mock session error")).
					Times(1)
			},
			wantErr: true,
		},
		{
			name: "Session ends",
			setupMock: func(mockSession *mock_cli.MockSession) {
				gomock.InOrder(
					mockSession.EXPECT().Session(gomock.Any()).Return(nil),
					mockSession.EXPECT().Session(gomock.Any()).Return(errEnd),
				)
			},
		},
		{
			name: "Context cancelled before first session",
			setupMock: func(mockSession *mock_cli.MockSession) {
				// May or may not be called depending on timing
				mockSession.EXPECT().
					Session(gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			cancelAfter: 1 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			mockSession := mock_cli.NewMockSession(ctrl)
			tt.setupMock(mockSession)

			cli := NewInteractiveCLI(strings.NewReader(""), &bytes.Buffer{})

			ctx := context.Background()
			if tt.cancelAfter > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.cancelAfter)
				defer cancel()
			}

			err := cli.Run(ctx, mockSession)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInteractiveCLI_RepeatAfterInterrupt(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockSession := mock_cli.NewMockSession(ctrl)
	ctx, cancel := context.WithCancel(context.Background())
	mockSession.EXPECT().
		Session(gomock.Any()).
		DoAndReturn(func(ctx context.Context) error {
			<-ctx.Done()
			return errors.New("read interrupted")
		})

	cli := NewInteractiveCLI(strings.NewReader(""), &bytes.Buffer{})
	errCh := cli.repeat(ctx, mockSession)
	cancel()

	// nobody receives while the loop stops
	assert.Eventually(t, func() bool { return len(errCh) == 1 }, time.Second, 10*time.Millisecond)
	assert.EqualError(t, <-errCh, "read interrupted")
	_, ok := <-errCh
	assert.False(t, ok)
}

func newTutor(t *testing.T) (*tutor.Service, *mock_inference.MockClient) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	return tutor.NewService(client, 5), client
}

func TestChatCLI_Session(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		markdown     bool
		setupMock    func(client *mock_inference.MockClient)
		wantContains []string
	}{
		{
			name:  "streams the answer",
			input: "Photosynthesis\nquit\n",
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().StreamText(gomock.Any(), gomock.Any()).
					Return(testutil.Fragments([]string{"Plants ", "use sunlight ", "to grow."}, nil))
			},
			wantContains: []string{
				"Topic Explainer (Grade 1)",
				session.ExplainerGreeting,
				"You: Tutor: Plants use sunlight to grow.\n",
				"Session ended.",
			},
		},
		{
			name:     "renders markdown",
			input:    "Photosynthesis\n",
			markdown: true,
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().StreamText(gomock.Any(), gomock.Any()).
					Return(testutil.Fragments([]string{"# Plants\n\n", "Plants use sunlight to grow."}, nil))
			},
			wantContains: []string{"Plants use sunlight to grow."},
		},
		{
			name:  "failure is reported and the session continues",
			input: "Photosynthesis\n\nexit\n",
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().StreamText(gomock.Any(), gomock.Any()).
					Return(testutil.Fragments(nil, &inference.ServiceError{Provider: "gemini", StatusCode: 503, Message: "unavailable"}))
			},
			wantContains: []string{"❌ " + session.ChatFailure, "Session ended."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, client := newTutor(t)
			tt.setupMock(client)

			var stdout bytes.Buffer
			base := NewInteractiveCLI(strings.NewReader(tt.input), &stdout)
			var chatCLI *ChatCLI
			chat := session.NewChat(service, session.ModeExplainer, tutor.Grade1)
			if tt.markdown {
				renderer, err := NewMarkdownRenderer(80)
				require.NoError(t, err)
				chatCLI = NewChatCLI(base, chat, renderer)
			} else {
				chatCLI = NewChatCLI(base, chat, nil)
			}

			chatCLI.Greet()
			require.NoError(t, base.Run(context.Background(), chatCLI))

			got := stdout.String()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestWorksheetCLI_Run(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantScore    int
		wantErr      error
		wantContains []string
	}{
		{
			name:      "three of five correct",
			input:     "A\nB\nC\nA\nD\n",
			wantScore: 3,
			wantContains: []string{
				"Fractions Practice",
				"1. What is fraction 1?\n   A. 1/2\n   B. 1/3\n   C. 1/4\n   D. 2/3\n",
				"✅ Correct: A. 1/2",
				"❌ You chose A. 1/2, the answer is D. 2/3",
				"Count the parts of shape 4.",
				"Score: 3 / 5",
			},
		},
		{
			name:      "invalid answers are asked again",
			input:     "1\nZ\nA\nb\nc\nd\na\n",
			wantScore: 5,
			wantContains: []string{
				"Please enter a letter from A to D.",
				"Score: 5 / 5",
			},
		},
		{
			name:    "input ends early",
			input:   "A\nB\n",
			wantErr: session.ErrIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, client := newTutor(t)
			client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).
				Return(testutil.WorksheetPayload(t, testutil.FractionsWorksheet()), nil)

			quiz := session.NewWorksheetQuiz(service)
			quiz.SetRequest(tutor.WorksheetRequest{Grade: tutor.Grade3, Subject: tutor.SubjectMath, Topic: "Fractions"})
			var stdout bytes.Buffer
			worksheetCLI := NewWorksheetCLI(NewInteractiveCLI(strings.NewReader(tt.input), &stdout), quiz)

			score, err := worksheetCLI.Run(context.Background())

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantScore, score)
			got := stdout.String()
			for _, want := range tt.wantContains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestWorksheetCLI_GenerateFailure(t *testing.T) {
	service, client := newTutor(t)
	client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).
		Return("", &inference.ServiceError{Provider: "gemini", StatusCode: 429, Message: "quota"})

	quiz := session.NewWorksheetQuiz(service)
	quiz.SetRequest(tutor.WorksheetRequest{Grade: tutor.Grade3, Subject: tutor.SubjectMath, Topic: "Fractions"})
	var stdout bytes.Buffer
	worksheetCLI := NewWorksheetCLI(NewInteractiveCLI(strings.NewReader(""), &stdout), quiz)

	_, err := worksheetCLI.Run(context.Background())

	var serviceErr *inference.ServiceError
	assert.ErrorAs(t, err, &serviceErr)
	assert.Contains(t, stdout.String(), session.WorksheetFailure)
}

func TestStreamPlan(t *testing.T) {
	service, client := newTutor(t)
	client.EXPECT().StreamText(gomock.Any(), gomock.Any()).
		Return(testutil.Fragments([]string{"# Study Plan\n", "- Monday: reading"}, nil))

	var stdout bytes.Buffer
	got, err := StreamPlan(context.Background(), session.NewPlanner(service), &stdout)

	require.NoError(t, err)
	assert.Equal(t, "# Study Plan\n- Monday: reading", got)
	assert.Equal(t, "# Study Plan\n- Monday: reading\n", stdout.String())
}
