package tutor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/at-ishikawa/parentstudy/internal/inference"
	mock_inference "github.com/at-ishikawa/parentstudy/internal/mocks/inference"
	"github.com/at-ishikawa/parentstudy/internal/testutil"
	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

func TestService_Explain(t *testing.T) {
	tests := []struct {
		name        string
		grade       GradeLevel
		topic       string
		setupMock   func(client *mock_inference.MockClient)
		wantText    string
		wantUpdates []string
		wantErr     error
	}{
		{
			name:  "photosynthesis",
			grade: Grade1,
			topic: "  Photosynthesis ",
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().StreamText(gomock.Any(), inference.TextRequest{
					Prompt:            ExplainPrompt(Grade1, "Photosynthesis"),
					SystemInstruction: SystemInstruction,
				}).Return(testutil.Fragments([]string{"Plants ", "use sunlight ", "to grow."}, nil))
			},
			wantText:    "Plants use sunlight to grow.",
			wantUpdates: []string{"Plants ", "Plants use sunlight ", "Plants use sunlight to grow."},
		},
		{
			name:    "empty topic",
			grade:   Grade3,
			topic:   "   ",
			wantErr: ErrInvalidInput,
		},
		{
			name:    "unknown grade",
			grade:   GradeLevel(9),
			topic:   "Fractions",
			wantErr: ErrInvalidInput,
		},
		{
			name:  "stream fails after one fragment",
			grade: Grade2,
			topic: "Volcanoes",
			setupMock: func(client *mock_inference.MockClient) {
				client.EXPECT().StreamText(gomock.Any(), gomock.Any()).
					Return(testutil.Fragments([]string{"Hot "}, &inference.ServiceError{Provider: "gemini", StatusCode: 503, Message: "unavailable"}))
			},
			wantText:    "Hot ",
			wantUpdates: []string{"Hot "},
			wantErr:     &inference.ServiceError{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock_inference.NewMockClient(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(client)
			}

			var updates []string
			got, err := NewService(client, 0).Explain(context.Background(), tt.grade, tt.topic, func(text string) {
				updates = append(updates, text)
			})

			assert.Equal(t, tt.wantText, got)
			assert.Equal(t, tt.wantUpdates, updates)
			switch want := tt.wantErr.(type) {
			case nil:
				require.NoError(t, err)
			case *inference.ServiceError:
				assert.ErrorAs(t, err, &want)
			default:
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestService_HelpWithHomework(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	client.EXPECT().StreamText(gomock.Any(), inference.TextRequest{
		Prompt:            HomeworkPrompt(Grade4, "What is 12 x 3?"),
		SystemInstruction: SystemInstruction,
	}).Return(testutil.Fragments([]string{"Step 1: ", "12 x 3 = 36"}, nil))

	got, err := NewService(client, 0).HelpWithHomework(context.Background(), Grade4, "What is 12 x 3?", nil)

	require.NoError(t, err)
	assert.Equal(t, "Step 1: 12 x 3 = 36", got)
}

func TestService_HelpWithHomeworkEmptyQuestion(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)

	_, err := NewService(client, 0).HelpWithHomework(context.Background(), Grade4, "", nil)

	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Contains(t, err.Error(), "text is a required field")
}

func TestService_PlanStudy(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)
	client.EXPECT().StreamText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req inference.TextRequest) inference.FragmentStream {
			assert.Contains(t, req.Prompt, "Grade 5 student")
			assert.Contains(t, req.Prompt, "- Weak Subjects: None")
			assert.Contains(t, req.Prompt, "- Goals: Improve reading")
			assert.Contains(t, req.Prompt, "- Time Available: 1 hour per day")
			return testutil.Fragments([]string{"# Plan"}, nil)
		})

	got, err := NewService(client, 0).PlanStudy(context.Background(), StudyPlanParams{
		Grade: Grade5,
		Goals: "Improve reading",
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "# Plan", got)
}

func TestService_GenerateWorksheet(t *testing.T) {
	fractions := testutil.FractionsWorksheet()
	outOfRange := testutil.FractionsWorksheet()
	outOfRange.Questions[0].CorrectAnswerIndex = 4

	tests := []struct {
		name      string
		req       WorksheetRequest
		setupMock func(t *testing.T, client *mock_inference.MockClient)
		want      worksheet.Worksheet
		wantErr   error
	}{
		{
			name: "grade 3 math fractions",
			req:  WorksheetRequest{Grade: Grade3, Subject: SubjectMath, Topic: "Fractions"},
			setupMock: func(t *testing.T, client *mock_inference.MockClient) {
				client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req inference.StructuredRequest) (string, error) {
						assert.Equal(t, "worksheet", req.Name)
						assert.Equal(t, worksheet.Schema(), req.Schema)
						assert.Equal(t, SystemInstruction, req.SystemInstruction)
						assert.Contains(t, req.Prompt, `Grade 3 Math on the topic: "Fractions"`)
						assert.Contains(t, req.Prompt, "Generate 5 multiple-choice questions")
						return testutil.WorksheetPayload(t, fractions), nil
					})
			},
			want: fractions,
		},
		{
			name: "requested question count",
			req:  WorksheetRequest{Grade: Grade3, Subject: SubjectMath, Topic: "Fractions", QuestionCount: 8},
			setupMock: func(t *testing.T, client *mock_inference.MockClient) {
				client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, req inference.StructuredRequest) (string, error) {
						assert.Contains(t, req.Prompt, "Generate 8 multiple-choice questions")
						return testutil.WorksheetPayload(t, fractions), nil
					})
			},
			want: fractions,
		},
		{
			name: "correct answer out of range",
			req:  WorksheetRequest{Grade: Grade3, Subject: SubjectMath, Topic: "Fractions"},
			setupMock: func(t *testing.T, client *mock_inference.MockClient) {
				client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).
					Return(testutil.WorksheetPayload(t, outOfRange), nil)
			},
			wantErr: worksheet.ErrOptionOutOfRange,
		},
		{
			name: "empty payload",
			req:  WorksheetRequest{Grade: Grade3, Subject: SubjectMath, Topic: "Fractions"},
			setupMock: func(t *testing.T, client *mock_inference.MockClient) {
				client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).Return("", nil)
			},
			wantErr: inference.ErrNoData,
		},
		{
			name: "client failure",
			req:  WorksheetRequest{Grade: Grade3, Subject: SubjectMath, Topic: "Fractions"},
			setupMock: func(t *testing.T, client *mock_inference.MockClient) {
				client.EXPECT().GenerateJSON(gomock.Any(), gomock.Any()).Return("", inference.ErrCanceled)
			},
			wantErr: inference.ErrCanceled,
		},
		{
			name:    "missing topic",
			req:     WorksheetRequest{Grade: Grade3, Subject: SubjectMath},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing subject",
			req:     WorksheetRequest{Grade: Grade3, Topic: "Fractions"},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "too many questions",
			req:     WorksheetRequest{Grade: Grade3, Subject: SubjectMath, Topic: "Fractions", QuestionCount: 21},
			wantErr: ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			client := mock_inference.NewMockClient(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(t, client)
			}

			got, err := NewService(client, 5).GenerateWorksheet(context.Background(), tt.req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Zero(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_ExplainCanceled(t *testing.T) {
	ctrl := gomock.NewController(t)
	client := mock_inference.NewMockClient(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	client.EXPECT().StreamText(gomock.Any(), gomock.Any()).
		Return(testutil.Fragments([]string{"one ", "two ", "three"}, nil))

	var updates []string
	got, err := NewService(client, 0).Explain(ctx, Grade1, "Numbers", func(text string) {
		updates = append(updates, text)
		cancel()
	})

	assert.True(t, errors.Is(err, inference.ErrCanceled))
	assert.Equal(t, "one ", got)
	assert.Equal(t, []string{"one "}, updates)
}
