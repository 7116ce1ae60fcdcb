package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestConfig(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfig(t, tmpDir, "http://127.0.0.1:1234")

	want := filepath.Join(tmpDir, "config.yml")
	assert.Equal(t, want, got)

	content, err := os.ReadFile(got)
	require.NoError(t, err)
	assert.Contains(t, string(content), "provider: gemini")
	assert.Contains(t, string(content), "base_url: http://127.0.0.1:1234")
}

func TestSetupTestConfigWithOpenAI(t *testing.T) {
	tmpDir := t.TempDir()
	got := SetupTestConfigWithOpenAI(t, tmpDir, "http://127.0.0.1:1234")

	content, err := os.ReadFile(got)
	require.NoError(t, err)

	contentStr := string(content)
	assert.Contains(t, contentStr, "provider: openai")
	assert.Contains(t, contentStr, "api_key: fake-key-for-testing")
	assert.Contains(t, contentStr, "model: gpt-4o-mini")
}

func TestFragments(t *testing.T) {
	tests := []struct {
		name      string
		parts     []string
		err       error
		wantParts []string
		wantErr   bool
	}{
		{
			name:      "parts only",
			parts:     []string{"a", "b"},
			wantParts: []string{"a", "b"},
		},
		{
			name:      "parts then error",
			parts:     []string{"a"},
			err:       errors.New("boom"),
			wantParts: []string{"a"},
			wantErr:   true,
		},
		{
			name:    "error only",
			err:     errors.New("boom"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotParts []string
			var gotErr error
			for part, err := range Fragments(tt.parts, tt.err) {
				if err != nil {
					gotErr = err
					break
				}
				gotParts = append(gotParts, part)
			}
			assert.Equal(t, tt.wantParts, gotParts)
			assert.Equal(t, tt.wantErr, gotErr != nil)
		})
	}
}

func TestFractionsWorksheet(t *testing.T) {
	ws := FractionsWorksheet()
	require.Len(t, ws.Questions, 5)
	require.NoError(t, ws.Validate())
	for i, q := range ws.Questions {
		assert.Len(t, q.Options, 4)
		assert.Equal(t, i%4, q.CorrectAnswerIndex)
	}
	assert.Contains(t, WorksheetPayload(t, ws), `"correctAnswerIndex":0`)
}
