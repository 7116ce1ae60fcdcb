// Package testutil provides shared test helpers for config files, fragment streams and worksheet fixtures.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/parentstudy/internal/inference"
	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

// SetupTestConfig creates a minimal config file pointing the gemini provider at baseURL.
// Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, baseURL string) string {
	t.Helper()

	configContent := fmt.Sprintf(`provider: gemini
gemini:
  api_key: fake-key-for-testing
  model: gemini-test
  base_url: %s
inference:
  max_retry_attempts: 1
  retry_delay: 1ms
worksheet:
  question_count: 5
`, baseURL)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithOpenAI creates a config file selecting the openai provider with a fake API key.
func SetupTestConfigWithOpenAI(t *testing.T, tmpDir string, baseURL string) string {
	t.Helper()

	configContent := fmt.Sprintf(`provider: openai
openai:
  api_key: fake-key-for-testing
  model: gpt-4o-mini
  base_url: %s
`, baseURL)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// Fragments returns a stream yielding parts in order and then err when it is not nil.
func Fragments(parts []string, err error) inference.FragmentStream {
	return func(yield func(string, error) bool) {
		for _, part := range parts {
			if !yield(part, nil) {
				return
			}
		}
		if err != nil {
			yield("", err)
		}
	}
}

// FractionsWorksheet returns a Grade 3 Math worksheet with 5 questions of 4 options.
// The correct answer of question i is option i%4.
func FractionsWorksheet() worksheet.Worksheet {
	questions := make([]worksheet.Question, 5)
	for i := range questions {
		questions[i] = worksheet.Question{
			Question:           fmt.Sprintf("What is fraction %d?", i+1),
			Options:            []string{"1/2", "1/3", "1/4", "2/3"},
			CorrectAnswerIndex: i % 4,
			Explanation:        fmt.Sprintf("Count the parts of shape %d.", i+1),
		}
	}
	return worksheet.Worksheet{
		Title:     "Fractions Practice",
		Grade:     "Grade 3",
		Topic:     "Fractions",
		Questions: questions,
	}
}

// WorksheetPayload returns ws encoded the way a provider returns it.
func WorksheetPayload(t *testing.T, ws worksheet.Worksheet) string {
	t.Helper()
	payload, err := json.Marshal(ws)
	require.NoError(t, err)
	return string(payload)
}
