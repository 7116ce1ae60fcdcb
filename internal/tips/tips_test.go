package tips

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	got, err := Load()
	require.NoError(t, err)

	require.Len(t, got.Tips, 6)
	assert.Equal(t, Tip{
		Title:       "Establish a Routine",
		Description: "Children thrive on consistency. Set a fixed time for homework every day, ideally not right before bedtime when they are tired.",
	}, got.Tips[0])
	assert.Equal(t, "Screen Time Balance", got.Tips[3].Title)
	assert.Contains(t, got.Tips[3].Description, "'20-20-20' rule")
	assert.Equal(t, `Ask these instead of "How was school?"`, got.CheckIn.Intro)
	assert.Equal(t, []string{
		"What was the most interesting thing you heard today?",
		"Did you ask any good questions in class?",
		"What was challenging today, and how did you handle it?",
	}, got.CheckIn.Questions)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    Catalog
		wantErr bool
	}{
		{
			name: "tips only",
			data: "tips:\n  - title: Sleep\n    description: Keep a bedtime.\n",
			want: Catalog{Tips: []Tip{{Title: "Sleep", Description: "Keep a bedtime."}}},
		},
		{
			name:    "unknown field",
			data:    "tips:\n  - name: Sleep\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			data:    "tips: [",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.data))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_Write(t *testing.T) {
	catalog := Catalog{
		Tips: []Tip{{Title: "Sleep", Description: "Keep a bedtime."}},
		CheckIn: CheckIn{
			Intro:     "Ask:",
			Questions: []string{"What made you laugh today?"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, catalog.Write(&buf))

	assert.Equal(t, "# Parent Tips\n\n## Sleep\n\nKeep a bedtime.\n\n# Daily Check-in\n\nAsk:\n\n- What made you laugh today?\n", buf.String())
}
