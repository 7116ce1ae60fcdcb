package validation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name     string   `json:"name" validate:"required"`
	Options  []string `json:"options" validate:"required,min=2,dive,required"`
	Template string   `json:"template" validate:"omitempty,file"`
	Ignored  string   `json:"-" validate:"omitempty,max=1"`
}

func TestValidator_Struct(t *testing.T) {
	dir := t.TempDir()
	readable := filepath.Join(dir, "template.md")
	require.NoError(t, os.WriteFile(readable, []byte("# title"), 0o644))

	tests := []struct {
		name  string
		value sample
		want  []FieldViolation
	}{
		{
			name:  "valid",
			value: sample{Name: "a", Options: []string{"x", "y"}, Template: readable},
		},
		{
			name:  "missing required field",
			value: sample{Options: []string{"x", "y"}},
			want: []FieldViolation{
				{Field: "name", Description: "name is a required field"},
			},
		},
		{
			name:  "too few options",
			value: sample{Name: "a", Options: []string{"x"}},
			want: []FieldViolation{
				{Field: "options", Description: "options must contain at least 2 items"},
			},
		},
		{
			name:  "empty option",
			value: sample{Name: "a", Options: []string{"x", ""}},
			want: []FieldViolation{
				{Field: "options[1]", Description: "options[1] is a required field"},
			},
		},
		{
			name:  "template is a directory",
			value: sample{Name: "a", Options: []string{"x", "y"}, Template: dir},
			want: []FieldViolation{
				{Field: "template", Description: "template must be an existing and readable file"},
			},
		},
	}

	v, err := New("json")
	require.NoError(t, err)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.value)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			var validationErr *Error
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.want, validationErr.Violations)
		})
	}
}

func TestValidator_RegisterStructValidation(t *testing.T) {
	type pair struct {
		Min int `json:"min"`
		Max int `json:"max"`
	}

	v := MustNew("json")
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		p := sl.Current().Interface().(pair)
		if p.Max < p.Min {
			sl.ReportError(p.Max, "max", "Max", "gtefield", "min")
		}
	}, pair{})

	assert.NoError(t, v.Struct(pair{Min: 1, Max: 2}))

	err := v.Struct(pair{Min: 3, Max: 2})
	var validationErr *Error
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Violations, 1)
	assert.Equal(t, "max", validationErr.Violations[0].Field)
	assert.Equal(t, "max must be greater than or equal to min", validationErr.Error())
}
