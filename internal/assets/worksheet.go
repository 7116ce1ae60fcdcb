package assets

import (
	_ "embed"
	"fmt"
	"io"
	"text/template"

	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

const worksheetTemplateName = "worksheet.md.go.tmpl"

//go:embed templates/worksheet.md.go.tmpl
var fallbackWorksheetTemplate string

// WorksheetTemplate is the data passed to the worksheet template.
type WorksheetTemplate struct {
	Subject   string
	Worksheet worksheet.Worksheet
	// AnswerKey adds the correct option and explanation under every question
	AnswerKey bool
	// Results are printed instead of the answer key after the worksheet was submitted
	Results []worksheet.QuestionResult
	Score   int
}

// ParseWorksheetTemplate returns the template at templatePath, or the embedded one.
func ParseWorksheetTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, worksheetTemplateName, fallbackWorksheetTemplate)
}

func WriteWorksheet(output io.Writer, templatePath string, templateData WorksheetTemplate) error {
	tmpl, err := ParseWorksheetTemplate(templatePath)
	if err != nil {
		return fmt.Errorf("parseTemplateWithFallback() > %w", err)
	}
	if err := tmpl.Execute(output, templateData); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
