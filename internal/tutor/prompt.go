package tutor

import (
	"fmt"
	"strings"
)

// SystemInstruction is the persona sent with every generation.
const SystemInstruction = `You are **Parent Study Support**, an assistant that helps parents support their children studying from **Grade 1 to Grade 8**.
Your role is to simplify learning, guide parents, and provide useful, easy-to-understand explanations.

Core Tasks:
1. Explain School Subjects Clearly: Use age-appropriate language. Step-by-step solutions.
2. Homework & Doubt Helper: Break down tough questions. Don't just give answers, explain the 'how'.
3. Study Plan Maker: Realistic routines based on grade and goals.
4. Learning Worksheets: Generate practice questions.
5. Progress Guidance: Tips on reading, discipline, focus.

Tone: Friendly, supportive, encouraging (like a helpful teacher). Avoid jargon.`

const (
	DefaultWeakSubjects  = "None"
	DefaultGoals         = "General improvement"
	DefaultTimeAvailable = "1 hour per day"

	DefaultQuestionCount = 5
	optionsPerQuestion   = 4
)

// ExplainPrompt asks for a simple explanation of topic for a child and parent.
func ExplainPrompt(grade GradeLevel, topic string) string {
	return fmt.Sprintf(`Grade Level: %s. Explain the following topic simply for a child and parent: "%s". Include examples.`,
		grade, topic)
}

// HomeworkPrompt asks for step-by-step guidance on a homework question.
func HomeworkPrompt(grade GradeLevel, question string) string {
	return fmt.Sprintf(`Grade Level: %s. A parent needs help with this homework question: "%s".
Break the problem into small steps and explain how to solve each one instead of only giving the answer.
Finish with a tip the parent can use to check the child's understanding.`,
		grade, question)
}

// StudyPlanParams are the inputs of the study plan form.
type StudyPlanParams struct {
	Grade         GradeLevel
	WeakSubjects  string
	Goals         string
	TimeAvailable string
}

// WithDefaults fills blank fields with their default values.
func (p StudyPlanParams) WithDefaults() StudyPlanParams {
	if strings.TrimSpace(p.WeakSubjects) == "" {
		p.WeakSubjects = DefaultWeakSubjects
	}
	if strings.TrimSpace(p.Goals) == "" {
		p.Goals = DefaultGoals
	}
	if strings.TrimSpace(p.TimeAvailable) == "" {
		p.TimeAvailable = DefaultTimeAvailable
	}
	return p
}

// StudyPlanPrompt asks for a Markdown study plan addressed to the parent.
func StudyPlanPrompt(p StudyPlanParams) string {
	p = p.WithDefaults()
	return fmt.Sprintf(`Create a structured study plan for a %s student.
- Weak Subjects: %s
- Goals: %s
- Time Available: %s

Format the plan clearly using Markdown. Include breaks and variety.
Address the parent directly on how to implement this.`,
		p.Grade, p.WeakSubjects, p.Goals, p.TimeAvailable)
}

// WorksheetRequest are the inputs of the worksheet form.
type WorksheetRequest struct {
	Grade         GradeLevel
	Subject       Subject
	Topic         string
	QuestionCount int
}

// WorksheetPrompt asks for multiple-choice questions on a topic.
func WorksheetPrompt(req WorksheetRequest) string {
	count := req.QuestionCount
	if count <= 0 {
		count = DefaultQuestionCount
	}
	return fmt.Sprintf(`Create a practice worksheet for %s %s on the topic: "%s".
Generate %d multiple-choice questions with %d options each.
Ensure the difficulty matches %s level.`,
		req.Grade, req.Subject, req.Topic, count, optionsPerQuestion, req.Grade)
}
