package server

import (
	"github.com/at-ishikawa/parentstudy/internal/tips"
	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

type ExplainRequest struct {
	Grade int    `json:"grade" validate:"min=1,max=8"`
	Topic string `json:"topic" validate:"required"`
}

type HomeworkRequest struct {
	Grade    int    `json:"grade" validate:"min=1,max=8"`
	Question string `json:"question" validate:"required"`
}

type StudyPlanRequest struct {
	Grade         int    `json:"grade" validate:"min=1,max=8"`
	WeakSubjects  string `json:"weakSubjects"`
	Goals         string `json:"goals"`
	TimeAvailable string `json:"timeAvailable"`
}

// TextChunk carries the text accumulated so far. The last message of a stream has Done set.
type TextChunk struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

type GenerateWorksheetRequest struct {
	Grade         int    `json:"grade" validate:"min=1,max=8"`
	Subject       string `json:"subject" validate:"required"`
	Topic         string `json:"topic" validate:"required"`
	QuestionCount int    `json:"questionCount" validate:"gte=0,lte=20"`
}

// WorksheetQuestion is a question without its answer.
type WorksheetQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

type GenerateWorksheetResponse struct {
	WorksheetID string              `json:"worksheetId"`
	Title       string              `json:"title"`
	Grade       string              `json:"grade"`
	Topic       string              `json:"topic"`
	Questions   []WorksheetQuestion `json:"questions"`
}

// GradeWorksheetRequest has one selected option index per question. -1 leaves a question unanswered.
type GradeWorksheetRequest struct {
	WorksheetID string `json:"worksheetId" validate:"required,uuid"`
	Selections  []int  `json:"selections" validate:"required,min=1,dive,gte=-1"`
}

type GradeWorksheetResponse struct {
	Score   int                        `json:"score"`
	Total   int                        `json:"total"`
	Results []worksheet.QuestionResult `json:"results"`
}

type ListTipsRequest struct{}

type ListTipsResponse struct {
	Catalog tips.Catalog `json:"catalog"`
}

type ListGradesRequest struct{}

type ListGradesResponse struct {
	Grades   []string `json:"grades"`
	Subjects []string `json:"subjects"`
}
