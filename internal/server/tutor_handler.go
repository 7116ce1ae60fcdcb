// Package server provides Connect RPC handlers for the tutor service.
package server

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"

	"github.com/at-ishikawa/parentstudy/internal/tips"
	"github.com/at-ishikawa/parentstudy/internal/tutor"
	"github.com/at-ishikawa/parentstudy/internal/worksheet"
)

const (
	TutorServiceName = "parentstudy.v1.TutorService"

	ExplainProcedure           = "/" + TutorServiceName + "/Explain"
	HelpWithHomeworkProcedure  = "/" + TutorServiceName + "/HelpWithHomework"
	PlanStudyProcedure         = "/" + TutorServiceName + "/PlanStudy"
	GenerateWorksheetProcedure = "/" + TutorServiceName + "/GenerateWorksheet"
	GradeWorksheetProcedure    = "/" + TutorServiceName + "/GradeWorksheet"
	ListTipsProcedure          = "/" + TutorServiceName + "/ListTips"
	ListGradesProcedure        = "/" + TutorServiceName + "/ListGrades"
)

// Tutor generates the answers served by TutorHandler.
type Tutor interface {
	Explain(ctx context.Context, grade tutor.GradeLevel, topic string, onUpdate func(string)) (string, error)
	HelpWithHomework(ctx context.Context, grade tutor.GradeLevel, question string, onUpdate func(string)) (string, error)
	PlanStudy(ctx context.Context, params tutor.StudyPlanParams, onUpdate func(string)) (string, error)
	GenerateWorksheet(ctx context.Context, req tutor.WorksheetRequest) (worksheet.Worksheet, error)
}

// TutorHandler serves the tutor over Connect.
type TutorHandler struct {
	tutor      Tutor
	catalog    tips.Catalog
	worksheets *worksheetStore
}

// NewTutorHandler keeps at most maxWorksheets generated worksheets for grading.
func NewTutorHandler(t Tutor, catalog tips.Catalog, maxWorksheets int) *TutorHandler {
	return &TutorHandler{
		tutor:      t,
		catalog:    catalog,
		worksheets: newWorksheetStore(maxWorksheets),
	}
}

// NewTutorServiceHandler returns the path to mount the service on and its handler.
func NewTutorServiceHandler(h *TutorHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec())}, opts...)

	mux := http.NewServeMux()
	mux.Handle(ExplainProcedure, connect.NewServerStreamHandler(ExplainProcedure, h.Explain, opts...))
	mux.Handle(HelpWithHomeworkProcedure, connect.NewServerStreamHandler(HelpWithHomeworkProcedure, h.HelpWithHomework, opts...))
	mux.Handle(PlanStudyProcedure, connect.NewServerStreamHandler(PlanStudyProcedure, h.PlanStudy, opts...))
	mux.Handle(GenerateWorksheetProcedure, connect.NewUnaryHandler(GenerateWorksheetProcedure, h.GenerateWorksheet, opts...))
	mux.Handle(GradeWorksheetProcedure, connect.NewUnaryHandler(GradeWorksheetProcedure, h.GradeWorksheet, opts...))
	mux.Handle(ListTipsProcedure, connect.NewUnaryHandler(ListTipsProcedure, h.ListTips, opts...))
	mux.Handle(ListGradesProcedure, connect.NewUnaryHandler(ListGradesProcedure, h.ListGrades, opts...))
	return "/" + TutorServiceName + "/", mux
}

// Explain streams an explanation of a topic.
func (h *TutorHandler) Explain(
	ctx context.Context,
	req *connect.Request[ExplainRequest],
	stream *connect.ServerStream[TextChunk],
) error {
	if err := validateRequest(req.Msg); err != nil {
		return err
	}
	return streamText(ctx, stream, func(ctx context.Context, onUpdate func(string)) (string, error) {
		return h.tutor.Explain(ctx, tutor.GradeLevel(req.Msg.Grade), req.Msg.Topic, onUpdate)
	})
}

// HelpWithHomework streams hints for a homework question.
func (h *TutorHandler) HelpWithHomework(
	ctx context.Context,
	req *connect.Request[HomeworkRequest],
	stream *connect.ServerStream[TextChunk],
) error {
	if err := validateRequest(req.Msg); err != nil {
		return err
	}
	return streamText(ctx, stream, func(ctx context.Context, onUpdate func(string)) (string, error) {
		return h.tutor.HelpWithHomework(ctx, tutor.GradeLevel(req.Msg.Grade), req.Msg.Question, onUpdate)
	})
}

// PlanStudy streams a weekly study plan.
func (h *TutorHandler) PlanStudy(
	ctx context.Context,
	req *connect.Request[StudyPlanRequest],
	stream *connect.ServerStream[TextChunk],
) error {
	if err := validateRequest(req.Msg); err != nil {
		return err
	}
	params := tutor.StudyPlanParams{
		Grade:         tutor.GradeLevel(req.Msg.Grade),
		WeakSubjects:  req.Msg.WeakSubjects,
		Goals:         req.Msg.Goals,
		TimeAvailable: req.Msg.TimeAvailable,
	}
	return streamText(ctx, stream, func(ctx context.Context, onUpdate func(string)) (string, error) {
		return h.tutor.PlanStudy(ctx, params, onUpdate)
	})
}

// streamText sends every update of generate and then the final text with Done set.
// Generation stops when the client goes away.
func streamText(
	ctx context.Context,
	stream *connect.ServerStream[TextChunk],
	generate func(ctx context.Context, onUpdate func(string)) (string, error),
) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sendErr error
	text, err := generate(ctx, func(accumulated string) {
		if sendErr != nil {
			return
		}
		if sendErr = stream.Send(&TextChunk{Text: accumulated}); sendErr != nil {
			cancel()
		}
	})
	if sendErr != nil {
		return fmt.Errorf("stream.Send() > %w", sendErr)
	}
	if err != nil {
		return toConnectError(ctx, err)
	}
	if err := stream.Send(&TextChunk{Text: text, Done: true}); err != nil {
		return fmt.Errorf("stream.Send() > %w", err)
	}
	return nil
}

// GenerateWorksheet creates a worksheet and returns its questions without the answers.
func (h *TutorHandler) GenerateWorksheet(
	ctx context.Context,
	req *connect.Request[GenerateWorksheetRequest],
) (*connect.Response[GenerateWorksheetResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	subject, err := tutor.ParseSubject(req.Msg.Subject)
	if err != nil {
		return nil, invalidArgument(err)
	}

	ws, err := h.tutor.GenerateWorksheet(ctx, tutor.WorksheetRequest{
		Grade:         tutor.GradeLevel(req.Msg.Grade),
		Subject:       subject,
		Topic:         req.Msg.Topic,
		QuestionCount: req.Msg.QuestionCount,
	})
	if err != nil {
		return nil, toConnectError(ctx, err)
	}

	questions := make([]WorksheetQuestion, 0, len(ws.Questions))
	for _, q := range ws.Questions {
		questions = append(questions, WorksheetQuestion{
			Question: q.Question,
			Options:  q.Options,
		})
	}
	return connect.NewResponse(&GenerateWorksheetResponse{
		WorksheetID: h.worksheets.Put(ws),
		Title:       ws.Title,
		Grade:       ws.Grade,
		Topic:       ws.Topic,
		Questions:   questions,
	}), nil
}

// GradeWorksheet scores the selections against a worksheet returned by GenerateWorksheet.
func (h *TutorHandler) GradeWorksheet(
	ctx context.Context,
	req *connect.Request[GradeWorksheetRequest],
) (*connect.Response[GradeWorksheetResponse], error) {
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	ws, ok := h.worksheets.Get(req.Msg.WorksheetID)
	if !ok {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("worksheet %q not found", req.Msg.WorksheetID))
	}
	if len(req.Msg.Selections) != len(ws.Questions) {
		return nil, invalidArgument(fmt.Errorf("got %d selections for %d questions", len(req.Msg.Selections), len(ws.Questions)))
	}

	selections := make(map[int]int, len(req.Msg.Selections))
	for i, option := range req.Msg.Selections {
		if option < 0 {
			continue
		}
		if option >= len(ws.Questions[i].Options) {
			return nil, invalidArgument(fmt.Errorf("selections[%d]: option %d: %w", i, option, worksheet.ErrOptionOutOfRange))
		}
		selections[i] = option
	}

	return connect.NewResponse(&GradeWorksheetResponse{
		Score:   ws.Score(selections),
		Total:   len(ws.Questions),
		Results: ws.GradeSelections(selections),
	}), nil
}

// ListTips returns the parent tips and the daily check-in.
func (h *TutorHandler) ListTips(
	ctx context.Context,
	req *connect.Request[ListTipsRequest],
) (*connect.Response[ListTipsResponse], error) {
	return connect.NewResponse(&ListTipsResponse{Catalog: h.catalog}), nil
}

// ListGrades returns the grades and subjects a client can offer.
func (h *TutorHandler) ListGrades(
	ctx context.Context,
	req *connect.Request[ListGradesRequest],
) (*connect.Response[ListGradesResponse], error) {
	grades := tutor.Grades()
	subjects := tutor.Subjects()
	resp := &ListGradesResponse{
		Grades:   make([]string, 0, len(grades)),
		Subjects: make([]string, 0, len(subjects)),
	}
	for _, g := range grades {
		resp.Grades = append(resp.Grades, g.String())
	}
	for _, s := range subjects {
		resp.Subjects = append(resp.Subjects, string(s))
	}
	return connect.NewResponse(resp), nil
}

var _ Tutor = (*tutor.Service)(nil)
