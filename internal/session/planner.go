package session

import (
	"context"
	"sync"

	"github.com/at-ishikawa/parentstudy/internal/tutor"
)

const PlannerFailure = "Failed to generate plan. Please check your connection and try again."

// Planner is the state of the study planner screen.
type Planner struct {
	mu      sync.Mutex
	tutor   Tutor
	params  tutor.StudyPlanParams
	plan    string
	failure string
	busy    bool
}

// NewPlanner starts with Grade 5 and the default time available.
func NewPlanner(t Tutor) *Planner {
	return &Planner{
		tutor: t,
		params: tutor.StudyPlanParams{
			Grade:         tutor.Grade5,
			TimeAvailable: tutor.DefaultTimeAvailable,
		},
	}
}

func (p *Planner) Params() tutor.StudyPlanParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

func (p *Planner) SetParams(params tutor.StudyPlanParams) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = params
}

// Plan returns the plan streamed so far.
func (p *Planner) Plan() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plan
}

// Failure returns the message shown after a failed generation, or "".
func (p *Planner) Failure() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.failure
}

func (p *Planner) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

// Generate replaces the plan with a newly streamed one. onUpdate receives the running plan.
func (p *Planner) Generate(ctx context.Context, onUpdate func(string)) (string, error) {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return "", ErrBusy
	}
	p.busy = true
	p.plan = ""
	p.failure = ""
	params := p.params
	p.mu.Unlock()

	plan, err := p.tutor.PlanStudy(ctx, params, func(text string) {
		p.mu.Lock()
		p.plan = text
		p.mu.Unlock()
		if onUpdate != nil {
			onUpdate(text)
		}
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.busy = false
	if err != nil {
		p.failure = PlannerFailure
		return p.plan, wrapErr("tutor.PlanStudy()", err)
	}
	p.plan = plan
	return plan, nil
}
