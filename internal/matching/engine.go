package matching

import "github.com/SAP-F-2025/scholarship-service/internal/models"

// Outcome is the full evaluation of one student/scholarship pair.
type Outcome struct {
	Trace    Trace
	Eligible bool
	Score    int
	Reason   string
}

// Engine chains Evaluator, Scorer and Rationale.
type Engine struct {
	evaluator *Evaluator
}

func NewEngine(config Config) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &Engine{evaluator: NewEvaluator(config)}, nil
}

func (e *Engine) Match(student *models.StudentProfile, scholarship *models.Scholarship) Outcome {
	trace := e.evaluator.Evaluate(student, scholarship)
	eligible, score := Score(trace)
	return Outcome{
		Trace:    trace,
		Eligible: eligible,
		Score:    score,
		Reason:   Render(trace, score),
	}
}
