// Package matching evaluates a student profile against a scholarship's eligibility
// predicate, scores the result and renders the match rationale.
//
// Everything in this package is pure: the same inputs always produce the same trace,
// score and text.
package matching

type CriterionName string

const (
	CriterionCGPA           CriterionName = "cgpa"
	CriterionIncome         CriterionName = "income"
	CriterionCasteCategory  CriterionName = "caste_category"
	CriterionEducationLevel CriterionName = "education_level"
	CriterionFieldOfStudy   CriterionName = "field_of_study"
	CriterionState          CriterionName = "state"
)

// evaluationOrder fixes the order of results in every trace.
var evaluationOrder = []CriterionName{
	CriterionCGPA,
	CriterionIncome,
	CriterionCasteCategory,
	CriterionEducationLevel,
	CriterionFieldOfStudy,
	CriterionState,
}

// Label is the human-readable criterion name used in rationales.
func (n CriterionName) Label() string {
	switch n {
	case CriterionCGPA:
		return "CGPA"
	case CriterionIncome:
		return "family income"
	case CriterionCasteCategory:
		return "caste category"
	case CriterionEducationLevel:
		return "education level"
	case CriterionFieldOfStudy:
		return "field of study"
	case CriterionState:
		return "state"
	}
	return string(n)
}

type CriterionKind string

const (
	// KindHard criteria exclude the scholarship when they fail.
	KindHard CriterionKind = "hard"
	// KindSoft criteria only lower the score.
	KindSoft CriterionKind = "soft"
)

type CriterionResult struct {
	Name   CriterionName `json:"name"`
	Kind   CriterionKind `json:"kind"`
	Passed bool          `json:"passed"`
	Weight float64       `json:"weight"`
	Detail string        `json:"detail"`
}

// Trace is the per-criterion evaluation of one student/scholarship pair.
type Trace struct {
	ScholarshipID   uint              `json:"scholarship_id"`
	ScholarshipName string            `json:"scholarship_name"`
	Results         []CriterionResult `json:"results"`
}

// Get returns the result for the named criterion.
func (t Trace) Get(name CriterionName) (CriterionResult, bool) {
	for _, r := range t.Results {
		if r.Name == name {
			return r, true
		}
	}
	return CriterionResult{}, false
}

func (t Trace) byKind(kind CriterionKind) []CriterionResult {
	var out []CriterionResult
	for _, r := range t.Results {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// HardResults returns the hard criteria in evaluation order.
func (t Trace) HardResults() []CriterionResult {
	return t.byKind(KindHard)
}

// SoftResults returns the soft criteria in evaluation order.
func (t Trace) SoftResults() []CriterionResult {
	return t.byKind(KindSoft)
}

// FailedHard returns the hard criteria that did not pass.
func (t Trace) FailedHard() []CriterionResult {
	var out []CriterionResult
	for _, r := range t.HardResults() {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}
