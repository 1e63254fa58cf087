package matching

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
)

// Config holds the soft criterion weights.
type Config struct {
	SoftWeights map[CriterionName]float64
}

func DefaultConfig() Config {
	return Config{
		SoftWeights: map[CriterionName]float64{
			CriterionEducationLevel: 1.0,
			CriterionFieldOfStudy:   1.0,
			CriterionState:          1.0,
		},
	}
}

func (c Config) Validate() error {
	for name, w := range c.SoftWeights {
		if kindOf(name) != KindSoft {
			return fmt.Errorf("weight configured for non-soft criterion %q", name)
		}
		if w < 0 {
			return fmt.Errorf("weight for %q cannot be negative", name)
		}
	}
	return nil
}

func kindOf(name CriterionName) CriterionKind {
	switch name {
	case CriterionCGPA, CriterionIncome, CriterionCasteCategory:
		return KindHard
	}
	return KindSoft
}

type Evaluator struct {
	config Config
}

func NewEvaluator(config Config) *Evaluator {
	return &Evaluator{config: config}
}

func (e *Evaluator) weight(name CriterionName) float64 {
	if kindOf(name) == KindHard {
		return 0
	}
	if w, ok := e.config.SoftWeights[name]; ok {
		return w
	}
	return 1.0
}

// Evaluate runs every criterion for the pair and returns the trace in evaluation order.
func (e *Evaluator) Evaluate(student *models.StudentProfile, scholarship *models.Scholarship) Trace {
	trace := Trace{
		ScholarshipID:   scholarship.ID,
		ScholarshipName: scholarship.Name,
		Results:         make([]CriterionResult, 0, len(evaluationOrder)),
	}

	for _, name := range evaluationOrder {
		var passed bool
		var detail string

		switch name {
		case CriterionCGPA:
			passed, detail = evaluateCGPA(student, scholarship)
		case CriterionIncome:
			passed, detail = evaluateIncome(student, scholarship)
		case CriterionCasteCategory:
			passed, detail = evaluateMembership(string(student.CasteCategory), scholarship.EligibleCasteCategories, "caste category", "open to all caste categories")
		case CriterionEducationLevel:
			passed, detail = evaluateMembership(string(student.EducationLevel), scholarship.EligibleEducationLevels, "education level", "open to all education levels")
		case CriterionFieldOfStudy:
			passed, detail = evaluateMembership(student.FieldOfStudy, scholarship.EligibleFieldsOfStudy, "field of study", "open to all fields of study")
		case CriterionState:
			passed, detail = evaluateMembership(student.State, scholarship.EligibleStates, "state", "open nationwide")
		}

		trace.Results = append(trace.Results, CriterionResult{
			Name:   name,
			Kind:   kindOf(name),
			Passed: passed,
			Weight: e.weight(name),
			Detail: detail,
		})
	}

	return trace
}

func evaluateCGPA(student *models.StudentProfile, scholarship *models.Scholarship) (bool, string) {
	minimum := formatCGPA(scholarship.MinCGPA)
	if student.CGPA == nil {
		return false, fmt.Sprintf("CGPA not provided (minimum %s)", minimum)
	}
	cgpa := formatCGPA(*student.CGPA)
	if *student.CGPA >= scholarship.MinCGPA {
		return true, fmt.Sprintf("CGPA %s meets minimum %s", cgpa, minimum)
	}
	return false, fmt.Sprintf("CGPA %s below minimum %s", cgpa, minimum)
}

func evaluateIncome(student *models.StudentProfile, scholarship *models.Scholarship) (bool, string) {
	if !scholarship.HasIncomeBand() {
		return true, "no family income limit"
	}
	band := describeBand(scholarship.MinFamilyIncome, scholarship.MaxFamilyIncome)
	if student.AnnualFamilyIncome == nil {
		return false, fmt.Sprintf("family income not provided (required %s)", band)
	}

	income := *student.AnnualFamilyIncome
	within := true
	if scholarship.MinFamilyIncome != nil && income < *scholarship.MinFamilyIncome {
		within = false
	}
	if scholarship.MaxFamilyIncome != nil && income > *scholarship.MaxFamilyIncome {
		within = false
	}

	if within {
		return true, fmt.Sprintf("family income %s is %s", formatAmount(income), band)
	}
	return false, fmt.Sprintf("family income %s is not %s", formatAmount(income), band)
}

// evaluateMembership applies the "empty set admits everyone" rule shared by the set criteria.
func evaluateMembership(value string, eligible []string, label, openDetail string) (bool, string) {
	if len(eligible) == 0 {
		return true, openDetail
	}
	if strings.TrimSpace(value) == "" {
		return false, fmt.Sprintf("%s not provided (eligible: %s)", label, strings.Join(eligible, ", "))
	}

	needle := models.NormalizeLabel(value)
	for _, candidate := range eligible {
		if models.NormalizeLabel(candidate) == needle {
			return true, fmt.Sprintf("%s %s is eligible", label, strings.TrimSpace(value))
		}
	}
	return false, fmt.Sprintf("%s %s is not among %s", label, strings.TrimSpace(value), strings.Join(eligible, ", "))
}

func describeBand(lo, hi *float64) string {
	switch {
	case lo != nil && hi != nil:
		return fmt.Sprintf("between %s and %s", formatAmount(*lo), formatAmount(*hi))
	case lo != nil:
		return fmt.Sprintf("at least %s", formatAmount(*lo))
	default:
		return fmt.Sprintf("at most %s", formatAmount(*hi))
	}
}

func formatCGPA(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
