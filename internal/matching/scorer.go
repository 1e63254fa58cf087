package matching

import "math"

const (
	// BaselineScore is awarded once every hard criterion passes.
	BaselineScore = 70
	// SoftScoreRange is distributed across soft criteria by weight.
	SoftScoreRange = 30
	MaxScore       = BaselineScore + SoftScoreRange
)

// Score reduces a trace to eligibility and a 0-100 score. A failed hard criterion
// short-circuits to (false, 0).
func Score(trace Trace) (bool, int) {
	if len(trace.FailedHard()) > 0 {
		return false, 0
	}

	var total, passed float64
	for _, r := range trace.SoftResults() {
		total += r.Weight
		if r.Passed {
			passed += r.Weight
		}
	}

	if total == 0 || passed == total {
		return true, MaxScore
	}

	score := int(math.Round(BaselineScore + SoftScoreRange*passed/total))
	if score < 0 {
		score = 0
	}
	if score > MaxScore {
		score = MaxScore
	}
	return true, score
}
