package matching

import (
	"fmt"
	"strings"
)

// Render turns a trace and its score into the match rationale.
func Render(trace Trace, score int) string {
	var b strings.Builder

	failed := trace.FailedHard()
	if len(failed) > 0 {
		fmt.Fprintf(&b, "Not eligible for %s. Unmet requirements: %s.", trace.ScholarshipName, joinDetails(failed))
		fmt.Fprintf(&b, " Eligibility score: 0/%d.", MaxScore)
		return b.String()
	}

	fmt.Fprintf(&b, "Eligible for %s.", trace.ScholarshipName)
	if hard := trace.HardResults(); len(hard) > 0 {
		fmt.Fprintf(&b, " Requirements met: %s.", joinDetails(hard))
	}

	if soft := trace.SoftResults(); len(soft) > 0 {
		parts := make([]string, 0, len(soft))
		for _, r := range soft {
			outcome := "matched"
			if !r.Passed {
				outcome = "not matched"
			}
			parts = append(parts, fmt.Sprintf("%s: %s (%s)", r.Name.Label(), outcome, r.Detail))
		}
		fmt.Fprintf(&b, " Preferences: %s.", strings.Join(parts, "; "))
	}

	fmt.Fprintf(&b, " Eligibility score: %d/%d.", score, MaxScore)
	return b.String()
}

// RenderClosed is the rationale for a pair whose scholarship left the open catalog.
func RenderClosed(scholarshipName string) string {
	return fmt.Sprintf("%s is no longer open for applications. Eligibility score: 0/%d.", scholarshipName, MaxScore)
}

func joinDetails(results []CriterionResult) string {
	details := make([]string, 0, len(results))
	for _, r := range results {
		details = append(details, r.Detail)
	}
	return strings.Join(details, "; ")
}
