package services

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/scholarship-service/internal/matching"
	"github.com/SAP-F-2025/scholarship-service/internal/models"
)

type upsertAction int

const (
	actionNone upsertAction = iota
	actionInsert
	actionUpdate
)

func (a upsertAction) String() string {
	switch a {
	case actionInsert:
		return "insert"
	case actionUpdate:
		return "update"
	default:
		return "none"
	}
}

// evaluation is what a refresh wants stored for one pair. A nil Trace keeps the stored one.
type evaluation struct {
	Eligible bool
	Score    int
	Reason   string
	Trace    datatypes.JSON
}

func evaluationFromOutcome(outcome matching.Outcome) (evaluation, error) {
	trace, err := json.Marshal(outcome.Trace)
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{
		Eligible: outcome.Eligible,
		Score:    outcome.Score,
		Reason:   outcome.Reason,
		Trace:    datatypes.JSON(trace),
	}, nil
}

func closedEvaluation(scholarshipName string) evaluation {
	return evaluation{
		Eligible: false,
		Score:    0,
		Reason:   matching.RenderClosed(scholarshipName),
	}
}

// planUpsert decides the write for one pair given the row currently stored (nil if none).
// Progressed rows are never touched and unchanged rows are not rewritten.
func planUpsert(existing *models.ScholarshipMatch, eval evaluation) upsertAction {
	if existing == nil {
		if eval.Eligible {
			return actionInsert
		}
		return actionNone
	}

	if existing.ApplicationStatus.HasProgressed() {
		return actionNone
	}

	if existing.IsEligible != eval.Eligible ||
		existing.EligibilityScore != eval.Score ||
		existing.MatchReason != eval.Reason {
		return actionUpdate
	}
	if eval.Trace != nil && !traceEqual(existing.Trace, eval.Trace) {
		return actionUpdate
	}
	return actionNone
}

func newMatch(studentProfileID, scholarshipID uint, eval evaluation, now time.Time) *models.ScholarshipMatch {
	match := &models.ScholarshipMatch{
		StudentProfileID:  studentProfileID,
		ScholarshipID:     scholarshipID,
		ApplicationStatus: models.ApplicationNotApplied,
	}
	applyEvaluation(match, eval, now)
	return match
}

func applyEvaluation(match *models.ScholarshipMatch, eval evaluation, now time.Time) {
	match.IsEligible = eval.Eligible
	match.EligibilityScore = eval.Score
	match.MatchReason = eval.Reason
	if eval.Trace != nil {
		match.Trace = eval.Trace
	}
	match.LastEvaluatedAt = now
}

// traceEqual compares stored and fresh traces by content; jsonb does not keep key order
func traceEqual(stored, fresh datatypes.JSON) bool {
	if bytes.Equal(stored, fresh) {
		return true
	}
	var a, b matching.Trace
	if json.Unmarshal(stored, &a) != nil || json.Unmarshal(fresh, &b) != nil {
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toMatchResult(match *models.ScholarshipMatch) models.MatchResult {
	return models.MatchResult{
		MatchID:           match.ID,
		ScholarshipID:     match.ScholarshipID,
		ScholarshipName:   match.Scholarship.Name,
		Eligible:          match.IsEligible,
		EligibilityScore:  match.EligibilityScore,
		MatchReason:       match.MatchReason,
		ApplicationStatus: match.ApplicationStatus,
		AppliedAt:         match.AppliedAt,
	}
}

// toMatchResults converts rows and orders them by score desc, then scholarship id asc
func toMatchResults(matches []*models.ScholarshipMatch) []models.MatchResult {
	results := make([]models.MatchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, toMatchResult(m))
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].EligibilityScore != results[j].EligibilityScore {
			return results[i].EligibilityScore > results[j].EligibilityScore
		}
		return results[i].ScholarshipID < results[j].ScholarshipID
	})
	return results
}

func countEligible(results []models.MatchResult) int {
	n := 0
	for _, r := range results {
		if r.Eligible {
			n++
		}
	}
	return n
}
