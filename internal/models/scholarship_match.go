package models

import (
	"time"

	"gorm.io/datatypes"
)

type ApplicationStatus string

const (
	ApplicationNotApplied ApplicationStatus = "NOT_APPLIED"
	ApplicationInProgress ApplicationStatus = "IN_PROGRESS"
	ApplicationSubmitted  ApplicationStatus = "SUBMITTED"
	ApplicationAwarded    ApplicationStatus = "AWARDED"
	ApplicationRejected   ApplicationStatus = "REJECTED"
)

func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationNotApplied, ApplicationInProgress, ApplicationSubmitted, ApplicationAwarded, ApplicationRejected:
		return true
	}
	return false
}

// HasProgressed reports whether the application workflow owns the row.
func (s ApplicationStatus) HasProgressed() bool {
	return s != ApplicationNotApplied
}

// applicationTransitions lists the statuses reachable from each status.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationNotApplied: {ApplicationInProgress},
	ApplicationInProgress: {ApplicationSubmitted, ApplicationNotApplied},
	ApplicationSubmitted:  {ApplicationAwarded, ApplicationRejected},
	ApplicationAwarded:    {},
	ApplicationRejected:   {},
}

func (s ApplicationStatus) CanTransitionTo(next ApplicationStatus) bool {
	for _, allowed := range applicationTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type ScholarshipMatch struct {
	ID               uint `json:"id" gorm:"primaryKey"`
	StudentProfileID uint `json:"student_profile_id" gorm:"not null;uniqueIndex:uq_match_student_scholarship,priority:1"`
	ScholarshipID    uint `json:"scholarship_id" gorm:"not null;uniqueIndex:uq_match_student_scholarship,priority:2;index"`

	// Evaluation
	EligibilityScore int            `json:"eligibility_score" gorm:"not null;default:0;check:eligibility_score >= 0 AND eligibility_score <= 100"`
	IsEligible       bool           `json:"is_eligible" gorm:"not null;default:false;index"`
	MatchReason      string         `json:"match_reason" gorm:"type:text"`
	Trace            datatypes.JSON `json:"trace" gorm:"type:jsonb"`
	LastEvaluatedAt  time.Time      `json:"last_evaluated_at"`

	// Application lifecycle, driven by the application workflow
	ApplicationStatus ApplicationStatus `json:"application_status" gorm:"size:32;not null;default:NOT_APPLIED;index"`
	AppliedAt         *time.Time        `json:"applied_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	StudentProfile StudentProfile `json:"-" gorm:"foreignKey:StudentProfileID;constraint:OnDelete:CASCADE"`
	Scholarship    Scholarship    `json:"scholarship,omitempty" gorm:"foreignKey:ScholarshipID;constraint:OnDelete:CASCADE"`
}

func (ScholarshipMatch) TableName() string {
	return "scholarship_matches"
}
