package models

import "time"

// MatchResult is the externally visible shape of a match row.
type MatchResult struct {
	MatchID           uint              `json:"match_id"`
	ScholarshipID     uint              `json:"scholarship_id"`
	ScholarshipName   string            `json:"scholarship_name"`
	Eligible          bool              `json:"eligible"`
	EligibilityScore  int               `json:"eligibility_score"`
	MatchReason       string            `json:"match_reason"`
	ApplicationStatus ApplicationStatus `json:"application_status"`
	AppliedAt         *time.Time        `json:"applied_at,omitempty"`
}

type StudentProfileRequest struct {
	UserID             string         `json:"user_id" validate:"required,max=255"`
	Gender             Gender         `json:"gender" validate:"required,gender"`
	CasteCategory      CasteCategory  `json:"caste_category" validate:"required,caste_category"`
	State              string         `json:"state" validate:"omitempty,max=100"`
	City               string         `json:"city" validate:"omitempty,max=100"`
	Pincode            string         `json:"pincode" validate:"omitempty,numeric,len=6"`
	EducationLevel     EducationLevel `json:"education_level" validate:"required,education_level"`
	FieldOfStudy       string         `json:"field_of_study" validate:"omitempty,max=100"`
	Institution        string         `json:"institution" validate:"omitempty,max=200"`
	YearOfStudy        int            `json:"year_of_study" validate:"year_of_study"`
	CGPA               *float64       `json:"cgpa" validate:"omitempty,cgpa"`
	AnnualFamilyIncome *float64       `json:"annual_family_income" validate:"omitempty,min=0"`
	Disabilities       *string        `json:"disabilities" validate:"omitempty,max=2000"`
	Extracurriculars   *string        `json:"extracurriculars" validate:"omitempty,max=2000"`
}

type ScholarshipRequest struct {
	Name                    string           `json:"name" validate:"required,max=200"`
	Provider                string           `json:"provider" validate:"required,max=200"`
	Description             string           `json:"description" validate:"max=5000"`
	Amount                  int64            `json:"amount" validate:"min=0"`
	IsFullyFunded           bool             `json:"is_fully_funded"`
	DurationMonths          int              `json:"duration_months" validate:"min=0,max=120"`
	StartDate               *time.Time       `json:"start_date"`
	MinCGPA                 float64          `json:"min_cgpa" validate:"cgpa"`
	EligibleEducationLevels []EducationLevel `json:"eligible_education_levels" validate:"dive,education_level"`
	EligibleFieldsOfStudy   []string         `json:"eligible_fields_of_study" validate:"dive,required,max=100"`
	EligibleCasteCategories []CasteCategory  `json:"eligible_caste_categories" validate:"dive,caste_category"`
	MinFamilyIncome         *float64         `json:"min_family_income" validate:"omitempty,min=0"`
	MaxFamilyIncome         *float64         `json:"max_family_income" validate:"omitempty,min=0"`
	EligibleStates          []string         `json:"eligible_states" validate:"dive,required,max=100"`
	Deadline                time.Time        `json:"deadline" validate:"required"`
	ApplicationLink         string           `json:"application_link" validate:"omitempty,url,max=500"`
	IsActive                bool             `json:"is_active"`
	Type                    ScholarshipType  `json:"type" validate:"required,scholarship_type"`
	Tags                    []string         `json:"tags" validate:"max=20,dive,max=50"`
}

type UpdateApplicationStatusRequest struct {
	Status ApplicationStatus `json:"status" validate:"required,application_status"`
}

// RefreshSummary reports the outcome of a batch refresh.
type RefreshSummary struct {
	Processed int             `json:"processed"`
	Failed    int             `json:"failed"`
	Errors    map[uint]string `json:"errors,omitempty"`
	StartedAt time.Time       `json:"started_at"`
	Duration  time.Duration   `json:"duration"`
}
