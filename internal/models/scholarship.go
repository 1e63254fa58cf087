package models

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

type ScholarshipType string

const (
	ScholarshipMerit         ScholarshipType = "MERIT"
	ScholarshipNeedBased     ScholarshipType = "NEED_BASED"
	ScholarshipMeritCumMeans ScholarshipType = "MERIT_CUM_MEANS"
	ScholarshipMinority      ScholarshipType = "MINORITY"
	ScholarshipSports        ScholarshipType = "SPORTS"
	ScholarshipGovernment    ScholarshipType = "GOVERNMENT"
	ScholarshipPrivate       ScholarshipType = "PRIVATE"
	ScholarshipOther         ScholarshipType = "OTHER"
)

func (t ScholarshipType) IsValid() bool {
	switch t {
	case ScholarshipMerit, ScholarshipNeedBased, ScholarshipMeritCumMeans, ScholarshipMinority,
		ScholarshipSports, ScholarshipGovernment, ScholarshipPrivate, ScholarshipOther:
		return true
	}
	return false
}

type Scholarship struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"uniqueIndex;not null;size:200" validate:"required,max=200"`
	Provider    string `json:"provider" gorm:"not null;size:200" validate:"required,max=200"`
	Description string `json:"description" gorm:"type:text" validate:"max=5000"`

	// Financial terms: Amount is ignored when IsFullyFunded is set
	Amount         int64      `json:"amount" gorm:"not null;default:0" validate:"min=0"`
	IsFullyFunded  bool       `json:"is_fully_funded" gorm:"not null;default:false"`
	DurationMonths int        `json:"duration_months" gorm:"not null;default:0" validate:"min=0,max=120"`
	StartDate      *time.Time `json:"start_date" gorm:"type:date"`

	// Eligibility predicate; empty sets mean "open to all"
	MinCGPA                 float64        `json:"min_cgpa" gorm:"type:numeric(4,2);not null;default:0" validate:"cgpa"`
	EligibleEducationLevels pq.StringArray `json:"eligible_education_levels" gorm:"type:text[]" validate:"dive,education_level"`
	EligibleFieldsOfStudy   pq.StringArray `json:"eligible_fields_of_study" gorm:"type:text[]" validate:"dive,required,max=100"`
	EligibleCasteCategories pq.StringArray `json:"eligible_caste_categories" gorm:"type:text[]" validate:"dive,caste_category"`
	MinFamilyIncome         *float64       `json:"min_family_income" gorm:"type:numeric(14,2)" validate:"omitempty,min=0"`
	MaxFamilyIncome         *float64       `json:"max_family_income" gorm:"type:numeric(14,2)" validate:"omitempty,min=0"`
	EligibleStates          pq.StringArray `json:"eligible_states" gorm:"type:text[]" validate:"dive,required,max=100"`

	Deadline        time.Time                  `json:"deadline" gorm:"type:date;not null;index" validate:"required"`
	ApplicationLink string                     `json:"application_link" gorm:"size:500" validate:"omitempty,url,max=500"`
	IsActive        bool                       `json:"is_active" gorm:"not null;default:true;index"`
	Type            ScholarshipType            `json:"type" gorm:"size:32;not null" validate:"required,scholarship_type"`
	Tags            datatypes.JSONSlice[string] `json:"tags" gorm:"type:jsonb" validate:"max=20,dive,max=50"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Scholarship) TableName() string {
	return "scholarships"
}

// HasIncomeBand reports whether either side of the income band is set.
func (s *Scholarship) HasIncomeBand() bool {
	return s.MinFamilyIncome != nil || s.MaxFamilyIncome != nil
}

// IsOpen reports whether the scholarship accepts applications on the given day.
func (s *Scholarship) IsOpen(asOf time.Time) bool {
	return s.IsActive && !DateOf(s.Deadline).Before(DateOf(asOf))
}

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NormalizeLabel is the comparison form for free-text labels such as states and fields of study.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
