package models

import (
	"time"
)

type Gender string

const (
	GenderMale           Gender = "MALE"
	GenderFemale         Gender = "FEMALE"
	GenderOther          Gender = "OTHER"
	GenderPreferNotToSay Gender = "PREFER_NOT_TO_SAY"
)

func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay:
		return true
	}
	return false
}

type CasteCategory string

const (
	CasteGeneral CasteCategory = "GENERAL"
	CasteOBC     CasteCategory = "OBC"
	CasteSC      CasteCategory = "SC"
	CasteST      CasteCategory = "ST"
	CasteEWS     CasteCategory = "EWS"
	CasteOther   CasteCategory = "OTHER"
)

func (c CasteCategory) IsValid() bool {
	switch c {
	case CasteGeneral, CasteOBC, CasteSC, CasteST, CasteEWS, CasteOther:
		return true
	}
	return false
}

type EducationLevel string

const (
	EducationHighSchool    EducationLevel = "HIGH_SCHOOL"
	EducationDiploma       EducationLevel = "DIPLOMA"
	EducationUndergraduate EducationLevel = "UNDERGRADUATE"
	EducationPostgraduate  EducationLevel = "POSTGRADUATE"
	EducationDoctorate     EducationLevel = "DOCTORATE"
)

func (e EducationLevel) IsValid() bool {
	switch e {
	case EducationHighSchool, EducationDiploma, EducationUndergraduate, EducationPostgraduate, EducationDoctorate:
		return true
	}
	return false
}

// Profile bounds
const (
	MinCGPA        = 0.0
	MaxCGPA        = 10.0
	MinYearOfStudy = 1
	MaxYearOfStudy = 8
)

type StudentProfile struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null;size:255" validate:"required,max=255"`

	// Demographics
	Gender        Gender        `json:"gender" gorm:"size:32;not null" validate:"required,gender"`
	CasteCategory CasteCategory `json:"caste_category" gorm:"size:32;not null;index" validate:"required,caste_category"`
	State         string        `json:"state" gorm:"size:100;index" validate:"omitempty,max=100"`
	City          string        `json:"city" gorm:"size:100" validate:"omitempty,max=100"`
	Pincode       string        `json:"pincode" gorm:"size:10" validate:"omitempty,numeric,len=6"`

	// Academics
	EducationLevel EducationLevel `json:"education_level" gorm:"size:32;not null" validate:"required,education_level"`
	FieldOfStudy   string         `json:"field_of_study" gorm:"size:100" validate:"omitempty,max=100"`
	Institution    string         `json:"institution" gorm:"size:200" validate:"omitempty,max=200"`
	YearOfStudy    int            `json:"year_of_study" gorm:"not null;default:1" validate:"year_of_study"`
	CGPA           *float64       `json:"cgpa" gorm:"type:numeric(4,2)" validate:"omitempty,cgpa"`

	// Financials
	AnnualFamilyIncome *float64 `json:"annual_family_income" gorm:"type:numeric(14,2)" validate:"omitempty,min=0"`

	// Optional free text
	Disabilities     *string `json:"disabilities" gorm:"type:text" validate:"omitempty,max=2000"`
	Extracurriculars *string `json:"extracurriculars" gorm:"type:text" validate:"omitempty,max=2000"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}
