package matching

import (
	"time"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/lib/pq"
)

func floatPtr(v float64) *float64 {
	return &v
}

func newStudent() *models.StudentProfile {
	return &models.StudentProfile{
		ID:                 1,
		UserID:             "user-1",
		Gender:             models.GenderFemale,
		CasteCategory:      models.CasteSC,
		State:              "Karnataka",
		City:               "Bengaluru",
		EducationLevel:     models.EducationUndergraduate,
		FieldOfStudy:       "Engineering",
		YearOfStudy:        2,
		CGPA:               floatPtr(8.5),
		AnnualFamilyIncome: floatPtr(200000),
	}
}

func newScholarship() *models.Scholarship {
	return &models.Scholarship{
		ID:                      10,
		Name:                    "Post Matric Scholarship",
		Provider:                "Ministry of Social Justice",
		Amount:                  50000,
		MinCGPA:                 7.0,
		EligibleCasteCategories: pq.StringArray{"SC", "ST"},
		MinFamilyIncome:         floatPtr(0),
		MaxFamilyIncome:         floatPtr(500000),
		Deadline:                time.Date(2030, 3, 31, 0, 0, 0, 0, time.UTC),
		IsActive:                true,
		Type:                    models.ScholarshipGovernment,
	}
}
