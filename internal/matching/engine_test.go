package matching

import (
	"reflect"
	"testing"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/lib/pq"
)

func TestEngine_Match(t *testing.T) {
	tests := []struct {
		name         string
		student      func(*models.StudentProfile)
		scholarship  func(*models.Scholarship)
		wantEligible bool
		wantScore    int
	}{
		{
			name:         "all criteria open or satisfied",
			wantEligible: true,
			wantScore:    100,
		},
		{
			name:         "cgpa below minimum",
			scholarship:  func(s *models.Scholarship) { s.MinCGPA = 9.0 },
			wantEligible: false,
			wantScore:    0,
		},
		{
			name:         "state is soft",
			scholarship:  func(s *models.Scholarship) { s.EligibleStates = pq.StringArray{"Maharashtra"} },
			wantEligible: true,
			wantScore:    90,
		},
		{
			name: "cgpa failure wins over every passing preference",
			student: func(s *models.StudentProfile) {
				s.CGPA = floatPtr(5.0)
			},
			scholarship: func(s *models.Scholarship) {
				s.EligibleStates = pq.StringArray{"Karnataka"}
				s.EligibleFieldsOfStudy = pq.StringArray{"Engineering"}
			},
			wantEligible: false,
			wantScore:    0,
		},
		{
			name:         "caste outside non-empty set excludes",
			student:      func(s *models.StudentProfile) { s.CasteCategory = models.CasteOBC },
			wantEligible: false,
			wantScore:    0,
		},
		{
			name: "every set restricted and satisfied",
			scholarship: func(s *models.Scholarship) {
				s.EligibleEducationLevels = pq.StringArray{"UNDERGRADUATE"}
				s.EligibleFieldsOfStudy = pq.StringArray{"Engineering"}
				s.EligibleStates = pq.StringArray{"Karnataka"}
			},
			wantEligible: true,
			wantScore:    100,
		},
	}

	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			student := newStudent()
			scholarship := newScholarship()
			if tt.student != nil {
				tt.student(student)
			}
			if tt.scholarship != nil {
				tt.scholarship(scholarship)
			}

			got := engine.Match(student, scholarship)
			if got.Eligible != tt.wantEligible || got.Score != tt.wantScore {
				t.Errorf("Match() = (%v, %d), want (%v, %d)", got.Eligible, got.Score, tt.wantEligible, tt.wantScore)
			}
			if got.Reason != Render(got.Trace, got.Score) {
				t.Errorf("Reason does not match rendered trace")
			}

			again := engine.Match(student, scholarship)
			if !reflect.DeepEqual(got, again) {
				t.Errorf("Match() not deterministic: %+v vs %+v", got, again)
			}
		})
	}
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	_, err := NewEngine(Config{SoftWeights: map[CriterionName]float64{CriterionIncome: 1}})
	if err == nil {
		t.Fatal("expected error for weight on hard criterion")
	}
}
