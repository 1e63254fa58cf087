package validator

import (
	"fmt"
	"time"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates struct tags for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateStudentProfile validates a profile before it is stored or evaluated
func (bv *BusinessValidator) ValidateStudentProfile(profile *models.StudentProfile) ValidationErrors {
	return bv.Validate(profile)
}

// ValidateScholarship validates a scholarship before it is stored or evaluated
func (bv *BusinessValidator) ValidateScholarship(scholarship *models.Scholarship) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(scholarship)...)
	errors = append(errors, bv.validateFinancialTerms(scholarship.Amount, scholarship.IsFullyFunded)...)
	errors = append(errors, bv.validateIncomeBand(scholarship.MinFamilyIncome, scholarship.MaxFamilyIncome)...)
	errors = append(errors, bv.validateDates(scholarship.Deadline, scholarship.StartDate)...)

	return errors
}

// ValidateScholarshipRequest validates create/update input for scholarships
func (bv *BusinessValidator) ValidateScholarshipRequest(req *models.ScholarshipRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateFinancialTerms(req.Amount, req.IsFullyFunded)...)
	errors = append(errors, bv.validateIncomeBand(req.MinFamilyIncome, req.MaxFamilyIncome)...)
	errors = append(errors, bv.validateDates(req.Deadline, req.StartDate)...)

	return errors
}

// ValidateStatusTransition validates application status transitions
func (bv *BusinessValidator) ValidateStatusTransition(current, next models.ApplicationStatus, eligible bool) ValidationErrors {
	var errors ValidationErrors

	if !next.IsValid() {
		return append(errors, ValidationError{
			Field:   "status",
			Message: "must be a valid application status",
			Value:   next,
			Rule:    "application_status",
		})
	}

	if !current.CanTransitionTo(next) {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("cannot transition from %s to %s", current, next),
			Value:   next,
			Rule:    "status_transition",
		})
	}

	// Starting an application requires a currently eligible match
	if next == models.ApplicationInProgress && current == models.ApplicationNotApplied && !eligible {
		errors = append(errors, ValidationError{
			Field:   "status",
			Message: "cannot start an application for an ineligible match",
			Value:   next,
			Rule:    "business_logic",
		})
	}

	return errors
}

func (bv *BusinessValidator) validateFinancialTerms(amount int64, fullyFunded bool) ValidationErrors {
	if fullyFunded || amount > 0 {
		return nil
	}
	return ValidationErrors{{
		Field:   "amount",
		Message: "must be positive unless the scholarship is fully funded",
		Value:   amount,
		Rule:    "business_logic",
	}}
}

func (bv *BusinessValidator) validateIncomeBand(min, max *float64) ValidationErrors {
	if min == nil || max == nil || *min <= *max {
		return nil
	}
	return ValidationErrors{{
		Field:   "min_family_income",
		Message: "cannot exceed max_family_income",
		Value:   *min,
		Rule:    "business_logic",
	}}
}

func (bv *BusinessValidator) validateDates(deadline time.Time, startDate *time.Time) ValidationErrors {
	var errors ValidationErrors

	if deadline.IsZero() {
		errors = append(errors, ValidationError{
			Field:   "deadline",
			Message: "is required",
			Rule:    "required",
		})
		return errors
	}

	if startDate != nil && models.DateOf(*startDate).After(models.DateOf(deadline)) {
		errors = append(errors, ValidationError{
			Field:   "start_date",
			Message: "cannot be after the deadline",
			Value:   startDate,
			Rule:    "business_logic",
		})
	}

	return errors
}

// registerBusinessRules registers custom business rule validators
func (bv *BusinessValidator) registerBusinessRules() {
	// CGPA on a 10-point scale
	bv.validate.RegisterValidation("cgpa", func(fl validator.FieldLevel) bool {
		cgpa := fl.Field().Float()
		return cgpa >= models.MinCGPA && cgpa <= models.MaxCGPA
	})

	bv.validate.RegisterValidation("year_of_study", func(fl validator.FieldLevel) bool {
		year := fl.Field().Int()
		return year >= models.MinYearOfStudy && year <= models.MaxYearOfStudy
	})

	bv.validate.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		return models.Gender(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("caste_category", func(fl validator.FieldLevel) bool {
		return models.CasteCategory(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("education_level", func(fl validator.FieldLevel) bool {
		return models.EducationLevel(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("scholarship_type", func(fl validator.FieldLevel) bool {
		return models.ScholarshipType(fl.Field().String()).IsValid()
	})

	bv.validate.RegisterValidation("application_status", func(fl validator.FieldLevel) bool {
		return models.ApplicationStatus(fl.Field().String()).IsValid()
	})
}
