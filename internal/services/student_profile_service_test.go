package services

import (
	"context"
	"testing"

	"github.com/SAP-F-2025/scholarship-service/internal/events"
	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
)

func testProfileRequest(userID string) *models.StudentProfileRequest {
	return &models.StudentProfileRequest{
		UserID:             userID,
		Gender:             models.GenderMale,
		CasteCategory:      models.CasteOBC,
		State:              "Kerala",
		EducationLevel:     models.EducationPostgraduate,
		FieldOfStudy:       "Physics",
		YearOfStudy:        1,
		CGPA:               floatPtr(9.1),
		AnnualFamilyIncome: floatPtr(350000),
	}
}

func newProfileService() (StudentProfileService, *fakeRepository, *events.MockEventPublisher) {
	repo := newFakeRepository()
	publisher := events.NewMockEventPublisher(testLogger())
	return NewStudentProfileService(repo, testLogger(), validator.New(), publisher), repo, publisher
}

func TestStudentProfileService_Create(t *testing.T) {
	service, _, publisher := newProfileService()
	ctx := context.Background()

	profile, err := service.Create(ctx, testProfileRequest("user-42"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if profile.ID == 0 || profile.FieldOfStudy != "Physics" {
		t.Errorf("Create() = %+v", profile)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 1 || published[0].Type != events.TopicProfileUpdated {
		t.Fatalf("published = %+v, want one profile event", published)
	}
	if data := published[0].Data.(events.ProfileUpdatedData); data.StudentProfileID != profile.ID {
		t.Errorf("event student id = %d, want %d", data.StudentProfileID, profile.ID)
	}

	if _, err := service.Create(ctx, testProfileRequest("user-42")); !IsConflictError(err) {
		t.Errorf("second Create() error = %v, want conflict", err)
	}
}

func TestStudentProfileService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *models.StudentProfileRequest)
	}{
		{name: "missing user", mutate: func(r *models.StudentProfileRequest) { r.UserID = "" }},
		{name: "cgpa out of range", mutate: func(r *models.StudentProfileRequest) { r.CGPA = floatPtr(10.5) }},
		{name: "bad caste category", mutate: func(r *models.StudentProfileRequest) { r.CasteCategory = "UNKNOWN" }},
		{name: "negative income", mutate: func(r *models.StudentProfileRequest) { r.AnnualFamilyIncome = floatPtr(-1) }},
		{name: "year of study zero", mutate: func(r *models.StudentProfileRequest) { r.YearOfStudy = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, publisher := newProfileService()
			req := testProfileRequest("user-1")
			tt.mutate(req)

			if _, err := service.Create(context.Background(), req); !IsValidationError(err) {
				t.Errorf("Create() error = %v, want validation error", err)
			}
			if len(repo.profiles) != 0 || len(publisher.GetPublishedEvents()) != 0 {
				t.Error("invalid profile was stored or announced")
			}
		})
	}
}

func TestStudentProfileService_Update(t *testing.T) {
	service, _, publisher := newProfileService()
	ctx := context.Background()

	profile, err := service.Create(ctx, testProfileRequest("user-7"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	publisher.ClearEvents()

	req := testProfileRequest("user-7")
	req.CGPA = floatPtr(6.4)
	updated, err := service.Update(ctx, profile.ID, req)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if *updated.CGPA != 6.4 {
		t.Errorf("CGPA = %v, want 6.4", *updated.CGPA)
	}
	if len(publisher.GetPublishedEvents()) != 1 {
		t.Errorf("expected one profile event after update")
	}

	got, err := service.GetByUserID(ctx, "user-7")
	if err != nil || *got.CGPA != 6.4 {
		t.Errorf("GetByUserID() = %+v, %v", got, err)
	}

	if _, err := service.Update(ctx, profile.ID, testProfileRequest("someone-else")); !IsValidationError(err) {
		t.Errorf("Update() with new user id error = %v, want validation error", err)
	}
	if _, err := service.Update(ctx, 999, testProfileRequest("user-7")); !IsNotFoundError(err) {
		t.Errorf("Update() unknown id error = %v, want not found", err)
	}
	if _, err := service.GetByID(ctx, 999); !IsNotFoundError(err) {
		t.Errorf("GetByID() unknown id error = %v, want not found", err)
	}
}
