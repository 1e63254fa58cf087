package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/scholarship-service/internal/events"
	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
)

type studentProfileService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewStudentProfileService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) StudentProfileService {
	return &studentProfileService{
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *studentProfileService) Create(ctx context.Context, req *models.StudentProfileRequest) (*models.StudentProfile, error) {
	s.logger.Info("Creating student profile", "user_id", req.UserID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.repo.StudentProfile().ExistsByUserID(ctx, nil, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing profile: %w", err)
	}
	if exists {
		return nil, NewConflictError("student profile", fmt.Sprintf("user %s already has a profile", req.UserID), nil)
	}

	profile := &models.StudentProfile{UserID: req.UserID}
	applyProfileRequest(profile, req)

	if err := s.repo.StudentProfile().Create(ctx, nil, profile); err != nil {
		if repositories.IsConflictError(err) {
			return nil, NewConflictError("student profile", fmt.Sprintf("user %s already has a profile", req.UserID), err)
		}
		return nil, fmt.Errorf("failed to create student profile: %w", err)
	}

	s.logger.Info("Student profile created", "student_profile_id", profile.ID)
	s.publishProfileUpdated(ctx, profile.ID)

	return profile, nil
}

func (s *studentProfileService) Update(ctx context.Context, id uint, req *models.StudentProfileRequest) (*models.StudentProfile, error) {
	s.logger.Info("Updating student profile", "student_profile_id", id)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	profile, err := s.repo.StudentProfile().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("student profile", id)
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	// The owning identity never changes
	if req.UserID != profile.UserID {
		return nil, validator.ValidationErrors{*NewValidationError("user_id", "cannot be changed", req.UserID)}
	}

	applyProfileRequest(profile, req)

	if err := s.repo.StudentProfile().Update(ctx, nil, profile); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("student profile", id)
		}
		return nil, fmt.Errorf("failed to update student profile: %w", err)
	}

	s.logger.Info("Student profile updated", "student_profile_id", id)
	s.publishProfileUpdated(ctx, id)

	return profile, nil
}

func (s *studentProfileService) GetByID(ctx context.Context, id uint) (*models.StudentProfile, error) {
	profile, err := s.repo.StudentProfile().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("student profile", id)
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	return profile, nil
}

func (s *studentProfileService) GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	profile, err := s.repo.StudentProfile().GetByUserID(ctx, nil, userID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("student profile for user", userID)
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}
	return profile, nil
}

func (s *studentProfileService) publishProfileUpdated(ctx context.Context, id uint) {
	event := events.NewEvent(events.TopicProfileUpdated, events.ProfileUpdatedData{StudentProfileID: id})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish profile event", "student_profile_id", id, "error", err)
	}
}

func applyProfileRequest(profile *models.StudentProfile, req *models.StudentProfileRequest) {
	profile.Gender = req.Gender
	profile.CasteCategory = req.CasteCategory
	profile.State = req.State
	profile.City = req.City
	profile.Pincode = req.Pincode
	profile.EducationLevel = req.EducationLevel
	profile.FieldOfStudy = req.FieldOfStudy
	profile.Institution = req.Institution
	profile.YearOfStudy = req.YearOfStudy
	profile.CGPA = req.CGPA
	profile.AnnualFamilyIncome = req.AnnualFamilyIncome
	profile.Disabilities = req.Disabilities
	profile.Extracurriculars = req.Extracurriculars
}
