package services

import (
	"context"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
)

type StudentProfileService interface {
	// Create rejects a second profile for the same user_id with a ConflictError
	Create(ctx context.Context, req *models.StudentProfileRequest) (*models.StudentProfile, error)
	Update(ctx context.Context, id uint, req *models.StudentProfileRequest) (*models.StudentProfile, error)
	GetByID(ctx context.Context, id uint) (*models.StudentProfile, error)
	GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error)
}

type ScholarshipService interface {
	Create(ctx context.Context, req *models.ScholarshipRequest) (*models.Scholarship, error)
	Update(ctx context.Context, id uint, req *models.ScholarshipRequest) (*models.Scholarship, error)
	Deactivate(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*models.Scholarship, error)
	List(ctx context.Context, filters repositories.ScholarshipFilters) ([]*models.Scholarship, int64, error)
}

type MatchService interface {
	// RefreshMatches re-evaluates one student against the open catalog and
	// returns all of the student's matches, best first
	RefreshMatches(ctx context.Context, studentProfileID uint) ([]models.MatchResult, error)

	// RefreshStudents and RefreshAll share one catalog snapshot across the batch
	RefreshStudents(ctx context.Context, studentProfileIDs []uint) (*models.RefreshSummary, error)
	RefreshAll(ctx context.Context) (*models.RefreshSummary, error)

	ListMatches(ctx context.Context, studentProfileID uint, filters repositories.MatchFilters) ([]models.MatchResult, error)
	UpdateApplicationStatus(ctx context.Context, matchID uint, req *models.UpdateApplicationStatusRequest) (*models.MatchResult, error)
}

type ServiceManager interface {
	// Core service getters
	StudentProfile() StudentProfileService
	Scholarship() ScholarshipService
	Match() MatchService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
