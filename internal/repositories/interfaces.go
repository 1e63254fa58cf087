package repositories

import (
	"context"
	"time"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"gorm.io/gorm"
)

// ===== SHARED FILTER STRUCTS =====

type ScholarshipFilters struct {
	Type         *models.ScholarshipType `json:"type"`
	IsActive     *bool                   `json:"is_active"`
	Provider     *string                 `json:"provider"`
	Search       *string                 `json:"search"`
	DeadlineFrom *time.Time              `json:"deadline_from"`
	DeadlineTo   *time.Time              `json:"deadline_to"`
	Limit        int                     `json:"limit"`
	Offset       int                     `json:"offset"`
	SortBy       string                  `json:"sort_by"`    // "created_at", "name", "deadline", "amount"
	SortOrder    string                  `json:"sort_order"` // "asc", "desc"
}

type MatchFilters struct {
	EligibleOnly bool                      `json:"eligible_only"`
	Status       *models.ApplicationStatus `json:"status"`
	MinScore     *int                      `json:"min_score"`
}

// ===== REPOSITORY INTERFACES =====

// All methods take an optional tx; a nil tx runs on the repository's own connection.

type StudentProfileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error
	Update(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentProfile, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.StudentProfile, error)
	ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error)
	ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error)
}

type ScholarshipRepository interface {
	Create(ctx context.Context, tx *gorm.DB, scholarship *models.Scholarship) error
	Update(ctx context.Context, tx *gorm.DB, scholarship *models.Scholarship) error
	SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Scholarship, error)
	ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error)
	List(ctx context.Context, tx *gorm.DB, filters ScholarshipFilters) ([]*models.Scholarship, int64, error)

	// ListOpen returns active scholarships whose deadline is on or after the calendar day of asOf,
	// ordered by id.
	ListOpen(ctx context.Context, tx *gorm.DB, asOf time.Time) ([]*models.Scholarship, error)
}

type ScholarshipMatchRepository interface {
	Create(ctx context.Context, tx *gorm.DB, match *models.ScholarshipMatch) error
	Update(ctx context.Context, tx *gorm.DB, match *models.ScholarshipMatch) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ScholarshipMatch, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ScholarshipMatch, error)

	// GetByPairForUpdate locks the row for the pair; it returns a not-found error when none exists.
	GetByPairForUpdate(ctx context.Context, tx *gorm.DB, studentProfileID, scholarshipID uint) (*models.ScholarshipMatch, error)

	// ListByStudent returns the student's rows with Scholarship preloaded,
	// ordered by eligibility_score desc, scholarship_id asc.
	ListByStudent(ctx context.Context, tx *gorm.DB, studentProfileID uint, filters MatchFilters) ([]*models.ScholarshipMatch, error)
}
