package postgres

import (
	"context"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type scholarshipMatchRepository struct {
	db *gorm.DB
}

func NewScholarshipMatchRepository(db *gorm.DB) repositories.ScholarshipMatchRepository {
	return &scholarshipMatchRepository{db: db}
}

func (r *scholarshipMatchRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// Create inserts a match row without touching its associations
func (r *scholarshipMatchRepository) Create(ctx context.Context, tx *gorm.DB, match *models.ScholarshipMatch) error {
	if err := r.getDB(tx).WithContext(ctx).
		Omit(clause.Associations).
		Create(match).Error; err != nil {
		return handleDBError(err, "create scholarship match")
	}
	return nil
}

// Update writes the evaluation and lifecycle columns of an existing row
func (r *scholarshipMatchRepository) Update(ctx context.Context, tx *gorm.DB, match *models.ScholarshipMatch) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.ScholarshipMatch{}).
		Where("id = ?", match.ID).
		Updates(map[string]interface{}{
			"eligibility_score":  match.EligibilityScore,
			"is_eligible":        match.IsEligible,
			"match_reason":       match.MatchReason,
			"trace":              match.Trace,
			"last_evaluated_at":  match.LastEvaluatedAt,
			"application_status": match.ApplicationStatus,
			"applied_at":         match.AppliedAt,
		})
	if result.Error != nil {
		return handleDBError(result.Error, "update scholarship match")
	}
	if result.RowsAffected == 0 {
		return repositories.NotFound("scholarship match", match.ID)
	}
	return nil
}

func (r *scholarshipMatchRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ScholarshipMatch, error) {
	var match models.ScholarshipMatch
	if err := r.getDB(tx).WithContext(ctx).
		Preload("Scholarship").
		First(&match, id).Error; err != nil {
		return nil, handleDBError(err, "get scholarship match by id")
	}
	return &match, nil
}

func (r *scholarshipMatchRepository) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ScholarshipMatch, error) {
	var match models.ScholarshipMatch
	if err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&match, id).Error; err != nil {
		return nil, handleDBError(err, "lock scholarship match by id")
	}
	return &match, nil
}

func (r *scholarshipMatchRepository) GetByPairForUpdate(ctx context.Context, tx *gorm.DB, studentProfileID, scholarshipID uint) (*models.ScholarshipMatch, error) {
	var match models.ScholarshipMatch
	if err := r.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("student_profile_id = ? AND scholarship_id = ?", studentProfileID, scholarshipID).
		First(&match).Error; err != nil {
		return nil, handleDBError(err, "lock scholarship match by pair")
	}
	return &match, nil
}

func (r *scholarshipMatchRepository) ListByStudent(ctx context.Context, tx *gorm.DB, studentProfileID uint, filters repositories.MatchFilters) ([]*models.ScholarshipMatch, error) {
	query := r.getDB(tx).WithContext(ctx).
		Model(&models.ScholarshipMatch{}).
		Preload("Scholarship").
		Where("student_profile_id = ?", studentProfileID)
	query = applyMatchFilters(query, filters)

	var matches []*models.ScholarshipMatch
	if err := query.
		Order("eligibility_score DESC").
		Order("scholarship_id ASC").
		Find(&matches).Error; err != nil {
		return nil, handleDBError(err, "list scholarship matches")
	}
	return matches, nil
}
