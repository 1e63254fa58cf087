package postgres

import (
	"context"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"gorm.io/gorm"
)

type studentProfileRepository struct {
	db *gorm.DB
}

func NewStudentProfileRepository(db *gorm.DB) repositories.StudentProfileRepository {
	return &studentProfileRepository{db: db}
}

func (r *studentProfileRepository) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *studentProfileRepository) Create(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	if err := r.getDB(tx).WithContext(ctx).Create(profile).Error; err != nil {
		return handleDBError(err, "create student profile")
	}
	return nil
}

// Update writes every mutable column; nil pointers clear the stored value
func (r *studentProfileRepository) Update(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	result := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"gender":               profile.Gender,
			"caste_category":       profile.CasteCategory,
			"state":                profile.State,
			"city":                 profile.City,
			"pincode":              profile.Pincode,
			"education_level":      profile.EducationLevel,
			"field_of_study":       profile.FieldOfStudy,
			"institution":          profile.Institution,
			"year_of_study":        profile.YearOfStudy,
			"cgpa":                 profile.CGPA,
			"annual_family_income": profile.AnnualFamilyIncome,
			"disabilities":         profile.Disabilities,
			"extracurriculars":     profile.Extracurriculars,
		})
	if result.Error != nil {
		return handleDBError(result.Error, "update student profile")
	}
	if result.RowsAffected == 0 {
		return repositories.NotFound("student profile", profile.ID)
	}
	return nil
}

func (r *studentProfileRepository) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.getDB(tx).WithContext(ctx).First(&profile, id).Error; err != nil {
		return nil, handleDBError(err, "get student profile by id")
	}
	return &profile, nil
}

func (r *studentProfileRepository) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	if err := r.getDB(tx).WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, handleDBError(err, "get student profile by user id")
	}
	return &profile, nil
}

func (r *studentProfileRepository) ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	var count int64
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentProfile{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check student profile exists")
	}
	return count > 0, nil
}

func (r *studentProfileRepository) ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	var ids []uint
	if err := r.getDB(tx).WithContext(ctx).
		Model(&models.StudentProfile{}).
		Order("id ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, handleDBError(err, "list student profile ids")
	}
	return ids, nil
}
