package postgres

import (
	"context"
	"time"

	"github.com/SAP-F-2025/scholarship-service/internal/cache"
	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"gorm.io/gorm"
)

type ScholarshipPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager

	// afterCommit is set when db is a transaction; invalidation waits for commit
	afterCommit func(func())
}

func NewScholarshipPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.ScholarshipRepository {
	return newScholarshipPostgreSQL(db, cacheManager, nil)
}

func newScholarshipPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager, afterCommit func(func())) *ScholarshipPostgreSQL {
	if cacheManager == nil {
		cacheManager = cache.NewCacheManager(nil)
	}
	return &ScholarshipPostgreSQL{
		db:           db,
		cacheManager: cacheManager,
		afterCommit:  afterCommit,
	}
}

// invalidate drops cached copies of the scholarship, deferred to commit inside a transaction
func (s *ScholarshipPostgreSQL) invalidate(ctx context.Context, id uint) {
	if s.afterCommit == nil {
		cache.InvalidateScholarshipCache(ctx, s.cacheManager, id)
		return
	}
	ctx = context.WithoutCancel(ctx)
	s.afterCommit(func() {
		cache.InvalidateScholarshipCache(ctx, s.cacheManager, id)
	})
}

// getDB returns the transaction DB if provided, otherwise returns the default DB
func (s *ScholarshipPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

// Create stores a scholarship and drops cached catalogs
func (s *ScholarshipPostgreSQL) Create(ctx context.Context, tx *gorm.DB, scholarship *models.Scholarship) error {
	if err := s.getDB(tx).WithContext(ctx).Create(scholarship).Error; err != nil {
		return handleDBError(err, "create scholarship")
	}
	s.invalidate(ctx, scholarship.ID)
	return nil
}

// Update writes every mutable column and drops cached catalogs
func (s *ScholarshipPostgreSQL) Update(ctx context.Context, tx *gorm.DB, scholarship *models.Scholarship) error {
	result := s.getDB(tx).WithContext(ctx).
		Model(&models.Scholarship{}).
		Where("id = ?", scholarship.ID).
		Updates(map[string]interface{}{
			"name":                      scholarship.Name,
			"provider":                  scholarship.Provider,
			"description":               scholarship.Description,
			"amount":                    scholarship.Amount,
			"is_fully_funded":           scholarship.IsFullyFunded,
			"duration_months":           scholarship.DurationMonths,
			"start_date":                scholarship.StartDate,
			"min_cgpa":                  scholarship.MinCGPA,
			"eligible_education_levels": scholarship.EligibleEducationLevels,
			"eligible_fields_of_study":  scholarship.EligibleFieldsOfStudy,
			"eligible_caste_categories": scholarship.EligibleCasteCategories,
			"min_family_income":         scholarship.MinFamilyIncome,
			"max_family_income":         scholarship.MaxFamilyIncome,
			"eligible_states":           scholarship.EligibleStates,
			"deadline":                  scholarship.Deadline,
			"application_link":          scholarship.ApplicationLink,
			"is_active":                 scholarship.IsActive,
			"type":                      scholarship.Type,
			"tags":                      scholarship.Tags,
		})
	if result.Error != nil {
		return handleDBError(result.Error, "update scholarship")
	}
	if result.RowsAffected == 0 {
		return repositories.NotFound("scholarship", scholarship.ID)
	}

	s.invalidate(ctx, scholarship.ID)
	return nil
}

func (s *ScholarshipPostgreSQL) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	result := s.getDB(tx).WithContext(ctx).
		Model(&models.Scholarship{}).
		Where("id = ?", id).
		Update("is_active", active)
	if result.Error != nil {
		return handleDBError(result.Error, "set scholarship active")
	}
	if result.RowsAffected == 0 {
		return repositories.NotFound("scholarship", id)
	}

	s.invalidate(ctx, id)
	return nil
}

// GetByID retrieves a scholarship by ID with caching
func (s *ScholarshipPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Scholarship, error) {
	var scholarship models.Scholarship

	err := s.cacheManager.Scholarship.CacheOrExecute(ctx, cache.ScholarshipKey(id), &scholarship, cache.ScholarshipCacheConfig.TTL, func() (interface{}, error) {
		var dbScholarship models.Scholarship
		if err := s.getDB(tx).WithContext(ctx).First(&dbScholarship, id).Error; err != nil {
			return nil, handleDBError(err, "get scholarship by id")
		}
		return &dbScholarship, nil
	})
	if err != nil {
		return nil, err
	}

	return &scholarship, nil
}

func (s *ScholarshipPostgreSQL) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	query := s.getDB(tx).WithContext(ctx).
		Model(&models.Scholarship{}).
		Where("name = ?", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, handleDBError(err, "check scholarship name")
	}
	return count > 0, nil
}

// List retrieves scholarships with filters and pagination
func (s *ScholarshipPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ScholarshipFilters) ([]*models.Scholarship, int64, error) {
	query := applyScholarshipFilters(s.getDB(tx).WithContext(ctx).Model(&models.Scholarship{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, handleDBError(err, "count scholarships")
	}

	var scholarships []*models.Scholarship
	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Find(&scholarships).Error; err != nil {
		return nil, 0, handleDBError(err, "list scholarships")
	}

	return scholarships, total, nil
}

// ListOpen returns the open catalog for the day of asOf, cached per day
func (s *ScholarshipPostgreSQL) ListOpen(ctx context.Context, tx *gorm.DB, asOf time.Time) ([]*models.Scholarship, error) {
	day := models.DateOf(asOf)
	var scholarships []*models.Scholarship

	err := s.cacheManager.Catalog.CacheOrExecute(ctx, cache.CatalogKey(day.Format(time.DateOnly)), &scholarships, s.cacheManager.CatalogTTL(), func() (interface{}, error) {
		var open []*models.Scholarship
		if err := s.getDB(tx).WithContext(ctx).
			Where("is_active = ? AND deadline >= ?", true, day).
			Order("id ASC").
			Find(&open).Error; err != nil {
			return nil, handleDBError(err, "list open scholarships")
		}
		return open, nil
	})
	if err != nil {
		return nil, err
	}

	return scholarships, nil
}
