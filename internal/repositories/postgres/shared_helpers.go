package postgres

import (
	"fmt"

	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"gorm.io/gorm"
)

// handleDBError wraps a database error with the failed operation
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// applyScholarshipFilters applies catalog filters to a scholarship query
func applyScholarshipFilters(query *gorm.DB, filters repositories.ScholarshipFilters) *gorm.DB {
	if filters.Type != nil {
		query = query.Where("type = ?", *filters.Type)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Provider != nil {
		query = query.Where("provider = ?", *filters.Provider)
	}
	if filters.Search != nil && *filters.Search != "" {
		pattern := "%" + *filters.Search + "%"
		query = query.Where("name ILIKE ? OR provider ILIKE ?", pattern, pattern)
	}
	if filters.DeadlineFrom != nil {
		query = query.Where("deadline >= ?", *filters.DeadlineFrom)
	}
	if filters.DeadlineTo != nil {
		query = query.Where("deadline <= ?", *filters.DeadlineTo)
	}
	return query
}

// applyMatchFilters applies view filters to a match query
func applyMatchFilters(query *gorm.DB, filters repositories.MatchFilters) *gorm.DB {
	if filters.EligibleOnly {
		query = query.Where("is_eligible = ?", true)
	}
	if filters.Status != nil {
		query = query.Where("application_status = ?", *filters.Status)
	}
	if filters.MinScore != nil {
		query = query.Where("eligibility_score >= ?", *filters.MinScore)
	}
	return query
}

// applyPaginationAndSort applies pagination and a whitelisted sort column
func applyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	sortKeyToColumn := map[string]string{
		"created_at": "created_at",
		"updated_at": "updated_at",
		"id":         "id",
		"name":       "name",
		"deadline":   "deadline",
		"amount":     "amount",
	}

	column, ok := sortKeyToColumn[sortBy]
	if !ok {
		column = "created_at"
	}

	order := "DESC"
	if sortOrder == "asc" || sortOrder == "ASC" {
		order = "ASC"
	}

	// id breaks ties so pages are stable
	query = query.Order(fmt.Sprintf("%s %s, id ASC", column, order))

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
