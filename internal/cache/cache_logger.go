package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// CatalogKey is the cache key of the open catalog for a calendar day (YYYY-MM-DD)
func CatalogKey(day string) string {
	return "open:" + day
}

// ScholarshipKey is the cache key of a single scholarship
func ScholarshipKey(id uint) string {
	return fmt.Sprintf("id:%d", id)
}

// InvalidateScholarshipCache drops the scholarship and every cached open catalog
func InvalidateScholarshipCache(ctx context.Context, cm *CacheManager, scholarshipID uint) {
	SafeDelete(ctx, cm.Scholarship, ScholarshipKey(scholarshipID))
	SafeInvalidatePattern(ctx, cm.Catalog, "open:*")
}

