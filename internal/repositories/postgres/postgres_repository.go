package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/SAP-F-2025/scholarship-service/internal/cache"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
)

// PostgreSQLRepository implements the main Repository interface
type PostgreSQLRepository struct {
	db           *gorm.DB
	redisClient  *redis.Client
	cacheManager *cache.CacheManager

	// afterCommit queues work until the enclosing transaction commits; nil outside one
	afterCommit func(func())

	// Repository instances
	studentProfile   repositories.StudentProfileRepository
	scholarship      repositories.ScholarshipRepository
	scholarshipMatch repositories.ScholarshipMatchRepository
}

// RepositoryConfig holds configuration for repository initialization
type RepositoryConfig struct {
	DB              *gorm.DB
	RedisClient     *redis.Client
	CatalogCacheTTL time.Duration
	Logger          *slog.Logger
}

// NewPostgreSQLRepository creates a repository with all sub-repositories
func NewPostgreSQLRepository(config RepositoryConfig) repositories.Repository {
	cacheManager := cache.NewCacheManager(config.RedisClient).WithCatalogTTL(config.CatalogCacheTTL)
	return newPostgreSQLRepository(config.DB, config.RedisClient, cacheManager, nil)
}

func newPostgreSQLRepository(db *gorm.DB, redisClient *redis.Client, cacheManager *cache.CacheManager, afterCommit func(func())) *PostgreSQLRepository {
	return &PostgreSQLRepository{
		db:               db,
		redisClient:      redisClient,
		cacheManager:     cacheManager,
		afterCommit:      afterCommit,
		studentProfile:   NewStudentProfileRepository(db),
		scholarship:      newScholarshipPostgreSQL(db, cacheManager, afterCommit),
		scholarshipMatch: NewScholarshipMatchRepository(db),
	}
}

// StudentProfile returns the student profile repository
func (r *PostgreSQLRepository) StudentProfile() repositories.StudentProfileRepository {
	return r.studentProfile
}

// Scholarship returns the scholarship repository
func (r *PostgreSQLRepository) Scholarship() repositories.ScholarshipRepository {
	return r.scholarship
}

// ScholarshipMatch returns the scholarship match repository
func (r *PostgreSQLRepository) ScholarshipMatch() repositories.ScholarshipMatchRepository {
	return r.scholarshipMatch
}

// WithTransaction executes fn with sub-repositories bound to one transaction.
// Cache invalidations queued by fn run once the outermost transaction commits.
func (r *PostgreSQLRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	hooks := &commitHooks{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newPostgreSQLRepository(tx, r.redisClient, r.cacheManager, hooks.add))
	})
	if err != nil {
		return err
	}
	hooks.flush(r.afterCommit)
	return nil
}

// commitHooks collects work that must not run before a transaction commits
type commitHooks struct {
	mu  sync.Mutex
	fns []func()
}

func (h *commitHooks) add(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fns = append(h.fns, fn)
}

func (h *commitHooks) run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// flush runs the hooks now, or hands them to parent when nested in another transaction
func (h *commitHooks) flush(parent func(func())) {
	if parent != nil {
		parent(h.run)
		return
	}
	h.run()
}

// Ping checks the health of database and cache connections
func (r *PostgreSQLRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	if r.redisClient != nil {
		if err := r.cacheManager.HealthCheck(ctx); err != nil {
			return fmt.Errorf("cache ping failed: %w", err)
		}
	}

	return nil
}

// Close closes all connections
func (r *PostgreSQLRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	if r.redisClient != nil {
		if err := r.redisClient.Close(); err != nil {
			return fmt.Errorf("failed to close Redis: %w", err)
		}
	}

	return nil
}

// RepositoryManager implements the RepositoryManager interface
type RepositoryManager struct {
	config RepositoryConfig
	repo   repositories.Repository
}

// NewRepositoryManager creates a new repository manager
func NewRepositoryManager(config RepositoryConfig) repositories.RepositoryManager {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &RepositoryManager{
		config: config,
	}
}

// Initialize verifies connections and builds the repository
func (rm *RepositoryManager) Initialize() error {
	if rm.config.DB == nil {
		return fmt.Errorf("database connection is required")
	}

	sqlDB, err := rm.config.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional: without it the catalog is read from the database every time
	if rm.config.RedisClient != nil {
		if err := rm.config.RedisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
	} else {
		rm.config.Logger.Warn("Redis not configured, catalog cache disabled")
	}

	rm.repo = NewPostgreSQLRepository(rm.config)
	rm.config.Logger.Info("Repositories initialized")

	return nil
}

// GetRepository returns the repository instance
func (rm *RepositoryManager) GetRepository() repositories.Repository {
	return rm.repo
}

// HealthCheck checks the health of all repository connections
func (rm *RepositoryManager) HealthCheck(ctx context.Context) error {
	if rm.repo == nil {
		return fmt.Errorf("repository not initialized")
	}

	return rm.repo.Ping(ctx)
}

// Shutdown closes all repository connections
func (rm *RepositoryManager) Shutdown(ctx context.Context) error {
	if rm.repo == nil {
		return nil
	}

	return rm.repo.Close()
}
