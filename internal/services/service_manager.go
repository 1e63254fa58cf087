package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/scholarship-service/internal/events"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Match MatchServiceConfig
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	locker         StudentLocker
	config         ServiceManagerConfig

	// Service instances
	studentProfileService StudentProfileService
	scholarshipService    ScholarshipService
	matchService          MatchService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, locker StudentLocker, config ServiceManagerConfig) ServiceManager {
	if publisher == nil {
		publisher = events.NoopEventPublisher{}
	}
	return &serviceManager{
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		locker:         locker,
		config:         config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, locker StudentLocker) ServiceManager {
	return NewServiceManager(repo, logger, validator, publisher, locker, ServiceManagerConfig{
		Match: DefaultMatchServiceConfig(),
	})
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	if sm.locker == nil {
		return fmt.Errorf("student locker is required")
	}

	sm.studentProfileService = NewStudentProfileService(sm.repo, sm.logger, sm.validator, sm.eventPublisher)
	sm.logger.Info("Student profile service initialized")

	sm.scholarshipService = NewScholarshipService(sm.repo, sm.logger, sm.validator, sm.eventPublisher)
	sm.logger.Info("Scholarship service initialized")

	matchService, err := NewMatchService(sm.repo, sm.logger, sm.validator, sm.eventPublisher, sm.locker, sm.config.Match)
	if err != nil {
		return fmt.Errorf("failed to initialize match service: %w", err)
	}
	sm.matchService = matchService
	sm.logger.Info("Match service initialized", "workers", sm.config.Match.Workers)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// Service getters
func (sm *serviceManager) StudentProfile() StudentProfileService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.studentProfileService
}

func (sm *serviceManager) Scholarship() ScholarshipService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.scholarshipService
}

func (sm *serviceManager) Match() MatchService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
	return sm.matchService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.eventPublisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}
