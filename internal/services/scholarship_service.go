package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/scholarship-service/internal/events"
	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
)

const (
	defaultScholarshipPageSize = 20
	maxScholarshipPageSize     = 100
)

type scholarshipService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
}

func NewScholarshipService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) ScholarshipService {
	return &scholarshipService{
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
	}
}

func (s *scholarshipService) Create(ctx context.Context, req *models.ScholarshipRequest) (*models.Scholarship, error) {
	s.logger.Info("Creating scholarship", "name", req.Name, "type", req.Type)

	if errors := s.validator.GetBusinessValidator().ValidateScholarshipRequest(req); len(errors) > 0 {
		return nil, errors
	}

	exists, err := s.repo.Scholarship().ExistsByName(ctx, nil, req.Name, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check scholarship name: %w", err)
	}
	if exists {
		return nil, NewConflictError("scholarship", fmt.Sprintf("name %q already exists", req.Name), nil)
	}

	scholarship := &models.Scholarship{}
	applyScholarshipRequest(scholarship, req)

	if err := s.repo.Scholarship().Create(ctx, nil, scholarship); err != nil {
		if repositories.IsConflictError(err) {
			return nil, NewConflictError("scholarship", fmt.Sprintf("name %q already exists", req.Name), err)
		}
		return nil, fmt.Errorf("failed to create scholarship: %w", err)
	}

	s.logger.Info("Scholarship created", "scholarship_id", scholarship.ID)
	s.publishCatalogUpdated(ctx, scholarship.ID, events.CatalogActionCreated)

	return scholarship, nil
}

func (s *scholarshipService) Update(ctx context.Context, id uint, req *models.ScholarshipRequest) (*models.Scholarship, error) {
	s.logger.Info("Updating scholarship", "scholarship_id", id)

	if errors := s.validator.GetBusinessValidator().ValidateScholarshipRequest(req); len(errors) > 0 {
		return nil, errors
	}

	scholarship, err := s.repo.Scholarship().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("scholarship", id)
		}
		return nil, fmt.Errorf("failed to get scholarship: %w", err)
	}

	if req.Name != scholarship.Name {
		exists, err := s.repo.Scholarship().ExistsByName(ctx, nil, req.Name, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check scholarship name: %w", err)
		}
		if exists {
			return nil, NewConflictError("scholarship", fmt.Sprintf("name %q already exists", req.Name), nil)
		}
	}

	applyScholarshipRequest(scholarship, req)

	if err := s.repo.Scholarship().Update(ctx, nil, scholarship); err != nil {
		switch {
		case repositories.IsNotFoundError(err):
			return nil, NewNotFoundError("scholarship", id)
		case repositories.IsConflictError(err):
			return nil, NewConflictError("scholarship", fmt.Sprintf("name %q already exists", req.Name), err)
		}
		return nil, fmt.Errorf("failed to update scholarship: %w", err)
	}

	s.logger.Info("Scholarship updated", "scholarship_id", id)
	s.publishCatalogUpdated(ctx, id, events.CatalogActionUpdated)

	return scholarship, nil
}

// Deactivate closes a scholarship. Existing matches are left to the next refresh.
func (s *scholarshipService) Deactivate(ctx context.Context, id uint) error {
	s.logger.Info("Deactivating scholarship", "scholarship_id", id)

	if err := s.repo.Scholarship().SetActive(ctx, nil, id, false); err != nil {
		if repositories.IsNotFoundError(err) {
			return NewNotFoundError("scholarship", id)
		}
		return fmt.Errorf("failed to deactivate scholarship: %w", err)
	}

	s.publishCatalogUpdated(ctx, id, events.CatalogActionDeactivated)
	return nil
}

func (s *scholarshipService) GetByID(ctx context.Context, id uint) (*models.Scholarship, error) {
	scholarship, err := s.repo.Scholarship().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("scholarship", id)
		}
		return nil, fmt.Errorf("failed to get scholarship: %w", err)
	}
	return scholarship, nil
}

func (s *scholarshipService) List(ctx context.Context, filters repositories.ScholarshipFilters) ([]*models.Scholarship, int64, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultScholarshipPageSize
	}
	if filters.Limit > maxScholarshipPageSize {
		filters.Limit = maxScholarshipPageSize
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}

	scholarships, total, err := s.repo.Scholarship().List(ctx, nil, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list scholarships: %w", err)
	}
	return scholarships, total, nil
}

func (s *scholarshipService) publishCatalogUpdated(ctx context.Context, id uint, action string) {
	event := events.NewEvent(events.TopicCatalogUpdated, events.CatalogUpdatedData{ScholarshipID: id, Action: action})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish catalog event", "scholarship_id", id, "action", action, "error", err)
	}
}

func applyScholarshipRequest(scholarship *models.Scholarship, req *models.ScholarshipRequest) {
	scholarship.Name = strings.TrimSpace(req.Name)
	scholarship.Provider = strings.TrimSpace(req.Provider)
	scholarship.Description = req.Description
	scholarship.IsFullyFunded = req.IsFullyFunded
	scholarship.Amount = req.Amount
	if req.IsFullyFunded {
		scholarship.Amount = 0
	}
	scholarship.DurationMonths = req.DurationMonths
	scholarship.StartDate = req.StartDate
	scholarship.MinCGPA = req.MinCGPA
	scholarship.EligibleEducationLevels = enumArray(req.EligibleEducationLevels)
	scholarship.EligibleFieldsOfStudy = labelArray(req.EligibleFieldsOfStudy)
	scholarship.EligibleCasteCategories = enumArray(req.EligibleCasteCategories)
	scholarship.MinFamilyIncome = req.MinFamilyIncome
	scholarship.MaxFamilyIncome = req.MaxFamilyIncome
	scholarship.EligibleStates = labelArray(req.EligibleStates)
	scholarship.Deadline = models.DateOf(req.Deadline)
	scholarship.ApplicationLink = req.ApplicationLink
	scholarship.IsActive = req.IsActive
	scholarship.Type = req.Type
	scholarship.Tags = datatypes.JSONSlice[string](req.Tags)
	if scholarship.Tags == nil {
		scholarship.Tags = datatypes.JSONSlice[string]{}
	}
}

func enumArray[T ~string](values []T) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	return out
}

func labelArray(values []string) pq.StringArray {
	out := make(pq.StringArray, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
