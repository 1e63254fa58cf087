package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SAP-F-2025/scholarship-service/internal/events"
	"github.com/SAP-F-2025/scholarship-service/internal/matching"
	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
)

// StudentLocker serializes refreshes of the same student
type StudentLocker interface {
	Lock(ctx context.Context, studentProfileID uint) (func(), error)
}

type MatchServiceConfig struct {
	Engine matching.Config
	// Workers bounds the number of students refreshed in parallel by a batch
	Workers int
	// RefreshTimeout bounds a single student's refresh inside a batch; zero means none
	RefreshTimeout time.Duration
	// Clock defines "today" for the open catalog; defaults to time.Now
	Clock func() time.Time
}

func DefaultMatchServiceConfig() MatchServiceConfig {
	return MatchServiceConfig{
		Engine:         matching.DefaultConfig(),
		Workers:        8,
		RefreshTimeout: 2 * time.Minute,
		Clock:          time.Now,
	}
}

type matchService struct {
	repo           repositories.Repository
	logger         *slog.Logger
	validator      *validator.Validator
	eventPublisher events.EventPublisher
	locker         StudentLocker
	engine         *matching.Engine

	workers        int
	refreshTimeout time.Duration
	clock          func() time.Time
}

func NewMatchService(repo repositories.Repository, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, locker StudentLocker, config MatchServiceConfig) (MatchService, error) {
	engine, err := matching.NewEngine(config.Engine)
	if err != nil {
		return nil, fmt.Errorf("invalid matching config: %w", err)
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}

	return &matchService{
		repo:           repo,
		logger:         logger,
		validator:      validator,
		eventPublisher: publisher,
		locker:         locker,
		engine:         engine,
		workers:        config.Workers,
		refreshTimeout: config.RefreshTimeout,
		clock:          config.Clock,
	}, nil
}

// catalogSnapshot is the open catalog taken once per refresh or batch. It is never mutated.
type catalogSnapshot struct {
	asOf         time.Time
	scholarships []*models.Scholarship
	open         map[uint]struct{}
	skipped      map[uint]struct{}
}

func (s *matchService) takeSnapshot(ctx context.Context) (*catalogSnapshot, error) {
	asOf := s.clock().UTC()

	scholarships, err := s.repo.Scholarship().ListOpen(ctx, nil, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to load open scholarships: %w", err)
	}

	snapshot := &catalogSnapshot{
		asOf:         asOf,
		scholarships: make([]*models.Scholarship, 0, len(scholarships)),
		open:         make(map[uint]struct{}, len(scholarships)),
		skipped:      make(map[uint]struct{}),
	}

	for _, scholarship := range scholarships {
		if errs := s.validator.GetBusinessValidator().ValidateScholarship(scholarship); len(errs) > 0 {
			s.logger.Warn("Skipping malformed scholarship",
				"scholarship_id", scholarship.ID,
				"error", errs.Error())
			snapshot.skipped[scholarship.ID] = struct{}{}
			continue
		}
		snapshot.scholarships = append(snapshot.scholarships, scholarship)
		snapshot.open[scholarship.ID] = struct{}{}
	}

	return snapshot, nil
}

// ===== REFRESH =====

func (s *matchService) RefreshMatches(ctx context.Context, studentProfileID uint) ([]models.MatchResult, error) {
	s.logger.Info("Refreshing matches", "student_profile_id", studentProfileID)

	results, err := s.refreshStudent(ctx, studentProfileID, nil)
	if err != nil {
		return nil, err
	}

	s.publishMatchesRefreshed(ctx, studentProfileID, results)
	return results, nil
}

func (s *matchService) RefreshAll(ctx context.Context) (*models.RefreshSummary, error) {
	ids, err := s.repo.StudentProfile().ListIDs(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list student profiles: %w", err)
	}
	return s.RefreshStudents(ctx, ids)
}

func (s *matchService) RefreshStudents(ctx context.Context, studentProfileIDs []uint) (*models.RefreshSummary, error) {
	startedAt := s.clock()
	s.logger.Info("Starting batch refresh", "students", len(studentProfileIDs), "workers", s.workers)

	snapshot, err := s.takeSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.RefreshSummary{
		StartedAt: startedAt,
		Errors:    make(map[uint]string),
	}
	var mu sync.Mutex

	// Failures are recorded per student and never cancel the rest of the batch
	var g errgroup.Group
	g.SetLimit(s.workers)

	for _, id := range studentProfileIDs {
		g.Go(func() error {
			err := s.refreshOne(ctx, id, snapshot)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Failed++
				summary.Errors[id] = err.Error()
				s.logger.Error("Student refresh failed", "student_profile_id", id, "error", err)
				return nil
			}
			summary.Processed++
			return nil
		})
	}
	_ = g.Wait()

	summary.Duration = s.clock().Sub(startedAt)
	s.logger.Info("Batch refresh completed",
		"processed", summary.Processed,
		"failed", summary.Failed,
		"duration", summary.Duration)

	if err := ctx.Err(); err != nil {
		return summary, fmt.Errorf("batch refresh interrupted: %w", err)
	}
	return summary, nil
}

func (s *matchService) refreshOne(ctx context.Context, studentProfileID uint, snapshot *catalogSnapshot) error {
	if s.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.refreshTimeout)
		defer cancel()
	}

	results, err := s.refreshStudent(ctx, studentProfileID, snapshot)
	if err != nil {
		return err
	}

	s.publishMatchesRefreshed(ctx, studentProfileID, results)
	return nil
}

func (s *matchService) loadProfile(ctx context.Context, studentProfileID uint) (*models.StudentProfile, error) {
	profile, err := s.repo.StudentProfile().GetByID(ctx, nil, studentProfileID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("student profile", studentProfileID)
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	if errs := s.validator.GetBusinessValidator().ValidateStudentProfile(profile); len(errs) > 0 {
		return nil, errs
	}
	return profile, nil
}

// refreshStudent loads the profile and upserts every pair while holding the
// student's lock. A nil snapshot is taken under the lock.
func (s *matchService) refreshStudent(ctx context.Context, studentProfileID uint, snapshot *catalogSnapshot) ([]models.MatchResult, error) {
	unlock, err := s.locker.Lock(ctx, studentProfileID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	profile, err := s.loadProfile(ctx, studentProfileID)
	if err != nil {
		return nil, err
	}

	if snapshot == nil {
		if snapshot, err = s.takeSnapshot(ctx); err != nil {
			return nil, err
		}
	}

	var written int
	for _, scholarship := range snapshot.scholarships {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("refresh of student %d cancelled: %w", profile.ID, err)
		}

		outcome := s.engine.Match(profile, scholarship)
		eval, err := evaluationFromOutcome(outcome)
		if err != nil {
			return nil, fmt.Errorf("failed to encode trace for scholarship %d: %w", scholarship.ID, err)
		}

		action, err := s.upsertPair(ctx, profile.ID, scholarship.ID, eval)
		if err != nil {
			return nil, err
		}
		if action != actionNone {
			written++
		}
	}

	closed, err := s.closeOutStale(ctx, profile.ID, snapshot)
	if err != nil {
		return nil, err
	}
	written += closed

	matches, err := s.repo.ScholarshipMatch().ListByStudent(ctx, nil, profile.ID, repositories.MatchFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	results := toMatchResults(matches)
	s.logger.Info("Matches refreshed",
		"student_profile_id", profile.ID,
		"scholarships", len(snapshot.scholarships),
		"written", written,
		"eligible", countEligible(results))

	return results, nil
}

// closeOutStale zero-scores NOT_APPLIED rows whose scholarship left the open catalog
func (s *matchService) closeOutStale(ctx context.Context, studentProfileID uint, snapshot *catalogSnapshot) (int, error) {
	matches, err := s.repo.ScholarshipMatch().ListByStudent(ctx, nil, studentProfileID, repositories.MatchFilters{})
	if err != nil {
		return 0, fmt.Errorf("failed to list matches: %w", err)
	}

	written := 0
	for _, match := range matches {
		if _, ok := snapshot.open[match.ScholarshipID]; ok {
			continue
		}
		if _, ok := snapshot.skipped[match.ScholarshipID]; ok {
			continue
		}
		if match.ApplicationStatus.HasProgressed() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return written, fmt.Errorf("refresh of student %d cancelled: %w", studentProfileID, err)
		}

		action, err := s.upsertPair(ctx, studentProfileID, match.ScholarshipID, closedEvaluation(match.Scholarship.Name))
		if err != nil {
			return written, err
		}
		if action != actionNone {
			written++
		}
	}
	return written, nil
}

// upsertPair writes one pair in its own transaction, re-reading the row FOR UPDATE.
// A conflict is retried once with a fresh read.
func (s *matchService) upsertPair(ctx context.Context, studentProfileID, scholarshipID uint, eval evaluation) (upsertAction, error) {
	action, err := s.upsertPairOnce(ctx, studentProfileID, scholarshipID, eval)
	if err == nil || !repositories.IsConflictError(err) {
		return action, err
	}

	s.logger.Warn("Match write conflict, retrying",
		"student_profile_id", studentProfileID,
		"scholarship_id", scholarshipID,
		"error", err)

	action, err = s.upsertPairOnce(ctx, studentProfileID, scholarshipID, eval)
	if err != nil && repositories.IsConflictError(err) {
		return actionNone, NewConflictError("scholarship match",
			fmt.Sprintf("student %d scholarship %d", studentProfileID, scholarshipID), err)
	}
	return action, err
}

func (s *matchService) upsertPairOnce(ctx context.Context, studentProfileID, scholarshipID uint, eval evaluation) (upsertAction, error) {
	var action upsertAction

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		existing, err := tx.ScholarshipMatch().GetByPairForUpdate(ctx, nil, studentProfileID, scholarshipID)
		if err != nil {
			if !repositories.IsNotFoundError(err) {
				return fmt.Errorf("failed to read match: %w", err)
			}
			existing = nil
		}

		action = planUpsert(existing, eval)
		now := s.clock().UTC()

		switch action {
		case actionInsert:
			if err := tx.ScholarshipMatch().Create(ctx, nil, newMatch(studentProfileID, scholarshipID, eval, now)); err != nil {
				return fmt.Errorf("failed to insert match: %w", err)
			}
		case actionUpdate:
			applyEvaluation(existing, eval, now)
			if err := tx.ScholarshipMatch().Update(ctx, nil, existing); err != nil {
				return fmt.Errorf("failed to update match: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return actionNone, err
	}

	if action != actionNone {
		s.logger.Debug("Match written",
			"student_profile_id", studentProfileID,
			"scholarship_id", scholarshipID,
			"action", action.String(),
			"eligible", eval.Eligible,
			"score", eval.Score)
	}
	return action, nil
}

// ===== READS AND APPLICATION WORKFLOW =====

func (s *matchService) ListMatches(ctx context.Context, studentProfileID uint, filters repositories.MatchFilters) ([]models.MatchResult, error) {
	if _, err := s.repo.StudentProfile().GetByID(ctx, nil, studentProfileID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, NewNotFoundError("student profile", studentProfileID)
		}
		return nil, fmt.Errorf("failed to get student profile: %w", err)
	}

	matches, err := s.repo.ScholarshipMatch().ListByStudent(ctx, nil, studentProfileID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return toMatchResults(matches), nil
}

func (s *matchService) UpdateApplicationStatus(ctx context.Context, matchID uint, req *models.UpdateApplicationStatusRequest) (*models.MatchResult, error) {
	s.logger.Info("Updating application status", "match_id", matchID, "status", req.Status)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	err := s.repo.WithTransaction(ctx, func(tx repositories.Repository) error {
		match, err := tx.ScholarshipMatch().GetByIDForUpdate(ctx, nil, matchID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return NewNotFoundError("scholarship match", matchID)
			}
			return fmt.Errorf("failed to get match: %w", err)
		}

		if errs := s.validator.GetBusinessValidator().ValidateStatusTransition(match.ApplicationStatus, req.Status, match.IsEligible); len(errs) > 0 {
			return errs
		}

		match.ApplicationStatus = req.Status
		switch req.Status {
		case models.ApplicationSubmitted:
			appliedAt := s.clock().UTC()
			match.AppliedAt = &appliedAt
		case models.ApplicationNotApplied:
			match.AppliedAt = nil
		}

		if err := tx.ScholarshipMatch().Update(ctx, nil, match); err != nil {
			return fmt.Errorf("failed to update match: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	match, err := s.repo.ScholarshipMatch().GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload match: %w", err)
	}

	result := toMatchResult(match)
	s.logger.Info("Application status updated", "match_id", matchID, "status", result.ApplicationStatus)
	return &result, nil
}

func (s *matchService) publishMatchesRefreshed(ctx context.Context, studentProfileID uint, results []models.MatchResult) {
	event := events.NewEvent(events.TopicMatchesRefreshed, events.MatchesRefreshedData{
		StudentProfileID: studentProfileID,
		EligibleCount:    countEligible(results),
		Total:            len(results),
	})
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Error("Failed to publish matches refreshed event",
			"student_profile_id", studentProfileID,
			"error", err)
	}
}
