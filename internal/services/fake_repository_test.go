package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/repositories"
)

// fakeRepository is an in-memory repositories.Repository. Reads return copies so
// services only change stored rows through Create/Update.
type fakeRepository struct {
	mu sync.Mutex

	profiles     map[uint]*models.StudentProfile
	scholarships map[uint]*models.Scholarship
	matches      map[uint]*models.ScholarshipMatch
	nextID       uint

	// matchWrites counts successful match inserts and updates
	matchWrites int
	// conflicts makes the next N match writes fail with a duplicate key error
	conflicts int
	// listOpenErr makes ListOpen fail
	listOpenErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		profiles:     make(map[uint]*models.StudentProfile),
		scholarships: make(map[uint]*models.Scholarship),
		matches:      make(map[uint]*models.ScholarshipMatch),
	}
}

func (f *fakeRepository) StudentProfile() repositories.StudentProfileRepository {
	return fakeProfiles{f}
}
func (f *fakeRepository) Scholarship() repositories.ScholarshipRepository { return fakeScholarships{f} }
func (f *fakeRepository) ScholarshipMatch() repositories.ScholarshipMatchRepository {
	return fakeMatches{f}
}
func (f *fakeRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(f)
}
func (f *fakeRepository) Ping(ctx context.Context) error { return nil }
func (f *fakeRepository) Close() error                   { return nil }

func (f *fakeRepository) id() uint {
	f.nextID++
	return f.nextID
}

// seed helpers used by tests

func (f *fakeRepository) addProfile(p *models.StudentProfile) *models.StudentProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ID == 0 {
		p.ID = f.id()
	}
	cp := *p
	f.profiles[p.ID] = &cp
	return p
}

func (f *fakeRepository) addScholarship(s *models.Scholarship) *models.Scholarship {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.ID == 0 {
		s.ID = f.id()
	}
	cp := *s
	f.scholarships[s.ID] = &cp
	return s
}

func (f *fakeRepository) addMatch(m *models.ScholarshipMatch) *models.ScholarshipMatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == 0 {
		m.ID = f.id()
	}
	cp := *m
	f.matches[m.ID] = &cp
	return m
}

func (f *fakeRepository) matchFor(studentID, scholarshipID uint) *models.ScholarshipMatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.matches {
		if m.StudentProfileID == studentID && m.ScholarshipID == scholarshipID {
			cp := *m
			return &cp
		}
	}
	return nil
}

func (f *fakeRepository) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.matchWrites
}

func (f *fakeRepository) takeConflict() error {
	if f.conflicts > 0 {
		f.conflicts--
		return fmt.Errorf("create scholarship match failed: %w", gorm.ErrDuplicatedKey)
	}
	return nil
}

// ===== student profiles =====

type fakeProfiles struct{ f *fakeRepository }

func (r fakeProfiles) Create(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, p := range r.f.profiles {
		if p.UserID == profile.UserID {
			return fmt.Errorf("create student profile failed: %w", gorm.ErrDuplicatedKey)
		}
	}
	profile.ID = r.f.id()
	cp := *profile
	r.f.profiles[profile.ID] = &cp
	return nil
}

func (r fakeProfiles) Update(ctx context.Context, tx *gorm.DB, profile *models.StudentProfile) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.profiles[profile.ID]; !ok {
		return repositories.NotFound("student profile", profile.ID)
	}
	cp := *profile
	r.f.profiles[profile.ID] = &cp
	return nil
}

func (r fakeProfiles) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.StudentProfile, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	p, ok := r.f.profiles[id]
	if !ok {
		return nil, fmt.Errorf("get student profile by id failed: %w", gorm.ErrRecordNotFound)
	}
	cp := *p
	return &cp, nil
}

func (r fakeProfiles) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.StudentProfile, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, p := range r.f.profiles {
		if p.UserID == userID {
			cp := *p
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get student profile by user id failed: %w", gorm.ErrRecordNotFound)
}

func (r fakeProfiles) ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error) {
	_, err := r.GetByUserID(ctx, tx, userID)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r fakeProfiles) ListIDs(ctx context.Context, tx *gorm.DB) ([]uint, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	ids := make([]uint, 0, len(r.f.profiles))
	for id := range r.f.profiles {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ===== scholarships =====

type fakeScholarships struct{ f *fakeRepository }

func (r fakeScholarships) Create(ctx context.Context, tx *gorm.DB, scholarship *models.Scholarship) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.scholarships {
		if s.Name == scholarship.Name {
			return fmt.Errorf("create scholarship failed: %w", gorm.ErrDuplicatedKey)
		}
	}
	scholarship.ID = r.f.id()
	cp := *scholarship
	r.f.scholarships[scholarship.ID] = &cp
	return nil
}

func (r fakeScholarships) Update(ctx context.Context, tx *gorm.DB, scholarship *models.Scholarship) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if _, ok := r.f.scholarships[scholarship.ID]; !ok {
		return repositories.NotFound("scholarship", scholarship.ID)
	}
	cp := *scholarship
	r.f.scholarships[scholarship.ID] = &cp
	return nil
}

func (r fakeScholarships) SetActive(ctx context.Context, tx *gorm.DB, id uint, active bool) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.scholarships[id]
	if !ok {
		return repositories.NotFound("scholarship", id)
	}
	s.IsActive = active
	return nil
}

func (r fakeScholarships) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Scholarship, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	s, ok := r.f.scholarships[id]
	if !ok {
		return nil, fmt.Errorf("get scholarship by id failed: %w", gorm.ErrRecordNotFound)
	}
	cp := *s
	return &cp, nil
}

func (r fakeScholarships) ExistsByName(ctx context.Context, tx *gorm.DB, name string, excludeID *uint) (bool, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, s := range r.f.scholarships {
		if s.Name == name && (excludeID == nil || s.ID != *excludeID) {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeScholarships) List(ctx context.Context, tx *gorm.DB, filters repositories.ScholarshipFilters) ([]*models.Scholarship, int64, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.Scholarship
	for _, s := range r.f.scholarships {
		if filters.IsActive != nil && s.IsActive != *filters.IsActive {
			continue
		}
		if filters.Search != nil && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(*filters.Search)) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if filters.Offset < len(out) {
		out = out[filters.Offset:]
	} else {
		out = nil
	}
	if filters.Limit > 0 && filters.Limit < len(out) {
		out = out[:filters.Limit]
	}
	return out, total, nil
}

func (r fakeScholarships) ListOpen(ctx context.Context, tx *gorm.DB, asOf time.Time) ([]*models.Scholarship, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if r.f.listOpenErr != nil {
		return nil, r.f.listOpenErr
	}
	var out []*models.Scholarship
	for _, s := range r.f.scholarships {
		if s.IsOpen(asOf) {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ===== matches =====

type fakeMatches struct{ f *fakeRepository }

func (r fakeMatches) Create(ctx context.Context, tx *gorm.DB, match *models.ScholarshipMatch) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.takeConflict(); err != nil {
		return err
	}
	for _, m := range r.f.matches {
		if m.StudentProfileID == match.StudentProfileID && m.ScholarshipID == match.ScholarshipID {
			return fmt.Errorf("create scholarship match failed: %w", gorm.ErrDuplicatedKey)
		}
	}
	match.ID = r.f.id()
	cp := *match
	cp.Scholarship = models.Scholarship{}
	r.f.matches[match.ID] = &cp
	r.f.matchWrites++
	return nil
}

func (r fakeMatches) Update(ctx context.Context, tx *gorm.DB, match *models.ScholarshipMatch) error {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	if err := r.f.takeConflict(); err != nil {
		return err
	}
	if _, ok := r.f.matches[match.ID]; !ok {
		return repositories.NotFound("scholarship match", match.ID)
	}
	cp := *match
	cp.Scholarship = models.Scholarship{}
	r.f.matches[match.ID] = &cp
	r.f.matchWrites++
	return nil
}

func (r fakeMatches) withScholarship(m *models.ScholarshipMatch) *models.ScholarshipMatch {
	cp := *m
	if s, ok := r.f.scholarships[m.ScholarshipID]; ok {
		cp.Scholarship = *s
	}
	return &cp
}

func (r fakeMatches) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ScholarshipMatch, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.matches[id]
	if !ok {
		return nil, fmt.Errorf("get scholarship match by id failed: %w", gorm.ErrRecordNotFound)
	}
	return r.withScholarship(m), nil
}

func (r fakeMatches) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.ScholarshipMatch, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	m, ok := r.f.matches[id]
	if !ok {
		return nil, fmt.Errorf("lock scholarship match by id failed: %w", gorm.ErrRecordNotFound)
	}
	cp := *m
	return &cp, nil
}

func (r fakeMatches) GetByPairForUpdate(ctx context.Context, tx *gorm.DB, studentProfileID, scholarshipID uint) (*models.ScholarshipMatch, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	for _, m := range r.f.matches {
		if m.StudentProfileID == studentProfileID && m.ScholarshipID == scholarshipID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("lock scholarship match by pair failed: %w", gorm.ErrRecordNotFound)
}

func (r fakeMatches) ListByStudent(ctx context.Context, tx *gorm.DB, studentProfileID uint, filters repositories.MatchFilters) ([]*models.ScholarshipMatch, error) {
	r.f.mu.Lock()
	defer r.f.mu.Unlock()
	var out []*models.ScholarshipMatch
	for _, m := range r.f.matches {
		if m.StudentProfileID != studentProfileID {
			continue
		}
		if filters.EligibleOnly && !m.IsEligible {
			continue
		}
		if filters.Status != nil && m.ApplicationStatus != *filters.Status {
			continue
		}
		if filters.MinScore != nil && m.EligibilityScore < *filters.MinScore {
			continue
		}
		out = append(out, r.withScholarship(m))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EligibilityScore != out[j].EligibilityScore {
			return out[i].EligibilityScore > out[j].EligibilityScore
		}
		return out[i].ScholarshipID < out[j].ScholarshipID
	})
	return out, nil
}
