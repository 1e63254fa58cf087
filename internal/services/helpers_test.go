package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/SAP-F-2025/scholarship-service/internal/cache"
	"github.com/SAP-F-2025/scholarship-service/internal/events"
	"github.com/SAP-F-2025/scholarship-service/internal/models"
	"github.com/SAP-F-2025/scholarship-service/internal/validator"
)

var testNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func floatPtr(v float64) *float64 {
	return &v
}

func testStudent() *models.StudentProfile {
	return &models.StudentProfile{
		UserID:             "user-1",
		Gender:             models.GenderFemale,
		CasteCategory:      models.CasteSC,
		State:              "Karnataka",
		EducationLevel:     models.EducationUndergraduate,
		FieldOfStudy:       "Engineering",
		YearOfStudy:        2,
		CGPA:               floatPtr(8.5),
		AnnualFamilyIncome: floatPtr(200000),
	}
}

func testScholarship(name string) *models.Scholarship {
	return &models.Scholarship{
		Name:                    name,
		Provider:                "Ministry of Social Justice",
		Amount:                  50000,
		MinCGPA:                 7.0,
		EligibleCasteCategories: pq.StringArray{"SC", "ST"},
		MinFamilyIncome:         floatPtr(0),
		MaxFamilyIncome:         floatPtr(500000),
		Deadline:                time.Date(2030, 3, 31, 0, 0, 0, 0, time.UTC),
		IsActive:                true,
		Type:                    models.ScholarshipGovernment,
	}
}

type matchFixture struct {
	repo      *fakeRepository
	publisher *events.MockEventPublisher
	service   MatchService
	now       time.Time
}

func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()
	return newMatchFixtureWithLocker(t, cache.NewStudentLocker(nil, time.Second))
}

func newMatchFixtureWithLocker(t *testing.T, locker StudentLocker) *matchFixture {
	t.Helper()

	f := &matchFixture{
		repo:      newFakeRepository(),
		publisher: events.NewMockEventPublisher(testLogger()),
		now:       testNow,
	}

	config := DefaultMatchServiceConfig()
	config.Workers = 4
	config.Clock = func() time.Time { return f.now }

	service, err := NewMatchService(f.repo, testLogger(), validator.New(), f.publisher, locker, config)
	if err != nil {
		t.Fatalf("NewMatchService() error = %v", err)
	}
	f.service = service
	return f
}

// gatedLocker parks the first Lock call until release is closed, then
// delegates every call to the wrapped locker.
type gatedLocker struct {
	inner   StudentLocker
	once    sync.Once
	waiting chan struct{}
	release chan struct{}
}

func newGatedLocker(inner StudentLocker) *gatedLocker {
	return &gatedLocker{
		inner:   inner,
		waiting: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (g *gatedLocker) Lock(ctx context.Context, studentProfileID uint) (func(), error) {
	gated := false
	g.once.Do(func() { gated = true })
	if gated {
		close(g.waiting)
		<-g.release
	}
	return g.inner.Lock(ctx, studentProfileID)
}
