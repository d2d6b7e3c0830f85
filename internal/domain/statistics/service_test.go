package statistics

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	aggregate *CourseStatistics
	aggErr    error
	stored    map[uuid.UUID]*CourseStatistics
}

func (s *stubRepo) Aggregate(ctx context.Context, courseID uuid.UUID) (*CourseStatistics, error) {
	if s.aggErr != nil {
		return nil, s.aggErr
	}
	cp := *s.aggregate
	return &cp, nil
}

func (s *stubRepo) Upsert(ctx context.Context, stats *CourseStatistics) error {
	s.stored[stats.CourseID] = stats
	return nil
}

func (s *stubRepo) Get(ctx context.Context, courseID uuid.UUID) (*CourseStatistics, error) {
	return s.stored[courseID], nil
}

func TestRecomputeOverwritesStoredRow(t *testing.T) {
	courseID := uuid.New()
	repo := &stubRepo{
		aggregate: &CourseStatistics{
			TotalEnrollments: 3,
			TotalReviews:     2,
			AverageRating:    decimal.RequireFromString("4.5"),
			TotalRevenue:     decimal.RequireFromString("900"),
		},
		stored: map[uuid.UUID]*CourseStatistics{
			courseID: {CourseID: courseID, TotalEnrollments: 99},
		},
	}
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc := NewService(repo)
	svc.now = func() time.Time { return fixed }

	if err := svc.Recompute(context.Background(), courseID); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	got, err := svc.Get(context.Background(), courseID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalEnrollments != 3 || got.TotalReviews != 2 {
		t.Fatalf("unexpected counters %+v", got)
	}
	if got.TotalRevenue.StringFixed(2) != "900.00" || !got.UpdatedAt.Equal(fixed) {
		t.Fatalf("unexpected revenue or timestamp %+v", got)
	}
}

func TestGetDefaultsToZero(t *testing.T) {
	svc := NewService(&stubRepo{stored: map[uuid.UUID]*CourseStatistics{}})
	courseID := uuid.New()

	got, err := svc.Get(context.Background(), courseID)
	if err != nil {
		t.Fatal(err)
	}
	if got.CourseID != courseID || got.TotalEnrollments != 0 || !got.TotalRevenue.IsZero() {
		t.Fatalf("expected zero statistics, got %+v", got)
	}
}

type failingRecomputer struct{ calls int }

func (f *failingRecomputer) Recompute(ctx context.Context, courseID uuid.UUID) error {
	f.calls++
	return errors.New("boom")
}

func TestRecomputeAfterCommitSwallowsErrors(t *testing.T) {
	r := &failingRecomputer{}
	RecomputeAfterCommit(context.Background(), r, uuid.New())
	RecomputeAfterCommit(context.Background(), nil, uuid.New())
	if r.calls != 1 {
		t.Fatalf("expected one call, got %d", r.calls)
	}
}
