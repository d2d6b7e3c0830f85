package statistics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Recomputer rebuilds the statistics row of one course.
type Recomputer interface {
	Recompute(ctx context.Context, courseID uuid.UUID) error
}

// RecomputeAfterCommit runs r for courseID and only logs a failure.
// Callers use it once their own transaction has committed.
func RecomputeAfterCommit(ctx context.Context, r Recomputer, courseID uuid.UUID) {
	if r == nil {
		return
	}
	if err := r.Recompute(ctx, courseID); err != nil {
		log.Error().Err(err).Str("course_id", courseID.String()).Msg("course statistics recompute failed")
	}
}

// Service rebuilds and serves course statistics
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates statistics service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Recompute re-derives every counter for the course and stores the result.
func (s *Service) Recompute(ctx context.Context, courseID uuid.UUID) error {
	stats, err := s.repo.Aggregate(ctx, courseID)
	if err != nil {
		return err
	}
	stats.CourseID = courseID
	stats.AverageRating = stats.AverageRating.Round(2)
	stats.TotalRevenue = stats.TotalRevenue.Round(2)
	stats.UpdatedAt = s.now()

	if err := s.repo.Upsert(ctx, stats); err != nil {
		return err
	}

	log.Debug().
		Str("course_id", courseID.String()).
		Int("total_enrollments", stats.TotalEnrollments).
		Str("total_revenue", stats.TotalRevenue.StringFixed(2)).
		Msg("course statistics recomputed")
	return nil
}

// Get returns the stored statistics, or zero values when none were computed yet.
func (s *Service) Get(ctx context.Context, courseID uuid.UUID) (*CourseStatistics, error) {
	stats, err := s.repo.Get(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return &CourseStatistics{
			CourseID:      courseID,
			AverageRating: decimal.Zero,
			TotalRevenue:  decimal.Zero,
		}, nil
	}
	return stats, nil
}
