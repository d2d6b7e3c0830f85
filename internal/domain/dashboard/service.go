package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service provides dashboard statistics
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates dashboard service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) startOfMonth() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// AdminOverview returns platform-wide counters
func (s *Service) AdminOverview(ctx context.Context) (*AdminOverview, error) {
	out := &AdminOverview{}

	byRole, err := s.repo.UsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	out.UsersByRole = byRole
	for _, n := range byRole {
		out.TotalUsers += n
	}

	month := s.startOfMonth()
	if out.NewUsersThisMonth, err = s.repo.CountUsersSince(ctx, month); err != nil {
		return nil, err
	}

	courses, err := s.repo.CoursesByStatus(ctx, nil)
	if err != nil {
		return nil, err
	}
	out.PublishedCourses = courses["PUBLISHED"]
	out.PendingCourses = courses["PENDING"]

	if out.TotalEnrollments, err = s.repo.CountActiveEnrollments(ctx); err != nil {
		return nil, err
	}
	if out.TotalRevenue, err = s.repo.Revenue(ctx, nil); err != nil {
		return nil, err
	}
	if out.RevenueThisMonth, err = s.repo.Revenue(ctx, &month); err != nil {
		return nil, err
	}
	return out, nil
}

// InstructorOverview returns counters over the instructor's own courses.
// The average rating is weighted by each course's review count.
func (s *Service) InstructorOverview(ctx context.Context, instructorID uuid.UUID) (*InstructorOverview, error) {
	byStatus, err := s.repo.CoursesByStatus(ctx, &instructorID)
	if err != nil {
		return nil, err
	}
	totals, err := s.repo.InstructorTotals(ctx, instructorID)
	if err != nil {
		return nil, err
	}

	out := &InstructorOverview{
		CoursesByStatus:  byStatus,
		TotalEnrollments: totals.Enrollments,
		TotalRevenue:     totals.Revenue.Round(2),
		TotalReviews:     totals.Reviews,
		AverageRating:    decimal.Zero,
	}
	for _, n := range byStatus {
		out.TotalCourses += n
	}
	if totals.Reviews > 0 {
		out.AverageRating = totals.RatingPoints.DivRound(decimal.NewFromInt(int64(totals.Reviews)), 2)
	}
	return out, nil
}
