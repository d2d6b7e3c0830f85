package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	roles       map[string]int
	newUsers    int
	courses     map[string]int
	mine        map[string]int
	enrolled    int
	revenue     decimal.Decimal
	monthly     decimal.Decimal
	totals      instructorTotals
	sinceSeen   time.Time
	failRevenue error

	owners     map[uuid.UUID]uuid.UUID
	students   []*Student
	byMonth    []MonthPoint
	byCourse   []*CourseRevenue
	signups    []MonthCount
	windowSeen [2]time.Time
	ownerSeen  *uuid.UUID
	limitSeen  int
}

func (s *stubRepo) UsersByRole(ctx context.Context) (map[string]int, error) { return s.roles, nil }

func (s *stubRepo) CountUsersSince(ctx context.Context, since time.Time) (int, error) {
	s.sinceSeen = since
	return s.newUsers, nil
}

func (s *stubRepo) CoursesByStatus(ctx context.Context, instructorID *uuid.UUID) (map[string]int, error) {
	if instructorID != nil {
		return s.mine, nil
	}
	return s.courses, nil
}

func (s *stubRepo) CountActiveEnrollments(ctx context.Context) (int, error) { return s.enrolled, nil }

func (s *stubRepo) Revenue(ctx context.Context, since *time.Time) (decimal.Decimal, error) {
	if s.failRevenue != nil {
		return decimal.Zero, s.failRevenue
	}
	if since != nil {
		return s.monthly, nil
	}
	return s.revenue, nil
}

func (s *stubRepo) InstructorTotals(ctx context.Context, instructorID uuid.UUID) (*instructorTotals, error) {
	t := s.totals
	return &t, nil
}

func (s *stubRepo) CourseInstructor(ctx context.Context, courseID uuid.UUID) (uuid.UUID, error) {
	return s.owners[courseID], nil
}

func (s *stubRepo) CourseStudents(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]*Student, int, error) {
	if offset >= len(s.students) {
		return nil, len(s.students), nil
	}
	end := offset + limit
	if end > len(s.students) {
		end = len(s.students)
	}
	return s.students[offset:end], len(s.students), nil
}

func (s *stubRepo) RevenueByMonth(ctx context.Context, instructorID *uuid.UUID, from, to time.Time) ([]MonthPoint, error) {
	s.windowSeen = [2]time.Time{from, to}
	s.ownerSeen = instructorID
	return s.byMonth, nil
}

func (s *stubRepo) RevenueByCourse(ctx context.Context, instructorID *uuid.UUID, from, to time.Time, limit int) ([]*CourseRevenue, error) {
	s.limitSeen = limit
	return s.byCourse, nil
}

func (s *stubRepo) SignupsByMonth(ctx context.Context, from, to time.Time) ([]MonthCount, error) {
	s.windowSeen = [2]time.Time{from, to}
	return s.signups, nil
}

func TestAdminOverview(t *testing.T) {
	repo := &stubRepo{
		roles:    map[string]int{"STUDENT": 7, "INSTRUCTOR": 2, "ADMIN": 1},
		newUsers: 3,
		courses:  map[string]int{"PUBLISHED": 4, "PENDING": 2, "DRAFT": 5},
		enrolled: 12,
		revenue:  decimal.RequireFromString("1499.50"),
		monthly:  decimal.RequireFromString("300.00"),
	}
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2025, 3, 17, 15, 4, 5, 0, time.UTC) }

	out, err := svc.AdminOverview(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if out.TotalUsers != 10 || out.UsersByRole["INSTRUCTOR"] != 2 {
		t.Fatalf("unexpected user counts %+v", out)
	}
	if out.PublishedCourses != 4 || out.PendingCourses != 2 || out.TotalEnrollments != 12 {
		t.Fatalf("unexpected course counts %+v", out)
	}
	if !out.TotalRevenue.Equal(decimal.RequireFromString("1499.5")) || !out.RevenueThisMonth.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("unexpected revenue %s / %s", out.TotalRevenue, out.RevenueThisMonth)
	}
	if want := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC); !repo.sinceSeen.Equal(want) {
		t.Fatalf("month window starts %v, want %v", repo.sinceSeen, want)
	}

	repo.failRevenue = errors.New("boom")
	if _, err := svc.AdminOverview(context.Background()); err == nil {
		t.Fatal("expected repository error to propagate")
	}
}

func TestInstructorOverview(t *testing.T) {
	tests := []struct {
		name    string
		totals  instructorTotals
		average string
	}{
		{
			name:    "no reviews",
			totals:  instructorTotals{Enrollments: 2, Revenue: decimal.NewFromInt(40), RatingPoints: decimal.Zero},
			average: "0",
		},
		{
			// 4.5 over 2 reviews and 3.0 over 1 review
			name:    "weighted by review count",
			totals:  instructorTotals{Enrollments: 9, Revenue: decimal.RequireFromString("120.005"), Reviews: 3, RatingPoints: decimal.NewFromInt(12)},
			average: "4",
		},
		{
			name:    "rounded to cents",
			totals:  instructorTotals{Reviews: 3, RatingPoints: decimal.NewFromInt(13)},
			average: "4.33",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &stubRepo{mine: map[string]int{"PUBLISHED": 2, "DRAFT": 1}, totals: tt.totals}
			out, err := NewService(repo).InstructorOverview(context.Background(), uuid.New())
			if err != nil {
				t.Fatal(err)
			}
			if out.TotalCourses != 3 || out.CoursesByStatus["PUBLISHED"] != 2 {
				t.Fatalf("unexpected course counts %+v", out)
			}
			if !out.AverageRating.Equal(decimal.RequireFromString(tt.average)) {
				t.Fatalf("average rating %s, want %s", out.AverageRating, tt.average)
			}
			if !out.TotalRevenue.Equal(tt.totals.Revenue.Round(2)) {
				t.Fatalf("revenue %s", out.TotalRevenue)
			}
		})
	}
}
