package dashboard

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	defaultReportMonths = 12
	maxReportSpan       = 5 * 366 * 24 * time.Hour
	topCoursesLimit     = 10
)

func monthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// window resolves a report range to [from, to). end is a calendar day and is
// included. Without start the window covers the twelve months up to to.
func (s *Service) window(start, end *time.Time) (time.Time, time.Time, error) {
	to := s.now().UTC()
	if end != nil {
		to = end.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	}
	from := monthStart(to.Add(-time.Nanosecond)).AddDate(0, -(defaultReportMonths - 1), 0)
	if start != nil {
		from = start.UTC()
	}
	if !from.Before(to) || to.Sub(from) > maxReportSpan {
		return time.Time{}, time.Time{}, ErrInvalidRange
	}
	return from, to, nil
}

// months lists the YYYY-MM keys of every month overlapping [from, to)
func months(from, to time.Time) []string {
	var out []string
	for m := monthStart(from); m.Before(to); m = m.AddDate(0, 1, 0) {
		out = append(out, m.Format("2006-01"))
	}
	return out
}

// fillRevenue returns one point per month, zero where the store had no sales
func fillRevenue(points []MonthPoint, from, to time.Time) ([]MonthPoint, decimal.Decimal, int) {
	byMonth := make(map[string]MonthPoint, len(points))
	for _, p := range points {
		byMonth[p.Month] = p
	}
	total, count := decimal.Zero, 0
	keys := months(from, to)
	out := make([]MonthPoint, 0, len(keys))
	for _, m := range keys {
		p, ok := byMonth[m]
		if !ok {
			p = MonthPoint{Month: m, Revenue: decimal.Zero}
		}
		total = total.Add(p.Revenue)
		count += p.Count
		out = append(out, p)
	}
	return out, total, count
}

// CourseStudents lists the enrollments of a course to its instructor or an admin
func (s *Service) CourseStudents(ctx context.Context, viewerID uuid.UUID, isAdmin bool, courseID uuid.UUID, page, limit int) ([]*Student, int, error) {
	owner, err := s.repo.CourseInstructor(ctx, courseID)
	if err != nil {
		return nil, 0, err
	}
	if owner == uuid.Nil {
		return nil, 0, ErrCourseNotFound
	}
	if !isAdmin && owner != viewerID {
		return nil, 0, ErrNotOwner
	}

	out, total, err := s.repo.CourseStudents(ctx, courseID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	if out == nil {
		out = []*Student{}
	}
	return out, total, nil
}

// InstructorEarnings reports the instructor's completed sales in the window
func (s *Service) InstructorEarnings(ctx context.Context, instructorID uuid.UUID, start, end *time.Time) (*Earnings, error) {
	from, to, err := s.window(start, end)
	if err != nil {
		return nil, err
	}
	points, err := s.repo.RevenueByMonth(ctx, &instructorID, from, to)
	if err != nil {
		return nil, err
	}
	byCourse, err := s.repo.RevenueByCourse(ctx, &instructorID, from, to, 0)
	if err != nil {
		return nil, err
	}
	if byCourse == nil {
		byCourse = []*CourseRevenue{}
	}

	series, total, sales := fillRevenue(points, from, to)
	return &Earnings{
		From:             from,
		To:               to,
		TotalEarnings:    total.Round(2),
		TotalSales:       sales,
		EarningsByMonth:  series,
		EarningsByCourse: byCourse,
	}, nil
}

// RevenueReport reports platform-wide completed sales in the window
func (s *Service) RevenueReport(ctx context.Context, start, end *time.Time) (*RevenueReport, error) {
	from, to, err := s.window(start, end)
	if err != nil {
		return nil, err
	}
	points, err := s.repo.RevenueByMonth(ctx, nil, from, to)
	if err != nil {
		return nil, err
	}
	top, err := s.repo.RevenueByCourse(ctx, nil, from, to, topCoursesLimit)
	if err != nil {
		return nil, err
	}
	if top == nil {
		top = []*CourseRevenue{}
	}

	series, total, count := fillRevenue(points, from, to)
	return &RevenueReport{
		From:              from,
		To:                to,
		TotalRevenue:      total.Round(2),
		TotalTransactions: count,
		RevenueByMonth:    series,
		TopCourses:        top,
	}, nil
}

// UsersReport returns accounts per role and signups over the last twelve months
func (s *Service) UsersReport(ctx context.Context) (*UsersReport, error) {
	byRole, err := s.repo.UsersByRole(ctx)
	if err != nil {
		return nil, err
	}
	from, to, err := s.window(nil, nil)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.SignupsByMonth(ctx, from, to)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Month] = row.Count
	}
	keys := months(from, to)
	growth := make([]MonthCount, 0, len(keys))
	for _, m := range keys {
		growth = append(growth, MonthCount{Month: m, Count: counts[m]})
	}
	return &UsersReport{UsersByRole: byRole, UserGrowth: growth}, nil
}
