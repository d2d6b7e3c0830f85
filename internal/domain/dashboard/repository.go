package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// Repository handles dashboard data aggregation
type Repository interface {
	UsersByRole(ctx context.Context) (map[string]int, error)
	CountUsersSince(ctx context.Context, since time.Time) (int, error)
	CoursesByStatus(ctx context.Context, instructorID *uuid.UUID) (map[string]int, error)
	CountActiveEnrollments(ctx context.Context) (int, error)
	Revenue(ctx context.Context, since *time.Time) (decimal.Decimal, error)
	InstructorTotals(ctx context.Context, instructorID uuid.UUID) (*instructorTotals, error)

	// CourseInstructor returns the owner of the course, or uuid.Nil when it does not exist.
	CourseInstructor(ctx context.Context, courseID uuid.UUID) (uuid.UUID, error)
	CourseStudents(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]*Student, int, error)
	RevenueByMonth(ctx context.Context, instructorID *uuid.UUID, from, to time.Time) ([]MonthPoint, error)
	RevenueByCourse(ctx context.Context, instructorID *uuid.UUID, from, to time.Time, limit int) ([]*CourseRevenue, error)
	SignupsByMonth(ctx context.Context, from, to time.Time) ([]MonthCount, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new dashboard repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) groupCount(ctx context.Context, query string, args ...interface{}) (map[string]int, error) {
	var rows []keyCount
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Key] = row.Count
	}
	return out, nil
}

func (r *repository) UsersByRole(ctx context.Context) (map[string]int, error) {
	out, err := r.groupCount(ctx, `SELECT role AS key, COUNT(*) AS count FROM users GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	return out, nil
}

func (r *repository) CountUsersSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE created_at >= $1`, since); err != nil {
		return 0, fmt.Errorf("failed to count new users: %w", err)
	}
	return n, nil
}

// CoursesByStatus counts courses per status, for one instructor when instructorID is set
func (r *repository) CoursesByStatus(ctx context.Context, instructorID *uuid.UUID) (map[string]int, error) {
	out, err := r.groupCount(ctx, `
		SELECT status AS key, COUNT(*) AS count FROM courses
		WHERE $1::uuid IS NULL OR instructor_id = $1
		GROUP BY status
	`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	return out, nil
}

func (r *repository) CountActiveEnrollments(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM enrollments WHERE status IN ('ACTIVE', 'COMPLETED')`)
	if err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return n, nil
}

// Revenue sums COMPLETED payments, paid at or after since when given
func (r *repository) Revenue(ctx context.Context, since *time.Time) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.db.GetContext(ctx, &total, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE status = 'COMPLETED' AND ($1::timestamptz IS NULL OR paid_at >= $1)
	`, since)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum revenue: %w", err)
	}
	return total, nil
}

// InstructorTotals rolls up course_statistics over the instructor's courses
func (r *repository) InstructorTotals(ctx context.Context, instructorID uuid.UUID) (*instructorTotals, error) {
	var t instructorTotals
	err := r.db.GetContext(ctx, &t, `
		SELECT
			COALESCE(SUM(s.total_enrollments), 0) AS enrollments,
			COALESCE(SUM(s.total_revenue), 0) AS revenue,
			COALESCE(SUM(s.total_reviews), 0) AS reviews,
			COALESCE(SUM(s.average_rating * s.total_reviews), 0) AS rating_points
		FROM courses c
		JOIN course_statistics s ON s.course_id = c.id
		WHERE c.instructor_id = $1
	`, instructorID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate instructor statistics: %w", err)
	}
	return &t, nil
}

func (r *repository) CourseInstructor(ctx context.Context, courseID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, `SELECT instructor_id FROM courses WHERE id = $1`, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("failed to get course owner: %w", err)
	}
	return id, nil
}

// CourseStudents pages through the course's enrollments, newest first
func (r *repository) CourseStudents(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]*Student, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID); err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	query := `
		SELECT
			u.id AS user_id, u.first_name, u.last_name, u.email,
			e.id AS enrollment_id, e.status, e.progress_percent, e.enrolled_at, e.completed_at,
			(SELECT COUNT(*) FROM lesson_progress lp
			 WHERE lp.enrollment_id = e.id AND lp.is_completed) AS completed_lessons
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		WHERE e.course_id = $1
		ORDER BY e.enrolled_at DESC
		LIMIT $2 OFFSET $3
	`
	var out []*Student
	if err := r.db.SelectContext(ctx, &out, query, courseID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	return out, total, nil
}

// paidAt is the moment a completed payment counts towards revenue
const paidAt = `COALESCE(p.paid_at, p.created_at)`

// RevenueByMonth buckets COMPLETED payments in [from, to) by UTC month.
// Months without sales are absent.
func (r *repository) RevenueByMonth(ctx context.Context, instructorID *uuid.UUID, from, to time.Time) ([]MonthPoint, error) {
	query := `
		SELECT
			to_char(date_trunc('month', ` + paidAt + ` AT TIME ZONE 'UTC'), 'YYYY-MM') AS month,
			COALESCE(SUM(p.amount), 0) AS revenue,
			COUNT(*) AS count
		FROM payments p
		JOIN courses c ON c.id = p.course_id
		WHERE p.status = 'COMPLETED'
			AND ` + paidAt + ` >= $2 AND ` + paidAt + ` < $3
			AND ($1::uuid IS NULL OR c.instructor_id = $1)
		GROUP BY 1
		ORDER BY 1
	`
	var out []MonthPoint
	if err := r.db.SelectContext(ctx, &out, query, instructorID, from, to); err != nil {
		return nil, fmt.Errorf("failed to group revenue by month: %w", err)
	}
	return out, nil
}

// RevenueByCourse ranks courses by COMPLETED payments in [from, to).
// For an instructor every own course is listed; platform-wide only courses with sales are.
// A limit of 0 returns all rows.
func (r *repository) RevenueByCourse(ctx context.Context, instructorID *uuid.UUID, from, to time.Time, limit int) ([]*CourseRevenue, error) {
	var max interface{}
	if limit > 0 {
		max = limit
	}
	query := `
		SELECT
			c.id AS course_id, c.title,
			COALESCE(SUM(p.amount), 0) AS revenue,
			COUNT(p.id) AS sales
		FROM courses c
		LEFT JOIN payments p ON p.course_id = c.id
			AND p.status = 'COMPLETED'
			AND ` + paidAt + ` >= $2 AND ` + paidAt + ` < $3
		WHERE $1::uuid IS NULL OR c.instructor_id = $1
		GROUP BY c.id, c.title
		HAVING $1::uuid IS NOT NULL OR COUNT(p.id) > 0
		ORDER BY revenue DESC, c.title
		LIMIT $4
	`
	var out []*CourseRevenue
	if err := r.db.SelectContext(ctx, &out, query, instructorID, from, to, max); err != nil {
		return nil, fmt.Errorf("failed to rank courses by revenue: %w", err)
	}
	return out, nil
}

func (r *repository) SignupsByMonth(ctx context.Context, from, to time.Time) ([]MonthCount, error) {
	query := `
		SELECT
			to_char(date_trunc('month', created_at AT TIME ZONE 'UTC'), 'YYYY-MM') AS month,
			COUNT(*) AS count
		FROM users
		WHERE created_at >= $1 AND created_at < $2
		GROUP BY 1
		ORDER BY 1
	`
	var out []MonthCount
	if err := r.db.SelectContext(ctx, &out, query, from, to); err != nil {
		return nil, fmt.Errorf("failed to group signups by month: %w", err)
	}
	return out, nil
}
