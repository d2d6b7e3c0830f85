package statistics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines statistics data access
type Repository interface {
	Aggregate(ctx context.Context, courseID uuid.UUID) (*CourseStatistics, error)
	Upsert(ctx context.Context, s *CourseStatistics) error
	Get(ctx context.Context, courseID uuid.UUID) (*CourseStatistics, error)
}

type repository struct {
	db sqlx.ExtContext
}

// NewRepository creates statistics repository
func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

// Aggregate derives the counters from source rows.
// Enrollments count while ACTIVE or COMPLETED, reviews while approved,
// revenue from COMPLETED payments.
func (r *repository) Aggregate(ctx context.Context, courseID uuid.UUID) (*CourseStatistics, error) {
	query := `
		SELECT
			$1::uuid AS course_id,
			(SELECT COUNT(*) FROM enrollments
				WHERE course_id = $1 AND status IN ('ACTIVE', 'COMPLETED')) AS total_enrollments,
			(SELECT COUNT(*) FROM reviews
				WHERE course_id = $1 AND is_approved) AS total_reviews,
			(SELECT COALESCE(ROUND(AVG(rating)::numeric, 2), 0) FROM reviews
				WHERE course_id = $1 AND is_approved) AS average_rating,
			(SELECT COALESCE(SUM(amount), 0) FROM payments
				WHERE course_id = $1 AND status = 'COMPLETED') AS total_revenue,
			now() AS updated_at
	`
	var s CourseStatistics
	if err := sqlx.GetContext(ctx, r.db, &s, query, courseID); err != nil {
		return nil, fmt.Errorf("aggregate statistics: %w", err)
	}
	return &s, nil
}

func (r *repository) Upsert(ctx context.Context, s *CourseStatistics) error {
	query := `
		INSERT INTO course_statistics (course_id, total_enrollments, total_reviews, average_rating, total_revenue, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (course_id) DO UPDATE SET
			total_enrollments = EXCLUDED.total_enrollments,
			total_reviews = EXCLUDED.total_reviews,
			average_rating = EXCLUDED.average_rating,
			total_revenue = EXCLUDED.total_revenue,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		s.CourseID, s.TotalEnrollments, s.TotalReviews, s.AverageRating, s.TotalRevenue, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert statistics: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, courseID uuid.UUID) (*CourseStatistics, error) {
	var s CourseStatistics
	err := sqlx.GetContext(ctx, r.db, &s, `
		SELECT course_id, total_enrollments, total_reviews, average_rating, total_revenue, updated_at
		FROM course_statistics WHERE course_id = $1
	`, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get statistics: %w", err)
	}
	return &s, nil
}
