package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnhub/learnhub-api/internal/pkg/database"
)

// Repository defines review data access
type Repository interface {
	GetCourse(ctx context.Context, id uuid.UUID) (*CourseRef, error)
	// FindEnrollment returns the user's enrollment id for the course, or uuid.Nil.
	FindEnrollment(ctx context.Context, userID, courseID uuid.UUID) (uuid.UUID, error)
	Create(ctx context.Context, r *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	Update(ctx context.Context, r *Review) error
	SetReply(ctx context.Context, id uuid.UUID, reply string, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListApproved(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]*WithAuthor, int, error)
	Distribution(ctx context.Context, courseID uuid.UUID) (map[int]int, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates review repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const reviewColumns = `id, user_id, course_id, enrollment_id, rating, comment, is_approved, instructor_reply, replied_at, created_at, updated_at`

func (r *repository) GetCourse(ctx context.Context, id uuid.UUID) (*CourseRef, error) {
	var c CourseRef
	err := r.db.GetContext(ctx, &c, `SELECT id, instructor_id FROM courses WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

func (r *repository) FindEnrollment(ctx context.Context, userID, courseID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, `SELECT id FROM enrollments WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, nil
		}
		return uuid.Nil, fmt.Errorf("failed to find enrollment: %w", err)
	}
	return id, nil
}

// Create inserts a review; the (user_id, course_id) unique key maps to ErrAlreadyReviewed.
func (r *repository) Create(ctx context.Context, rv *Review) error {
	query := `
		INSERT INTO reviews (id, user_id, course_id, enrollment_id, rating, comment, is_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		rv.ID,
		rv.UserID,
		rv.CourseID,
		rv.EnrollmentID,
		rv.Rating,
		rv.Comment,
		rv.IsApproved,
		rv.CreatedAt,
		rv.UpdatedAt,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Review, error) {
	var rv Review
	err := r.db.GetContext(ctx, &rv, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &rv, nil
}

func (r *repository) Update(ctx context.Context, rv *Review) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = $4 WHERE id = $1
	`, rv.ID, rv.Rating, rv.Comment, rv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}
	return nil
}

func (r *repository) SetReply(ctx context.Context, id uuid.UUID, reply string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reviews SET instructor_reply = $2, replied_at = $3 WHERE id = $1
	`, id, reply, at)
	if err != nil {
		return fmt.Errorf("failed to save reply: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

// ListApproved returns approved reviews of a course, newest first
func (r *repository) ListApproved(ctx context.Context, courseID uuid.UUID, limit, offset int) ([]*WithAuthor, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM reviews WHERE course_id = $1 AND is_approved`, courseID); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := `
		SELECT r.id, r.user_id, r.course_id, r.enrollment_id, r.rating, r.comment, r.is_approved,
			r.instructor_reply, r.replied_at, r.created_at, r.updated_at,
			TRIM(u.first_name || ' ' || u.last_name) AS author_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.course_id = $1 AND r.is_approved
		ORDER BY r.created_at DESC
		LIMIT $2 OFFSET $3
	`
	var out []*WithAuthor
	if err := r.db.SelectContext(ctx, &out, query, courseID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return out, total, nil
}

// Distribution returns approved review counts keyed by rating, every rating 1..5 present
func (r *repository) Distribution(ctx context.Context, courseID uuid.UUID) (map[int]int, error) {
	query := `
		SELECT rating, COUNT(*) AS count
		FROM reviews
		WHERE course_id = $1 AND is_approved
		GROUP BY rating
	`
	type ratingCount struct {
		Rating int `db:"rating"`
		Count  int `db:"count"`
	}
	var counts []ratingCount
	if err := r.db.SelectContext(ctx, &counts, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to get rating distribution: %w", err)
	}

	dist := make(map[int]int, 5)
	for i := 1; i <= 5; i++ {
		dist[i] = 0
	}
	for _, c := range counts {
		dist[c.Rating] = c.Count
	}
	return dist, nil
}
