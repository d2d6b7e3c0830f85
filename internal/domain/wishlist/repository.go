package wishlist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines wishlist data access
type Repository interface {
	// CourseStatus returns the course status, or "" when the course does not exist.
	CourseStatus(ctx context.Context, courseID uuid.UUID) (string, error)
	Add(ctx context.Context, item *Item) error
	Remove(ctx context.Context, userID, courseID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]*Entry, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates wishlist repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CourseStatus(ctx context.Context, courseID uuid.UUID) (string, error) {
	var status string
	err := r.db.GetContext(ctx, &status, `SELECT status FROM courses WHERE id = $1`, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get course status: %w", err)
	}
	return status, nil
}

// Add is idempotent: an existing row is kept and its id and created_at are reported back.
func (r *repository) Add(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO wishlists (id, user_id, course_id, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, created_at
	`
	err := r.db.QueryRowxContext(ctx, query, item.ID, item.UserID, item.CourseID, item.CreatedAt).
		Scan(&item.ID, &item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *repository) Remove(ctx context.Context, userID, courseID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM wishlists WHERE user_id = $1 AND course_id = $2`, userID, courseID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, userID uuid.UUID) ([]*Entry, error) {
	query := `
		SELECT w.id, w.course_id, w.created_at,
			c.title, c.slug, c.thumbnail_url, c.price, c.discount_price, c.level,
			TRIM(u.first_name || ' ' || u.last_name) AS instructor_name,
			cat.name AS category_name
		FROM wishlists w
		JOIN courses c ON c.id = w.course_id
		JOIN users u ON u.id = c.instructor_id
		LEFT JOIN categories cat ON cat.id = c.category_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC
	`
	var out []*Entry
	if err := r.db.SelectContext(ctx, &out, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	return out, nil
}
