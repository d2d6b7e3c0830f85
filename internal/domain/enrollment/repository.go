package enrollment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/pkg/database"
)

// Repository defines enrollment data access
type Repository interface {
	ProgressStore

	// InTx runs fn with a repository bound to one transaction.
	InTx(ctx context.Context, fn func(repo Repository) error) error

	GetCourse(ctx context.Context, id uuid.UUID) (*CourseRef, error)
	GetLesson(ctx context.Context, id uuid.UUID) (*LessonRef, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*PaymentRef, error)
	GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*Enrollment, error)
	GetEnrollmentByID(ctx context.Context, id uuid.UUID) (*Enrollment, error)
	CreateEnrollment(ctx context.Context, e *Enrollment) error
	ListByUser(ctx context.Context, userID uuid.UUID, status Status) ([]*EnrollmentWithCourse, error)
	ListProgress(ctx context.Context, enrollmentID uuid.UUID) ([]*LessonProgress, error)
}

type progressStore struct {
	db sqlx.ExtContext
}

// NewProgressStore returns a ProgressStore over db, which may be a transaction.
func NewProgressStore(db sqlx.ExtContext) ProgressStore {
	return &progressStore{db: db}
}

type repository struct {
	*progressStore
	conn *sqlx.DB
}

// NewRepository creates enrollment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{progressStore: &progressStore{db: db}, conn: db}
}

func (r *repository) InTx(ctx context.Context, fn func(repo Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}
	return database.RunInTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{progressStore: &progressStore{db: tx}})
	})
}

const (
	enrollmentColumns = `id, user_id, course_id, payment_id, status, progress_percent, enrolled_at, completed_at`
	progressColumns   = `id, enrollment_id, lesson_id, user_id, is_completed, watch_time, last_position, completed_at, updated_at`
)

func (r *progressStore) GetProgress(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*LessonProgress, error) {
	var p LessonProgress
	err := sqlx.GetContext(ctx, r.db, &p, `
		SELECT `+progressColumns+` FROM lesson_progress
		WHERE enrollment_id = $1 AND lesson_id = $2
	`, enrollmentID, lessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson progress: %w", err)
	}
	return &p, nil
}

func (r *progressStore) UpsertProgress(ctx context.Context, p *LessonProgress) error {
	query := `
		INSERT INTO lesson_progress (` + progressColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (enrollment_id, lesson_id) DO UPDATE SET
			is_completed = EXCLUDED.is_completed,
			watch_time = EXCLUDED.watch_time,
			last_position = EXCLUDED.last_position,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`
	err := sqlx.GetContext(ctx, r.db, &p.ID, query,
		p.ID, p.EnrollmentID, p.LessonID, p.UserID,
		p.IsCompleted, p.WatchTime, p.LastPosition, p.CompletedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert lesson progress: %w", err)
	}
	return nil
}

func (r *progressStore) CountPublishedLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n,
		`SELECT COUNT(*) FROM lessons WHERE course_id = $1 AND is_published`, courseID)
	if err != nil {
		return 0, fmt.Errorf("count published lessons: %w", err)
	}
	return n, nil
}

func (r *progressStore) CountCompletedPublishedLessons(ctx context.Context, enrollmentID, courseID uuid.UUID) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n, `
		SELECT COUNT(*)
		FROM lesson_progress lp
		JOIN lessons l ON l.id = lp.lesson_id
		WHERE lp.enrollment_id = $1 AND lp.is_completed
			AND l.course_id = $2 AND l.is_published
	`, enrollmentID, courseID)
	if err != nil {
		return 0, fmt.Errorf("count completed lessons: %w", err)
	}
	return n, nil
}

func (r *progressStore) UpdateProgress(ctx context.Context, enrollmentID uuid.UUID, percent decimal.Decimal, status Status, completedAt *time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE enrollments
		SET progress_percent = $2, status = $3, completed_at = $4
		WHERE id = $1
	`, enrollmentID, percent, status, completedAt)
	if err != nil {
		return fmt.Errorf("update enrollment progress: %w", err)
	}
	return nil
}

func (r *progressStore) LockEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*Enrollment, error) {
	return r.getEnrollment(ctx, `WHERE user_id = $1 AND course_id = $2 FOR UPDATE`, userID, courseID)
}

func (r *progressStore) getEnrollment(ctx context.Context, where string, args ...interface{}) (*Enrollment, error) {
	var e Enrollment
	err := sqlx.GetContext(ctx, r.db, &e, `SELECT `+enrollmentColumns+` FROM enrollments `+where, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &e, nil
}

func (r *repository) GetCourse(ctx context.Context, id uuid.UUID) (*CourseRef, error) {
	var c CourseRef
	err := sqlx.GetContext(ctx, r.db, &c,
		`SELECT id, title, status, price, discount_price FROM courses WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &c, nil
}

func (r *repository) GetLesson(ctx context.Context, id uuid.UUID) (*LessonRef, error) {
	var l LessonRef
	err := sqlx.GetContext(ctx, r.db, &l,
		`SELECT id, course_id, is_published FROM lessons WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lesson: %w", err)
	}
	return &l, nil
}

func (r *repository) GetPayment(ctx context.Context, id uuid.UUID) (*PaymentRef, error) {
	var p PaymentRef
	err := sqlx.GetContext(ctx, r.db, &p,
		`SELECT id, user_id, course_id, status FROM payments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (r *repository) GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*Enrollment, error) {
	return r.getEnrollment(ctx, `WHERE user_id = $1 AND course_id = $2`, userID, courseID)
}

func (r *repository) GetEnrollmentByID(ctx context.Context, id uuid.UUID) (*Enrollment, error) {
	return r.getEnrollment(ctx, `WHERE id = $1`, id)
}

func (r *repository) CreateEnrollment(ctx context.Context, e *Enrollment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO enrollments (`+enrollmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, e.ID, e.UserID, e.CourseID, e.PaymentID, e.Status, e.ProgressPercent, e.EnrolledAt, e.CompletedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrAlreadyEnrolled
		}
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, status Status) ([]*EnrollmentWithCourse, error) {
	query := `
		SELECT e.id, e.user_id, e.course_id, e.payment_id, e.status, e.progress_percent,
			e.enrolled_at, e.completed_at,
			c.title AS course_title, c.slug AS course_slug, c.thumbnail_url AS course_thumbnail
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1 AND ($2::text = '' OR e.status = $2::text)
		ORDER BY e.enrolled_at DESC
	`
	var items []*EnrollmentWithCourse
	if err := sqlx.SelectContext(ctx, r.db, &items, query, userID, string(status)); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return items, nil
}

func (r *repository) ListProgress(ctx context.Context, enrollmentID uuid.UUID) ([]*LessonProgress, error) {
	var items []*LessonProgress
	err := sqlx.SelectContext(ctx, r.db, &items, `
		SELECT `+progressColumns+` FROM lesson_progress
		WHERE enrollment_id = $1
		ORDER BY updated_at
	`, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("list lesson progress: %w", err)
	}
	return items, nil
}
