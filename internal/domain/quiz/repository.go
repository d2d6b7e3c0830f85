package quiz

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnhub/learnhub-api/internal/domain/enrollment"
	"github.com/learnhub/learnhub-api/internal/pkg/database"
)

// Repository defines quiz data access. Progress methods come from the
// enrollment store so a passing submission updates progress in the same transaction.
type Repository interface {
	enrollment.ProgressStore

	InTx(ctx context.Context, fn func(repo Repository) error) error
	GetQuiz(ctx context.Context, id uuid.UUID) (*Quiz, error)
	FindEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*enrollment.Enrollment, error)
	CountAttempts(ctx context.Context, userID, quizID uuid.UUID) (int, error)
	CreateAttempt(ctx context.Context, a *Attempt) error
	ListAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*Attempt, error)
}

type repository struct {
	enrollment.ProgressStore
	db   sqlx.ExtContext
	conn *sqlx.DB
}

// NewRepository creates quiz repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{ProgressStore: enrollment.NewProgressStore(db), db: db, conn: db}
}

func (r *repository) InTx(ctx context.Context, fn func(repo Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}
	return database.RunInTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{ProgressStore: enrollment.NewProgressStore(tx), db: tx})
	})
}

const attemptColumns = `id, user_id, quiz_id, enrollment_id, score, total_points, earned_points, is_passed, answers, submitted_at, created_at`

func (r *repository) GetQuiz(ctx context.Context, id uuid.UUID) (*Quiz, error) {
	var q Quiz
	err := sqlx.GetContext(ctx, r.db, &q, `
		SELECT q.id, q.lesson_id, l.course_id, q.passing_score, q.time_limit, q.max_attempts, q.created_at
		FROM quizzes q
		JOIN lessons l ON l.id = q.lesson_id
		WHERE q.id = $1
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}

	err = sqlx.SelectContext(ctx, r.db, &q.Questions, `
		SELECT id, quiz_id, question, question_type, options, correct_answers, explanation, points, sort_order
		FROM quiz_questions
		WHERE quiz_id = $1
		ORDER BY sort_order, id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("list quiz questions: %w", err)
	}
	return &q, nil
}

func (r *repository) FindEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*enrollment.Enrollment, error) {
	var e enrollment.Enrollment
	err := sqlx.GetContext(ctx, r.db, &e, `
		SELECT id, user_id, course_id, payment_id, status, progress_percent, enrolled_at, completed_at
		FROM enrollments WHERE user_id = $1 AND course_id = $2
	`, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &e, nil
}

func (r *repository) CountAttempts(ctx context.Context, userID, quizID uuid.UUID) (int, error) {
	var n int
	err := sqlx.GetContext(ctx, r.db, &n,
		`SELECT COUNT(*) FROM quiz_attempts WHERE user_id = $1 AND quiz_id = $2`, userID, quizID)
	if err != nil {
		return 0, fmt.Errorf("count quiz attempts: %w", err)
	}
	return n, nil
}

func (r *repository) CreateAttempt(ctx context.Context, a *Attempt) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO quiz_attempts (`+attemptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.UserID, a.QuizID, a.EnrollmentID, a.Score, a.TotalPoints, a.EarnedPoints,
		a.IsPassed, a.Answers, a.SubmittedAt, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz attempt: %w", err)
	}
	return nil
}

func (r *repository) ListAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*Attempt, error) {
	var attempts []*Attempt
	err := sqlx.SelectContext(ctx, r.db, &attempts, `
		SELECT `+attemptColumns+`
		FROM quiz_attempts
		WHERE user_id = $1 AND quiz_id = $2
		ORDER BY created_at DESC
	`, userID, quizID)
	if err != nil {
		return nil, fmt.Errorf("list quiz attempts: %w", err)
	}
	return attempts, nil
}
