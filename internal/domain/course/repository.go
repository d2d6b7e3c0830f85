package course

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnhub/learnhub-api/internal/domain/quiz"
	"github.com/learnhub/learnhub-api/internal/pkg/database"
)

// Repository defines catalog data access
type Repository interface {
	Create(ctx context.Context, c *Course) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Course, error)
	GetBySlug(ctx context.Context, slug string) (*Course, error)
	Update(ctx context.Context, c *Course) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, publishedAt *time.Time) error
	SetCover(ctx context.Context, id uuid.UUID, coverURL, thumbnailURL string) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter *Filter, page, limit int) ([]*Course, int, error)
	ListByInstructor(ctx context.Context, instructorID uuid.UUID, page, limit int) ([]*Course, int, error)
	CountEnrollments(ctx context.Context, courseID uuid.UUID) (int, error)
	CountLessons(ctx context.Context, courseID uuid.UUID) (int, error)
	IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	ListCategories(ctx context.Context, includeInactive bool) ([]*Category, error)
	CreateCategory(ctx context.Context, cat *Category) error
	GetCategory(ctx context.Context, id int) (*Category, error)
	UpdateCategory(ctx context.Context, cat *Category) error
	DeleteCategory(ctx context.Context, id int) error
	CountCoursesInCategory(ctx context.Context, id int) (int, error)

	CreateSection(ctx context.Context, s *Section) error
	GetSection(ctx context.Context, id uuid.UUID) (*Section, error)
	ListSections(ctx context.Context, courseID uuid.UUID) ([]*Section, error)
	CreateLesson(ctx context.Context, l *Lesson) error
	GetLesson(ctx context.Context, id uuid.UUID) (*Lesson, error)
	ListLessons(ctx context.Context, courseID uuid.UUID) ([]*Lesson, error)
	UpdateLesson(ctx context.Context, l *Lesson) error
	DeleteLesson(ctx context.Context, l *Lesson) error
	ReorderLessons(ctx context.Context, sectionID uuid.UUID, lessonIDs []uuid.UUID) error

	GetQuiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error)
	CreateQuiz(ctx context.Context, q *quiz.Quiz) error
	CreateQuestion(ctx context.Context, q *quiz.Question) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates course repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const courseColumns = `
	id, instructor_id, category_id, title, slug, description, short_description,
	price, discount_price, level, status, thumbnail_url, cover_url,
	total_lessons, total_duration, published_at, created_at, updated_at
`

// Create inserts the course together with its empty statistics row.
func (r *repository) Create(ctx context.Context, c *Course) error {
	query := `
		WITH inserted AS (
			INSERT INTO courses (
				id, instructor_id, category_id, title, slug, description, short_description,
				price, discount_price, level, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)
			RETURNING id
		)
		INSERT INTO course_statistics (course_id, updated_at)
		SELECT id, $12 FROM inserted
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.InstructorID, c.CategoryID, c.Title, c.Slug, c.Description, c.ShortDescription,
		c.Price, c.DiscountPrice, c.Level, c.Status, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create course: %w", err)
	}
	return nil
}

func (r *repository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM courses WHERE slug = $1)`, slug); err != nil {
		return false, fmt.Errorf("failed to check slug: %w", err)
	}
	return exists, nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Course, error) {
	return r.getOne(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Course, error) {
	return r.getOne(ctx, `SELECT `+courseColumns+` FROM courses WHERE slug = $1`, slug)
}

func (r *repository) getOne(ctx context.Context, query string, arg interface{}) (*Course, error) {
	var c Course
	if err := r.db.GetContext(ctx, &c, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

func (r *repository) Update(ctx context.Context, c *Course) error {
	query := `
		UPDATE courses SET
			title = $2, description = $3, short_description = $4, category_id = $5,
			price = $6, discount_price = $7, level = $8, updated_at = $9
		WHERE id = $1
	`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.Title, c.Description, c.ShortDescription, c.CategoryID,
		c.Price, c.DiscountPrice, c.Level, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update course: %w", err)
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, publishedAt *time.Time) error {
	query := `
		UPDATE courses
		SET status = $2, published_at = COALESCE($3, published_at), updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id, status, publishedAt); err != nil {
		return fmt.Errorf("failed to update course status: %w", err)
	}
	return nil
}

func (r *repository) SetCover(ctx context.Context, id uuid.UUID, coverURL, thumbnailURL string) error {
	query := `UPDATE courses SET cover_url = $2, thumbnail_url = $3, updated_at = NOW() WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, coverURL, thumbnailURL); err != nil {
		return fmt.Errorf("failed to set course cover: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func (r *repository) List(ctx context.Context, filter *Filter, page, limit int) ([]*Course, int, error) {
	conditions := []string{}
	args := []interface{}{}
	argIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.CategoryID != nil {
		conditions = append(conditions, fmt.Sprintf("category_id = $%d", argIndex))
		args = append(args, *filter.CategoryID)
		argIndex++
	}

	if filter.Level != nil {
		conditions = append(conditions, fmt.Sprintf("level = $%d", argIndex))
		args = append(args, *filter.Level)
		argIndex++
	}

	// price filters apply to the effective price
	if filter.MinPrice != nil {
		conditions = append(conditions, fmt.Sprintf("COALESCE(discount_price, price) >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}

	if filter.MaxPrice != nil {
		conditions = append(conditions, fmt.Sprintf("COALESCE(discount_price, price) <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(title ILIKE $%d OR short_description ILIKE $%d)", argIndex, argIndex,
		))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM courses "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM courses
		%s
		ORDER BY published_at DESC NULLS LAST, created_at DESC
		LIMIT $%d OFFSET $%d
	`, courseColumns, where, argIndex, argIndex+1)
	args = append(args, limit, (page-1)*limit)

	var courses []*Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, total, nil
}

func (r *repository) ListByInstructor(ctx context.Context, instructorID uuid.UUID, page, limit int) ([]*Course, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM courses WHERE instructor_id = $1`, instructorID); err != nil {
		return nil, 0, fmt.Errorf("failed to count courses: %w", err)
	}

	query := `
		SELECT ` + courseColumns + ` FROM courses
		WHERE instructor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var courses []*Course
	if err := r.db.SelectContext(ctx, &courses, query, instructorID, limit, (page-1)*limit); err != nil {
		return nil, 0, fmt.Errorf("failed to list instructor courses: %w", err)
	}
	return courses, total, nil
}

func (r *repository) CountEnrollments(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID); err != nil {
		return 0, fmt.Errorf("failed to count enrollments: %w", err)
	}
	return n, nil
}

func (r *repository) CountLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM lessons WHERE course_id = $1`, courseID); err != nil {
		return 0, fmt.Errorf("failed to count lessons: %w", err)
	}
	return n, nil
}

func (r *repository) IsEnrolled(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	var ok bool
	query := `SELECT EXISTS(SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2)`
	if err := r.db.GetContext(ctx, &ok, query, userID, courseID); err != nil {
		return false, fmt.Errorf("failed to check enrollment: %w", err)
	}
	return ok, nil
}

const categoryColumns = `id, name, slug, description, is_active`

func (r *repository) ListCategories(ctx context.Context, includeInactive bool) ([]*Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	if !includeInactive {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	var out []*Category
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return out, nil
}

func (r *repository) CreateCategory(ctx context.Context, cat *Category) error {
	query := `
		INSERT INTO categories (name, slug, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.db.QueryRowxContext(ctx, query, cat.Name, cat.Slug, cat.Description, cat.IsActive).Scan(&cat.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrCategoryExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *repository) GetCategory(ctx context.Context, id int) (*Category, error) {
	var cat Category
	if err := r.db.GetContext(ctx, &cat, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &cat, nil
}

func (r *repository) UpdateCategory(ctx context.Context, cat *Category) error {
	query := `UPDATE categories SET name = $2, slug = $3, description = $4, is_active = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, cat.ID, cat.Name, cat.Slug, cat.Description, cat.IsActive); err != nil {
		if database.IsUniqueViolation(err) {
			return ErrCategoryExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (r *repository) DeleteCategory(ctx context.Context, id int) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (r *repository) CountCoursesInCategory(ctx context.Context, id int) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM courses WHERE category_id = $1`, id); err != nil {
		return 0, fmt.Errorf("failed to count category courses: %w", err)
	}
	return n, nil
}

func (r *repository) CreateSection(ctx context.Context, s *Section) error {
	query := `
		INSERT INTO sections (id, course_id, title, description, sort_order)
		VALUES ($1, $2, $3, $4,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM sections WHERE course_id = $2))
		RETURNING sort_order
	`
	if err := r.db.QueryRowxContext(ctx, query, s.ID, s.CourseID, s.Title, s.Description).Scan(&s.SortOrder); err != nil {
		return fmt.Errorf("failed to create section: %w", err)
	}
	return nil
}

func (r *repository) GetSection(ctx context.Context, id uuid.UUID) (*Section, error) {
	var s Section
	query := `SELECT id, course_id, title, description, sort_order FROM sections WHERE id = $1`
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get section: %w", err)
	}
	return &s, nil
}

func (r *repository) ListSections(ctx context.Context, courseID uuid.UUID) ([]*Section, error) {
	var out []*Section
	query := `SELECT id, course_id, title, description, sort_order FROM sections WHERE course_id = $1 ORDER BY sort_order`
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list sections: %w", err)
	}
	return out, nil
}

const lessonColumns = `
	id, section_id, course_id, title, type, content, video_url, video_duration,
	is_free, is_published, sort_order, created_at, updated_at
`

// CreateLesson inserts the lesson and refreshes the course totals in one transaction.
func (r *repository) CreateLesson(ctx context.Context, l *Lesson) error {
	return database.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO lessons (
				id, section_id, course_id, title, type, content, video_url, video_duration,
				is_free, is_published, sort_order, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
				(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM lessons WHERE section_id = $2),
				$11, $11)
			RETURNING sort_order
		`
		err := tx.QueryRowxContext(ctx, query,
			l.ID, l.SectionID, l.CourseID, l.Title, l.Type, l.Content, l.VideoURL, l.VideoDuration,
			l.IsFree, l.IsPublished, l.CreatedAt,
		).Scan(&l.SortOrder)
		if err != nil {
			return fmt.Errorf("failed to create lesson: %w", err)
		}

		return refreshTotals(ctx, tx, l.CourseID)
	})
}

// refreshTotals derives total_lessons and total_duration from the published lessons.
func refreshTotals(ctx context.Context, tx *sqlx.Tx, courseID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE courses c
		SET total_lessons = t.n, total_duration = t.duration, updated_at = NOW()
		FROM (
			SELECT COUNT(*) AS n, COALESCE(SUM(video_duration), 0) AS duration
			FROM lessons
			WHERE course_id = $1 AND is_published
		) t
		WHERE c.id = $1
	`, courseID)
	if err != nil {
		return fmt.Errorf("failed to update course totals: %w", err)
	}
	return nil
}

func (r *repository) UpdateLesson(ctx context.Context, l *Lesson) error {
	return database.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			UPDATE lessons
			SET title = $2, type = $3, content = $4, video_url = $5, video_duration = $6,
				is_free = $7, is_published = $8, updated_at = $9
			WHERE id = $1
		`
		_, err := tx.ExecContext(ctx, query,
			l.ID, l.Title, l.Type, l.Content, l.VideoURL, l.VideoDuration, l.IsFree, l.IsPublished, l.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to update lesson: %w", err)
		}
		return refreshTotals(ctx, tx, l.CourseID)
	})
}

func (r *repository) DeleteLesson(ctx context.Context, l *Lesson) error {
	return database.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, l.ID); err != nil {
			return fmt.Errorf("failed to delete lesson: %w", err)
		}
		return refreshTotals(ctx, tx, l.CourseID)
	})
}

// ReorderLessons sets sort_order to the 1-based position of each id.
func (r *repository) ReorderLessons(ctx context.Context, sectionID uuid.UUID, lessonIDs []uuid.UUID) error {
	return database.RunInTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for i, id := range lessonIDs {
			_, err := tx.ExecContext(ctx,
				`UPDATE lessons SET sort_order = $3, updated_at = NOW() WHERE id = $1 AND section_id = $2`,
				id, sectionID, i+1,
			)
			if err != nil {
				return fmt.Errorf("failed to reorder lessons: %w", err)
			}
		}
		return nil
	})
}

func (r *repository) GetLesson(ctx context.Context, id uuid.UUID) (*Lesson, error) {
	var l Lesson
	if err := r.db.GetContext(ctx, &l, `SELECT `+lessonColumns+` FROM lessons WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}
	return &l, nil
}

func (r *repository) ListLessons(ctx context.Context, courseID uuid.UUID) ([]*Lesson, error) {
	var out []*Lesson
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE course_id = $1 ORDER BY sort_order`
	if err := r.db.SelectContext(ctx, &out, query, courseID); err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}
	return out, nil
}

func (r *repository) GetQuiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error) {
	var q quiz.Quiz
	query := `
		SELECT q.id, q.lesson_id, l.course_id, q.passing_score, q.time_limit, q.max_attempts, q.created_at
		FROM quizzes q
		JOIN lessons l ON l.id = q.lesson_id
		WHERE q.id = $1
	`
	if err := r.db.GetContext(ctx, &q, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &q, nil
}

func (r *repository) CreateQuiz(ctx context.Context, q *quiz.Quiz) error {
	query := `
		INSERT INTO quizzes (id, lesson_id, passing_score, time_limit, max_attempts, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, q.ID, q.LessonID, q.PassingScore, q.TimeLimit, q.MaxAttempts, q.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrQuizExists
		}
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

func (r *repository) CreateQuestion(ctx context.Context, q *quiz.Question) error {
	query := `
		INSERT INTO quiz_questions (
			id, quiz_id, question, question_type, options, correct_answers, explanation, points, sort_order
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8,
			(SELECT COALESCE(MAX(sort_order), 0) + 1 FROM quiz_questions WHERE quiz_id = $2))
		RETURNING sort_order
	`
	err := r.db.QueryRowxContext(ctx, query,
		q.ID, q.QuizID, q.Question, q.QuestionType, q.Options, q.CorrectAnswers, q.Explanation, q.Points,
	).Scan(&q.SortOrder)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}
