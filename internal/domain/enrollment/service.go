package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
	"github.com/learnhub/learnhub-api/internal/pkg/money"
)

// Service handles enrollment and progress business logic
type Service struct {
	repo  Repository
	stats statistics.Recomputer
	now   func() time.Time
}

// NewService creates enrollment service
func NewService(repo Repository, stats statistics.Recomputer) *Service {
	return &Service{repo: repo, stats: stats, now: time.Now}
}

// Enroll grants userID access to courseID.
// Courses with a non-zero effective price need a completed payment for the same user and course.
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID, paymentID *uuid.UUID) (*Enrollment, error) {
	var created *Enrollment

	err := s.repo.InTx(ctx, func(repo Repository) error {
		course, err := repo.GetCourse(ctx, courseID)
		if err != nil {
			return err
		}
		if course == nil {
			return ErrCourseNotFound
		}
		if course.Status != courseStatusPublished {
			return ErrCourseNotAvailable
		}

		existing, err := repo.GetEnrollment(ctx, userID, courseID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyEnrolled
		}

		e := &Enrollment{
			ID:              uuid.New(),
			UserID:          userID,
			CourseID:        courseID,
			Status:          StatusActive,
			ProgressPercent: decimal.Zero,
			EnrolledAt:      s.now(),
		}

		if money.IsPositive(money.Effective(course.Price, course.DiscountPrice)) {
			if paymentID == nil {
				return ErrPaymentRequired
			}
			p, err := repo.GetPayment(ctx, *paymentID)
			if err != nil {
				return err
			}
			if p == nil || p.Status != paymentStatusCompleted || p.UserID != userID || p.CourseID != courseID {
				return ErrPaymentNotCompleted
			}
			e.PaymentID = uuid.NullUUID{UUID: p.ID, Valid: true}
		}

		if err := repo.CreateEnrollment(ctx, e); err != nil {
			return err
		}
		created = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("course_id", courseID.String()).
		Str("enrollment_id", created.ID.String()).
		Msg("user enrolled")

	statistics.RecomputeAfterCommit(ctx, s.stats, courseID)
	return created, nil
}

// UpdateProgress records lesson progress and recomputes the enrollment percent.
func (s *Service) UpdateProgress(ctx context.Context, userID, lessonID uuid.UUID, upd ProgressUpdate) (*ProgressResult, error) {
	var result *ProgressResult

	err := s.repo.InTx(ctx, func(repo Repository) error {
		lesson, err := repo.GetLesson(ctx, lessonID)
		if err != nil {
			return err
		}
		if lesson == nil {
			return ErrLessonNotFound
		}

		e, err := repo.LockEnrollment(ctx, userID, lesson.CourseID)
		if err != nil {
			return err
		}
		if e == nil {
			return ErrNotEnrolled
		}

		p, err := ApplyProgress(ctx, repo, e, lessonID, upd, s.now())
		if err != nil {
			return err
		}
		result = &ProgressResult{Progress: p, ProgressPercent: e.ProgressPercent, Status: e.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetUserEnrollments lists the user's enrollments, optionally filtered by status.
func (s *Service) GetUserEnrollments(ctx context.Context, userID uuid.UUID, status string) ([]*EnrollmentWithCourse, error) {
	st := Status(status)
	if st != "" && !st.IsValid() {
		return nil, ErrInvalidStatus
	}
	items, err := s.repo.ListByUser(ctx, userID, st)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*EnrollmentWithCourse{}
	}
	return items, nil
}

// GetEnrollment returns one of the user's enrollments with its progress rows.
func (s *Service) GetEnrollment(ctx context.Context, enrollmentID, userID uuid.UUID) (*Detail, error) {
	e, err := s.repo.GetEnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrEnrollmentNotFound
	}
	if e.UserID != userID {
		return nil, apperror.ErrForbidden
	}

	progress, err := s.repo.ListProgress(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = []*LessonProgress{}
	}
	return &Detail{Enrollment: e, Progress: progress}, nil
}
