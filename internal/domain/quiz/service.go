package quiz

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/learnhub/learnhub-api/internal/domain/enrollment"
	"github.com/learnhub/learnhub-api/internal/pkg/lock"
)

// Service handles quiz taking and grading
type Service struct {
	repo   Repository
	locker lock.Locker
	now    func() time.Time
}

// NewService creates quiz service
func NewService(repo Repository, locker lock.Locker) *Service {
	return &Service{repo: repo, locker: locker, now: time.Now}
}

// Submit grades one submission and records the attempt.
// A pass marks the quiz lesson completed.
func (s *Service) Submit(ctx context.Context, userID, quizID uuid.UUID, answers Answers) (*SubmitResult, error) {
	release, err := s.locker.Acquire(ctx, userID.String()+":"+quizID.String())
	switch {
	case errors.Is(err, lock.ErrHeld):
		return nil, ErrSubmissionInProgress
	case err != nil:
		// the enrollment row lock below still serializes submissions
		log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("quiz submission lock unavailable")
	default:
		defer release()
	}

	if answers == nil {
		answers = Answers{}
	}

	var result *SubmitResult
	err = s.repo.InTx(ctx, func(repo Repository) error {
		q, err := repo.GetQuiz(ctx, quizID)
		if err != nil {
			return err
		}
		if q == nil {
			return ErrQuizNotFound
		}

		e, err := repo.LockEnrollment(ctx, userID, q.CourseID)
		if err != nil {
			return err
		}
		if e == nil {
			return ErrNotEnrolled
		}

		if q.MaxAttempts != nil {
			used, err := repo.CountAttempts(ctx, userID, quizID)
			if err != nil {
				return err
			}
			if used >= *q.MaxAttempts {
				return ErrMaxAttemptsReached
			}
		}

		grade := Score(q.Questions, answers, q.PassingScore)
		now := s.now()
		attempt := &Attempt{
			ID:           uuid.New(),
			UserID:       userID,
			QuizID:       quizID,
			EnrollmentID: e.ID,
			Score:        grade.Score,
			TotalPoints:  grade.TotalPoints,
			EarnedPoints: grade.EarnedPoints,
			IsPassed:     grade.IsPassed,
			Answers:      answers,
			SubmittedAt:  now,
			CreatedAt:    now,
		}
		if err := repo.CreateAttempt(ctx, attempt); err != nil {
			return err
		}

		if grade.IsPassed {
			completed := true
			upd := enrollment.ProgressUpdate{IsCompleted: &completed}
			if _, err := enrollment.ApplyProgress(ctx, repo, e, q.LessonID, upd, now); err != nil {
				return err
			}
		}

		result = &SubmitResult{
			Attempt:      attempt,
			Score:        grade.Score,
			TotalPoints:  grade.TotalPoints,
			EarnedPoints: grade.EarnedPoints,
			IsPassed:     grade.IsPassed,
			PassingScore: q.PassingScore,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("quiz_id", quizID.String()).
		Str("score", result.Score.StringFixed(2)).
		Bool("is_passed", result.IsPassed).
		Msg("quiz attempt recorded")
	return result, nil
}

// Results returns the user's attempts, most recent first.
func (s *Service) Results(ctx context.Context, userID, quizID uuid.UUID) ([]*Attempt, error) {
	q, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuizNotFound
	}

	attempts, err := s.repo.ListAttempts(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []*Attempt{}
	}
	return attempts, nil
}

// Get returns the quiz for an enrolled student without correct answers.
func (s *Service) Get(ctx context.Context, userID, quizID uuid.UUID) (*StudentView, error) {
	q, err := s.repo.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuizNotFound
	}

	e, err := s.repo.FindEnrollment(ctx, userID, q.CourseID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, ErrNotEnrolled
	}

	used, err := s.repo.CountAttempts(ctx, userID, quizID)
	if err != nil {
		return nil, err
	}

	view := &StudentView{
		ID:           q.ID,
		LessonID:     q.LessonID,
		PassingScore: q.PassingScore,
		TimeLimit:    q.TimeLimit,
		MaxAttempts:  q.MaxAttempts,
		AttemptsUsed: used,
		Questions:    make([]*StudentQuestion, 0, len(q.Questions)),
	}
	for _, qq := range q.Questions {
		view.Questions = append(view.Questions, &StudentQuestion{
			ID:           qq.ID,
			Question:     qq.Question,
			QuestionType: qq.QuestionType,
			Options:      qq.Options,
			Points:       qq.Points,
			SortOrder:    qq.SortOrder,
		})
	}
	return view, nil
}
