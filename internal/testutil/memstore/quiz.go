package memstore

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/domain/enrollment"
	"github.com/learnhub/learnhub-api/internal/domain/quiz"
)

type quizRepo struct{ progressStore }

// QuizRepo returns the store as a quiz.Repository
func (s *Store) QuizRepo() quiz.Repository {
	return quizRepo{progressStore{conn{s: s}}}
}

func (r quizRepo) InTx(ctx context.Context, fn func(repo quiz.Repository) error) error {
	return r.tx(func(c conn) error { return fn(quizRepo{progressStore{c}}) })
}

func (r quizRepo) GetQuiz(ctx context.Context, id uuid.UUID) (*quiz.Quiz, error) {
	defer r.lock()()
	q, ok := r.s.st.quizzes[id]
	if !ok {
		return nil, nil
	}
	q.CourseID = r.s.st.lessons[q.LessonID].CourseID

	questions := make([]*quiz.Question, 0, len(q.Questions))
	for _, question := range q.Questions {
		cp := *question
		questions = append(questions, &cp)
	}
	sort.SliceStable(questions, func(i, j int) bool { return questions[i].SortOrder < questions[j].SortOrder })
	q.Questions = questions
	return &q, nil
}

func (r quizRepo) FindEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*enrollment.Enrollment, error) {
	defer r.lock()()
	return r.findEnrollment(userID, courseID), nil
}

func (r quizRepo) CountAttempts(ctx context.Context, userID, quizID uuid.UUID) (int, error) {
	defer r.lock()()
	n := 0
	for _, a := range r.s.st.attempts {
		if a.UserID == userID && a.QuizID == quizID {
			n++
		}
	}
	return n, nil
}

func (r quizRepo) CreateAttempt(ctx context.Context, a *quiz.Attempt) error {
	defer r.lock()()
	if err := r.s.fault("CreateAttempt"); err != nil {
		return err
	}
	r.s.st.attempts = append(r.s.st.attempts, *a)
	return nil
}

func (r quizRepo) ListAttempts(ctx context.Context, userID, quizID uuid.UUID) ([]*quiz.Attempt, error) {
	defer r.lock()()
	var out []*quiz.Attempt
	for i := len(r.s.st.attempts) - 1; i >= 0; i-- {
		if a := r.s.st.attempts[i]; a.UserID == userID && a.QuizID == quizID {
			out = append(out, &a)
		}
	}
	return out, nil
}
