package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/enrollment"
)

type progressStore struct{ conn }

func (p progressStore) GetProgress(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*enrollment.LessonProgress, error) {
	defer p.lock()()
	lp, ok := p.s.st.progress[progressKey{enrollmentID, lessonID}]
	if !ok {
		return nil, nil
	}
	return &lp, nil
}

func (p progressStore) UpsertProgress(ctx context.Context, lp *enrollment.LessonProgress) error {
	defer p.lock()()
	if err := p.s.fault("UpsertProgress"); err != nil {
		return err
	}
	key := progressKey{lp.EnrollmentID, lp.LessonID}
	if existing, ok := p.s.st.progress[key]; ok {
		lp.ID = existing.ID
	}
	p.s.st.progress[key] = *lp
	return nil
}

func (p progressStore) CountPublishedLessons(ctx context.Context, courseID uuid.UUID) (int, error) {
	defer p.lock()()
	n := 0
	for _, l := range p.s.st.lessons {
		if l.CourseID == courseID && l.IsPublished {
			n++
		}
	}
	return n, nil
}

func (p progressStore) CountCompletedPublishedLessons(ctx context.Context, enrollmentID, courseID uuid.UUID) (int, error) {
	defer p.lock()()
	n := 0
	for key, lp := range p.s.st.progress {
		if key.enrollmentID != enrollmentID || !lp.IsCompleted {
			continue
		}
		if l, ok := p.s.st.lessons[key.lessonID]; ok && l.CourseID == courseID && l.IsPublished {
			n++
		}
	}
	return n, nil
}

func (p progressStore) UpdateProgress(ctx context.Context, enrollmentID uuid.UUID, percent decimal.Decimal, status enrollment.Status, completedAt *time.Time) error {
	defer p.lock()()
	if err := p.s.fault("UpdateProgress"); err != nil {
		return err
	}
	e := p.s.st.enrollments[enrollmentID]
	e.ProgressPercent = percent
	e.Status = status
	e.CompletedAt = completedAt
	p.s.st.enrollments[enrollmentID] = e
	return nil
}

func (p progressStore) LockEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*enrollment.Enrollment, error) {
	defer p.lock()()
	return p.findEnrollment(userID, courseID), nil
}

func (p progressStore) findEnrollment(userID, courseID uuid.UUID) *enrollment.Enrollment {
	for _, e := range p.s.st.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return &e
		}
	}
	return nil
}

type enrollmentRepo struct{ progressStore }

// EnrollmentRepo returns the store as an enrollment.Repository
func (s *Store) EnrollmentRepo() enrollment.Repository {
	return enrollmentRepo{progressStore{conn{s: s}}}
}

func (r enrollmentRepo) InTx(ctx context.Context, fn func(repo enrollment.Repository) error) error {
	return r.tx(func(c conn) error { return fn(enrollmentRepo{progressStore{c}}) })
}

func (r enrollmentRepo) GetCourse(ctx context.Context, id uuid.UUID) (*enrollment.CourseRef, error) {
	defer r.lock()()
	c, ok := r.s.st.courses[id]
	if !ok {
		return nil, nil
	}
	return &enrollment.CourseRef{
		ID:            c.ID,
		Title:         c.Title,
		Status:        c.Status,
		Price:         c.Price,
		DiscountPrice: c.DiscountPrice,
	}, nil
}

func (r enrollmentRepo) GetLesson(ctx context.Context, id uuid.UUID) (*enrollment.LessonRef, error) {
	defer r.lock()()
	l, ok := r.s.st.lessons[id]
	if !ok {
		return nil, nil
	}
	return &enrollment.LessonRef{ID: l.ID, CourseID: l.CourseID, IsPublished: l.IsPublished}, nil
}

func (r enrollmentRepo) GetPayment(ctx context.Context, id uuid.UUID) (*enrollment.PaymentRef, error) {
	defer r.lock()()
	p, ok := r.s.st.payments[id]
	if !ok {
		return nil, nil
	}
	return &enrollment.PaymentRef{ID: p.ID, UserID: p.UserID, CourseID: p.CourseID, Status: string(p.Status)}, nil
}

func (r enrollmentRepo) GetEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*enrollment.Enrollment, error) {
	defer r.lock()()
	return r.findEnrollment(userID, courseID), nil
}

func (r enrollmentRepo) GetEnrollmentByID(ctx context.Context, id uuid.UUID) (*enrollment.Enrollment, error) {
	defer r.lock()()
	e, ok := r.s.st.enrollments[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (r enrollmentRepo) CreateEnrollment(ctx context.Context, e *enrollment.Enrollment) error {
	defer r.lock()()
	if err := r.s.fault("CreateEnrollment"); err != nil {
		return err
	}
	if r.findEnrollment(e.UserID, e.CourseID) != nil {
		return enrollment.ErrAlreadyEnrolled
	}
	r.s.st.enrollments[e.ID] = *e
	return nil
}

func (r enrollmentRepo) ListByUser(ctx context.Context, userID uuid.UUID, status enrollment.Status) ([]*enrollment.EnrollmentWithCourse, error) {
	defer r.lock()()
	var out []*enrollment.EnrollmentWithCourse
	for _, e := range r.s.st.enrollments {
		if e.UserID != userID || (status != "" && e.Status != status) {
			continue
		}
		c := r.s.st.courses[e.CourseID]
		out = append(out, &enrollment.EnrollmentWithCourse{
			Enrollment:  e,
			CourseTitle: c.Title,
			CourseSlug:  c.Slug,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EnrolledAt.After(out[j].EnrolledAt) })
	return out, nil
}

func (r enrollmentRepo) ListProgress(ctx context.Context, enrollmentID uuid.UUID) ([]*enrollment.LessonProgress, error) {
	defer r.lock()()
	var out []*enrollment.LessonProgress
	for key, lp := range r.s.st.progress {
		if key.enrollmentID == enrollmentID {
			lp := lp
			out = append(out, &lp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}
