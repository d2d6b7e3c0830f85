package enrollment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/enrollment"
	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/testutil/pgtest"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	return pgtest.Open(t)
}

type seeded struct {
	db           *sqlx.DB
	studentID    uuid.UUID
	courseID     uuid.UUID
	enrollmentID uuid.UUID
}

func seedEnrollment(t *testing.T) *seeded {
	db := setupTestDB(t)
	instructorID := pgtest.CreateUser(t, db, "INSTRUCTOR", decimal.Zero)
	studentID := pgtest.CreateUser(t, db, "STUDENT", decimal.Zero)
	courseID := pgtest.CreateCourse(t, db, instructorID, "PUBLISHED", decimal.Zero)
	return &seeded{
		db:           db,
		studentID:    studentID,
		courseID:     courseID,
		enrollmentID: pgtest.CreateEnrollment(t, db, studentID, courseID, "ACTIVE"),
	}
}

func TestRepositoryUpsertProgressKeepsOneRow(t *testing.T) {
	s := seedEnrollment(t)
	repo := enrollment.NewRepository(s.db)
	ctx := context.Background()
	lessonID := pgtest.CreateLesson(t, s.db, s.courseID, true)

	now := time.Now().UTC().Truncate(time.Microsecond)
	first := &enrollment.LessonProgress{
		ID:           uuid.New(),
		EnrollmentID: s.enrollmentID,
		LessonID:     lessonID,
		UserID:       s.studentID,
		WatchTime:    30,
		LastPosition: 30,
		UpdatedAt:    now,
	}
	if err := repo.UpsertProgress(ctx, first); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	originalID := first.ID

	completedAt := now.Add(time.Minute)
	second := &enrollment.LessonProgress{
		ID:           uuid.New(),
		EnrollmentID: s.enrollmentID,
		LessonID:     lessonID,
		UserID:       s.studentID,
		IsCompleted:  true,
		WatchTime:    120,
		LastPosition: 118,
		CompletedAt:  &completedAt,
		UpdatedAt:    completedAt,
	}
	if err := repo.UpsertProgress(ctx, second); err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != originalID {
		t.Fatalf("conflicting upsert should report the stored id %s, got %s", originalID, second.ID)
	}

	rows, err := repo.ListProgress(ctx, s.enrollmentID)
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected one progress row, got %d (%v)", len(rows), err)
	}
	got := rows[0]
	if got.ID != originalID || !got.IsCompleted || got.WatchTime != 120 || got.LastPosition != 118 {
		t.Fatalf("unexpected row %+v", got)
	}
	if got.CompletedAt == nil || !got.CompletedAt.Equal(completedAt) {
		t.Fatalf("expected completed_at %s, got %v", completedAt, got.CompletedAt)
	}
}

func TestRepositoryCountsOnlyPublishedLessonsOfTheCourse(t *testing.T) {
	s := seedEnrollment(t)
	repo := enrollment.NewRepository(s.db)
	ctx := context.Background()

	published := []uuid.UUID{
		pgtest.CreateLesson(t, s.db, s.courseID, true),
		pgtest.CreateLesson(t, s.db, s.courseID, true),
		pgtest.CreateLesson(t, s.db, s.courseID, true),
	}
	hidden := pgtest.CreateLesson(t, s.db, s.courseID, false)
	otherCourse := pgtest.CreateCourse(t, s.db, pgtest.CreateUser(t, s.db, "INSTRUCTOR", decimal.Zero), "PUBLISHED", decimal.Zero)
	foreign := pgtest.CreateLesson(t, s.db, otherCourse, true)

	now := time.Now().UTC()
	for _, lessonID := range []uuid.UUID{published[0], published[1], hidden, foreign} {
		err := repo.UpsertProgress(ctx, &enrollment.LessonProgress{
			ID:           uuid.New(),
			EnrollmentID: s.enrollmentID,
			LessonID:     lessonID,
			UserID:       s.studentID,
			IsCompleted:  true,
			CompletedAt:  &now,
			UpdatedAt:    now,
		})
		if err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}
	// Started but not completed.
	err := repo.UpsertProgress(ctx, &enrollment.LessonProgress{
		ID: uuid.New(), EnrollmentID: s.enrollmentID, LessonID: published[2],
		UserID: s.studentID, WatchTime: 5, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	total, err := repo.CountPublishedLessons(ctx, s.courseID)
	if err != nil || total != 3 {
		t.Fatalf("expected 3 published lessons, got %d (%v)", total, err)
	}
	done, err := repo.CountCompletedPublishedLessons(ctx, s.enrollmentID, s.courseID)
	if err != nil || done != 2 {
		t.Fatalf("expected 2 completed published lessons, got %d (%v)", done, err)
	}
}

func TestRepositoryProgressCompletesEnrollment(t *testing.T) {
	s := seedEnrollment(t)
	repo := enrollment.NewRepository(s.db)
	svc := enrollment.NewService(repo, statistics.NewService(statistics.NewRepository(s.db)))
	ctx := context.Background()

	first := pgtest.CreateLesson(t, s.db, s.courseID, true)
	second := pgtest.CreateLesson(t, s.db, s.courseID, true)
	pgtest.CreateLesson(t, s.db, s.courseID, false)

	res, err := svc.UpdateProgress(ctx, s.studentID, first, enrollment.ProgressUpdate{IsCompleted: boolPtr(true)})
	if err != nil {
		t.Fatalf("first lesson: %v", err)
	}
	if !res.ProgressPercent.Equal(decimal.NewFromInt(50)) || res.Status != enrollment.StatusActive {
		t.Fatalf("expected 50%% active, got %s %s", res.ProgressPercent, res.Status)
	}

	if _, err := svc.UpdateProgress(ctx, s.studentID, second, enrollment.ProgressUpdate{IsCompleted: boolPtr(true)}); err != nil {
		t.Fatalf("second lesson: %v", err)
	}

	stored, err := repo.GetEnrollmentByID(ctx, s.enrollmentID)
	if err != nil || stored == nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != enrollment.StatusCompleted || stored.ProgressPercent.StringFixed(2) != "100.00" || stored.CompletedAt == nil {
		t.Fatalf("expected completed enrollment, got %+v", stored)
	}

	// Un-completing a lesson reopens the enrollment.
	if _, err := svc.UpdateProgress(ctx, s.studentID, second, enrollment.ProgressUpdate{IsCompleted: boolPtr(false)}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	stored, _ = repo.GetEnrollmentByID(ctx, s.enrollmentID)
	if stored.Status != enrollment.StatusActive || !stored.ProgressPercent.Equal(decimal.NewFromInt(50)) || stored.CompletedAt != nil {
		t.Fatalf("expected reopened enrollment at 50%%, got %+v", stored)
	}
}

func TestRepositoryCreateEnrollmentIsUnique(t *testing.T) {
	s := seedEnrollment(t)
	repo := enrollment.NewRepository(s.db)
	ctx := context.Background()

	dup := &enrollment.Enrollment{
		ID:         uuid.New(),
		UserID:     s.studentID,
		CourseID:   s.courseID,
		Status:     enrollment.StatusActive,
		EnrolledAt: time.Now().UTC(),
	}
	if err := repo.CreateEnrollment(ctx, dup); !errors.Is(err, enrollment.ErrAlreadyEnrolled) {
		t.Fatalf("expected ErrAlreadyEnrolled, got %v", err)
	}

	active, err := repo.ListByUser(ctx, s.studentID, enrollment.StatusActive)
	if err != nil || len(active) != 1 || active[0].CourseID != s.courseID {
		t.Fatalf("expected the seeded enrollment, got %+v (%v)", active, err)
	}
	completed, err := repo.ListByUser(ctx, s.studentID, enrollment.StatusCompleted)
	if err != nil || len(completed) != 0 {
		t.Fatalf("expected no completed enrollments, got %d (%v)", len(completed), err)
	}
}
