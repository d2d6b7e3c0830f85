package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/pkg/money"
)

// ProgressStore is the storage the progress rules run against.
// The quiz module reuses it inside its submission transaction.
type ProgressStore interface {
	GetProgress(ctx context.Context, enrollmentID, lessonID uuid.UUID) (*LessonProgress, error)
	UpsertProgress(ctx context.Context, p *LessonProgress) error
	CountPublishedLessons(ctx context.Context, courseID uuid.UUID) (int, error)
	CountCompletedPublishedLessons(ctx context.Context, enrollmentID, courseID uuid.UUID) (int, error)
	UpdateProgress(ctx context.Context, enrollmentID uuid.UUID, percent decimal.Decimal, status Status, completedAt *time.Time) error
	// LockEnrollment returns the enrollment row locked for the rest of the transaction.
	LockEnrollment(ctx context.Context, userID, courseID uuid.UUID) (*Enrollment, error)
}

// ApplyProgress upserts the lesson progress row and recomputes e.
func ApplyProgress(ctx context.Context, store ProgressStore, e *Enrollment, lessonID uuid.UUID, upd ProgressUpdate, now time.Time) (*LessonProgress, error) {
	p, err := store.GetProgress(ctx, e.ID, lessonID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		p = &LessonProgress{
			ID:           uuid.New(),
			EnrollmentID: e.ID,
			LessonID:     lessonID,
			UserID:       e.UserID,
		}
	}

	if upd.WatchTime != nil {
		p.WatchTime = *upd.WatchTime
	}
	if upd.LastPosition != nil {
		p.LastPosition = *upd.LastPosition
	}
	if upd.IsCompleted != nil {
		p.IsCompleted = *upd.IsCompleted
		if p.IsCompleted {
			completedAt := now
			p.CompletedAt = &completedAt
		} else {
			p.CompletedAt = nil
		}
	}
	p.UpdatedAt = now

	if err := store.UpsertProgress(ctx, p); err != nil {
		return nil, err
	}
	if err := RecomputePercent(ctx, store, e, now); err != nil {
		return nil, err
	}
	return p, nil
}

// RecomputePercent sets e.ProgressPercent to completed/published*100 over the
// course's published lessons. A course without published lessons is at 0%.
// Reaching 100% completes the enrollment; dropping below reopens it.
func RecomputePercent(ctx context.Context, store ProgressStore, e *Enrollment, now time.Time) error {
	published, err := store.CountPublishedLessons(ctx, e.CourseID)
	if err != nil {
		return err
	}
	completed, err := store.CountCompletedPublishedLessons(ctx, e.ID, e.CourseID)
	if err != nil {
		return err
	}

	percent := money.Percent(completed, published)
	status := e.Status
	var completedAt *time.Time

	if published > 0 && completed >= published {
		percent = decimal.NewFromInt(100)
		status = StatusCompleted
		completedAt = e.CompletedAt
		if completedAt == nil {
			t := now
			completedAt = &t
		}
	} else if status == StatusCompleted {
		status = StatusActive
	}

	if err := store.UpdateProgress(ctx, e.ID, percent, status, completedAt); err != nil {
		return err
	}
	e.ProgressPercent = percent
	e.Status = status
	e.CompletedAt = completedAt
	return nil
}
