package wishlist_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/wishlist"
	"github.com/learnhub/learnhub-api/internal/testutil/pgtest"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	return pgtest.Open(t)
}

func TestRepositoryAddListRemove(t *testing.T) {
	db := setupTestDB(t)
	repo := wishlist.NewRepository(db)
	ctx := context.Background()

	instructorID := pgtest.CreateUser(t, db, "INSTRUCTOR", decimal.Zero)
	pgtest.MustExec(t, db, `UPDATE users SET first_name = 'Grace', last_name = 'Hopper' WHERE id = $1`, instructorID)
	studentID := pgtest.CreateUser(t, db, "STUDENT", decimal.Zero)
	first := pgtest.CreateCourse(t, db, instructorID, "PUBLISHED", decimal.RequireFromString("19.99"))
	second := pgtest.CreateCourse(t, db, instructorID, "PUBLISHED", decimal.Zero)

	status, err := repo.CourseStatus(ctx, first)
	if err != nil || status != "PUBLISHED" {
		t.Fatalf("status: %q (%v)", status, err)
	}
	if status, _ := repo.CourseStatus(ctx, uuid.New()); status != "" {
		t.Fatalf("expected empty status for unknown course, got %q", status)
	}

	base := time.Now().UTC().Truncate(time.Microsecond)
	original := &wishlist.Item{ID: uuid.New(), UserID: studentID, CourseID: first, CreatedAt: base}
	if err := repo.Add(ctx, original); err != nil {
		t.Fatalf("add: %v", err)
	}
	again := &wishlist.Item{ID: uuid.New(), UserID: studentID, CourseID: first, CreatedAt: base.Add(time.Hour)}
	if err := repo.Add(ctx, again); err != nil {
		t.Fatalf("add again: %v", err)
	}
	if again.ID != original.ID || !again.CreatedAt.Equal(base) {
		t.Fatalf("expected stored row reported back, got %+v", again)
	}
	if err := repo.Add(ctx, &wishlist.Item{ID: uuid.New(), UserID: studentID, CourseID: second, CreatedAt: base.Add(time.Minute)}); err != nil {
		t.Fatalf("add second: %v", err)
	}

	entries, err := repo.List(ctx, studentID)
	if err != nil || len(entries) != 2 {
		t.Fatalf("list: %d (%v)", len(entries), err)
	}
	if entries[0].CourseID != second || entries[1].CourseID != first {
		t.Fatal("expected most recently added first")
	}
	if entries[1].InstructorName != "Grace Hopper" || entries[1].Price.StringFixed(2) != "19.99" || entries[1].CategoryName != nil {
		t.Fatalf("unexpected course card %+v", entries[1])
	}

	if err := repo.Remove(ctx, studentID, first); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := repo.Remove(ctx, studentID, first); err != nil {
		t.Fatalf("remove absent: %v", err)
	}
	entries, _ = repo.List(ctx, studentID)
	if len(entries) != 1 {
		t.Fatalf("expected one entry left, got %d", len(entries))
	}
}
