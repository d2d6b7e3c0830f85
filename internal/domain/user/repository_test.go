package user_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/learnhub/learnhub-api/internal/domain/user"
	"github.com/learnhub/learnhub-api/internal/testutil/pgtest"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	return pgtest.Open(t)
}

func createUser(t *testing.T, repo user.Repository, email, first string, role user.Role, at time.Time) *user.User {
	t.Helper()
	u := &user.User{
		ID: uuid.New(), Email: email, PasswordHash: "x", FirstName: first, LastName: "Test",
		Role: role, IsActive: true, CreatedAt: at, UpdatedAt: at,
	}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("create %s: %v", email, err)
	}
	return u
}

func TestRepositoryCreateAndUpdate(t *testing.T) {
	repo := user.NewRepository(setupTestDB(t))
	ctx := context.Background()
	u := createUser(t, repo, "ada@example.com", "Ada", user.RoleStudent, time.Now().UTC())

	dup := *u
	dup.ID = uuid.New()
	if err := repo.Create(ctx, &dup); !errors.Is(err, user.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	phone := "+1 555 0100"
	if err := repo.UpdateProfile(ctx, u.ID, &user.Profile{FirstName: "Augusta", LastName: "King", Phone: &phone, Bio: "Notes"}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if err := repo.UpdateStatus(ctx, u.ID, false); err != nil {
		t.Fatalf("update status: %v", err)
	}
	if err := repo.UpdateRole(ctx, u.ID, user.RoleInstructor); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if err := repo.UpdatePassword(ctx, u.ID, "new-hash"); err != nil {
		t.Fatalf("update password: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "ada@example.com")
	if err != nil || got == nil {
		t.Fatalf("get: %v", err)
	}
	if got.FirstName != "Augusta" || got.Bio != "Notes" || got.Phone == nil || *got.Phone != phone {
		t.Fatalf("profile not stored: %+v", got)
	}
	if got.IsActive || got.Role != user.RoleInstructor || got.PasswordHash != "new-hash" {
		t.Fatalf("account fields not stored: %+v", got)
	}

	missing, err := repo.GetByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected nil for unknown user, got %+v (%v)", missing, err)
	}
}

func TestRepositoryListFiltersAndPages(t *testing.T) {
	repo := user.NewRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Now().UTC().Add(-time.Hour)

	first := createUser(t, repo, "ada@example.com", "Ada", user.RoleStudent, base)
	second := createUser(t, repo, "alan@example.com", "Alan", user.RoleStudent, base.Add(time.Minute))
	createUser(t, repo, "grace@example.com", "Grace", user.RoleInstructor, base.Add(2*time.Minute))

	students := user.RoleStudent
	page, total, err := repo.List(ctx, &user.ListFilter{Role: &students}, 1, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(page) != 1 || page[0].ID != second.ID {
		t.Fatalf("expected newest student first of 2, got %d", total)
	}
	page, _, _ = repo.List(ctx, &user.ListFilter{Role: &students}, 2, 1)
	if len(page) != 1 || page[0].ID != first.ID {
		t.Fatal("expected the older student on page 2")
	}

	found, total, err := repo.List(ctx, &user.ListFilter{Search: "GRACE@"}, 1, 10)
	if err != nil || total != 1 || found[0].Role != user.RoleInstructor {
		t.Fatalf("expected case-insensitive email match, got %d (%v)", total, err)
	}
}
