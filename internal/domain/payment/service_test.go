package payment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
)

type fakeRepo struct {
	payments map[uuid.UUID]*Payment
}

func (f *fakeRepo) Create(ctx context.Context, p *Payment) error {
	f.payments[p.ID] = p
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	return f.payments[id], nil
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var out []*Payment
	for _, p := range f.payments {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, len(out), nil
}

func TestGetOwnerOnly(t *testing.T) {
	owner := uuid.New()
	now := time.Now()
	p := &Payment{
		ID:              uuid.New(),
		UserID:          owner,
		CourseID:        uuid.New(),
		Amount:          decimal.RequireFromString("300.00"),
		PaymentMethod:   MethodWallet,
		PaymentProvider: ProviderInternal,
		Status:          StatusCompleted,
		PaidAt:          &now,
		CreatedAt:       now,
	}
	svc := NewService(&fakeRepo{payments: map[uuid.UUID]*Payment{p.ID: p}})
	ctx := context.Background()

	got, err := svc.Get(ctx, p.ID, owner, false)
	if err != nil || !got.IsCompleted() {
		t.Fatalf("owner get: %v %+v", err, got)
	}
	if _, err := svc.Get(ctx, p.ID, uuid.New(), false); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if _, err := svc.Get(ctx, p.ID, uuid.New(), true); err != nil {
		t.Fatalf("admin get: %v", err)
	}
	if _, err := svc.Get(ctx, uuid.New(), owner, false); !errors.Is(err, ErrPaymentNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListMineNeverNil(t *testing.T) {
	svc := NewService(&fakeRepo{payments: map[uuid.UUID]*Payment{}})
	payments, total, err := svc.ListMine(context.Background(), uuid.New(), 1, 20)
	if err != nil {
		t.Fatal(err)
	}
	if payments == nil || total != 0 {
		t.Fatalf("expected empty slice, got %v (%d)", payments, total)
	}
}
