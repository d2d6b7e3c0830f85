package memstore

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/payment"
	"github.com/learnhub/learnhub-api/internal/domain/wallet"
)

type walletRepo struct{ conn }

// WalletRepo returns the store as a wallet.Repository
func (s *Store) WalletRepo() wallet.Repository {
	return walletRepo{conn{s: s}}
}

func (r walletRepo) InTx(ctx context.Context, fn func(repo wallet.Repository) error) error {
	return r.tx(func(c conn) error { return fn(walletRepo{c}) })
}

func (r walletRepo) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, bool, error) {
	defer r.lock()()
	b, ok := r.s.st.users[userID]
	return b, ok, nil
}

func (r walletRepo) LockBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, bool, error) {
	return r.GetBalance(ctx, userID)
}

func (r walletRepo) SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) error {
	defer r.lock()()
	if err := r.s.fault("SetBalance"); err != nil {
		return err
	}
	r.s.st.users[userID] = balance
	return nil
}

func (r walletRepo) FindTransactionByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*wallet.Transaction, error) {
	defer r.lock()()
	for _, t := range r.s.st.transactions {
		if t.UserID == userID && t.ReferenceID == referenceID {
			cp := t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r walletRepo) InsertTransaction(ctx context.Context, t *wallet.Transaction) error {
	defer r.lock()()
	if err := r.s.fault("InsertTransaction"); err != nil {
		return err
	}
	for _, existing := range r.s.st.transactions {
		if existing.UserID == t.UserID && existing.ReferenceID == t.ReferenceID {
			return wallet.ErrDuplicateReference
		}
	}
	r.s.st.transactions = append(r.s.st.transactions, *t)
	return nil
}

func (r walletRepo) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*wallet.Transaction, int, error) {
	defer r.lock()()
	var all []*wallet.Transaction
	for i := len(r.s.st.transactions) - 1; i >= 0; i-- {
		if t := r.s.st.transactions[i]; t.UserID == userID {
			all = append(all, &t)
		}
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r walletRepo) GetCourse(ctx context.Context, courseID uuid.UUID) (*wallet.Course, error) {
	defer r.lock()()
	c, ok := r.s.st.courses[courseID]
	if !ok {
		return nil, nil
	}
	return &wallet.Course{
		ID:            c.ID,
		Title:         c.Title,
		Status:        c.Status,
		Price:         c.Price,
		DiscountPrice: c.DiscountPrice,
	}, nil
}

func (r walletRepo) HasEnrollment(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	defer r.lock()()
	for _, e := range r.s.st.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return true, nil
		}
	}
	return false, nil
}

func (r walletRepo) HasCompletedPayment(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	defer r.lock()()
	for _, p := range r.s.st.payments {
		if p.UserID == userID && p.CourseID == courseID && p.Status == payment.StatusCompleted {
			return true, nil
		}
	}
	return false, nil
}

func (r walletRepo) InsertPayment(ctx context.Context, p *payment.Payment) error {
	defer r.lock()()
	if err := r.s.fault("InsertPayment"); err != nil {
		return err
	}
	r.s.st.payments[p.ID] = *p
	return nil
}

func (r walletRepo) GetRedemption(ctx context.Context, code string) (*wallet.Redemption, error) {
	defer r.lock()()
	red, ok := r.s.st.redemptions[code]
	if !ok {
		return nil, nil
	}
	return &red, nil
}

func (r walletRepo) LockRedemption(ctx context.Context, code string) (*wallet.Redemption, error) {
	return r.GetRedemption(ctx, code)
}

func (r walletRepo) CreateRedemption(ctx context.Context, red *wallet.Redemption) error {
	defer r.lock()()
	if _, ok := r.s.st.redemptions[red.Code]; ok {
		return wallet.ErrVoucherAlreadyRedeemed
	}
	r.s.st.redemptions[red.Code] = *red
	return nil
}

func (r walletRepo) UpdateRedemption(ctx context.Context, red *wallet.Redemption) error {
	defer r.lock()()
	if err := r.s.fault("UpdateRedemption"); err != nil {
		return err
	}
	r.s.st.redemptions[red.Code] = *red
	return nil
}

func (r walletRepo) ListConfirmedRedemptions(ctx context.Context, limit int) ([]*wallet.Redemption, error) {
	defer r.lock()()
	var out []*wallet.Redemption
	for _, red := range r.s.st.redemptions {
		if red.Status == wallet.RedemptionConfirmed && len(out) < limit {
			red := red
			out = append(out, &red)
		}
	}
	return out, nil
}
