package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/payment"
	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/pkg/lock"
	"github.com/learnhub/learnhub-api/internal/pkg/money"
)

// Service implements the ledger: balance reads, deposits, purchases and voucher credits.
type Service struct {
	repo     Repository
	stats    statistics.Recomputer
	vouchers VoucherProvider
	locker   lock.Locker
	now      func() time.Time
}

// NewService creates wallet service
func NewService(repo Repository, stats statistics.Recomputer, vouchers VoucherProvider, locker lock.Locker) *Service {
	return &Service{
		repo:     repo,
		stats:    stats,
		vouchers: vouchers,
		locker:   locker,
		now:      time.Now,
	}
}

// DepositInput for Deposit
type DepositInput struct {
	Amount      decimal.Decimal
	Provider    string
	ReferenceID string
}

// GetBalance returns the user's current balance
func (s *Service) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	balance, found, err := s.repo.GetBalance(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		return decimal.Zero, ErrUserNotFound
	}
	return balance, nil
}

// Deposit credits the wallet with a DEMO top-up. A caller supplied reference
// makes the call idempotent: replaying the same amount returns the original
// transaction. References in the system namespaces are refused.
func (s *Service) Deposit(ctx context.Context, userID uuid.UUID, in DepositInput) (*DepositResult, error) {
	amount := money.Round(in.Amount)
	if !money.IsPositive(amount) {
		return nil, ErrInvalidAmount
	}
	if in.Provider != "" && in.Provider != ProviderDemo {
		return nil, ErrInvalidProvider
	}
	provider := ProviderDemo
	ref := in.ReferenceID
	if ref == "" {
		ref = depositRefPrefix + uuid.NewString()
	} else if isReservedReference(ref) {
		return nil, ErrReservedReference
	}

	var result *DepositResult
	err := s.repo.InTx(ctx, func(repo Repository) error {
		balance, found, err := repo.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if !found {
			return ErrUserNotFound
		}

		existing, err := repo.FindTransactionByReference(ctx, userID, ref)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.Type != TransactionTypeDeposit || !existing.Amount.Equal(amount) {
				return ErrReferenceConflict
			}
			result = &DepositResult{Transaction: existing, Balance: balance}
			return nil
		}

		t, next, err := s.credit(ctx, repo, userID, balance, amount, provider, "Deposit "+amount.StringFixed(money.Scale), ref)
		if err != nil {
			return err
		}
		result = &DepositResult{Transaction: t, Balance: next}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

const (
	depositRefPrefix  = "DEP-"
	purchaseRefPrefix = "PUR-"
	voucherRefPrefix  = "VCH-"
)

func isReservedReference(ref string) bool {
	upper := strings.ToUpper(ref)
	for _, p := range []string{depositRefPrefix, purchaseRefPrefix, voucherRefPrefix} {
		if strings.HasPrefix(upper, p) {
			return true
		}
	}
	return false
}

// credit adds amount to a balance already locked by the caller and records the DEPOSIT row.
func (s *Service) credit(ctx context.Context, repo Repository, userID uuid.UUID, balance, amount decimal.Decimal, provider, description, ref string) (*Transaction, decimal.Decimal, error) {
	next := balance.Add(amount)
	if err := repo.SetBalance(ctx, userID, next); err != nil {
		return nil, decimal.Zero, err
	}

	t := &Transaction{
		ID:          uuid.New(),
		UserID:      userID,
		Amount:      amount,
		Type:        TransactionTypeDeposit,
		Status:      TransactionStatusSuccess,
		Provider:    &provider,
		Description: description,
		ReferenceID: ref,
		CreatedAt:   s.now(),
	}
	if err := repo.InsertTransaction(ctx, t); err != nil {
		if errors.Is(err, ErrDuplicateReference) {
			return nil, decimal.Zero, ErrReferenceConflict
		}
		return nil, decimal.Zero, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("amount", amount.StringFixed(money.Scale)).
		Str("reference_id", ref).
		Str("provider", provider).
		Msg("wallet deposit applied")
	return t, next, nil
}

// PurchaseCourse pays for a course from the wallet. The debit, the PURCHASE
// row and the COMPLETED payment commit together or not at all.
func (s *Service) PurchaseCourse(ctx context.Context, userID, courseID uuid.UUID) (*PurchaseResult, error) {
	var result *PurchaseResult

	err := s.repo.InTx(ctx, func(repo Repository) error {
		balance, found, err := repo.LockBalance(ctx, userID)
		if err != nil {
			return err
		}
		if !found {
			return ErrUserNotFound
		}

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
		price := money.Round(money.Effective(course.Price, course.DiscountPrice))
		if !money.IsPositive(price) {
			return ErrCourseIsFree
		}

		enrolled, err := repo.HasEnrollment(ctx, userID, courseID)
		if err != nil {
			return err
		}
		if enrolled {
			return ErrAlreadyEnrolled
		}
		paid, err := repo.HasCompletedPayment(ctx, userID, courseID)
		if err != nil {
			return err
		}
		if paid {
			return ErrAlreadyPurchased
		}

		if balance.LessThan(price) {
			return ErrInsufficientBalance.WithMessage(fmt.Sprintf(
				"Insufficient balance: %s available, %s required",
				balance.StringFixed(money.Scale), price.StringFixed(money.Scale)))
		}

		next := balance.Sub(price)
		if err := repo.SetBalance(ctx, userID, next); err != nil {
			return err
		}

		now := s.now()
		t := &Transaction{
			ID:          uuid.New(),
			UserID:      userID,
			Amount:      price,
			Type:        TransactionTypePurchase,
			Status:      TransactionStatusSuccess,
			Description: "Purchase course: " + course.Title,
			ReferenceID: fmt.Sprintf("%s%s-%s", purchaseRefPrefix, courseID, uuid.NewString()),
			CreatedAt:   now,
		}
		if err := repo.InsertTransaction(ctx, t); err != nil {
			return err
		}

		p := &payment.Payment{
			ID:              uuid.New(),
			UserID:          userID,
			CourseID:        courseID,
			Amount:          price,
			PaymentMethod:   payment.MethodWallet,
			PaymentProvider: payment.ProviderInternal,
			Status:          payment.StatusCompleted,
			PaidAt:          &now,
			CreatedAt:       now,
		}
		if err := repo.InsertPayment(ctx, p); err != nil {
			return err
		}

		result = &PurchaseResult{Transaction: t, Payment: p, Balance: next}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("course_id", courseID.String()).
		Str("amount", result.Transaction.Amount.StringFixed(money.Scale)).
		Str("reference_id", result.Transaction.ReferenceID).
		Msg("wallet purchase applied")

	statistics.RecomputeAfterCommit(ctx, s.stats, courseID)
	return result, nil
}

// Transactions returns the user's ledger, newest first
func (s *Service) Transactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Transaction, int, error) {
	items, total, err := s.repo.ListTransactions(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	if items == nil {
		items = []*Transaction{}
	}
	return items, total, nil
}
