package wallet_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/statistics"
	"github.com/learnhub/learnhub-api/internal/domain/wallet"
	"github.com/learnhub/learnhub-api/internal/pkg/lock"
	"github.com/learnhub/learnhub-api/internal/testutil/memstore"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestService(store *memstore.Store, vouchers wallet.VoucherProvider) *wallet.Service {
	stats := statistics.NewService(store.StatisticsRepo())
	return wallet.NewService(store.WalletRepo(), stats, vouchers, lock.NewLocal())
}

func signedSum(txs []wallet.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for i := range txs {
		sum = sum.Add(txs[i].Signed())
	}
	return sum
}

func TestDepositCreditsBalance(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	userID := store.AddUser(decimal.Zero)

	res, err := svc.Deposit(context.Background(), userID, wallet.DepositInput{Amount: dec("500")})
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !res.Balance.Equal(dec("500")) {
		t.Fatalf("expected balance 500, got %s", res.Balance)
	}
	if res.Transaction.Type != wallet.TransactionTypeDeposit || *res.Transaction.Provider != wallet.ProviderDemo {
		t.Fatalf("unexpected transaction %+v", res.Transaction)
	}
	if res.Transaction.Description != "Deposit 500.00" {
		t.Fatalf("unexpected description %q", res.Transaction.Description)
	}
	if len(res.Transaction.ReferenceID) < 5 || res.Transaction.ReferenceID[:4] != "DEP-" {
		t.Fatalf("unexpected reference %q", res.Transaction.ReferenceID)
	}
}

func TestDepositValidation(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	userID := store.AddUser(decimal.Zero)
	ctx := context.Background()

	for _, amount := range []string{"0", "-5", "0.004"} {
		if _, err := svc.Deposit(ctx, userID, wallet.DepositInput{Amount: dec(amount)}); !errors.Is(err, wallet.ErrInvalidAmount) {
			t.Errorf("amount %s: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if _, err := svc.Deposit(ctx, uuid.New(), wallet.DepositInput{Amount: dec("10")}); !errors.Is(err, wallet.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := svc.GetBalance(ctx, uuid.New()); !errors.Is(err, wallet.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDepositRejectsForeignProvenance(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	userID := store.AddUser(decimal.Zero)
	ctx := context.Background()

	if _, err := svc.Deposit(ctx, userID, wallet.DepositInput{Amount: dec("5"), Provider: wallet.ProviderVoucher}); !errors.Is(err, wallet.ErrInvalidProvider) {
		t.Fatalf("expected ErrInvalidProvider, got %v", err)
	}
	for _, ref := range []string{"VCH-abc", "PUR-x", "DEP-1", "vch-lower"} {
		if _, err := svc.Deposit(ctx, userID, wallet.DepositInput{Amount: dec("5"), ReferenceID: ref}); !errors.Is(err, wallet.ErrReservedReference) {
			t.Errorf("%s: expected ErrReservedReference, got %v", ref, err)
		}
	}
	res, err := svc.Deposit(ctx, userID, wallet.DepositInput{Amount: dec("5"), Provider: wallet.ProviderDemo})
	if err != nil {
		t.Fatalf("demo deposit: %v", err)
	}
	if *res.Transaction.Provider != wallet.ProviderDemo || !store.Balance(userID).Equal(dec("5")) {
		t.Fatalf("unexpected deposit %+v", res.Transaction)
	}
}

func TestDepositReferenceIdempotency(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	userID := store.AddUser(decimal.Zero)
	ctx := context.Background()

	in := wallet.DepositInput{Amount: dec("40"), ReferenceID: "client-ref-1"}
	first, err := svc.Deposit(ctx, userID, in)
	if err != nil {
		t.Fatalf("first deposit: %v", err)
	}
	retry, err := svc.Deposit(ctx, userID, in)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if retry.Transaction.ID != first.Transaction.ID {
		t.Fatal("retry should return the original transaction")
	}
	if !store.Balance(userID).Equal(dec("40")) {
		t.Fatalf("expected balance 40 after retry, got %s", store.Balance(userID))
	}

	in.Amount = dec("41")
	if _, err := svc.Deposit(ctx, userID, in); !errors.Is(err, wallet.ErrReferenceConflict) {
		t.Fatalf("expected ErrReferenceConflict, got %v", err)
	}
}

func TestPurchaseUsesEffectivePrice(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	userID := store.AddUser(dec("500"))
	courseID := store.AddCourse(memstore.Course{
		Title:         "Go in Practice",
		Price:         dec("600"),
		DiscountPrice: decimal.NewNullDecimal(dec("300")),
	})

	res, err := svc.PurchaseCourse(context.Background(), userID, courseID)
	if err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if !res.Balance.Equal(dec("200")) || !store.Balance(userID).Equal(dec("200")) {
		t.Fatalf("expected balance 200, got %s", store.Balance(userID))
	}
	if !res.Transaction.Amount.Equal(dec("300")) || res.Transaction.Description != "Purchase course: Go in Practice" {
		t.Fatalf("unexpected transaction %+v", res.Transaction)
	}
	payments := store.Payments(userID)
	if len(payments) != 1 || payments[0].Status != "COMPLETED" || payments[0].PaymentMethod != "WALLET" || payments[0].PaidAt == nil {
		t.Fatalf("unexpected payments %+v", payments)
	}

	stats, ok := store.StoredStatistics(courseID)
	if !ok || !stats.TotalRevenue.Equal(dec("300")) {
		t.Fatalf("expected revenue 300 in statistics, got %+v", stats)
	}
}

func TestPurchaseRejections(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	ctx := context.Background()

	rich := store.AddUser(dec("1000"))
	poor := store.AddUser(dec("10"))
	paid := store.AddCourse(memstore.Course{Price: dec("100")})
	draft := store.AddCourse(memstore.Course{Price: dec("100"), Status: "DRAFT"})
	free := store.AddCourse(memstore.Course{Price: decimal.Zero})
	freeByDiscount := store.AddCourse(memstore.Course{Price: dec("100"), DiscountPrice: decimal.NewNullDecimal(decimal.Zero)})

	cases := []struct {
		name   string
		user   uuid.UUID
		course uuid.UUID
		want   error
	}{
		{"unknown user", uuid.New(), paid, wallet.ErrUserNotFound},
		{"unknown course", rich, uuid.New(), wallet.ErrCourseNotFound},
		{"unpublished", rich, draft, wallet.ErrCourseNotAvailable},
		{"free", rich, free, wallet.ErrCourseIsFree},
		{"free by discount", rich, freeByDiscount, wallet.ErrCourseIsFree},
		{"insufficient", poor, paid, wallet.ErrInsufficientBalance},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.PurchaseCourse(ctx, tc.user, tc.course); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}

	if _, err := svc.PurchaseCourse(ctx, rich, paid); err != nil {
		t.Fatalf("purchase: %v", err)
	}
	if _, err := svc.PurchaseCourse(ctx, rich, paid); !errors.Is(err, wallet.ErrAlreadyPurchased) {
		t.Fatalf("expected ErrAlreadyPurchased, got %v", err)
	}
	if !store.Balance(poor).Equal(dec("10")) {
		t.Fatalf("rejected purchase changed balance: %s", store.Balance(poor))
	}
}

func TestPurchaseIsAtomic(t *testing.T) {
	for _, op := range []string{"InsertTransaction", "InsertPayment"} {
		t.Run(op, func(t *testing.T) {
			store := memstore.New()
			svc := newTestService(store, nil)
			userID := store.AddUser(dec("500"))
			courseID := store.AddCourse(memstore.Course{Price: dec("300")})

			injected := errors.New("injected failure")
			store.FailOn(op, injected)

			if _, err := svc.PurchaseCourse(context.Background(), userID, courseID); !errors.Is(err, injected) {
				t.Fatalf("expected injected failure, got %v", err)
			}
			if !store.Balance(userID).Equal(dec("500")) {
				t.Fatalf("balance decrement leaked: %s", store.Balance(userID))
			}
			if n := len(store.Transactions(userID)); n != 0 {
				t.Fatalf("expected no transactions, got %d", n)
			}
			if n := len(store.Payments(userID)); n != 0 {
				t.Fatalf("expected no payments, got %d", n)
			}
		})
	}
}

func TestBalanceConservation(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	userID := store.AddUser(decimal.Zero)
	ctx := context.Background()

	prices := []string{"120.50", "75.25", "0.99", "300", "42.10"}
	deposits := []string{"100", "250.75", "0.01", "99.99"}

	for i := 0; i < len(prices) || i < len(deposits); i++ {
		if i < len(deposits) {
			if _, err := svc.Deposit(ctx, userID, wallet.DepositInput{Amount: dec(deposits[i])}); err != nil {
				t.Fatalf("deposit %d: %v", i, err)
			}
		}
		if i < len(prices) {
			courseID := store.AddCourse(memstore.Course{Price: dec(prices[i])})
			_, err := svc.PurchaseCourse(ctx, userID, courseID)
			if err != nil && !errors.Is(err, wallet.ErrInsufficientBalance) {
				t.Fatalf("purchase %d: %v", i, err)
			}
		}

		got := store.Balance(userID)
		if want := signedSum(store.Transactions(userID)); !got.Equal(want) {
			t.Fatalf("step %d: balance %s != ledger sum %s", i, got, want)
		}
		if got.IsNegative() {
			t.Fatalf("step %d: negative balance %s", i, got)
		}
	}
}

func TestConcurrentPurchasesNeverOverspend(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	userID := store.AddUser(dec("50"))

	const workers = 10
	courses := make([]uuid.UUID, workers)
	for i := range courses {
		courses[i] = store.AddCourse(memstore.Course{Title: fmt.Sprintf("c%d", i), Price: dec("10")})
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	success := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(courseID uuid.UUID) {
			defer wg.Done()
			_, err := svc.PurchaseCourse(context.Background(), userID, courseID)
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
				return
			}
			if !errors.Is(err, wallet.ErrInsufficientBalance) {
				t.Errorf("unexpected error: %v", err)
			}
		}(courses[i])
	}
	wg.Wait()

	if success != 5 {
		t.Fatalf("expected 5 successful purchases, got %d", success)
	}
	if !store.Balance(userID).IsZero() {
		t.Fatalf("expected balance 0, got %s", store.Balance(userID))
	}
	if !signedSum(store.Transactions(userID)).IsZero() {
		t.Fatal("ledger does not sum to balance")
	}
}

func TestTransactionsNewestFirst(t *testing.T) {
	store := memstore.New()
	svc := newTestService(store, nil)
	userID := store.AddUser(decimal.Zero)
	ctx := context.Background()

	for _, amount := range []string{"1", "2", "3"} {
		if _, err := svc.Deposit(ctx, userID, wallet.DepositInput{Amount: dec(amount)}); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := svc.Transactions(ctx, userID, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if total != 3 || len(items) != 2 {
		t.Fatalf("expected 2 of 3, got %d of %d", len(items), total)
	}
	if !items[0].Amount.Equal(dec("3")) || !items[1].Amount.Equal(dec("2")) {
		t.Fatalf("unexpected order: %s, %s", items[0].Amount, items[1].Amount)
	}
}
