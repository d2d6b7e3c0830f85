package wallet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/payment"
	"github.com/learnhub/learnhub-api/internal/pkg/database"
)

// Repository defines ledger data access. Mutating methods are meant to run
// through InTx so balance and ledger rows commit together.
type Repository interface {
	InTx(ctx context.Context, fn func(repo Repository) error) error

	GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, bool, error)
	// LockBalance reads the balance and holds the user row until commit.
	LockBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, bool, error)
	SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) error

	FindTransactionByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*Transaction, error)
	InsertTransaction(ctx context.Context, t *Transaction) error
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, int, error)

	GetCourse(ctx context.Context, courseID uuid.UUID) (*Course, error)
	HasEnrollment(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	HasCompletedPayment(ctx context.Context, userID, courseID uuid.UUID) (bool, error)
	InsertPayment(ctx context.Context, p *payment.Payment) error

	GetRedemption(ctx context.Context, code string) (*Redemption, error)
	LockRedemption(ctx context.Context, code string) (*Redemption, error)
	CreateRedemption(ctx context.Context, r *Redemption) error
	UpdateRedemption(ctx context.Context, r *Redemption) error
	ListConfirmedRedemptions(ctx context.Context, limit int) ([]*Redemption, error)
}

type repository struct {
	db   sqlx.ExtContext
	conn *sqlx.DB
}

// NewRepository creates wallet repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db, conn: db}
}

func (r *repository) InTx(ctx context.Context, fn func(repo Repository) error) error {
	if r.conn == nil {
		return fn(r)
	}
	return database.RunInTx(ctx, r.conn, func(tx *sqlx.Tx) error {
		return fn(&repository{db: tx})
	})
}

func (r *repository) readBalance(ctx context.Context, query string, userID uuid.UUID) (decimal.Decimal, bool, error) {
	var balance decimal.Decimal
	err := sqlx.GetContext(ctx, r.db, &balance, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("read balance: %w", err)
	}
	return balance, true, nil
}

func (r *repository) GetBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, bool, error) {
	return r.readBalance(ctx, `SELECT balance FROM users WHERE id = $1`, userID)
}

func (r *repository) LockBalance(ctx context.Context, userID uuid.UUID) (decimal.Decimal, bool, error) {
	return r.readBalance(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, userID)
}

func (r *repository) SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET balance = $1, updated_at = now() WHERE id = $2`, balance, userID)
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}

const transactionColumns = `id, user_id, amount, type, status, provider, description, reference_id, created_at`

func (r *repository) FindTransactionByReference(ctx context.Context, userID uuid.UUID, referenceID string) (*Transaction, error) {
	var t Transaction
	err := sqlx.GetContext(ctx, r.db, &t, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE user_id = $1 AND reference_id = $2
	`, userID, referenceID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &t, nil
}

func (r *repository) InsertTransaction(ctx context.Context, t *Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO wallet_transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, t.ID, t.UserID, t.Amount, t.Type, t.Status, t.Provider, t.Description, t.ReferenceID, t.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateReference
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *repository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Transaction, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM wallet_transactions WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	var items []*Transaction
	err := sqlx.SelectContext(ctx, r.db, &items, `
		SELECT `+transactionColumns+`
		FROM wallet_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return items, total, nil
}

func (r *repository) GetCourse(ctx context.Context, courseID uuid.UUID) (*Course, error) {
	var c Course
	err := sqlx.GetContext(ctx, r.db, &c,
		`SELECT id, title, status, price, discount_price FROM courses WHERE id = $1`, courseID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &c, nil
}

func (r *repository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var ok bool
	if err := sqlx.GetContext(ctx, r.db, &ok, `SELECT EXISTS (`+query+`)`, args...); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return ok, nil
}

func (r *repository) HasEnrollment(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return r.exists(ctx, `SELECT 1 FROM enrollments WHERE user_id = $1 AND course_id = $2`, userID, courseID)
}

func (r *repository) HasCompletedPayment(ctx context.Context, userID, courseID uuid.UUID) (bool, error) {
	return r.exists(ctx,
		`SELECT 1 FROM payments WHERE user_id = $1 AND course_id = $2 AND status = 'COMPLETED'`, userID, courseID)
}

func (r *repository) InsertPayment(ctx context.Context, p *payment.Payment) error {
	return payment.NewRepository(r.db).Create(ctx, p)
}

const redemptionColumns = `id, user_id, code, status, amount_minor, provider_code, provider_message, transaction_id, created_at, updated_at`

func (r *repository) getRedemption(ctx context.Context, suffix, code string) (*Redemption, error) {
	var red Redemption
	err := sqlx.GetContext(ctx, r.db, &red,
		`SELECT `+redemptionColumns+` FROM voucher_redemptions WHERE code = $1`+suffix, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get voucher redemption: %w", err)
	}
	return &red, nil
}

func (r *repository) GetRedemption(ctx context.Context, code string) (*Redemption, error) {
	return r.getRedemption(ctx, "", code)
}

func (r *repository) LockRedemption(ctx context.Context, code string) (*Redemption, error) {
	return r.getRedemption(ctx, " FOR UPDATE", code)
}

func (r *repository) CreateRedemption(ctx context.Context, red *Redemption) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO voucher_redemptions (`+redemptionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, red.ID, red.UserID, red.Code, red.Status, red.AmountMinor, red.ProviderCode,
		red.ProviderMessage, red.TransactionID, red.CreatedAt, red.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrVoucherAlreadyRedeemed
		}
		return fmt.Errorf("insert voucher redemption: %w", err)
	}
	return nil
}

func (r *repository) UpdateRedemption(ctx context.Context, red *Redemption) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE voucher_redemptions
		SET status = $2, amount_minor = $3, provider_code = $4, provider_message = $5,
			transaction_id = $6, updated_at = $7
		WHERE id = $1
	`, red.ID, red.Status, red.AmountMinor, red.ProviderCode, red.ProviderMessage, red.TransactionID, red.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update voucher redemption: %w", err)
	}
	return nil
}

func (r *repository) ListConfirmedRedemptions(ctx context.Context, limit int) ([]*Redemption, error) {
	var items []*Redemption
	err := sqlx.SelectContext(ctx, r.db, &items, `
		SELECT `+redemptionColumns+`
		FROM voucher_redemptions
		WHERE status = 'CONFIRMED'
		ORDER BY updated_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list confirmed redemptions: %w", err)
	}
	return items, nil
}
