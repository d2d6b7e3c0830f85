package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines payment data access
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Payment, int, error)
}

type repository struct {
	db sqlx.ExtContext
}

// NewRepository creates payment repository. db may be a *sqlx.DB or a *sqlx.Tx,
// so purchases can record the payment inside the ledger transaction.
func NewRepository(db sqlx.ExtContext) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, user_id, course_id, amount, payment_method, payment_provider, status, paid_at, created_at`

func (r *repository) Create(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.UserID,
		p.CourseID,
		p.Amount,
		p.PaymentMethod,
		p.PaymentProvider,
		p.Status,
		p.PaidAt,
		p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := sqlx.GetContext(ctx, r.db, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Payment, int, error) {
	var total int
	if err := sqlx.GetContext(ctx, r.db, &total, `SELECT COUNT(*) FROM payments WHERE user_id = $1`, userID); err != nil {
		return nil, 0, fmt.Errorf("count payments: %w", err)
	}

	query := `
		SELECT ` + paymentColumns + `
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	var payments []*Payment
	if err := sqlx.SelectContext(ctx, r.db, &payments, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("list payments: %w", err)
	}
	return payments, total, nil
}
