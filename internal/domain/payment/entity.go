package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents payment status
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusRefunded  Status = "REFUNDED"
)

// Method is how the payment was funded
type Method string

const (
	MethodWallet Method = "WALLET"
)

// Provider represents payment provider
type Provider string

const (
	ProviderInternal Provider = "INTERNAL"
)

// Payment is the course purchase record created next to a wallet debit
type Payment struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	UserID          uuid.UUID       `db:"user_id" json:"userId"`
	CourseID        uuid.UUID       `db:"course_id" json:"courseId"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	PaymentMethod   Method          `db:"payment_method" json:"paymentMethod"`
	PaymentProvider Provider        `db:"payment_provider" json:"paymentProvider"`
	Status          Status          `db:"status" json:"status"`
	PaidAt          *time.Time      `db:"paid_at" json:"paidAt,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// IsCompleted checks if payment is completed
func (p *Payment) IsCompleted() bool {
	return p.Status == StatusCompleted
}
