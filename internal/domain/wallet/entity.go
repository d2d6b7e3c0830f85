package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/learnhub/learnhub-api/internal/domain/payment"
)

// TransactionType decides the sign of a stored amount
type TransactionType string

const (
	TransactionTypeDeposit  TransactionType = "DEPOSIT"
	TransactionTypePurchase TransactionType = "PURCHASE"
)

// TransactionStatus of a committed ledger row
type TransactionStatus string

const TransactionStatusSuccess TransactionStatus = "SUCCESS"

const (
	ProviderDemo    = "DEMO"
	ProviderVoucher = "VOUCHER"
)

const courseStatusPublished = "PUBLISHED"

// Transaction is an append-only ledger row. Amount is always positive.
type Transaction struct {
	ID          uuid.UUID         `db:"id" json:"id"`
	UserID      uuid.UUID         `db:"user_id" json:"userId"`
	Amount      decimal.Decimal   `db:"amount" json:"amount"`
	Type        TransactionType   `db:"type" json:"type"`
	Status      TransactionStatus `db:"status" json:"status"`
	Provider    *string           `db:"provider" json:"provider,omitempty"`
	Description string            `db:"description" json:"description"`
	ReferenceID string            `db:"reference_id" json:"referenceId"`
	CreatedAt   time.Time         `db:"created_at" json:"createdAt"`
}

// Signed returns the amount with the sign its type implies
func (t *Transaction) Signed() decimal.Decimal {
	if t.Type == TransactionTypePurchase {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Course is what a purchase needs to know about a course
type Course struct {
	ID            uuid.UUID           `db:"id"`
	Title         string              `db:"title"`
	Status        string              `db:"status"`
	Price         decimal.Decimal     `db:"price"`
	DiscountPrice decimal.NullDecimal `db:"discount_price"`
}

// RedemptionStatus tracks a voucher through provider confirmation and ledger credit
type RedemptionStatus string

const (
	RedemptionPending   RedemptionStatus = "PENDING"
	RedemptionConfirmed RedemptionStatus = "CONFIRMED"
	RedemptionCredited  RedemptionStatus = "CREDITED"
	RedemptionFailed    RedemptionStatus = "FAILED"
)

// Redemption is the durable record written before the provider is called
type Redemption struct {
	ID              uuid.UUID        `db:"id" json:"id"`
	UserID          uuid.UUID        `db:"user_id" json:"userId"`
	Code            string           `db:"code" json:"code"`
	Status          RedemptionStatus `db:"status" json:"status"`
	AmountMinor     *int64           `db:"amount_minor" json:"amountMinor,omitempty"`
	ProviderCode    *string          `db:"provider_code" json:"providerCode,omitempty"`
	ProviderMessage *string          `db:"provider_message" json:"providerMessage,omitempty"`
	TransactionID   uuid.NullUUID    `db:"transaction_id" json:"transactionId"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
}

// DepositResult is returned by deposits and voucher credits
type DepositResult struct {
	Transaction *Transaction    `json:"transaction"`
	Balance     decimal.Decimal `json:"balance"`
}

// PurchaseResult is returned by a wallet course purchase
type PurchaseResult struct {
	Transaction *Transaction     `json:"transaction"`
	Payment     *payment.Payment `json:"payment"`
	Balance     decimal.Decimal  `json:"balance"`
}
