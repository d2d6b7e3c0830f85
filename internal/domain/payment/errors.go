package payment

import "github.com/learnhub/learnhub-api/internal/pkg/apperror"

var ErrPaymentNotFound = apperror.NotFound("PAYMENT_NOT_FOUND", "Payment not found")
