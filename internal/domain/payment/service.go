package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/learnhub/learnhub-api/internal/pkg/apperror"
)

// Service exposes read access to payment records
type Service struct {
	repo Repository
}

// NewService creates payment service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListMine returns the caller's payments, newest first
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, page, limit int) ([]*Payment, int, error) {
	payments, total, err := s.repo.ListByUser(ctx, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	if payments == nil {
		payments = []*Payment{}
	}
	return payments, total, nil
}

// Get returns a payment owned by the caller
func (s *Service) Get(ctx context.Context, id, userID uuid.UUID, isAdmin bool) (*Payment, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, ErrPaymentNotFound
	}
	if p.UserID != userID && !isAdmin {
		return nil, apperror.ErrForbidden
	}
	return p, nil
}
