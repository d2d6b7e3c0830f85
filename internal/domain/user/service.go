package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Service handles account administration
type Service struct {
	repo Repository
}

// NewService creates user service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns a filtered page of accounts
func (s *Service) List(ctx context.Context, filter *ListFilter, page, limit int) ([]*User, int, error) {
	users, total, err := s.repo.List(ctx, filter, page, limit)
	if err != nil {
		return nil, 0, err
	}
	if users == nil {
		users = []*User{}
	}
	return users, total, nil
}

// SetStatus enables or disables an account. Admins cannot disable themselves.
func (s *Service) SetStatus(ctx context.Context, adminID, userID uuid.UUID, active bool) (*User, error) {
	if adminID == userID {
		return nil, ErrSelfUpdate
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, userID, active); err != nil {
		return nil, err
	}
	u.IsActive = active

	log.Info().
		Str("admin_id", adminID.String()).
		Str("user_id", userID.String()).
		Bool("active", active).
		Msg("user status changed")
	return u, nil
}

// SetRole changes the role of an account. Admins cannot change their own role.
func (s *Service) SetRole(ctx context.Context, adminID, userID uuid.UUID, role string) (*User, error) {
	if !IsValidRole(role) {
		return nil, ErrInvalidRole
	}
	if adminID == userID {
		return nil, ErrSelfUpdate
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRole(ctx, userID, Role(role)); err != nil {
		return nil, err
	}
	u.Role = Role(role)

	log.Info().
		Str("admin_id", adminID.String()).
		Str("user_id", userID.String()).
		Str("role", role).
		Msg("user role changed")
	return u, nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}
