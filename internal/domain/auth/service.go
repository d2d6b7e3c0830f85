package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/learnhub/learnhub-api/internal/domain/user"
	"github.com/learnhub/learnhub-api/internal/pkg/jwt"
	"github.com/learnhub/learnhub-api/internal/pkg/password"
)

// Service handles authentication business logic
type Service struct {
	userRepo   user.Repository
	jwtService *jwt.Service
	hashCost   int
}

// NewService creates auth service
func NewService(userRepo user.Repository, jwtService *jwt.Service) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtService: jwtService,
		hashCost:   password.DefaultCost,
	}
}

// Register creates new user account
func (s *Service) Register(ctx context.Context, req *RegisterRequest) (*AuthResponse, error) {
	req.Email = user.NormalizeEmail(req.Email)

	role := req.Role
	if role == "" {
		role = string(user.RoleStudent)
	}
	if !user.IsValidSignupRole(role) {
		return nil, ErrInvalidRole
	}

	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, user.ErrEmailExists
	}

	hash, err := password.HashWithCost(req.Password, s.hashCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         user.Role(role),
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	log.Info().Str("user_id", u.ID.String()).Str("role", role).Msg("user registered")
	return s.issue(u)
}

// Login authenticates by email and password
func (s *Service) Login(ctx context.Context, req *LoginRequest) (*AuthResponse, error) {
	u, err := s.userRepo.GetByEmail(ctx, user.NormalizeEmail(req.Email))
	if err != nil {
		return nil, err
	}
	if u == nil || !password.Verify(req.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if !u.IsActive {
		return nil, user.ErrAccountBlocked
	}
	return s.issue(u)
}

// Me returns the current user
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}
	resp := NewUserResponse(u)
	return &resp, nil
}

// UpdateProfile replaces the editable profile fields of the current user
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *UpdateProfileRequest) (*UserResponse, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, user.ErrUserNotFound
	}

	profile := &user.Profile{FirstName: u.FirstName, LastName: u.LastName, Phone: u.Phone, Bio: u.Bio}
	if req.FirstName != nil {
		profile.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		profile.LastName = *req.LastName
	}
	if req.Phone != nil {
		profile.Phone = req.Phone
		if *req.Phone == "" {
			profile.Phone = nil
		}
	}
	if req.Bio != nil {
		profile.Bio = *req.Bio
	}

	if err := s.userRepo.UpdateProfile(ctx, userID, profile); err != nil {
		return nil, err
	}
	u.FirstName, u.LastName, u.Phone, u.Bio = profile.FirstName, profile.LastName, profile.Phone, profile.Bio

	resp := NewUserResponse(u)
	return &resp, nil
}

// ChangePassword verifies the current password and stores a new hash.
// Tokens already issued stay valid until they expire.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, req *ChangePasswordRequest) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return user.ErrUserNotFound
	}
	if !password.Verify(req.CurrentPassword, u.PasswordHash) {
		return ErrInvalidPassword
	}

	hash, err := password.HashWithCost(req.NewPassword, s.hashCost)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	log.Info().Str("user_id", userID.String()).Msg("password changed")
	return nil
}

func (s *Service) issue(u *user.User) (*AuthResponse, error) {
	token, err := s.jwtService.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User: NewUserResponse(u),
		Tokens: TokensResponse{
			AccessToken: token,
			ExpiresIn:   int(s.jwtService.AccessTTL().Seconds()),
			TokenType:   "Bearer",
		},
	}, nil
}
