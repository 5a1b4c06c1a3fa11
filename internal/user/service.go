package user

import (
	"context"
	"errors"

	"github.com/ahnafi/gym-management-app-sub000/internal/apperr"
	"github.com/ahnafi/gym-management-app-sub000/internal/auth"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("Invalid email or password")
	ErrInvalidRefresh     = apperr.Unauthorized("invalid or expired refresh token")
)

type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	GetByID(ctx context.Context, userID int) (*User, error)
	RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error)
}

type service struct {
	repo   Repository
	tokens *auth.Issuer
}

func NewService(repo Repository, tokens *auth.Issuer) Service {
	return &service{
		repo:   repo,
		tokens: tokens,
	}
}

// Register creates a member account. Gym registration itself is a separate
// purchase that flips registration_status once paid.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*LoginResponse, error) {
	exists, err := s.repo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.Create(ctx, req.Name, req.Email, passwordHash, RoleMember)
	if err != nil {
		return nil, err
	}

	return s.issue(u)
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}

	return s.issue(u)
}

func (s *service) GetByID(ctx context.Context, userID int) (*User, error) {
	return s.repo.FindByID(ctx, userID)
}

// RefreshToken signs a new access token for the holder of refreshToken.
// The role is read again so a changed role takes effect on refresh.
func (s *service) RefreshToken(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.tokens.Verify(refreshToken, auth.RefreshToken)
	if err != nil {
		return nil, ErrInvalidRefresh
	}

	u, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.Sign(identity(u), auth.AccessToken)
	if err != nil {
		return nil, err
	}

	return &LoginResponse{AccessToken: access, RefreshToken: refreshToken, User: *u}, nil
}

func (s *service) issue(u *User) (*LoginResponse, error) {
	pair, err := s.tokens.Issue(identity(u))
	if err != nil {
		return nil, err
	}
	return &LoginResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken, User: *u}, nil
}

func identity(u *User) auth.Identity {
	return auth.Identity{UserID: u.ID, Email: u.Email, Role: string(u.Role)}
}
