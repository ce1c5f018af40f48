package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"user_management/internal/model"
	"user_management/internal/repository"
	"user_management/internal/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService issues actor tokens for existing users
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.Actor, string, error)
}

type authService struct {
	userRepo repository.UserRepository
	jwtUtil  *utils.JWTUtil
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtUtil *utils.JWTUtil) AuthService {
	return &authService{
		userRepo: userRepo,
		jwtUtil:  jwtUtil,
	}
}

// Login authenticates a user and returns a JWT token
func (s *authService) Login(ctx context.Context, email, password string) (*model.Actor, string, error) {
	creds, err := s.userRepo.FindCredentialsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("error finding user by email: %w", err)
	}

	if !utils.CheckPasswordHash(password, creds.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	actor := model.Actor{ID: creds.ID, Role: creds.Role}
	token, err := s.jwtUtil.GenerateToken(actor)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return &actor, token, nil
}
