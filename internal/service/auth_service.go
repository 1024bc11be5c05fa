package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	"github.com/damoang/opinion-backend/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService 사번 + 비밀번호 로그인
type AuthService struct {
	userRepo   repository.UserRepository
	jwtManager *jwt.Manager
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, jwtManager *jwt.Manager) *AuthService {
	return &AuthService{userRepo: userRepo, jwtManager: jwtManager}
}

// LoginResponse represents login response
type LoginResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
}

// Login authenticates an employee. Inactive accounts are rejected even with a correct password.
func (s *AuthService) Login(ctx context.Context, employeeID, password string) (*LoginResponse, error) {
	user, err := s.userRepo.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrInvalidCredentials
	}
	if !user.IsActive() {
		return nil, common.ErrInactiveUser
	}

	accessToken, err := s.jwtManager.GenerateAccessToken(user.EmployeeID, user.Name, user.Role)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &LoginResponse{User: user, AccessToken: accessToken}, nil
}

// Me returns the current user's account
func (s *AuthService) Me(ctx context.Context, actor *domain.Actor) (*domain.User, error) {
	if actor == nil {
		return nil, common.ErrUnauthorized
	}
	user, err := s.userRepo.FindByEmployeeID(ctx, actor.EmployeeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, common.NewQueryError("user get", err)
	}
	return user, nil
}

// HashPassword bcrypt hash for a new account
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
