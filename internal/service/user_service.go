package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/repository"
	"github.com/damoang/opinion-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserService 관리자 사용자 관리
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// List searches users by employee id, name or dept; admins come first
func (s *UserService) List(ctx context.Context, actor *domain.Actor, page, limit int, keyword string) ([]*domain.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, common.ErrForbidden
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	users, total, err := s.userRepo.FindAll(ctx, page, limit, strings.TrimSpace(keyword))
	if err != nil {
		return nil, 0, common.NewQueryError("user list", err)
	}
	return users, total, nil
}

// Create registers an employee account with role user
func (s *UserService) Create(ctx context.Context, actor *domain.Actor, req *domain.CreateUserRequest) (*domain.User, error) {
	if !actor.IsAdmin() {
		return nil, common.ErrForbidden
	}
	employeeID := strings.TrimSpace(req.EmployeeID)
	if employeeID == "" {
		return nil, common.NewValidationError("employee_id", "사번을 입력해주세요")
	}

	hashed, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &domain.User{
		EmployeeID:   employeeID,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		Dept:         strings.TrimSpace(req.Dept),
		CompanyID:    req.CompanyID,
		Role:         domain.RoleUser,
		Status:       domain.UserStatusActive,
		PasswordHash: hashed,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, common.ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("사용자 등록 실패: %w", err)
	}
	logger.Info("user %s registered by %s", user.EmployeeID, actor.EmployeeID)
	return user, nil
}

// UpdateRole changes admin/user role
func (s *UserService) UpdateRole(ctx context.Context, actor *domain.Actor, employeeID, role string) error {
	if !actor.IsAdmin() {
		return common.ErrForbidden
	}
	if role != domain.RoleAdmin && role != domain.RoleUser {
		return common.NewValidationError("role", "역할은 admin 또는 user 여야 합니다")
	}
	if employeeID == actor.EmployeeID && role != domain.RoleAdmin {
		return common.NewValidationError("role", "자기 자신의 관리자 권한은 해제할 수 없습니다")
	}
	return s.update(ctx, employeeID, func() error {
		return s.userRepo.UpdateRole(ctx, employeeID, role)
	})
}

// UpdateStatus activates or deactivates an account
func (s *UserService) UpdateStatus(ctx context.Context, actor *domain.Actor, employeeID, status string) error {
	if !actor.IsAdmin() {
		return common.ErrForbidden
	}
	if status != domain.UserStatusActive && status != domain.UserStatusInactive {
		return common.NewValidationError("status", "상태는 active 또는 inactive 여야 합니다")
	}
	if employeeID == actor.EmployeeID && status != domain.UserStatusActive {
		return common.NewValidationError("status", "자기 자신의 계정은 비활성화할 수 없습니다")
	}
	return s.update(ctx, employeeID, func() error {
		return s.userRepo.UpdateStatus(ctx, employeeID, status)
	})
}

func (s *UserService) update(ctx context.Context, employeeID string, apply func() error) error {
	err := apply()
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("사용자 수정 실패 (%s): %w", employeeID, err)
	}
	return nil
}
