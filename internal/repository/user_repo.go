package repository

import (
	"context"

	"github.com/damoang/opinion-backend/internal/domain"
	"gorm.io/gorm"
)

// UserRepository employee account data access
type UserRepository interface {
	FindByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error)
	FindDeptsByEmployeeIDs(ctx context.Context, employeeIDs []string) (map[string]string, error)
	FindAll(ctx context.Context, page, limit int, keyword string) ([]*domain.User, int64, error)
	Create(ctx context.Context, user *domain.User) error
	UpdateRole(ctx context.Context, employeeID, role string) error
	UpdateStatus(ctx context.Context, employeeID, status string) error
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*domain.User, error) {
	var user domain.User
	err := r.db.WithContext(ctx).Where("employee_id = ?", employeeID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// FindDeptsByEmployeeIDs batch-loads departments for the given employee ids
// 반환: map["E001"]"인사팀"
func (r *userRepository) FindDeptsByEmployeeIDs(ctx context.Context, employeeIDs []string) (map[string]string, error) {
	if len(employeeIDs) == 0 {
		return map[string]string{}, nil
	}

	var rows []domain.UserDept
	err := r.db.WithContext(ctx).Table("users").
		Select("employee_id, dept").
		Where("employee_id IN ?", employeeIDs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	m := make(map[string]string, len(rows))
	for _, row := range rows {
		m[row.EmployeeID] = row.Dept
	}
	return m, nil
}

// FindAll lists users, admins first
func (r *userRepository) FindAll(ctx context.Context, page, limit int, keyword string) ([]*domain.User, int64, error) {
	var users []*domain.User
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.User{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("employee_id LIKE ? OR name LIKE ? OR dept LIKE ?", like, like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.
		Order(gorm.Expr("CASE WHEN role = ? THEN 0 ELSE 1 END", domain.RoleAdmin)).
		Order("employee_id ASC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) UpdateRole(ctx context.Context, employeeID, role string) error {
	return r.updateColumn(ctx, employeeID, "role", role)
}

func (r *userRepository) UpdateStatus(ctx context.Context, employeeID, status string) error {
	return r.updateColumn(ctx, employeeID, "status", status)
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.User{}).Count(&count).Error
	return count, err
}

func (r *userRepository) updateColumn(ctx context.Context, employeeID, column string, value any) error {
	result := r.db.WithContext(ctx).Model(&domain.User{}).
		Where("employee_id = ?", employeeID).
		Update(column, value)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}
	// MySQL 은 값이 그대로면 affected rows 가 0
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.User{}).Where("employee_id = ?", employeeID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
