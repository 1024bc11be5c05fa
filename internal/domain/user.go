package domain

import "time"

// 사용자 역할/상태
const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User 임직원 계정 - maps to users table (employee_id is the natural key)
type User struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	EmployeeID   string    `gorm:"column:employee_id;size:50;uniqueIndex" json:"employee_id"`
	Name         string    `gorm:"column:name;size:100" json:"name"`
	Email        string    `gorm:"column:email;size:255" json:"email"`
	Dept         string    `gorm:"column:dept;size:100" json:"dept"`
	CompanyID    *uint64   `gorm:"column:company_id" json:"company_id,omitempty"`
	Role         string    `gorm:"column:role;size:10;default:'user'" json:"role"`
	Status       string    `gorm:"column:status;size:10;default:'active'" json:"status"`
	PasswordHash string    `gorm:"column:password_hash;size:255" json:"-"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// TableName returns the table name
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive reports whether the user may sign in
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// Actor 요청 주체. 모든 코어 연산에 명시적으로 전달된다.
type Actor struct {
	EmployeeID string `json:"employee_id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// IsAdmin reports whether the actor may moderate opinions
func (a *Actor) IsAdmin() bool {
	return a != nil && a.Role == RoleAdmin
}

// ActorFromUser builds the actor for an authenticated user
func ActorFromUser(u *User) *Actor {
	return &Actor{EmployeeID: u.EmployeeID, Name: u.Name, Role: u.Role}
}

// CreateUserRequest 사용자 등록 요청
type CreateUserRequest struct {
	EmployeeID string  `json:"employee_id" binding:"required,max=50"`
	Name       string  `json:"name" binding:"required,max=100"`
	Email      string  `json:"email" binding:"omitempty,email"`
	Dept       string  `json:"dept" binding:"max=100"`
	CompanyID  *uint64 `json:"company_id"`
	Password   string  `json:"password" binding:"required,min=4"`
}

// UpdateRoleRequest 역할 변경 요청
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=admin user"`
}

// UpdateStatusRequest 상태 변경 요청
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

// LoginRequest 로그인 요청
type LoginRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}
