package middleware

import (
	"context"
	"time"

	"github.com/damoang/opinion-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditLog 관리자 작업 기록 (답변, 엑셀 다운로드, 사용자 변경)
type AuditLog struct {
	ID         uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EmployeeID string    `gorm:"column:employee_id;size:50;index" json:"employee_id"`
	Action     string    `gorm:"column:action;size:50;index" json:"action"` // respond, export, user_create, user_role, user_status
	Resource   string    `gorm:"column:resource;size:50" json:"resource"`
	ResourceID string    `gorm:"column:resource_id;size:50" json:"resource_id"`
	Details    string    `gorm:"column:details;type:text" json:"details"`
	ClientIP   string    `gorm:"column:client_ip;size:64" json:"client_ip"`
	RequestID  string    `gorm:"column:request_id;size:64" json:"request_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// AuditLogger writes audit entries; a nil db only logs
type AuditLogger struct {
	db *gorm.DB
}

// NewAuditLogger creates a new AuditLogger (table is created by cmd/migrate)
func NewAuditLogger(db *gorm.DB) *AuditLogger {
	return &AuditLogger{db: db}
}

// Record writes an entry for the current request's actor
func (a *AuditLogger) Record(c *gin.Context, action, resource, resourceID, details string) {
	if a == nil {
		return
	}
	entry := &AuditLog{
		EmployeeID: GetEmployeeID(c),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Details:    details,
		ClientIP:   c.ClientIP(),
		RequestID:  c.GetString("request_id"),
	}

	logger.GetLogger().Info().
		Str("employee_id", entry.EmployeeID).
		Str("action", action).
		Str("resource", resource).
		Str("resource_id", resourceID).
		Msg("audit")

	if a.db == nil {
		return
	}
	if err := a.db.WithContext(context.WithoutCancel(c.Request.Context())).Create(entry).Error; err != nil {
		logger.GetLogger().Error().Err(err).
			Str("action", action).
			Str("employee_id", entry.EmployeeID).
			Msg("audit log write failed")
	}
}
