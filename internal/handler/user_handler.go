package handler

import (
	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/middleware"
	"github.com/damoang/opinion-backend/internal/service"
	"github.com/damoang/opinion-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// UserHandler 관리자 사용자 관리
type UserHandler struct {
	users *service.UserService
	audit *middleware.AuditLogger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(users *service.UserService, audit *middleware.AuditLogger) *UserHandler {
	return &UserHandler{users: users, audit: audit}
}

// List handles GET /api/v1/admin/users
// @Summary 사용자 목록
// @Tags admin-users
// @Produce json
// @Param page query int false "페이지" default(1)
// @Param limit query int false "페이지 크기" default(20)
// @Param keyword query string false "사번/이름/부서 검색"
// @Success 200 {object} common.APIResponse{data=[]domain.User}
// @Security BearerAuth
// @Router /admin/users [get]
func (h *UserHandler) List(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	page := ginutil.QueryInt(c, "page", 1)
	limit := ginutil.QueryInt(c, "limit", 20)

	users, total, err := h.users.List(c.Request.Context(), actor, page, limit, c.Query("keyword"))
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessWithMeta(c, users, &common.Meta{Total: total})
}

// Create handles POST /api/v1/admin/users
// @Summary 사용자 등록
// @Tags admin-users
// @Accept json
// @Produce json
// @Param request body domain.CreateUserRequest true "사용자 정보"
// @Success 201 {object} common.APIResponse{data=domain.User}
// @Failure 409 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req domain.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), actor, &req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	h.audit.Record(c, "user_create", "user", user.EmployeeID, "")
	common.Created(c, user)
}

// UpdateRole handles PUT /api/v1/admin/users/:employee_id/role
// @Summary 역할 변경
// @Tags admin-users
// @Accept json
// @Produce json
// @Param employee_id path string true "사번"
// @Param request body domain.UpdateRoleRequest true "역할"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/users/{employee_id}/role [put]
func (h *UserHandler) UpdateRole(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req domain.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	employeeID := c.Param("employee_id")
	if err := h.users.UpdateRole(c.Request.Context(), actor, employeeID, req.Role); err != nil {
		common.HandleServiceError(c, err)
		return
	}

	h.audit.Record(c, "user_role", "user", employeeID, "role="+req.Role)
	common.Success(c, gin.H{"employee_id": employeeID, "role": req.Role})
}

// UpdateStatus handles PUT /api/v1/admin/users/:employee_id/status
// @Summary 계정 활성/비활성
// @Tags admin-users
// @Accept json
// @Produce json
// @Param employee_id path string true "사번"
// @Param request body domain.UpdateStatusRequest true "상태"
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/users/{employee_id}/status [put]
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	employeeID := c.Param("employee_id")
	if err := h.users.UpdateStatus(c.Request.Context(), actor, employeeID, req.Status); err != nil {
		common.HandleServiceError(c, err)
		return
	}

	h.audit.Record(c, "user_status", "user", employeeID, "status="+req.Status)
	common.Success(c, gin.H{"employee_id": employeeID, "status": req.Status})
}
