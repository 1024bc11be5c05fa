package handler

import (
	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles POST /api/v1/auth/login
// @Summary 로그인
// @Description 사번과 비밀번호로 로그인하고 액세스 토큰을 발급받습니다
// @Tags auth
// @Accept json
// @Produce json
// @Param request body domain.LoginRequest true "로그인 정보"
// @Success 200 {object} common.APIResponse{data=service.LoginResponse}
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req.EmployeeID, req.Password)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.Success(c, resp)
}

// Me handles GET /api/v1/auth/me
// @Summary 내 정보
// @Tags auth
// @Produce json
// @Success 200 {object} common.APIResponse{data=domain.User}
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	user, err := h.authService.Me(c.Request.Context(), actor)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.Success(c, user)
}
