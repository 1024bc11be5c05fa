package handler

import (
	"net/http"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/service"
	"github.com/damoang/opinion-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

// OpinionHandler 임직원 의견 제출/조회
type OpinionHandler struct {
	opinions *service.OpinionService
	query    *service.OpinionQueryService
}

// NewOpinionHandler creates a new OpinionHandler
func NewOpinionHandler(opinions *service.OpinionService, query *service.OpinionQueryService) *OpinionHandler {
	return &OpinionHandler{opinions: opinions, query: query}
}

// Submit handles POST /api/v1/opinions
// @Summary 의견 제출
// @Description 개선 제안을 제출합니다. 상태는 접수로 시작하고 분기는 서버 시각 기준입니다.
// @Tags opinions
// @Accept json
// @Produce json
// @Param request body domain.SubmitOpinionRequest true "제출 내용"
// @Success 201 {object} common.APIResponse{data=domain.Opinion}
// @Failure 400 {object} common.APIResponse
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /opinions [post]
func (h *OpinionHandler) Submit(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var req domain.SubmitOpinionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	opinion, err := h.opinions.Submit(c.Request.Context(), actor, &req)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.Created(c, opinion)
}

// ListMine handles GET /api/v1/opinions/mine
// @Summary 내 의견 목록
// @Tags opinions
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.OpinionView}
// @Failure 401 {object} common.APIResponse
// @Security BearerAuth
// @Router /opinions/mine [get]
func (h *OpinionHandler) ListMine(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	views, err := h.query.ListMine(c.Request.Context(), actor)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessWithMeta(c, views, &common.Meta{Total: int64(len(views))})
}

// Get handles GET /api/v1/opinions/:id
// @Summary 의견 상세
// @Description 본인 의견 또는 (관리자) 모든 의견을 조회합니다
// @Tags opinions
// @Produce json
// @Param id path int true "의견 ID"
// @Success 200 {object} common.APIResponse{data=domain.OpinionView}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /opinions/{id} [get]
func (h *OpinionHandler) Get(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "잘못된 의견 ID 입니다", err)
		return
	}

	view, err := h.query.Get(c.Request.Context(), actor, id)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.Success(c, view)
}
