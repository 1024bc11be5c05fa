package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/domain"
	"github.com/damoang/opinion-backend/internal/middleware"
	"github.com/damoang/opinion-backend/internal/service"
	"github.com/damoang/opinion-backend/pkg/ginutil"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// AdminHandler 관리자 의견 관리 (목록, 답변, 엑셀, 통계)
type AdminHandler struct {
	opinions *service.OpinionService
	query    *service.OpinionQueryService
	export   *service.ExportService
	stats    *service.StatsService
	audit    *middleware.AuditLogger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(
	opinions *service.OpinionService,
	query *service.OpinionQueryService,
	export *service.ExportService,
	stats *service.StatsService,
	audit *middleware.AuditLogger,
) *AdminHandler {
	return &AdminHandler{opinions: opinions, query: query, export: export, stats: stats, audit: audit}
}

// List handles GET /api/v1/admin/opinions
// @Summary 의견 목록 (관리자)
// @Description 기간/상태/안건구분/계열사/검색어로 필터링합니다. 블라인드 의견은 마스킹되어 포함됩니다.
// @Tags admin
// @Produce json
// @Param year query string false "연도 (YYYY)"
// @Param quarter query string false "분기 (Q1..Q4)"
// @Param from query string false "시작일 (YYYY-MM-DD)"
// @Param to query string false "종료일 (YYYY-MM-DD)"
// @Param status query string false "처리 상태 또는 all"
// @Param category query string false "안건구분 이름 또는 all"
// @Param company query string false "계열사 이름 또는 all"
// @Param q query string false "검색어"
// @Success 200 {object} common.APIResponse{data=[]domain.OpinionView}
// @Failure 400 {object} common.APIResponse
// @Failure 403 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/opinions [get]
func (h *AdminHandler) List(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var f domain.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		bindError(c, err)
		return
	}

	views, err := h.query.List(c.Request.Context(), actor, &f)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessWithMeta(c, views, &common.Meta{Total: int64(len(views))})
}

// Respond handles PUT /api/v1/admin/opinions/:id/response
// @Summary 답변 등록/상태 변경
// @Description 상태와 답변을 한 번에 기록합니다. 답변완료는 답변 내용이 필요합니다.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path int true "의견 ID"
// @Param request body domain.RespondRequest true "답변 내용"
// @Success 200 {object} common.APIResponse{data=domain.Opinion}
// @Failure 400 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/opinions/{id}/response [put]
func (h *AdminHandler) Respond(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "잘못된 의견 ID 입니다", err)
		return
	}

	var req domain.RespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	opinion, err := h.opinions.Respond(c.Request.Context(), actor, id, req.Status, req.ProcDesc)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	h.audit.Record(c, "respond", "opinion", strconv.FormatUint(id, 10), "status="+req.Status)
	common.Success(c, opinion)
}

// History handles GET /api/v1/admin/opinions/:id/history
// @Summary 답변 이력
// @Tags admin
// @Produce json
// @Param id path int true "의견 ID"
// @Success 200 {object} common.APIResponse{data=[]domain.OpinionHistory}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/opinions/{id}/history [get]
func (h *AdminHandler) History(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	id, err := ginutil.ParamUint64(c, "id")
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "잘못된 의견 ID 입니다", err)
		return
	}

	history, err := h.opinions.History(c.Request.Context(), actor, id)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.SuccessWithMeta(c, history, &common.Meta{Total: int64(len(history))})
}

// Export handles GET /api/v1/admin/opinions/export
// @Summary 엑셀 다운로드
// @Description 목록과 같은 필터를 사용합니다. 블라인드 의견은 제외되고 제외 건수는 X-Excluded-Count 헤더로 전달됩니다.
// @Tags admin
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param year query string false "연도 (YYYY)"
// @Param quarter query string false "분기 (Q1..Q4)"
// @Param from query string false "시작일 (YYYY-MM-DD)"
// @Param to query string false "종료일 (YYYY-MM-DD)"
// @Param status query string false "처리 상태 또는 all"
// @Param category query string false "안건구분 이름 또는 all"
// @Param company query string false "계열사 이름 또는 all"
// @Param q query string false "검색어"
// @Success 200 {file} file
// @Failure 422 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/opinions/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var f domain.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.export.Export(c.Request.Context(), actor, &f)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}

	h.audit.Record(c, "export", "opinion", "",
		fmt.Sprintf("rows=%d excluded=%d", result.Rows, result.ExcludedCount))

	c.Header("Content-Disposition", contentDisposition(result.Filename))
	c.Header("X-Excluded-Count", strconv.Itoa(result.ExcludedCount))
	c.Data(http.StatusOK, xlsxContentType, result.Content)
}

// Stats handles GET /api/v1/admin/stats
// @Summary 대시보드 통계
// @Tags admin
// @Produce json
// @Param year query string false "연도 (YYYY)"
// @Param quarter query string false "분기 (Q1..Q4)"
// @Param from query string false "시작일 (YYYY-MM-DD)"
// @Param to query string false "종료일 (YYYY-MM-DD)"
// @Success 200 {object} common.APIResponse{data=domain.Stats}
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *AdminHandler) Stats(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}

	var f domain.ListFilter
	if err := c.ShouldBindQuery(&f); err != nil {
		bindError(c, err)
		return
	}

	stats, err := h.stats.Stats(c.Request.Context(), actor, &f)
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.Success(c, stats)
}

// contentDisposition builds an attachment header that survives non-ASCII filenames
func contentDisposition(filename string) string {
	return fmt.Sprintf(`attachment; filename="opinions.xlsx"; filename*=UTF-8''%s`, url.PathEscape(filename))
}
