package handler

import (
	"github.com/damoang/opinion-backend/internal/common"
	"github.com/damoang/opinion-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// LookupHandler 기준정보 (안건구분, 계열사)
type LookupHandler struct {
	lookups *service.LookupService
}

// NewLookupHandler creates a new LookupHandler
func NewLookupHandler(lookups *service.LookupService) *LookupHandler {
	return &LookupHandler{lookups: lookups}
}

// Categories handles GET /api/v1/categories
// @Summary 안건구분 목록 (활성)
// @Tags lookups
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.Category}
// @Security BearerAuth
// @Router /categories [get]
func (h *LookupHandler) Categories(c *gin.Context) {
	categories, err := h.lookups.Categories(c.Request.Context())
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.Success(c, categories)
}

// Companies handles GET /api/v1/companies
// @Summary 계열사 목록 (활성)
// @Tags lookups
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.CompanyAffiliate}
// @Security BearerAuth
// @Router /companies [get]
func (h *LookupHandler) Companies(c *gin.Context) {
	companies, err := h.lookups.Companies(c.Request.Context())
	if err != nil {
		common.HandleServiceError(c, err)
		return
	}
	common.Success(c, companies)
}
