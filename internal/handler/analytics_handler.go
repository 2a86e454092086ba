package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/service"
)

// AnalyticsHandler handles read-only aggregate endpoints
type AnalyticsHandler struct {
	analyticsService *service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// Popular handles GET /api/v1/contents/popular?limit=10
// @Summary List the most viewed published content
// @Tags analytics
// @Produce json
// @Param limit query int false "Maximum items"
// @Success 200 {object} common.APIResponse{data=[]domain.ContentResponse}
// @Router /contents/popular [get]
func (h *AnalyticsHandler) Popular(c *gin.Context) {
	limit := 10
	if val, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil {
		limit = val
	}

	items, err := h.analyticsService.Popular(c.Request.Context(), limit)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, items, nil)
}

// Stats handles GET /api/v1/admin/stats
// @Summary Content pipeline statistics
// @Tags analytics
// @Produce json
// @Success 200 {object} common.APIResponse{data=service.StatsResponse}
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	stats, err := h.analyticsService.Stats(c.Request.Context())
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, stats, nil)
}
