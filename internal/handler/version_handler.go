package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/middleware"
	"github.com/newsdesk/content-service/internal/service"
)

// VersionHandler handles version ledger requests
type VersionHandler struct {
	versionService *service.VersionService
}

// NewVersionHandler creates a new VersionHandler
func NewVersionHandler(versionService *service.VersionService) *VersionHandler {
	return &VersionHandler{versionService: versionService}
}

// History handles GET /api/v1/contents/:id/versions
// @Summary List the version history of a content item
// @Tags versions
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} common.APIResponse{data=[]domain.VersionSummary}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id}/versions [get]
func (h *VersionHandler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	versions, err := h.versionService.History(id)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, versions, nil)
}

// GetVersion handles GET /api/v1/contents/:id/versions/:version
// @Summary Get one version snapshot
// @Tags versions
// @Produce json
// @Param id path int true "Content ID"
// @Param version path int true "Version number"
// @Success 200 {object} common.APIResponse{data=domain.ContentVersion}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id}/versions/{version} [get]
func (h *VersionHandler) GetVersion(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	number, ok := parseVersion(c, c.Param("version"))
	if !ok {
		return
	}
	version, err := h.versionService.GetVersion(id, number)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, version, nil)
}

// Diff handles GET /api/v1/contents/:id/diff?from=1&to=3
// @Summary Diff two versions of a content item
// @Description Structured field changes; body changes report length and hash indicators
// @Tags versions
// @Produce json
// @Param id path int true "Content ID"
// @Param from query int true "Older version number"
// @Param to query int true "Newer version number"
// @Success 200 {object} common.APIResponse{data=domain.VersionDiff}
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id}/diff [get]
func (h *VersionHandler) Diff(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	from, ok := parseVersion(c, c.Query("from"))
	if !ok {
		return
	}
	to, ok := parseVersion(c, c.Query("to"))
	if !ok {
		return
	}
	diff, err := h.versionService.Diff(id, from, to)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, diff, nil)
}

// Rollback handles POST /api/v1/contents/:id/rollback
// @Summary Roll a content item back to an earlier version
// @Description Restores the target snapshot and appends it as a new ledger entry; history is never rewritten
// @Tags versions
// @Accept json
// @Produce json
// @Param id path int true "Content ID"
// @Param request body domain.RollbackRequest true "Target version"
// @Success 200 {object} common.APIResponse{data=domain.ContentResponse}
// @Failure 404 {object} common.APIResponse
// @Failure 409 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id}/rollback [post]
func (h *VersionHandler) Rollback(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req domain.RollbackRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.DomainErrorResponse(c, err)
		return
	}

	resp, err := h.versionService.Rollback(c.Request.Context(), id, req.TargetVersion, middleware.GetActorID(c), req.Notes)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}

func parseVersion(c *gin.Context, raw string) (uint, bool) {
	number, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || number == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid version number", err)
		return 0, false
	}
	return uint(number), true
}
