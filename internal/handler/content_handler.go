package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/middleware"
	"github.com/newsdesk/content-service/internal/service"
)

// ContentHandler handles content lifecycle requests
type ContentHandler struct {
	contentService *service.ContentService
}

// NewContentHandler creates a new ContentHandler
func NewContentHandler(contentService *service.ContentService) *ContentHandler {
	return &ContentHandler{contentService: contentService}
}

// Create handles POST /api/v1/contents
// @Summary Create a draft content item
// @Description Stores a new draft and records version 1 in the ledger
// @Tags contents
// @Accept json
// @Produce json
// @Param request body domain.CreateContentRequest true "Draft fields"
// @Success 201 {object} common.APIResponse{data=domain.ContentResponse}
// @Failure 400 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents [post]
func (h *ContentHandler) Create(c *gin.Context) {
	var req domain.CreateContentRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.DomainErrorResponse(c, err)
		return
	}

	resp, err := h.contentService.Create(c.Request.Context(), &req, middleware.GetActorID(c))
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.CreatedResponse(c, resp)
}

// Get handles GET /api/v1/contents/:id
// @Summary Get a content item
// @Tags contents
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} common.APIResponse{data=domain.ContentResponse}
// @Failure 404 {object} common.APIResponse
// @Router /contents/{id} [get]
func (h *ContentHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.contentService.Get(c.Request.Context(), id)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// List handles GET /api/v1/contents?status=draft,pending
// @Summary List content items
// @Tags contents
// @Produce json
// @Param status query string false "Comma-separated status filter"
// @Success 200 {object} common.APIResponse{data=[]domain.ContentResponse}
// @Security BearerAuth
// @Router /contents [get]
func (h *ContentHandler) List(c *gin.Context) {
	var statuses []string
	if raw := c.Query("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}
	resp, err := h.contentService.List(statuses)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// Update handles PUT /api/v1/contents/:id
// @Summary Update a content item
// @Description Applies an edit under optimistic locking; the request must echo the lock_version last observed
// @Tags contents
// @Accept json
// @Produce json
// @Param id path int true "Content ID"
// @Param request body domain.UpdateContentRequest true "Changed fields"
// @Success 200 {object} common.APIResponse{data=domain.ContentResponse}
// @Failure 409 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id} [put]
func (h *ContentHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req domain.UpdateContentRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.DomainErrorResponse(c, err)
		return
	}

	resp, err := h.contentService.Update(c.Request.Context(), id, &req, middleware.GetActorID(c))
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// Archive handles POST /api/v1/contents/:id/archive
// @Summary Archive a published content item
// @Description Retires the item from search; its versions and records remain
// @Tags contents
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} common.APIResponse{data=domain.ContentResponse}
// @Failure 422 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id}/archive [post]
func (h *ContentHandler) Archive(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	resp, err := h.contentService.Archive(c.Request.Context(), id, middleware.GetActorID(c))
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, resp, nil)
}

// Delete handles DELETE /api/v1/contents/:id
// @Summary Permanently delete a content item
// @Description Removes the item with its version ledger, moderation history and index entry
// @Tags contents
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} common.APIResponse
// @Failure 404 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id} [delete]
func (h *ContentHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.contentService.Delete(c.Request.Context(), id, middleware.GetActorID(c)); err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"deleted": true}, nil)
}

// Reindex handles POST /api/v1/admin/reindex
// @Summary Rebuild the search index from the content store
// @Tags admin
// @Produce json
// @Success 200 {object} common.APIResponse
// @Security BearerAuth
// @Router /admin/reindex [post]
func (h *ContentHandler) Reindex(c *gin.Context) {
	count, err := h.contentService.Reindex()
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	middleware.SetSearchIndexDocs(float64(count))
	common.SuccessResponse(c, gin.H{"indexed": count}, nil)
}

// parseID parses the :id path parameter; on failure it writes the error
// response and returns false
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		common.ErrorResponse(c, http.StatusBadRequest, "Invalid content ID", err)
		return 0, false
	}
	return id, true
}
