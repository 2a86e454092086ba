package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/middleware"
	"github.com/newsdesk/content-service/internal/service"
)

// ModerationHandler handles submission and moderation requests
type ModerationHandler struct {
	moderationService *service.ModerationService
}

// NewModerationHandler creates a new ModerationHandler
func NewModerationHandler(moderationService *service.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderationService: moderationService}
}

// Submit handles POST /api/v1/contents/:id/submit
// @Summary Submit a content item for review
// @Description Opens a review cycle and runs automated scoring; the item may be auto-approved, auto-flagged, or left pending
// @Tags moderation
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id}/submit [post]
func (h *ModerationHandler) Submit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	content, record, err := h.moderationService.Submit(c.Request.Context(), id, middleware.GetActorID(c))
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"content": content, "moderation": record}, nil)
}

// Publish handles POST /api/v1/contents/:id/publish
// @Summary Publish a content item
// @Description Runs the same review pipeline as submit; content that passes automated scoring is published immediately, anything else lands in the review queue
// @Tags moderation
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id}/publish [post]
func (h *ModerationHandler) Publish(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	content, record, err := h.moderationService.Submit(c.Request.Context(), id, middleware.GetActorID(c))
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"content": content, "moderation": record}, nil)
}

// Moderate handles POST /api/v1/contents/:id/moderate
// @Summary Apply a manual moderation decision
// @Description Approve publishes, reject closes the cycle, flag escalates for review
// @Tags moderation
// @Accept json
// @Produce json
// @Param id path int true "Content ID"
// @Param request body domain.ModerateRequest true "Decision"
// @Success 200 {object} common.APIResponse
// @Failure 422 {object} common.APIResponse
// @Security BearerAuth
// @Router /contents/{id}/moderate [post]
func (h *ModerationHandler) Moderate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req domain.ModerateRequest
	if err := common.BindJSON(c, &req); err != nil {
		common.DomainErrorResponse(c, err)
		return
	}

	content, record, err := h.moderationService.Moderate(c.Request.Context(), id, middleware.GetActorID(c), req.Decision, req.Notes)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, gin.H{"content": content, "moderation": record}, nil)
}

// History handles GET /api/v1/contents/:id/moderation
// @Summary List moderation records for a content item
// @Tags moderation
// @Produce json
// @Param id path int true "Content ID"
// @Success 200 {object} common.APIResponse{data=[]domain.ModerationRecordResponse}
// @Security BearerAuth
// @Router /contents/{id}/moderation [get]
func (h *ModerationHandler) History(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	records, err := h.moderationService.History(id)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, records, nil)
}

// Queue handles GET /api/v1/moderation/queue
// @Summary List content awaiting manual review
// @Description Ordered by review priority, then oldest submission first
// @Tags moderation
// @Produce json
// @Success 200 {object} common.APIResponse{data=[]domain.QueueItem}
// @Security BearerAuth
// @Router /moderation/queue [get]
func (h *ModerationHandler) Queue(c *gin.Context) {
	items, err := h.moderationService.Queue()
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, items, nil)
}
