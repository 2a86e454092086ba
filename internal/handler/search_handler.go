package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/service"
)

// SearchHandler handles search and autocomplete endpoints
type SearchHandler struct {
	searchService *service.SearchService
}

// NewSearchHandler creates a new SearchHandler
func NewSearchHandler(searchService *service.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles GET /api/v1/search?q=keyword&category_id=3&tag_id=7&content_type=news&page=1&per_page=20
// @Summary Search published content
// @Description Ranked full-text search with facets; empty q with filters browses the filtered set
// @Tags search
// @Produce json
// @Param q query string false "Query text"
// @Param category_id query int false "Category filter"
// @Param tag_id query int false "Tag filter"
// @Param content_type query string false "Content type filter"
// @Param date_from query string false "Published-after filter (RFC 3339)"
// @Param date_to query string false "Published-before filter (RFC 3339)"
// @Param page query int false "Page number"
// @Param per_page query int false "Page size"
// @Success 200 {object} common.APIResponse{data=service.SearchResponse}
// @Failure 400 {object} common.APIResponse
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	params := service.SearchParams{
		Query:       c.Query("q"),
		ContentType: c.Query("content_type"),
	}
	if val, err := strconv.ParseUint(c.Query("category_id"), 10, 64); err == nil {
		params.CategoryID = val
	}
	if val, err := strconv.ParseUint(c.Query("tag_id"), 10, 64); err == nil {
		params.TagID = val
	}
	if val, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		params.Page = val
	}
	if val, err := strconv.Atoi(c.DefaultQuery("per_page", "0")); err == nil {
		params.PerPage = val
	}
	var ok bool
	if params.DateFrom, ok = parseDateParam(c, "date_from"); !ok {
		return
	}
	if params.DateTo, ok = parseDateParam(c, "date_to"); !ok {
		return
	}

	result, err := h.searchService.Search(params)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, result, common.NewMeta(result.Page, result.PerPage, int64(result.Total)))
}

// parseDateParam parses an optional RFC 3339 query parameter; a malformed
// value writes a field-level 400 and returns ok=false
func parseDateParam(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	val, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		common.DomainErrorResponse(c, common.NewValidationError(name, "must be an RFC 3339 timestamp"))
		return nil, false
	}
	return &val, true
}

// Autocomplete handles GET /api/v1/search/autocomplete?q=prefix&size=10
// @Summary Autocomplete from indexed titles and keywords
// @Tags search
// @Produce json
// @Param q query string true "Prefix"
// @Param size query int false "Maximum suggestions"
// @Success 200 {object} common.APIResponse{data=[]string}
// @Failure 400 {object} common.APIResponse
// @Router /search/autocomplete [get]
func (h *SearchHandler) Autocomplete(c *gin.Context) {
	size := 10
	if val, err := strconv.Atoi(c.DefaultQuery("size", "10")); err == nil {
		size = val
	}

	suggestions, err := h.searchService.Autocomplete(c.Query("q"), size)
	if err != nil {
		common.DomainErrorResponse(c, err)
		return
	}
	common.SuccessResponse(c, suggestions, nil)
}
