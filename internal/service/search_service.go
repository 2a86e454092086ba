package service

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/config"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/repository"
	pkglogger "github.com/newsdesk/content-service/pkg/logger"
	"github.com/newsdesk/content-service/pkg/search"
)

// SearchParams is a parsed search request
type SearchParams struct {
	Query       string
	CategoryID  uint64
	TagID       uint64
	ContentType string
	DateFrom    *time.Time
	DateTo      *time.Time
	Page        int
	PerPage     int
}

// SearchResponse pairs ranked hits with their hydrated items
type SearchResponse struct {
	Total       int                       `json:"total"`
	Page        int                       `json:"page"`
	PerPage     int                       `json:"per_page"`
	TotalPages  int                       `json:"total_pages"`
	Hits        []search.Hit              `json:"hits"`
	Items       []*domain.ContentResponse `json:"items"`
	Facets      search.Facets             `json:"facets"`
	Suggestions []string                  `json:"suggestions,omitempty"`
}

// SearchService fronts the in-process index: query validation, pagination
// clamping and hit hydration from the content store
type SearchService struct {
	index       SearchIndexer
	contentRepo repository.ContentRepository
	cfg         config.SearchConfig
}

// NewSearchService creates a new SearchService
func NewSearchService(index SearchIndexer, contentRepo repository.ContentRepository, cfg config.SearchConfig) *SearchService {
	if cfg.MinQueryLength <= 0 {
		cfg.MinQueryLength = 2
	}
	if cfg.DefaultPerPage <= 0 {
		cfg.DefaultPerPage = 20
	}
	if cfg.MaxPerPage <= 0 {
		cfg.MaxPerPage = 50
	}
	return &SearchService{index: index, contentRepo: contentRepo, cfg: cfg}
}

// Search runs a ranked query over published content. An empty query text
// with filters set serves faceted browsing.
func (s *SearchService) Search(params SearchParams) (*SearchResponse, error) {
	text := strings.TrimSpace(params.Query)
	if text != "" && utf8.RuneCountInString(text) < s.cfg.MinQueryLength {
		return nil, common.NewValidationError("q", "query is too short")
	}
	if params.ContentType != "" && !domain.ContentType(params.ContentType).Valid() {
		return nil, common.NewValidationError("content_type", "must be news, article or announcement")
	}

	perPage := params.PerPage
	if perPage <= 0 {
		perPage = s.cfg.DefaultPerPage
	}
	if perPage > s.cfg.MaxPerPage {
		perPage = s.cfg.MaxPerPage
	}
	page := params.Page
	if page < 1 {
		page = 1
	}

	result := s.index.Search(search.Query{
		Text:        text,
		CategoryID:  params.CategoryID,
		TagID:       params.TagID,
		ContentType: params.ContentType,
		DateFrom:    params.DateFrom,
		DateTo:      params.DateTo,
		Page:        page,
		PerPage:     perPage,
	})

	items := make([]*domain.ContentResponse, 0, len(result.Hits))
	for _, hit := range result.Hits {
		content, err := s.contentRepo.FindByID(hit.ID)
		if err != nil {
			// index can briefly lead the store after a hard delete
			pkglogger.GetLogger().Warn().Err(err).Uint64("content_id", hit.ID).Msg("search hit missing from store")
			continue
		}
		items = append(items, content.ToResponse())
	}

	return &SearchResponse{
		Total:       result.Total,
		Page:        result.Page,
		PerPage:     result.PerPage,
		TotalPages:  result.TotalPages,
		Hits:        result.Hits,
		Items:       items,
		Facets:      result.Facets,
		Suggestions: result.Suggestions,
	}, nil
}

// Autocomplete returns prefix completions from indexed titles and keywords
func (s *SearchService) Autocomplete(prefix string, limit int) ([]string, error) {
	prefix = strings.TrimSpace(prefix)
	if utf8.RuneCountInString(prefix) < s.cfg.MinQueryLength {
		return nil, common.NewValidationError("q", "prefix is too short")
	}
	return s.index.Autocomplete(prefix, limit), nil
}
