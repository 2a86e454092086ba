package service

import (
	"context"

	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/repository"
	"github.com/newsdesk/content-service/pkg/cache"
	pkglogger "github.com/newsdesk/content-service/pkg/logger"
)

const statsCacheKey = cache.PrefixStats + "overview"

// StatsResponse is the operational overview of the content pipeline
type StatsResponse struct {
	StatusCounts       map[string]int64 `json:"status_counts"`
	TotalVersions      int64            `json:"total_versions"`
	AutomatedDecisions int64            `json:"automated_decisions"`
	ManualDecisions    int64            `json:"manual_decisions"`
	AutomationRate     float64          `json:"automation_rate"`
	IndexedDocuments   int              `json:"indexed_documents"`
}

// AnalyticsService serves read-only aggregates: popular content and
// pipeline statistics. Both are cached; staleness within the TTL is
// acceptable.
type AnalyticsService struct {
	contentRepo    repository.ContentRepository
	versionRepo    repository.VersionRepository
	moderationRepo repository.ModerationRepository
	index          SearchIndexer
	cache          cache.Service
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(
	contentRepo repository.ContentRepository,
	versionRepo repository.VersionRepository,
	moderationRepo repository.ModerationRepository,
	index SearchIndexer,
	cacheSvc cache.Service,
) *AnalyticsService {
	return &AnalyticsService{
		contentRepo:    contentRepo,
		versionRepo:    versionRepo,
		moderationRepo: moderationRepo,
		index:          index,
		cache:          cacheSvc,
	}
}

// Popular returns the most viewed published items
func (s *AnalyticsService) Popular(ctx context.Context, limit int) ([]*domain.ContentResponse, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	if s.cache != nil {
		var cached []*domain.ContentResponse
		if err := s.cache.GetPopular(ctx, limit, &cached); err == nil {
			return cached, nil
		}
	}

	contents, err := s.contentRepo.ListPopular(limit)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ContentResponse, 0, len(contents))
	for _, c := range contents {
		out = append(out, c.ToResponse())
	}

	if s.cache != nil {
		if err := s.cache.SetPopular(ctx, limit, out); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("popular cache write failed")
		}
	}
	return out, nil
}

// Stats returns the pipeline overview
func (s *AnalyticsService) Stats(ctx context.Context) (*StatsResponse, error) {
	if s.cache != nil {
		var cached StatsResponse
		if err := s.cache.Get(ctx, statsCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	statusCounts, err := s.contentRepo.CountByStatus()
	if err != nil {
		return nil, err
	}
	totalVersions, err := s.versionRepo.Count()
	if err != nil {
		return nil, err
	}
	automated, err := s.moderationRepo.CountDecided(true)
	if err != nil {
		return nil, err
	}
	manual, err := s.moderationRepo.CountDecided(false)
	if err != nil {
		return nil, err
	}

	stats := &StatsResponse{
		StatusCounts:       make(map[string]int64, len(statusCounts)),
		TotalVersions:      totalVersions,
		AutomatedDecisions: automated,
		ManualDecisions:    manual,
		IndexedDocuments:   s.index.DocCount(),
	}
	for status, count := range statusCounts {
		stats.StatusCounts[string(status)] = count
	}
	if total := automated + manual; total > 0 {
		stats.AutomationRate = float64(automated) / float64(total)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, statsCacheKey, stats, cache.TTLStats); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Msg("stats cache write failed")
		}
	}
	return stats, nil
}
