package service

import (
	"context"
	"time"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/repository"
	"github.com/newsdesk/content-service/pkg/cache"
	pkglogger "github.com/newsdesk/content-service/pkg/logger"
	"github.com/newsdesk/content-service/pkg/search"
)

// excerptMaxRunes caps derived excerpts
const excerptMaxRunes = 200

// ContentService coordinates content state changes across the store, the
// version ledger and the search index. The store write always commits
// first; ledger and index follow in that order.
type ContentService struct {
	contentRepo    repository.ContentRepository
	versionRepo    repository.VersionRepository
	moderationRepo repository.ModerationRepository
	index          SearchIndexer
	cache          cache.Service
	events         EventSink
}

// NewContentService creates a new ContentService
func NewContentService(
	contentRepo repository.ContentRepository,
	versionRepo repository.VersionRepository,
	moderationRepo repository.ModerationRepository,
	index SearchIndexer,
	cacheSvc cache.Service,
	events EventSink,
) *ContentService {
	return &ContentService{
		contentRepo:    contentRepo,
		versionRepo:    versionRepo,
		moderationRepo: moderationRepo,
		index:          index,
		cache:          cacheSvc,
		events:         events,
	}
}

// Create stores a new draft and appends version 1 to the ledger
func (s *ContentService) Create(ctx context.Context, req *domain.CreateContentRequest, actorID string) (*domain.ContentResponse, error) {
	contentType := domain.ContentType(req.ContentType)
	if !contentType.Valid() {
		return nil, common.NewValidationError("content_type", "must be news, article or announcement")
	}

	content := &domain.Content{
		Title:          req.Title,
		Body:           req.Body,
		Excerpt:        req.Excerpt,
		ContentType:    contentType,
		Status:         domain.StatusDraft,
		CategoryID:     req.CategoryID,
		AuthorID:       actorID,
		SEOTitle:       req.SEOTitle,
		SEODescription: req.SEODescription,
		SEOKeywords:    req.SEOKeywords,
	}
	if content.Excerpt == "" {
		content.Excerpt = domain.DeriveExcerpt(req.Body, excerptMaxRunes)
	}
	content.SetTags(req.TagIDs)
	content.Rehash()

	if err := s.contentRepo.Create(content); err != nil {
		return nil, err
	}
	if err := s.appendVersion(content, domain.VersionTypeAuto, actorID, "created"); err != nil {
		return nil, err
	}

	emitEvent(s.events, domain.EventContentCreated, content, actorID)
	return content.ToResponse(), nil
}

// Get returns a content item, served from cache when possible. View counts
// are incremented off the request path and do not touch the CAS token.
func (s *ContentService) Get(ctx context.Context, id uint64) (*domain.ContentResponse, error) {
	if s.cache != nil {
		var cached domain.ContentResponse
		if err := s.cache.GetContent(ctx, id, &cached); err == nil {
			s.countView(id)
			return &cached, nil
		}
	}

	content, err := s.contentRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	resp := content.ToResponse()

	if s.cache != nil {
		if err := s.cache.SetContent(ctx, id, resp); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Uint64("content_id", id).Msg("cache write failed")
		}
	}
	s.countView(id)
	return resp, nil
}

// List returns content items filtered by status; an empty filter returns
// every item
func (s *ContentService) List(statuses []string) ([]*domain.ContentResponse, error) {
	filter := make([]domain.ContentStatus, 0, len(statuses))
	for _, raw := range statuses {
		filter = append(filter, domain.ContentStatus(raw))
	}
	contents, err := s.contentRepo.ListByStatuses(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ContentResponse, 0, len(contents))
	for _, c := range contents {
		out = append(out, c.ToResponse())
	}
	return out, nil
}

// Update applies a client-driven edit under optimistic locking. The caller
// echoes the lock version it observed; a mismatch returns Conflict without
// retrying, the caller must re-read and resubmit. Each effective change
// appends a manual version; published items are re-indexed in place.
func (s *ContentService) Update(ctx context.Context, id uint64, req *domain.UpdateContentRequest, actorID string) (*domain.ContentResponse, error) {
	content, err := s.contentRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	switch content.Status {
	case domain.StatusDraft, domain.StatusPublished, domain.StatusRejected:
	default:
		return nil, &common.TransitionError{From: string(content.Status), To: string(content.Status)}
	}

	expectedLock := *req.LockVersion
	if content.LockVersion != expectedLock {
		return nil, common.ErrConflict
	}

	before := content.Snapshot()
	bodyChanged := applyUpdate(content, req)
	if content.Snapshot() == before {
		return content.ToResponse(), nil
	}
	if bodyChanged && req.Excerpt == nil {
		content.Excerpt = domain.DeriveExcerpt(content.Body, excerptMaxRunes)
	}
	content.Rehash()

	if err := s.contentRepo.ApplyTransition(content, expectedLock); err != nil {
		return nil, err
	}

	notes := req.Notes
	if notes == "" {
		notes = "updated"
	}
	if err := s.appendVersion(content, domain.VersionTypeManual, actorID, notes); err != nil {
		return nil, err
	}

	if content.Status == domain.StatusPublished {
		s.index.Index(buildDocument(content))
	}
	s.invalidate(ctx, id)
	emitEvent(s.events, domain.EventContentUpdated, content, actorID)
	return content.ToResponse(), nil
}

// Archive retires a published item. The index entry is removed before the
// call returns so no later search can observe it.
func (s *ContentService) Archive(ctx context.Context, id uint64, actorID string) (*domain.ContentResponse, error) {
	content, err := applyWithRetry(s.contentRepo, id, func(c *domain.Content) error {
		if !domain.CanTransition(c.Status, domain.StatusArchived) {
			return &common.TransitionError{From: string(c.Status), To: string(domain.StatusArchived)}
		}
		c.Status = domain.StatusArchived
		c.ArchivedAt = timePtr(time.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.appendVersion(content, domain.VersionTypeAuto, actorID, "archived"); err != nil {
		return nil, err
	}

	s.index.Remove(id)
	s.invalidate(ctx, id)
	emitEvent(s.events, domain.EventContentUpdated, content, actorID)
	return content.ToResponse(), nil
}

// Delete permanently removes a content item with its ledger, moderation
// history, index entry and cached copies
func (s *ContentService) Delete(ctx context.Context, id uint64, actorID string) error {
	content, err := s.contentRepo.FindByID(id)
	if err != nil {
		return err
	}

	if err := s.contentRepo.Delete(id); err != nil {
		return err
	}
	if err := s.versionRepo.DeleteByContentID(id); err != nil {
		return err
	}
	if err := s.moderationRepo.DeleteByContentID(id); err != nil {
		return err
	}
	s.index.Remove(id)
	s.invalidate(ctx, id)
	emitEvent(s.events, domain.EventContentDeleted, content, actorID)
	return nil
}

// Reindex rebuilds the search index from every published item in the store
// and returns the number of indexed documents
func (s *ContentService) Reindex() (int, error) {
	published, err := s.contentRepo.ListPublished()
	if err != nil {
		return 0, err
	}
	docs := make([]search.Document, 0, len(published))
	for _, c := range published {
		docs = append(docs, buildDocument(c))
	}
	s.index.Rebuild(docs)
	return len(docs), nil
}

func (s *ContentService) appendVersion(content *domain.Content, versionType, actorID, notes string) error {
	number, err := s.versionRepo.NextVersion(content.ID)
	if err != nil {
		return err
	}
	return s.versionRepo.Append(domain.NewContentVersion(content.ID, number, content.Snapshot(), versionType, actorID, notes))
}

func (s *ContentService) countView(id uint64) {
	go func() {
		if err := s.contentRepo.IncrementViews(id); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Uint64("content_id", id).Msg("view count update failed")
		}
	}()
}

func (s *ContentService) invalidate(ctx context.Context, id uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateContent(ctx, id); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Uint64("content_id", id).Msg("cache invalidation failed")
	}
}

// applyUpdate copies the set fields of the request onto the row and reports
// whether the body changed
func applyUpdate(c *domain.Content, req *domain.UpdateContentRequest) bool {
	bodyChanged := false
	if req.Title != nil {
		c.Title = *req.Title
	}
	if req.Body != nil && *req.Body != c.Body {
		c.Body = *req.Body
		bodyChanged = true
	}
	if req.Excerpt != nil {
		c.Excerpt = *req.Excerpt
	}
	if req.CategoryID != nil {
		c.CategoryID = req.CategoryID
	}
	if req.TagIDs != nil {
		c.SetTags(req.TagIDs)
	}
	if req.SEOTitle != nil {
		c.SEOTitle = *req.SEOTitle
	}
	if req.SEODescription != nil {
		c.SEODescription = *req.SEODescription
	}
	if req.SEOKeywords != nil {
		c.SEOKeywords = *req.SEOKeywords
	}
	return bodyChanged
}
