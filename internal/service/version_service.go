package service

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/repository"
	"github.com/newsdesk/content-service/pkg/cache"
	pkglogger "github.com/newsdesk/content-service/pkg/logger"
)

// VersionService exposes the append-only version ledger: history, single
// snapshots, structured diffs and rollback. Ledger entries are immutable
// and never pruned; rollback appends a new entry rather than rewriting
// history.
type VersionService struct {
	contentRepo repository.ContentRepository
	versionRepo repository.VersionRepository
	index       SearchIndexer
	cache       cache.Service
	events      EventSink
}

// NewVersionService creates a new VersionService
func NewVersionService(
	contentRepo repository.ContentRepository,
	versionRepo repository.VersionRepository,
	index SearchIndexer,
	cacheSvc cache.Service,
	events EventSink,
) *VersionService {
	return &VersionService{
		contentRepo: contentRepo,
		versionRepo: versionRepo,
		index:       index,
		cache:       cacheSvc,
		events:      events,
	}
}

// History returns the ledger for a content item, newest first
func (s *VersionService) History(contentID uint64) ([]*domain.VersionSummary, error) {
	if _, err := s.contentRepo.FindByID(contentID); err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.FindByContentID(contentID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.VersionSummary, 0, len(versions))
	for _, v := range versions {
		out = append(out, v.ToSummary())
	}
	return out, nil
}

// GetVersion returns one full snapshot from the ledger
func (s *VersionService) GetVersion(contentID uint64, number uint) (*domain.ContentVersion, error) {
	if _, err := s.contentRepo.FindByID(contentID); err != nil {
		return nil, err
	}
	return s.versionRepo.FindByNumber(contentID, number)
}

// Diff computes the structured change set between two versions of the same
// item. Body changes are reported through length and hash indicators, not a
// textual diff. Comparing a version with itself reports no changes.
func (s *VersionService) Diff(contentID uint64, from, to uint) (*domain.VersionDiff, error) {
	if _, err := s.contentRepo.FindByID(contentID); err != nil {
		return nil, err
	}
	older, err := s.versionRepo.FindByNumber(contentID, from)
	if err != nil {
		return nil, err
	}
	newer, err := s.versionRepo.FindByNumber(contentID, to)
	if err != nil {
		return nil, err
	}

	diff := &domain.VersionDiff{
		ContentID:      contentID,
		FromVersion:    from,
		ToVersion:      to,
		Title:          fieldChange(older.Title, newer.Title),
		Excerpt:        fieldChange(older.Excerpt, newer.Excerpt),
		Status:         fieldChange(string(older.Status), string(newer.Status)),
		ContentType:    fieldChange(string(older.ContentType), string(newer.ContentType)),
		CategoryID:     fieldChange(formatCategory(older.CategoryID), formatCategory(newer.CategoryID)),
		TagIDs:         fieldChange(older.TagIDs, newer.TagIDs),
		SEOTitle:       fieldChange(older.SEOTitle, newer.SEOTitle),
		SEODescription: fieldChange(older.SEODescription, newer.SEODescription),
		SEOKeywords:    fieldChange(older.SEOKeywords, newer.SEOKeywords),
		Body: domain.BodyChange{
			Changed:   older.Body != newer.Body,
			OldLength: utf8.RuneCountInString(older.Body),
			NewLength: utf8.RuneCountInString(newer.Body),
			OldHash:   older.ContentHash,
			NewHash:   newer.ContentHash,
		},
	}
	return diff, nil
}

// Rollback restores the versioned fields of a target snapshot onto the
// current state under optimistic locking, then appends the restored state
// as a new ledger entry. The target snapshot's status is restored as-is;
// the search index is synchronized with the resulting status.
func (s *VersionService) Rollback(ctx context.Context, contentID uint64, targetVersion uint, actorID, notes string) (*domain.ContentResponse, error) {
	target, err := s.versionRepo.FindByNumber(contentID, targetVersion)
	if err != nil {
		return nil, err
	}

	content, err := applyWithRetry(s.contentRepo, contentID, func(c *domain.Content) error {
		c.ApplySnapshot(target.Snapshot())
		if c.Status == domain.StatusPublished && c.PublishedAt == nil {
			c.PublishedAt = timePtr(time.Now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	number, err := s.versionRepo.NextVersion(contentID)
	if err != nil {
		return nil, err
	}
	if notes == "" {
		notes = fmt.Sprintf("rolled back to version %d", targetVersion)
	}
	if err := s.versionRepo.Append(domain.NewContentVersion(contentID, number, content.Snapshot(), domain.VersionTypeRollback, actorID, notes)); err != nil {
		return nil, err
	}

	if content.Status == domain.StatusPublished {
		s.index.Index(buildDocument(content))
	} else {
		s.index.Remove(contentID)
	}
	if s.cache != nil {
		if err := s.cache.InvalidateContent(ctx, contentID); err != nil {
			pkglogger.GetLogger().Warn().Err(err).Uint64("content_id", contentID).Msg("cache invalidation failed")
		}
	}
	emitEvent(s.events, domain.EventContentUpdated, content, actorID)

	return content.ToResponse(), nil
}

func fieldChange(old, new string) domain.FieldChange {
	if old == new {
		return domain.FieldChange{}
	}
	return domain.FieldChange{Changed: true, Old: old, New: new}
}

func formatCategory(id *uint64) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%d", *id)
}
