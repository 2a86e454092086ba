package service

import (
	"errors"
	"time"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/repository"
	"github.com/newsdesk/content-service/pkg/search"
)

// maxCASRetries bounds internal retry loops on optimistic-lock conflicts
// for server-driven transitions. Client-driven updates never retry; the
// conflict is surfaced to the caller instead.
const maxCASRetries = 3

// SearchIndexer is the search surface the services depend on. *search.Index
// satisfies it; tests substitute a mock.
type SearchIndexer interface {
	Index(doc search.Document)
	Remove(id uint64)
	Rebuild(docs []search.Document)
	Search(q search.Query) *search.Result
	Autocomplete(prefix string, limit int) []string
	Contains(id uint64) bool
	DocCount() int
}

// buildDocument projects a content row into its search document. SEO
// keywords fill the tag slot so they carry tag weight and feed autocomplete.
func buildDocument(c *domain.Content) search.Document {
	publishedAt := c.CreatedAt
	if c.PublishedAt != nil {
		publishedAt = *c.PublishedAt
	}
	var categoryID uint64
	if c.CategoryID != nil {
		categoryID = *c.CategoryID
	}
	return search.Document{
		ID:          c.ID,
		Title:       c.Title,
		Body:        c.Body,
		Tags:        c.Keywords(),
		TagIDs:      c.Tags(),
		CategoryID:  categoryID,
		ContentType: string(c.ContentType),
		PublishedAt: publishedAt,
		ViewCount:   c.ViewCount,
	}
}

// applyWithRetry runs a server-driven transition under optimistic locking.
// mutate receives a freshly loaded row each attempt; ErrConflict triggers a
// reload, any other error aborts.
func applyWithRetry(repo repository.ContentRepository, id uint64, mutate func(c *domain.Content) error) (*domain.Content, error) {
	for attempt := 0; attempt < maxCASRetries; attempt++ {
		content, err := repo.FindByID(id)
		if err != nil {
			return nil, err
		}
		expectedLock := content.LockVersion
		if err := mutate(content); err != nil {
			return nil, err
		}
		err = repo.ApplyTransition(content, expectedLock)
		if errors.Is(err, common.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return content, nil
	}
	return nil, common.ErrConflict
}

func timePtr(t time.Time) *time.Time {
	return &t
}
