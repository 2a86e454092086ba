package repository

import (
	"errors"
	"time"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"gorm.io/gorm"
)

// ContentRepository authoritative content-state data access. ApplyTransition
// is the sole mutation path for content fields; every write is guarded by
// the lock_version compare-and-swap token.
type ContentRepository interface {
	Create(content *domain.Content) error
	FindByID(id uint64) (*domain.Content, error)
	ApplyTransition(content *domain.Content, expectedLock uint64) error
	Delete(id uint64) error
	IncrementViews(id uint64) error
	ListPublished() ([]*domain.Content, error)
	ListByStatuses(statuses []domain.ContentStatus) ([]*domain.Content, error)
	ListPopular(limit int) ([]*domain.Content, error)
	CountByStatus() (map[domain.ContentStatus]int64, error)
	HashExists(hash string, excludeID uint64) (bool, error)
}

type contentRepository struct {
	db *gorm.DB
}

// NewContentRepository creates a new ContentRepository
func NewContentRepository(db *gorm.DB) ContentRepository {
	return &contentRepository{db: db}
}

func (r *contentRepository) Create(content *domain.Content) error {
	return r.db.Create(content).Error
}

func (r *contentRepository) FindByID(id uint64) (*domain.Content, error) {
	var content domain.Content
	err := r.db.First(&content, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrContentNotFound
		}
		return nil, err
	}
	return &content, nil
}

// ApplyTransition writes the item's mutable fields if and only if the stored
// lock_version still equals expectedLock. On success the item's token is
// advanced; on a CAS miss the caller gets Conflict (or NotFound if the row
// is gone). view_count is excluded so concurrent view increments are never
// overwritten by a stale value.
func (r *contentRepository) ApplyTransition(content *domain.Content, expectedLock uint64) error {
	now := time.Now()
	updates := map[string]interface{}{
		"title":           content.Title,
		"body":            content.Body,
		"excerpt":         content.Excerpt,
		"content_type":    content.ContentType,
		"status":          content.Status,
		"category_id":     content.CategoryID,
		"tag_ids":         content.TagIDs,
		"seo_title":       content.SEOTitle,
		"seo_description": content.SEODescription,
		"seo_keywords":    content.SEOKeywords,
		"content_hash":    content.ContentHash,
		"published_at":    content.PublishedAt,
		"archived_at":     content.ArchivedAt,
		"lock_version":    expectedLock + 1,
		"updated_at":      now,
	}

	res := r.db.Model(&domain.Content{}).
		Where("id = ? AND lock_version = ?", content.ID, expectedLock).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.Model(&domain.Content{}).Where("id = ?", content.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return common.ErrContentNotFound
		}
		return common.ErrConflict
	}

	content.LockVersion = expectedLock + 1
	content.UpdatedAt = now
	return nil
}

func (r *contentRepository) Delete(id uint64) error {
	res := r.db.Delete(&domain.Content{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrContentNotFound
	}
	return nil
}

func (r *contentRepository) IncrementViews(id uint64) error {
	return r.db.Model(&domain.Content{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *contentRepository) ListPublished() ([]*domain.Content, error) {
	var items []*domain.Content
	err := r.db.Where("status = ?", domain.StatusPublished).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *contentRepository) ListByStatuses(statuses []domain.ContentStatus) ([]*domain.Content, error) {
	var items []*domain.Content
	q := r.db.Order("created_at ASC")
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *contentRepository) ListPopular(limit int) ([]*domain.Content, error) {
	var items []*domain.Content
	err := r.db.Where("status = ?", domain.StatusPublished).
		Order("view_count DESC").Order("id ASC").
		Limit(limit).Find(&items).Error
	return items, err
}

func (r *contentRepository) CountByStatus() (map[domain.ContentStatus]int64, error) {
	var rows []struct {
		Status domain.ContentStatus
		Count  int64
	}
	err := r.db.Model(&domain.Content{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[domain.ContentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *contentRepository) HashExists(hash string, excludeID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&domain.Content{}).
		Where("content_hash = ? AND id <> ?", hash, excludeID).
		Count(&count).Error
	return count > 0, err
}
