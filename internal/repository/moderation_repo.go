package repository

import (
	"errors"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"gorm.io/gorm"
)

// ModerationRepository moderation audit-record data access. Records are
// append-only; superseded cycles stay in place.
type ModerationRepository interface {
	Create(record *domain.ModerationRecord) error
	LatestByContentID(contentID uint64) (*domain.ModerationRecord, error)
	NextCycle(contentID uint64) (uint, error)
	ListByContentID(contentID uint64) ([]*domain.ModerationRecord, error)
	CountDecided(automated bool) (int64, error)
	DeleteByContentID(contentID uint64) error
}

type moderationRepository struct {
	db *gorm.DB
}

// NewModerationRepository creates a new ModerationRepository
func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

func (r *moderationRepository) Create(record *domain.ModerationRecord) error {
	return r.db.Create(record).Error
}

func (r *moderationRepository) LatestByContentID(contentID uint64) (*domain.ModerationRecord, error) {
	var record domain.ModerationRecord
	err := r.db.Where("content_id = ?", contentID).
		Order("id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

func (r *moderationRepository) NextCycle(contentID uint64) (uint, error) {
	var maxCycle *uint
	err := r.db.Model(&domain.ModerationRecord{}).
		Where("content_id = ?", contentID).
		Select("MAX(cycle)").
		Scan(&maxCycle).Error
	if err != nil {
		return 1, err
	}
	if maxCycle == nil {
		return 1, nil
	}
	return *maxCycle + 1, nil
}

func (r *moderationRepository) ListByContentID(contentID uint64) ([]*domain.ModerationRecord, error) {
	var records []*domain.ModerationRecord
	err := r.db.Where("content_id = ?", contentID).Order("id DESC").Find(&records).Error
	return records, err
}

func (r *moderationRepository) CountDecided(automated bool) (int64, error) {
	var count int64
	err := r.db.Model(&domain.ModerationRecord{}).
		Where("decided_at IS NOT NULL AND automated = ?", automated).
		Count(&count).Error
	return count, err
}

func (r *moderationRepository) DeleteByContentID(contentID uint64) error {
	return r.db.Where("content_id = ?", contentID).Delete(&domain.ModerationRecord{}).Error
}
