package repository

import (
	"errors"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"gorm.io/gorm"
)

// VersionRepository append-only ledger data access. Entries are immutable;
// the only delete path is whole-item purge.
type VersionRepository interface {
	Append(version *domain.ContentVersion) error
	NextVersion(contentID uint64) (uint, error)
	FindByContentID(contentID uint64) ([]*domain.ContentVersion, error)
	FindByNumber(contentID uint64, number uint) (*domain.ContentVersion, error)
	CountByContentID(contentID uint64) (int64, error)
	Count() (int64, error)
	DeleteByContentID(contentID uint64) error
}

type versionRepository struct {
	db *gorm.DB
}

// NewVersionRepository creates a new VersionRepository
func NewVersionRepository(db *gorm.DB) VersionRepository {
	return &versionRepository{db: db}
}

func (r *versionRepository) Append(version *domain.ContentVersion) error {
	return r.db.Create(version).Error
}

func (r *versionRepository) NextVersion(contentID uint64) (uint, error) {
	var maxVersion *uint
	err := r.db.Model(&domain.ContentVersion{}).
		Where("content_id = ?", contentID).
		Select("MAX(version_number)").
		Scan(&maxVersion).Error
	if err != nil {
		return 1, err
	}
	if maxVersion == nil {
		return 1, nil
	}
	return *maxVersion + 1, nil
}

func (r *versionRepository) FindByContentID(contentID uint64) ([]*domain.ContentVersion, error) {
	var versions []*domain.ContentVersion
	err := r.db.Where("content_id = ?", contentID).Order("version_number DESC").Find(&versions).Error
	return versions, err
}

func (r *versionRepository) FindByNumber(contentID uint64, number uint) (*domain.ContentVersion, error) {
	var version domain.ContentVersion
	err := r.db.Where("content_id = ? AND version_number = ?", contentID, number).First(&version).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrVersionNotFound
		}
		return nil, err
	}
	return &version, nil
}

func (r *versionRepository) CountByContentID(contentID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&domain.ContentVersion{}).Where("content_id = ?", contentID).Count(&count).Error
	return count, err
}

func (r *versionRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.ContentVersion{}).Count(&count).Error
	return count, err
}

func (r *versionRepository) DeleteByContentID(contentID uint64) error {
	return r.db.Where("content_id = ?", contentID).Delete(&domain.ContentVersion{}).Error
}
