package migration

import (
	"github.com/newsdesk/content-service/internal/domain"
	"gorm.io/gorm"
)

// Run executes AutoMigrate for the content tables
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Content{},
		&domain.ContentVersion{},
		&domain.ModerationRecord{},
	)
}
