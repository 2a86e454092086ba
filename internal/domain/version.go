package domain

import "time"

// Version types
const (
	VersionTypeAuto     = "auto"
	VersionTypeManual   = "manual"
	VersionTypeRollback = "rollback"
)

// ContentVersion is one immutable snapshot in the append-only ledger.
// (content_id, version_number) identifies it; version numbers are gap-free
// and strictly increasing per content item, never reused.
type ContentVersion struct {
	ID             uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID      uint64        `gorm:"column:content_id;uniqueIndex:idx_content_version,priority:1" json:"content_id"`
	VersionNumber  uint          `gorm:"column:version_number;uniqueIndex:idx_content_version,priority:2" json:"version_number"`
	VersionType    string        `gorm:"column:version_type;type:varchar(20)" json:"version_type"`
	Title          string        `gorm:"column:title;type:varchar(255)" json:"title"`
	Body           string        `gorm:"column:body;type:mediumtext" json:"body"`
	Excerpt        string        `gorm:"column:excerpt;type:varchar(500)" json:"excerpt"`
	Status         ContentStatus `gorm:"column:status;type:varchar(20)" json:"status"`
	ContentType    ContentType   `gorm:"column:content_type;type:varchar(20)" json:"content_type"`
	CategoryID     *uint64       `gorm:"column:category_id" json:"category_id,omitempty"`
	TagIDs         string        `gorm:"column:tag_ids;type:json" json:"tag_ids,omitempty"`
	SEOTitle       string        `gorm:"column:seo_title;type:varchar(255)" json:"seo_title,omitempty"`
	SEODescription string        `gorm:"column:seo_description;type:varchar(500)" json:"seo_description,omitempty"`
	SEOKeywords    string        `gorm:"column:seo_keywords;type:varchar(500)" json:"seo_keywords,omitempty"`
	ContentHash    string        `gorm:"column:content_hash;type:char(64)" json:"content_hash"`
	CreatedBy      string        `gorm:"column:created_by;type:varchar(100)" json:"created_by,omitempty"`
	Notes          string        `gorm:"column:notes;type:varchar(500)" json:"notes,omitempty"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ContentVersion) TableName() string { return "content_versions" }

// Snapshot returns the versioned fields held by this ledger entry
func (v *ContentVersion) Snapshot() Snapshot {
	return Snapshot{
		Title:          v.Title,
		Body:           v.Body,
		Excerpt:        v.Excerpt,
		Status:         v.Status,
		ContentType:    v.ContentType,
		CategoryID:     v.CategoryID,
		TagIDs:         v.TagIDs,
		SEOTitle:       v.SEOTitle,
		SEODescription: v.SEODescription,
		SEOKeywords:    v.SEOKeywords,
	}
}

// NewContentVersion builds a ledger entry from a snapshot
func NewContentVersion(contentID uint64, number uint, s Snapshot, versionType, actor, notes string) *ContentVersion {
	return &ContentVersion{
		ContentID:      contentID,
		VersionNumber:  number,
		VersionType:    versionType,
		Title:          s.Title,
		Body:           s.Body,
		Excerpt:        s.Excerpt,
		Status:         s.Status,
		ContentType:    s.ContentType,
		CategoryID:     s.CategoryID,
		TagIDs:         s.TagIDs,
		SEOTitle:       s.SEOTitle,
		SEODescription: s.SEODescription,
		SEOKeywords:    s.SEOKeywords,
		ContentHash:    ContentHashOf(s.Title, s.Body),
		CreatedBy:      actor,
		Notes:          notes,
	}
}

// VersionSummary is the list-view projection of a ledger entry
type VersionSummary struct {
	VersionNumber uint      `json:"version_number"`
	VersionType   string    `json:"version_type"`
	Status        string    `json:"status"`
	CreatedBy     string    `json:"created_by,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToSummary converts to the list-view projection
func (v *ContentVersion) ToSummary() *VersionSummary {
	return &VersionSummary{
		VersionNumber: v.VersionNumber,
		VersionType:   v.VersionType,
		Status:        string(v.Status),
		CreatedBy:     v.CreatedBy,
		Notes:         v.Notes,
		CreatedAt:     v.CreatedAt,
	}
}

// FieldChange reports whether a scalar versioned field changed between two
// versions, with old/new values when it did
type FieldChange struct {
	Changed bool   `json:"changed"`
	Old     string `json:"old,omitempty"`
	New     string `json:"new,omitempty"`
}

// BodyChange reports body changes via length and content-hash indicators
// rather than a full textual diff
type BodyChange struct {
	Changed   bool   `json:"changed"`
	OldLength int    `json:"old_length"`
	NewLength int    `json:"new_length"`
	OldHash   string `json:"old_hash"`
	NewHash   string `json:"new_hash"`
}

// VersionDiff is the structured change set between two versions of the same
// content item
type VersionDiff struct {
	ContentID      uint64      `json:"content_id"`
	FromVersion    uint        `json:"from_version"`
	ToVersion      uint        `json:"to_version"`
	Title          FieldChange `json:"title"`
	Excerpt        FieldChange `json:"excerpt"`
	Status         FieldChange `json:"status"`
	ContentType    FieldChange `json:"content_type"`
	CategoryID     FieldChange `json:"category_id"`
	TagIDs         FieldChange `json:"tag_ids"`
	SEOTitle       FieldChange `json:"seo_title"`
	SEODescription FieldChange `json:"seo_description"`
	SEOKeywords    FieldChange `json:"seo_keywords"`
	Body           BodyChange  `json:"body"`
}
