package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"
)

// ContentType closed set of editorial content kinds
type ContentType string

const (
	TypeNews         ContentType = "news"
	TypeArticle      ContentType = "article"
	TypeAnnouncement ContentType = "announcement"
)

// Valid reports whether t is a known content type
func (t ContentType) Valid() bool {
	switch t {
	case TypeNews, TypeArticle, TypeAnnouncement:
		return true
	}
	return false
}

// ContentStatus lifecycle states
type ContentStatus string

const (
	StatusDraft     ContentStatus = "draft"
	StatusPending   ContentStatus = "pending"
	StatusPublished ContentStatus = "published"
	StatusArchived  ContentStatus = "archived"
	StatusRejected  ContentStatus = "rejected"
)

// allowedTransitions is the lifecycle state machine. Rollback restores a
// snapshot's status directly and is validated separately.
var allowedTransitions = map[ContentStatus][]ContentStatus{
	StatusDraft:     {StatusPending},
	StatusPending:   {StatusPublished, StatusRejected},
	StatusPublished: {StatusArchived},
	StatusRejected:  {StatusPending},
	StatusArchived:  {StatusPending},
}

// CanTransition reports whether the lifecycle allows moving from one status
// to another
func CanTransition(from, to ContentStatus) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Content is the authoritative current-state record for a content item.
// All field mutations go through the repository's compare-and-swap path;
// LockVersion is the CAS token callers must echo back.
type Content struct {
	ID             uint64        `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title          string        `gorm:"column:title;type:varchar(255)" json:"title"`
	Body           string        `gorm:"column:body;type:mediumtext" json:"body"`
	Excerpt        string        `gorm:"column:excerpt;type:varchar(500)" json:"excerpt"`
	ContentType    ContentType   `gorm:"column:content_type;type:varchar(20);index" json:"content_type"`
	Status         ContentStatus `gorm:"column:status;type:varchar(20);index" json:"status"`
	CategoryID     *uint64       `gorm:"column:category_id;index" json:"category_id,omitempty"`
	TagIDs         string        `gorm:"column:tag_ids;type:json" json:"-"`
	AuthorID       string        `gorm:"column:author_id;type:varchar(100);index" json:"author_id,omitempty"`
	SEOTitle       string        `gorm:"column:seo_title;type:varchar(255)" json:"seo_title,omitempty"`
	SEODescription string        `gorm:"column:seo_description;type:varchar(500)" json:"seo_description,omitempty"`
	SEOKeywords    string        `gorm:"column:seo_keywords;type:varchar(500)" json:"seo_keywords,omitempty"`
	ViewCount      uint64        `gorm:"column:view_count;default:0" json:"view_count"`
	ContentHash    string        `gorm:"column:content_hash;type:char(64);index" json:"-"`
	LockVersion    uint64        `gorm:"column:lock_version;default:0" json:"lock_version"`
	CreatedAt      time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	PublishedAt    *time.Time    `gorm:"column:published_at" json:"published_at,omitempty"`
	ArchivedAt     *time.Time    `gorm:"column:archived_at" json:"archived_at,omitempty"`
}

func (Content) TableName() string { return "contents" }

// Tags decodes the tag id set
func (c *Content) Tags() []uint64 {
	if c.TagIDs == "" {
		return nil
	}
	var ids []uint64
	if err := json.Unmarshal([]byte(c.TagIDs), &ids); err != nil {
		return nil
	}
	return ids
}

// SetTags encodes the tag id set
func (c *Content) SetTags(ids []uint64) {
	if len(ids) == 0 {
		c.TagIDs = ""
		return
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return
	}
	c.TagIDs = string(data)
}

// Keywords splits the SEO keyword list; these feed the tag-weighted slot of
// the search index and its autocomplete vocabulary.
func (c *Content) Keywords() []string {
	if c.SEOKeywords == "" {
		return nil
	}
	parts := strings.Split(c.SEOKeywords, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Hash returns the content hash over title and body, used for duplicate
// detection and diff change indicators
func ContentHashOf(title, body string) string {
	sum := sha256.Sum256([]byte(title + "\x00" + body))
	return hex.EncodeToString(sum[:])
}

// Rehash refreshes the stored content hash
func (c *Content) Rehash() {
	c.ContentHash = ContentHashOf(c.Title, c.Body)
}

// Snapshot captures the versioned fields for the ledger
type Snapshot struct {
	Title          string        `json:"title"`
	Body           string        `json:"body"`
	Excerpt        string        `json:"excerpt"`
	Status         ContentStatus `json:"status"`
	ContentType    ContentType   `json:"content_type"`
	CategoryID     *uint64       `json:"category_id,omitempty"`
	TagIDs         string        `json:"tag_ids,omitempty"`
	SEOTitle       string        `json:"seo_title,omitempty"`
	SEODescription string        `json:"seo_description,omitempty"`
	SEOKeywords    string        `json:"seo_keywords,omitempty"`
}

// Snapshot returns the item's current versioned fields
func (c *Content) Snapshot() Snapshot {
	return Snapshot{
		Title:          c.Title,
		Body:           c.Body,
		Excerpt:        c.Excerpt,
		Status:         c.Status,
		ContentType:    c.ContentType,
		CategoryID:     c.CategoryID,
		TagIDs:         c.TagIDs,
		SEOTitle:       c.SEOTitle,
		SEODescription: c.SEODescription,
		SEOKeywords:    c.SEOKeywords,
	}
}

// ApplySnapshot restores versioned fields from a ledger snapshot
func (c *Content) ApplySnapshot(s Snapshot) {
	c.Title = s.Title
	c.Body = s.Body
	c.Excerpt = s.Excerpt
	c.Status = s.Status
	c.ContentType = s.ContentType
	c.CategoryID = s.CategoryID
	c.TagIDs = s.TagIDs
	c.SEOTitle = s.SEOTitle
	c.SEODescription = s.SEODescription
	c.SEOKeywords = s.SEOKeywords
	c.Rehash()
}

// DeriveExcerpt builds an excerpt from the body when none is supplied:
// HTML tags stripped, whitespace collapsed, truncated at a rune boundary.
func DeriveExcerpt(body string, maxRunes int) string {
	var b strings.Builder
	inTag := false
	for _, r := range body {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	clean := strings.Join(strings.Fields(b.String()), " ")
	if utf8.RuneCountInString(clean) <= maxRunes {
		return clean
	}
	runes := []rune(clean)
	return strings.TrimSpace(string(runes[:maxRunes])) + "…"
}

// CreateContentRequest payload for creating a draft
type CreateContentRequest struct {
	Title          string   `json:"title" binding:"required,max=255"`
	Body           string   `json:"body" binding:"required"`
	Excerpt        string   `json:"excerpt"`
	ContentType    string   `json:"content_type" binding:"required,oneof=news article announcement"`
	CategoryID     *uint64  `json:"category_id"`
	TagIDs         []uint64 `json:"tag_ids"`
	SEOTitle       string   `json:"seo_title"`
	SEODescription string   `json:"seo_description"`
	SEOKeywords    string   `json:"seo_keywords"`
}

// UpdateContentRequest payload for updating an item. LockVersion is the CAS
// token observed by the caller; a mismatch yields Conflict.
type UpdateContentRequest struct {
	Title          *string  `json:"title"`
	Body           *string  `json:"body"`
	Excerpt        *string  `json:"excerpt"`
	CategoryID     *uint64  `json:"category_id"`
	TagIDs         []uint64 `json:"tag_ids"`
	SEOTitle       *string  `json:"seo_title"`
	SEODescription *string  `json:"seo_description"`
	SEOKeywords    *string  `json:"seo_keywords"`
	LockVersion    *uint64  `json:"lock_version" binding:"required"`
	Notes          string   `json:"notes"`
}

// RollbackRequest payload for a point-in-time rollback
type RollbackRequest struct {
	TargetVersion uint   `json:"target_version" binding:"required,min=1"`
	Notes         string `json:"notes"`
}

// ContentResponse is the external representation of a content item
type ContentResponse struct {
	ID             uint64     `json:"id"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	Excerpt        string     `json:"excerpt"`
	ContentType    string     `json:"content_type"`
	Status         string     `json:"status"`
	CategoryID     *uint64    `json:"category_id,omitempty"`
	TagIDs         []uint64   `json:"tag_ids,omitempty"`
	AuthorID       string     `json:"author_id,omitempty"`
	SEOTitle       string     `json:"seo_title,omitempty"`
	SEODescription string     `json:"seo_description,omitempty"`
	SEOKeywords    string     `json:"seo_keywords,omitempty"`
	ViewCount      uint64     `json:"view_count"`
	LockVersion    uint64     `json:"lock_version"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	PublishedAt    *time.Time `json:"published_at,omitempty"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}

// ToResponse converts to the external representation
func (c *Content) ToResponse() *ContentResponse {
	return &ContentResponse{
		ID:             c.ID,
		Title:          c.Title,
		Body:           c.Body,
		Excerpt:        c.Excerpt,
		ContentType:    string(c.ContentType),
		Status:         string(c.Status),
		CategoryID:     c.CategoryID,
		TagIDs:         c.Tags(),
		AuthorID:       c.AuthorID,
		SEOTitle:       c.SEOTitle,
		SEODescription: c.SEODescription,
		SEOKeywords:    c.SEOKeywords,
		ViewCount:      c.ViewCount,
		LockVersion:    c.LockVersion,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		PublishedAt:    c.PublishedAt,
		ArchivedAt:     c.ArchivedAt,
	}
}
