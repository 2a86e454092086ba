package domain

import (
	"encoding/json"
	"time"
)

// ModerationStatus decision states for a moderation record
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
	ModerationFlagged  ModerationStatus = "flagged"
)

// Moderation decisions a moderator may take
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
	DecisionFlag    = "flag"
)

// ModerationRecord is the audit record of one moderation decision. A cycle
// opens with a pending record when content is submitted; every decision
// writes a closed record. Later re-submissions supersede earlier cycles,
// records are never deleted.
type ModerationRecord struct {
	ID             uint64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ContentID      uint64           `gorm:"column:content_id;index" json:"content_id"`
	Cycle          uint             `gorm:"column:cycle;default:1" json:"cycle"`
	Status         ModerationStatus `gorm:"column:status;type:varchar(20);index" json:"status"`
	Confidence     *float64         `gorm:"column:confidence" json:"confidence,omitempty"`
	TriggeredRules string           `gorm:"column:triggered_rules;type:json" json:"-"`
	ModeratorID    string           `gorm:"column:moderator_id;type:varchar(100)" json:"moderator_id,omitempty"`
	Automated      bool             `gorm:"column:automated;default:false" json:"automated"`
	Priority       int              `gorm:"column:priority;default:0" json:"priority"`
	Notes          string           `gorm:"column:notes;type:varchar(500)" json:"notes,omitempty"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	DecidedAt      *time.Time       `gorm:"column:decided_at" json:"decided_at,omitempty"`
}

func (ModerationRecord) TableName() string { return "moderation_records" }

// RuleNames decodes the triggered rule identifiers
func (r *ModerationRecord) RuleNames() []string {
	if r.TriggeredRules == "" {
		return nil
	}
	var names []string
	if err := json.Unmarshal([]byte(r.TriggeredRules), &names); err != nil {
		return nil
	}
	return names
}

// SetRuleNames encodes the triggered rule identifiers
func (r *ModerationRecord) SetRuleNames(names []string) {
	if len(names) == 0 {
		r.TriggeredRules = ""
		return
	}
	data, err := json.Marshal(names)
	if err != nil {
		return
	}
	r.TriggeredRules = string(data)
}

// ModerateRequest payload for a manual moderation decision
type ModerateRequest struct {
	Decision string `json:"decision" binding:"required,oneof=approve reject flag"`
	Notes    string `json:"notes"`
}

// ModerationRecordResponse external representation of a moderation record
type ModerationRecordResponse struct {
	ID          uint64     `json:"id"`
	ContentID   uint64     `json:"content_id"`
	Cycle       uint       `json:"cycle"`
	Status      string     `json:"status"`
	Confidence  *float64   `json:"confidence,omitempty"`
	Rules       []string   `json:"triggered_rules,omitempty"`
	ModeratorID string     `json:"moderator_id,omitempty"`
	Automated   bool       `json:"automated"`
	Priority    int        `json:"priority"`
	Notes       string     `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	DecidedAt   *time.Time `json:"decided_at,omitempty"`
}

// ToResponse converts to the external representation
func (r *ModerationRecord) ToResponse() *ModerationRecordResponse {
	return &ModerationRecordResponse{
		ID:          r.ID,
		ContentID:   r.ContentID,
		Cycle:       r.Cycle,
		Status:      string(r.Status),
		Confidence:  r.Confidence,
		Rules:       r.RuleNames(),
		ModeratorID: r.ModeratorID,
		Automated:   r.Automated,
		Priority:    r.Priority,
		Notes:       r.Notes,
		CreatedAt:   r.CreatedAt,
		DecidedAt:   r.DecidedAt,
	}
}

// QueueItem is one entry in the manual review queue
type QueueItem struct {
	ContentID   uint64    `json:"content_id"`
	Title       string    `json:"title"`
	ContentType string    `json:"content_type"`
	Status      string    `json:"status"`
	AuthorID    string    `json:"author_id,omitempty"`
	Priority    int       `json:"priority"`
	Rules       []string  `json:"triggered_rules,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
