package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/config"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/repository"
	"github.com/newsdesk/content-service/pkg/cache"
	pkglogger "github.com/newsdesk/content-service/pkg/logger"
)

// ModerationService runs the moderation state machine: submission opens a
// review cycle, automated scoring runs synchronously, and decisions move
// the content item between lifecycle states. Automation can approve or
// flag, never reject.
type ModerationService struct {
	contentRepo    repository.ContentRepository
	versionRepo    repository.VersionRepository
	moderationRepo repository.ModerationRepository
	index          SearchIndexer
	cache          cache.Service
	events         EventSink
	engine         *RuleEngine
	autoApprove    float64
}

// NewModerationService creates a new ModerationService
func NewModerationService(
	contentRepo repository.ContentRepository,
	versionRepo repository.VersionRepository,
	moderationRepo repository.ModerationRepository,
	index SearchIndexer,
	cacheSvc cache.Service,
	events EventSink,
	engine *RuleEngine,
	cfg config.ModerationConfig,
) *ModerationService {
	autoApprove := cfg.AutoApproveConfidence
	if autoApprove <= 0 {
		autoApprove = 0.9
	}
	return &ModerationService{
		contentRepo:    contentRepo,
		versionRepo:    versionRepo,
		moderationRepo: moderationRepo,
		index:          index,
		cache:          cacheSvc,
		events:         events,
		engine:         engine,
		autoApprove:    autoApprove,
	}
}

// Submit moves a content item into review. It opens a moderation cycle,
// scores the item synchronously, and either auto-approves (publishing it),
// auto-flags it for human review, or leaves it pending in the queue. The
// returned record is the latest record of the new cycle.
func (s *ModerationService) Submit(ctx context.Context, contentID uint64, actorID string) (*domain.ContentResponse, *domain.ModerationRecordResponse, error) {
	content, err := applyWithRetry(s.contentRepo, contentID, func(c *domain.Content) error {
		if !domain.CanTransition(c.Status, domain.StatusPending) {
			return &common.TransitionError{From: string(c.Status), To: string(domain.StatusPending)}
		}
		c.Status = domain.StatusPending
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	if err := s.appendVersion(content, domain.VersionTypeAuto, actorID, "submitted for review"); err != nil {
		return nil, nil, err
	}

	cycle, err := s.moderationRepo.NextCycle(contentID)
	if err != nil {
		return nil, nil, err
	}

	eval := s.engine.Evaluate(content)
	opening := &domain.ModerationRecord{
		ContentID:  contentID,
		Cycle:      cycle,
		Status:     domain.ModerationPending,
		Confidence: &eval.Confidence,
		Automated:  true,
		Priority:   eval.Priority,
	}
	opening.SetRuleNames(eval.TriggeredRules)
	if err := s.moderationRepo.Create(opening); err != nil {
		return nil, nil, err
	}

	s.invalidate(ctx, contentID)

	record := opening
	switch {
	case eval.HighSeverity:
		record, err = s.autoDecide(contentID, cycle, domain.ModerationFlagged, eval)
		if err != nil {
			return nil, nil, err
		}
	case len(eval.TriggeredRules) == 0 && eval.Confidence >= s.autoApprove:
		content, err = s.approve(ctx, contentID, "", true)
		if err != nil {
			return nil, nil, err
		}
		record, err = s.autoDecide(contentID, cycle, domain.ModerationApproved, eval)
		if err != nil {
			return nil, nil, err
		}
	}

	return content.ToResponse(), record.ToResponse(), nil
}

// Moderate applies a manual decision to a pending content item. Flagged
// items are resolved the same way; a flag decision on an already flagged
// item is rejected as an invalid transition.
func (s *ModerationService) Moderate(ctx context.Context, contentID uint64, moderatorID, decision, notes string) (*domain.ContentResponse, *domain.ModerationRecordResponse, error) {
	content, err := s.contentRepo.FindByID(contentID)
	if err != nil {
		return nil, nil, err
	}
	if content.Status != domain.StatusPending {
		return nil, nil, &common.TransitionError{From: string(content.Status), To: decisionStatus(decision)}
	}

	latest, err := s.moderationRepo.LatestByContentID(contentID)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, nil, err
		}
		latest, err = nil, nil
	}
	cycle := uint(1)
	if latest != nil {
		cycle = latest.Cycle
		if decision == domain.DecisionFlag && latest.Status == domain.ModerationFlagged {
			return nil, nil, &common.TransitionError{From: string(domain.ModerationFlagged), To: string(domain.ModerationFlagged)}
		}
	}

	now := time.Now()
	record := &domain.ModerationRecord{
		ContentID:   contentID,
		Cycle:       cycle,
		ModeratorID: moderatorID,
		Notes:       notes,
		DecidedAt:   &now,
	}

	switch decision {
	case domain.DecisionApprove:
		record.Status = domain.ModerationApproved
		content, err = s.approve(ctx, contentID, moderatorID, false)
	case domain.DecisionReject:
		record.Status = domain.ModerationRejected
		content, err = s.reject(ctx, contentID, moderatorID, notes)
	case domain.DecisionFlag:
		record.Status = domain.ModerationFlagged
		record.Priority = 5
	default:
		return nil, nil, common.NewValidationError("decision", "must be approve, reject or flag")
	}
	if err != nil {
		return nil, nil, err
	}

	if err := s.moderationRepo.Create(record); err != nil {
		return nil, nil, err
	}
	emitEvent(s.events, domain.EventContentModerated, content, moderatorID)

	return content.ToResponse(), record.ToResponse(), nil
}

// History returns every moderation record for a content item, newest first
func (s *ModerationService) History(contentID uint64) ([]*domain.ModerationRecordResponse, error) {
	if _, err := s.contentRepo.FindByID(contentID); err != nil {
		return nil, err
	}
	records, err := s.moderationRepo.ListByContentID(contentID)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.ModerationRecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, r.ToResponse())
	}
	return out, nil
}

// Queue lists content awaiting manual review, highest priority first and
// oldest submission first within the same priority
func (s *ModerationService) Queue() ([]*domain.QueueItem, error) {
	pending, err := s.contentRepo.ListByStatuses([]domain.ContentStatus{domain.StatusPending})
	if err != nil {
		return nil, err
	}

	items := make([]*domain.QueueItem, 0, len(pending))
	for _, c := range pending {
		item := &domain.QueueItem{
			ContentID:   c.ID,
			Title:       c.Title,
			ContentType: string(c.ContentType),
			Status:      string(c.Status),
			AuthorID:    c.AuthorID,
			SubmittedAt: c.UpdatedAt,
		}
		latest, err := s.moderationRepo.LatestByContentID(c.ID)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		if latest != nil {
			item.Priority = latest.Priority
			item.Rules = latest.RuleNames()
			item.SubmittedAt = latest.CreatedAt
			if latest.Status == domain.ModerationFlagged {
				item.Status = string(domain.ModerationFlagged)
			}
		}
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	return items, nil
}

// approve publishes a pending item: status change, version append, index
// insertion, in that order
func (s *ModerationService) approve(ctx context.Context, contentID uint64, actorID string, automated bool) (*domain.Content, error) {
	content, err := applyWithRetry(s.contentRepo, contentID, func(c *domain.Content) error {
		if !domain.CanTransition(c.Status, domain.StatusPublished) {
			return &common.TransitionError{From: string(c.Status), To: string(domain.StatusPublished)}
		}
		c.Status = domain.StatusPublished
		if c.PublishedAt == nil {
			c.PublishedAt = timePtr(time.Now())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notes := "approved"
	if automated {
		notes = "auto-approved"
	}
	if err := s.appendVersion(content, domain.VersionTypeAuto, actorID, notes); err != nil {
		return nil, err
	}

	s.index.Index(buildDocument(content))
	s.invalidate(ctx, contentID)
	emitEvent(s.events, domain.EventContentPublished, content, actorID)
	return content, nil
}

// reject moves a pending item to rejected and removes any index entry
func (s *ModerationService) reject(ctx context.Context, contentID uint64, actorID, notes string) (*domain.Content, error) {
	content, err := applyWithRetry(s.contentRepo, contentID, func(c *domain.Content) error {
		if !domain.CanTransition(c.Status, domain.StatusRejected) {
			return &common.TransitionError{From: string(c.Status), To: string(domain.StatusRejected)}
		}
		c.Status = domain.StatusRejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	if notes == "" {
		notes = "rejected"
	}
	if err := s.appendVersion(content, domain.VersionTypeAuto, actorID, notes); err != nil {
		return nil, err
	}

	s.index.Remove(contentID)
	s.invalidate(ctx, contentID)
	return content, nil
}

// autoDecide writes the closed record for an automated decision
func (s *ModerationService) autoDecide(contentID uint64, cycle uint, status domain.ModerationStatus, eval Evaluation) (*domain.ModerationRecord, error) {
	now := time.Now()
	record := &domain.ModerationRecord{
		ContentID:  contentID,
		Cycle:      cycle,
		Status:     status,
		Confidence: &eval.Confidence,
		Automated:  true,
		Priority:   eval.Priority,
		DecidedAt:  &now,
	}
	record.SetRuleNames(eval.TriggeredRules)
	if err := s.moderationRepo.Create(record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *ModerationService) appendVersion(content *domain.Content, versionType, actorID, notes string) error {
	number, err := s.versionRepo.NextVersion(content.ID)
	if err != nil {
		return err
	}
	return s.versionRepo.Append(domain.NewContentVersion(content.ID, number, content.Snapshot(), versionType, actorID, notes))
}

func (s *ModerationService) invalidate(ctx context.Context, contentID uint64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateContent(ctx, contentID); err != nil {
		pkglogger.GetLogger().Warn().Err(err).Uint64("content_id", contentID).Msg("cache invalidation failed")
	}
}

func decisionStatus(decision string) string {
	switch decision {
	case domain.DecisionApprove:
		return string(domain.StatusPublished)
	case domain.DecisionReject:
		return string(domain.StatusRejected)
	default:
		return string(domain.ModerationFlagged)
	}
}
