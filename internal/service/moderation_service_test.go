package service

import (
	"context"
	"testing"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) createDraftWithBody(t *testing.T, title, body string) *domain.ContentResponse {
	t.Helper()
	resp, err := e.content.Create(context.Background(), &domain.CreateContentRequest{
		Title:       title,
		Body:        body,
		ContentType: "news",
	}, "author-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return resp
}

func TestSubmitCleanContentAutoApproves(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraft(t, "Budget review published")

	resp, record, err := env.moderation.Submit(context.Background(), draft.ID, "author-1")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPublished), resp.Status)
	assert.NotNil(t, resp.PublishedAt)
	assert.True(t, env.index.Contains(draft.ID))

	assert.Equal(t, string(domain.ModerationApproved), record.Status)
	assert.True(t, record.Automated)
	assert.NotNil(t, record.DecidedAt)
	assert.Empty(t, record.Rules)
	require.NotNil(t, record.Confidence)
	assert.GreaterOrEqual(t, *record.Confidence, 0.9)

	// created, submitted, auto-approved
	count, _ := env.versionRepo.CountByContentID(draft.ID)
	assert.Equal(t, int64(3), count)
}

func TestSubmitBannedTermsAutoFlags(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraftWithBody(t, "Suspicious item",
		"Readers can claim a crypto giveaway by following the registration steps described in this report about regional lottery regulation and its enforcement history.")

	resp, record, err := env.moderation.Submit(context.Background(), draft.ID, "author-1")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status, "flagged content stays out of the published state")
	assert.False(t, env.index.Contains(draft.ID))

	assert.Equal(t, string(domain.ModerationFlagged), record.Status)
	assert.True(t, record.Automated)
	assert.NotNil(t, record.DecidedAt)
	assert.Equal(t, 5, record.Priority)
	assert.Contains(t, record.Rules, "banned_terms")
}

func TestSubmitLowConfidenceStaysPending(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraftWithBody(t, "Stub article", "A short note.")

	resp, record, err := env.moderation.Submit(context.Background(), draft.ID, "author-1")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPending), resp.Status)
	assert.False(t, env.index.Contains(draft.ID))
	assert.Equal(t, string(domain.ModerationPending), record.Status)
	assert.Nil(t, record.DecidedAt, "opening record stays open until a decision")
	assert.Contains(t, record.Rules, "min_length")

	queue, err := env.moderation.Queue()
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, draft.ID, queue[0].ContentID)
	assert.Contains(t, queue[0].Rules, "min_length")
}

func TestSubmitPublishedRejected(t *testing.T) {
	env := setupEnv(t)
	published := env.publish(t, "Already live")

	_, _, err := env.moderation.Submit(context.Background(), published.ID, "author-1")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestAutomationNeverRejects(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraftWithBody(t, "Worst case",
		"viagra buy now http://a http://b http://c http://d viagra buy now viagra buy now viagra buy now")

	resp, record, err := env.moderation.Submit(context.Background(), draft.ID, "author-1")
	require.NoError(t, err)

	assert.NotEqual(t, string(domain.StatusRejected), resp.Status, "rejection is reserved for humans")
	assert.Equal(t, string(domain.ModerationFlagged), record.Status)

	history, err := env.moderation.History(draft.ID)
	require.NoError(t, err)
	for _, r := range history {
		if r.Automated {
			assert.NotEqual(t, string(domain.ModerationRejected), r.Status)
		}
	}
}

func TestManualApprovePublishes(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraftWithBody(t, "Needs a human", "A short note.")
	_, _, err := env.moderation.Submit(context.Background(), draft.ID, "author-1")
	require.NoError(t, err)

	resp, record, err := env.moderation.Moderate(context.Background(), draft.ID, "mod-1", domain.DecisionApprove, "looks fine")
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusPublished), resp.Status)
	assert.NotNil(t, resp.PublishedAt)
	assert.True(t, env.index.Contains(draft.ID))

	assert.Equal(t, string(domain.ModerationApproved), record.Status)
	assert.False(t, record.Automated)
	assert.Equal(t, "mod-1", record.ModeratorID)
	assert.NotNil(t, record.DecidedAt)
}

func TestManualRejectAndResubmit(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	draft := env.createDraftWithBody(t, "Contested piece", "A short note.")
	_, _, err := env.moderation.Submit(ctx, draft.ID, "author-1")
	require.NoError(t, err)

	resp, record, err := env.moderation.Moderate(ctx, draft.ID, "mod-1", domain.DecisionReject, "not up to standard")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusRejected), resp.Status)
	assert.Equal(t, string(domain.ModerationRejected), record.Status)
	assert.False(t, env.index.Contains(draft.ID))
	assert.Equal(t, uint(1), record.Cycle)

	// author revises and resubmits, opening a second cycle
	_, record2, err := env.moderation.Submit(ctx, draft.ID, "author-1")
	require.NoError(t, err)
	assert.Equal(t, uint(2), record2.Cycle)

	history, err := env.moderation.History(draft.ID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(history), 3, "earlier cycles are kept, never rewritten")
}

func TestFlagTwiceInvalid(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	draft := env.createDraftWithBody(t, "Borderline", "A short note.")
	_, _, err := env.moderation.Submit(ctx, draft.ID, "author-1")
	require.NoError(t, err)

	resp, record, err := env.moderation.Moderate(ctx, draft.ID, "mod-1", domain.DecisionFlag, "needs a second opinion")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPending), resp.Status, "flagged content keeps its pending lifecycle state")
	assert.Equal(t, string(domain.ModerationFlagged), record.Status)
	assert.Equal(t, 5, record.Priority)

	_, _, err = env.moderation.Moderate(ctx, draft.ID, "mod-2", domain.DecisionFlag, "")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)

	// a flagged item is still resolvable
	resolved, _, err := env.moderation.Moderate(ctx, draft.ID, "mod-2", domain.DecisionApprove, "")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPublished), resolved.Status)
}

func TestModerateNonPendingInvalid(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraft(t, "Unsubmitted")

	_, _, err := env.moderation.Moderate(context.Background(), draft.ID, "mod-1", domain.DecisionApprove, "")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestQueueOrdersByPriorityThenAge(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	first := env.createDraftWithBody(t, "Older low priority", "A short note.")
	_, _, err := env.moderation.Submit(ctx, first.ID, "author-1")
	require.NoError(t, err)

	flagged := env.createDraftWithBody(t, "High priority",
		"A crypto giveaway is promised to every reader who signs up, according to complaints filed with the consumer protection office this week.")
	_, _, err = env.moderation.Submit(ctx, flagged.ID, "author-2")
	require.NoError(t, err)

	second := env.createDraftWithBody(t, "Newer low priority", "A short note.")
	_, _, err = env.moderation.Submit(ctx, second.ID, "author-3")
	require.NoError(t, err)

	queue, err := env.moderation.Queue()
	require.NoError(t, err)
	require.Len(t, queue, 3)

	assert.Equal(t, flagged.ID, queue[0].ContentID)
	assert.Equal(t, string(domain.ModerationFlagged), queue[0].Status)
	assert.Equal(t, first.ID, queue[1].ContentID, "equal priority is served oldest first")
	assert.Equal(t, second.ID, queue[2].ContentID)
}

func TestHistoryUnknownContent(t *testing.T) {
	env := setupEnv(t)
	_, err := env.moderation.History(12345)
	assert.ErrorIs(t, err, common.ErrContentNotFound)
}
