package service

import (
	"context"
	"testing"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/pkg/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func lockPtr(v uint64) *uint64 { return &v }

func TestCreateDraftRecordsVersionOne(t *testing.T) {
	env := setupEnv(t)

	resp := env.createDraft(t, "First draft")
	assert.Equal(t, string(domain.StatusDraft), resp.Status)
	assert.Equal(t, uint64(0), resp.LockVersion)
	assert.NotEmpty(t, resp.Excerpt, "excerpt should be derived from the body")

	versions, err := env.versionRepo.FindByContentID(resp.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, uint(1), versions[0].VersionNumber)
	assert.Equal(t, domain.VersionTypeAuto, versions[0].VersionType)
	assert.Equal(t, "author-1", versions[0].CreatedBy)

	// drafts are never searchable
	assert.False(t, env.index.Contains(resp.ID))
}

func TestCreateRejectsUnknownType(t *testing.T) {
	env := setupEnv(t)
	_, err := env.content.Create(context.Background(), &domain.CreateContentRequest{
		Title:       "Bad type",
		Body:        cleanBody,
		ContentType: "podcast",
	}, "author-1")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateAppendsManualVersion(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraft(t, "Original title")

	resp, err := env.content.Update(context.Background(), draft.ID, &domain.UpdateContentRequest{
		Title:       strPtr("Edited title"),
		LockVersion: lockPtr(0),
		Notes:       "fixed the headline",
	}, "author-1")
	require.NoError(t, err)
	assert.Equal(t, "Edited title", resp.Title)
	assert.Equal(t, uint64(1), resp.LockVersion, "token advances on every write")

	versions, err := env.versionRepo.FindByContentID(draft.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, domain.VersionTypeManual, versions[0].VersionType)
	assert.Equal(t, "fixed the headline", versions[0].Notes)
}

func TestUpdateStaleTokenConflicts(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraft(t, "Contested")

	_, err := env.content.Update(context.Background(), draft.ID, &domain.UpdateContentRequest{
		Title:       strPtr("Editor A"),
		LockVersion: lockPtr(0),
	}, "editor-a")
	require.NoError(t, err)

	// second writer still holds token 0
	_, err = env.content.Update(context.Background(), draft.ID, &domain.UpdateContentRequest{
		Title:       strPtr("Editor B"),
		LockVersion: lockPtr(0),
	}, "editor-b")
	assert.ErrorIs(t, err, common.ErrConflict)

	// no phantom version from the losing write
	count, _ := env.versionRepo.CountByContentID(draft.ID)
	assert.Equal(t, int64(2), count)

	// re-read and retry succeeds
	current, err := env.content.Get(context.Background(), draft.ID)
	require.NoError(t, err)
	_, err = env.content.Update(context.Background(), draft.ID, &domain.UpdateContentRequest{
		Title:       strPtr("Editor B"),
		LockVersion: lockPtr(current.LockVersion),
	}, "editor-b")
	assert.NoError(t, err)
}

func TestUpdateWithoutChangesAppendsNothing(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraft(t, "Unchanged")

	resp, err := env.content.Update(context.Background(), draft.ID, &domain.UpdateContentRequest{
		LockVersion: lockPtr(0),
	}, "author-1")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), resp.LockVersion, "no-op update must not consume the token")

	count, _ := env.versionRepo.CountByContentID(draft.ID)
	assert.Equal(t, int64(1), count)
}

func TestUpdatePublishedReindexes(t *testing.T) {
	env := setupEnv(t)
	published := env.publish(t, "Harbor expansion approved")

	result := env.index.Search(search.Query{Text: "harbor"})
	require.Equal(t, 1, result.Total)

	_, err := env.content.Update(context.Background(), published.ID, &domain.UpdateContentRequest{
		Title:       strPtr("Airport expansion approved"),
		LockVersion: lockPtr(published.LockVersion),
	}, "editor-1")
	require.NoError(t, err)

	assert.Equal(t, 0, env.index.Search(search.Query{Text: "harbor"}).Total, "stale title must stop matching")
	assert.Equal(t, 1, env.index.Search(search.Query{Text: "airport"}).Total)
}

func TestUpdateArchivedRejected(t *testing.T) {
	env := setupEnv(t)
	published := env.publish(t, "Soon archived")

	archived, err := env.content.Archive(context.Background(), published.ID, "editor-1")
	require.NoError(t, err)

	_, err = env.content.Update(context.Background(), published.ID, &domain.UpdateContentRequest{
		Title:       strPtr("Too late"),
		LockVersion: lockPtr(archived.LockVersion),
	}, "editor-1")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestArchiveRemovesFromSearchSynchronously(t *testing.T) {
	env := setupEnv(t)
	published := env.publish(t, "Fleeting story")
	require.True(t, env.index.Contains(published.ID))

	resp, err := env.content.Archive(context.Background(), published.ID, "editor-1")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusArchived), resp.Status)
	assert.NotNil(t, resp.ArchivedAt)
	assert.False(t, env.index.Contains(published.ID), "archived content must leave the index before the call returns")

	// archiving anything but published is invalid
	draft := env.createDraft(t, "Still drafting")
	_, err = env.content.Archive(context.Background(), draft.ID, "editor-1")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestDeletePurgesEverything(t *testing.T) {
	env := setupEnv(t)
	published := env.publish(t, "Condemned item")

	require.NoError(t, env.content.Delete(context.Background(), published.ID, "admin-1"))

	_, err := env.contentRepo.FindByID(published.ID)
	assert.ErrorIs(t, err, common.ErrContentNotFound)

	count, _ := env.versionRepo.CountByContentID(published.ID)
	assert.Equal(t, int64(0), count, "ledger purged on hard delete")

	_, err = env.modRepo.LatestByContentID(published.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)

	assert.False(t, env.index.Contains(published.ID))

	// deleting again reports NotFound
	err = env.content.Delete(context.Background(), published.ID, "admin-1")
	assert.ErrorIs(t, err, common.ErrContentNotFound)
}

func TestReindexRebuildsFromStore(t *testing.T) {
	env := setupEnv(t)
	env.publish(t, "Kept story")
	draft := env.createDraft(t, "Never indexed")

	// pollute the index with a document that should not survive a rebuild
	env.index.Index(search.Document{ID: 424242, Title: "ghost"})

	count, err := env.content.Reindex()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.False(t, env.index.Contains(424242))
	assert.False(t, env.index.Contains(draft.ID))
}

func TestListFiltersByStatus(t *testing.T) {
	env := setupEnv(t)
	env.createDraft(t, "A draft")
	env.publish(t, "A published piece")

	all, err := env.content.List(nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	drafts, err := env.content.List([]string{"draft"})
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "A draft", drafts[0].Title)
}

func TestLifecycleEndToEnd(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	// draft with two revisions
	draft := env.createDraft(t, "Metro line opening")
	_, err := env.content.Update(ctx, draft.ID, &domain.UpdateContentRequest{
		Title:       strPtr("Metro line opening delayed"),
		LockVersion: lockPtr(0),
	}, "author-1")
	require.NoError(t, err)

	// clean content publishes on submission
	published, record, err := env.moderation.Submit(ctx, draft.ID, "author-1")
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusPublished), published.Status)
	assert.Equal(t, string(domain.ModerationApproved), record.Status)
	assert.True(t, record.Automated)

	result, err := env.search.Search(SearchParams{Query: "metro"})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, draft.ID, result.Hits[0].ID)

	// roll back to the first draft revision
	rolled, err := env.versions.Rollback(ctx, draft.ID, 1, "editor-1", "")
	require.NoError(t, err)
	assert.Equal(t, "Metro line opening", rolled.Title)
	assert.Equal(t, string(domain.StatusDraft), rolled.Status, "rollback restores the snapshot status")
	assert.False(t, env.index.Contains(draft.ID), "no longer published, no longer searchable")

	// history keeps growing, never rewritten
	count, _ := env.versionRepo.CountByContentID(draft.ID)
	assert.Equal(t, int64(5), count) // create, update, submit, approve, rollback

	// archived is unreachable from draft
	_, err = env.content.Archive(ctx, draft.ID, "editor-1")
	assert.ErrorIs(t, err, common.ErrInvalidTransition)
}

func TestApplyWithRetryBoundsConflicts(t *testing.T) {
	env := setupEnv(t)
	draft := env.createDraft(t, "Hot row")

	// a mutator that always sabotages its own token simulates perpetual contention
	_, err := applyWithRetry(env.contentRepo, draft.ID, func(c *domain.Content) error {
		fresh, ferr := env.contentRepo.FindByID(c.ID)
		if ferr != nil {
			return ferr
		}
		fresh.Title = "interloper"
		if ferr := env.contentRepo.ApplyTransition(fresh, fresh.LockVersion); ferr != nil {
			return ferr
		}
		c.Status = domain.StatusPending
		return nil
	})
	assert.ErrorIs(t, err, common.ErrConflict, "retries are bounded, the conflict surfaces")
}

func TestGetReturnsErrNotFound(t *testing.T) {
	env := setupEnv(t)
	_, err := env.content.Get(context.Background(), 999)
	assert.ErrorIs(t, err, common.ErrContentNotFound)
}
