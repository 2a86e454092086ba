package repository

import (
	"errors"
	"testing"

	"github.com/newsdesk/content-service/internal/common"
	"github.com/newsdesk/content-service/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Content{}, &domain.ContentVersion{}, &domain.ModerationRecord{}); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	return db
}

func newDraft(title, body string) *domain.Content {
	c := &domain.Content{
		Title:       title,
		Body:        body,
		ContentType: domain.TypeNews,
		Status:      domain.StatusDraft,
		AuthorID:    "author-1",
	}
	c.Rehash()
	return c
}

func TestContentRepoCreateAndFind(t *testing.T) {
	repo := NewContentRepository(setupTestDB(t))

	c := newDraft("Hello", "World body")
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.ID == 0 {
		t.Fatal("expected assigned ID")
	}

	found, err := repo.FindByID(c.ID)
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if found.Title != "Hello" || found.LockVersion != 0 {
		t.Errorf("unexpected row: %+v", found)
	}

	if _, err := repo.FindByID(9999); !errors.Is(err, common.ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

func TestContentRepoApplyTransitionCAS(t *testing.T) {
	repo := NewContentRepository(setupTestDB(t))

	c := newDraft("CAS", "CAS body")
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	c.Status = domain.StatusPending
	if err := repo.ApplyTransition(c, 0); err != nil {
		t.Fatalf("ApplyTransition failed: %v", err)
	}
	if c.LockVersion != 1 {
		t.Errorf("token should advance to 1, got %d", c.LockVersion)
	}

	// stale token loses
	c.Status = domain.StatusPublished
	if err := repo.ApplyTransition(c, 0); !errors.Is(err, common.ErrConflict) {
		t.Errorf("expected ErrConflict on stale token, got %v", err)
	}

	// fresh token wins
	if err := repo.ApplyTransition(c, 1); err != nil {
		t.Fatalf("retry with fresh token failed: %v", err)
	}

	found, _ := repo.FindByID(c.ID)
	if found.Status != domain.StatusPublished || found.LockVersion != 2 {
		t.Errorf("unexpected state after CAS: %+v", found)
	}

	// missing row reports NotFound, not Conflict
	ghost := newDraft("ghost", "ghost body")
	ghost.ID = 4242
	if err := repo.ApplyTransition(ghost, 0); !errors.Is(err, common.ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound, got %v", err)
	}
}

func TestContentRepoViewCountSurvivesTransition(t *testing.T) {
	repo := NewContentRepository(setupTestDB(t))

	c := newDraft("Views", "Views body")
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := repo.IncrementViews(c.ID); err != nil {
			t.Fatalf("IncrementViews failed: %v", err)
		}
	}

	// a transition carrying a stale in-memory view count must not clobber it
	c.Status = domain.StatusPending
	c.ViewCount = 0
	if err := repo.ApplyTransition(c, 0); err != nil {
		t.Fatalf("ApplyTransition failed: %v", err)
	}

	found, _ := repo.FindByID(c.ID)
	if found.ViewCount != 3 {
		t.Errorf("view count clobbered: got %d, want 3", found.ViewCount)
	}
	if found.LockVersion != 1 {
		t.Errorf("view increments must not consume the CAS token, got %d", found.LockVersion)
	}
}

func TestContentRepoListsAndCounts(t *testing.T) {
	repo := NewContentRepository(setupTestDB(t))

	for i, status := range []domain.ContentStatus{domain.StatusDraft, domain.StatusPublished, domain.StatusPublished, domain.StatusArchived} {
		c := newDraft("Item", "Item body")
		c.Title = c.Title + string(rune('A'+i))
		c.Status = status
		c.ViewCount = uint64(i * 10)
		c.Rehash()
		if err := repo.Create(c); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	published, err := repo.ListPublished()
	if err != nil || len(published) != 2 {
		t.Fatalf("ListPublished = %d items, err %v", len(published), err)
	}

	all, err := repo.ListByStatuses(nil)
	if err != nil || len(all) != 4 {
		t.Fatalf("empty filter should return everything, got %d, err %v", len(all), err)
	}

	drafts, err := repo.ListByStatuses([]domain.ContentStatus{domain.StatusDraft})
	if err != nil || len(drafts) != 1 {
		t.Fatalf("ListByStatuses(draft) = %d items, err %v", len(drafts), err)
	}

	popular, err := repo.ListPopular(1)
	if err != nil || len(popular) != 1 {
		t.Fatalf("ListPopular failed: %v", err)
	}
	if popular[0].ViewCount != 20 {
		t.Errorf("expected the most viewed published item, got %d views", popular[0].ViewCount)
	}

	counts, err := repo.CountByStatus()
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}
	if counts[domain.StatusPublished] != 2 || counts[domain.StatusDraft] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}

func TestContentRepoHashExists(t *testing.T) {
	repo := NewContentRepository(setupTestDB(t))

	c := newDraft("Dup", "Dup body")
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	exists, err := repo.HashExists(c.ContentHash, 0)
	if err != nil || !exists {
		t.Errorf("expected hash to exist, got %v, err %v", exists, err)
	}

	// the item itself is excluded
	exists, err = repo.HashExists(c.ContentHash, c.ID)
	if err != nil || exists {
		t.Errorf("own row should be excluded, got %v, err %v", exists, err)
	}

	exists, err = repo.HashExists("no-such-hash", 0)
	if err != nil || exists {
		t.Errorf("unknown hash should not exist, got %v, err %v", exists, err)
	}
}

func TestContentRepoDelete(t *testing.T) {
	repo := NewContentRepository(setupTestDB(t))

	c := newDraft("Gone", "Gone body")
	if err := repo.Create(c); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := repo.Delete(c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := repo.FindByID(c.ID); !errors.Is(err, common.ErrContentNotFound) {
		t.Errorf("expected ErrContentNotFound after delete, got %v", err)
	}
	if err := repo.Delete(c.ID); !errors.Is(err, common.ErrContentNotFound) {
		t.Errorf("double delete should report NotFound, got %v", err)
	}
}
