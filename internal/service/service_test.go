package service

import (
	"context"
	"testing"

	"github.com/newsdesk/content-service/internal/config"
	"github.com/newsdesk/content-service/internal/domain"
	"github.com/newsdesk/content-service/internal/migration"
	"github.com/newsdesk/content-service/internal/repository"
	"github.com/newsdesk/content-service/pkg/search"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// cleanBody passes every automated rule: long enough, unique wording, no
// links, no promotional or banned phrasing
const cleanBody = "The city council approved the revised transit plan after months of deliberation, " +
	"citing improved coverage for outer districts and a phased construction schedule that limits " +
	"disruption to existing commuter routes during peak hours."

type testEnv struct {
	db          *gorm.DB
	index       *search.Index
	contentRepo repository.ContentRepository
	versionRepo repository.VersionRepository
	modRepo     repository.ModerationRepository

	content    *ContentService
	versions   *VersionService
	moderation *ModerationService
	search     *SearchService
	analytics  *AnalyticsService
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := migration.Run(db); err != nil {
		t.Fatalf("migration failed: %v", err)
	}

	env := &testEnv{
		db:          db,
		index:       search.NewIndex(),
		contentRepo: repository.NewContentRepository(db),
		versionRepo: repository.NewVersionRepository(db),
		modRepo:     repository.NewModerationRepository(db),
	}

	modCfg := config.ModerationConfig{AutoApproveConfidence: 0.9, MinBodyLength: 50}
	engine := NewRuleEngine(modCfg, env.contentRepo.HashExists)

	env.content = NewContentService(env.contentRepo, env.versionRepo, env.modRepo, env.index, nil, nil)
	env.versions = NewVersionService(env.contentRepo, env.versionRepo, env.index, nil, nil)
	env.moderation = NewModerationService(env.contentRepo, env.versionRepo, env.modRepo, env.index, nil, nil, engine, modCfg)
	env.search = NewSearchService(env.index, env.contentRepo, config.SearchConfig{MinQueryLength: 2, DefaultPerPage: 20, MaxPerPage: 50})
	env.analytics = NewAnalyticsService(env.contentRepo, env.versionRepo, env.modRepo, env.index, nil)

	return env
}

func (e *testEnv) createDraft(t *testing.T, title string) *domain.ContentResponse {
	t.Helper()
	resp, err := e.content.Create(context.Background(), &domain.CreateContentRequest{
		Title:       title,
		Body:        cleanBody,
		ContentType: "news",
	}, "author-1")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return resp
}

func (e *testEnv) publish(t *testing.T, title string) *domain.ContentResponse {
	t.Helper()
	draft := e.createDraft(t, title)
	resp, _, err := e.moderation.Submit(context.Background(), draft.ID, "author-1")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if resp.Status != string(domain.StatusPublished) {
		t.Fatalf("clean content should auto-publish, got %s", resp.Status)
	}
	return resp
}
