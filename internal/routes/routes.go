package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/newsdesk/content-service/internal/handler"
	"github.com/newsdesk/content-service/internal/middleware"
	"github.com/newsdesk/content-service/pkg/jwt"
)

// Setup configures all API routes
func Setup(
	router *gin.Engine,
	contentHandler *handler.ContentHandler,
	versionHandler *handler.VersionHandler,
	moderationHandler *handler.ModerationHandler,
	searchHandler *handler.SearchHandler,
	analyticsHandler *handler.AnalyticsHandler,
	jwtManager *jwt.Manager,
) {
	api := router.Group("/api/v1")
	auth := middleware.JWTAuth(jwtManager)

	// Public read surface
	api.GET("/search", searchHandler.Search)
	api.GET("/search/autocomplete", searchHandler.Autocomplete)
	api.GET("/contents/popular", analyticsHandler.Popular)
	api.GET("/contents/:id", contentHandler.Get)

	// Authoring (auth required)
	contents := api.Group("/contents", auth)
	{
		contents.GET("", contentHandler.List)
		contents.POST("", contentHandler.Create)
		contents.PUT("/:id", contentHandler.Update)
		contents.DELETE("/:id", contentHandler.Delete)
		contents.POST("/:id/submit", moderationHandler.Submit)
		contents.POST("/:id/publish", moderationHandler.Publish)
		contents.POST("/:id/archive", contentHandler.Archive)
		contents.POST("/:id/rollback", versionHandler.Rollback)

		contents.GET("/:id/versions", versionHandler.History)
		contents.GET("/:id/versions/:version", versionHandler.GetVersion)
		contents.GET("/:id/diff", versionHandler.Diff)
		contents.GET("/:id/moderation", moderationHandler.History)
	}

	// Moderation (moderator or admin)
	moderation := api.Group("/moderation", auth, middleware.RequireModerator())
	{
		moderation.GET("/queue", moderationHandler.Queue)
	}
	contents.POST("/:id/moderate", middleware.RequireModerator(), moderationHandler.Moderate)

	// Admin
	admin := api.Group("/admin", auth, middleware.RequireAdmin())
	{
		admin.POST("/reindex", contentHandler.Reindex)
		admin.GET("/stats", analyticsHandler.Stats)
	}
}
