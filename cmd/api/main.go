package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/newsdesk/content-service/internal/config"
	"github.com/newsdesk/content-service/internal/handler"
	"github.com/newsdesk/content-service/internal/middleware"
	"github.com/newsdesk/content-service/internal/migration"
	"github.com/newsdesk/content-service/internal/repository"
	"github.com/newsdesk/content-service/internal/routes"
	"github.com/newsdesk/content-service/internal/service"
	pkgcache "github.com/newsdesk/content-service/pkg/cache"
	"github.com/newsdesk/content-service/pkg/jwt"
	pkglogger "github.com/newsdesk/content-service/pkg/logger"
	pkgredis "github.com/newsdesk/content-service/pkg/redis"
	"github.com/newsdesk/content-service/pkg/search"
)

// @title           Content Service API
// @version         1.0
// @description     Content lifecycle, versioning, moderation and search for the publishing platform
//
// @license.name    MIT
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

// getConfigPath returns config file path based on APP_ENV environment variable
func getConfigPath() string {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf("configs/config.%s.yaml", env)
}

func main() {
	config.LoadDotEnv()

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "local"
	}
	pkglogger.InitStructured(env)
	logger := pkglogger.GetLogger()

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := migration.Run(db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database ready")

	// Redis is optional; without it reads skip the cache
	var cacheService pkgcache.Service
	if cfg.Redis.Enabled {
		redisClient, redisErr := pkgredis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			cfg.Redis.PoolSize,
		)
		if redisErr != nil {
			logger.Warn().Err(redisErr).Msg("redis unavailable, continuing without cache")
		} else {
			cacheService = pkgcache.NewService(redisClient)
			logger.Info().Msg("cache service initialized")
		}
	}

	jwtManager := jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTTLMinutes)*time.Minute)

	// Repositories
	contentRepo := repository.NewContentRepository(db)
	versionRepo := repository.NewVersionRepository(db)
	moderationRepo := repository.NewModerationRepository(db)

	// Search index is in-process and rebuilt from the store at boot
	index := search.NewIndex()
	events := service.NewLogSink()
	engine := service.NewRuleEngine(cfg.Moderation, contentRepo.HashExists)

	// Services
	contentService := service.NewContentService(contentRepo, versionRepo, moderationRepo, index, cacheService, events)
	versionService := service.NewVersionService(contentRepo, versionRepo, index, cacheService, events)
	moderationService := service.NewModerationService(contentRepo, versionRepo, moderationRepo, index, cacheService, events, engine, cfg.Moderation)
	searchService := service.NewSearchService(index, contentRepo, cfg.Search)
	analyticsService := service.NewAnalyticsService(contentRepo, versionRepo, moderationRepo, index, cacheService)

	indexed, err := contentService.Reindex()
	if err != nil {
		log.Fatalf("Index rebuild failed: %v", err)
	}
	middleware.SetSearchIndexDocs(float64(indexed))
	logger.Info().Int("documents", indexed).Msg("search index rebuilt")

	// Handlers
	contentHandler := handler.NewContentHandler(contentService)
	versionHandler := handler.NewVersionHandler(versionService)
	moderationHandler := handler.NewModerationHandler(moderationService)
	searchHandler := handler.NewSearchHandler(searchService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService)

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID"},
		MaxAge:           86400,
	}
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowCredentials = false
	}
	router.Use(cors.New(corsConfig))
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "content-service",
			"time":    time.Now().Unix(),
		})
	})

	// Swagger UI
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.Setup(router, contentHandler, versionHandler, moderationHandler, searchHandler, analyticsHandler, jwtManager)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
	}
	logger.Info().Msg("server stopped")
}

func initDB(cfg *config.Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	if cfg.Database.Driver == "sqlite" {
		return gorm.Open(sqlite.Open(cfg.Database.SQLitePath), gormConfig)
	}

	mysqlCfg, err := mysqldriver.ParseDSN(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("invalid DSN: %w", err)
	}

	db, err := gorm.Open(mysql.Open(mysqlCfg.FormatDSN()), gormConfig)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}
