// Package app wires repositories, services and handlers into a gin router.
package app

import (
	"net/http"
	"strings"
	"time"

	"github.com/damoang/opinion-backend/internal/config"
	"github.com/damoang/opinion-backend/internal/handler"
	"github.com/damoang/opinion-backend/internal/middleware"
	"github.com/damoang/opinion-backend/internal/repository"
	"github.com/damoang/opinion-backend/internal/routes"
	"github.com/damoang/opinion-backend/internal/service"
	pkgcache "github.com/damoang/opinion-backend/pkg/cache"
	"github.com/damoang/opinion-backend/pkg/jwt"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

// Deps external resources the application runs on. Redis and Scorer are optional.
type Deps struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	Scorer service.ModerationScorer
}

// App built application
type App struct {
	Router   *gin.Engine
	Opinions *service.OpinionService
	Query    *service.OpinionQueryService
	Export   *service.ExportService
	Stats    *service.StatsService
	Users    *service.UserService
	Auth     *service.AuthService
	Lookups  *service.LookupService
	JWT      *jwt.Manager
}

// Services builds the service layer only (used by the CLI)
func Services(deps Deps) *App {
	cfg := deps.Config
	loc := cfg.Location()
	threshold := cfg.Moderation.BlindThreshold

	// Cache: Redis 가 없으면 프로세스 메모리 캐시
	var cacheService pkgcache.Service
	if deps.Redis != nil {
		cacheService = pkgcache.NewService(deps.Redis)
	} else {
		cacheService = pkgcache.NewMemoryService(cfg.Cache.LookupTTL)
	}

	opinionRepo := repository.NewOpinionRepository(deps.DB)
	historyRepo := repository.NewHistoryRepository(deps.DB)
	userRepo := repository.NewUserRepository(deps.DB)
	lookupRepo := repository.NewCachedLookupRepository(
		repository.NewLookupRepository(deps.DB), cacheService, cfg.Cache.LookupTTL)

	scorer := deps.Scorer
	if scorer == nil {
		scorer = service.NewAIModerationScorer(cfg.Moderation.URL, cfg.Moderation.APIKey, cfg.Moderation.Model, cfg.Moderation.Timeout)
	}

	query := service.NewOpinionQueryService(opinionRepo, lookupRepo, userRepo, threshold, loc)
	jwtManager := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	return &App{
		Opinions: service.NewOpinionService(opinionRepo, historyRepo, lookupRepo, scorer, threshold, loc),
		Query:    query,
		Export:   service.NewExportService(query, cfg.Export.Label, cfg.Export.SheetName, loc),
		Stats:    service.NewStatsService(query, opinionRepo, lookupRepo),
		Users:    service.NewUserService(userRepo),
		Auth:     service.NewAuthService(userRepo, jwtManager),
		Lookups:  service.NewLookupService(lookupRepo),
		JWT:      jwtManager,
	}
}

// New builds the services and the HTTP router
func New(deps Deps) *App {
	cfg := deps.Config
	a := Services(deps)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     splitOrigins(cfg.CORS.AllowOrigins),
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Excluded-Count", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.InputSanitizer())
	router.Use(middleware.Metrics())
	router.Use(middleware.RequestLogger())

	// Prometheus 메트릭 엔드포인트
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		status := "ok"
		if sqlDB, err := deps.DB.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": status, "time": time.Now().Unix()})
	})

	if cfg.IsDevelopment() {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	var limit gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit.RequestsPerMinute > 0 {
			rl.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
		}
		limit = middleware.RateLimit(deps.Redis, rl)
	}

	audit := middleware.NewAuditLogger(deps.DB)
	routes.Setup(router, routes.Handlers{
		Auth:    handler.NewAuthHandler(a.Auth),
		Opinion: handler.NewOpinionHandler(a.Opinions, a.Query),
		Admin:   handler.NewAdminHandler(a.Opinions, a.Query, a.Export, a.Stats, audit),
		User:    handler.NewUserHandler(a.Users, audit),
		Lookup:  handler.NewLookupHandler(a.Lookups),
	}, a.JWT, limit)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error":   gin.H{"code": "NOT_FOUND", "message": "요청한 경로를 찾을 수 없습니다"},
		})
	})

	a.Router = router
	return a
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return origins
}
