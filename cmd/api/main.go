package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/damoang/opinion-backend/internal/app"
	"github.com/damoang/opinion-backend/internal/config"
	"github.com/damoang/opinion-backend/internal/database"
	"github.com/damoang/opinion-backend/internal/middleware"
	"github.com/damoang/opinion-backend/internal/migration"
	pkglogger "github.com/damoang/opinion-backend/pkg/logger"
	pkgredis "github.com/damoang/opinion-backend/pkg/redis"
	gormlogger "gorm.io/gorm/logger"
)

// @title           Opinion Backend API
// @version         1.0
// @description     임직원 개선 제안 접수/모더레이션/답변 API
//
// @host            localhost:8080
// @BasePath        /api/v1
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Authorization header using the Bearer scheme. Example: "Bearer {token}"

func main() {
	dotenvFiles := config.LoadDotEnv()

	// 로거 초기화
	env := config.Env()
	pkglogger.InitStructured(env)
	pkglogger.Info("APP_ENV=%s, loaded env files: %v", env, dotenvFiles)

	// 설정 로드
	configPath := config.Path()
	pkglogger.Info("Loading config from: %s", configPath)
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	config.LogResolved(cfg)
	if cfg.JWT.Secret == "" {
		log.Fatal("jwt.secret (JWT_SECRET) is required")
	}

	// MySQL 연결
	logLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		logLevel = gormlogger.Info
	}
	db, err := database.Open(cfg, logLevel)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	pkglogger.Info("Connected to MySQL")

	if err := migration.Run(db, migration.Seed{
		AdminEmployeeID: cfg.Bootstrap.AdminEmployeeID,
		AdminName:       cfg.Bootstrap.AdminName,
		AdminPassword:   cfg.Bootstrap.AdminPassword,
	}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := middleware.RegisterDBStats(sqlDB, cfg.Database.DBName); err != nil {
			pkglogger.Warn("db stats collector: %v", err)
		}
	}

	// Redis 연결 (없으면 메모리 캐시/메모리 rate limit 으로 동작)
	redisClient, err := pkgredis.NewClient(
		cfg.Redis.Host,
		cfg.Redis.Port,
		cfg.Redis.Password,
		cfg.Redis.DB,
		cfg.Redis.PoolSize,
	)
	if err != nil {
		pkglogger.Warn("Failed to connect to Redis: %v (continuing without Redis)", err)
		redisClient = nil
	} else if redisClient != nil {
		pkglogger.Info("Connected to Redis")
	}

	application := app.New(app.Deps{Config: cfg, DB: db, Redis: redisClient})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           application.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		pkglogger.Info("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	pkglogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		pkglogger.Error("Server forced to shutdown: %v", err)
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	pkglogger.Info("Server exited")
}
