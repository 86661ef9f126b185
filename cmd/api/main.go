package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/subculture-collective/clipper-sub007/api/swagger"
	"github.com/subculture-collective/clipper-sub007/internal/handler"
	"github.com/subculture-collective/clipper-sub007/internal/middleware"
	"github.com/subculture-collective/clipper-sub007/internal/platform"
	"github.com/subculture-collective/clipper-sub007/internal/ratelimit"
	"github.com/subculture-collective/clipper-sub007/internal/repository"
	"github.com/subculture-collective/clipper-sub007/internal/service"
	"github.com/subculture-collective/clipper-sub007/pkg/cache"
	"github.com/subculture-collective/clipper-sub007/pkg/config"
	"github.com/subculture-collective/clipper-sub007/pkg/database"
	"github.com/subculture-collective/clipper-sub007/pkg/logger"
	corsmiddleware "github.com/subculture-collective/clipper-sub007/pkg/middleware/cors"
	reqidmiddleware "github.com/subculture-collective/clipper-sub007/pkg/middleware/requestid"
)

// @title Clipper Moderation API
// @version 1.0.0
// @description Moderation action authorization, platform ban proxy and audit trail for the clip sharing platform.
// @BasePath /api/v1
// @schemes http

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var limiter ratelimit.Limiter
	if cfg.RateLimit.Store == config.RateLimitStoreRedis {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect to redis", "error", err)
		}
		defer redisClient.Close()
		limiter = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	} else {
		limiter = ratelimit.NewMemoryLimiter(cfg.RateLimit.MaxRequests, cfg.RateLimit.Window)
	}

	auditRepo := repository.NewAuditRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	banRepo := repository.NewBanRepository(db)
	appealRepo := repository.NewAppealRepository(db)
	membershipRepo := repository.NewMembershipRepository(db)
	accountRepo := repository.NewPlatformAccountRepository(db)

	platformClient := platform.NewClient(cfg.Platform, logr)

	metricsSvc := service.NewMetricsService()
	tokenSvc := service.NewTokenService(cfg.JWT)
	identitySvc := service.NewIdentityService(accountRepo, logr)
	moderationSvc := service.NewModerationService(submissionRepo, metricsSvc, logr)
	banSvc := service.NewBanService(banRepo, platformClient, limiter, cfg.RateLimit.Scope, metricsSvc, logr)
	appealSvc := service.NewAppealService(appealRepo, auditRepo, submissionRepo, metricsSvc, logr)
	membershipSvc := service.NewMembershipService(membershipRepo, metricsSvc, logr)
	auditSvc := service.NewAuditService(auditRepo, logr)

	moderationHandler := handler.NewModerationHandler(moderationSvc, identitySvc)
	banHandler := handler.NewBanHandler(banSvc, identitySvc)
	appealHandler := handler.NewAppealHandler(appealSvc, identitySvc)
	auditHandler := handler.NewAuditHandler(auditSvc, identitySvc)
	membershipHandler := handler.NewMembershipHandler(membershipSvc, identitySvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(tokenSvc))
	{
		api.POST("/moderation/submissions/:id/approve", moderationHandler.Approve)
		api.POST("/moderation/submissions/:id/reject", moderationHandler.Reject)
		api.POST("/moderation/submissions/bulk-approve", moderationHandler.BulkApprove)
		api.POST("/moderation/submissions/bulk-reject", moderationHandler.BulkReject)

		api.POST("/moderation/bans", banHandler.Ban)
		api.DELETE("/moderation/bans", banHandler.Unban)

		api.POST("/appeals", appealHandler.Create)
		api.POST("/appeals/:id/resolve", appealHandler.Resolve)

		api.GET("/audit-log", auditHandler.List)

		api.DELETE("/channels/:id/members/:userId", membershipHandler.Remove)
		api.PATCH("/channels/:id/members/:userId", membershipHandler.ChangeRole)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var sweeper *service.BanSweeper
	if cfg.Bans.SweepEnabled {
		sweeper = service.NewBanSweeper(banRepo, cfg.Bans.SweepInterval, logr)
		sweeper.Start(ctx)
		defer sweeper.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		<-ctx.Done()
		logr.Sugar().Infow("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logr.Sugar().Errorw("server shutdown failed", "error", err)
		}
	}()

	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
