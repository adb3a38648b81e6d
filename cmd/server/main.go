// Package main runs the Event Master HTTP server: API, server-rendered pages and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/event-master/backend/config"
	"github.com/event-master/backend/internal/auth"
	"github.com/event-master/backend/internal/dashboard"
	"github.com/event-master/backend/internal/events"
	"github.com/event-master/backend/internal/feedback"
	"github.com/event-master/backend/internal/middleware"
	"github.com/event-master/backend/internal/models"
	"github.com/event-master/backend/internal/pages"
	"github.com/event-master/backend/internal/registrations"
	"github.com/event-master/backend/internal/session"
	"github.com/event-master/backend/internal/worker"
	"github.com/event-master/backend/pkg/database"
	"github.com/event-master/backend/pkg/i18n"
	"github.com/event-master/backend/pkg/metrics"
	"github.com/event-master/backend/pkg/queue"
	"github.com/event-master/backend/pkg/redis"
	"github.com/event-master/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	if err := database.Migrate(cfg.Database.DSN(), logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	s3Cfg := storage.S3Config{
		Region:               cfg.AWS.Region,
		AccessKeyID:          cfg.AWS.AccessKeyID,
		SecretAccessKey:      cfg.AWS.SecretAccessKey,
		ReportsBucket:        cfg.AWS.ReportsBucket,
		PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
	}
	var reports dashboard.ReportUploader
	if s3Cfg.Enabled() {
		s3Client, err := storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 disabled, exports will be streamed", zap.Error(err))
		} else {
			reports = s3Client
		}
	}

	if err := auth.RegisterValidators(); err != nil {
		logger.Fatal("validators", zap.Error(err))
	}
	translator := i18n.NewTranslator(cfg.Locale.Default, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Sessions and auth
	sessions := session.NewManager(session.NewRepository(pool), session.Options{
		CookieName: cfg.Session.CookieName,
		TTL:        cfg.Session.TTL,
		Secure:     cfg.Server.IsProduction(),
	}, logger)
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, sessions, logger)
	authHandler := auth.NewHandler(authSvc, sessions, translator, logger)
	loginLimiter := middleware.NewRateLimiter(rdb.Client, "login", cfg.Limits.LoginAttempts, cfg.Limits.LoginWindow, logger)

	// Events
	eventRepo := events.NewRepository(pool)
	eventSvc := events.NewService(eventRepo, jobQueue, time.Local, logger)
	eventHandler := events.NewHandler(eventSvc, translator, logger)

	// Registrations and check-in
	registrationRepo := registrations.NewRepository(pool)
	tickets := registrations.NewTickets(cfg.Checkin.Secret, cfg.Checkin.ExpireHours)
	registrationSvc := registrations.NewService(registrationRepo, eventRepo, tickets, jobQueue, logger)
	registrationHandler := registrations.NewHandler(registrationSvc, translator, logger)

	// Feedback
	feedbackSvc := feedback.NewService(feedback.NewRepository(pool), registrationRepo, jobQueue, logger)
	feedbackHandler := feedback.NewHandler(feedbackSvc, translator, logger)

	// Dashboards
	dashboardSvc := dashboard.NewService(dashboard.NewRepository(pool), eventRepo, logger)
	exporter := dashboard.NewExporter(dashboardSvc, reports, logger)
	dashboardHandler := dashboard.NewHandler(dashboardSvc, exporter, translator, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.LocaleFromHeader(translator.Default()))
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Session(sessions, authRepo, logger))

	router.GET("/health", middleware.Health(map[string]middleware.HealthCheck{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}, 2*time.Second, logger))
	router.GET("/metrics", metrics.Handler())

	participant := middleware.RequireRole(translator, models.RoleParticipant)
	organiser := middleware.RequireRole(translator, models.RoleOrganiser)
	speaker := middleware.RequireRole(translator, models.RoleSpeaker)
	ownsEvent := events.RequireEventOrganiser(eventRepo, translator, logger)

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", loginLimiter.Limit(translator), authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
		api.GET("/me", authHandler.Me)

		// Registration
		api.POST("/event_register", participant, registrationHandler.Register)
		api.POST("/register", participant, registrationHandler.Register)
		api.DELETE("/event_register", participant, registrationHandler.Unregister)
		api.GET("/event_register", registrationHandler.Status)
		api.GET("/event_register/ticket", participant, registrationHandler.Ticket)
		api.GET("/registrations", participant, registrationHandler.List)
		api.POST("/checkin", organiser, registrationHandler.Checkin)
		api.POST("/registrations/:id/attend", organiser, registrationHandler.Attend)
		api.POST("/feedback", participant, feedbackHandler.Submit)

		// Events
		api.GET("/events", eventHandler.List)
		api.GET("/events/:id", eventHandler.Get)
		api.GET("/events/:id/organizers", eventHandler.Organizers)
		api.POST("/events", organiser, eventHandler.Create)
		api.PATCH("/events/:id", organiser, ownsEvent, eventHandler.Update)
		api.PUT("/events/:id/sessions", organiser, ownsEvent, eventHandler.SyncSessions)
		api.GET("/speakers", organiser, eventHandler.Speakers)
		api.GET("/speaker/sessions", speaker, eventHandler.SpeakerSessions)

		// Dashboards
		dash := api.Group("/dashboard", organiser)
		dash.GET("", dashboardHandler.List)
		dash.GET("/:id", dashboardHandler.Get)
		dash.GET("/:id/participants", dashboardHandler.Participants)
		dash.GET("/:id/feedback", dashboardHandler.Feedback)
		dash.POST("/:id/refresh", dashboardHandler.Refresh)
		dash.GET("/:id/export", dashboardHandler.Export)
	}

	pageHandler := pages.NewHandler(pages.Deps{
		Auth:          authSvc,
		Cookies:       sessions,
		Events:        eventRepo,
		Creator:       eventSvc,
		Registrations: registrationSvc,
		Feedback:      feedbackSvc,
		Dashboards:    dashboardSvc,
		Limiter:       loginLimiter,
	}, translator, time.Local, logger)
	if err := pageHandler.Mount(router); err != nil {
		logger.Fatal("templates", zap.Error(err))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Background worker (dashboard snapshot refresh)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	if cfg.Worker.InProcess {
		processor := worker.NewDashboardProcessor(dashboardSvc, jobQueue, logger)
		go processor.Run(workerCtx)
		if cfg.Worker.RefreshCron != "" {
			sweeper := worker.NewSweeper(dashboardSvc, jobQueue, sessions, logger)
			sched, err := sweeper.Schedule(workerCtx, cfg.Worker.RefreshCron)
			if err != nil {
				logger.Fatal("dashboard sweep", zap.Error(err), zap.String("spec", cfg.Worker.RefreshCron))
			}
			defer sched.Stop()
		}
		logger.Info("dashboard worker started")
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	workerCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
