// Package main runs the background worker: dashboard snapshot refresh jobs and the periodic sweep.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/event-master/backend/config"
	"github.com/event-master/backend/internal/dashboard"
	"github.com/event-master/backend/internal/events"
	"github.com/event-master/backend/internal/session"
	"github.com/event-master/backend/internal/worker"
	"github.com/event-master/backend/pkg/database"
	"github.com/event-master/backend/pkg/queue"
	"github.com/event-master/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
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

	dashboardSvc := dashboard.NewService(dashboard.NewRepository(pool), events.NewRepository(pool), logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	sessions := session.NewManager(session.NewRepository(pool), session.Options{CookieName: cfg.Session.CookieName, TTL: cfg.Session.TTL}, logger)
	processor := worker.NewDashboardProcessor(dashboardSvc, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	if cfg.Worker.RefreshCron != "" {
		sweeper := worker.NewSweeper(dashboardSvc, jobQueue, sessions, logger)
		sched, err := sweeper.Schedule(workerCtx, cfg.Worker.RefreshCron)
		if err != nil {
			logger.Fatal("dashboard sweep", zap.Error(err), zap.String("spec", cfg.Worker.RefreshCron))
		}
		defer sched.Stop()
	}
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
