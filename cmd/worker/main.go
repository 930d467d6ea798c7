// Package main runs the background job worker that delivers queued credential emails.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/inkwell/backend/config"
	"github.com/inkwell/backend/internal/logging"
	"github.com/inkwell/backend/internal/mail"
	"github.com/inkwell/backend/internal/worker"
	"github.com/inkwell/backend/pkg/queue"
	"github.com/inkwell/backend/pkg/redis"
)

func main() {
	logger, err := logging.New(os.Getenv("APP_ENV"))
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if cfg.Email.Delivery != config.DeliveryQueue {
		logger.Warn("EMAIL_DELIVERY is not queue; the server will not enqueue jobs", zap.String("email_delivery", cfg.Email.Delivery))
	}

	ctx := context.Background()
	rdb, err := redis.NewClient(ctx, redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	sender, err := mail.NewSendGridSender(cfg.Email.APIKey, cfg.Email.FromName, cfg.Email.FromAddress, logger)
	if err != nil {
		logger.Fatal("sendgrid", zap.Error(err))
	}

	jobQueue := queue.NewQueue(rdb.Client, logger)
	mailer := worker.NewCredentialsMailer(jobQueue, sender, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		mailer.Run(workerCtx)
		close(done)
	}()
	logger.Info("worker started", zap.String("queue", queue.QueueEmails))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	<-done
	logger.Info("worker stopped")
}
