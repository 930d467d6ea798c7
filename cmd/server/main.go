// Package main runs the publishing platform HTTP server with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/inkwell/backend/config"
	"github.com/inkwell/backend/internal/articles"
	"github.com/inkwell/backend/internal/auth"
	"github.com/inkwell/backend/internal/brands"
	"github.com/inkwell/backend/internal/logging"
	"github.com/inkwell/backend/internal/mail"
	"github.com/inkwell/backend/internal/middleware"
	"github.com/inkwell/backend/internal/users"
	"github.com/inkwell/backend/pkg/database"
	"github.com/inkwell/backend/pkg/queue"
	"github.com/inkwell/backend/pkg/redis"
	"github.com/inkwell/backend/pkg/storage"
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
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	}, logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

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

	// Logo storage is optional; without a bucket, logo uploads answer DEPENDENCY_FAILURE.
	var logos brands.LogoStorage
	if cfg.AWS.LogosBucket != "" {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			LogosBucket:          cfg.AWS.LogosBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			logger.Warn("s3 disabled", zap.Error(err))
		} else {
			logos = s3Client
		}
	}

	notifier, err := newNotifier(cfg, queue.NewQueue(rdb.Client, logger), logger)
	if err != nil {
		logger.Fatal("notifier", zap.Error(err))
	}

	tx := database.NewTxManager(pool)
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)

	userRepo := users.NewRepository(pool)
	brandRepo := brands.NewRepository(pool)
	articleRepo := articles.NewRepository(pool)

	userSvc := users.NewService(userRepo, brandRepo, tx, notifier, logger)
	brandSvc := brands.NewService(brandRepo, userRepo, tx, userSvc, logos, logger)
	articleSvc := articles.NewService(articleRepo, brandRepo, brandRepo, logger)

	seedAdmin(ctx, cfg, userSvc, logger)

	var metrics *middleware.Metrics
	if cfg.Metrics.Enabled {
		metrics, err = middleware.NewMetrics(middleware.MetricsOptions{
			Registerer: prometheus.DefaultRegisterer,
			Namespace:  cfg.Metrics.Namespace,
		})
		if err != nil {
			logger.Fatal("metrics", zap.Error(err))
		}
	}

	router := newRouter(routerDeps{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		jwt:      middleware.JWT(jwtService, userRepo, logger),
		auth:     auth.NewHandler(userSvc, jwtService, logger),
		users:    users.NewHandler(userSvc),
		brands:   brands.NewHandler(brandSvc),
		articles: articles.NewHandler(articleSvc),
		health: []healthCheck{
			{name: "postgres", check: pool.Ping},
			{name: "redis", check: rdb.Healthy},
		},
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("email_delivery", cfg.Email.Delivery))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

// newNotifier picks the credentials delivery configured by EMAIL_DELIVERY.
func newNotifier(cfg *config.Config, q *queue.Queue, logger *zap.Logger) (mail.Notifier, error) {
	switch cfg.Email.Delivery {
	case config.DeliveryDirect:
		sender, err := mail.NewSendGridSender(cfg.Email.APIKey, cfg.Email.FromName, cfg.Email.FromAddress, logger)
		if err != nil {
			return nil, err
		}
		return mail.NewDirectNotifier(sender), nil
	case config.DeliveryQueue:
		return mail.NewQueuedNotifier(q), nil
	}
	return mail.NewLogNotifier(logger), nil
}

// seedAdmin creates the default ADMIN. Missing settings are fine in development and an
// error worth shouting about in production; neither stops the server.
func seedAdmin(ctx context.Context, cfg *config.Config, svc *users.Service, logger *zap.Logger) {
	if cfg.Seed.AdminEmail == "" || cfg.Seed.AdminPassword == "" {
		if cfg.IsProduction() {
			logger.Error("DEFAULT_ADMIN_EMAIL and DEFAULT_ADMIN_PASSWORD are not set; no admin seeded")
		} else {
			logger.Warn("DEFAULT_ADMIN_EMAIL or DEFAULT_ADMIN_PASSWORD not set; skipping admin seed")
		}
		return
	}
	if err := svc.SeedAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		logger.Error("seed admin", zap.Error(err))
	}
}
