package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ticktee/internal/config"
	"ticktee/internal/database"
	"ticktee/internal/ratelimit"
	"ticktee/internal/server"
	"ticktee/internal/services"
	"ticktee/pkg/mailer"
	"ticktee/pkg/rabbitmq"
	"ticktee/pkg/storage"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(".env")
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	log := newLogger(cfg)
	cfg.WarnMissing(log)
	ensureJWTSecret(cfg, log)

	ctx := context.Background()

	// --- Database ---
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		log.WithError(err).Fatal("failed to migrate database")
	}

	// --- Supporting services ---
	limiterStore, err := newLimiterStore(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	defer limiterStore.Close()

	uploader, err := newUploader(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize object storage")
	}
	if uploader == nil {
		log.Warn("object storage not configured, uploads are disabled")
	}

	mail, err := newMailer(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize mailer")
	}

	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.DefaultConfig(cfg.RabbitMQURL), log)
		if err != nil {
			log.WithError(err).Fatal("failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Info("RabbitMQ not configured, order events are handled inline")
	}

	// --- HTTP server ---
	srv, err := server.New(server.Deps{
		Config:       cfg,
		DB:           db,
		Log:          log,
		LimiterStore: limiterStore,
		Uploader:     uploader,
		Publisher:    publisher,
		Mailer:       mail,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to build server")
	}

	if cfg.AdminEmail != "" {
		if err := srv.Auth.EnsureAdmin(cfg.AdminEmail, cfg.AdminPassword); err != nil {
			log.WithError(err).Error("failed to bootstrap admin account")
		}
	}

	// --- Notification worker ---
	if mqClient != nil {
		if err := mqClient.Consume(srv.Notifications.HandleEvent); err != nil {
			log.WithError(err).Error("failed to start order event consumer")
		} else {
			log.Info("order event consumer started")
		}
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.WithField("addr", cfg.Port).Info("starting server")
		if err := srv.App.Listen(cfg.Port); err != nil {
			log.WithError(err).Fatal("server failed to start")
		}
	}()

	<-quit
	log.Info("shutting down server")
	if err := srv.App.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.WithError(err).Error("error during server shutdown")
	}
	log.Info("server stopped")
}

// newLogger builds the process logger: text in development, JSON elsewhere.
func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if cfg.IsDevelopment() {
		log.SetLevel(logrus.DebugLevel)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return log
	}
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{})
	return log
}

// ensureJWTSecret fills in a random signing secret when none is configured.
// Sessions then do not survive a restart.
func ensureJWTSecret(cfg *config.Config, log logrus.FieldLogger) {
	if cfg.JWTSecret != "" {
		return
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.WithError(err).Fatal("failed to generate JWT secret")
	}
	cfg.JWTSecret = hex.EncodeToString(buf)
	log.Warn("JWT_SECRET not set, using a random secret for this process")
}

// newLimiterStore returns a Redis-backed counter store when REDIS_ADDR is set,
// and a process-local one otherwise.
func newLimiterStore(ctx context.Context, cfg *config.Config) (ratelimit.Store, error) {
	if cfg.RedisAddr == "" {
		return ratelimit.NewMemoryStore(ratelimit.DefaultSweepInterval), nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPass})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.RedisAddr, err)
	}
	return ratelimit.NewRedisStore(client, "ticktee:ratelimit:"), nil
}

// newUploader returns nil when object storage is not configured.
func newUploader(ctx context.Context, cfg *config.Config) (storage.Uploader, error) {
	if !cfg.Storage.Enabled() {
		return nil, nil
	}
	store, err := storage.NewMinioStore(ctx, storage.Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		UseSSL:    cfg.Storage.UseSSL,
		PublicURL: cfg.Storage.PublicURL,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// newMailer sends over SMTP when a relay is configured and only logs otherwise.
func newMailer(cfg *config.Config, log logrus.FieldLogger) (mailer.Mailer, error) {
	if !cfg.SMTP.Enabled() {
		log.Warn("SMTP not configured, emails are logged instead of sent")
		return mailer.NewLogMailer(log), nil
	}
	m, err := mailer.NewSMTPMailer(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}
