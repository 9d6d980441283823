package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/application"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/cache"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/config"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/handlers"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/identity"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/kafka"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/observability"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/outbox"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/repository/postgres"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/router"
	"github.com/SARVESHVARADKAR123/RealChat/services/chat/internal/tx"
)

func main() {
	cfg := config.Load()

	// Observability
	observability.InitLogger(cfg.ServiceName)
	log := observability.Log
	defer log.Sync()

	if cfg.TracingEnabled {
		tp, err := observability.InitTracer(cfg.ServiceName, cfg.JaegerURL)
		if err != nil {
			log.Fatal("failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error("failed to shutdown tracer provider", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Storage
	db, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := postgres.ApplyMigrations(ctx, db); err != nil {
			log.Fatal("failed to apply migrations", zap.Error(err))
		}
	}

	repo := &postgres.Repository{DB: db}
	if cfg.RedisAddr != "" {
		c := cache.New(cfg.RedisAddr)
		if err := c.Ping(ctx); err != nil {
			log.Warn("redis unreachable, continuing without cache", zap.Error(err))
			_ = c.Close()
		} else {
			repo.Cache = c
			defer c.Close()
		}
	}

	txm := &tx.Manager{DB: db}

	svc := application.New(application.Stores{
		Messages: repo,
		Chats:    repo,
		Users:    repo,
		Outbox:   repo,
	}, txm, log, cfg.ChatWindowSize)

	resolver := &identity.Resolver{
		Verifier: identity.Verifier{
			Secret:   cfg.JWTSecret,
			Issuer:   cfg.JWTIssuer,
			Audience: cfg.JWTAudience,
		},
		Users: repo,
	}

	// Outbox relay
	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers)
		defer producer.Close()

		worker := &outbox.Worker{
			Store:       repo,
			Tx:          txm,
			Producer:    producer,
			TopicPrefix: cfg.KafkaTopicPrefix,
			BatchSize:   cfg.OutboxBatchSize,
			PollDelay:   cfg.OutboxPollInterval,
			MaxRetries:  cfg.OutboxMaxRetries,
		}
		go worker.Start(ctx)
	} else {
		log.Warn("KAFKA_BROKERS not set, outbox events stay unpublished")
	}

	// HTTP Server for Observability (Metrics & Health)
	obsMux := http.NewServeMux()
	obsMux.Handle("/metrics", promhttp.Handler())
	obsMux.Handle("/health/live", http.HandlerFunc(observability.HealthLiveHandler))
	obsMux.Handle("/health/ready", observability.HealthReadyHandler(db))

	obsSrv := &http.Server{Addr: cfg.ObsHTTPAddr, Handler: obsMux}
	go func() {
		log.Info("HTTP observability server started", zap.String("addr", cfg.ObsHTTPAddr))
		if err := obsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP observability server failed", zap.Error(err))
		}
	}()

	msgH := handlers.NewMessageHandler(svc)
	chatH := handlers.NewChatHandler(svc)

	r := router.NewRouter(msgH, chatH, resolver, db, cfg)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		log.Info("chat service started", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("chat service shutdown failed", zap.Error(err))
	}
	if err := obsSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("observability shutdown failed", zap.Error(err))
	}

	log.Info("chat service stopped")
}
