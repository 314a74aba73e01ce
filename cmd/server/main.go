package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Harsha-vardhan456/bus-complaint-system/internal/cache"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/config"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/handler"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/logging"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/metrics"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/middleware"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/notify"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/queue"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/repository"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/router"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/storage"
	"github.com/Harsha-vardhan456/bus-complaint-system/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel).With("service", "bus-complaint-api", "env", cfg.Env)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := storage.Open(ctx, cfg.Store)
	cancel()
	if err != nil {
		logger.Error("store open failed", "driver", cfg.Store.Driver, "err", err)
		os.Exit(1)
	}
	logger.Info("store ready", "driver", cfg.Store.Driver)

	var complaintStore repository.ComplaintStore = store
	rdb := config.NewRedisClient()
	if rdb != nil {
		complaintStore = cache.NewComplaintCache(store, rdb, cfg.Cache)
		logger.Info("complaint cache enabled", "ttl", cfg.Cache.TTL)
	} else {
		logger.Info("redis unavailable, complaint cache disabled")
	}

	m := metrics.New("bus_complaints")

	tokens := utils.NewTokenService(cfg.JWTSecret, cfg.ResetSecret)
	tokens.SessionTTL = cfg.SessionTTL
	tokens.ResetTTL = cfg.ResetTTL

	mailer := notify.NewMailer(cfg.SMTP, cfg.FrontendURL)
	if cfg.SMTP.Host == "" {
		logger.Warn("SMTP_HOST not set, emails are only logged")
	}

	var publisher *queue.Publisher
	var pub notify.Publisher
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL)
		pub = publisher
	}
	dispatcher := notify.NewAsyncDispatcher(mailer, pub, cfg.NotifyWorkers, m)

	runCtx, stopConsumers := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	if cfg.RabbitURL != "" {
		consumer := &queue.Consumer{URL: cfg.RabbitURL, Handle: dispatcher.Deliver}
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", "err", err)
			}
		}()
		logger.Info("notification queue enabled", "queue", queue.NotificationQueue)
	} else {
		close(consumerDone)
		logger.Info("RABBITMQ_URL not set, notifications delivered by local workers", "workers", cfg.NotifyWorkers)
	}

	users := repository.NewUserRepo(store, cfg.PBKDF2Rounds)
	complaints := repository.NewComplaintRepo(complaintStore)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(middleware.Metrics(m))
	e.Use(middleware.RequestLogger(logger))
	e.Use(echomw.CORS())

	router.RegisterRoutes(e, m)
	router.RegisterAuth(e, handler.NewAuthHandler(users, tokens, dispatcher), middleware.RateLimit(cfg.RateLimit, rdb))
	router.RegisterComplaints(e, handler.NewComplaintHandler(complaints, dispatcher, m), tokens)
	router.RegisterAdmin(e, handler.NewAdminHandler(complaints, dispatcher, m), tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "err", err)
	}

	stopConsumers()
	<-consumerDone
	dispatcher.Close()
	if publisher != nil {
		_ = publisher.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := store.Close(); err != nil {
		logger.Error("store close", "err", err)
	}
	logger.Info("server stopped")
}
