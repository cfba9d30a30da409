package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/parking-reservation/internal/config"
	"github.com/iliyamo/parking-reservation/internal/database"
	"github.com/iliyamo/parking-reservation/internal/handler"
	"github.com/iliyamo/parking-reservation/internal/jobs"
	"github.com/iliyamo/parking-reservation/internal/logging"
	"github.com/iliyamo/parking-reservation/internal/middleware"
	"github.com/iliyamo/parking-reservation/internal/notify"
	"github.com/iliyamo/parking-reservation/internal/queue"
	"github.com/iliyamo/parking-reservation/internal/repository"
	"github.com/iliyamo/parking-reservation/internal/repository/memory"
	"github.com/iliyamo/parking-reservation/internal/router"
	"github.com/iliyamo/parking-reservation/internal/service"
)

// localPublisher hands events straight to the notification service when no
// broker is configured.
type localPublisher struct {
	notes *service.NotificationService
}

func (p localPublisher) Publish(ctx context.Context, ev queue.Event) error {
	return p.notes.HandleEvent(ctx, ev)
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		store service.Store
		db    handler.Pinger
	)
	switch cfg.StoreDriver {
	case config.DriverMemory:
		logger.Warn("using in-memory store; data is lost on exit")
		store = memory.New()
	default:
		sqlDB, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
		if err != nil {
			logger.Fatal("open database", zap.Error(err))
		}
		defer func() { _ = sqlDB.Close() }()
		if cfg.DBAutoMigrate {
			if err := database.Migrate(ctx, sqlDB); err != nil {
				logger.Fatal("migrate database", zap.Error(err))
			}
		}
		store = repository.NewStore(sqlDB)
		db = sqlDB
	}

	var notifiers []service.Notifier
	if s := notify.NewEmailSender(cfg.Notify.SendGridAPIKey, cfg.Notify.FromEmail, cfg.Notify.FromName, logger); s != nil {
		notifiers = append(notifiers, s)
	}
	if s := notify.NewSMSSender(cfg.Notify.TwilioSID, cfg.Notify.TwilioToken, cfg.Notify.TwilioFrom, logger); s != nil {
		notifiers = append(notifiers, s)
	}
	notes := service.NewNotificationService(store, logger, notifiers...)

	var pub service.Publisher = localPublisher{notes: notes}
	if cfg.Queue.URL != "" {
		pub = queue.NewPublisher(cfg.Queue.URL, cfg.Queue.Queue, logger)
		go func() {
			err := queue.StartConsumer(ctx, cfg.Queue.URL, cfg.Queue.Queue, notes.HandleEvent, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("event consumer stopped", zap.Error(err))
			}
		}()
	}

	reservations := service.NewReservationService(store, pub, logger)
	payments := service.NewPaymentService(store, pub, logger)
	auth := service.NewAuthService(store, service.AuthOptions{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
	})
	if err := auth.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		logger.Fatal("seed administrator", zap.Error(err))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; caching and rate limiting disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	cacheCfg := config.LoadCacheConfig()

	if cfg.Jobs.SweepEnabled {
		sweeper, err := jobs.NewSweeper(cfg.Jobs.SweepSchedule, reservations, logger)
		if err != nil {
			logger.Fatal("reservation sweeper", zap.Error(err))
		}
		sweeper.OnChange(func(ctx context.Context, _ service.SweepResult) {
			if _, err := middleware.InvalidateGroup(ctx, cacheCfg, rdb, middleware.SpotsGroup); err != nil {
				logger.Warn("spot cache invalidation failed", zap.Error(err))
			}
		})
		sweeper.Start()
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			sweeper.Stop(sctx)
		}()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewRequestValidator()
	router.Register(e, router.Handlers{
		Reservations:  handler.NewReservationHandler(reservations, logger),
		Payments:      handler.NewPaymentHandler(payments, logger),
		Spots:         handler.NewSpotHandler(service.NewSpotService(store), logger),
		Catalog:       handler.NewCatalogHandler(service.NewCatalogService(store), logger),
		Notifications: handler.NewNotificationHandler(notes, logger),
		Auth:          handler.NewAuthHandler(auth, logger),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Redis:     rdb,
		Cache:     cacheCfg,
		RateLimit: config.LoadRateLimitConfig(),
		DB:        db,
		Log:       logger,
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env), zap.String("store", cfg.StoreDriver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
}
