package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/hotel-room-service/internal/config"
	"github.com/iliyamo/hotel-room-service/internal/database"
	"github.com/iliyamo/hotel-room-service/internal/handler"
	"github.com/iliyamo/hotel-room-service/internal/metrics"
	"github.com/iliyamo/hotel-room-service/internal/middleware"
	"github.com/iliyamo/hotel-room-service/internal/ordering"
	"github.com/iliyamo/hotel-room-service/internal/queue"
	"github.com/iliyamo/hotel-room-service/internal/repository"
	"github.com/iliyamo/hotel-room-service/internal/router"
	"github.com/iliyamo/hotel-room-service/internal/service"
	"github.com/iliyamo/hotel-room-service/internal/session"
	"github.com/iliyamo/hotel-room-service/internal/utils"
)

func main() {
	cfg := config.Load() // Load environment config
	logger := config.NewLogger(cfg.Env, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database open failed")
	}
	defer db.Close()
	migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancel()
		logger.Fatal().Err(err).Msg("schema migration failed")
	}
	cancel()

	rdb := config.NewRedisClient(logger)
	if rdb == nil {
		logger.Fatal().Msg("redis is required for room sessions")
	}
	defer rdb.Close()

	// repositories
	rooms := repository.NewRoomRepo(db)
	menu := repository.NewMenuRepo(db)
	orders := repository.NewOrderRepo(db)
	messages := repository.NewMessageRepo(db)
	push := repository.NewPushRepo(db)
	staff := repository.NewStaffRepo(db)
	tokens := repository.NewTokenRepo(db)

	sessions := session.NewStore(rdb, cfg.RoomSessionTTL)
	codec := utils.NewRoomTokenCodec(cfg.RoomTokenSecret)
	validator := ordering.NewValidator(menu, ordering.Rules{
		MinLead:         time.Duration(cfg.MinLeadMinutes) * time.Minute,
		MaxAdvance:      time.Duration(cfg.MaxAdvanceDays) * 24 * time.Hour,
		MaxLineQuantity: cfg.MaxLineQuantity,
		PaymentMethods:  cfg.PaymentMethods,
		Location:        cfg.Location,
	})
	publisher := service.NewPublisher(cfg.RabbitURL, logger)
	defer publisher.Close()
	manager := ordering.NewManager(orders, publisher, logger)
	f := handler.NewFormatter(cfg.Locale, cfg.Currency, cfg.Location)

	if cfg.NotifyConsumerEnabled {
		consumer := queue.NewConsumer(cfg.RabbitURL, os.Getenv("ORDER_LOG_DIR"), push, queue.LogPusher{Logger: logger}, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error().Err(err).Msg("notification consumer stopped")
			}
		}()
	}
	if cfg.MetricsEnabled {
		metrics.Register()
	}

	e := echo.New() // Create Echo instance
	e.HideBanner = true
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

	router.RegisterRoutes(e, db, rdb, cfg.MetricsEnabled)
	router.RegisterPublic(e,
		handler.NewMenuHandler(menu, f, logger),
		middleware.NewRedisCache(config.LoadCacheConfig(), rdb, logger))
	router.RegisterAuth(e,
		handler.NewAuthHandler(staff, tokens, handler.AuthOptions{
			JWTSecret:      cfg.JWTSecret,
			AccessTTLMin:   cfg.AccessTTLMin,
			RefreshTTLDays: cfg.RefreshTTLDays,
		}, logger),
		cfg.JWTSecret,
		middleware.NewTokenBucket(config.LoadRateLimitConfig("auth"), rdb, logger))

	guest := handler.NewGuestHandler(rooms, sessions, codec, menu, validator, manager, messages, push, f,
		handler.GuestOptions{
			CookieName:     cfg.RoomSessionCookie,
			CookieSecure:   cfg.CookieSecure,
			PushPublicKey:  cfg.PushPublicKey,
			PaymentMethods: cfg.PaymentMethods,
			MinLead:        time.Duration(cfg.MinLeadMinutes) * time.Minute,
		}, logger)
	router.RegisterGuest(e, guest, router.GuestMiddleware{
		Session:    middleware.RoomSession(sessions, cfg.RoomSessionCookie, logger),
		ScanLimit:  middleware.NewTokenBucket(config.LoadRateLimitConfig("scan"), rdb, logger),
		GuestLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig("guest"), rdb, logger),
	})

	admin := handler.NewAdminHandler(manager, menu, rooms, messages, codec, f, handler.AdminOptions{
		BaseURL:      cfg.BaseURL,
		UrgentWindow: time.Duration(cfg.UrgentWindowMinutes) * time.Minute,
	}, logger)
	router.RegisterAdmin(e, admin, cfg.JWTSecret)

	addr := ":" + cfg.Port // Address string with port
	go func() {
		logger.Info().Str("addr", addr).Str("env", cfg.Env).Str("tz", cfg.HotelTimezone).Msg("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
	logger.Info().Msg("server stopped")
}
