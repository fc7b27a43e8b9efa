// Package lovebug собирает основное HTTP-приложение платформы знакомств:
// хранилище, кеш, платёжный провайдер, очередь уведомлений и маршруты API.
package lovebug

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/lovebug/backend/internal/cache"
	"github.com/lovebug/backend/internal/config"
	"github.com/lovebug/backend/internal/lib/jwt"
	"github.com/lovebug/backend/internal/lib/rabbitmq"
	"github.com/lovebug/backend/internal/migrations"
	"github.com/lovebug/backend/internal/paymentprovider"
	analyticsservice "github.com/lovebug/backend/internal/services/analytics"
	authservice "github.com/lovebug/backend/internal/services/auth"
	checkoutservice "github.com/lovebug/backend/internal/services/checkout"
	invoiceservice "github.com/lovebug/backend/internal/services/invoice"
	moderationservice "github.com/lovebug/backend/internal/services/moderation"
	notificationservice "github.com/lovebug/backend/internal/services/notification"
	profileservice "github.com/lovebug/backend/internal/services/profile"
	"github.com/lovebug/backend/internal/storage/repository"
)

type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	conn, err := rabbitmq.Connect(cfg.AddressRabbit, cfg.RetriesRabbit, cfg.DelayRabbit)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		return nil, err
	}
	publisher := &rabbitmq.ChannelPublisher{Ch: ch}

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	providerClient := paymentprovider.NewClient(cfg.AppID, cfg.SecretKey, cfg.APIURL)
	invoices := invoiceservice.NewInvoiceService()

	authService := authservice.NewAuthService(db, jwtMaker)
	moderationService := moderationservice.NewModerationService(db, logger)
	profileService := profileservice.NewProfileService(db, cacheRedis, moderationService, logger)
	checkoutService := checkoutservice.NewCheckoutService(db, providerClient, publisher, invoices, cfg.PaymentProvider, logger)
	analyticsService := analyticsservice.NewAnalyticsService(db, cacheRedis, logger)
	notificationService := notificationservice.NewNotificationService(db, publisher, logger)

	router := chi.NewRouter()

	RegisterRoutes(router, logger, cfg, jwtMaker, db,
		cacheRedis, conn,
		authService, profileService, checkoutService,
		moderationService, analyticsService, notificationService, invoices)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if closeErr := a.ch.Close(); closeErr != nil {
			a.logger.Error("failed to close channel", slog.Any("err", closeErr))
		}
		if closeErr := a.conn.Close(); closeErr != nil {
			a.logger.Error("failed to close connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close storage", slog.Any("err", closeErr))
		}
		return err
	}
}
