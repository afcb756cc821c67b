// Package storefront собирает и запускает HTTP-приложение магазина
// цифровых товаров: хранилище, кеш, брокер сообщений, платёжный провайдер
// и все сервисы поверх них.
package storefront

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/ogenyiken/zikistore/internal/cache"
	"github.com/ogenyiken/zikistore/internal/config"
	"github.com/ogenyiken/zikistore/internal/lib/jwt"
	"github.com/ogenyiken/zikistore/internal/lib/smtp"
	"github.com/ogenyiken/zikistore/internal/migrations"
	"github.com/ogenyiken/zikistore/internal/paystack"
	"github.com/ogenyiken/zikistore/internal/rabbitmq"
	authservice "github.com/ogenyiken/zikistore/internal/services/auth"
	catalogservice "github.com/ogenyiken/zikistore/internal/services/catalog"
	checkoutservice "github.com/ogenyiken/zikistore/internal/services/checkout"
	entitlementservice "github.com/ogenyiken/zikistore/internal/services/entitlement"
	filesservice "github.com/ogenyiken/zikistore/internal/services/files"
	paymentservice "github.com/ogenyiken/zikistore/internal/services/payment"
	senderservice "github.com/ogenyiken/zikistore/internal/services/sender"
	"github.com/ogenyiken/zikistore/internal/storage/repository"
)

// App инкапсулирует HTTP-сервер и долгоживущие соединения приложения.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
}

// New собирает приложение: подключает зависимости, накатывает миграции
// и регистрирует маршруты.
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

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitURL, cfg.ConnectRetries, cfg.ConnectRetryWait)
	if err != nil {
		return nil, err
	}
	rabbitCh, err := rabbitmq.SetupChannel(rabbitConn, rabbitmq.GetStoreQueues())
	if err != nil {
		return nil, err
	}
	publisher := rabbitmq.NewPublisher(rabbitCh)

	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	smtpTransport := smtp.NewTransport(cfg.SMTP, logger)
	paystackClient := paystack.NewClient(cfg.Paystack)

	authService := authservice.NewAuthService(db, jwtMaker)
	entitlementResolver := entitlementservice.New(db, cacheRedis, logger)
	filesService := filesservice.New(db, entitlementResolver, logger)
	catalogService := catalogservice.New(db, logger)
	checkoutService := checkoutservice.New(db, paystackClient, cfg.CallbackURL, logger)
	senderService := senderservice.NewSenderService(smtpTransport, logger)
	paymentService := paymentservice.New(db, senderService, publisher, entitlementResolver, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, authService,
		filesService, catalogService, checkoutService, paymentService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его по отмене контекста.
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
		if closeErr := a.rabbitConn.Close(); closeErr != nil {
			a.logger.Error("failed to close rabbitmq connection", slog.Any("err", closeErr))
		}
		if closeErr := a.db.DB.Close(); closeErr != nil {
			a.logger.Error("failed to close database connection", slog.Any("err", closeErr))
		}
		return err
	}
}
