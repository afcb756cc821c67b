// Package storefront предоставляет маршруты для основного приложения.
package storefront

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/ogenyiken/zikistore/internal/config"
	"github.com/ogenyiken/zikistore/internal/http/handlers/auth/login"
	"github.com/ogenyiken/zikistore/internal/http/handlers/auth/register"
	checkoutcreate "github.com/ogenyiken/zikistore/internal/http/handlers/checkout/create"
	checkoutstatus "github.com/ogenyiken/zikistore/internal/http/handlers/checkout/status"
	filedownload "github.com/ogenyiken/zikistore/internal/http/handlers/files/download"
	fileupload "github.com/ogenyiken/zikistore/internal/http/handlers/files/upload"
	"github.com/ogenyiken/zikistore/internal/http/handlers/payment/paystackwebhook"
	productcreate "github.com/ogenyiken/zikistore/internal/http/handlers/product/create"
	"github.com/ogenyiken/zikistore/internal/http/middlewarectx"
	authservice "github.com/ogenyiken/zikistore/internal/services/auth"
	catalogservice "github.com/ogenyiken/zikistore/internal/services/catalog"
	checkoutservice "github.com/ogenyiken/zikistore/internal/services/checkout"
	filesservice "github.com/ogenyiken/zikistore/internal/services/files"
	paymentservice "github.com/ogenyiken/zikistore/internal/services/payment"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config,
	authService *authservice.AuthService,
	filesService *filesservice.Service,
	catalogService *catalogservice.Service,
	checkoutService *checkoutservice.Service,
	paymentService *paymentservice.Service,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	limiter := rate.NewLimiter(10, 30)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))
			r.Post("/checkout", checkoutcreate.New(logger, checkoutService).ServeHTTP)
			r.Get("/orders/{id}/status", checkoutstatus.New(logger, checkoutService).ServeHTTP)
			r.Post("/files", fileupload.New(logger, filesService).ServeHTTP)
			r.Get("/files/{id}", filedownload.New(logger, filesService).ServeHTTP)
			r.Post("/products", productcreate.New(logger, catalogService).ServeHTTP)
		})
	})

	// Webhook endpoint (без аутентификации, подпись проверяется секретом провайдера)
	r.Post("/api/webhooks/paystack", paystackwebhook.New(logger, paymentService, cfg.Paystack.SecretKey).ServeHTTP)

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
