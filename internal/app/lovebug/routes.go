package lovebug

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/lovebug/backend/internal/cache"
	"github.com/lovebug/backend/internal/config"
	"github.com/lovebug/backend/internal/http/handlers/admin/analyticsoverview"
	"github.com/lovebug/backend/internal/http/handlers/admin/campaigns"
	"github.com/lovebug/backend/internal/http/handlers/admin/moderationaction"
	"github.com/lovebug/backend/internal/http/handlers/admin/moderationlist"
	"github.com/lovebug/backend/internal/http/handlers/admin/realtimemetrics"
	"github.com/lovebug/backend/internal/http/handlers/admin/unban"
	"github.com/lovebug/backend/internal/http/handlers/admin/userlist"
	"github.com/lovebug/backend/internal/http/handlers/admin/uservisibility"
	"github.com/lovebug/backend/internal/http/handlers/auth/login"
	"github.com/lovebug/backend/internal/http/handlers/auth/register"
	"github.com/lovebug/backend/internal/http/handlers/checkout/initiate"
	"github.com/lovebug/backend/internal/http/handlers/checkout/verify"
	"github.com/lovebug/backend/internal/http/handlers/checkout/webhook"
	eventtrack "github.com/lovebug/backend/internal/http/handlers/events/track"
	"github.com/lovebug/backend/internal/http/handlers/health"
	"github.com/lovebug/backend/internal/http/handlers/invoice/download"
	planlist "github.com/lovebug/backend/internal/http/handlers/plans/list"
	"github.com/lovebug/backend/internal/http/handlers/profile/browse"
	profileget "github.com/lovebug/backend/internal/http/handlers/profile/get"
	"github.com/lovebug/backend/internal/http/handlers/profile/step"
	"github.com/lovebug/backend/internal/http/handlers/profile/visibility"
	reportcreate "github.com/lovebug/backend/internal/http/handlers/report/create"
	"github.com/lovebug/backend/internal/http/handlers/subscription/cancel"
	"github.com/lovebug/backend/internal/http/handlers/subscription/orders"
	"github.com/lovebug/backend/internal/http/handlers/subscription/status"
	"github.com/lovebug/backend/internal/http/middlewarectx"
	"github.com/lovebug/backend/internal/lib/jwt"
	analyticsservice "github.com/lovebug/backend/internal/services/analytics"
	authservice "github.com/lovebug/backend/internal/services/auth"
	checkoutservice "github.com/lovebug/backend/internal/services/checkout"
	invoiceservice "github.com/lovebug/backend/internal/services/invoice"
	moderationservice "github.com/lovebug/backend/internal/services/moderation"
	notificationservice "github.com/lovebug/backend/internal/services/notification"
	profileservice "github.com/lovebug/backend/internal/services/profile"
	"github.com/lovebug/backend/internal/storage/repository"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, cfg *config.Config, jwtMaker jwt.Maker, db *repository.Storage,
	cacheRedis *cache.Cache, conn *amqp.Connection,
	authService *authservice.AuthService,
	profileService *profileservice.ProfileService,
	checkoutService *checkoutservice.CheckoutService,
	moderationService *moderationservice.ModerationService,
	analyticsService *analyticsservice.AnalyticsService,
	notificationService *notificationservice.NotificationService,
	invoices *invoiceservice.InvoiceService,
) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)
		r.Get("/plans", planlist.New(logger).ServeHTTP)

		// Webhook провайдера (без аутентификации, подпись проверяется в обработчике)
		r.Post("/checkout/webhook", webhook.New(logger, checkoutService, cfg.WebhookSecret).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(jwtMaker, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))

			r.Get("/profile", profileget.New(logger, profileService).ServeHTTP)
			r.Post("/profile/steps/{step}", step.New(logger, profileService).ServeHTTP)
			r.Put("/profile/visibility", visibility.New(logger, profileService).ServeHTTP)
			r.Get("/profiles", browse.New(logger, profileService).ServeHTTP)

			r.Post("/reports", reportcreate.New(logger, moderationService).ServeHTTP)
			r.Post("/events", eventtrack.New(logger, analyticsService).ServeHTTP)

			r.Post("/checkout/initiate", initiate.New(logger, checkoutService, db).ServeHTTP)
			r.Post("/checkout/verify/{order_id}", verify.New(logger, checkoutService).ServeHTTP)
			r.Get("/checkout/invoice/{order_id}", download.New(logger, checkoutService, invoices).ServeHTTP)

			r.Get("/subscription", status.New(logger, checkoutService).ServeHTTP)
			r.Delete("/subscription", cancel.New(logger, checkoutService).ServeHTTP)
			r.Get("/subscription/orders", orders.New(logger, checkoutService).ServeHTTP)

			// Группа администратора
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))

				r.Get("/users", userlist.New(logger, db).ServeHTTP)
				r.Post("/users/{user_uid}/visibility", uservisibility.New(logger, profileService).ServeHTTP)
				r.Post("/users/{user_uid}/unban", unban.New(logger, moderationService).ServeHTTP)

				r.Get("/moderation/reports", moderationlist.New(logger, moderationService).ServeHTTP)
				r.Post("/moderation/reports/{report_id}", moderationaction.New(logger, moderationService).ServeHTTP)

				r.Get("/analytics/overview", analyticsoverview.New(logger, analyticsService).ServeHTTP)
				r.Get("/analytics/realtime", realtimemetrics.New(logger, analyticsService).ServeHTTP)

				campaignsHandler := campaigns.New(logger, notificationService)
				r.Get("/notifications", campaignsHandler.List)
				r.Post("/notifications", campaignsHandler.Create)
				r.Post("/notifications/templates", campaignsHandler.CreateTemplate)
				r.Delete("/notifications/templates/{template_id}", campaignsHandler.DeleteTemplate)
				r.Post("/notifications/{campaign_id}/send", campaignsHandler.Send)
			})
		})
	})

	r.Get("/health", health.New(logger, db.DB, cacheRedis, conn).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
