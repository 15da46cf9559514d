package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/safetyshop-backend/api/controllers"
	"github.com/angelmondragon/safetyshop-backend/api/middleware"
	"github.com/angelmondragon/safetyshop-backend/internal/invoice"
	"github.com/angelmondragon/safetyshop-backend/pkg/config"
	"github.com/angelmondragon/safetyshop-backend/pkg/db"
	"github.com/angelmondragon/safetyshop-backend/pkg/logger"
	"github.com/angelmondragon/safetyshop-backend/pkg/redis"
)

// NewRouter wires the HTTP surface. redisClient may be nil, in which case
// readiness skips redis and invoice downloads are not throttled.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	invoiceSvc invoice.Service,
	metricsHandler http.Handler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	var (
		redisPinger redis.Pinger
		limiter     redis.RateLimiter
	)
	if redisClient != nil {
		redisPinger = redisClient
		limiter = redisClient
	}

	pdfPolicy := middleware.NewRateLimitPolicy(
		"invoice_pdf",
		cfg.RateLimit.InvoiceWindow,
		cfg.RateLimit.InvoiceLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	if metricsHandler != nil {
		r.Handle("/metrics", metricsHandler)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/orders/{orderId}", func(r chi.Router) {
			r.Get("/invoice", controllers.InvoiceDocument(invoiceSvc, logg))
			r.With(middleware.RateLimit(pdfPolicy, limiter, logg)).Get("/invoice.pdf", controllers.InvoicePDF(invoiceSvc, logg))
		})
		r.Post("/invoices/preview", controllers.InvoicePreview(invoiceSvc, logg))
	})

	return r
}
