package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"shopkeeper/internal/auth"
	"shopkeeper/internal/config"
	"shopkeeper/internal/metrics"
	"shopkeeper/internal/product/controller"
)

type Pinger interface {
	PingContext(ctx context.Context) error
}

func NewRouter(
	productCtrl *controller.ProductsController,
	authMW *auth.Middleware,
	db Pinger,
	httpMetrics *metrics.HTTPMetrics,
	cfg config.RateLimitConfig,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.StripSlashes)
	r.Use(WithRequestID)
	r.Use(WithLogging(logger))
	r.Use(middleware.Recoverer)
	r.Use(WithMetrics(httpMetrics))

	r.Get("/health", healthHandler(db, logger))
	r.Handle("/metrics", httpMetrics.Handler())

	manager := authMW.RequireRole(auth.RoleManager)

	r.Route("/products", func(r chi.Router) {
		r.Use(WithRateLimit(rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst)))

		r.With(authMW.Authenticate).Get("/", productCtrl.ListProducts)
		r.With(authMW.Authenticate, manager).Post("/", productCtrl.CreateProduct)

		r.Get("/{productId}", productCtrl.GetProduct)
		r.With(authMW.Authenticate, manager).Patch("/{productId}", productCtrl.UpdateProduct)
		r.With(authMW.Authenticate, manager).Delete("/{productId}", productCtrl.DeleteProduct)
	})

	return r
}

func healthHandler(db Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := db.PingContext(ctx); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"status": "unavailable"})
			return
		}

		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}
