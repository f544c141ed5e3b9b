package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	mW "github.com/placementboard/backend/internal/middleware"
	"github.com/placementboard/backend/internal/services"
)

type RouterConfig struct {
	Ledger         *services.LedgerService
	Boosts         *services.BoostService
	Tiers          TierLister
	Auth           *mW.Authenticator
	CronSecret     string
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	bullets := NewBulletsHandler(cfg.Ledger, cfg.Boosts)
	admin := NewAdminHandler(cfg.Ledger, cfg.Boosts)
	boosts := NewBoostsHandler(cfg.Boosts, cfg.Tiers)

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"https://*", "http://*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", mW.CronSecretHeader},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		// Public endpoints (no auth required)
		r.Get("/boosts", boosts.ListActive)
		r.Get("/boosts/pricing", boosts.Pricing)

		// Scheduler endpoint (shared secret)
		r.With(mW.CronSecret(cfg.CronSecret)).Post("/internal/boosts/sweep", boosts.Sweep)

		// Protected endpoints (auth required)
		r.Group(func(r chi.Router) {
			r.Use(cfg.Auth.AuthMiddleware)

			r.Get("/bullets", bullets.GetBullets)
			r.Get("/bullets/{ownerId}", bullets.GetBullets)
			r.Post("/bullets/transactions", bullets.Spend)
			r.Post("/bullets/{ownerId}/transactions", bullets.Spend)

			r.Get("/admin/bullets", admin.GetBullets)
			r.Post("/admin/bullets", admin.AdjustBullets)
			r.Get("/admin/boosts", admin.ListBoosts)
			r.Post("/admin/boosts", admin.CreateBoost)
			r.Patch("/admin/boosts/{boostId}", admin.UpdateBoost)
			r.Delete("/admin/boosts/{boostId}", admin.RevokeBoost)
		})
	})

	return r
}
