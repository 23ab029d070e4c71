// Package httptransport assembles the HTTP surface. Handlers stay thin and
// delegate to domain services; authorization is resolved per route group
// (admin token, caller wallet JWT, or public read).
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	assethandler "brique/internal/asset/handler"
	factoryhandler "brique/internal/factory/handler"
	identityhandler "brique/internal/identity/handler"
	kychandler "brique/internal/kyc/handler"
	"brique/internal/platform/health"
	"brique/internal/platform/middleware"
	salehandler "brique/internal/sale/handler"
)

// Handlers carries the per-domain handlers the router mounts.
type Handlers struct {
	Identity *identityhandler.Handler
	KYC      *kychandler.Handler
	Asset    *assethandler.Handler
	Sale     *salehandler.Handler
	Factory  *factoryhandler.Handler
	Health   *health.Handler
}

// Config carries the transport-level settings.
type Config struct {
	AdminToken    string
	JWTSigningKey string
}

// NewRouter wires all endpoints with the shared middleware stack.
func NewRouter(h Handlers, cfg Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.LimitBody)

	h.Health.Register(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// public reads
	r.Group(func(r chi.Router) {
		h.Identity.RegisterPublic(r)
		h.KYC.RegisterPublic(r)
		h.Asset.RegisterPublic(r)
		h.Sale.RegisterPublic(r)
		h.Factory.RegisterPublic(r)
	})

	// platform-owner surface, authenticated by the shared admin token
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(cfg.AdminToken, logger))
		r.Use(middleware.ContentTypeJSON)
		h.Identity.RegisterAdmin(r)
		h.KYC.RegisterAdmin(r)
		h.Sale.RegisterAdmin(r)
		h.Factory.RegisterAdmin(r)
	})

	// caller-wallet surface, authenticated by bearer JWT (sub = wallet)
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireWallet(cfg.JWTSigningKey, logger))
		r.Use(middleware.ContentTypeJSON)
		h.KYC.RegisterWallet(r)
		h.Asset.RegisterWallet(r)
		h.Sale.RegisterWallet(r)
	})

	return r
}
