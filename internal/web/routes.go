// SPDX-License-Identifier: MIT

package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wyniki-tenis/overlayd/internal/web/middleware"
)

// Routes builds the complete router with the canonical middleware stack.
func (s *Server) Routes() http.Handler {
	r := middleware.NewRouter(middleware.StackConfig{
		EnableSecurityHeaders: true,
		CSP:                   middleware.DefaultCSP,
		EnableMetrics:         true,
		EnableLogging:         true,
		RateLimitEnabled:      s.cfg.RateLimitEnabled,
		RateLimitRPS:          s.cfg.RateLimitRPS,
	})

	r.Get("/healthz", s.health.ServeHealth)
	r.Get("/readyz", s.health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	// Public pages
	r.Get("/", s.handleIndex)
	r.Get("/wyniki", s.handleWyniki)
	r.Get("/kort/all", s.handleKortAll)
	r.Get("/kort/{kortID}", s.handleKort)

	// Admin pages, basic auth gated
	r.Group(func(r chi.Router) {
		r.Use(s.requireAdmin)
		r.Get("/config", s.handleConfigForm)
		r.Post("/config", s.handleConfigSave)
		r.Get("/overlay-links", s.handleLinksPage)
		r.Post("/overlay-links", s.handleLinksForm)
		r.Post("/api/overlay-links/reload", s.handleLinksReload)
	})

	// JSON API
	r.Get("/api/overlay-links", s.handleAPIList)
	r.Post("/api/overlay-links", s.handleAPICreate)
	r.Get("/api/overlay-links/{id}", s.handleAPIGet)
	r.Put("/api/overlay-links/{id}", s.handleAPIUpdate)
	r.Delete("/api/overlay-links/{id}", s.handleAPIDelete)

	return r
}
