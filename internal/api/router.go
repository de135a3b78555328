// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/echotrace/echotrace/internal/config"
	"github.com/echotrace/echotrace/internal/middleware"
)

// NewRouter builds the HTTP handler tree.
func NewRouter(h *Handlers, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Security.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)
		if cfg.Security.RateLimitEnabled {
			r.Use(httprate.Limit(
				cfg.Security.RateLimitReqs,
				cfg.Security.RateLimitWindow,
				httprate.WithKeyFuncs(httprate.KeyByIP),
			))
		}

		r.Post("/webhook", h.Webhook)

		r.Get("/webhooks", h.ListWebhooks)
		r.Get("/webhooks/count", h.WebhookCount)
		r.Get("/webhooks/stats", h.WebhookStats)
		r.Get("/webhooks/locations", h.WebhookLocations)
		r.Get("/active-users", h.ActiveUsers)

		// Live stream, both transports feed off the same hub
		r.Get("/events", h.Events)
		r.Get("/ws", h.WebSocket)

		r.Post("/admin/purge", h.AdminPurge)
	})

	return r
}
