// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for the
// case tracker API.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"casetracker/internal/handlers"
	"casetracker/internal/metrics"
	"casetracker/internal/middleware"
)

// Options configures the middleware chains.
type Options struct {
	// Limiter throttles write endpoints. Leave nil to disable; do not pass
	// a typed nil pointer.
	Limiter middleware.Allower

	// TrustActorHeader enables attribution through X-Actor-ID.
	TrustActorHeader bool

	// TrustProxyHeaders keys the limiter on forwarding headers.
	TrustProxyHeaders bool
}

// New creates and returns the configured Chi router with all middleware
// and route groups wired up.
func New(cases *handlers.Cases, stats *handlers.Stats, opts Options) chi.Router {
	r := chi.NewRouter()

	// Global middleware: applied to every request.
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Metrics)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Actor(opts.TrustActorHeader))

		r.Route("/case", func(r chi.Router) {
			r.Get("/", cases.List)
			r.Get("/categories", cases.Categories)

			// Writes are rate-limited per client IP.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(opts.Limiter, opts.TrustProxyHeaders))
				r.Post("/", cases.Create)
				r.Patch("/{id}", cases.Update)
				r.Delete("/{id}", cases.Delete)
			})
		})

		r.Route("/stats", func(r chi.Router) {
			r.Get("/medium", stats.Medium)
			r.Get("/category", stats.Category)
			r.Get("/periods", stats.Periods)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
