// Puzzlebank - Daily Puzzle Rotation and Content Injection Service
// Copyright 2026 Daily Puzzle Post
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dailypuzzlepost/puzzlebank

// Package api exposes the HTTP surface: the public read endpoints that
// serve puzzles by date, and the admin endpoints that inject content,
// manage backups, and read the audit log.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dailypuzzlepost/puzzlebank/internal/audit"
	"github.com/dailypuzzlepost/puzzlebank/internal/backup"
	"github.com/dailypuzzlepost/puzzlebank/internal/config"
	"github.com/dailypuzzlepost/puzzlebank/internal/injection"
	"github.com/dailypuzzlepost/puzzlebank/internal/middleware"
	"github.com/dailypuzzlepost/puzzlebank/internal/serving"
)

// Router wires handlers to their collaborators.
type Router struct {
	facade   *serving.Facade
	engine   *injection.Engine
	backups  *backup.Manager
	auditLog audit.Store
	health   *serving.HealthChecker
	auth     *middleware.Authenticator
	security config.SecurityConfig
}

// NewRouter constructs the API router.
func NewRouter(
	facade *serving.Facade,
	engine *injection.Engine,
	backups *backup.Manager,
	auditLog audit.Store,
	health *serving.HealthChecker,
	auth *middleware.Authenticator,
	security config.SecurityConfig,
) *Router {
	return &Router{
		facade:   facade,
		engine:   engine,
		backups:  backups,
		auditLog: auditLog,
		health:   health,
		auth:     auth,
		security: security,
	}
}

// Handler assembles the chi route tree.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: router.security.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	if router.security.RateLimit > 0 {
		r.Use(httprate.LimitByIP(router.security.RateLimit, time.Minute))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SecurityHeaders)
		r.Use(middleware.PrometheusMetrics)

		// Public read endpoints.
		r.Get("/health", router.handleHealth)
		r.Get("/backups", router.handleListBackups)

		r.Route("/{puzzleType}", func(r chi.Router) {
			r.Get("/today", router.handleToday)
			r.Get("/date/{date}", router.handleForDate)
			r.Get("/bank", router.handleListBank)
			r.Get("/rotation/status", router.handleRotationStatus)
			r.Post("/validate", router.handleValidate)

			// Mutations require credentials when auth is enabled.
			r.Group(func(r chi.Router) {
				r.Use(router.auth.Require)
				r.Post("/inject", router.handleInject)
				r.Post("/backup", router.handleCreateBackup)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(router.auth.Require)
			r.Get("/audit", router.handleListAudit)
			r.Post("/backups/{snapshotID}/restore", router.handleRestore)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
