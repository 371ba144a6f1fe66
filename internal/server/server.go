// Package server composes the request pipeline exposed at the API
// boundary: authentication, rate limiting, quota, preprocessing, prompt
// selection, extraction, and usage accounting.
package server

import (
	"log/slog"

	"docgate/internal/auth"
	"docgate/internal/config"
	"docgate/internal/db"
	"docgate/internal/extract"
	"docgate/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Version is reported by the health endpoints.
const Version = "1.3.0"

// Server carries the collaborators of the extraction pipeline.
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	db      db.Service
	limiter *ratelimit.Limiter
	invoker *extract.Invoker
}

// New creates a Server.
func New(cfg *config.Config, database db.Service, invoker *extract.Invoker, logger *slog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger.With("component", "server"),
		db:      database,
		limiter: ratelimit.New(database),
		invoker: invoker,
	}
}

// RegisterRoutes attaches the health and extraction endpoints to a router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/", s.healthHandler)
	router.GET("/health", s.healthHandler)

	api := router.Group("/api/v1")
	api.Use(auth.APIKeyMiddleware(s.db))
	api.POST("/extract", s.extractHandler)
}
