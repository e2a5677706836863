package server

import (
	"os"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/medfront/medfront/internal/core"
	"github.com/medfront/medfront/internal/observability"
	"github.com/medfront/medfront/internal/server/handlers"
	servermw "github.com/medfront/medfront/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes(deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Store, deps.Tokens)
	papersHandler := handlers.NewPapersHandler(deps.Store)
	newsHandler := handlers.NewNewsHandler(deps.Store)
	librariesHandler := handlers.NewLibrariesHandler(deps.Store)
	adminHandler := handlers.NewAdminHandler(deps.Store)
	systemHandler := handlers.NewSystemHandler(deps.Store)
	chatHandler := handlers.NewChatHandler(deps.Docs, deps.LLM)

	authn := &servermw.Authenticator{Tokens: deps.Tokens, Users: deps.Store}
	requireAuth := authn.Require
	requireContentManager := authn.RequireRoles(core.RoleSuperAdmin, core.RolePaperAdmin)
	requireSuperAdmin := authn.RequireRoles(core.RoleSuperAdmin)

	// Health endpoints
	s.router.Get("/health", handlers.HealthHandler)
	s.router.Get("/health/live", handlers.LivenessHandler)
	s.router.Get("/health/ready", handlers.ReadinessHandler)
	s.router.Get("/health/startup", handlers.StartupHandler)

	// Version endpoint
	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", MetricsHandler)

	s.router.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", authHandler.Register)
		api.Post("/auth/login", authHandler.Login)
		api.With(requireAuth).Get("/auth/me", authHandler.Me)
		api.With(requireAuth).Put("/auth/me", authHandler.UpdateMe)

		api.Route("/papers", func(r chi.Router) {
			r.Get("/", papersHandler.List)
			r.Get("/domains", papersHandler.Domains)
			r.Get("/{id}", papersHandler.Get)
			r.With(requireContentManager).Post("/", papersHandler.Create)
			r.With(requireContentManager).Put("/{id}", papersHandler.Update)
			r.With(requireContentManager).Delete("/{id}", papersHandler.Delete)
			r.With(requireAuth).Post("/{id}/comments", papersHandler.AddComment)
		})

		api.Get("/tags", papersHandler.Tags)

		api.Route("/news", func(r chi.Router) {
			r.Get("/", newsHandler.List)
			r.Get("/categories", newsHandler.Categories)
			r.Get("/{id}", newsHandler.Get)
			r.With(requireContentManager).Post("/", newsHandler.Create)
			r.With(requireContentManager).Put("/{id}", newsHandler.Update)
			r.With(requireContentManager).Delete("/{id}", newsHandler.Delete)
		})

		api.Route("/libraries", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/", librariesHandler.List)
			r.Post("/", librariesHandler.Create)
			r.Get("/{id}", librariesHandler.Get)
			r.Put("/{id}", librariesHandler.Update)
			r.Delete("/{id}", librariesHandler.Delete)
			r.Post("/{id}/items", librariesHandler.AddItem)
			r.Delete("/{id}/items/{itemID}", librariesHandler.RemoveItem)
		})

		api.Route("/admin", func(r chi.Router) {
			r.Use(requireSuperAdmin)
			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users", adminHandler.CreateUser)
			r.Put("/users/{username}", adminHandler.UpdateUser)
			r.Put("/users/{username}/role", adminHandler.UpdateRole)
			r.Delete("/users/{username}", adminHandler.DeleteUser)
		})

		api.With(requireSuperAdmin).Get("/system/statistics", systemHandler.Statistics)

		api.With(requireAuth).Post("/chat", chatHandler.Complete)
	})

	// Admin signal endpoint (optional, requires MEDFRONT_ADMIN_TOKEN)
	s.registerAdminEndpoint()
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	adminToken := os.Getenv("MEDFRONT_ADMIN_TOKEN")
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no MEDFRONT_ADMIN_TOKEN set)")
		}
		return
	}

	// Create HTTP signal handler with bearer token auth and rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})

	// Register admin endpoint
	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
