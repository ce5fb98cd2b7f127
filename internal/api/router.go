package api

import (
	"log/slog"
	"net/http"

	"github.com/dom/videotube-identity/internal/api/handlers"
	"github.com/dom/videotube-identity/internal/api/middleware"
	"github.com/dom/videotube-identity/internal/api/response"
	"github.com/dom/videotube-identity/internal/config"
	"github.com/dom/videotube-identity/internal/service"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(services *service.Services, cfg *config.Config, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestLogger(&chiMiddleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(logger.Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.CORSOrigin},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"}, "OK")
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth, services.Tokens, cfg, logger)
	accountHandler := handlers.NewAccountHandler(services.Account, cfg, logger)
	channelHandler := handlers.NewChannelHandler(services.Channel, logger)

	r.Route("/api/v1/users", func(r chi.Router) {
		// Public routes
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh-token", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth, logger))

			r.Post("/logout", authHandler.Logout)
			r.Post("/change-password", authHandler.ChangePassword)
			r.Get("/current-user", authHandler.CurrentUser)

			r.Patch("/update-account", accountHandler.UpdateAccount)
			r.Post("/avatar", accountHandler.UpdateAvatar)
			r.Patch("/avatar", accountHandler.UpdateAvatar)
			r.Patch("/cover-image", accountHandler.UpdateCoverImage)

			r.Get("/c/{username}", channelHandler.GetChannelProfile)
			r.Get("/history", channelHandler.GetWatchHistory)
			r.Post("/history/{videoId}", channelHandler.RecordView)
			r.Post("/subscriptions/{channelId}", channelHandler.ToggleSubscription)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotFound, "Route not found")
	})

	return r
}
