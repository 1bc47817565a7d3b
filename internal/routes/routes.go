package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/olholv/contactbook/internal/auth"
	"github.com/olholv/contactbook/internal/handlers"
	"github.com/olholv/contactbook/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	contactHandler *handlers.ContactHandler,
	resetHandler *handlers.PasswordResetHandler,
	avatarHandler *handlers.AvatarHandler,
	tokenManager *auth.TokenManager,
	users auth.UserFetcher,
	contactCreateLimiter *middleware.UserRateLimiter,
) {
	// Rate limiting config for unauthenticated endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()
	rateLimited := middleware.RateLimitByIP(rateLimitConfig)

	// Public routes - no authentication required
	router.With(rateLimited).Post("/auth/register", authHandler.Register)
	router.With(rateLimited).Post("/auth/login", authHandler.Login)
	router.With(rateLimited).Post("/auth/refresh", authHandler.Refresh)
	router.With(rateLimited).Post("/auth/send-confirmation", authHandler.SendConfirmation)
	router.Get("/auth/confirm/{token}", authHandler.ConfirmEmail)

	router.With(rateLimited).Post("/password-reset/request", resetHandler.Request)
	router.With(rateLimited).Post("/password-reset/reset", resetHandler.Reset)
	router.Get("/password-reset/peek/{token}", resetHandler.Peek)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokenManager, users))

		r.Get("/contacts", contactHandler.List)
		r.With(contactCreateLimiter.Middleware).Post("/contacts", contactHandler.Create)
		r.Get("/contacts/search", contactHandler.Search)
		r.Get("/contacts/birthdays", contactHandler.Birthdays)
		r.Get("/contacts/{id}", contactHandler.Get)
		r.Put("/contacts/{id}", contactHandler.Update)
		r.Delete("/contacts/{id}", contactHandler.Delete)

		r.Post("/avatar", avatarHandler.Upload)
	})
}
