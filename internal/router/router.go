package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-market-auth/internal/config"
	"go-market-auth/internal/event"
	"go-market-auth/internal/handler"
	"go-market-auth/internal/middleware"
	"go-market-auth/internal/model"
	"go-market-auth/internal/ratelimit"
)

type Handlers struct {
	Session  *handler.SessionHandler
	Recovery *handler.RecoveryHandler
	Admin    *handler.AdminHandler
}

// New assembles the route table. Sensitive endpoints — session minting
// and the recovery flows — sit behind the fixed-window limiter; the
// whole API sits behind the coarse general limiter.
func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	sensitiveLimiter ratelimit.Limiter,
	bus *event.InMemoryBus,
	handlers Handlers,
) http.Handler {
	r := chi.NewRouter()

	generalLimiter := middleware.NewGeneralRateLimit(cfg.GeneralRateRPM)
	sensitive := middleware.SensitiveRateLimit(sensitiveLimiter, bus)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(generalLimiter.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.With(sensitive).Post("/session", handlers.Session.Create)
		api.Post("/verify", handlers.Session.Verify)
		api.With(authMiddleware.RequireSession).Get("/me", handlers.Session.Me)
		api.Post("/logout", handlers.Session.Logout)

		api.With(sensitive).Post("/password-reset/request", handlers.Recovery.RequestReset)
		api.With(sensitive).Put("/password-reset/reset", handlers.Recovery.Reset)
		api.With(sensitive).Post("/verify-email", handlers.Recovery.VerifyEmail)
		api.With(authMiddleware.RequireSession).Post("/verify-email/request", handlers.Recovery.RequestVerification)

		api.With(authMiddleware.RequireSession, authMiddleware.RequireRoles(model.RoleAdmin, model.RoleSupport)).
			Get("/admin/users", handlers.Admin.ListUsers)
		api.With(authMiddleware.RequireSession, authMiddleware.RequireRoles(model.RoleAdmin)).
			Put("/admin/users/{user_id}/role", handlers.Admin.ChangeRole)
	})

	return r
}
