package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-item-recovery/internal/config"
	"go-item-recovery/internal/handler"
	"go-item-recovery/internal/middleware"
	"go-item-recovery/internal/websocket"
)

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	healthHandler *handler.HealthHandler,
	eventsHandler *handler.EventsHandler,
	recoveryHandler *handler.RecoveryHandler,
	auditHandler *handler.AuditHandler,
	docsHandler *handler.DocsHandler,
	hub *websocket.Hub,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.EventsRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", healthHandler.Check)
	r.Get("/openapi.yaml", docsHandler.OpenAPI)
	r.Get("/swagger", docsHandler.SwaggerUI)

	r.With(authMiddleware.RequireAuth).Get("/ws", func(w http.ResponseWriter, req *http.Request) {
		websocket.ServeWS(hub, w, req)
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/events", func(events chi.Router) {
			events.Use(authMiddleware.RequireAuth, authMiddleware.RequireRoles("server", "admin"))
			events.Post("/wear", eventsHandler.Wear)
			events.Post("/destruction", eventsHandler.Destruction)
		})

		api.With(authMiddleware.RequireAuth).Get("/recoverable", recoveryHandler.List)
		api.With(authMiddleware.RequireAuth).Post("/recoverable/{fingerprint}/restore", recoveryHandler.Restore)
		api.With(authMiddleware.RequireAuth).Delete("/recoverable/{fingerprint}", recoveryHandler.Delete)

		api.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).Get("/audit", auditHandler.List)
	})

	return r
}
