package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/andres10976/webspider/backend/internal/auth"
	"github.com/andres10976/webspider/backend/internal/middleware"
)

// RouteRegistrar is implemented by every handler that mounts routes.
type RouteRegistrar interface {
	RegisterRoutes(r chi.Router)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	CORSAllowOrigin string
	RequestTimeout  time.Duration
	// Verifier enables bearer-token identity on protected routes.
	Verifier *auth.Verifier
}

// NewRouter mounts public and protected route groups under /api/v1.
// Protected routes require a token only when cfg.Verifier is set.
func NewRouter(cfg RouterConfig, db pinger, public []RouteRegistrar, protected []RouteRegistrar) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(middleware.CORS(cfg.CORSAllowOrigin))
	if cfg.RequestTimeout > 0 {
		r.Use(chiMiddleware.Timeout(cfg.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			slog.Error("health check failed", "error", err)
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		for _, h := range public {
			h.RegisterRoutes(r)
		}
		r.Group(func(r chi.Router) {
			if cfg.Verifier != nil {
				r.Use(auth.Middleware(cfg.Verifier))
			}
			for _, h := range protected {
				h.RegisterRoutes(r)
			}
		})
	})

	return r
}
