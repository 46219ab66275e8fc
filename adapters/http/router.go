package http

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/cloudcopper/buildwatch/adapters/http/controllers"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	slogchi "github.com/samber/slog-chi"
)

func NewRouter(log ports.Logger) ports.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(slogchi.NewWithConfig(log, slogchi.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelWarn,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	r.Use(middleware.Recoverer)
	r.Use(middleware.NoCache)
	r.Use(middleware.AllowContentType("application/json"))
	if os.Getenv("GO_ENV") != "development" {
		r.Use(middleware.Timeout(10 * time.Second))
	}
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}

// Mount adds the status routes
func Mount(r ports.Router, status *controllers.StatusController, about *controllers.AboutController) {
	r.Get("/status", status.Index)
	r.Get("/status/{appID}", status.Get)
	r.Get("/healthz", status.Health)
	r.Get("/about", about.Index)
	r.NotFound(status.NotFound)
}
