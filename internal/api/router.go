package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/starford/docpress/internal/postservice"
)

// NewRouter creates a chi router with all API routes mounted.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *postservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/posts", h.ListPosts)
	r.Post("/sync", h.Sync)
	r.Get("/runs", h.ListRuns)
	r.Get("/runs/{id}", h.GetRun)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

// NewServer builds the top-level handler: health probes, the API under /api
// and the generated posts served read-only under /posts/.
func NewServer(svc *postservice.Service, authEnabled bool, token string, sseHandler http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Mount("/api", NewRouter(svc, authEnabled, token, sseHandler))

	files := http.StripPrefix("/posts/", http.FileServer(http.Dir(svc.OutputRoot())))
	r.Get("/posts/*", files.ServeHTTP)

	return r
}
