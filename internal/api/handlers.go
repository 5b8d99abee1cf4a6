package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/docpress/internal/apperr"
	"github.com/starford/docpress/internal/postservice"
)

const defaultRunLimit = 20

// Handler holds API route handlers.
type Handler struct {
	svc *postservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *postservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListPosts handles GET /api/posts.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Posts(r.Context())
	if err != nil {
		slog.Error("list posts failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, PostListResponse{Posts: items, Total: len(items)})
}

// Sync handles POST /api/sync. The dry_run query parameter previews the pass
// without touching the output directory.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	dryRun := false
	if v := r.URL.Query().Get("dry_run"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dry_run must be a boolean")
			return
		}
		dryRun = b
	}

	report, err := h.svc.Sync(r.Context(), dryRun)
	if err != nil {
		slog.Error("sync failed", slog.String("error", err.Error()))
		status := http.StatusInternalServerError
		if errors.Is(err, apperr.ErrPath) {
			status = http.StatusServiceUnavailable
		}
		resp := SyncResponse{Error: err.Error()}
		if report != nil {
			resp.Report = report
			resp.Summary = summarize(report)
		}
		writeJSON(w, status, resp)
		return
	}
	writeJSON(w, http.StatusOK, SyncResponse{Report: report, Summary: summarize(report)})
}

// ListRuns handles GET /api/runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	runs, err := h.svc.Runs(r.Context(), limit)
	if err != nil {
		slog.Error("list runs failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

// GetRun handles GET /api/runs/{id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	outcomes, err := h.svc.RunOutcomes(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		slog.Error("get run failed", slog.Int64("id", id), slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, RunDetailResponse{ID: id, Outcomes: outcomes})
}
