package api

import (
	"github.com/starford/docpress/internal/journal"
	"github.com/starford/docpress/internal/models"
	"github.com/starford/docpress/internal/reconcile"
)

// PostListResponse wraps the post listing.
type PostListResponse struct {
	Posts []models.Post `json:"posts"`
	Total int           `json:"total"`
}

// SyncResponse is returned by POST /api/sync.
type SyncResponse struct {
	Report  *reconcile.Report `json:"report"`
	Summary map[string]int    `json:"summary"`
	Error   string            `json:"error,omitempty"`
}

// RunListResponse wraps journaled passes.
type RunListResponse struct {
	Runs []journal.Run `json:"runs"`
}

// RunDetailResponse lists the outcomes of one journaled pass.
type RunDetailResponse struct {
	ID       int64               `json:"id"`
	Outcomes []reconcile.Outcome `json:"outcomes"`
}

func summarize(r *reconcile.Report) map[string]int {
	out := make(map[string]int, 5)
	for _, a := range []reconcile.Action{
		reconcile.ActionConverted,
		reconcile.ActionSkipped,
		reconcile.ActionDeleted,
		reconcile.ActionRetained,
		reconcile.ActionFailed,
	} {
		out[string(a)] = r.Count(a)
	}
	return out
}
