package http

import (
	"net/http"
	"strings"

	"pftrack/internal/core"
)

// viewFromQuery builds the derivation parameters from query parameters,
// falling back to the dashboard defaults (date descending, page 1, page
// size 8) for anything absent or invalid.
func viewFromQuery(r *http.Request) core.View {
	view := core.NewView()
	q := r.URL.Query()

	view.Query = q.Get("query")

	if key := core.SortKey(strings.TrimSpace(q.Get("sort"))); key.IsValid() {
		view.Sort = key
		// A fresh sort key defaults to ascending unless told otherwise.
		view.Dir = core.Asc
	}
	switch strings.TrimSpace(q.Get("dir")) {
	case "asc":
		view.Dir = core.Asc
	case "desc":
		view.Dir = core.Desc
	}

	if page := queryInt(r, "page", 1); page >= 1 {
		view.Page = page
	}
	if size := queryInt(r, "page_size", core.DefaultPageSize); size >= 1 {
		view.PageSize = size
	}

	return view
}

// handleDashboard derives the filtered, sorted, paginated page plus the
// totals and time series for the current user.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUserID(w, r)
	if !ok {
		return
	}

	view := viewFromQuery(r)
	txs := s.listTransactions(r.Context(), userID)
	result := view.Apply(txs)
	if result.Items == nil {
		result.Items = []core.Transaction{}
	}
	if result.Series == nil {
		result.Series = []core.SeriesPoint{}
	}

	writeJSON(w, http.StatusOK, result)
}
