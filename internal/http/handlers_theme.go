package http

import (
	"log/slog"
	"net/http"
)

type themePayload struct {
	Theme string `json:"theme"`
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themePayload{Theme: s.store.Theme(r.Context())})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themePayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.SetTheme(r.Context(), req.Theme); err != nil {
		slog.WarnContext(r.Context(), "Theme rejected", "theme", req.Theme, "error", err)
		writeError(w, http.StatusUnprocessableEntity, "theme must be \"light\" or \"dark\"")
		return
	}
	writeJSON(w, http.StatusOK, req)
}
