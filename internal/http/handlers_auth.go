package http

import (
	"log/slog"
	"net/http"

	"pftrack/internal/auth"
	"pftrack/internal/core"
	"pftrack/internal/log"
)

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm,omitempty"`
}

type sessionResponse struct {
	Authenticated bool              `json:"authenticated"`
	User          *core.UserProfile `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.gate.Login(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		s.writeAuthError(w, r, "login", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: state.User})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	state, err := s.gate.Signup(r.Context(), sanitizeInput(req.Email), req.Password, req.Confirm)
	if err != nil {
		s.writeAuthError(w, r, "signup", err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{Authenticated: true, User: state.User})
}

func (s *Server) writeAuthError(w http.ResponseWriter, r *http.Request, op string, err error) {
	if auth.IsValidation(err) {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	slog.ErrorContext(r.Context(), "Session write failed", log.FieldOperation, op, log.FieldError, err)
	writeError(w, http.StatusInternalServerError, "could not persist session")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.gate.Logout(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Session clear failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not clear session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	state := s.gate.Current(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse{
		Authenticated: state.Authenticated(),
		User:          state.User,
	})
}

// currentUserID resolves the session, writing a 401 when anonymous.
func (s *Server) currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	state := s.gate.Current(r.Context())
	if !state.Authenticated() {
		writeError(w, http.StatusUnauthorized, "not logged in")
		return "", false
	}
	return state.User.ID, true
}
