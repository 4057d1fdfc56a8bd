package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"pftrack/internal/core"
	"pftrack/internal/export"
	"pftrack/internal/log"
)

type transactionRequest struct {
	ID          string          `json:"id,omitempty"`
	Date        string          `json:"date"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Type        string          `json:"type"`
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUserID(w, r)
	if !ok {
		return
	}
	txs := s.listTransactions(r.Context(), userID)
	if txs == nil {
		txs = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleSaveTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUserID(w, r)
	if !ok {
		return
	}

	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx := core.Transaction{
		ID:          req.ID,
		Date:        sanitizeInput(req.Date),
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
		Amount:      req.Amount,
		Type:        core.TransactionType(req.Type),
	}

	saved, err := s.ledger.Save(r.Context(), userID, tx)
	if err != nil {
		if errors.Is(err, core.ErrInvalidDate) || errors.Is(err, core.ErrInvalidType) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		slog.ErrorContext(r.Context(), "Transaction save failed", log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not save transaction")
		return
	}

	s.invalidateList(userID)
	status := http.StatusOK
	if req.ID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, saved)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUserID(w, r)
	if !ok {
		return
	}

	txID := r.PathValue("id")
	if err := s.ledger.Delete(r.Context(), userID, txID); err != nil {
		slog.ErrorContext(r.Context(), "Transaction delete failed", log.FieldUserID, userID, log.FieldTxID, txID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not delete transaction")
		return
	}

	s.invalidateList(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUserID(w, r)
	if !ok {
		return
	}

	seeded, err := s.ledger.Seed(r.Context(), userID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Seed failed", log.FieldUserID, userID, log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not seed sample data")
		return
	}

	s.invalidateList(userID)
	writeJSON(w, http.StatusCreated, seeded)
}

// handleExport streams the user's transactions as CSV, ordered by the
// requested sort parameters (date descending by default, matching the
// table the user sees).
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.currentUserID(w, r)
	if !ok {
		return
	}

	view := viewFromQuery(r)
	txs := s.listTransactions(r.Context(), userID)
	sorted := core.SortBy(core.Filter(txs, view.Query), view.Sort, view.Dir)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions.csv"`)
	if err := export.Write(w, sorted); err != nil {
		slog.ErrorContext(r.Context(), "CSV export failed", log.FieldUserID, userID, log.FieldError, err)
	}
}
