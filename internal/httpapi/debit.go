package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/ledger"
	"github.com/bebsa/ledger/internal/service/entry"
)

type debitRequest struct {
	Company       string          `json:"company"`
	AccountNumber string          `json:"accountNumber"`
	Amount        decimal.Decimal `json:"amount"`
	Remarks       string          `json:"remarks"`
	EntryBy       string          `json:"entryBy"`
}

func (req debitRequest) toInput() entry.DebitInput {
	return entry.DebitInput{
		Company:       req.Company,
		AccountNumber: req.AccountNumber,
		Amount:        req.Amount,
		Remarks:       req.Remarks,
		EntryBy:       req.EntryBy,
	}
}

func (s *Server) handleCreateDebit(w http.ResponseWriter, r *http.Request) {
	var req debitRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	e, err := s.entries.CreateDebit(r.Context(), req.toInput())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "Debit entry created successfully", toEntryJSON(e))
}

func (s *Server) handleUpdateDebit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req debitRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	e, err := s.entries.UpdateDebit(r.Context(), id, req.toInput())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Debit entry updated successfully", toEntryJSON(e))
}

func (s *Server) handleDeleteDebit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if _, err := s.entries.Delete(r.Context(), id, ledger.KindDebit); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Debit entry deleted successfully", nil)
}
