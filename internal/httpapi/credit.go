package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/ledger"
	"github.com/bebsa/ledger/internal/service/entry"
)

type creditRequest struct {
	CustomerName   string          `json:"customerName"`
	CustomerNumber string          `json:"customerNumber"`
	Company        string          `json:"company"`
	AccountNumber  string          `json:"accountNumber"`
	Amount         decimal.Decimal `json:"amount"`
	Remarks        string          `json:"remarks"`
	EntryBy        string          `json:"entryBy"`
}

func (req creditRequest) toInput() entry.CreditInput {
	return entry.CreditInput{
		CustomerName:   req.CustomerName,
		CustomerNumber: req.CustomerNumber,
		Company:        req.Company,
		AccountNumber:  req.AccountNumber,
		Amount:         req.Amount,
		Remarks:        req.Remarks,
		EntryBy:        req.EntryBy,
	}
}

func (s *Server) handleCreateCredit(w http.ResponseWriter, r *http.Request) {
	var req creditRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	e, err := s.entries.CreateCredit(r.Context(), req.toInput())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "Credit entry created successfully", toEntryJSON(e))
}

func (s *Server) handleUpdateCredit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req creditRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	e, err := s.entries.UpdateCredit(r.Context(), id, req.toInput())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Credit entry updated successfully", toEntryJSON(e))
}

func (s *Server) handleDeleteCredit(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if _, err := s.entries.Delete(r.Context(), id, ledger.KindCredit); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Credit entry deleted successfully", nil)
}

func listQueryFromRequest(r *http.Request) entry.ListQuery {
	q := r.URL.Query()
	return entry.ListQuery{
		Search:    q.Get("search"),
		EntryBy:   q.Get("entryBy"),
		Company:   q.Get("company"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Page:      queryInt(r, "page", 1),
		Limit:     queryInt(r, "limit", 10),
	}
}

func (s *Server) handleListPersonal(w http.ResponseWriter, r *http.Request) {
	res, err := s.entries.ListPersonal(r.Context(), listQueryFromRequest(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondList(w, "Credit entries retrieved successfully", map[string]any{
		"entries":      toEntryJSONs(res.Entries),
		"totalAmount":  res.TotalAmount,
		"totalRemarks": res.TotalRemarks,
	}, res.Pagination)
}

func (s *Server) handleDownloadPersonal(w http.ResponseWriter, r *http.Request) {
	res, err := s.entries.DownloadPersonal(r.Context(), listQueryFromRequest(r))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Credit entries retrieved successfully", map[string]any{
		"entries":     toEntryJSONs(res.Entries),
		"totalAmount": res.TotalAmount,
	})
}

func (s *Server) handleCreditAccountDatas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, pg, err := s.entries.AccountEntries(r.Context(), entry.AccountQuery{
		Company:       q.Get("company"),
		AccountNumber: q.Get("accountNumber"),
		StartDate:     q.Get("startDate"),
		EndDate:       q.Get("endDate"),
		Page:          queryInt(r, "page", 1),
		Limit:         queryInt(r, "limit", 10),
	})
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondList(w, "Credit entries retrieved successfully", toEntryJSONs(entries), pg)
}
