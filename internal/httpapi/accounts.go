package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type accountRequest struct {
	Company      string `json:"company"`
	MobileNumber string `json:"mobileNumber"`
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	a, err := s.accounts.Create(r.Context(), req.Company, req.MobileNumber)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "Mobile account created successfully", toAccountJSON(a))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req accountRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	a, err := s.accounts.Update(r.Context(), id, req.Company, req.MobileNumber)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Mobile account updated successfully", toAccountJSON(a))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.accounts.Delete(r.Context(), id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Mobile account deleted successfully", nil)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.accounts.List(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Mobile accounts retrieved successfully", map[string]any{
		"accounts": toAccountJSONs(res.Accounts),
		"totalSum": res.TotalSum,
	})
}

func (s *Server) handleDownloadAccounts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.accounts.Download(r.Context(), q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Mobile accounts retrieved successfully", map[string]any{
		"accounts": toAccountJSONs(res.Accounts),
		"totalSum": res.TotalSum,
	})
}

func (s *Server) handleAccountsByCompany(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.ByCompany(r.Context(), r.URL.Query().Get("company"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Mobile accounts retrieved successfully", toAccountJSONs(accounts))
}

func (s *Server) handleAccountDatas(w http.ResponseWriter, r *http.Request) {
	accounts, pg, err := s.accounts.Search(r.Context(), r.URL.Query().Get("search"),
		queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondList(w, "Mobile accounts retrieved successfully", toAccountJSONs(accounts), pg)
}

func (s *Server) handleTodayLog(w http.ResponseWriter, r *http.Request) {
	log, err := s.entries.Today(r.Context())
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	txns := make([]map[string]any, len(log.Transactions))
	for i, t := range log.Transactions {
		txns[i] = map[string]any{
			"entry":   toEntryJSON(t.Entry),
			"isDebit": t.IsDebit,
		}
	}
	s.respond(w, http.StatusOK, "Today's transaction log retrieved successfully", map[string]any{
		"transactions": txns,
		"summary": map[string]any{
			"totalDebit":  log.TotalDebit,
			"totalCredit": log.TotalCredit,
		},
	})
}
