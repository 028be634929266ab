package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type dueCustomerRequest struct {
	CustomerName string `json:"customerName"`
	MobileNumber string `json:"mobileNumber"`
}

type dueTransactionRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

func (s *Server) handleCreateDueCustomer(w http.ResponseWriter, r *http.Request) {
	var req dueCustomerRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	c, err := s.due.CreateCustomer(r.Context(), req.CustomerName, req.MobileNumber)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "Customer created successfully", toCustomerJSON(c))
}

func (s *Server) handleListDueCustomers(w http.ResponseWriter, r *http.Request) {
	customers, pg, err := s.due.ListCustomers(r.Context(), r.URL.Query().Get("search"),
		queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondList(w, "Customers retrieved successfully", toCustomerJSONs(customers), pg)
}

func (s *Server) handleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := s.due.SearchCustomers(r.Context(), r.URL.Query().Get("customer"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if len(customers) == 0 {
		writeJSON(w, http.StatusOK, envelope{Success: false})
		return
	}
	s.respond(w, http.StatusOK, "", toCustomerJSONs(customers))
}

func (s *Server) handleCustomerHistory(w http.ResponseWriter, r *http.Request) {
	h, err := s.due.History(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Customer history retrieved successfully", map[string]any{
		"customer":     toCustomerJSON(h.Customer),
		"transactions": toEntryJSONs(h.Transactions),
	})
}

func (s *Server) handleGive(w http.ResponseWriter, r *http.Request) {
	var req dueTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	e, err := s.due.Give(r.Context(), chi.URLParam(r, "phone"), req.Amount, req.Notes)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "Give transaction recorded successfully", toEntryJSON(e))
}

func (s *Server) handleTake(w http.ResponseWriter, r *http.Request) {
	var req dueTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	e, err := s.due.Take(r.Context(), chi.URLParam(r, "phone"), req.Amount, req.Notes)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusCreated, "Take transaction recorded successfully", toEntryJSON(e))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req dueTransactionRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	e, err := s.due.UpdateTransaction(r.Context(), id, req.Amount, req.Notes)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Transaction updated successfully", toEntryJSON(e))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if _, err := s.due.DeleteTransaction(r.Context(), id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Transaction deleted successfully", nil)
}

func (s *Server) handleUpdateDueCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	var req dueCustomerRequest
	if err := decodeBody(r, &req); err != nil {
		s.respondErr(w, r, err)
		return
	}
	c, err := s.due.UpdateCustomer(r.Context(), id, req.CustomerName, req.MobileNumber)
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Customer updated successfully", toCustomerJSON(c))
}

func (s *Server) handleDeleteDueCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	if err := s.due.DeleteCustomer(r.Context(), id); err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respond(w, http.StatusOK, "Customer deleted successfully", nil)
}

func (s *Server) handleDueHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := s.due.DueHistory(r.Context(), q.Get("startDate"), q.Get("endDate"),
		queryInt(r, "page", 1), queryInt(r, "limit", 10))
	if err != nil {
		s.respondErr(w, r, err)
		return
	}
	s.respondList(w, "Due history retrieved successfully", map[string]any{
		"transactions": toEntryJSONs(res.Transactions),
		"totalGiven":   res.TotalGiven,
		"totalTaken":   res.TotalTaken,
	}, res.Pagination)
}
