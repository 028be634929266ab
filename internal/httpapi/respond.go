package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/ledger"
)

// envelope is the shared response shape for every endpoint.
type envelope struct {
	Success        bool               `json:"success"`
	Message        string             `json:"message,omitempty"`
	Data           any                `json:"data,omitempty"`
	Error          any                `json:"error,omitempty"`
	Pagination     *ledger.Pagination `json:"pagination,omitempty"`
	RequiredFields []string           `json:"requiredFields,omitempty"`
	AllowedValues  []string           `json:"allowedValues,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) respond(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

func (s *Server) respondList(w http.ResponseWriter, message string, data any, pg ledger.Pagination) {
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: message, Data: data, Pagination: &pg})
}

// respondErr maps service errors onto the envelope and status codes.
func (s *Server) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var v *errs.Validation
	switch {
	case errors.As(err, &v):
		writeJSON(w, http.StatusBadRequest, envelope{
			Success:        false,
			Message:        v.Msg,
			RequiredFields: v.Fields,
			AllowedValues:  v.Allowed,
		})
	case errors.Is(err, errs.ErrUnauthorizedActor):
		writeJSON(w, http.StatusForbidden, envelope{
			Success:       false,
			Message:       "Unauthorized user for entryBy",
			AllowedValues: s.cfg.Clerks,
		})
	case errors.Is(err, errs.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, envelope{Success: false, Message: "Invalid credentials"})
	case errors.Is(err, errs.ErrConflict):
		writeJSON(w, http.StatusConflict, envelope{Success: false, Message: "Duplicate value for a unique field"})
	case errors.Is(err, errs.ErrNotFound):
		writeJSON(w, http.StatusNotFound, envelope{Success: false, Message: "Record not found"})
	case errors.Is(err, errs.ErrImmutable), errors.Is(err, errs.ErrInvalid):
		writeJSON(w, http.StatusBadRequest, envelope{Success: false, Message: err.Error()})
	default:
		s.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		env := envelope{Success: false, Message: "Internal server error"}
		if s.cfg.DevMode {
			env.Error = err.Error()
		}
		writeJSON(w, http.StatusInternalServerError, env)
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return &errs.Validation{Msg: "Invalid request body"}
	}
	return nil
}
