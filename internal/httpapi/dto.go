package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/ledger"
)

type entryJSON struct {
	ID             uuid.UUID        `json:"id"`
	Kind           ledger.EntryKind `json:"kind"`
	Company        string           `json:"company,omitempty"`
	AccountNumber  string           `json:"accountNumber,omitempty"`
	CustomerName   string           `json:"customerName,omitempty"`
	CustomerNumber string           `json:"customerNumber,omitempty"`
	CustomerID     *uuid.UUID       `json:"customerId,omitempty"`
	Balance        *decimal.Decimal `json:"balance,omitempty"`
	Amount         decimal.Decimal  `json:"amount"`
	Remarks        string           `json:"remarks,omitempty"`
	EntryBy        string           `json:"entryBy,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

func toEntryJSON(e ledger.Entry) entryJSON {
	out := entryJSON{
		ID:             e.ID,
		Kind:           e.Kind,
		Company:        e.Company,
		AccountNumber:  e.AccountNumber,
		CustomerName:   e.CustomerName,
		CustomerNumber: e.CustomerNumber,
		Amount:         e.Amount,
		Remarks:        e.Remarks,
		EntryBy:        e.EntryBy,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
	if e.CustomerID != uuid.Nil {
		id := e.CustomerID
		out.CustomerID = &id
		bal := e.Balance
		out.Balance = &bal
	}
	return out
}

func toEntryJSONs(es []ledger.Entry) []entryJSON {
	out := make([]entryJSON, len(es))
	for i, e := range es {
		out[i] = toEntryJSON(e)
	}
	return out
}

type accountJSON struct {
	ID           uuid.UUID       `json:"id"`
	Company      string          `json:"company"`
	MobileNumber string          `json:"mobileNumber"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toAccountJSON(a ledger.MobileAccount) accountJSON {
	return accountJSON{
		ID:           a.ID,
		Company:      a.Company,
		MobileNumber: a.MobileNumber,
		TotalAmount:  a.TotalAmount,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func toAccountJSONs(as []ledger.MobileAccount) []accountJSON {
	out := make([]accountJSON, len(as))
	for i, a := range as {
		out[i] = toAccountJSON(a)
	}
	return out
}

type customerJSON struct {
	ID           uuid.UUID       `json:"id"`
	CustomerName string          `json:"customerName"`
	MobileNumber string          `json:"mobileNumber"`
	TotalGiven   decimal.Decimal `json:"totalGiven"`
	TotalTaken   decimal.Decimal `json:"totalTaken"`
	DueBalance   decimal.Decimal `json:"dueBalance"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toCustomerJSON(c ledger.DueCustomer) customerJSON {
	return customerJSON{
		ID:           c.ID,
		CustomerName: c.CustomerName,
		MobileNumber: c.MobileNumber,
		TotalGiven:   c.TotalGiven,
		TotalTaken:   c.TotalTaken,
		DueBalance:   c.DueBalance,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func toCustomerJSONs(cs []ledger.DueCustomer) []customerJSON {
	out := make([]customerJSON, len(cs))
	for i, c := range cs {
		out[i] = toCustomerJSON(c)
	}
	return out
}

// parseID validates an entity id's format before any lookup; malformed ids
// report a 400 rather than a 404.
func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &errs.Validation{Msg: "Invalid id format", Fields: []string{"id"}}
	}
	return id, nil
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}
