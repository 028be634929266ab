// Package due manages the due ledger: the customers the shop extends credit
// to, and the give/take transactions recorded against them. Balance upkeep
// flows through the reconciliation engine like every other entry kind.
package due

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/ledger"
	"github.com/bebsa/ledger/internal/service/reconcile"
)

// Repo is the persistence contract for due customers and their history.
type Repo interface {
	CreateDueCustomer(ctx context.Context, c ledger.DueCustomer) (ledger.DueCustomer, error)
	GetDueCustomer(ctx context.Context, id uuid.UUID) (ledger.DueCustomer, error)
	DueCustomerByPhone(ctx context.Context, number string) (ledger.DueCustomer, error)
	UpdateDueCustomer(ctx context.Context, c ledger.DueCustomer) (ledger.DueCustomer, error)
	DeleteDueCustomer(ctx context.Context, id uuid.UUID) error
	ListDueCustomers(ctx context.Context, f ledger.CustomerFilter, page ledger.Page) ([]ledger.DueCustomer, int, error)

	GetEntry(ctx context.Context, id uuid.UUID) (ledger.Entry, error)
	ListEntries(ctx context.Context, f ledger.EntryFilter, srt ledger.Sort, page ledger.Page) ([]ledger.Entry, int, error)
}

// Service carries the due-ledger use cases.
type Service struct {
	engine *reconcile.Engine
	repo   Repo
}

// New wires the service.
func New(engine *reconcile.Engine, repo Repo) *Service {
	return &Service{engine: engine, repo: repo}
}

// CreateCustomer opens a due customer with zero balances. The mobile number
// must be unique.
func (s *Service) CreateCustomer(ctx context.Context, name, mobileNumber string) (ledger.DueCustomer, error) {
	missing := make([]string, 0, 2)
	if name == "" {
		missing = append(missing, "customerName")
	}
	if mobileNumber == "" {
		missing = append(missing, "mobileNumber")
	}
	if len(missing) > 0 {
		return ledger.DueCustomer{}, errs.MissingFields(missing...)
	}
	now := time.Now().UTC()
	return s.repo.CreateDueCustomer(ctx, ledger.DueCustomer{
		ID:           uuid.New(),
		CustomerName: name,
		MobileNumber: mobileNumber,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// ListCustomers returns one page of customers, newest first, matching an
// optional name/number substring.
func (s *Service) ListCustomers(ctx context.Context, search string, page, limit int) ([]ledger.DueCustomer, ledger.Pagination, error) {
	p := ledger.NewPage(page, limit)
	customers, total, err := s.repo.ListDueCustomers(ctx, ledger.CustomerFilter{Search: search}, p)
	if err != nil {
		return nil, ledger.Pagination{}, err
	}
	return customers, ledger.Paginate(p, total), nil
}

// SearchCustomers returns every customer matching the name/number substring.
func (s *Service) SearchCustomers(ctx context.Context, query string) ([]ledger.DueCustomer, error) {
	if query == "" {
		return nil, nil
	}
	customers, _, err := s.repo.ListDueCustomers(ctx, ledger.CustomerFilter{Search: query}, ledger.All)
	return customers, err
}

// CustomerHistory is a customer together with their transaction history,
// oldest first.
type CustomerHistory struct {
	Customer     ledger.DueCustomer
	Transactions []ledger.Entry
}

// History returns the customer holding the given phone number and all their
// give/take entries in chronological order.
func (s *Service) History(ctx context.Context, phone string) (CustomerHistory, error) {
	c, err := s.repo.DueCustomerByPhone(ctx, phone)
	if err != nil {
		return CustomerHistory{}, err
	}
	entries, _, err := s.repo.ListEntries(ctx, ledger.EntryFilter{
		Kinds:      []ledger.EntryKind{ledger.KindDueGive, ledger.KindDueTake},
		CustomerID: c.ID,
	}, ledger.Sort{Field: ledger.SortByCreatedAt}, ledger.All)
	if err != nil {
		return CustomerHistory{}, err
	}
	return CustomerHistory{Customer: c, Transactions: entries}, nil
}

// Give records money handed to the customer: due balance and total given go
// up by amount. The entry stores the post-transaction balance snapshot.
func (s *Service) Give(ctx context.Context, phone string, amount decimal.Decimal, notes string) (ledger.Entry, error) {
	return s.transact(ctx, phone, ledger.KindDueGive, amount, notes)
}

// Take records money the customer paid back: due balance goes down, total
// taken goes up.
func (s *Service) Take(ctx context.Context, phone string, amount decimal.Decimal, notes string) (ledger.Entry, error) {
	return s.transact(ctx, phone, ledger.KindDueTake, amount, notes)
}

func (s *Service) transact(ctx context.Context, phone string, kind ledger.EntryKind, amount decimal.Decimal, notes string) (ledger.Entry, error) {
	if amount.IsNegative() {
		return ledger.Entry{}, &errs.Validation{Msg: "Invalid amount", Fields: []string{"amount"}}
	}
	c, err := s.repo.DueCustomerByPhone(ctx, phone)
	if err != nil {
		return ledger.Entry{}, err
	}
	return s.engine.Create(ctx, ledger.Entry{
		Kind:       kind,
		CustomerID: c.ID,
		Balance:    c.DueBalance.Add(kind.Contribution(amount)),
		Amount:     amount,
		Remarks:    notes,
	})
}

// UpdateTransaction revises a give/take entry's amount and notes. The stored
// balance snapshot keeps recording the balance at entry time.
func (s *Service) UpdateTransaction(ctx context.Context, id uuid.UUID, amount decimal.Decimal, notes string) (ledger.Entry, error) {
	if amount.IsNegative() {
		return ledger.Entry{}, &errs.Validation{Msg: "Invalid amount", Fields: []string{"amount"}}
	}
	old, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return ledger.Entry{}, err
	}
	if old.Kind != ledger.KindDueGive && old.Kind != ledger.KindDueTake {
		return ledger.Entry{}, errs.ErrNotFound
	}
	updated := old
	updated.Amount = amount
	if notes != "" {
		updated.Remarks = notes
	}
	return s.engine.Update(ctx, updated)
}

// DeleteTransaction removes a give/take entry and reverses its contribution,
// clamping the customer balances at zero.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) (ledger.Entry, error) {
	old, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return ledger.Entry{}, err
	}
	if old.Kind != ledger.KindDueGive && old.Kind != ledger.KindDueTake {
		return ledger.Entry{}, errs.ErrNotFound
	}
	return s.engine.Delete(ctx, id)
}

// UpdateCustomer relabels a customer's name and/or number.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, name, mobileNumber string) (ledger.DueCustomer, error) {
	if name == "" && mobileNumber == "" {
		return ledger.DueCustomer{}, &errs.Validation{
			Msg:    "At least one field is required to update",
			Fields: []string{"customerName", "mobileNumber"},
		}
	}
	cur, err := s.repo.GetDueCustomer(ctx, id)
	if err != nil {
		return ledger.DueCustomer{}, err
	}
	if name != "" {
		cur.CustomerName = name
	}
	if mobileNumber != "" {
		cur.MobileNumber = mobileNumber
	}
	return s.repo.UpdateDueCustomer(ctx, cur)
}

// DeleteCustomer removes the customer record. Recorded transactions stay in
// the ledger.
func (s *Service) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteDueCustomer(ctx, id)
}

// HistoryResult is one page of due entries with full-set given/taken totals.
type HistoryResult struct {
	Transactions []ledger.Entry
	TotalGiven   decimal.Decimal
	TotalTaken   decimal.Decimal
	Pagination   ledger.Pagination
}

// DueHistory returns the merged give/take ledger across all customers,
// newest first, within an optional date range.
func (s *Service) DueHistory(ctx context.Context, startDate, endDate string, page, limit int) (HistoryResult, error) {
	start, end, err := ledger.DateRange(startDate, endDate)
	if err != nil {
		return HistoryResult{}, err
	}
	f := ledger.EntryFilter{
		Kinds: []ledger.EntryKind{ledger.KindDueGive, ledger.KindDueTake},
		Start: start,
		End:   end,
	}
	p := ledger.NewPage(page, limit)
	entries, total, err := s.repo.ListEntries(ctx, f, ledger.DefaultSort(), p)
	if err != nil {
		return HistoryResult{}, err
	}
	all, _, err := s.repo.ListEntries(ctx, f, ledger.DefaultSort(), ledger.All)
	if err != nil {
		return HistoryResult{}, err
	}
	res := HistoryResult{Transactions: entries, Pagination: ledger.Paginate(p, total)}
	for _, e := range all {
		switch e.Kind {
		case ledger.KindDueGive:
			res.TotalGiven = res.TotalGiven.Add(e.Amount)
		case ledger.KindDueTake:
			res.TotalTaken = res.TotalTaken.Add(e.Amount)
		}
	}
	return res, nil
}
