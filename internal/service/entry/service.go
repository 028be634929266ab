// Package entry implements the credit/debit ledger operations: validated
// create/update/delete flowing through the reconciliation engine, and the
// filtered listing and report views over recorded entries.
package entry

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/config"
	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/ledger"
	"github.com/bebsa/ledger/internal/service/reconcile"
)

// Repo is the read side the listings need.
type Repo interface {
	GetEntry(ctx context.Context, id uuid.UUID) (ledger.Entry, error)
	ListEntries(ctx context.Context, f ledger.EntryFilter, srt ledger.Sort, page ledger.Page) ([]ledger.Entry, int, error)
	SumEntries(ctx context.Context, f ledger.EntryFilter) (amount, remarks decimal.Decimal, err error)
	CustomerNumberExists(ctx context.Context, number string, exclude uuid.UUID) (bool, error)
}

// Service carries the credit/debit use cases.
type Service struct {
	engine *reconcile.Engine
	repo   Repo
	cfg    *config.Config
}

// New wires the service.
func New(engine *reconcile.Engine, repo Repo, cfg *config.Config) *Service {
	return &Service{engine: engine, repo: repo, cfg: cfg}
}

// CreditInput is the payload for creating or updating a credit entry.
type CreditInput struct {
	CustomerName   string
	CustomerNumber string
	Company        string
	AccountNumber  string
	Amount         decimal.Decimal
	Remarks        string
	EntryBy        string
}

// DebitInput is the payload for creating or updating a debit entry.
type DebitInput struct {
	Company       string
	AccountNumber string
	Amount        decimal.Decimal
	Remarks       string
	EntryBy       string
}

func (s *Service) checkPolicy(company, entryBy string) error {
	if !s.cfg.ValidCompany(company) {
		return errs.BadEnum("company", s.cfg.Companies)
	}
	if !s.cfg.ValidClerk(entryBy) {
		return errs.ErrUnauthorizedActor
	}
	return nil
}

func (in CreditInput) validate() error {
	missing := make([]string, 0, 5)
	if in.CustomerName == "" {
		missing = append(missing, "customerName")
	}
	if in.CustomerNumber == "" {
		missing = append(missing, "customerNumber")
	}
	if in.Company == "" {
		missing = append(missing, "company")
	}
	if in.AccountNumber == "" {
		missing = append(missing, "accountNumber")
	}
	if in.EntryBy == "" {
		missing = append(missing, "entryBy")
	}
	if len(missing) > 0 {
		return errs.MissingFields(missing...)
	}
	return nil
}

func (in DebitInput) validate() error {
	missing := make([]string, 0, 3)
	if in.Company == "" {
		missing = append(missing, "company")
	}
	if in.AccountNumber == "" {
		missing = append(missing, "accountNumber")
	}
	if in.EntryBy == "" {
		missing = append(missing, "entryBy")
	}
	if len(missing) > 0 {
		return errs.MissingFields(missing...)
	}
	return nil
}

// CreateCredit records a credit entry and applies +amount to the mobile
// account it posts against.
func (s *Service) CreateCredit(ctx context.Context, in CreditInput) (ledger.Entry, error) {
	if err := in.validate(); err != nil {
		return ledger.Entry{}, err
	}
	if err := s.checkPolicy(in.Company, in.EntryBy); err != nil {
		return ledger.Entry{}, err
	}
	return s.engine.Create(ctx, ledger.Entry{
		Kind:           ledger.KindCredit,
		Company:        in.Company,
		AccountNumber:  in.AccountNumber,
		CustomerName:   in.CustomerName,
		CustomerNumber: in.CustomerNumber,
		Amount:         in.Amount,
		Remarks:        in.Remarks,
		EntryBy:        in.EntryBy,
	})
}

// UpdateCredit revises a credit entry. Moving the entry's customer number
// onto one already used by another entry is a conflict.
func (s *Service) UpdateCredit(ctx context.Context, id uuid.UUID, in CreditInput) (ledger.Entry, error) {
	if err := in.validate(); err != nil {
		return ledger.Entry{}, err
	}
	if err := s.checkPolicy(in.Company, in.EntryBy); err != nil {
		return ledger.Entry{}, err
	}
	taken, err := s.repo.CustomerNumberExists(ctx, in.CustomerNumber, id)
	if err != nil {
		return ledger.Entry{}, err
	}
	if taken {
		return ledger.Entry{}, errs.ErrConflict
	}
	return s.engine.Update(ctx, ledger.Entry{
		ID:             id,
		Kind:           ledger.KindCredit,
		Company:        in.Company,
		AccountNumber:  in.AccountNumber,
		CustomerName:   in.CustomerName,
		CustomerNumber: in.CustomerNumber,
		Amount:         in.Amount,
		Remarks:        in.Remarks,
		EntryBy:        in.EntryBy,
	})
}

// CreateDebit records a debit entry and applies -amount to the mobile
// account it posts against.
func (s *Service) CreateDebit(ctx context.Context, in DebitInput) (ledger.Entry, error) {
	if err := in.validate(); err != nil {
		return ledger.Entry{}, err
	}
	if err := s.checkPolicy(in.Company, in.EntryBy); err != nil {
		return ledger.Entry{}, err
	}
	return s.engine.Create(ctx, ledger.Entry{
		Kind:          ledger.KindDebit,
		Company:       in.Company,
		AccountNumber: in.AccountNumber,
		Amount:        in.Amount,
		Remarks:       in.Remarks,
		EntryBy:       in.EntryBy,
	})
}

// UpdateDebit revises a debit entry.
func (s *Service) UpdateDebit(ctx context.Context, id uuid.UUID, in DebitInput) (ledger.Entry, error) {
	if err := in.validate(); err != nil {
		return ledger.Entry{}, err
	}
	if err := s.checkPolicy(in.Company, in.EntryBy); err != nil {
		return ledger.Entry{}, err
	}
	return s.engine.Update(ctx, ledger.Entry{
		ID:            id,
		Kind:          ledger.KindDebit,
		Company:       in.Company,
		AccountNumber: in.AccountNumber,
		Amount:        in.Amount,
		Remarks:       in.Remarks,
		EntryBy:       in.EntryBy,
	})
}

// Delete removes an entry of the expected kind and reverses its balance
// contribution. The account key comes from the stored entry, never from the
// caller. An id belonging to a different ledger reports not-found.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, want ledger.EntryKind) (ledger.Entry, error) {
	e, err := s.repo.GetEntry(ctx, id)
	if err != nil {
		return ledger.Entry{}, err
	}
	if e.Kind != want {
		return ledger.Entry{}, errs.ErrNotFound
	}
	return s.engine.Delete(ctx, id)
}

// ListQuery carries the raw listing parameters shared by the report
// endpoints.
type ListQuery struct {
	Search    string
	EntryBy   string
	Company   string
	SortBy    string
	SortOrder string
	StartDate string
	EndDate   string
	Page      int
	Limit     int
}

// ListResult is one page of entries plus full-filtered-set totals.
type ListResult struct {
	Entries      []ledger.Entry
	TotalAmount  decimal.Decimal
	TotalRemarks decimal.Decimal
	Pagination   ledger.Pagination
}

func (s *Service) listFilter(q ListQuery, kinds ...ledger.EntryKind) (ledger.EntryFilter, error) {
	f := ledger.EntryFilter{Kinds: kinds, NumberSearch: q.Search}
	if q.EntryBy != "" {
		if !s.cfg.ValidClerk(q.EntryBy) {
			return f, &errs.Validation{Msg: "Invalid entryBy filter", Fields: []string{"entryBy"}, Allowed: s.cfg.Clerks}
		}
		f.EntryBy = q.EntryBy
	}
	if q.Company != "" {
		if !s.cfg.ValidCompany(q.Company) {
			return f, errs.BadEnum("company", s.cfg.Companies)
		}
		f.Company = q.Company
	}
	start, end, err := ledger.DateRange(q.StartDate, q.EndDate)
	if err != nil {
		return f, err
	}
	f.Start, f.End = start, end
	return f, nil
}

func listSort(q ListQuery) ledger.Sort {
	if q.SortBy == "" {
		return ledger.DefaultSort()
	}
	field := ledger.SortByCreatedAt
	if q.SortBy == ledger.SortByAmount {
		field = ledger.SortByAmount
	}
	return ledger.Sort{Field: field, Desc: q.SortOrder == "desc"}
}

// ListPersonal returns the paginated credit listing with full-set amount and
// numeric-remarks totals.
func (s *Service) ListPersonal(ctx context.Context, q ListQuery) (ListResult, error) {
	return s.list(ctx, q, ledger.NewPage(q.Page, q.Limit))
}

// DownloadPersonal returns the full filtered credit set plus totals, used by
// the client-side report export.
func (s *Service) DownloadPersonal(ctx context.Context, q ListQuery) (ListResult, error) {
	return s.list(ctx, q, ledger.All)
}

func (s *Service) list(ctx context.Context, q ListQuery, page ledger.Page) (ListResult, error) {
	f, err := s.listFilter(q, ledger.KindCredit)
	if err != nil {
		return ListResult{}, err
	}
	entries, total, err := s.repo.ListEntries(ctx, f, listSort(q), page)
	if err != nil {
		return ListResult{}, err
	}
	amount, remarks, err := s.repo.SumEntries(ctx, f)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{
		Entries:      entries,
		TotalAmount:  amount,
		TotalRemarks: remarks,
		Pagination:   ledger.Paginate(page, total),
	}, nil
}

// AccountQuery filters credit entries posted against one mobile account.
type AccountQuery struct {
	Company       string
	AccountNumber string
	StartDate     string
	EndDate       string
	Page          int
	Limit         int
}

// AccountEntries returns the credit entries recorded against a mobile
// account, newest first.
func (s *Service) AccountEntries(ctx context.Context, q AccountQuery) ([]ledger.Entry, ledger.Pagination, error) {
	f := ledger.EntryFilter{
		Kinds:         []ledger.EntryKind{ledger.KindCredit},
		Company:       q.Company,
		AccountNumber: q.AccountNumber,
	}
	start, end, err := ledger.DateRange(q.StartDate, q.EndDate)
	if err != nil {
		return nil, ledger.Pagination{}, err
	}
	f.Start, f.End = start, end
	page := ledger.NewPage(q.Page, q.Limit)
	entries, total, err := s.repo.ListEntries(ctx, f, ledger.DefaultSort(), page)
	if err != nil {
		return nil, ledger.Pagination{}, err
	}
	return entries, ledger.Paginate(page, total), nil
}

// LogEntry tags an entry for the merged credit/debit views.
type LogEntry struct {
	ledger.Entry
	IsDebit bool
}

// TodayLog is the merged view of today's credit and debit entries, newest
// first, with per-side totals.
type TodayLog struct {
	Transactions []LogEntry
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
}

// Today returns today's merged transaction log.
func (s *Service) Today(ctx context.Context) (TodayLog, error) {
	start, end := ledger.DayBounds(time.Now())
	f := ledger.EntryFilter{
		Kinds: []ledger.EntryKind{ledger.KindCredit, ledger.KindDebit},
		Start: start,
		End:   end,
	}
	entries, _, err := s.repo.ListEntries(ctx, f, ledger.DefaultSort(), ledger.All)
	if err != nil {
		return TodayLog{}, err
	}
	log := TodayLog{Transactions: make([]LogEntry, 0, len(entries))}
	for _, e := range entries {
		isDebit := e.Kind == ledger.KindDebit
		if isDebit {
			log.TotalDebit = log.TotalDebit.Add(e.Amount)
		} else {
			log.TotalCredit = log.TotalCredit.Add(e.Amount)
		}
		log.Transactions = append(log.Transactions, LogEntry{Entry: e, IsDebit: isDebit})
	}
	return log, nil
}
