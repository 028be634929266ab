// Package account manages mobile-money account records and their listing
// views. Balances on these records are owned by the reconciliation engine;
// this service only creates, relabels, lists and deletes the records.
package account

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/config"
	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/ledger"
)

// Repo is the persistence contract for mobile accounts.
type Repo interface {
	CreateMobileAccount(ctx context.Context, a ledger.MobileAccount) (ledger.MobileAccount, error)
	GetMobileAccount(ctx context.Context, id uuid.UUID) (ledger.MobileAccount, error)
	UpdateMobileAccount(ctx context.Context, a ledger.MobileAccount) (ledger.MobileAccount, error)
	DeleteMobileAccount(ctx context.Context, id uuid.UUID) error
	ListMobileAccounts(ctx context.Context, f ledger.AccountFilter, srt ledger.Sort, page ledger.Page) ([]ledger.MobileAccount, int, error)
	SumMobileAccounts(ctx context.Context, f ledger.AccountFilter) (decimal.Decimal, error)
}

// Service carries the mobile-account use cases.
type Service struct {
	repo Repo
	cfg  *config.Config
}

// New wires the service.
func New(repo Repo, cfg *config.Config) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// Create opens a mobile account with a zero balance.
func (s *Service) Create(ctx context.Context, company, mobileNumber string) (ledger.MobileAccount, error) {
	missing := make([]string, 0, 2)
	if company == "" {
		missing = append(missing, "company")
	}
	if mobileNumber == "" {
		missing = append(missing, "mobileNumber")
	}
	if len(missing) > 0 {
		return ledger.MobileAccount{}, errs.MissingFields(missing...)
	}
	if !s.cfg.ValidCompany(company) {
		return ledger.MobileAccount{}, errs.BadEnum("company", s.cfg.Companies)
	}
	now := time.Now().UTC()
	return s.repo.CreateMobileAccount(ctx, ledger.MobileAccount{
		ID:           uuid.New(),
		Company:      company,
		MobileNumber: mobileNumber,
		TotalAmount:  decimal.Zero,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Update relabels an account's company and/or number. The running balance is
// untouched. Empty fields keep their current value.
func (s *Service) Update(ctx context.Context, id uuid.UUID, company, mobileNumber string) (ledger.MobileAccount, error) {
	if company != "" && !s.cfg.ValidCompany(company) {
		return ledger.MobileAccount{}, errs.BadEnum("company", s.cfg.Companies)
	}
	cur, err := s.repo.GetMobileAccount(ctx, id)
	if err != nil {
		return ledger.MobileAccount{}, err
	}
	if company != "" {
		cur.Company = company
	}
	if mobileNumber != "" {
		cur.MobileNumber = mobileNumber
	}
	return s.repo.UpdateMobileAccount(ctx, cur)
}

// Delete removes the account record.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteMobileAccount(ctx, id)
}

// ListResult is a set of accounts plus the full-filtered-set balance total.
type ListResult struct {
	Accounts   []ledger.MobileAccount
	TotalSum   decimal.Decimal
	Pagination ledger.Pagination
}

// List returns every account within the optional date range, oldest first,
// with the balance total over the full set.
func (s *Service) List(ctx context.Context, startDate, endDate string) (ListResult, error) {
	start, end, err := ledger.DateRange(startDate, endDate)
	if err != nil {
		return ListResult{}, err
	}
	f := ledger.AccountFilter{Start: start, End: end}
	accounts, total, err := s.repo.ListMobileAccounts(ctx, f, ledger.Sort{Field: ledger.SortByCreatedAt}, ledger.All)
	if err != nil {
		return ListResult{}, err
	}
	sum, err := s.repo.SumMobileAccounts(ctx, f)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Accounts: accounts, TotalSum: sum, Pagination: ledger.Paginate(ledger.All, total)}, nil
}

// Download returns the full account set newest first with the balance total,
// used by the client-side report export.
func (s *Service) Download(ctx context.Context, startDate, endDate string) (ListResult, error) {
	start, end, err := ledger.DateRange(startDate, endDate)
	if err != nil {
		return ListResult{}, err
	}
	f := ledger.AccountFilter{Start: start, End: end}
	accounts, total, err := s.repo.ListMobileAccounts(ctx, f, ledger.DefaultSort(), ledger.All)
	if err != nil {
		return ListResult{}, err
	}
	sum, err := s.repo.SumMobileAccounts(ctx, f)
	if err != nil {
		return ListResult{}, err
	}
	return ListResult{Accounts: accounts, TotalSum: sum, Pagination: ledger.Paginate(ledger.All, total)}, nil
}

// ByCompany returns the accounts registered under one company.
func (s *Service) ByCompany(ctx context.Context, company string) ([]ledger.MobileAccount, error) {
	if company == "" {
		return nil, errs.MissingFields("company")
	}
	if !s.cfg.ValidCompany(company) {
		return nil, errs.BadEnum("company", s.cfg.Companies)
	}
	accounts, _, err := s.repo.ListMobileAccounts(ctx, ledger.AccountFilter{Company: company},
		ledger.Sort{Field: ledger.SortByCreatedAt}, ledger.All)
	return accounts, err
}

// Search returns one page of accounts matching a company/number substring,
// oldest first.
func (s *Service) Search(ctx context.Context, search string, page, limit int) ([]ledger.MobileAccount, ledger.Pagination, error) {
	p := ledger.NewPage(page, limit)
	accounts, total, err := s.repo.ListMobileAccounts(ctx, ledger.AccountFilter{Search: search},
		ledger.Sort{Field: ledger.SortByCreatedAt}, p)
	if err != nil {
		return nil, ledger.Pagination{}, err
	}
	return accounts, ledger.Paginate(p, total), nil
}
