// Package memory provides a simple in-memory implementation used for
// development and tests. Entry writes and their balance deltas are applied
// under one lock so the aggregates never observe a partial mutation.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/ledger"
)

// Store is an in-memory implementation of the repositories used by the
// services. It is guarded by an RWMutex for concurrent reads/writes.
type Store struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]*ledger.Entry
	accounts  map[uuid.UUID]*ledger.MobileAccount
	customers map[uuid.UUID]*ledger.DueCustomer
	users     map[uuid.UUID]*ledger.User
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{
		entries:   make(map[uuid.UUID]*ledger.Entry),
		accounts:  make(map[uuid.UUID]*ledger.MobileAccount),
		customers: make(map[uuid.UUID]*ledger.DueCustomer),
		users:     make(map[uuid.UUID]*ledger.User),
	}
}

// Seed helpers for local dev/tests.
func (s *Store) SeedAccount(a ledger.MobileAccount) {
	s.mu.Lock()
	s.accounts[a.ID] = &a
	s.mu.Unlock()
}

func (s *Store) SeedCustomer(c ledger.DueCustomer) {
	s.mu.Lock()
	s.customers[c.ID] = &c
	s.mu.Unlock()
}

func (s *Store) SeedUser(u ledger.User) {
	s.mu.Lock()
	s.users[u.ID] = &u
	s.mu.Unlock()
}

func (s *Store) Reset() {
	s.mu.Lock()
	s.entries = map[uuid.UUID]*ledger.Entry{}
	s.accounts = map[uuid.UUID]*ledger.MobileAccount{}
	s.customers = map[uuid.UUID]*ledger.DueCustomer{}
	s.users = map[uuid.UUID]*ledger.User{}
	s.mu.Unlock()
}

// Ready reports storage health; always healthy for the in-memory store.
func (s *Store) Ready(_ context.Context) error { return nil }

// Close is a no-op for the in-memory store.
func (s *Store) Close() {}

// --- entries + reconciliation ---

// GetEntry returns one entry by id.
func (s *Store) GetEntry(_ context.Context, id uuid.UUID) (ledger.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return ledger.Entry{}, errs.ErrNotFound
	}
	return *e, nil
}

// CreateEntry persists the entry and applies its balance deltas atomically.
func (s *Store) CreateEntry(_ context.Context, entry ledger.Entry, deltas []ledger.BalanceDelta) (ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.applyDeltasLocked(deltas); err != nil {
		return ledger.Entry{}, err
	}
	e := entry
	s.entries[e.ID] = &e
	return e, nil
}

// UpdateEntry replaces an existing entry and applies its balance deltas.
func (s *Store) UpdateEntry(_ context.Context, entry ledger.Entry, deltas []ledger.BalanceDelta) (ledger.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return ledger.Entry{}, errs.ErrNotFound
	}
	if err := s.applyDeltasLocked(deltas); err != nil {
		return ledger.Entry{}, err
	}
	e := entry
	s.entries[entry.ID] = &e
	return e, nil
}

// DeleteEntry removes an entry and applies the reversal deltas.
func (s *Store) DeleteEntry(_ context.Context, id uuid.UUID, deltas []ledger.BalanceDelta) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return errs.ErrNotFound
	}
	if err := s.applyDeltasLocked(deltas); err != nil {
		return err
	}
	delete(s.entries, id)
	return nil
}

func (s *Store) applyDeltasLocked(deltas []ledger.BalanceDelta) error {
	for _, d := range deltas {
		switch d.Account.Kind {
		case ledger.AggregateDue:
			c, ok := s.customers[d.Account.CustomerID]
			if !ok {
				return errs.ErrNotFound
			}
			c.DueBalance = c.DueBalance.Add(d.Amount)
			c.TotalGiven = c.TotalGiven.Add(d.Given)
			c.TotalTaken = c.TotalTaken.Add(d.Taken)
			if d.Clamp {
				c.DueBalance = floorZero(c.DueBalance)
				c.TotalGiven = floorZero(c.TotalGiven)
				c.TotalTaken = floorZero(c.TotalTaken)
			}
			c.UpdatedAt = time.Now().UTC()
		default:
			a := s.accountByNumberLocked(d.Account.Number)
			if a == nil {
				return errs.ErrNotFound
			}
			a.TotalAmount = a.TotalAmount.Add(d.Amount)
			a.UpdatedAt = time.Now().UTC()
		}
	}
	return nil
}

func floorZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// ListEntries returns one page of matching entries plus the total match
// count. Sorting happens before pagination.
func (s *Store) ListEntries(_ context.Context, f ledger.EntryFilter, srt ledger.Sort, page ledger.Page) ([]ledger.Entry, int, error) {
	s.mu.RLock()
	matched := s.matchEntriesLocked(f)
	s.mu.RUnlock()

	sortEntries(matched, srt)
	total := len(matched)
	lo, hi := page.Slice(total)
	return matched[lo:hi], total, nil
}

// SumEntries returns the amount sum over the full filtered set, plus the sum
// of remarks values that parse as numbers.
func (s *Store) SumEntries(_ context.Context, f ledger.EntryFilter) (amount, remarks decimal.Decimal, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if !matchEntry(*e, f) {
			continue
		}
		amount = amount.Add(e.Amount)
		if v, perr := decimal.NewFromString(strings.TrimSpace(e.Remarks)); perr == nil {
			remarks = remarks.Add(v)
		}
	}
	return amount, remarks, nil
}

// CustomerNumberExists reports whether another entry already carries the
// given customer number.
func (s *Store) CustomerNumberExists(_ context.Context, number string, exclude uuid.UUID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entries {
		if e.ID != exclude && e.CustomerNumber != "" && e.CustomerNumber == number {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) matchEntriesLocked(f ledger.EntryFilter) []ledger.Entry {
	out := make([]ledger.Entry, 0)
	for _, e := range s.entries {
		if matchEntry(*e, f) {
			out = append(out, *e)
		}
	}
	return out
}

func matchEntry(e ledger.Entry, f ledger.EntryFilter) bool {
	if !f.HasKind(e.Kind) {
		return false
	}
	if f.EntryBy != "" && e.EntryBy != f.EntryBy {
		return false
	}
	if f.Company != "" && e.Company != f.Company {
		return false
	}
	if f.NumberSearch != "" && !strings.Contains(strings.ToLower(e.CustomerNumber), strings.ToLower(f.NumberSearch)) {
		return false
	}
	if f.AccountNumber != "" && e.AccountNumber != f.AccountNumber {
		return false
	}
	if f.CustomerID != uuid.Nil && e.CustomerID != f.CustomerID {
		return false
	}
	if !f.Start.IsZero() && e.CreatedAt.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && e.CreatedAt.After(f.End) {
		return false
	}
	return true
}

func sortEntries(es []ledger.Entry, srt ledger.Sort) {
	sort.SliceStable(es, func(i, j int) bool {
		var less bool
		switch srt.Field {
		case ledger.SortByAmount:
			less = es[i].Amount.LessThan(es[j].Amount)
		default:
			less = es[i].CreatedAt.Before(es[j].CreatedAt)
		}
		if srt.Desc {
			return !less && !equalKey(es[i], es[j], srt.Field)
		}
		return less
	})
}

func equalKey(a, b ledger.Entry, field string) bool {
	switch field {
	case ledger.SortByAmount:
		return a.Amount.Equal(b.Amount)
	default:
		return a.CreatedAt.Equal(b.CreatedAt)
	}
}

// --- mobile accounts ---

// CreateMobileAccount persists a new account. The mobile number is the
// aggregate key and must be unique.
func (s *Store) CreateMobileAccount(_ context.Context, a ledger.MobileAccount) (ledger.MobileAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.accountByNumberLocked(a.MobileNumber) != nil {
		return ledger.MobileAccount{}, errs.ErrConflict
	}
	acc := a
	s.accounts[acc.ID] = &acc
	return acc, nil
}

// GetMobileAccount returns one account by id.
func (s *Store) GetMobileAccount(_ context.Context, id uuid.UUID) (ledger.MobileAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return ledger.MobileAccount{}, errs.ErrNotFound
	}
	return *a, nil
}

// MobileAccountByNumber returns the account holding the given number.
func (s *Store) MobileAccountByNumber(_ context.Context, number string) (ledger.MobileAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a := s.accountByNumberLocked(number); a != nil {
		return *a, nil
	}
	return ledger.MobileAccount{}, errs.ErrNotFound
}

func (s *Store) accountByNumberLocked(number string) *ledger.MobileAccount {
	for _, a := range s.accounts {
		if a.MobileNumber == number {
			return a
		}
	}
	return nil
}

// UpdateMobileAccount changes the company/number fields. Moving to a number
// already held by another account is a conflict.
func (s *Store) UpdateMobileAccount(_ context.Context, a ledger.MobileAccount) (ledger.MobileAccount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.accounts[a.ID]
	if !ok {
		return ledger.MobileAccount{}, errs.ErrNotFound
	}
	if other := s.accountByNumberLocked(a.MobileNumber); other != nil && other.ID != a.ID {
		return ledger.MobileAccount{}, errs.ErrConflict
	}
	cur.Company = a.Company
	cur.MobileNumber = a.MobileNumber
	cur.UpdatedAt = time.Now().UTC()
	return *cur, nil
}

// DeleteMobileAccount removes an account record.
func (s *Store) DeleteMobileAccount(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.accounts, id)
	return nil
}

// ListMobileAccounts returns one page of matching accounts plus the total
// match count.
func (s *Store) ListMobileAccounts(_ context.Context, f ledger.AccountFilter, srt ledger.Sort, page ledger.Page) ([]ledger.MobileAccount, int, error) {
	s.mu.RLock()
	matched := make([]ledger.MobileAccount, 0, len(s.accounts))
	for _, a := range s.accounts {
		if matchAccount(*a, f) {
			matched = append(matched, *a)
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		if srt.Desc {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	total := len(matched)
	lo, hi := page.Slice(total)
	return matched[lo:hi], total, nil
}

// SumMobileAccounts returns the TotalAmount sum over the full filtered set.
func (s *Store) SumMobileAccounts(_ context.Context, f ledger.AccountFilter) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sum := decimal.Zero
	for _, a := range s.accounts {
		if matchAccount(*a, f) {
			sum = sum.Add(a.TotalAmount)
		}
	}
	return sum, nil
}

func matchAccount(a ledger.MobileAccount, f ledger.AccountFilter) bool {
	if f.Company != "" && a.Company != f.Company {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.Company), q) &&
			!strings.Contains(strings.ToLower(a.MobileNumber), q) {
			return false
		}
	}
	if !f.Start.IsZero() && a.CreatedAt.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && a.CreatedAt.After(f.End) {
		return false
	}
	return true
}

// --- due customers ---

// CreateDueCustomer persists a new due customer; the mobile number must be
// unique.
func (s *Store) CreateDueCustomer(_ context.Context, c ledger.DueCustomer) (ledger.DueCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.customerByPhoneLocked(c.MobileNumber) != nil {
		return ledger.DueCustomer{}, errs.ErrConflict
	}
	cust := c
	s.customers[cust.ID] = &cust
	return cust, nil
}

// GetDueCustomer returns one due customer by id.
func (s *Store) GetDueCustomer(_ context.Context, id uuid.UUID) (ledger.DueCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.customers[id]
	if !ok {
		return ledger.DueCustomer{}, errs.ErrNotFound
	}
	return *c, nil
}

// DueCustomerByPhone returns the customer holding the given mobile number.
func (s *Store) DueCustomerByPhone(_ context.Context, number string) (ledger.DueCustomer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c := s.customerByPhoneLocked(number); c != nil {
		return *c, nil
	}
	return ledger.DueCustomer{}, errs.ErrNotFound
}

func (s *Store) customerByPhoneLocked(number string) *ledger.DueCustomer {
	for _, c := range s.customers {
		if c.MobileNumber == number {
			return c
		}
	}
	return nil
}

// UpdateDueCustomer changes the name/number fields.
func (s *Store) UpdateDueCustomer(_ context.Context, c ledger.DueCustomer) (ledger.DueCustomer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.customers[c.ID]
	if !ok {
		return ledger.DueCustomer{}, errs.ErrNotFound
	}
	if other := s.customerByPhoneLocked(c.MobileNumber); other != nil && other.ID != c.ID {
		return ledger.DueCustomer{}, errs.ErrConflict
	}
	cur.CustomerName = c.CustomerName
	cur.MobileNumber = c.MobileNumber
	cur.UpdatedAt = time.Now().UTC()
	return *cur, nil
}

// DeleteDueCustomer removes a customer record. Its transaction history is
// left in place.
func (s *Store) DeleteDueCustomer(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.customers[id]; !ok {
		return errs.ErrNotFound
	}
	delete(s.customers, id)
	return nil
}

// ListDueCustomers returns one page of matching customers plus the total
// match count, newest first.
func (s *Store) ListDueCustomers(_ context.Context, f ledger.CustomerFilter, page ledger.Page) ([]ledger.DueCustomer, int, error) {
	s.mu.RLock()
	matched := make([]ledger.DueCustomer, 0, len(s.customers))
	for _, c := range s.customers {
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(c.CustomerName), q) &&
				!strings.Contains(strings.ToLower(c.MobileNumber), q) {
				continue
			}
		}
		matched = append(matched, *c)
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})
	total := len(matched)
	lo, hi := page.Slice(total)
	return matched[lo:hi], total, nil
}

// --- users ---

// CreateUser persists a login identity; names are unique.
func (s *Store) CreateUser(_ context.Context, u ledger.User) (ledger.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.users {
		if cur.Name == u.Name {
			return ledger.User{}, errs.ErrConflict
		}
	}
	usr := u
	s.users[usr.ID] = &usr
	return usr, nil
}

// UserByName returns the user with the given login name.
func (s *Store) UserByName(_ context.Context, name string) (ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Name == name {
			return *u, nil
		}
	}
	return ledger.User{}, errs.ErrNotFound
}

// UpdateUserPassword replaces the stored password hash for a user.
func (s *Store) UpdateUserPassword(_ context.Context, id uuid.UUID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return errs.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}
