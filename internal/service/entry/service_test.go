package entry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/config"
	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/events"
	"github.com/bebsa/ledger/internal/ledger"
	"github.com/bebsa/ledger/internal/service/reconcile"
	"github.com/bebsa/ledger/internal/storage/memory"
)

func newTestService() (*Service, *memory.Store) {
	store := memory.New()
	cfg := &config.Config{Companies: config.DefaultCompanies, Clerks: config.DefaultClerks}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := reconcile.New(store, events.Nop{}, logger)
	return New(engine, store, cfg), store
}

func seedAccount(store *memory.Store, number string) {
	now := time.Now().UTC()
	store.SeedAccount(ledger.MobileAccount{
		ID:           uuid.New(),
		Company:      "Bkash Personal",
		MobileNumber: number,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func validCredit(number string, amount string) CreditInput {
	return CreditInput{
		CustomerName:   "Rahim",
		CustomerNumber: "01811111111",
		Company:        "Bkash Personal",
		AccountNumber:  number,
		Amount:         decimal.RequireFromString(amount),
		EntryBy:        "Rony",
	}
}

func TestCreateCreditRejectsUnknownClerk(t *testing.T) {
	svc, store := newTestService()
	seedAccount(store, "01712345678")
	ctx := context.Background()

	in := validCredit("01712345678", "500")
	in.EntryBy = "Mallory"
	_, err := svc.CreateCredit(ctx, in)
	if !errors.Is(err, errs.ErrUnauthorizedActor) {
		t.Fatalf("err = %v, want ErrUnauthorizedActor", err)
	}

	// Nothing persisted, nothing reconciled.
	_, total, err := store.ListEntries(ctx, ledger.EntryFilter{}, ledger.DefaultSort(), ledger.All)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 {
		t.Fatalf("entries persisted = %d, want 0", total)
	}
	a, err := store.MobileAccountByNumber(ctx, "01712345678")
	if err != nil {
		t.Fatalf("account: %v", err)
	}
	if !a.TotalAmount.IsZero() {
		t.Fatalf("balance mutated to %s", a.TotalAmount)
	}
}

func TestCreateCreditReportsMissingFields(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateCredit(context.Background(), CreditInput{EntryBy: "Rony"})
	var v *errs.Validation
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want *errs.Validation", err)
	}
	if len(v.Fields) != 4 {
		t.Fatalf("missing fields = %v, want 4 entries", v.Fields)
	}
}

func TestCreateCreditRejectsUnknownCompany(t *testing.T) {
	svc, store := newTestService()
	seedAccount(store, "01712345678")

	in := validCredit("01712345678", "10")
	in.Company = "Upay"
	_, err := svc.CreateCredit(context.Background(), in)
	var v *errs.Validation
	if !errors.As(err, &v) {
		t.Fatalf("err = %v, want *errs.Validation", err)
	}
	if len(v.Allowed) == 0 {
		t.Fatalf("allowed values missing from company enum error")
	}
}

func TestListPersonalPaginatesAndSumsFullSet(t *testing.T) {
	svc, store := newTestService()
	seedAccount(store, "01712345678")
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		in := validCredit("01712345678", "10")
		in.CustomerNumber = fmt.Sprintf("018%08d", i)
		if _, err := svc.CreateCredit(ctx, in); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	res, err := svc.ListPersonal(ctx, ListQuery{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Entries) != 10 {
		t.Fatalf("page size = %d, want 10", len(res.Entries))
	}
	if res.Pagination.TotalPages != 3 || res.Pagination.TotalCount != 25 {
		t.Fatalf("pagination = %+v, want totalPages=3 totalCount=25", res.Pagination)
	}
	// The sum covers all 25 rows, not just the page.
	if !res.TotalAmount.Equal(decimal.RequireFromString("250")) {
		t.Fatalf("totalAmount = %s, want 250", res.TotalAmount)
	}
}

func TestListPersonalSumsNumericRemarks(t *testing.T) {
	svc, store := newTestService()
	seedAccount(store, "01712345678")
	ctx := context.Background()

	for i, remarks := range []string{"25", "10.5", "paid in person", ""} {
		in := validCredit("01712345678", "5")
		in.CustomerNumber = fmt.Sprintf("019%08d", i)
		in.Remarks = remarks
		if _, err := svc.CreateCredit(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	res, err := svc.ListPersonal(ctx, ListQuery{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !res.TotalRemarks.Equal(decimal.RequireFromString("35.5")) {
		t.Fatalf("totalRemarks = %s, want 35.5", res.TotalRemarks)
	}
}

func TestListPersonalRejectsInvalidFilters(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.ListPersonal(ctx, ListQuery{EntryBy: "Mallory"}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("entryBy filter: err = %v, want ErrInvalid", err)
	}
	if _, err := svc.ListPersonal(ctx, ListQuery{Company: "Upay"}); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("company filter: err = %v, want ErrInvalid", err)
	}
}

func TestTodayMergesCreditAndDebit(t *testing.T) {
	svc, store := newTestService()
	seedAccount(store, "01712345678")
	ctx := context.Background()

	if _, err := svc.CreateCredit(ctx, validCredit("01712345678", "500")); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if _, err := svc.CreateDebit(ctx, DebitInput{
		Company:       "Bkash Personal",
		AccountNumber: "01712345678",
		Amount:        decimal.RequireFromString("200"),
		EntryBy:       "Rajib",
	}); err != nil {
		t.Fatalf("debit: %v", err)
	}

	log, err := svc.Today(ctx)
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	if len(log.Transactions) != 2 {
		t.Fatalf("transactions = %d, want 2", len(log.Transactions))
	}
	if !log.TotalCredit.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("totalCredit = %s, want 500", log.TotalCredit)
	}
	if !log.TotalDebit.Equal(decimal.RequireFromString("200")) {
		t.Fatalf("totalDebit = %s, want 200", log.TotalDebit)
	}
	for _, tx := range log.Transactions {
		if tx.IsDebit != (tx.Kind == ledger.KindDebit) {
			t.Fatalf("entry %s tagged isDebit=%v", tx.Kind, tx.IsDebit)
		}
	}
}

func TestDeleteRejectsWrongLedger(t *testing.T) {
	svc, store := newTestService()
	seedAccount(store, "01712345678")
	ctx := context.Background()

	e, err := svc.CreateCredit(ctx, validCredit("01712345678", "50"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Delete(ctx, e.ID, ledger.KindDebit); !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	// The entry and its contribution survive.
	a, _ := store.MobileAccountByNumber(ctx, "01712345678")
	if !a.TotalAmount.Equal(decimal.RequireFromString("50")) {
		t.Fatalf("balance = %s, want 50", a.TotalAmount)
	}
}

func TestUpdateCreditConflictsOnDuplicateCustomerNumber(t *testing.T) {
	svc, store := newTestService()
	seedAccount(store, "01712345678")
	ctx := context.Background()

	first := validCredit("01712345678", "10")
	first.CustomerNumber = "01800000001"
	if _, err := svc.CreateCredit(ctx, first); err != nil {
		t.Fatalf("create first: %v", err)
	}
	second := validCredit("01712345678", "20")
	second.CustomerNumber = "01800000002"
	e, err := svc.CreateCredit(ctx, second)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	moved := second
	moved.CustomerNumber = "01800000001"
	if _, err := svc.UpdateCredit(ctx, e.ID, moved); !errors.Is(err, errs.ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
}
