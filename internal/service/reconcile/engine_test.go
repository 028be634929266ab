package reconcile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/events"
	"github.com/bebsa/ledger/internal/ledger"
	"github.com/bebsa/ledger/internal/storage/memory"
)

func newTestEngine() (*Engine, *memory.Store) {
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, events.Nop{}, logger), store
}

func seedAccount(store *memory.Store, number string) ledger.MobileAccount {
	now := time.Now().UTC()
	a := ledger.MobileAccount{
		ID:           uuid.New(),
		Company:      "Bkash Personal",
		MobileNumber: number,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	store.SeedAccount(a)
	return a
}

func seedCustomer(store *memory.Store, phone string) ledger.DueCustomer {
	now := time.Now().UTC()
	c := ledger.DueCustomer{
		ID:           uuid.New(),
		CustomerName: "Karim",
		MobileNumber: phone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	store.SeedCustomer(c)
	return c
}

func accountTotal(t *testing.T, store *memory.Store, number string) decimal.Decimal {
	t.Helper()
	a, err := store.MobileAccountByNumber(context.Background(), number)
	if err != nil {
		t.Fatalf("account %s: %v", number, err)
	}
	return a.TotalAmount
}

func mustCreate(t *testing.T, en *Engine, e ledger.Entry) ledger.Entry {
	t.Helper()
	saved, err := en.Create(context.Background(), e)
	if err != nil {
		t.Fatalf("create %s: %v", e.Kind, err)
	}
	return saved
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func creditEntry(number string, amount string) ledger.Entry {
	return ledger.Entry{
		Kind:          ledger.KindCredit,
		Company:       "Bkash Personal",
		AccountNumber: number,
		CustomerName:  "Rahim",
		Amount:        dec(amount),
		EntryBy:       "Rony",
	}
}

func debitEntry(number string, amount string) ledger.Entry {
	e := creditEntry(number, amount)
	e.Kind = ledger.KindDebit
	e.CustomerName = ""
	return e
}

// The documented fixture: 0 -> +500 credit -> -200 debit => 300, delete the
// credit => -200, update the debit to 50 => -50.
func TestMobileAccountScenario(t *testing.T) {
	en, store := newTestEngine()
	seedAccount(store, "01712345678")

	credit := mustCreate(t, en, creditEntry("01712345678", "500"))
	if got := accountTotal(t, store, "01712345678"); !got.Equal(dec("500")) {
		t.Fatalf("after credit: total = %s, want 500", got)
	}

	debit := mustCreate(t, en, debitEntry("01712345678", "200"))
	if got := accountTotal(t, store, "01712345678"); !got.Equal(dec("300")) {
		t.Fatalf("after debit: total = %s, want 300", got)
	}

	if _, err := en.Delete(context.Background(), credit.ID); err != nil {
		t.Fatalf("delete credit: %v", err)
	}
	if got := accountTotal(t, store, "01712345678"); !got.Equal(dec("-200")) {
		t.Fatalf("after deleting credit: total = %s, want -200", got)
	}

	updated := debit
	updated.Amount = dec("50")
	if _, err := en.Update(context.Background(), updated); err != nil {
		t.Fatalf("update debit: %v", err)
	}
	if got := accountTotal(t, store, "01712345678"); !got.Equal(dec("-50")) {
		t.Fatalf("after updating debit: total = %s, want -50", got)
	}
}

func TestCreateThenDeleteRestoresBalance(t *testing.T) {
	en, store := newTestEngine()
	seedAccount(store, "01700000001")
	mustCreate(t, en, creditEntry("01700000001", "120.50"))

	before := accountTotal(t, store, "01700000001")
	e := mustCreate(t, en, debitEntry("01700000001", "75.25"))
	if _, err := en.Delete(context.Background(), e.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := accountTotal(t, store, "01700000001"); !got.Equal(before) {
		t.Fatalf("round trip: total = %s, want %s", got, before)
	}
}

func TestNoOpUpdateLeavesBalanceUnchanged(t *testing.T) {
	en, store := newTestEngine()
	seedAccount(store, "01700000002")
	e := mustCreate(t, en, creditEntry("01700000002", "42"))

	before := accountTotal(t, store, "01700000002")
	if _, err := en.Update(context.Background(), e); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if got := accountTotal(t, store, "01700000002"); !got.Equal(before) {
		t.Fatalf("no-op update: total = %s, want %s", got, before)
	}
}

func TestRepeatedUpdateMatchesDirectCreate(t *testing.T) {
	en, store := newTestEngine()
	seedAccount(store, "01700000003")
	seedAccount(store, "01700000004")

	e := mustCreate(t, en, creditEntry("01700000003", "10"))
	for _, amount := range []string{"300", "77.7"} {
		upd := e
		upd.Amount = dec(amount)
		if _, err := en.Update(context.Background(), upd); err != nil {
			t.Fatalf("update to %s: %v", amount, err)
		}
	}
	mustCreate(t, en, creditEntry("01700000004", "77.7"))

	got := accountTotal(t, store, "01700000003")
	want := accountTotal(t, store, "01700000004")
	if !got.Equal(want) {
		t.Fatalf("sequential updates: total = %s, direct create = %s", got, want)
	}
}

func TestUpdateMovesContributionAcrossAccounts(t *testing.T) {
	en, store := newTestEngine()
	seedAccount(store, "01700000005")
	seedAccount(store, "01700000006")

	e := mustCreate(t, en, creditEntry("01700000005", "100"))
	moved := e
	moved.AccountNumber = "01700000006"
	moved.Amount = dec("150")
	if _, err := en.Update(context.Background(), moved); err != nil {
		t.Fatalf("cross-account update: %v", err)
	}

	if got := accountTotal(t, store, "01700000005"); !got.IsZero() {
		t.Fatalf("old account: total = %s, want 0", got)
	}
	if got := accountTotal(t, store, "01700000006"); !got.Equal(dec("150")) {
		t.Fatalf("new account: total = %s, want 150", got)
	}
}

func TestCreateAgainstMissingAccountFailsLoudly(t *testing.T) {
	en, store := newTestEngine()

	_, err := en.Create(context.Background(), creditEntry("01799999999", "50"))
	if !errors.Is(err, errs.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
	entries, total, err := store.ListEntries(context.Background(), ledger.EntryFilter{}, ledger.DefaultSort(), ledger.All)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(entries) != 0 {
		t.Fatalf("entry persisted despite missing account: %d", total)
	}
}

func TestKindIsImmutable(t *testing.T) {
	en, store := newTestEngine()
	seedAccount(store, "01700000007")
	e := mustCreate(t, en, creditEntry("01700000007", "10"))

	flipped := e
	flipped.Kind = ledger.KindDebit
	if _, err := en.Update(context.Background(), flipped); !errors.Is(err, errs.ErrImmutable) {
		t.Fatalf("err = %v, want ErrImmutable", err)
	}
}

// The documented due fixture: give 100 => balance 100/given 100, take 30 =>
// balance 70/taken 30, delete the give => balance and given clamp to 0.
func TestDueScenarioClampsOnDelete(t *testing.T) {
	en, store := newTestEngine()
	cust := seedCustomer(store, "01911111111")
	ctx := context.Background()

	give := mustCreate(t, en, ledger.Entry{
		Kind: ledger.KindDueGive, CustomerID: cust.ID, Amount: dec("100"), Balance: dec("100"),
	})
	c, _ := store.GetDueCustomer(ctx, cust.ID)
	if !c.DueBalance.Equal(dec("100")) || !c.TotalGiven.Equal(dec("100")) {
		t.Fatalf("after give: balance=%s given=%s, want 100/100", c.DueBalance, c.TotalGiven)
	}

	mustCreate(t, en, ledger.Entry{
		Kind: ledger.KindDueTake, CustomerID: cust.ID, Amount: dec("30"), Balance: dec("70"),
	})
	c, _ = store.GetDueCustomer(ctx, cust.ID)
	if !c.DueBalance.Equal(dec("70")) || !c.TotalTaken.Equal(dec("30")) {
		t.Fatalf("after take: balance=%s taken=%s, want 70/30", c.DueBalance, c.TotalTaken)
	}

	if _, err := en.Delete(ctx, give.ID); err != nil {
		t.Fatalf("delete give: %v", err)
	}
	c, _ = store.GetDueCustomer(ctx, cust.ID)
	if !c.DueBalance.IsZero() {
		t.Fatalf("after deleting give: balance = %s, want 0 (clamped)", c.DueBalance)
	}
	if !c.TotalGiven.IsZero() {
		t.Fatalf("after deleting give: totalGiven = %s, want 0 (clamped)", c.TotalGiven)
	}
	if !c.TotalTaken.Equal(dec("30")) {
		t.Fatalf("after deleting give: totalTaken = %s, want 30", c.TotalTaken)
	}
}

// Concurrent updates of one entry must not compute their diffs from a stale
// amount: whatever interleaving wins, the aggregate has to equal the
// surviving entry's contribution.
func TestConcurrentUpdatesKeepInvariant(t *testing.T) {
	en, store := newTestEngine()
	seedAccount(store, "01700000009")
	ctx := context.Background()
	e := mustCreate(t, en, creditEntry("01700000009", "100"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		amount := dec(fmt.Sprintf("%d", (i+1)*10))
		wg.Add(1)
		go func() {
			defer wg.Done()
			upd := e
			upd.Amount = amount
			if _, err := en.Update(ctx, upd); err != nil {
				t.Errorf("update to %s: %v", amount, err)
			}
		}()
	}
	wg.Wait()

	final, err := store.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("get entry: %v", err)
	}
	want := final.Kind.Contribution(final.Amount)
	if got := accountTotal(t, store, "01700000009"); !got.Equal(want) {
		t.Fatalf("aggregate = %s but surviving entry contribution = %s", got, want)
	}
}

// A delete racing an update must reverse the amount actually stored, not the
// one read before the lock.
func TestConcurrentUpdateAndDeleteKeepInvariant(t *testing.T) {
	ctx := context.Background()
	for i := 0; i < 25; i++ {
		en, store := newTestEngine()
		seedAccount(store, "01700000010")
		e := mustCreate(t, en, creditEntry("01700000010", "100"))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			upd := e
			upd.Amount = dec("250")
			// The delete may win the race; not-found is fine then.
			if _, err := en.Update(ctx, upd); err != nil && !errors.Is(err, errs.ErrNotFound) {
				t.Errorf("update: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := en.Delete(ctx, e.ID); err != nil {
				t.Errorf("delete: %v", err)
			}
		}()
		wg.Wait()

		if got := accountTotal(t, store, "01700000010"); !got.IsZero() {
			t.Fatalf("iter %d: aggregate = %s after delete, want 0", i, got)
		}
	}
}

// Aggregate invariant: the balance always equals the signed sum of the
// surviving entries, across a mixed mutation sequence.
func TestBalanceMatchesEntrySum(t *testing.T) {
	en, store := newTestEngine()
	seedAccount(store, "01700000008")
	ctx := context.Background()

	e1 := mustCreate(t, en, creditEntry("01700000008", "500"))
	mustCreate(t, en, debitEntry("01700000008", "120"))
	e3 := mustCreate(t, en, creditEntry("01700000008", "80"))

	upd := e3
	upd.Amount = dec("60")
	if _, err := en.Update(ctx, upd); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := en.Delete(ctx, e1.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	entries, _, err := store.ListEntries(ctx, ledger.EntryFilter{AccountNumber: "01700000008"}, ledger.DefaultSort(), ledger.All)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := decimal.Zero
	for _, e := range entries {
		want = want.Add(e.Kind.Contribution(e.Amount))
	}
	if got := accountTotal(t, store, "01700000008"); !got.Equal(want) {
		t.Fatalf("invariant broken: total = %s, entry sum = %s", got, want)
	}
}
