// Package reconcile keeps each running balance consistent with the sum of
// its ledger entries. Every create/update/delete of an entry flows through
// the Engine, which computes the equal-and-opposite balance deltas and hands
// the entry write plus the deltas to the store as one unit.
package reconcile

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/errs"
	"github.com/bebsa/ledger/internal/events"
	"github.com/bebsa/ledger/internal/ledger"
)

var reconciliationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "bebsa",
		Name:      "reconciliations_total",
		Help:      "Balance reconciliations applied, by entry kind and operation",
	},
	[]string{"kind", "op"},
)

// Store is the persistence contract the engine needs. Implementations must
// apply the entry write and every delta atomically: in one database
// transaction, or under one lock for the in-memory store.
type Store interface {
	GetEntry(ctx context.Context, id uuid.UUID) (ledger.Entry, error)
	CreateEntry(ctx context.Context, e ledger.Entry, deltas []ledger.BalanceDelta) (ledger.Entry, error)
	UpdateEntry(ctx context.Context, e ledger.Entry, deltas []ledger.BalanceDelta) (ledger.Entry, error)
	DeleteEntry(ctx context.Context, id uuid.UUID, deltas []ledger.BalanceDelta) error
	MobileAccountByNumber(ctx context.Context, number string) (ledger.MobileAccount, error)
	GetDueCustomer(ctx context.Context, id uuid.UUID) (ledger.DueCustomer, error)
}

// Engine applies ledger-entry mutations together with the matching balance
// deltas. Mutations against the same account key are serialized through a
// per-key mutex so concurrent requests cannot lose updates.
type Engine struct {
	store Store
	pub   events.Publisher
	log   *slog.Logger

	mapMu sync.Mutex
	locks map[string]*sync.Mutex
}

// New constructs an Engine. pub may be events.Nop{}.
func New(store Store, pub events.Publisher, logger *slog.Logger) *Engine {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Engine{
		store: store,
		pub:   pub,
		log:   logger,
		locks: make(map[string]*sync.Mutex),
	}
}

// Create persists a validated entry draft and applies its contribution to
// the matching aggregate. The aggregate must already exist: a credit or
// debit against an unknown mobile account, or a give/take against an unknown
// customer, fails with not-found and persists nothing.
func (en *Engine) Create(ctx context.Context, draft ledger.Entry) (ledger.Entry, error) {
	if !draft.Kind.Valid() || draft.Amount.IsNegative() {
		return ledger.Entry{}, errs.ErrInvalid
	}
	ref := draft.AccountRef()
	unlock := en.lock(ref.Key())
	defer unlock()

	if err := en.ensureAggregate(ctx, ref); err != nil {
		return ledger.Entry{}, err
	}
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	now := time.Now().UTC()
	if draft.CreatedAt.IsZero() {
		draft.CreatedAt = now
	}
	draft.UpdatedAt = now

	d := contributionDelta(ref, draft.Kind, draft.Amount, false)
	saved, err := en.store.CreateEntry(ctx, draft, []ledger.BalanceDelta{d})
	if err != nil {
		return ledger.Entry{}, err
	}
	en.record(ctx, saved, "create", d)
	return saved, nil
}

// Update replaces the mutable fields of an existing entry and reconciles the
// aggregates. The kind never changes. If the account key is unchanged only
// the amount difference is applied; if the entry moved to a different mobile
// account, the old contribution is fully reversed on the old aggregate and
// the new contribution applied to the new one. The stored entry is re-read
// under the per-key locks so the diff is never computed from a stale amount.
func (en *Engine) Update(ctx context.Context, updated ledger.Entry) (ledger.Entry, error) {
	if updated.Amount.IsNegative() {
		return ledger.Entry{}, errs.ErrInvalid
	}
	for {
		old, err := en.store.GetEntry(ctx, updated.ID)
		if err != nil {
			return ledger.Entry{}, err
		}
		if updated.Kind != "" && updated.Kind != old.Kind {
			return ledger.Entry{}, errs.ErrImmutable
		}
		draft := updated
		draft.Kind = old.Kind
		if old.Kind == ledger.KindDueGive || old.Kind == ledger.KindDueTake {
			// Due entries never move between customers.
			draft.CustomerID = old.CustomerID
		}
		oldRef, newRef := old.AccountRef(), draft.AccountRef()
		unlock := en.lockAll(oldRef.Key(), newRef.Key())

		// A concurrent mutation may have changed the entry between the
		// unlocked read and the lock. Re-read and retry if it moved to an
		// account key we did not lock.
		old, err = en.store.GetEntry(ctx, draft.ID)
		if err != nil {
			unlock()
			return ledger.Entry{}, err
		}
		if old.AccountRef().Key() != oldRef.Key() {
			unlock()
			continue
		}

		if err := en.ensureAggregate(ctx, newRef); err != nil {
			unlock()
			return ledger.Entry{}, err
		}

		var deltas []ledger.BalanceDelta
		if oldRef.Key() == newRef.Key() {
			diff := draft.Amount.Sub(old.Amount)
			if !diff.IsZero() {
				deltas = append(deltas, contributionDelta(newRef, old.Kind, diff, diff.IsNegative()))
			}
		} else {
			deltas = append(deltas,
				contributionDelta(oldRef, old.Kind, old.Amount.Neg(), true),
				contributionDelta(newRef, old.Kind, draft.Amount, false),
			)
		}

		draft.CreatedAt = old.CreatedAt
		draft.UpdatedAt = time.Now().UTC()
		saved, err := en.store.UpdateEntry(ctx, draft, deltas)
		if err != nil {
			unlock()
			return ledger.Entry{}, err
		}
		for _, d := range deltas {
			en.record(ctx, saved, "update", d)
		}
		unlock()
		return saved, nil
	}
}

// Delete removes an entry and applies the inverse of its original
// contribution to its aggregate, derived from the stored entry rather than
// any caller-supplied account key. Due reversals clamp the customer balances
// at zero.
func (en *Engine) Delete(ctx context.Context, id uuid.UUID) (ledger.Entry, error) {
	old, unlock, err := en.lockEntry(ctx, id)
	if err != nil {
		return ledger.Entry{}, err
	}
	defer unlock()

	ref := old.AccountRef()
	d := contributionDelta(ref, old.Kind, old.Amount.Neg(), true)
	if err := en.store.DeleteEntry(ctx, id, []ledger.BalanceDelta{d}); err != nil {
		return ledger.Entry{}, err
	}
	en.record(ctx, old, "delete", d)
	return old, nil
}

// contributionDelta builds the balance delta for an entry of the given kind
// and signed magnitude. A negative magnitude reverses a prior contribution.
func contributionDelta(ref ledger.AccountRef, kind ledger.EntryKind, magnitude decimal.Decimal, clamp bool) ledger.BalanceDelta {
	d := ledger.BalanceDelta{
		Account: ref,
		Amount:  kind.Contribution(magnitude),
		Clamp:   clamp,
	}
	switch kind {
	case ledger.KindDueGive:
		d.Given = magnitude
	case ledger.KindDueTake:
		d.Taken = magnitude
	}
	return d
}

func (en *Engine) ensureAggregate(ctx context.Context, ref ledger.AccountRef) error {
	switch ref.Kind {
	case ledger.AggregateDue:
		_, err := en.store.GetDueCustomer(ctx, ref.CustomerID)
		return err
	default:
		_, err := en.store.MobileAccountByNumber(ctx, ref.Number)
		return err
	}
}

func (en *Engine) record(ctx context.Context, e ledger.Entry, op string, d ledger.BalanceDelta) {
	reconciliationsTotal.WithLabelValues(string(e.Kind), op).Inc()
	ev := events.Reconciled{
		EntryID:    e.ID.String(),
		Kind:       string(e.Kind),
		Op:         op,
		Account:    d.Account.Key(),
		Delta:      d.Amount.String(),
		OccurredAt: time.Now().UTC(),
	}
	if err := en.pub.Publish(ctx, ev); err != nil && en.log != nil {
		en.log.Warn("publish reconciled event failed", "entry_id", ev.EntryID, "err", err)
	}
}

// lock returns an unlock func after acquiring the per-key mutex.
func (en *Engine) lock(key string) func() {
	m := en.lockFor(key)
	m.Lock()
	return m.Unlock
}

// lockEntry acquires the per-key mutex for the entry's account and returns
// the entry as read under that lock. The key comes from an initial unlocked
// read and is re-checked after locking; if a concurrent update moved the
// entry to another account in between, the lock is released and the read
// retried.
func (en *Engine) lockEntry(ctx context.Context, id uuid.UUID) (ledger.Entry, func(), error) {
	for {
		e, err := en.store.GetEntry(ctx, id)
		if err != nil {
			return ledger.Entry{}, nil, err
		}
		key := e.AccountRef().Key()
		unlock := en.lock(key)
		e, err = en.store.GetEntry(ctx, id)
		if err != nil {
			unlock()
			return ledger.Entry{}, nil, err
		}
		if e.AccountRef().Key() != key {
			unlock()
			continue
		}
		return e, unlock, nil
	}
}

// lockAll locks the mutexes for the given keys in sorted order (deduped) to
// avoid deadlocks when an update spans two accounts.
func (en *Engine) lockAll(keys ...string) func() {
	uniq := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	sort.Strings(uniq)
	ms := make([]*sync.Mutex, len(uniq))
	for i, k := range uniq {
		ms[i] = en.lockFor(k)
		ms[i].Lock()
	}
	return func() {
		for i := len(ms) - 1; i >= 0; i-- {
			ms[i].Unlock()
		}
	}
}

func (en *Engine) lockFor(key string) *sync.Mutex {
	en.mapMu.Lock()
	defer en.mapMu.Unlock()
	m, ok := en.locks[key]
	if !ok {
		m = &sync.Mutex{}
		en.locks[key] = m
	}
	return m
}
