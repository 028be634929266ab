package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryKind tags a ledger entry with the variant that determines the sign of
// its contribution to the associated running balance.
type EntryKind string

const (
	// KindCredit records money received into a mobile account.
	KindCredit EntryKind = "credit"
	// KindDebit records money paid out of a mobile account.
	KindDebit EntryKind = "debit"
	// KindDueGive records money the shop gave to a due customer.
	KindDueGive EntryKind = "due_give"
	// KindDueTake records money a due customer paid back.
	KindDueTake EntryKind = "due_take"
)

// Valid reports whether k is one of the four entry kinds.
func (k EntryKind) Valid() bool {
	switch k {
	case KindCredit, KindDebit, KindDueGive, KindDueTake:
		return true
	}
	return false
}

// Sign returns +1 for kinds that increase their aggregate and -1 for kinds
// that decrease it.
func (k EntryKind) Sign() int {
	switch k {
	case KindCredit, KindDueGive:
		return 1
	default:
		return -1
	}
}

// Contribution returns the signed amount an entry of kind k with the given
// magnitude adds to its aggregate's running balance.
func (k EntryKind) Contribution(amount decimal.Decimal) decimal.Decimal {
	if k.Sign() < 0 {
		return amount.Neg()
	}
	return amount
}

// AggregateKind selects which family of running balances an entry posts to.
type AggregateKind string

const (
	// AggregateMobile is a company+number mobile-money account balance.
	AggregateMobile AggregateKind = "mobile"
	// AggregateDue is a per-customer due balance.
	AggregateDue AggregateKind = "due"
)

// AccountRef identifies the aggregate an entry posts against: a mobile
// account number for credit/debit entries, a due customer for give/take.
type AccountRef struct {
	Kind       AggregateKind
	Number     string
	CustomerID uuid.UUID
}

// Key returns a comparable string form of the reference, used for
// per-account serialization of balance mutations.
func (r AccountRef) Key() string {
	if r.Kind == AggregateDue {
		return string(r.Kind) + ":" + r.CustomerID.String()
	}
	return string(r.Kind) + ":" + r.Number
}

// Entry is one recorded financial event. Credit, debit and due give/take
// entries share this shape; Kind selects which fields are meaningful.
// Kind and the account reference are immutable outside the reconciliation
// engine once the entry is persisted.
type Entry struct {
	ID   uuid.UUID
	Kind EntryKind

	// Credit/debit fields.
	Company        string
	AccountNumber  string // mobile account the entry posts against
	CustomerName   string
	CustomerNumber string

	// Due fields.
	CustomerID uuid.UUID
	// Balance is the due balance snapshot recorded at entry time.
	Balance decimal.Decimal

	Amount    decimal.Decimal
	Remarks   string
	EntryBy   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// AccountRef returns the aggregate reference this entry posts against.
func (e Entry) AccountRef() AccountRef {
	if e.Kind == KindDueGive || e.Kind == KindDueTake {
		return AccountRef{Kind: AggregateDue, CustomerID: e.CustomerID}
	}
	return AccountRef{Kind: AggregateMobile, Number: e.AccountNumber}
}

// BalanceDelta is one signed adjustment to an aggregate, produced by the
// reconciliation engine and applied by the store in the same transaction as
// the entry write.
type BalanceDelta struct {
	Account AccountRef
	Amount  decimal.Decimal
	// Given/Taken adjust the due-customer running counters; zero for
	// mobile-account deltas.
	Given decimal.Decimal
	Taken decimal.Decimal
	// Clamp floors the resulting due balances at zero. Set on reversal
	// deltas (deletes, downward updates) only.
	Clamp bool
}

// MobileAccount is the denormalized running balance for one company+number
// pair. It is created explicitly and never deleted by entry mutations.
type MobileAccount struct {
	ID           uuid.UUID
	Company      string
	MobileNumber string
	TotalAmount  decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DueCustomer is the denormalized due-ledger balance for one customer.
type DueCustomer struct {
	ID           uuid.UUID
	CustomerName string
	MobileNumber string
	TotalGiven   decimal.Decimal
	TotalTaken   decimal.Decimal
	DueBalance   decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User is a login identity for the bookkeeping UI.
type User struct {
	ID           uuid.UUID
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}
