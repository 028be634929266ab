package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/bebsa/ledger/internal/errs"
)

// Sort fields accepted by entry listings.
const (
	SortByCreatedAt = "createdAt"
	SortByAmount    = "amount"
)

// EntryFilter narrows an entry listing. Zero values mean "no constraint".
type EntryFilter struct {
	Kinds   []EntryKind
	EntryBy string
	Company string
	// NumberSearch is a case-insensitive substring match on the
	// customer number.
	NumberSearch string
	// AccountNumber matches the mobile account an entry posts against.
	AccountNumber string
	CustomerID    uuid.UUID
	// Start/End bound CreatedAt inclusively; zero times are unbounded.
	Start time.Time
	End   time.Time
}

// HasKind reports whether k passes the filter's kind set.
func (f EntryFilter) HasKind(k EntryKind) bool {
	if len(f.Kinds) == 0 {
		return true
	}
	for _, want := range f.Kinds {
		if want == k {
			return true
		}
	}
	return false
}

// AccountFilter narrows a mobile-account listing.
type AccountFilter struct {
	Company string
	// Search is a case-insensitive substring match on company or number.
	Search string
	Start  time.Time
	End    time.Time
}

// CustomerFilter narrows a due-customer listing.
type CustomerFilter struct {
	// Search is a case-insensitive substring match on name or number.
	Search string
}

// Sort orders a listing. Field defaults to CreatedAt descending.
type Sort struct {
	Field string
	Desc  bool
}

// DefaultSort is newest-first by creation time.
func DefaultSort() Sort { return Sort{Field: SortByCreatedAt, Desc: true} }

// Page selects one page of a listing. Limit <= 0 means "everything".
type Page struct {
	Number int
	Limit  int
}

// All is the unpaginated page used by the report endpoints.
var All = Page{Number: 1, Limit: 0}

// NewPage clamps raw page/limit values to the listing defaults (1, 10).
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = 10
	}
	return Page{Number: number, Limit: limit}
}

// Pagination describes the full result set a page was cut from.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalCount  int `json:"totalCount"`
	Limit       int `json:"limit"`
}

// Paginate computes the metadata for a total of n rows under p.
func Paginate(p Page, n int) Pagination {
	pg := Pagination{CurrentPage: p.Number, TotalCount: n, Limit: p.Limit}
	if p.Limit > 0 {
		pg.TotalPages = (n + p.Limit - 1) / p.Limit
	} else if n > 0 {
		pg.TotalPages = 1
	}
	return pg
}

// DayBounds returns [00:00:00, 23:59:59.999] of t's day.
func DayBounds(t time.Time) (time.Time, time.Time) {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	end := time.Date(y, m, d, 23, 59, 59, 999e6, t.Location())
	return start, end
}

// DateRange parses an optional inclusive [startDate, endDate] pair in
// YYYY-MM-DD form, widened to cover the full days. Both must be present for
// the range to apply.
func DateRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, nil
	}
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return time.Time{}, time.Time{}, &errs.Validation{Msg: "Invalid startDate", Fields: []string{"startDate"}}
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return time.Time{}, time.Time{}, &errs.Validation{Msg: "Invalid endDate", Fields: []string{"endDate"}}
	}
	lo, _ := DayBounds(start)
	_, hi := DayBounds(end)
	return lo, hi, nil
}

// Slice returns the window [lo, hi) of an n-row set selected by p.
func (p Page) Slice(n int) (lo, hi int) {
	if p.Limit <= 0 {
		return 0, n
	}
	lo = (p.Number - 1) * p.Limit
	if lo > n {
		lo = n
	}
	hi = lo + p.Limit
	if hi > n {
		hi = n
	}
	return lo, hi
}
