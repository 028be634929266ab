package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bebsa/ledger/internal/errs"
)

func TestPaginate(t *testing.T) {
	cases := []struct {
		name       string
		page       Page
		total      int
		wantPages  int
		wantNumber int
	}{
		{"first of three", NewPage(1, 10), 25, 3, 1},
		{"exact fit", NewPage(2, 10), 20, 2, 2},
		{"empty set", NewPage(1, 10), 0, 0, 1},
		{"unpaged", All, 25, 1, 1},
		{"clamped input", NewPage(0, -5), 25, 3, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pg := Paginate(tc.page, tc.total)
			if pg.TotalPages != tc.wantPages {
				t.Fatalf("totalPages = %d, want %d", pg.TotalPages, tc.wantPages)
			}
			if pg.CurrentPage != tc.wantNumber {
				t.Fatalf("currentPage = %d, want %d", pg.CurrentPage, tc.wantNumber)
			}
			if pg.TotalCount != tc.total {
				t.Fatalf("totalCount = %d, want %d", pg.TotalCount, tc.total)
			}
		})
	}
}

func TestPageSlice(t *testing.T) {
	p := NewPage(3, 10)
	lo, hi := p.Slice(25)
	if lo != 20 || hi != 25 {
		t.Fatalf("slice = [%d, %d), want [20, 25)", lo, hi)
	}
	lo, hi = NewPage(5, 10).Slice(25)
	if lo != hi {
		t.Fatalf("past-the-end page should be empty, got [%d, %d)", lo, hi)
	}
	lo, hi = All.Slice(25)
	if lo != 0 || hi != 25 {
		t.Fatalf("unpaged slice = [%d, %d), want [0, 25)", lo, hi)
	}
}

func TestDateRange(t *testing.T) {
	start, end, err := DateRange("2024-03-01", "2024-03-02")
	if err != nil {
		t.Fatalf("date range: %v", err)
	}
	if start.Hour() != 0 || start.Day() != 1 {
		t.Fatalf("start = %v, want midnight on the 1st", start)
	}
	if end.Hour() != 23 || end.Minute() != 59 || end.Day() != 2 {
		t.Fatalf("end = %v, want end of day on the 2nd", end)
	}

	// A range only applies when both ends are present.
	if start, end, err = DateRange("", ""); err != nil || !start.IsZero() || !end.IsZero() {
		t.Fatalf("empty range: %v %v %v, want unbounded", start, end, err)
	}
	if start, end, err = DateRange("2024-03-01", ""); err != nil || !start.IsZero() || !end.IsZero() {
		t.Fatalf("half-open range: %v %v %v, want unbounded", start, end, err)
	}

	if _, _, err = DateRange("01/03/2024", "02/03/2024"); !errors.Is(err, errs.ErrInvalid) {
		t.Fatalf("bad format: err = %v, want ErrInvalid", err)
	}
}

func TestDayBounds(t *testing.T) {
	now := time.Date(2024, 3, 15, 13, 45, 0, 0, time.UTC)
	start, end := DayBounds(now)
	if start.Hour() != 0 || start.Day() != 15 {
		t.Fatalf("start = %v", start)
	}
	if end.Hour() != 23 || end.Day() != 15 {
		t.Fatalf("end = %v", end)
	}
}

func TestContribution(t *testing.T) {
	amount := decimal.RequireFromString("100")
	for kind, want := range map[EntryKind]string{
		KindCredit:  "100",
		KindDueGive: "100",
		KindDebit:   "-100",
		KindDueTake: "-100",
	} {
		if got := kind.Contribution(amount); got.String() != want {
			t.Fatalf("%s contribution = %s, want %s", kind, got, want)
		}
	}
}
