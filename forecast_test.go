package depositplan

import (
	"testing"
	"time"
)

func TestDueDates(t *testing.T) {
	p := plan("dp2", Monthly, true, 100, 0, 100)
	p.Schedule = "0 0 5 * *"

	got, err := DueDates(p, day, 3)
	if err != nil {
		t.Fatalf("DueDates() failed: %v", err)
	}
	want := []time.Time{
		time.Date(2025, time.May, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.June, 5, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.July, 5, 0, 0, 0, 0, time.UTC),
	}
	for i, w := range want {
		if !got[i].Equal(w) {
			t.Errorf("due date %d = %v, want %v", i, got[i], w)
		}
	}
}

func TestDueDates_DefaultSchedule(t *testing.T) {
	p := plan("dp2", Monthly, true, 100, 0, 100)
	got, err := DueDates(p, day, 1)
	if err != nil {
		t.Fatalf("DueDates() failed: %v", err)
	}
	if want := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC); !got[0].Equal(want) {
		t.Errorf("due date = %v, want %v", got[0], want)
	}
}

func TestDueDates_OneTime(t *testing.T) {
	if _, err := DueDates(plan("dp1", OneTime, true, 100, 100), day, 1); err == nil {
		t.Error("DueDates() expected an error for a one-time plan")
	}
}

func TestDueDates_NegativeCount(t *testing.T) {
	if _, err := DueDates(plan("dp2", Monthly, true, 100, 0, 100), day, -1); err == nil {
		t.Error("DueDates() expected an error for a negative count")
	}
}

func TestBook_Forecast(t *testing.T) {
	b := standardBook()
	res, projected, err := b.Forecast(deposits(10500), day, 3)
	if err != nil {
		t.Fatalf("Forecast() failed: %v", err)
	}
	if len(projected) != 3 {
		t.Fatalf("got %d projected deposits, want 3", len(projected))
	}
	for _, d := range projected {
		if !d.Amount.Equal(A(100)) {
			t.Errorf("projected deposit %q = %v, want 100", d.ID, d.Amount)
		}
	}
	assertAllocations(t, res.Allocations, 10000, 800)
}

func TestBook_Forecast_NoMonthly(t *testing.T) {
	b := &Book{Portfolios: twoPortfolios(), Plans: standardPlans()[:1]}
	if _, _, err := b.Forecast(nil, day, 1); err == nil {
		t.Error("Forecast() expected an error without a monthly plan")
	}
}
