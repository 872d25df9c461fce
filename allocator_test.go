package depositplan

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestAllocate(t *testing.T) {
	testCases := []struct {
		name     string
		plans    []DepositPlan
		deposits []Deposit
		want     []float64
	}{
		{
			name:     "deposits match plans exactly",
			plans:    standardPlans(),
			deposits: deposits(10500, 100),
			want:     []float64{10000, 600},
		},
		{
			name:     "one-time plan comes first",
			plans:    standardPlans(),
			deposits: deposits(100),
			want:     []float64{95.24, 4.76},
		},
		{
			name:     "partially fulfilled one-time plan stays active",
			plans:    standardPlans(),
			deposits: deposits(100, 100),
			want:     []float64{190.48, 9.52},
		},
		{
			name:     "one-time plan fulfilled over several deposits",
			plans:    standardPlans(),
			deposits: deposits(5250, 5250, 100),
			want:     []float64{10000, 600},
		},
		{
			name:     "overflow of the one-time plan goes to the monthly plan",
			plans:    standardPlans(),
			deposits: deposits(5250, 5350, 100),
			want:     []float64{10000, 700},
		},
		{
			name: "monthly weights are a ratio even if the total differs",
			plans: []DepositPlan{
				plan("dp1", OneTime, true, 10500, 10000, 500),
				plan("dp2", Monthly, true, 110, 10, 100),
			},
			deposits: deposits(5250, 5250, 80),
			want:     []float64{10007.27, 572.73},
		},
		{
			name:     "monthly plan absorbs every deposit once the one-time plan is done",
			plans:    standardPlans(),
			deposits: deposits(5250, 5250, 100, 50),
			want:     []float64{10000, 650},
		},
		{
			name:     "monthly plan is not capped by its total",
			plans:    standardPlans(),
			deposits: deposits(10500, 250),
			want:     []float64{10000, 750},
		},
		{
			name: "inactive plans are skipped",
			plans: []DepositPlan{
				plan("dp1", OneTime, false, 10500, 10000, 500),
				plan("dp2", Monthly, true, 100, 0, 100),
			},
			deposits: deposits(100),
			want:     []float64{0, 100},
		},
		{
			name: "all zero weights split deposits equally",
			plans: []DepositPlan{
				plan("dp1", OneTime, true, 0, 0, 0),
				plan("dp2", Monthly, true, 100, 0, 0),
			},
			deposits: deposits(5100, 5100),
			want:     []float64{5100, 5100},
		},
		{
			name: "equal split is not rounded",
			plans: []DepositPlan{
				plan("dp1", Monthly, true, 100, 0, 0),
			},
			deposits: deposits(0.01),
			want:     []float64{0.005, 0.005},
		},
		{
			name: "leftover follows one-time weights without a monthly plan",
			plans: []DepositPlan{
				plan("dp1", OneTime, true, 1000, 750, 250),
			},
			deposits: deposits(1000, 400),
			want:     []float64{1050, 350},
		},
		{
			name: "leftover follows inactive one-time weights without a monthly plan",
			plans: []DepositPlan{
				plan("dp1", OneTime, false, 1000, 750, 250),
			},
			deposits: deposits(400),
			want:     []float64{300, 100},
		},
		{
			name: "inactive monthly plan blocks the one-time fallback",
			plans: []DepositPlan{
				plan("dp1", OneTime, true, 1000, 750, 250),
				plan("dp2", Monthly, false, 100, 0, 100),
			},
			deposits: deposits(1400),
			want:     []float64{750, 250},
		},
		{
			name: "leftover is dropped without any plan to absorb it",
			plans: []DepositPlan{
				plan("dp2", Monthly, false, 100, 50, 50),
			},
			deposits: deposits(100),
			want:     []float64{0, 0},
		},
		{
			name: "zero total plan is never eligible",
			plans: []DepositPlan{
				plan("dp1", OneTime, true, 0, 10, 0),
				plan("dp2", Monthly, true, 100, 0, 100),
			},
			deposits: deposits(100),
			want:     []float64{0, 100},
		},
		{
			name: "first active plan of each type wins",
			plans: []DepositPlan{
				plan("dp0", OneTime, false, 100, 100, 0),
				plan("dp1", OneTime, true, 100, 0, 100),
				plan("dp2", OneTime, true, 100, 100, 0),
				plan("dp3", Monthly, true, 100, 100, 0),
				plan("dp4", Monthly, true, 100, 0, 100),
			},
			deposits: deposits(150),
			want:     []float64{50, 100},
		},
		{
			name: "unknown portfolios are ignored",
			plans: []DepositPlan{
				plan("dp1", Monthly, true, 100, 50, 0, 50),
			},
			deposits: deposits(100),
			want:     []float64{50, 0},
		},
		{
			name:     "no deposits",
			plans:    standardPlans(),
			deposits: nil,
			want:     []float64{0, 0},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := Allocate(twoPortfolios(), tc.plans, tc.deposits)
			assertAllocations(t, got, tc.want...)
		})
	}
}

func TestAllocate_DoesNotModifyPlans(t *testing.T) {
	plans := standardPlans()
	Allocate(twoPortfolios(), plans, deposits(10500, 100))

	for _, p := range plans {
		if !p.IsActive {
			t.Errorf("plan %q was deactivated in the caller's slice", p.ID)
		}
	}
	if !plans[0].Allocations[0].Amount.Equal(A(10000)) {
		t.Errorf("plan allocations were modified: %v", plans[0].Allocations)
	}
}

func TestAllocate_PortfolioOrder(t *testing.T) {
	portfolios := []Portfolio{{ID: "p2"}, {ID: "p1"}}
	got := Allocate(portfolios, standardPlans(), deposits(10500))

	if got[0].PortfolioID != "p2" || got[1].PortfolioID != "p1" {
		t.Fatalf("allocations are not in portfolios order: %v", got)
	}
	assertAllocations(t, got, 500, 10000)
}

func TestAllocate_NoPortfolios(t *testing.T) {
	if got := Allocate(nil, nil, deposits(100)); len(got) != 0 {
		t.Errorf("Allocate() = %v, want empty", got)
	}
}

func TestAllocator_Run(t *testing.T) {
	a := NewAllocator(zerolog.Nop())
	res := a.Run(twoPortfolios(), standardPlans(), deposits(5250, 5350, 100))

	if len(res.Steps) != 3 {
		t.Fatalf("got %d steps, want 3", len(res.Steps))
	}

	testCases := []struct {
		oneTime, monthly float64
		fulfilled        bool
	}{
		{5250, 0, false},
		{5250, 100, true},
		{0, 100, false},
	}
	for i, tc := range testCases {
		step := res.Steps[i]
		if !step.OneTime.Equal(A(tc.oneTime)) {
			t.Errorf("step %d: OneTime = %v, want %v", i, step.OneTime, tc.oneTime)
		}
		if !step.Monthly.Equal(A(tc.monthly)) {
			t.Errorf("step %d: Monthly = %v, want %v", i, step.Monthly, tc.monthly)
		}
		if step.Fulfilled != tc.fulfilled {
			t.Errorf("step %d: Fulfilled = %v, want %v", i, step.Fulfilled, tc.fulfilled)
		}
		if !step.Dropped.IsZero() || !step.Fallback.IsZero() {
			t.Errorf("step %d: unexpected fallback %v or dropped %v", i, step.Fallback, step.Dropped)
		}
	}

	if got := res.Fulfillment.Of("dp1"); !got.Equal(A(10500)) {
		t.Errorf("fulfillment = %v, want 10500", got)
	}
}

func TestAllocator_Run_Dropped(t *testing.T) {
	plans := []DepositPlan{plan("dp2", Monthly, false, 100, 50, 50)}
	res := NewAllocator(zerolog.Nop()).Run(twoPortfolios(), plans, deposits(100))

	if !res.Steps[0].Dropped.Equal(A(100)) {
		t.Errorf("Dropped = %v, want 100", res.Steps[0].Dropped)
	}
}

func TestAllocator_Run_InactiveMonthlyDrops(t *testing.T) {
	plans := []DepositPlan{
		plan("dp1", OneTime, true, 1000, 750, 250),
		plan("dp2", Monthly, false, 100, 0, 100),
	}
	res := NewAllocator(zerolog.Nop()).Run(twoPortfolios(), plans, deposits(1400))

	step := res.Steps[0]
	if !step.OneTime.Equal(A(1000)) || !step.Fallback.IsZero() || !step.Dropped.Equal(A(400)) {
		t.Errorf("step = one-time %v, fallback %v, dropped %v; want 1000, 0, 400", step.OneTime, step.Fallback, step.Dropped)
	}
}

func TestAllocator_Run_EqualSplit(t *testing.T) {
	res := NewAllocator(zerolog.Nop()).Run(twoPortfolios(), nil, deposits(10, 20))
	if !res.EqualSplit {
		t.Error("EqualSplit = false, want true")
	}
	assertAllocations(t, res.Allocations, 15, 15)
}

// TestAllocate_OneTimeIdempotent checks that a fulfilled one-time plan never
// receives anything again, whatever the number of deposits.
func TestAllocate_OneTimeIdempotent(t *testing.T) {
	plans := []DepositPlan{
		plan("dp1", OneTime, true, 1000, 1000, 0),
		plan("dp2", Monthly, true, 100, 0, 100),
	}
	ds := deposits(600, 600)
	for i := 0; i < 5; i++ {
		ds = append(ds, NewDeposit("x", A(37.5), "", day))
	}

	got := Allocate(twoPortfolios(), plans, ds)
	assertAllocations(t, got, 1000, 387.5)
}

// TestAllocate_Conservation checks that deposits fully absorbed by plans are
// conserved within the rounding tolerance of each line touched.
func TestAllocate_Conservation(t *testing.T) {
	plans := []DepositPlan{
		plan("dp1", OneTime, true, 3000, 1000, 1000, 1000),
		plan("dp2", Monthly, true, 300, 100, 100, 100),
	}
	portfolios := append(twoPortfolios(), Portfolio{ID: "p3"})
	ds := deposits(100, 333.33, 1000, 2000, 0.07, 77.77)

	got := Allocate(portfolios, plans, ds)

	// at most 2 plans × 3 lines touched per deposit, each off by at most half a cent.
	tolerance := A(0.005).MulInt(2 * 3 * len(ds))
	diff := TotalAllocated(got).Sub(TotalDeposited(ds)).Abs()
	if diff.GreaterThan(tolerance) {
		t.Errorf("allocated %v, deposited %v: diff %v > %v", TotalAllocated(got), TotalDeposited(ds), diff, tolerance)
	}
}

// TestAllocate_ExactFulfillmentHasNoResidue checks that deposits matching the
// one-time target exactly allocate the raw weights.
func TestAllocate_ExactFulfillmentHasNoResidue(t *testing.T) {
	plans := []DepositPlan{
		plan("dp1", OneTime, true, 100, 33.333, 66.667),
	}
	got := Allocate(twoPortfolios(), plans, deposits(100))

	if total := TotalAllocated(got); !total.Equal(A(100)) {
		t.Errorf("total = %v, want 100", total)
	}
}
