package depositplan

import (
	"testing"
	"time"
)

// day is the date used by all test deposits, the engine does not look at it.
var day = time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)

// twoPortfolios is the standard set of portfolios used in tests.
func twoPortfolios() []Portfolio {
	return []Portfolio{
		{ID: "p1", Name: "High risk"},
		{ID: "p2", Name: "Retirement"},
	}
}

// plan is a helper to build a plan from float weights.
func plan(id string, typ PlanType, active bool, total float64, weights ...float64) DepositPlan {
	p := DepositPlan{ID: id, Type: typ, IsActive: active, TotalAmount: A(total)}
	for i, w := range weights {
		p.Allocations = append(p.Allocations, AllocationItem{PortfolioID: portfolioID(i), Amount: A(w)})
	}
	return p
}

func portfolioID(i int) string { return []string{"p1", "p2", "p3", "p4"}[i] }

// standardPlans returns a one-time plan of 10500 (10000/500) and a monthly plan of 100 (0/100).
func standardPlans() []DepositPlan {
	return []DepositPlan{
		plan("dp1", OneTime, true, 10500, 10000, 500),
		plan("dp2", Monthly, true, 100, 0, 100),
	}
}

// deposits is a helper to build a list of deposits from float amounts.
func deposits(amounts ...float64) []Deposit {
	res := make([]Deposit, len(amounts))
	for i, a := range amounts {
		res[i] = NewDeposit("d"+string(rune('1'+i)), A(a), "ref123", day)
	}
	return res
}

// assertAllocations checks allocations against expected amounts, in portfolio order.
func assertAllocations(t *testing.T, got []PortfolioAllocation, want ...float64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d allocations, want %d: %v", len(got), len(want), got)
	}
	for i, w := range want {
		if !got[i].Amount.Equal(A(w)) {
			t.Errorf("allocation[%d] (%s) = %v, want %v", i, got[i].PortfolioID, got[i].Amount, w)
		}
	}
}
