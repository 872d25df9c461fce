package depositplan

import "testing"

func TestAccumulator_Distribute(t *testing.T) {
	items := []AllocationItem{
		{PortfolioID: "p1", Amount: A(10000)},
		{PortfolioID: "p2", Amount: A(500)},
	}

	testCases := []struct {
		name        string
		amount      float64
		denominator float64
		want        []float64
	}{
		{"proportional share is rounded half-up", 100, 10500, []float64{95.24, 4.76}},
		{"half a cent rounds up", 0.105, 10500, []float64{0.1, 0.01}},
		{"ratio of one passes raw weights", 10500, 10500, []float64{10000, 500}},
		{"more than the denominator", 21000, 10500, []float64{20000, 1000}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			acc := newAccumulator(twoPortfolios())
			got := acc.distribute(items, A(tc.amount), A(tc.denominator))
			assertAllocations(t, got.allocations(twoPortfolios()), tc.want...)
			// the receiver is a value and must stay untouched.
			assertAllocations(t, acc.allocations(twoPortfolios()), 0, 0)
		})
	}
}

func TestAccumulator_DuplicatePortfolio(t *testing.T) {
	portfolios := []Portfolio{{ID: "p1"}, {ID: "p1"}}
	acc := newAccumulator(portfolios).distribute([]AllocationItem{{PortfolioID: "p1", Amount: A(1)}}, A(1), A(1))
	assertAllocations(t, acc.allocations(portfolios), 1, 0)
}
