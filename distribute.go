package depositplan

import "slices"

// accumulator holds the running amount of every portfolio, in the portfolios input order.
//
// It is a value: add returns a new accumulator and leaves the receiver untouched.
type accumulator struct {
	index   map[string]int // portfolio ID to position in amounts
	amounts []Amount
}

func newAccumulator(portfolios []Portfolio) accumulator {
	acc := accumulator{
		index:   make(map[string]int, len(portfolios)),
		amounts: make([]Amount, len(portfolios)),
	}
	for i, p := range portfolios {
		if _, exists := acc.index[p.ID]; !exists {
			acc.index[p.ID] = i
		}
	}
	return acc
}

// distribute adds to each target portfolio its share of 'amount':
//
//	round2(weight × amount / denominator)
//
// When amount equals the denominator the raw weight is added instead, so that a
// deposit matching a plan exactly leaves no rounding residue.
// Allocations targeting an unknown portfolio are ignored.
// denominator must be positive.
func (acc accumulator) distribute(items []AllocationItem, amount, denominator Amount) accumulator {
	exact := amount.Equal(denominator)
	next := accumulator{index: acc.index, amounts: slices.Clone(acc.amounts)}
	for _, item := range items {
		i, ok := next.index[item.PortfolioID]
		if !ok {
			continue
		}
		share := item.Amount
		if !exact {
			share = item.Amount.Mul(amount).Div(denominator).Round2()
		}
		next.amounts[i] = next.amounts[i].Add(share).Round2()
	}
	return next
}

// allocations returns the accumulated amounts as the engine output.
func (acc accumulator) allocations(portfolios []Portfolio) []PortfolioAllocation {
	res := make([]PortfolioAllocation, len(portfolios))
	for i, p := range portfolios {
		res[i] = PortfolioAllocation{PortfolioID: p.ID, Amount: acc.amounts[i]}
	}
	return res
}
