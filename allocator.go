package depositplan

import (
	"maps"

	"github.com/rs/zerolog"
)

// Step records how a single deposit went through the waterfall.
type Step struct {
	DepositID string `json:"depositId"`
	Amount    Amount `json:"amount"`
	// OneTime is the part applied to the one-time plan target.
	OneTime Amount `json:"oneTime"`
	// Monthly is the part distributed with the monthly plan weights.
	Monthly Amount `json:"monthly"`
	// Fallback is the leftover distributed with the one-time plan weights.
	Fallback Amount `json:"fallback"`
	// Dropped is the leftover no plan could absorb.
	Dropped Amount `json:"dropped"`
	// Fulfilled is true if this deposit completed the one-time plan.
	Fulfilled bool `json:"fulfilled,omitempty"`
}

// Result is the outcome of an allocation run.
type Result struct {
	Allocations []PortfolioAllocation `json:"allocations"`
	Steps       []Step                `json:"steps,omitempty"`
	Fulfillment Fulfillment           `json:"fulfillment,omitempty"`
	// EqualSplit is true when all plan weights were zero and deposits were split equally.
	EqualSplit bool `json:"equalSplit,omitempty"`
}

// Allocator runs the allocation waterfall. Its zero value is not usable, use NewAllocator.
//
// An Allocator holds no state between runs, it is safe for concurrent use.
type Allocator struct {
	log zerolog.Logger
}

// NewAllocator returns an allocator tracing every step on 'log' at debug level.
func NewAllocator(log zerolog.Logger) *Allocator {
	return &Allocator{log: log.With().Str("component", "allocator").Logger()}
}

// Allocate distributes deposits, in the given order, across portfolios according to the plans.
// It returns one allocation per portfolio, in the portfolios order.
//
// Plans are never modified.
func Allocate(portfolios []Portfolio, plans []DepositPlan, deposits []Deposit) []PortfolioAllocation {
	return NewAllocator(zerolog.Nop()).Run(portfolios, plans, deposits).Allocations
}

// waterfall is the immutable snapshot of the plans used during a run.
type waterfall struct {
	oneTime *DepositPlan // first active one-time plan, if any
	monthly *DepositPlan // first active monthly plan, if any
	// hasMonthly is set when the book has a monthly plan, active or not.
	hasMonthly bool
	// fallback provides the weights for leftovers when there is no monthly plan.
	fallback *DepositPlan
}

// state is threaded from one deposit to the next.
type state struct {
	acc         accumulator
	fulfillment Fulfillment
	inactive    map[string]bool // plans deactivated during the run
}

// view returns the plan as seen in this state, i.e. with its current active flag.
func (s state) view(plan DepositPlan) DepositPlan {
	if s.inactive[plan.ID] {
		plan.IsActive = false
	}
	return plan
}

// Run is like Allocate but also returns the per-deposit trace.
func (a *Allocator) Run(portfolios []Portfolio, plans []DepositPlan, deposits []Deposit) Result {
	if allWeightsZero(plans) {
		a.log.Debug().Int("plans", len(plans)).Msg("all plan weights are zero, splitting deposits equally")
		return Result{
			Allocations: equalSplit(portfolios, TotalDeposited(deposits)),
			EqualSplit:  true,
		}
	}

	w := newWaterfall(plans)
	s := state{
		acc:         newAccumulator(portfolios),
		fulfillment: Fulfillment{},
	}
	if w.oneTime != nil {
		s.fulfillment = s.fulfillment.With(w.oneTime.ID, Amount{})
	}

	steps := make([]Step, 0, len(deposits))
	for _, d := range deposits {
		var step Step
		s, step = w.step(s, d)
		a.log.Debug().
			Str("deposit", step.DepositID).
			Stringer("amount", step.Amount).
			Stringer("oneTime", step.OneTime).
			Stringer("monthly", step.Monthly).
			Stringer("fallback", step.Fallback).
			Stringer("dropped", step.Dropped).
			Bool("fulfilled", step.Fulfilled).
			Msg("deposit allocated")
		steps = append(steps, step)
	}

	return Result{
		Allocations: s.acc.allocations(portfolios),
		Steps:       steps,
		Fulfillment: s.fulfillment,
	}
}

func newWaterfall(plans []DepositPlan) waterfall {
	var w waterfall
	for i := range plans {
		p := plans[i].Clone()
		if p.Type == Monthly {
			w.hasMonthly = true
		}
		switch {
		case p.Type == OneTime && p.IsActive && w.oneTime == nil:
			w.oneTime = &p
		case p.Type == Monthly && p.IsActive && w.monthly == nil:
			w.monthly = &p
		case p.Type == OneTime && w.fallback == nil:
			w.fallback = &p
		}
	}
	if w.oneTime != nil {
		w.fallback = w.oneTime
	}
	return w
}

// step runs a single deposit through the waterfall and returns the next state.
// 's' is left untouched.
func (w waterfall) step(s state, d Deposit) (state, Step) {
	remaining := d.Amount
	step := Step{DepositID: d.ID, Amount: d.Amount}

	// Priority 1: one-time plan, up to its remaining target.
	if w.oneTime != nil {
		plan := s.view(*w.oneTime)
		if isEligible(plan, remaining, OneTime) {
			apply := MinAmount(remaining, remainingToFulfill(plan, s.fulfillment))
			s.acc = s.acc.distribute(plan.Allocations, apply, plan.TotalAmount)
			s.fulfillment = s.fulfillment.With(plan.ID, apply)
			remaining = remaining.Sub(apply)
			step.OneTime = apply
			if isFulfilled(plan, s.fulfillment) {
				// one way: the plan is never eligible again in this run.
				inactive := maps.Clone(s.inactive)
				if inactive == nil {
					inactive = make(map[string]bool, 1)
				}
				inactive[plan.ID] = true
				s.inactive = inactive
				step.Fulfilled = true
			}
		}
	}

	// Priority 2: monthly plan takes all that is left, its weights are only a ratio basis.
	if w.monthly != nil {
		plan := s.view(*w.monthly)
		if isEligible(plan, remaining, Monthly) {
			s.acc = s.acc.distribute(plan.Allocations, remaining, plan.TotalAmount)
			step.Monthly = remaining
			remaining = Amount{}
		}
	}

	// Priority 3: no monthly plan at all, leftovers follow the one-time plan weights.
	// An inactive monthly plan still blocks this step.
	if !w.hasMonthly && remaining.IsPositive() && w.fallback != nil {
		if weights := w.fallback.Weights(); weights.IsPositive() {
			s.acc = s.acc.distribute(w.fallback.Allocations, remaining, weights)
			step.Fallback = remaining
			remaining = Amount{}
		}
	}

	if remaining.IsPositive() {
		step.Dropped = remaining
	}
	return s, step
}

// allWeightsZero reports whether no plan carries any weight at all.
func allWeightsZero(plans []DepositPlan) bool {
	for _, p := range plans {
		if p.hasWeight() {
			return false
		}
	}
	return true
}

// equalSplit divides total equally across portfolios, without rounding.
func equalSplit(portfolios []Portfolio, total Amount) []PortfolioAllocation {
	res := make([]PortfolioAllocation, len(portfolios))
	if len(portfolios) == 0 {
		return res
	}
	share := total.DivInt(len(portfolios))
	for i, p := range portfolios {
		res[i] = PortfolioAllocation{PortfolioID: p.ID, Amount: share}
	}
	return res
}
