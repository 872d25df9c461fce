package depositplan

import "maps"

// Fulfillment is the cumulative amount applied to one-time plans, by plan ID.
//
// A Fulfillment value is never modified in place, With returns an updated copy.
type Fulfillment map[string]Amount

// Of returns the amount applied so far to the plan.
func (f Fulfillment) Of(planID string) Amount { return f[planID] }

// With returns a copy of f where 'applied' has been added to the plan's fulfillment.
func (f Fulfillment) With(planID string, applied Amount) Fulfillment {
	n := maps.Clone(f)
	if n == nil {
		n = make(Fulfillment, 1)
	}
	n[planID] = f[planID].Add(applied)
	return n
}

// remainingToFulfill returns how much of the plan target is still available.
// Monthly plans have no cumulative ceiling, their whole target is always available.
func remainingToFulfill(plan DepositPlan, f Fulfillment) Amount {
	if plan.Type != OneTime {
		return plan.TotalAmount
	}
	return MaxAmount(Amount{}, plan.TotalAmount.Sub(f.Of(plan.ID)))
}

// isEligible reports whether the plan can consume (part of) the remaining deposit amount.
// A plan with a zero total is never eligible, it would be a division by zero.
func isEligible(plan DepositPlan, remaining Amount, desired PlanType) bool {
	return plan.IsActive &&
		plan.Type == desired &&
		remaining.IsPositive() &&
		plan.TotalAmount.IsPositive()
}

// isFulfilled reports whether a one-time plan has reached its target.
func isFulfilled(plan DepositPlan, f Fulfillment) bool {
	return f.Of(plan.ID).GreaterThanOrEqual(plan.TotalAmount)
}
