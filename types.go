package depositplan

import (
	"fmt"
	"slices"
	"time"
)

// Portfolio is a destination for deposited cash.
type Portfolio struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// PlanType tells how a deposit plan consumes deposits over time.
type PlanType string

const (
	// OneTime plans have a lifetime target and deactivate once it is reached.
	OneTime PlanType = "one-time"
	// Monthly plans have no ceiling, their target is available for every deposit.
	Monthly PlanType = "monthly"
)

// ParsePlanType parses the textual representation of a plan type.
func ParsePlanType(s string) (PlanType, error) {
	switch t := PlanType(s); t {
	case OneTime, Monthly:
		return t, nil
	}
	return "", fmt.Errorf("unknown plan type %q, expected %q or %q", s, OneTime, Monthly)
}

// Valid reports whether t is a known plan type.
func (t PlanType) Valid() bool { return t == OneTime || t == Monthly }

// AllocationItem is the weight of a single portfolio inside a plan.
type AllocationItem struct {
	PortfolioID string `json:"portfolioId" yaml:"portfolioId"`
	Amount      Amount `json:"amount" yaml:"amount"`
}

// DepositPlan is a standing rule to distribute deposits across portfolios.
//
// Allocations are relative weights. TotalAmount is the denominator used to
// compute a plan ratio, and for one-time plans, the amount at which the plan
// is fulfilled.
type DepositPlan struct {
	ID          string           `json:"id" yaml:"id"`
	Type        PlanType         `json:"type" yaml:"type"`
	Allocations []AllocationItem `json:"allocations" yaml:"allocations"`
	IsActive    bool             `json:"isActive" yaml:"isActive"`
	TotalAmount Amount           `json:"totalAmount" yaml:"totalAmount"`
	// Schedule is an optional cron expression giving the due dates of a monthly plan.
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// Clone returns a deep copy of the plan.
func (p DepositPlan) Clone() DepositPlan {
	p.Allocations = slices.Clone(p.Allocations)
	return p
}

// Weights returns the sum of all allocation weights.
func (p DepositPlan) Weights() Amount {
	var total Amount
	for _, a := range p.Allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// hasWeight reports whether at least one allocation is not zero.
func (p DepositPlan) hasWeight() bool {
	for _, a := range p.Allocations {
		if !a.Amount.IsZero() {
			return true
		}
	}
	return false
}

// Deposit is a cash inflow to be allocated.
type Deposit struct {
	ID            string    `json:"id"`
	Amount        Amount    `json:"amount"`
	ReferenceCode string    `json:"reference,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewDeposit is a convenience constructor.
func NewDeposit(id string, amount Amount, ref string, on time.Time) Deposit {
	return Deposit{ID: id, Amount: amount, ReferenceCode: ref, Timestamp: on}
}

// PortfolioAllocation is the cumulative amount a portfolio receives.
type PortfolioAllocation struct {
	PortfolioID string `json:"portfolioId"`
	Amount      Amount `json:"amount"`
}

// TotalDeposited sums the amount of all deposits.
func TotalDeposited(deposits []Deposit) Amount {
	var total Amount
	for _, d := range deposits {
		total = total.Add(d.Amount)
	}
	return total
}

// TotalAllocated sums the amount of all allocations.
func TotalAllocated(allocations []PortfolioAllocation) Amount {
	var total Amount
	for _, a := range allocations {
		total = total.Add(a.Amount)
	}
	return total
}

// SortDeposits sorts deposits chronologically, keeping the input order of
// deposits sharing the same timestamp.
func SortDeposits(deposits []Deposit) {
	slices.SortStableFunc(deposits, func(a, b Deposit) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
}
