package depositplan

import (
	"errors"
	"fmt"
)

// The allocation engine never fails, inputs are expected to be checked with
// Validate before. These errors are the reasons a book or deposits are rejected.
var (
	ErrDuplicateID        = errors.New("duplicate id")
	ErrUnknownPortfolio   = errors.New("unknown portfolio")
	ErrUnknownPlanType    = errors.New("unknown plan type")
	ErrNegativeAmount     = errors.New("negative amount")
	ErrNonPositiveDeposit = errors.New("deposit amount must be positive")
	ErrMissingID          = errors.New("missing id")
	ErrScheduleNotMonthly = errors.New("only monthly plans can have a schedule")
	ErrInvalidSchedule    = errors.New("invalid schedule")
)

// Warnings are anomalies the engine tolerates but that are likely to be mistakes.
type Warnings []string

func (w *Warnings) add(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

// Validate checks the book and the deposits, and returns all failures joined
// in a single error. Tolerated anomalies are reported as warnings.
func Validate(b *Book, deposits []Deposit) (Warnings, error) {
	var warnings Warnings
	var errs []error

	portfolios := make(map[string]bool, len(b.Portfolios))
	for _, p := range b.Portfolios {
		if p.ID == "" {
			errs = append(errs, fmt.Errorf("portfolio %q: %w", p.Name, ErrMissingID))
			continue
		}
		if portfolios[p.ID] {
			errs = append(errs, fmt.Errorf("portfolio %q: %w", p.ID, ErrDuplicateID))
		}
		portfolios[p.ID] = true
	}

	plans := make(map[string]bool, len(b.Plans))
	active := make(map[PlanType]string)
	for _, p := range b.Plans {
		errs = append(errs, validatePlan(p, portfolios, &warnings)...)
		if p.ID != "" && plans[p.ID] {
			errs = append(errs, fmt.Errorf("plan %q: %w", p.ID, ErrDuplicateID))
		}
		plans[p.ID] = true

		if !p.IsActive {
			continue
		}
		if first, exists := active[p.Type]; exists {
			warnings.add("plan %q: %s plan %q is already active, %q will be ignored", p.ID, p.Type, first, p.ID)
			continue
		}
		active[p.Type] = p.ID
	}

	ids := make(map[string]bool, len(deposits))
	for i, d := range deposits {
		name := d.ID
		if name == "" {
			name = fmt.Sprintf("#%d", i+1)
		}
		if !d.Amount.IsPositive() {
			errs = append(errs, fmt.Errorf("deposit %q: %w: %v", name, ErrNonPositiveDeposit, d.Amount))
		}
		if d.ID != "" && ids[d.ID] {
			errs = append(errs, fmt.Errorf("deposit %q: %w", d.ID, ErrDuplicateID))
		}
		ids[d.ID] = true
		if i > 0 && d.Timestamp.Before(deposits[i-1].Timestamp) {
			warnings.add("deposit %q: is older than the previous deposit %q, deposits are allocated in file order", name, deposits[i-1].ID)
		}
	}

	return warnings, errors.Join(errs...)
}

func validatePlan(p DepositPlan, portfolios map[string]bool, warnings *Warnings) (errs []error) {
	if p.ID == "" {
		errs = append(errs, fmt.Errorf("plan: %w", ErrMissingID))
	}
	if !p.Type.Valid() {
		errs = append(errs, fmt.Errorf("plan %q: %w %q", p.ID, ErrUnknownPlanType, p.Type))
	}
	if p.TotalAmount.IsNegative() {
		errs = append(errs, fmt.Errorf("plan %q: total: %w: %v", p.ID, ErrNegativeAmount, p.TotalAmount))
	}
	for _, a := range p.Allocations {
		if !portfolios[a.PortfolioID] {
			errs = append(errs, fmt.Errorf("plan %q: %w %q", p.ID, ErrUnknownPortfolio, a.PortfolioID))
		}
		if a.Amount.IsNegative() {
			errs = append(errs, fmt.Errorf("plan %q: portfolio %q: %w: %v", p.ID, a.PortfolioID, ErrNegativeAmount, a.Amount))
		}
	}
	if p.Schedule != "" {
		if p.Type != Monthly {
			errs = append(errs, fmt.Errorf("plan %q: %w", p.ID, ErrScheduleNotMonthly))
		} else if _, err := ParseSchedule(p.Schedule); err != nil {
			errs = append(errs, fmt.Errorf("plan %q: %w: %w", p.ID, ErrInvalidSchedule, err))
		}
	}

	if weights := p.Weights(); !weights.Equal(p.TotalAmount) {
		warnings.add("plan %q: weights add up to %v but the total is %v, the total is used as the denominator", p.ID, weights, p.TotalAmount)
	}
	if p.IsActive && p.TotalAmount.IsZero() && p.hasWeight() {
		warnings.add("plan %q: total is zero, the plan will never be used", p.ID)
	}
	return errs
}
