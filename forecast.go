package depositplan

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// defaultSchedule is used for monthly plans without an explicit schedule: midnight, first day of the month.
const defaultSchedule = "@monthly"

// ParseSchedule parses a monthly plan schedule. It accepts standard 5-field
// cron expressions ("0 0 1 * *") and descriptors ("@monthly").
func ParseSchedule(spec string) (cron.Schedule, error) {
	return cron.ParseStandard(spec)
}

// DueDates returns the next n dates the monthly plan expects a deposit, strictly after 'from'.
// Schedules are evaluated in the time zone of 'from' unless they set CRON_TZ.
func DueDates(plan DepositPlan, from time.Time, n int) ([]time.Time, error) {
	if plan.Type != Monthly {
		return nil, fmt.Errorf("plan %q: %w", plan.ID, ErrScheduleNotMonthly)
	}
	if n < 0 {
		return nil, fmt.Errorf("plan %q: invalid number of due dates %d", plan.ID, n)
	}
	spec := plan.Schedule
	if spec == "" {
		spec = defaultSchedule
	}
	if !strings.HasPrefix(spec, "TZ=") && !strings.HasPrefix(spec, "CRON_TZ=") {
		spec = "CRON_TZ=" + from.Location().String() + " " + spec
	}
	schedule, err := ParseSchedule(spec)
	if err != nil {
		return nil, fmt.Errorf("plan %q: %w: %w", plan.ID, ErrInvalidSchedule, err)
	}
	dates := make([]time.Time, 0, n)
	next := from
	for i := 0; i < n; i++ {
		next = schedule.Next(next)
		dates = append(dates, next)
	}
	return dates, nil
}

// ProjectDeposits returns n future deposits of the monthly plan total, one per due date after 'from'.
func ProjectDeposits(plan DepositPlan, from time.Time, n int) ([]Deposit, error) {
	dates, err := DueDates(plan, from, n)
	if err != nil {
		return nil, err
	}
	deposits := make([]Deposit, len(dates))
	for i, on := range dates {
		deposits[i] = NewDeposit(fmt.Sprintf("forecast-%s-%d", plan.ID, i+1), plan.TotalAmount, "forecast", on)
	}
	return deposits, nil
}

// Forecast appends n projected deposits of the first active monthly plan to
// the deposits, and allocates them all. Projection starts after the last
// deposit, or after 'now' when there are none.
func (b *Book) Forecast(deposits []Deposit, now time.Time, n int) (Result, []Deposit, error) {
	var monthly *DepositPlan
	for i := range b.Plans {
		if p := b.Plans[i]; p.Type == Monthly && p.IsActive {
			monthly = &b.Plans[i]
			break
		}
	}
	if monthly == nil {
		return Result{}, nil, fmt.Errorf("no active monthly plan to forecast")
	}

	from := now
	if len(deposits) > 0 {
		from = deposits[len(deposits)-1].Timestamp
	}
	projected, err := ProjectDeposits(*monthly, from, n)
	if err != nil {
		return Result{}, nil, err
	}
	all := append(append([]Deposit(nil), deposits...), projected...)
	return NewAllocator(zerolog.Nop()).Run(b.Portfolios, b.Plans, all), projected, nil
}
