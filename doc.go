// Package depositplan allocates a chronological sequence of cash deposits
// across a fixed set of investment portfolios, according to standing deposit
// plans.
//
// A deposit plan gives each portfolio a weight, a target total amount and a
// type:
//   - One-time plans have a lifetime target. Deposits are applied to them
//     first, until the target is reached, then they deactivate.
//   - Monthly plans have no ceiling. Whatever is left of a deposit is
//     distributed with the monthly plan weights.
//
// Without a monthly plan, leftovers follow the one-time plan weights. When all
// plans only carry zero weights, deposits are split equally.
//
// Every proportional share is rounded half-up to the cent, except when a
// deposit exactly covers a plan target, in which case the plan weights are
// allocated as-is, so totals never drift.
//
// The allocation itself is a pure computation, see [Allocate]. The package
// also provides the collaborators around it: book files holding portfolios and
// plans (YAML or JSON), deposits journals (JSONL), validation, imports from
// bank exports and forecasts of monthly plans.
//
// This package serves as the foundational logic for the `dpa` command-line
// tool.
package depositplan
