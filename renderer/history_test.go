package renderer

import (
	"strings"
	"testing"
	"time"

	"github.com/etnz/depositplan"
	"github.com/etnz/depositplan/store"
)

func TestRunsMarkdown(t *testing.T) {
	runs := []store.Run{
		{ID: "run-2", CreatedAt: time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC), Deposits: 3, Total: depositplan.A(10700)},
		{ID: "run-1", CreatedAt: time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC), Deposits: 2, Total: depositplan.A(10600)},
	}
	got := RunsMarkdown(runs, "USD")

	for _, want := range []string{"# Allocation History", "run-2", "2025-05-01 08:00", "$10,700.00"} {
		if !strings.Contains(got, want) {
			t.Errorf("RunsMarkdown() does not contain %q:\n%s", want, got)
		}
	}

	if got := RunsMarkdown(nil, ""); !strings.Contains(got, "No allocation run saved yet.") {
		t.Errorf("RunsMarkdown(nil) = %q", got)
	}
}

func TestRunMarkdown(t *testing.T) {
	allocations := []depositplan.PortfolioAllocation{
		{PortfolioID: "p1", Amount: depositplan.A(10000)},
		{PortfolioID: "p2", Amount: depositplan.A(600)},
	}
	got := RunMarkdown(testBook(), "run-1", allocations)

	for _, want := range []string{"# Allocation Run run-1", "High risk", "$10,600.00", "94.34%"} {
		if !strings.Contains(got, want) {
			t.Errorf("RunMarkdown() does not contain %q:\n%s", want, got)
		}
	}
}
