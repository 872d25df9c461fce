package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/depositplan"
	md "github.com/nao1215/markdown"
)

// AllocationMarkdown renders the result of an allocation run for the book.
func AllocationMarkdown(b *depositplan.Book, res depositplan.Result) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	total := depositplan.TotalAllocated(res.Allocations)

	doc.H1("Deposit Allocation")
	doc.PlainText(fmt.Sprintf("Total Allocated: %s", total.Format(b.Currency)))
	if res.EqualSplit {
		doc.PlainText("All plans have zero weights: deposits are split equally across portfolios.")
	}

	doc.H2("Portfolios")
	doc.Table(allocationTable(b, res.Allocations, total))

	if len(res.Steps) > 0 {
		doc.H2("Deposits")
		doc.Table(stepsTable(b, res.Steps))
	}

	if len(res.Fulfillment) > 0 {
		doc.H2("One-Time Plans")
		rows := make([][]string, 0, len(res.Fulfillment))
		for _, p := range b.Plans {
			applied, ok := res.Fulfillment[p.ID]
			if !ok {
				continue
			}
			rows = append(rows, []string{
				p.ID,
				applied.Format(b.Currency),
				p.TotalAmount.Format(b.Currency),
				percent(applied, p.TotalAmount),
			})
		}
		doc.Table(md.TableSet{
			Header: []string{"Plan", "Fulfilled", "Target", "Progress"},
			Rows:   rows,
		})
	}

	return doc.String()
}

// ForecastMarkdown renders an allocation including projected deposits of the monthly plan.
func ForecastMarkdown(b *depositplan.Book, res depositplan.Result, projected []depositplan.Deposit) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	total := depositplan.TotalAllocated(res.Allocations)

	doc.H1("Deposit Forecast")
	if len(projected) > 0 {
		last := projected[len(projected)-1]
		doc.PlainText(fmt.Sprintf("Projected %d monthly deposits until %s.", len(projected), last.Timestamp.Format("2006-01-02")))
	}
	doc.PlainText(fmt.Sprintf("Total Allocated: %s", total.Format(b.Currency)))

	doc.H2("Schedule")
	rows := make([][]string, len(projected))
	for i, d := range projected {
		rows[i] = []string{d.Timestamp.Format("2006-01-02"), d.Amount.Format(b.Currency)}
	}
	doc.Table(md.TableSet{Header: []string{"Date", "Amount"}, Rows: rows})

	doc.H2("Portfolios")
	doc.Table(allocationTable(b, res.Allocations, total))

	return doc.String()
}

func allocationTable(b *depositplan.Book, allocations []depositplan.PortfolioAllocation, total depositplan.Amount) md.TableSet {
	rows := make([][]string, len(allocations))
	for i, a := range allocations {
		rows[i] = []string{
			a.PortfolioID,
			b.PortfolioName(a.PortfolioID),
			a.Amount.Format(b.Currency),
			percent(a.Amount, total),
		}
	}
	return md.TableSet{
		Header: []string{"Portfolio", "Name", "Amount", "Share"},
		Rows:   rows,
	}
}

func stepsTable(b *depositplan.Book, steps []depositplan.Step) md.TableSet {
	rows := make([][]string, len(steps))
	for i, s := range steps {
		note := ""
		if s.Fulfilled {
			note = "one-time plan fulfilled"
		}
		rows[i] = []string{
			s.DepositID,
			s.Amount.Format(b.Currency),
			optional(s.OneTime, b.Currency),
			optional(s.Monthly, b.Currency),
			optional(s.Fallback, b.Currency),
			optional(s.Dropped, b.Currency),
			note,
		}
	}
	return md.TableSet{
		Header: []string{"Deposit", "Amount", "One-Time", "Monthly", "Fallback", "Dropped", "Note"},
		Rows:   rows,
	}
}

// optional formats an amount, or "-" if it is zero.
func optional(a depositplan.Amount, currency string) string {
	if a.IsZero() {
		return "-"
	}
	return a.Format(currency)
}

// percent formats part/total as a percentage, "-" if total is zero.
func percent(part, total depositplan.Amount) string {
	p, ok := depositplan.Ratio(part, total)
	if !ok {
		return "-"
	}
	return p.String()
}
