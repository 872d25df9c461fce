package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/depositplan"
	"github.com/etnz/depositplan/store"
	md "github.com/nao1215/markdown"
)

// RunsMarkdown renders the list of saved allocation runs.
func RunsMarkdown(runs []store.Run, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Allocation History")
	if len(runs) == 0 {
		doc.PlainText("No allocation run saved yet.")
		return doc.String()
	}

	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.ID,
			r.CreatedAt.Format("2006-01-02 15:04"),
			fmt.Sprint(r.Deposits),
			r.Total.Format(currency),
		}
	}
	doc.Table(md.TableSet{
		Header: []string{"Run", "Date", "Deposits", "Total"},
		Rows:   rows,
	})
	return doc.String()
}

// RunMarkdown renders the allocations of a single saved run.
func RunMarkdown(b *depositplan.Book, id string, allocations []depositplan.PortfolioAllocation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	total := depositplan.TotalAllocated(allocations)
	doc.H1(fmt.Sprintf("Allocation Run %s", id))
	doc.PlainText(fmt.Sprintf("Total Allocated: %s", total.Format(b.Currency)))
	doc.Table(allocationTable(b, allocations, total))
	return doc.String()
}
