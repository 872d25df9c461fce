package depositplan

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// this file contains functions to import deposits from bank exports.
// Bank exports are JSON documents in all sorts of shapes, ImportSpec describes
// where to find deposits in them using JSONPath expressions.

// ImportSpec locates deposits inside a JSON document.
type ImportSpec struct {
	// List selects the list of transactions, e.g. "$.transactions[*]".
	List string
	// ID, Amount, Reference and Date are evaluated on each transaction, e.g. "$.amount".
	ID        string
	Amount    string
	Reference string
	Date      string
}

// DefaultImportSpec reads a top-level JSON array of deposits.
func DefaultImportSpec() ImportSpec {
	return ImportSpec{
		List:      "$[*]",
		ID:        "$.id",
		Amount:    "$.amount",
		Reference: "$.reference",
		Date:      "$.date",
	}
}

// ImportDeposits reads a JSON document and extracts deposits as described by 'spec'.
// Transactions with a non positive amount (withdrawals, fees) are skipped and counted.
func ImportDeposits(r io.Reader, spec ImportSpec) (deposits []Deposit, skipped int, err error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, 0, fmt.Errorf("cannot parse import document: %w", err)
	}

	jval, err := jsonpath.Get(spec.List, doc)
	if err != nil {
		return nil, 0, fmt.Errorf("cannot select transactions with %q: %w", spec.List, err)
	}
	items, ok := jval.([]any)
	if !ok {
		return nil, 0, fmt.Errorf("%q does not select a list of transactions", spec.List)
	}

	for i, item := range items {
		d, err := importDeposit(item, spec)
		if err != nil {
			return nil, 0, fmt.Errorf("transaction #%d: %w", i+1, err)
		}
		if !d.Amount.IsPositive() {
			skipped++
			continue
		}
		if d.ID == "" {
			d.ID = fmt.Sprintf("import-%d", i+1)
		}
		deposits = append(deposits, d)
	}
	return deposits, skipped, nil
}

func importDeposit(item any, spec ImportSpec) (Deposit, error) {
	var d Deposit

	amount, err := lookup(item, spec.Amount)
	if err != nil {
		return d, err
	}
	if d.Amount, err = toAmount(amount); err != nil {
		return d, fmt.Errorf("%q: %w", spec.Amount, err)
	}

	if spec.ID != "" {
		if id, err := lookup(item, spec.ID); err == nil && id != nil {
			d.ID = fmt.Sprint(id)
		}
	}
	if spec.Reference != "" {
		if ref, err := lookup(item, spec.Reference); err == nil && ref != nil {
			d.ReferenceCode = fmt.Sprint(ref)
		}
	}
	if spec.Date != "" {
		on, err := lookup(item, spec.Date)
		if err != nil {
			return d, err
		}
		s, ok := on.(string)
		if !ok {
			return d, fmt.Errorf("%q: date is not a string: %v", spec.Date, on)
		}
		if d.Timestamp, err = parseTimestamp(s); err != nil {
			return d, fmt.Errorf("%q: %w", spec.Date, err)
		}
	}
	return d, nil
}

// lookup evaluates a JSONPath on a value and returns a single result.
func lookup(v any, path string) (any, error) {
	jval, err := jsonpath.Get(path, v)
	if err != nil {
		return nil, fmt.Errorf("error evaluating %q: %w", path, err)
	}
	// because jsonpath is never clear about whether it returns a list of 1 answer, or a single answer:
	// by this call I keep the first one if any
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, nil
		}
		jval = jlist[0]
	}
	return jval, nil
}

// toAmount reads numbers and strings, bank exports often use a decimal comma.
func toAmount(v any) (Amount, error) {
	switch t := v.(type) {
	case json.Number:
		return ParseAmount(t.String())
	case float64:
		return A(t), nil
	case string:
		s := strings.ReplaceAll(t, " ", "")
		if strings.LastIndex(s, ",") > strings.LastIndex(s, ".") {
			// "1.234,56"
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// "1,234.56"
			s = strings.ReplaceAll(s, ",", "")
		}
		return ParseAmount(s)
	case nil:
		return Amount{}, fmt.Errorf("missing amount")
	}
	return Amount{}, fmt.Errorf("amount is neither a number nor a string: %v", v)
}
