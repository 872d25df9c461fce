package depositplan

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// dateFormat is accepted in place of a full RFC3339 timestamp in deposit files.
const dateFormat = "2006-01-02"

// parseTimestamp accepts either an RFC3339 timestamp or a plain date.
func parseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q, expected RFC3339 or %s", s, dateFormat)
	}
	return t, nil
}

// MarshalJSON writes a deposit with a stable field order.
func (d Deposit) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", d.ID)
	w.Append("amount", d.Amount)
	w.Optional("reference", d.ReferenceCode)
	if !d.Timestamp.IsZero() {
		w.Append("timestamp", d.Timestamp.Format(time.RFC3339))
	}
	return w.MarshalJSON()
}

// UnmarshalJSON reads a deposit, the timestamp can be a plain date.
func (d *Deposit) UnmarshalJSON(data []byte) error {
	var temp struct {
		ID            string `json:"id"`
		Amount        Amount `json:"amount"`
		ReferenceCode string `json:"reference"`
		Timestamp     string `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	*d = Deposit{ID: temp.ID, Amount: temp.Amount, ReferenceCode: temp.ReferenceCode}
	if temp.Timestamp != "" {
		ts, err := parseTimestamp(temp.Timestamp)
		if err != nil {
			return err
		}
		d.Timestamp = ts
	}
	return nil
}

// DecodeDeposits decodes deposits from a stream of JSONL data, one deposit per line.
// Deposits are returned in the file order.
func DecodeDeposits(r io.Reader) ([]Deposit, error) {
	var deposits []Deposit
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		lineBytes := scanner.Bytes()
		if len(lineBytes) == 0 {
			continue // Skip empty lines
		}
		var d Deposit
		if err := json.Unmarshal(lineBytes, &d); err != nil {
			return nil, fmt.Errorf("line %d: could not decode deposit %q: %w", line, string(lineBytes), err)
		}
		deposits = append(deposits, d)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading from input: %w", err)
	}
	return deposits, nil
}

// EncodeDeposit writes a single deposit as a JSON line.
func EncodeDeposit(w io.Writer, d Deposit) error {
	b, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("could not encode deposit %q: %w", d.ID, err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}

// EncodeDeposits writes deposits as JSONL, in the given order.
func EncodeDeposits(w io.Writer, deposits []Deposit) error {
	bw := bufio.NewWriter(w)
	for _, d := range deposits {
		if err := EncodeDeposit(bw, d); err != nil {
			return err
		}
	}
	return bw.Flush()
}
