package depositplan

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestDecodeDeposits(t *testing.T) {
	input := `{"id":"d1","amount":5250,"reference":"ref123","timestamp":"2025-04-10"}

{"id":"d2","amount":"5350.5","timestamp":"2025-04-11T08:30:00+02:00"}
`
	got, err := DecodeDeposits(strings.NewReader(input))
	if err != nil {
		t.Fatalf("DecodeDeposits() failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d deposits, want 2", len(got))
	}
	if got[0].ID != "d1" || !got[0].Amount.Equal(A(5250)) || got[0].ReferenceCode != "ref123" {
		t.Errorf("deposit 0 = %+v", got[0])
	}
	if !got[0].Timestamp.Equal(time.Date(2025, time.April, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("deposit 0 timestamp = %v", got[0].Timestamp)
	}
	if !got[1].Amount.Equal(A(5350.5)) {
		t.Errorf("deposit 1 amount = %v, want 5350.5", got[1].Amount)
	}
	if !got[1].Timestamp.Equal(time.Date(2025, time.April, 11, 6, 30, 0, 0, time.UTC)) {
		t.Errorf("deposit 1 timestamp = %v", got[1].Timestamp)
	}
}

func TestDecodeDeposits_Error(t *testing.T) {
	input := `{"id":"d1","amount":1,"timestamp":"2025-04-10"}
{"id":"d2","amount":1,"timestamp":"tomorrow"}
`
	_, err := DecodeDeposits(strings.NewReader(input))
	if err == nil {
		t.Fatal("DecodeDeposits() expected an error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q does not name the line", err)
	}
}

func TestEncodeDeposits(t *testing.T) {
	ds := []Deposit{
		NewDeposit("d1", A(5250), "ref123", day),
		NewDeposit("d2", A(0.1), "", time.Time{}),
	}
	var buf bytes.Buffer
	if err := EncodeDeposits(&buf, ds); err != nil {
		t.Fatalf("EncodeDeposits() failed: %v", err)
	}
	want := `{"id":"d1","amount":5250,"reference":"ref123","timestamp":"2025-04-10T00:00:00Z"}
{"id":"d2","amount":0.1}
`
	if got := buf.String(); got != want {
		t.Errorf("EncodeDeposits() =\n%s\nwant\n%s", got, want)
	}
}

func TestSortDeposits(t *testing.T) {
	ds := []Deposit{
		NewDeposit("late", A(1), "", day.Add(48*time.Hour)),
		NewDeposit("first", A(1), "", day),
		NewDeposit("second", A(1), "", day),
	}
	SortDeposits(ds)
	for i, want := range []string{"first", "second", "late"} {
		if ds[i].ID != want {
			t.Errorf("ds[%d] = %q, want %q", i, ds[i].ID, want)
		}
	}
}
