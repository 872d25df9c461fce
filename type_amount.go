package depositplan

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// cents is the number of decimal places allocations are rounded to.
const cents = 2

// newDecimal is a convenient factory for decimal.Decimal
func newDecimal[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	default:
		panic("unsupported type")
	}
}

// Amount is an exact monetary amount with no currency attached.
// Its zero value is 0.
type Amount struct {
	value decimal.Decimal
}

// A returns an Amount from any numeric value.
func A[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Amount {
	return Amount{value: newDecimal(value)}
}

// ParseAmount parses a decimal string like "10500.25".
func ParseAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, err
	}
	return Amount{value: d}, nil
}

func (a Amount) Add(b Amount) Amount              { return Amount{value: a.value.Add(b.value)} }
func (a Amount) Sub(b Amount) Amount              { return Amount{value: a.value.Sub(b.value)} }
func (a Amount) Mul(b Amount) Amount              { return Amount{value: a.value.Mul(b.value)} }
func (a Amount) Div(b Amount) Amount              { return Amount{value: a.value.Div(b.value)} }
func (a Amount) Equal(b Amount) bool              { return a.value.Equal(b.value) }
func (a Amount) LessThan(b Amount) bool           { return a.value.LessThan(b.value) }
func (a Amount) GreaterThan(b Amount) bool        { return a.value.GreaterThan(b.value) }
func (a Amount) GreaterThanOrEqual(b Amount) bool { return a.value.GreaterThanOrEqual(b.value) }
func (a Amount) IsZero() bool                     { return a.value.IsZero() }
func (a Amount) IsPositive() bool                 { return a.value.IsPositive() }
func (a Amount) IsNegative() bool                 { return a.value.IsNegative() }
func (a Amount) String() string                   { return a.value.String() }
func (a Amount) StringFixed(places int32) string  { return a.value.StringFixed(places) }
func (a Amount) InexactFloat64() float64          { return a.value.InexactFloat64() }
func (a Amount) DivInt(n int) Amount              { return Amount{value: a.value.Div(decimal.NewFromInt(int64(n)))} }
func (a Amount) MulInt(n int) Amount              { return Amount{value: a.value.Mul(decimal.NewFromInt(int64(n)))} }
func (a Amount) Abs() Amount                      { return Amount{value: a.value.Abs()} }

// Round2 rounds half away from zero at 2 decimal places, which is half-up for
// the positive amounts handled by the allocator.
func (a Amount) Round2() Amount { return Amount{value: a.value.Round(cents)} }

// MinAmount returns the smallest of a and b.
func MinAmount(a, b Amount) Amount {
	if b.LessThan(a) {
		return b
	}
	return a
}

// MaxAmount returns the largest of a and b.
func MaxAmount(a, b Amount) Amount {
	if b.GreaterThan(a) {
		return b
	}
	return a
}

// Format returns the amount formatted in the given ISO currency, e.g. "€10,500.00".
// An empty currency formats the amount with 2 decimals and no symbol.
func (a Amount) Format(currency string) string {
	if currency == "" {
		return a.value.StringFixed(cents)
	}
	// to get a never nil currency I need to call the Money constructor
	cur := *money.New(0, currency).Currency()
	minor := a.value.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// MarshalJSON writes the amount as a JSON number.
func (a Amount) MarshalJSON() ([]byte, error) {
	return a.value.MarshalJSON()
}

// UnmarshalJSON accepts both JSON numbers and quoted decimal strings.
func (a *Amount) UnmarshalJSON(decimalBytes []byte) error {
	return a.value.UnmarshalJSON(decimalBytes)
}

// MarshalYAML writes the amount as an exact YAML number.
func (a Amount) MarshalYAML() (any, error) {
	tag := "!!float"
	if a.value.Equal(a.value.Truncate(0)) {
		tag = "!!int"
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: a.value.String()}, nil
}

// UnmarshalYAML reads a YAML scalar (number or quoted string) without going through float64.
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q: %w", node.Line, node.Value, err)
	}
	a.value = d
	return nil
}
