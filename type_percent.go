package depositplan

import "fmt"

// Percent is a ratio expressed in percent, for display only.
type Percent float64

// Ratio returns part as a percentage of total. It returns false if total is not positive.
func Ratio(part, total Amount) (Percent, bool) {
	if !total.IsPositive() {
		return 0, false
	}
	return Percent(part.Div(total).InexactFloat64() * 100), true
}

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}
