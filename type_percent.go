package pocket

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Percent is a percentage, 5 means 5%.
type Percent float64

// ParsePercent parses "5", "5.5" or "5,5%".
func ParsePercent(s string) (Percent, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "%")
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	return Percent(f), nil
}

func (p Percent) Equal(q Percent) bool {
	// it has to be compared with some precision
	const precision = 0.0001
	diff := p - q
	if diff < 0 {
		diff = -diff
	}
	return diff < precision
}

// Decimal returns the percentage as an exact decimal (5% is 5).
func (p Percent) Decimal() decimal.Decimal { return decimal.NewFromFloat(float64(p)) }

func (p Percent) String() string {
	return fmt.Sprintf("%.2f%%", p)
}

func (p Percent) SignedString() string {
	res := fmt.Sprintf("%+.2f%%", p)
	if res == "+0.00%" {
		return "-"
	}
	return res
}
