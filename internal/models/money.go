package models

import (
	"math"
	"strconv"
	"strings"
)

// Money is an amount in paise (integer minor units). The scraped catalog
// stores display prices like "₹45.00"; everything downstream of the catalog
// does arithmetic on Money so cart and order totals never round-trip through
// formatted strings.
type Money int64

// ParsePrice extracts the numeric part of a catalog display price.
// Unparseable or blank input yields 0, which matches the scraped data where
// some entries carry no price at all.
func ParsePrice(display string) Money {
	var b strings.Builder
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return Money(math.Round(f * 100))
}

// Rupees returns the amount in major units.
func (m Money) Rupees() float64 {
	return float64(m) / 100
}

// Display renders the amount the way the catalog stores prices.
func (m Money) Display() string {
	return "₹" + strconv.FormatFloat(m.Rupees(), 'f', 2, 64)
}

// MarshalJSON emits the amount as a rupee number, which is the shape the
// frontend always consumed for totalAmount and line prices.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(m.Rupees(), 'f', -1, 64)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*m = Money(math.Round(f * 100))
	return nil
}
