// Package booking composes bookings: service selection, price and
// duration totals, slot handling and persistence of the final appointment.
package booking

import (
	"math"
	"strconv"
	"strings"
)

// ParsePrice reads a free-text price such as "₹1,234.50" by dropping every
// character that is not a digit or a dot, then taking the longest leading
// number ("1.2.3" is 1.2). Anything unparseable is 0.
func ParsePrice(s string) float64 {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' {
			return r
		}
		return -1
	}, s)
	end := 0
	dot := false
	for end < len(cleaned) {
		if cleaned[end] == '.' {
			if dot {
				break
			}
			dot = true
		}
		end++
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(cleaned[:end], "."), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// FormatPrice renders a total with two decimals.
func FormatPrice(v float64) string {
	return strconv.FormatFloat(roundCents(v), 'f', 2, 64)
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
