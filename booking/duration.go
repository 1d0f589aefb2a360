package booking

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Longer unit spellings come first so "mins" is not read as "m" + "ins".
var durationToken = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(hours|hour|hrs|hr|h|minutes|minute|mins|min|m)?`)

// ParseDurationMinutes sums every <number><unit> token of a free-text
// duration. A number without a unit counts as minutes.
func ParseDurationMinutes(s string) int {
	total := 0.0
	for _, m := range durationToken.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			n *= 60
		}
		total += n
	}
	return int(math.Round(total))
}

// FormatMinutes renders a minute count as "H hr M mins", leaving out a
// zero part. Zero renders as "N/A".
func FormatMinutes(total int) string {
	if total <= 0 {
		return "N/A"
	}
	h, m := total/60, total%60
	switch {
	case h == 0:
		return fmt.Sprintf("%d mins", m)
	case m == 0:
		return fmt.Sprintf("%d hr", h)
	default:
		return fmt.Sprintf("%d hr %d mins", h, m)
	}
}
