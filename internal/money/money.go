// Package money holds cent arithmetic and formatting helpers. Amounts are
// int64 cents everywhere; strings with exactly two decimals appear only at the
// provider boundary and in display text.
package money

import (
	"fmt"
	"strings"
)

// FormatValue renders cents as a plain 2-decimal string, e.g. 3000 -> "30.00".
// This is the format the provider's amount field requires.
func FormatValue(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// FormatUSD renders cents as a display string with two decimals,
// e.g. 3000 -> "$30.00".
func FormatUSD(cents int64) string {
	return "$" + FormatValue(cents)
}

// FormatCompact renders cents as a display string, dropping the decimals for
// whole-dollar amounts: 1500 -> "$15", 2550 -> "$25.50". Used where amounts
// appear inside names and descriptions ("2x $15 Gift Card").
func FormatCompact(cents int64) string {
	if cents%100 == 0 {
		return fmt.Sprintf("$%d", cents/100)
	}
	return "$" + FormatValue(cents)
}

// ParseDollars converts a decimal dollar string like "25" or "25.50" to
// cents. At most two fraction digits are accepted.
func ParseDollars(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	whole, frac, hasFrac := strings.Cut(s, ".")
	var cents int64
	for _, r := range whole {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		cents = cents*10 + int64(r-'0')
		if cents > 1<<40 {
			return 0, fmt.Errorf("amount %q out of range", s)
		}
	}
	cents *= 100
	if hasFrac {
		if len(frac) == 0 || len(frac) > 2 {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		mult := int64(10)
		if len(frac) == 2 {
			mult = 1
		}
		for _, r := range frac {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("invalid amount %q", s)
			}
		}
		var f int64
		for _, r := range frac {
			f = f*10 + int64(r-'0')
		}
		cents += f * mult
	}
	return cents, nil
}
