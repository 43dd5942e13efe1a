package entities

import (
	"strconv"
	"strings"
)

// ParseFee normalizes a doctor's consultation fee to a numeric amount.
// Fees arrive either as plain numbers ("150", "1200.50") or as formatted
// currency text ("500.000 VND", "1,200.50"). Dots and commas are
// disambiguated by position: a separator followed only by three-digit
// groups is a thousands separator, anything else marks the decimals.
// The second return is false when no numeric amount can be extracted.
func ParseFee(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.Trim(b.String(), ".,")
	if cleaned == "" || !strings.ContainsAny(cleaned, "0123456789") {
		return 0, false
	}

	hasDot := strings.Contains(cleaned, ".")
	hasComma := strings.Contains(cleaned, ",")

	switch {
	case hasDot && hasComma:
		// The rightmost separator is the decimal mark.
		if strings.LastIndex(cleaned, ".") > strings.LastIndex(cleaned, ",") {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	case hasDot:
		if isGrouped(cleaned, '.') {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
		}
	case hasComma:
		if isGrouped(cleaned, ',') {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		} else {
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		}
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// isGrouped reports whether s looks like digit groups joined by sep with
// every group after the first exactly three digits long ("500.000",
// "1.234.567").
func isGrouped(s string, sep rune) bool {
	parts := strings.Split(s, string(sep))
	if len(parts) < 2 {
		return false
	}
	if len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
