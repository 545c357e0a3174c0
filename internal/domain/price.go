package domain

import (
	"strconv"
	"strings"
)

// ParsePrice extracts a numeric value from a scraped price string such as
// "¥12,345" or "1,200円". Currency symbols, grouping separators and
// surrounding whitespace are stripped. Returns nil when nothing numeric
// remains, so sorting by price can push unpriced listings to the end.
func ParsePrice(display string) *float64 {
	var b strings.Builder
	for _, r := range display {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.':
			b.WriteRune(r)
		case r == ',' || r == ' ' || r == ' ':
			// grouping separators
		default:
			// currency symbols and unit suffixes
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return nil
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	return &v
}

// FormatGroupedYen renders an integer yen amount with a currency prefix and
// thousands grouping, e.g. 1234567 -> "¥1,234,567".
func FormatGroupedYen(amount int64) string {
	digits := strconv.FormatInt(amount, 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteString("¥")
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}
