// Package money formats exact decimal amounts for API responses.
// All arithmetic stays in decimal.Decimal; formatting is boundary-only.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders d with two fixed decimals and thousands separators,
// e.g. 85378.48 -> "85,378.48".
func FormatPrice(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	intPart, fracPart := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	b.WriteString(fracPart)
	return b.String()
}
