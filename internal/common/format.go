package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney renders a monetary value with comma thousands separators and
// no decimal places, e.g. 1234567.89 → "1,234,568".
func FormatMoney(v decimal.Decimal) string {
	s := v.Round(0).String()

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	lead := len(s) % 3
	if lead > 0 {
		sb.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if sb.Len() > 0 && !(neg && sb.Len() == 1) {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// FormatPercent renders a percentage with one decimal place, e.g. "12.5%".
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
