package finance

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount as rupees with Indian digit grouping and no
// decimal places, e.g. 1500000 -> "Rs. 15,00,000". Every on-screen table
// and every PDF export goes through this one formatter so the two paths
// can never disagree on a figure.
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	digits := rounded.Abs().String()

	var b strings.Builder
	b.WriteString("Rs. ")
	if rounded.IsNegative() {
		b.WriteString("-")
	}
	b.WriteString(groupIndian(digits))
	return b.String()
}

// groupIndian inserts commas after the last three digits and then every
// two digits: 1500000 -> 15,00,000.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]

	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}
