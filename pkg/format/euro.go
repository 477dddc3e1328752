// Package format renders exact decimal amounts for display.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Euro returns a currency string with a euro sign and thousands separators
// (e.g., "-1,234.56 €"). The amount is rendered exactly, never through a
// float.
func Euro(amount decimal.Decimal) string {
	return NumericEuro(amount) + " €"
}

// NumericEuro returns a currency string without the euro sign but with
// separators (e.g., "-1,234.56").
func NumericEuro(amount decimal.Decimal) string {
	formatted := formatPositiveAmount(amount.Abs())
	if amount.IsNegative() {
		return "-" + formatted
	}
	return formatted
}

func formatPositiveAmount(value decimal.Decimal) string {
	formatted := value.StringFixed(2)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
