package billing

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Amounts shown to callers use Indian digit grouping (1,23,456.00).
var inrPrinter = message.NewPrinter(language.MustParse("en-IN"))

// FormatAmount renders a rupee amount with Indian grouping and two decimals.
func FormatAmount(v float64) string {
	return inrPrinter.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2)))
}
