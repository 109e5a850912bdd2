package utils

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var brPrinter = message.NewPrinter(language.BrazilianPortuguese)

// FormatBRL renders a monetary value with Brazilian separators, e.g.
// "R$ 1.234,56".
func FormatBRL(v float64) string {
	return brPrinter.Sprintf("R$ %.2f", v)
}

// FormatNumberBR renders an integer count with Brazilian thousands separators.
func FormatNumberBR(v int64) string {
	return brPrinter.Sprintf("%d", v)
}
