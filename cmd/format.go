package main

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var pr = message.NewPrinter(language.English)

// formatMoney renders a currency amount with thousands separators,
// e.g. "$12,345,678".
func formatMoney(currency string, v float64) string {
	symbol := "$"
	switch currency {
	case "GBP":
		symbol = "£"
	case "EUR":
		symbol = "€"
	}
	if v < 0 {
		return pr.Sprintf("-%s%.0f", symbol, -v)
	}
	return pr.Sprintf("%s%.0f", symbol, v)
}

// formatCount renders an integer with thousands separators.
func formatCount(n int) string {
	return pr.Sprintf("%d", n)
}
