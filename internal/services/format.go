package services

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer groups thousands the way the dashboard cards display amounts.
var printer = message.NewPrinter(language.English)

func formatCurrency(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

func formatPercent(v float64) string {
	return printer.Sprintf("%.2f%%", v)
}

func formatSeconds(v float64) string {
	return printer.Sprintf("%.2f sec", v)
}

func formatCount(n int) string {
	return printer.Sprintf("%d", n)
}

func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
