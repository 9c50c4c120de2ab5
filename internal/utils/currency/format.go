// Package currency formats and rounds money amounts for display and storage.
package currency

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultCode is used when no currency is configured.
const DefaultCode = "USD"

const fallbackScale = 2

var printer = message.NewPrinter(language.English)

// Normalize upper-cases a currency code and substitutes DefaultCode for blanks.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DefaultCode
	}
	return code
}

// Supported reports whether code is a known ISO 4217 currency.
func Supported(code string) bool {
	_, err := currency.ParseISO(Normalize(code))
	return err == nil
}

// Scale returns the number of fraction digits conventionally shown for code.
func Scale(code string) int {
	unit, err := currency.ParseISO(Normalize(code))
	if err != nil {
		return fallbackScale
	}
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// FormatCurrency renders amount with the currency's symbol and precision,
// e.g. "$1,025,000.00". Unknown codes render as "XYZ 1,025,000.00".
func FormatCurrency(amount float64, code string) string {
	code = Normalize(code)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " " + printer.Sprint(number.Decimal(amount, number.Scale(fallbackScale)))
	}

	scale, _ := currency.Standard.Rounding(unit)
	symbol := printer.Sprint(currency.Symbol(unit))
	digits := printer.Sprint(number.Decimal(amount, number.Scale(scale)))
	if strings.HasPrefix(digits, "-") {
		return "-" + symbol + strings.TrimPrefix(digits, "-")
	}
	return symbol + digits
}

// ToDecimal rounds amount to the currency's scale for persistence.
func ToDecimal(amount float64, code string) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(int32(Scale(code)))
}
