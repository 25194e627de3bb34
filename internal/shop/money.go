package shop

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// DefaultCurrency is used whenever upstream omits a currency or sends one
// that is not an ISO 4217 code.
const DefaultCurrency = "USD"

// NormalizeCurrency returns the canonical ISO 4217 code for code, or fallback
// when code is blank or unknown.
func NormalizeCurrency(code, fallback string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return fallback
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return fallback
	}
	return unit.String()
}

// ParseAmount reads an upstream decimal string. Blank or malformed amounts
// count as zero.
func ParseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func NewMoney(amount decimal.Decimal, currencyCode string) Money {
	return Money{
		Amount:       amount.String(),
		CurrencyCode: currencyCode,
	}
}
