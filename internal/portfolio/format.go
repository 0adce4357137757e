package portfolio

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for display when no currency is given or the
// code is unknown.
const DefaultCurrency = money.USD

// FormatAmount renders an amount in the currency's display format,
// e.g. "$1,500.00". Amounts are rounded to the currency's minor unit.
func FormatAmount(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(strings.ToUpper(strings.TrimSpace(currency)))
	if cur == nil {
		cur = money.GetCurrency(DefaultCurrency)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}
