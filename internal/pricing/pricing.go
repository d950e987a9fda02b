// Package pricing derives cart totals. All arithmetic is decimal so
// repeated additions of prices like 0.10 never drift the way binary
// floats do; rounding to 2dp happens only at display time.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/Khristo19/clothing-shop-pos/internal/domain"
)

// Calculate returns subtotal, discount, tax and total for the given lines
// and tax rate (percentage units, e.g. 18 means 18%).
//
// Discount is always zero: approved discounts from the offer flow only
// affect upstream records, never a live cart.
func Calculate(lines []domain.CartLine, taxRatePercent decimal.Decimal) domain.Totals {
	subtotal := decimal.Zero
	for _, line := range lines {
		subtotal = subtotal.Add(line.LineTotal())
	}

	discount := decimal.Zero
	tax := subtotal.Mul(taxRatePercent.Div(decimal.NewFromInt(100)))
	total := subtotal.Sub(discount).Add(tax)

	return domain.Totals{
		Subtotal: subtotal,
		Discount: discount,
		Tax:      tax,
		Total:    total,
	}
}

// Display rounds totals to two decimal places for presentation. The wire
// values keep full precision.
func Display(t domain.Totals) domain.Totals {
	return domain.Totals{
		Subtotal: t.Subtotal.Round(2),
		Discount: t.Discount.Round(2),
		Tax:      t.Tax.Round(2),
		Total:    t.Total.Round(2),
	}
}
