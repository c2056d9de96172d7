// Package discount implements the pricing engine: time-bounded product
// discounts and selection of the best effective price.
package discount

import (
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var hundred = decimal.NewFromInt(100)

// vi formats flat amounts with Vietnamese digit grouping ("50.000").
var vi = message.NewPrinter(language.Vietnamese)

// Discount reduces a product's base price either by a percentage or by a
// flat amount. Percentage takes precedence when both are set. A discount
// only applies inside its half-open validity window [StartDate, EndDate).
type Discount struct {
	ID         int64
	Percentage decimal.Decimal
	Amount     decimal.Decimal
	StartDate  time.Time
	EndDate    time.Time
}

// ActiveAt reports whether the discount's validity window contains now.
func (d Discount) ActiveAt(now time.Time) bool {
	return !now.Before(d.StartDate) && now.Before(d.EndDate)
}

// EffectivePrice returns the price after applying the discount to base at
// the given instant. Outside the validity window the base price is returned
// unchanged. The result is floored at zero.
func (d Discount) EffectivePrice(base decimal.Decimal, now time.Time) decimal.Decimal {
	if !d.ActiveAt(now) {
		return base
	}

	price := base
	switch {
	case d.Percentage.IsPositive():
		price = base.Sub(base.Mul(d.Percentage).Div(hundred))
	case d.Amount.IsPositive():
		price = base.Sub(d.Amount)
	}

	if price.IsNegative() {
		return decimal.Zero
	}
	return price
}

// Label returns the display annotation for the discount at the given
// instant: "-10%" for percentage discounts, "-50.000₫" for flat amounts,
// and "" when the discount is inactive or empty.
func (d Discount) Label(now time.Time) string {
	if !d.ActiveAt(now) {
		return ""
	}

	switch {
	case d.Percentage.IsPositive():
		return "-" + d.Percentage.String() + "%"
	case d.Amount.IsPositive():
		return vi.Sprintf("-%v₫", number.Decimal(d.Amount.InexactFloat64()))
	}
	return ""
}
