package discount

import (
	"time"

	"github.com/shopspring/decimal"
)

// Best computes the current best price for a product: the minimum effective
// price over all discounts active at now, together with that discount's
// label. When no discount is active the base price and an empty label are
// returned.
//
// Ties between discounts yielding the same price go to the lowest discount
// ID, so the result is deterministic regardless of slice order.
func Best(base decimal.Decimal, discounts []Discount, now time.Time) (decimal.Decimal, string) {
	price := base
	var chosen *Discount

	for i := range discounts {
		d := &discounts[i]
		if !d.ActiveAt(now) {
			continue
		}

		p := d.EffectivePrice(base, now)
		switch {
		case p.LessThan(price):
			price = p
			chosen = d
		case chosen != nil && p.Equal(price) && d.ID < chosen.ID:
			chosen = d
		}
	}

	if chosen == nil {
		return base, ""
	}
	return price, chosen.Label(now)
}
