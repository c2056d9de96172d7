package discount

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	now      = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	lastWeek = now.AddDate(0, 0, -7)
	nextWeek = now.AddDate(0, 0, 7)
)

func percentOff(id int64, pct int64, from, until time.Time) Discount {
	return Discount{ID: id, Percentage: decimal.NewFromInt(pct), StartDate: from, EndDate: until}
}

func amountOff(id int64, amount int64, from, until time.Time) Discount {
	return Discount{ID: id, Amount: decimal.NewFromInt(amount), StartDate: from, EndDate: until}
}

func TestBest_NoDiscounts(t *testing.T) {
	base := decimal.NewFromInt(1_000_000)

	price, label := Best(base, nil, now)

	assert.True(t, base.Equal(price))
	assert.Empty(t, label)
}

func TestBest_ActivePercentage(t *testing.T) {
	base := decimal.NewFromInt(1_000_000)
	d := percentOff(1, 10, lastWeek, nextWeek)

	price, label := Best(base, []Discount{d}, now)

	assert.True(t, decimal.NewFromInt(900_000).Equal(price))
	assert.Equal(t, "-10%", label)
}

func TestBest_ExpiredDiscount(t *testing.T) {
	base := decimal.NewFromInt(1_000_000)
	d := percentOff(1, 10, lastWeek.AddDate(0, -1, 0), lastWeek)

	price, label := Best(base, []Discount{d}, now)

	assert.True(t, base.Equal(price))
	assert.Empty(t, label)
}

func TestBest_WindowIsHalfOpen(t *testing.T) {
	base := decimal.NewFromInt(100)
	d := percentOff(1, 50, lastWeek, nextWeek)

	// Inclusive at start.
	price, _ := Best(base, []Discount{d}, lastWeek)
	assert.True(t, decimal.NewFromInt(50).Equal(price))

	// Exclusive at end.
	price, label := Best(base, []Discount{d}, nextWeek)
	assert.True(t, base.Equal(price))
	assert.Empty(t, label)
}

func TestBest_FlatAmountLabel(t *testing.T) {
	base := decimal.NewFromInt(1_000_000)
	d := amountOff(3, 50_000, lastWeek, nextWeek)

	price, label := Best(base, []Discount{d}, now)

	assert.True(t, decimal.NewFromInt(950_000).Equal(price))
	assert.Equal(t, "-50.000₫", label)
}

func TestBest_PicksMinimumPrice(t *testing.T) {
	base := decimal.NewFromInt(1_000_000)
	small := percentOff(1, 5, lastWeek, nextWeek)
	big := amountOff(2, 200_000, lastWeek, nextWeek)

	price, label := Best(base, []Discount{small, big}, now)

	assert.True(t, decimal.NewFromInt(800_000).Equal(price))
	assert.Equal(t, "-200.000₫", label)
}

func TestBest_TieGoesToLowestID(t *testing.T) {
	base := decimal.NewFromInt(1_000_000)
	byAmount := amountOff(7, 100_000, lastWeek, nextWeek)
	byPercent := percentOff(2, 10, lastWeek, nextWeek)

	// Both yield 900,000; ID 2 must win regardless of slice order.
	_, label := Best(base, []Discount{byAmount, byPercent}, now)
	assert.Equal(t, "-10%", label)

	_, label = Best(base, []Discount{byPercent, byAmount}, now)
	assert.Equal(t, "-10%", label)
}

func TestBest_FlooredAtZero(t *testing.T) {
	base := decimal.NewFromInt(30_000)
	d := amountOff(1, 50_000, lastWeek, nextWeek)

	price, _ := Best(base, []Discount{d}, now)

	assert.True(t, price.IsZero())
}

func TestBest_EmptyDiscountKeepsBase(t *testing.T) {
	base := decimal.NewFromInt(500)
	d := Discount{ID: 1, StartDate: lastWeek, EndDate: nextWeek}

	price, label := Best(base, []Discount{d}, now)

	assert.True(t, base.Equal(price))
	assert.Empty(t, label)
}

func TestEffectivePrice_PercentagePrecedesAmount(t *testing.T) {
	base := decimal.NewFromInt(1_000_000)
	d := Discount{
		ID:         1,
		Percentage: decimal.NewFromInt(10),
		Amount:     decimal.NewFromInt(999_999),
		StartDate:  lastWeek,
		EndDate:    nextWeek,
	}

	assert.True(t, decimal.NewFromInt(900_000).Equal(d.EffectivePrice(base, now)))
	assert.Equal(t, "-10%", d.Label(now))
}
