// Package order holds the order aggregate and the orchestrator that turns
// checkout requests into stock-reserving orders and drives the status
// lifecycle.
package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shipping fee tiers, evaluated against the pre-shipping subtotal.
var (
	baseShippingFee       = decimal.NewFromInt(30_000)
	halfFeeThreshold      = decimal.NewFromInt(5_000_000)
	freeShippingThreshold = decimal.NewFromInt(10_000_000)
)

// Order is the aggregate created once at checkout. Item prices and the
// total are frozen at creation; later catalog or discount changes never
// affect an existing order. Only status transitions mutate it.
type Order struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Status        Status
	PaymentMethod string
	ShippingFee   decimal.Decimal
	TotalAmount   decimal.Decimal
	OrderDate     time.Time
	DeliveryDate  *time.Time
	Items         []Item
}

// Item is one order line: a product in a specific color variant with the
// unit price frozen at order time. Immutable after creation.
type Item struct {
	ID            uuid.UUID
	ProductID     int64
	ColorID       int64
	Quantity      int
	UnitPrice     decimal.Decimal
	DiscountLabel string
}

// Subtotal returns the sum of frozen line subtotals, excluding shipping.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// ShippingFee returns the fee for a given pre-shipping subtotal: the base
// fee, halved from 5,000,000 and waived from 10,000,000.
func ShippingFee(subtotal decimal.Decimal) decimal.Decimal {
	switch {
	case subtotal.GreaterThanOrEqual(freeShippingThreshold):
		return decimal.Zero
	case subtotal.GreaterThanOrEqual(halfFeeThreshold):
		return baseShippingFee.Div(decimal.NewFromInt(2))
	default:
		return baseShippingFee
	}
}

// Repository defines persistence operations for orders.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// GetByIDForUpdate loads the order with an exclusive row lock so that
	// concurrent status transitions on the same order serialize. Only
	// meaningful inside a transaction.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*Order, error)

	// Update persists status and delivery date. Items and totals are
	// frozen and never written back.
	Update(ctx context.Context, o *Order) error

	ListAll(ctx context.Context) ([]Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)

	// ListCurrentByUser returns the user's orders that are still in a
	// non-terminal status.
	ListCurrentByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
}
