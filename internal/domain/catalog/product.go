// Package catalog defines the product read model the order engine consumes.
// Catalog CRUD lives outside this service; orders only need lookups, the
// sold counter, and the per-variant stock owned by the inventory ledger.
package catalog

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/lehoangvu/techstore/internal/domain/discount"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// InactiveProductError indicates an order referenced a deactivated product.
type InactiveProductError struct {
	Name string
}

func (e *InactiveProductError) Error() string {
	return fmt.Sprintf("product %q is no longer available", e.Name)
}

// VariantNotFoundError indicates a product has no color variant with the
// requested ID.
type VariantNotFoundError struct {
	ColorID     int64
	ProductName string
}

func (e *VariantNotFoundError) Error() string {
	return fmt.Sprintf("color %d not found for product %q", e.ColorID, e.ProductName)
}

// Product is a catalog item with its color variants and attached discounts.
type Product struct {
	ID        int64
	Name      string
	BasePrice decimal.Decimal
	IsActive  bool
	Sold      int64
	Colors    []ColorVariant
	Discounts []discount.Discount
}

// ColorVariant is a specific color option of a product, the unit of stock
// tracking. Quantity is mutated only through the inventory ledger.
type ColorVariant struct {
	ID       int64
	Name     string
	Quantity int
}

// Color returns the variant with the given ID, if present.
func (p *Product) Color(colorID int64) (*ColorVariant, bool) {
	for i := range p.Colors {
		if p.Colors[i].ID == colorID {
			return &p.Colors[i], true
		}
	}
	return nil, false
}

// Repository defines the catalog operations the order engine depends on.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
	IncrementSold(ctx context.Context, productID int64, qty int) error
}
