package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/lehoangvu/techstore/internal/domain/catalog"
	"github.com/lehoangvu/techstore/internal/domain/discount"
)

const (
	listProductsSQL = `SELECT id, name, price, is_active, sold FROM products ORDER BY id`

	getProductByIDSQL = `SELECT id, name, price, is_active, sold FROM products WHERE id = $1`

	getColorsSQL = `SELECT id, product_id, name, quantity FROM product_colors
		WHERE product_id = ANY($1) ORDER BY id`

	getDiscountsSQL = `SELECT d.id, pd.product_id, d.percentage, d.amount, d.start_date, d.end_date
		FROM discounts d
		JOIN product_discounts pd ON pd.discount_id = d.id
		WHERE pd.product_id = ANY($1) ORDER BY d.id`

	incrementSoldSQL = `UPDATE products SET sold = sold + $2 WHERE id = $1`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	db DB
}

// NewCatalogRepository returns a CatalogRepository over the given querier.
func NewCatalogRepository(db DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// List returns all products with their variants and discounts.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.db.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	ids := make([]int64, len(products))
	byID := make(map[int64]*catalog.Product, len(products))
	for i := range products {
		ids[i] = products[i].ID
		byID[products[i].ID] = &products[i]
	}
	if err := r.attach(ctx, ids, byID); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns one product with its variants and discounts.
func (r *CatalogRepository) GetByID(ctx context.Context, id int64) (*catalog.Product, error) {
	rows, err := r.db.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	if err := r.attach(ctx, []int64{p.ID}, map[int64]*catalog.Product{p.ID: &p}); err != nil {
		return nil, err
	}
	return &p, nil
}

// IncrementSold bumps the product's sold counter by qty.
func (r *CatalogRepository) IncrementSold(ctx context.Context, productID int64, qty int) error {
	_, err := r.db.Exec(ctx, incrementSoldSQL, productID, qty)
	if err != nil {
		return fmt.Errorf("incrementing sold for product %d: %w", productID, err)
	}
	return nil
}

// attach loads color variants and discounts for the given products.
func (r *CatalogRepository) attach(ctx context.Context, ids []int64, byID map[int64]*catalog.Product) error {
	rows, err := r.db.Query(ctx, getColorsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing product colors: %w", err)
	}
	err = forEachRow(rows, func(row pgx.CollectableRow) error {
		var (
			c         catalog.ColorVariant
			productID int64
		)
		if err := row.Scan(&c.ID, &productID, &c.Name, &c.Quantity); err != nil {
			return err
		}
		if p, ok := byID[productID]; ok {
			p.Colors = append(p.Colors, c)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("listing product colors: %w", err)
	}

	rows, err = r.db.Query(ctx, getDiscountsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing product discounts: %w", err)
	}
	err = forEachRow(rows, func(row pgx.CollectableRow) error {
		var (
			d          discount.Discount
			productID  int64
			percentage *decimal.Decimal
			amount     *decimal.Decimal
		)
		if err := row.Scan(&d.ID, &productID, &percentage, &amount, &d.StartDate, &d.EndDate); err != nil {
			return err
		}
		if percentage != nil {
			d.Percentage = *percentage
		}
		if amount != nil {
			d.Amount = *amount
		}
		if p, ok := byID[productID]; ok {
			p.Discounts = append(p.Discounts, d)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("listing product discounts: %w", err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.BasePrice, &p.IsActive, &p.Sold)
	return p, err
}

// forEachRow iterates rows with per-row scan callbacks, closing them after.
func forEachRow(rows pgx.Rows, fn func(row pgx.CollectableRow) error) error {
	defer rows.Close()
	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}
