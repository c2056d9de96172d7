package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lehoangvu/techstore/internal/domain/cart"
)

const (
	listCartItemsSQL = `SELECT id, user_id, product_id, color_id, quantity
		FROM cart_items WHERE user_id = $1 ORDER BY id`

	removeCartItemSQL = `DELETE FROM cart_items
		WHERE user_id = $1 AND product_id = $2 AND color_id = $3`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	db DB
}

// NewCartRepository returns a CartRepository over the given querier.
func NewCartRepository(db DB) *CartRepository {
	return &CartRepository{db: db}
}

// ListByUser returns the user's cart lines.
func (r *CartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]cart.Item, error) {
	rows, err := r.db.Query(ctx, listCartItemsSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cart for user %s: %w", userID, err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (cart.Item, error) {
		var it cart.Item
		err := row.Scan(&it.ID, &it.UserID, &it.ProductID, &it.ColorID, &it.Quantity)
		return it, err
	})
	if err != nil {
		return nil, fmt.Errorf("listing cart for user %s: %w", userID, err)
	}
	return items, nil
}

// RemoveItems deletes the user's cart lines matching the given refs.
func (r *CartRepository) RemoveItems(ctx context.Context, userID uuid.UUID, refs []cart.ItemRef) error {
	if len(refs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, ref := range refs {
		batch.Queue(removeCartItemSQL, userID, ref.ProductID, ref.ColorID)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("removing cart items for user %s: %w", userID, err)
	}
	return nil
}
