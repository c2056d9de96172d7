package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/lehoangvu/techstore/internal/domain/inventory"
)

const (
	// The quantity guard makes the decrement conditional: when two
	// checkouts race for the last units, only one UPDATE matches.
	reserveStockSQL = `UPDATE product_colors
		SET quantity = quantity - $3
		WHERE product_id = $1 AND id = $2 AND quantity >= $3`

	releaseStockSQL = `UPDATE product_colors
		SET quantity = quantity + $3
		WHERE product_id = $1 AND id = $2`
)

var _ inventory.Ledger = (*InventoryLedger)(nil)

// InventoryLedger implements inventory.Ledger with conditional updates on
// the variant stock column, so reserve is a single atomic
// decrement-if-sufficient statement.
type InventoryLedger struct {
	db DB
}

// NewInventoryLedger returns an InventoryLedger over the given querier.
func NewInventoryLedger(db DB) *InventoryLedger {
	return &InventoryLedger{db: db}
}

// Reserve decrements the variant's stock, failing with
// inventory.ErrInsufficientStock when fewer than qty units remain.
func (l *InventoryLedger) Reserve(ctx context.Context, productID, colorID int64, qty int) error {
	tag, err := l.db.Exec(ctx, reserveStockSQL, productID, colorID, qty)
	if err != nil {
		return fmt.Errorf("reserving %d units of product %d color %d: %w", qty, productID, colorID, err)
	}
	if tag.RowsAffected() == 0 {
		return inventory.ErrInsufficientStock
	}
	return nil
}

// Release returns qty units to the variant. A missing variant is logged as
// an anomaly and treated as success: restock bookkeeping must never block
// a cancellation.
func (l *InventoryLedger) Release(ctx context.Context, productID, colorID int64, qty int) error {
	tag, err := l.db.Exec(ctx, releaseStockSQL, productID, colorID, qty)
	if err != nil {
		return fmt.Errorf("releasing %d units of product %d color %d: %w", qty, productID, colorID, err)
	}
	if tag.RowsAffected() == 0 {
		zctx.From(ctx).Warn("release against missing variant",
			zap.Int64("product_id", productID),
			zap.Int64("color_id", colorID),
			zap.Int("quantity", qty),
		)
	}
	return nil
}
