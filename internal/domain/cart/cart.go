// Package cart exposes the narrow cart surface the checkout flow touches:
// reading a user's items and clearing the ones that became an order.
package cart

import (
	"context"

	"github.com/google/uuid"
)

// Item is a single cart line for a user.
type Item struct {
	ID        int64
	UserID    uuid.UUID
	ProductID int64
	ColorID   int64
	Quantity  int
}

// ItemRef identifies a cart line by its product and color variant.
type ItemRef struct {
	ProductID int64
	ColorID   int64
}

// Repository defines cart persistence operations.
type Repository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Item, error)

	// RemoveItems deletes the user's cart lines matching the given refs.
	// Missing lines are skipped silently.
	RemoveItems(ctx context.Context, userID uuid.UUID, refs []ItemRef) error
}
