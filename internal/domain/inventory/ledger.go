// Package inventory defines the stock ledger contract: atomic reserve and
// release operations over per-(product, color) counters.
package inventory

import (
	"context"

	"github.com/go-faster/errors"
)

// ErrInsufficientStock is returned by Reserve when the variant holds fewer
// units than requested.
var ErrInsufficientStock = errors.New("insufficient stock")

// Ledger owns variant stock counters. Both operations must be atomic with
// respect to concurrent callers on the same variant: two racing Reserve
// calls against the last unit must not both succeed.
type Ledger interface {
	// Reserve decrements the variant's quantity by qty, failing with
	// ErrInsufficientStock when fewer units are available. The counter
	// never goes negative.
	Reserve(ctx context.Context, productID, colorID int64, qty int) error

	// Release increments the variant's quantity by qty. A release against
	// a variant that no longer exists is a no-op: stock bookkeeping must
	// not block a cancellation from completing.
	Release(ctx context.Context, productID, colorID int64, qty int) error
}
