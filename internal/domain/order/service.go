package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lehoangvu/techstore/internal/domain/cart"
	"github.com/lehoangvu/techstore/internal/domain/catalog"
	"github.com/lehoangvu/techstore/internal/domain/discount"
	"github.com/lehoangvu/techstore/internal/domain/inventory"
)

// Sentinel errors for order operations.
var (
	ErrEmptyItems = errors.New("order must contain at least one item")
	ErrNotFound   = errors.New("order not found")
	ErrForbidden  = errors.New("order belongs to another user")
)

// InsufficientStockError indicates a checkout asked for more units of a
// variant than are in stock.
type InsufficientStockError struct {
	ProductName string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("not enough stock for product %q in the selected color", e.ProductName)
}

// InvalidQuantityError indicates a line item has a non-positive quantity.
type InvalidQuantityError struct {
	ProductID int64
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be greater than 0 for product %d", e.ProductID)
}

// InvalidTransitionError indicates a status update that the transition
// graph does not allow.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition from %q to %q", e.From, e.To)
}

// Tx is the repository set bound to a single database transaction. The
// orchestrator's multi-step flows (reserve + persist, load + transition +
// side effects) run entirely inside one Tx so they apply all-or-nothing.
type Tx interface {
	Orders() Repository
	Catalog() catalog.Repository
	Ledger() inventory.Ledger
}

// Store opens the transaction boundary. The callback's error aborts the
// transaction, rolling back every reservation and write made through tx.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Event is emitted after an order is created or changes status.
type Event struct {
	Type    string          `json:"type"`
	OrderID uuid.UUID       `json:"orderId"`
	UserID  uuid.UUID       `json:"userId"`
	Status  Status          `json:"status"`
	Total   decimal.Decimal `json:"total"`
	At      time.Time       `json:"at"`
}

// Event types.
const (
	EventCreated       = "order.created"
	EventStatusChanged = "order.status_changed"
)

// Publisher delivers order events to interested consumers. Delivery is
// best-effort: failures are logged by the caller, never surfaced.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// Invalidator drops cached product views after stock or sold counters move.
type Invalidator interface {
	InvalidateProduct(ctx context.Context, productID int64) error
}

// ItemRequest is one requested checkout line.
type ItemRequest struct {
	ProductID int64
	ColorID   int64
	Quantity  int
}

// CreateRequest is the input for a checkout.
type CreateRequest struct {
	UserID        uuid.UUID
	PaymentMethod string
	Items         []ItemRequest
}

// Service orchestrates checkout and the order status lifecycle.
type Service struct {
	store  Store
	orders Repository
	carts  cart.Repository
	events Publisher
	cache  Invalidator
	now    func() time.Time
}

// NewService creates the orchestrator. The orders repository is used for
// reads outside a transaction; all mutations go through the store.
func NewService(
	store Store,
	orders Repository,
	carts cart.Repository,
	events Publisher,
	cache Invalidator,
) *Service {
	return &Service{
		store:  store,
		orders: orders,
		carts:  carts,
		events: events,
		cache:  cache,
		now:    time.Now,
	}
}

// CreateOrder validates the request, reserves stock for every line, freezes
// per-item prices against the product's current discounts, computes the
// shipping fee, and persists the order with status Pending. Reservation and
// persistence share one transaction, so a failure on any line releases
// every earlier reservation. Cart cleanup runs after commit and is
// best-effort: its failure never fails the already-committed order.
func (s *Service) CreateOrder(ctx context.Context, req CreateRequest) (*Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, &InvalidQuantityError{ProductID: it.ProductID}
		}
	}

	now := s.now()
	o := &Order{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Status:        StatusPending,
		PaymentMethod: req.PaymentMethod,
		OrderDate:     now,
	}

	err := s.store.WithinTx(ctx, func(tx Tx) error {
		subtotal := decimal.Zero

		for _, it := range req.Items {
			p, err := tx.Catalog().GetByID(ctx, it.ProductID)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return &catalog.InactiveProductError{Name: p.Name}
			}
			if _, ok := p.Color(it.ColorID); !ok {
				return &catalog.VariantNotFoundError{ColorID: it.ColorID, ProductName: p.Name}
			}

			if err := tx.Ledger().Reserve(ctx, it.ProductID, it.ColorID, it.Quantity); err != nil {
				if errors.Is(err, inventory.ErrInsufficientStock) {
					return &InsufficientStockError{ProductName: p.Name}
				}
				return errors.Wrap(err, "reserve stock")
			}

			price, label := discount.Best(p.BasePrice, p.Discounts, now)
			o.Items = append(o.Items, Item{
				ID:            uuid.New(),
				ProductID:     it.ProductID,
				ColorID:       it.ColorID,
				Quantity:      it.Quantity,
				UnitPrice:     price,
				DiscountLabel: label,
			})
			subtotal = subtotal.Add(price.Mul(decimal.NewFromInt(int64(it.Quantity))))
		}

		o.ShippingFee = ShippingFee(subtotal)
		o.TotalAmount = subtotal.Add(o.ShippingFee)

		return tx.Orders().Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	s.cleanupCart(ctx, req.UserID, req.Items)
	s.invalidateProducts(ctx, o.Items)
	s.publish(ctx, EventCreated, o)

	return o, nil
}

// CreateOrderFromCart checks out the user's entire cart: every cart line
// becomes an order line and rides the same validation, reservation, and
// pricing path as an explicit item list. An empty cart fails with
// ErrEmptyItems.
func (s *Service) CreateOrderFromCart(ctx context.Context, userID uuid.UUID, paymentMethod string) (*Order, error) {
	lines, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "list cart")
	}

	items := make([]ItemRequest, len(lines))
	for i, line := range lines {
		items[i] = ItemRequest{
			ProductID: line.ProductID,
			ColorID:   line.ColorID,
			Quantity:  line.Quantity,
		}
	}
	return s.CreateOrder(ctx, CreateRequest{
		UserID:        userID,
		PaymentMethod: paymentMethod,
		Items:         items,
	})
}

// GetOrder loads a single order. Transient storage errors are retried once;
// the read mutates nothing, so the retry is safe.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		o, err = s.orders.GetByID(ctx, id)
	}
	return o, err
}

// ListAll returns every order, newest first.
func (s *Service) ListAll(ctx context.Context) ([]Order, error) {
	return s.orders.ListAll(ctx)
}

// ListByUser returns the user's orders, newest first.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return s.orders.ListByUser(ctx, userID)
}

// ListCurrentByUser returns the user's orders still in flight.
func (s *Service) ListCurrentByUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	return s.orders.ListCurrentByUser(ctx, userID)
}

// UpdateStatus applies a validated status transition with its side effects:
// Delivered stamps the delivery date, Completed bumps sold counters (stock
// stays consumed), Cancelled restocks every reserved unit. The order row is
// locked for the duration so racing updates on the same order serialize;
// the losing request sees the new status and fails transition validation.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status, deliveryDate *time.Time) (*Order, error) {
	var o *Order
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		o, err = tx.Orders().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		return s.applyTransition(ctx, tx, o, to, deliveryDate)
	})
	if err != nil {
		return nil, err
	}

	if to == StatusCancelled || to == StatusCompleted {
		s.invalidateProducts(ctx, o.Items)
	}
	s.publish(ctx, EventStatusChanged, o)

	return o, nil
}

// Cancel is the user-initiated wrapper over the Cancelled transition. Only
// the owning user may cancel, and the transition graph limits it to orders
// still in Pending or Confirmed. Restocking rides on the same side-effect
// path as an admin cancellation.
func (s *Service) Cancel(ctx context.Context, id, userID uuid.UUID) (*Order, error) {
	var o *Order
	err := s.store.WithinTx(ctx, func(tx Tx) error {
		var err error
		o, err = tx.Orders().GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if o.UserID != userID {
			return ErrForbidden
		}
		return s.applyTransition(ctx, tx, o, StatusCancelled, nil)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateProducts(ctx, o.Items)
	s.publish(ctx, EventStatusChanged, o)

	return o, nil
}

// applyTransition validates and applies a single status move plus its side
// effects inside the caller's transaction. An invalid move leaves the order
// untouched.
func (s *Service) applyTransition(ctx context.Context, tx Tx, o *Order, to Status, deliveryDate *time.Time) error {
	if !ValidTransition(o.Status, to) {
		return &InvalidTransitionError{From: o.Status, To: to}
	}

	switch to {
	case StatusDelivered:
		at := s.now()
		if deliveryDate != nil {
			at = *deliveryDate
		}
		o.DeliveryDate = &at

	case StatusCompleted:
		// Stock was consumed at checkout and stays consumed; only the
		// sold counters move.
		for _, it := range o.Items {
			if err := tx.Catalog().IncrementSold(ctx, it.ProductID, it.Quantity); err != nil {
				return errors.Wrap(err, "increment sold")
			}
		}

	case StatusCancelled:
		for _, it := range o.Items {
			if err := tx.Ledger().Release(ctx, it.ProductID, it.ColorID, it.Quantity); err != nil {
				return errors.Wrap(err, "release stock")
			}
		}
	}

	o.Status = to
	return tx.Orders().Update(ctx, o)
}

// cleanupCart removes the ordered items from the user's cart. The order is
// already committed, so failures are logged and swallowed.
func (s *Service) cleanupCart(ctx context.Context, userID uuid.UUID, items []ItemRequest) {
	refs := make([]cart.ItemRef, len(items))
	for i, it := range items {
		refs[i] = cart.ItemRef{ProductID: it.ProductID, ColorID: it.ColorID}
	}
	if err := s.carts.RemoveItems(ctx, userID, refs); err != nil {
		zctx.From(ctx).Warn("cart cleanup failed after checkout",
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
	}
}

func (s *Service) invalidateProducts(ctx context.Context, items []Item) {
	for _, it := range items {
		if err := s.cache.InvalidateProduct(ctx, it.ProductID); err != nil {
			zctx.From(ctx).Warn("product cache invalidation failed",
				zap.Int64("product_id", it.ProductID),
				zap.Error(err),
			)
		}
	}
}

func (s *Service) publish(ctx context.Context, eventType string, o *Order) {
	ev := Event{
		Type:    eventType,
		OrderID: o.ID,
		UserID:  o.UserID,
		Status:  o.Status,
		Total:   o.TotalAmount,
		At:      s.now(),
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		zctx.From(ctx).Warn("order event publish failed",
			zap.String("type", eventType),
			zap.String("order_id", o.ID.String()),
			zap.Error(err),
		)
	}
}
