package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lehoangvu/techstore/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, user_id, status, payment_method, shipping_fee, total_amount, order_date, delivery_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertOrderItemSQL = `INSERT INTO order_items (id, order_id, product_id, color_id, quantity, unit_price, discount_label)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectOrderSQL = `SELECT id, user_id, status, payment_method, shipping_fee, total_amount, order_date, delivery_date
		FROM orders WHERE id = $1`

	selectOrderForUpdateSQL = selectOrderSQL + ` FOR UPDATE`

	updateOrderSQL = `UPDATE orders SET status = $2, delivery_date = $3 WHERE id = $1`

	listOrdersSQL = `SELECT id, user_id, status, payment_method, shipping_fee, total_amount, order_date, delivery_date
		FROM orders ORDER BY order_date DESC, id`

	listOrdersByUserSQL = `SELECT id, user_id, status, payment_method, shipping_fee, total_amount, order_date, delivery_date
		FROM orders WHERE user_id = $1 ORDER BY order_date DESC, id`

	listCurrentOrdersByUserSQL = `SELECT id, user_id, status, payment_method, shipping_fee, total_amount, order_date, delivery_date
		FROM orders WHERE user_id = $1 AND status NOT IN ('completed', 'cancelled', 'refunded')
		ORDER BY order_date DESC, id`

	listOrderItemsSQL = `SELECT id, order_id, product_id, color_id, quantity, unit_price, discount_label
		FROM order_items WHERE order_id = ANY($1) ORDER BY order_id, id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	db DB
}

// NewOrderRepository returns an OrderRepository over the given querier.
func NewOrderRepository(db DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists the order and its items. Items go out as one batch.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	_, err := r.db.Exec(ctx, insertOrderSQL,
		o.ID, o.UserID, o.Status, o.PaymentMethod,
		o.ShippingFee, o.TotalAmount, o.OrderDate, o.DeliveryDate,
	)
	if err != nil {
		return fmt.Errorf("inserting order %s: %w", o.ID, err)
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		batch.Queue(insertOrderItemSQL,
			it.ID, o.ID, it.ProductID, it.ColorID,
			it.Quantity, it.UnitPrice, it.DiscountLabel,
		)
	}
	if err := r.db.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting items for order %s: %w", o.ID, err)
	}
	return nil
}

// GetByID returns one order with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.get(ctx, selectOrderSQL, id)
}

// GetByIDForUpdate returns one order with its items, holding an exclusive
// row lock for the rest of the enclosing transaction.
func (r *OrderRepository) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.get(ctx, selectOrderForUpdateSQL, id)
}

func (r *OrderRepository) get(ctx context.Context, query string, id uuid.UUID) (*order.Order, error) {
	rows, err := r.db.Query(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %s: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %s: %w", id, err)
	}

	if err := r.attachItems(ctx, []order.Order{o}); err != nil {
		return nil, err
	}
	return &o, nil
}

// Update persists status and delivery date. Frozen fields stay untouched.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.db.Exec(ctx, updateOrderSQL, o.ID, o.Status, o.DeliveryDate)
	if err != nil {
		return fmt.Errorf("updating order %s: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// ListAll returns every order, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]order.Order, error) {
	return r.list(ctx, listOrdersSQL)
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return r.list(ctx, listOrdersByUserSQL, userID)
}

// ListCurrentByUser returns the user's orders still in a non-terminal
// status, newest first.
func (r *OrderRepository) ListCurrentByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error) {
	return r.list(ctx, listCurrentOrdersByUserSQL, userID)
}

func (r *OrderRepository) list(ctx context.Context, query string, args ...any) ([]order.Order, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}
	if err := r.attachItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachItems loads items for the given orders in a single query.
func (r *OrderRepository) attachItems(ctx context.Context, orders []order.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	byID := make(map[uuid.UUID]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	rows, err := r.db.Query(ctx, listOrderItemsSQL, ids)
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	err = forEachRow(rows, func(row pgx.CollectableRow) error {
		var (
			it      order.Item
			orderID uuid.UUID
		)
		if err := row.Scan(&it.ID, &orderID, &it.ProductID, &it.ColorID, &it.Quantity, &it.UnitPrice, &it.DiscountLabel); err != nil {
			return err
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("listing order items: %w", err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.UserID, &o.Status, &o.PaymentMethod,
		&o.ShippingFee, &o.TotalAmount, &o.OrderDate, &o.DeliveryDate)
	return o, err
}
