package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lehoangvu/techstore/internal/domain/order"
)

type orderItemRequest struct {
	ProductID int64 `json:"productId"`
	ColorID   int64 `json:"colorId"`
	Quantity  int   `json:"quantity"`
}

type createOrderRequest struct {
	PaymentMethod string             `json:"paymentMethod"`
	Items         []orderItemRequest `json:"items"`
}

type updateStatusRequest struct {
	Status       string     `json:"status"`
	DeliveryDate *time.Time `json:"deliveryDate,omitempty"`
}

type orderItemView struct {
	ProductID     int64   `json:"productId"`
	ColorID       int64   `json:"colorId"`
	Quantity      int     `json:"quantity"`
	UnitPrice     float64 `json:"unitPrice"`
	DiscountLabel string  `json:"discountLabel,omitempty"`
}

type orderView struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"userId"`
	Status        order.Status    `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	ShippingFee   float64         `json:"shippingFee"`
	TotalAmount   float64         `json:"totalAmount"`
	OrderDate     time.Time       `json:"orderDate"`
	DeliveryDate  *time.Time      `json:"deliveryDate,omitempty"`
	Items         []orderItemView `json:"items"`
}

func toOrderView(o *order.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{
			ProductID:     it.ProductID,
			ColorID:       it.ColorID,
			Quantity:      it.Quantity,
			UnitPrice:     it.UnitPrice.InexactFloat64(),
			DiscountLabel: it.DiscountLabel,
		}
	}
	return orderView{
		ID:            o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		ShippingFee:   o.ShippingFee.InexactFloat64(),
		TotalAmount:   o.TotalAmount.InexactFloat64(),
		OrderDate:     o.OrderDate,
		DeliveryDate:  o.DeliveryDate,
		Items:         items,
	}
}

func toOrderViews(orders []order.Order) []orderView {
	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = toOrderView(&orders[i])
	}
	return views
}

// CreateOrder handles POST /api/orders: checkout of the listed items for
// the authenticated user.
func (h *Handler) CreateOrder(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}

	var req createOrderRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{
			ProductID: it.ProductID,
			ColorID:   it.ColorID,
			Quantity:  it.Quantity,
		}
	}

	o, err := h.orders.CreateOrder(c.Request().Context(), order.CreateRequest{
		UserID:        ident.UserID,
		PaymentMethod: req.PaymentMethod,
		Items:         items,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderView(o))
}

type createOrderFromCartRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// CreateOrderFromCart handles POST /api/orders/from-cart: checkout of the
// authenticated user's entire cart.
func (h *Handler) CreateOrderFromCart(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}

	var req createOrderFromCartRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	o, err := h.orders.CreateOrderFromCart(c.Request().Context(), ident.UserID, req.PaymentMethod)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderView(o))
}

// ListOrders handles GET /api/orders: the caller's full order history.
func (h *Handler) ListOrders(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.ListByUser(c.Request().Context(), ident.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderViews(orders))
}

// ListCurrentOrders handles GET /api/orders/current: the caller's orders
// still in a non-terminal status.
func (h *Handler) ListCurrentOrders(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	orders, err := h.orders.ListCurrentByUser(c.Request().Context(), ident.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderViews(orders))
}

// GetOrder handles GET /api/orders/:id. Users see only their own orders;
// admins see any.
func (h *Handler) GetOrder(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid order id")
	}

	o, err := h.orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	if !ident.IsAdmin() && o.UserID != ident.UserID {
		return writeError(c, order.ErrForbidden)
	}
	return c.JSON(http.StatusOK, toOrderView(o))
}

// CancelOrder handles POST /api/orders/:id/cancel for the owning user.
func (h *Handler) CancelOrder(c echo.Context) error {
	ident, err := identity(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid order id")
	}

	o, err := h.orders.Cancel(c.Request().Context(), id, ident.UserID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderView(o))
}

// AdminListOrders handles GET /api/admin/orders: every order in the store.
func (h *Handler) AdminListOrders(c echo.Context) error {
	orders, err := h.orders.ListAll(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderViews(orders))
}

// UpdateOrderStatus handles PATCH /api/admin/orders/:id/status, moving an
// order along the lifecycle graph.
func (h *Handler) UpdateOrderStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid order id")
	}

	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}
	to := order.Status(req.Status)
	if !to.Valid() {
		return respondError(c, http.StatusBadRequest, "unknown status "+req.Status)
	}

	o, err := h.orders.UpdateStatus(c.Request().Context(), id, to, req.DeliveryDate)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderView(o))
}
