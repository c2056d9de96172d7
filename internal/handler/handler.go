// Package handler exposes the HTTP API: public catalog reads, user order
// operations behind JWT auth, and admin order management behind the admin
// role. It translates between JSON DTOs and the domain layer.
package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/lehoangvu/techstore/internal/domain/catalog"
	"github.com/lehoangvu/techstore/internal/domain/order"
)

// OrderService is the orchestrator surface the handlers call.
type OrderService interface {
	CreateOrder(ctx context.Context, req order.CreateRequest) (*order.Order, error)
	CreateOrderFromCart(ctx context.Context, userID uuid.UUID, paymentMethod string) (*order.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*order.Order, error)
	ListAll(ctx context.Context) ([]order.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	ListCurrentByUser(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, to order.Status, deliveryDate *time.Time) (*order.Order, error)
	Cancel(ctx context.Context, id, userID uuid.UUID) (*order.Order, error)
}

// ViewCache caches rendered product views. A nil cache disables caching.
type ViewCache interface {
	GetView(ctx context.Context, id int64) ([]byte, bool)
	SetView(ctx context.Context, id int64, payload []byte) error
}

// Handler wires HTTP routes to the order service and product catalog.
type Handler struct {
	orders   OrderService
	products catalog.Repository
	cache    ViewCache
	now      func() time.Time
}

// NewHandler constructs a Handler. cache may be nil.
func NewHandler(orders OrderService, products catalog.Repository, cache ViewCache) *Handler {
	return &Handler{
		orders:   orders,
		products: products,
		cache:    cache,
		now:      time.Now,
	}
}

// Register mounts all API routes on the given echo instance.
func (h *Handler) Register(e *echo.Echo, jwtSecret []byte) {
	api := e.Group("/api")

	api.GET("/products", h.ListProducts)
	api.GET("/products/:id", h.GetProduct)

	authed := api.Group("", JWT(jwtSecret))
	authed.POST("/orders", h.CreateOrder)
	authed.POST("/orders/from-cart", h.CreateOrderFromCart)
	authed.GET("/orders", h.ListOrders)
	authed.GET("/orders/current", h.ListCurrentOrders)
	authed.GET("/orders/:id", h.GetOrder)
	authed.POST("/orders/:id/cancel", h.CancelOrder)

	admin := api.Group("/admin", JWT(jwtSecret), AdminOnly)
	admin.GET("/orders", h.AdminListOrders)
	admin.PATCH("/orders/:id/status", h.UpdateOrderStatus)
}
