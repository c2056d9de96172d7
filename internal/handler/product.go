package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-faster/sdk/zctx"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/lehoangvu/techstore/internal/domain/catalog"
	"github.com/lehoangvu/techstore/internal/domain/discount"
)

type colorVariantView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

type productView struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	Price         float64            `json:"price"`
	BasePrice     float64            `json:"basePrice"`
	DiscountLabel string             `json:"discountLabel,omitempty"`
	IsActive      bool               `json:"isActive"`
	Sold          int64              `json:"sold"`
	Colors        []colorVariantView `json:"colors"`
}

func (h *Handler) toProductView(p *catalog.Product) productView {
	price, label := discount.Best(p.BasePrice, p.Discounts, h.now())

	colors := make([]colorVariantView, len(p.Colors))
	for i, c := range p.Colors {
		colors[i] = colorVariantView{ID: c.ID, Name: c.Name, Quantity: c.Quantity}
	}
	return productView{
		ID:            p.ID,
		Name:          p.Name,
		Price:         price.InexactFloat64(),
		BasePrice:     p.BasePrice.InexactFloat64(),
		DiscountLabel: label,
		IsActive:      p.IsActive,
		Sold:          p.Sold,
		Colors:        colors,
	}
}

// ListProducts handles GET /api/products with discounted prices rendered
// against the current time.
func (h *Handler) ListProducts(c echo.Context) error {
	products, err := h.products.List(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	views := make([]productView, len(products))
	for i := range products {
		views[i] = h.toProductView(&products[i])
	}
	return c.JSON(http.StatusOK, views)
}

// GetProduct handles GET /api/products/:id, reading through the view cache
// when one is configured. Cache failures fall back to the catalog.
func (h *Handler) GetProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid product id")
	}
	ctx := c.Request().Context()

	if h.cache != nil {
		if payload, ok := h.cache.GetView(ctx, id); ok {
			return c.JSONBlob(http.StatusOK, payload)
		}
	}

	p, err := h.products.GetByID(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	view := h.toProductView(p)

	if h.cache != nil {
		payload, err := json.Marshal(view)
		if err == nil {
			err = h.cache.SetView(ctx, id, payload)
		}
		if err != nil {
			zctx.From(ctx).Warn("product view cache write failed",
				zap.Int64("product_id", id),
				zap.Error(err),
			)
		}
	}
	return c.JSON(http.StatusOK, view)
}
