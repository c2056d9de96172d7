package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/labstack/echo/v4"

	"github.com/lehoangvu/techstore/internal/domain/catalog"
	"github.com/lehoangvu/techstore/internal/domain/order"
)

// ErrorResponse is the JSON error envelope all API errors share.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// writeError maps a domain error to its HTTP status and envelope. Unknown
// errors bubble up to echo's error handler as a 500.
func writeError(c echo.Context, err error) error {
	var variantErr *catalog.VariantNotFoundError

	switch {
	case errors.Is(err, order.ErrNotFound), errors.Is(err, catalog.ErrNotFound):
		return respondError(c, http.StatusNotFound, "not found")

	// A missing color variant is an absent resource like a missing
	// product, not a malformed request.
	case errors.As(err, &variantErr):
		return respondError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, order.ErrForbidden):
		return respondError(c, http.StatusForbidden, "order belongs to another user")

	case errors.Is(err, order.ErrEmptyItems):
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	var (
		stockErr      *order.InsufficientStockError
		qtyErr        *order.InvalidQuantityError
		transitionErr *order.InvalidTransitionError
		inactiveErr   *catalog.InactiveProductError
	)
	switch {
	case errors.As(err, &stockErr),
		errors.As(err, &qtyErr),
		errors.As(err, &transitionErr),
		errors.As(err, &inactiveErr):
		return respondError(c, http.StatusBadRequest, err.Error())
	}

	return err
}

func respondError(c echo.Context, code int, message string) error {
	return c.JSON(code, ErrorResponse{Code: code, Message: message})
}
