package handler

import (
	"net/http"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lehoangvu/techstore/internal/domain/auth"
)

// JWT returns the auth middleware validating HS256 bearer tokens and
// parsing their claims into auth.TokenClaims.
func JWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(auth.TokenClaims)
		},
	})
}

// AdminOnly rejects callers without the admin role. Must run after JWT.
func AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := identity(c)
		if err != nil {
			return err
		}
		if !id.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin role required")
		}
		return next(c)
	}
}

// identity extracts the validated caller identity set by the JWT middleware.
func identity(c echo.Context) (auth.Identity, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	claims, ok := token.Claims.(*auth.TokenClaims)
	if !ok {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "malformed claims")
	}
	id, err := auth.IdentityFromClaims(claims)
	if err != nil {
		return auth.Identity{}, echo.NewHTTPError(http.StatusUnauthorized, "invalid claims")
	}
	return id, nil
}
