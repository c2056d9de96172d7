// Package auth carries the identity the surrounding auth layer establishes:
// a user ID and role extracted from JWT claims. Token issuance lives in the
// identity service, not here.
package auth

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Role scopes what an authenticated caller may do.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ErrInvalidClaims is returned when a token's claims are malformed.
var ErrInvalidClaims = errors.New("invalid token claims")

// TokenClaims is the JWT payload: subject is the user ID, role is the
// caller's access level.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the validated caller identity.
type Identity struct {
	UserID uuid.UUID
	Role   Role
}

// IsAdmin reports whether the caller holds the admin role.
func (id Identity) IsAdmin() bool { return id.Role == RoleAdmin }

// IdentityFromClaims validates and converts raw token claims.
func IdentityFromClaims(c *TokenClaims) (Identity, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, errors.Wrap(ErrInvalidClaims, "subject is not a user id")
	}

	role := Role(c.Role)
	if role != RoleUser && role != RoleAdmin {
		return Identity{}, errors.Wrap(ErrInvalidClaims, "unknown role")
	}

	return Identity{UserID: userID, Role: role}, nil
}

// SignToken mints an HS256 token for the given identity. Used by the seed
// tool and tests; production tokens come from the identity service with the
// same shape.
func SignToken(secret []byte, userID uuid.UUID, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
