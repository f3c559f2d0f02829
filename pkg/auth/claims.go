package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/enums"
)

// AccessTokenPayload is the caller identity to embed in a new token.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Role   enums.UserRole
	JTI    string
}

// AccessTokenClaims is the decoded bearer token. user_id and role are
// private claims; sub repeats the user id for generic tooling.
type AccessTokenClaims struct {
	UserID uuid.UUID      `json:"user_id"`
	Role   enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}

func (c *AccessTokenClaims) identity() error {
	if c.UserID == uuid.Nil {
		return fmt.Errorf("%w: user_id missing", ErrInvalidToken)
	}
	if !c.Role.IsValid() {
		return fmt.Errorf("%w: unknown role %q", ErrInvalidToken, c.Role)
	}
	return nil
}
