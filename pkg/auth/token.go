// Package auth mints and verifies the HS256 access tokens that carry a
// caller's user id and role.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/angelmondragon/fooddash-backend/pkg/config"
)

// clockSkew tolerates small clock drift between the identity service and
// this API.
const clockSkew = 30 * time.Second

var (
	ErrMisconfigured = errors.New("jwt configuration incomplete")
	ErrInvalidToken  = errors.New("invalid access token")
)

var signingMethod = jwt.SigningMethodHS256

// MintAccessToken signs payload with cfg. Customer tokens normally come from
// the identity service; this serves tooling and tests holding the same
// secret.
func MintAccessToken(cfg config.JWTConfig, now time.Time, payload AccessTokenPayload) (string, error) {
	if cfg.Secret == "" || cfg.Issuer == "" || cfg.ExpirationMinutes <= 0 {
		return "", ErrMisconfigured
	}
	claims := AccessTokenClaims{UserID: payload.UserID, Role: payload.Role}
	if err := claims.identity(); err != nil {
		return "", err
	}

	jti := strings.TrimSpace(payload.JTI)
	if jti == "" {
		jti = uuid.NewString()
	}
	claims.RegisteredClaims = jwt.RegisteredClaims{
		ID:        jti,
		Issuer:    cfg.Issuer,
		Subject:   payload.UserID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(cfg.ExpirationMinutes) * time.Minute)),
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies signature, issuer and expiry, then requires a
// known role and a user id. Every rejection wraps ErrInvalidToken.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessTokenClaims, error) {
	if cfg.Secret == "" {
		return nil, ErrMisconfigured
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{signingMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(clockSkew),
	)

	claims := &AccessTokenClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return []byte(cfg.Secret), nil
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if err := claims.identity(); err != nil {
		return nil, err
	}
	return claims, nil
}
