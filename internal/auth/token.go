package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vaughan-dsouza/fileshelf/internal/models"
)

// TokenTTL is the fixed lifetime of a session token.
const TokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid token")

// Claims is the session token payload.
type Claims struct {
	UserID int64       `json:"id"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() models.Identity {
	return models.Identity{UserID: c.UserID, Role: c.Role}
}

// GenerateToken signs {id, role} with HS256, valid for TokenTTL from now.
func GenerateToken(userID int64, role models.Role, secret []byte, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("secret not configured")
	}

	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks signature, algorithm and expiry against now. Every
// failure wraps ErrInvalidToken.
func VerifyToken(tokenStr string, secret []byte, now func() time.Time) (*Claims, error) {
	if len(secret) == 0 {
		return nil, errors.New("secret not configured")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(*jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !claims.Role.Valid() || claims.UserID <= 0 {
		return nil, fmt.Errorf("%w: bad payload", ErrInvalidToken)
	}

	return &claims, nil
}
