package jwtmw

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, forged and expired tokens alike.
var ErrInvalidToken = errors.New("invalid token")

// UserClaims is the public user payload carried by the session token.
type UserClaims struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Username string `json:"username"`
}

// Claims is the full token body.
type Claims struct {
	User UserClaims `json:"user"`
	jwt.RegisteredClaims
}

// Generator issues and verifies HS256 session tokens.
type Generator struct {
	secret     []byte
	expiration time.Duration
	now        func() time.Time
}

// NewGenerator creates a new JWT generator with the provided secret and expiration duration.
func NewGenerator(secret string, expiration time.Duration) *Generator {
	return &Generator{
		secret:     []byte(secret),
		expiration: expiration,
		now:        time.Now,
	}
}

// Expiration is the lifetime of issued tokens, also used as the cookie max age.
func (g *Generator) Expiration() time.Duration { return g.expiration }

// GenerateToken creates a signed JWT token for the given user.
func (g *Generator) GenerateToken(user UserClaims) (string, error) {
	now := g.now()
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(g.expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(g.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// ParseToken verifies the signature and expiry of tokenStr. Only HMAC
// signatures are accepted.
func (g *Generator) ParseToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return g.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(g.now))
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.User.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
