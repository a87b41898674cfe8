package jwtmw

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const ContextUser = "user"

// TokenParser verifies a session token.
type TokenParser interface {
	ParseToken(tokenStr string) (*Claims, error)
}

// AuthRequired returns a Gin middleware that reads the session cookie,
// verifies it and stores the user claims in the context.
func AuthRequired(parser TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(cookieName)
		if err != nil || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, no token provided"})
			return
		}

		claims, err := parser.ParseToken(tokenStr)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Not authorized, token failed"})
			return
		}

		c.Set(ContextUser, claims.User)
		c.Next()
	}
}

// UserFromContext returns the claims stored by AuthRequired.
func UserFromContext(c *gin.Context) (UserClaims, bool) {
	v, ok := c.Get(ContextUser)
	if !ok {
		return UserClaims{}, false
	}
	u, ok := v.(UserClaims)
	return u, ok
}
