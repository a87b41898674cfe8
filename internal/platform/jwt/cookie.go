package jwtmw

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Cookie writes and clears the httpOnly session cookie.
type Cookie struct {
	Name   string
	MaxAge time.Duration
	// Secure is set in production only so local HTTP development works.
	Secure bool
}

// Set stores token in the cookie for MaxAge.
func (ck Cookie) Set(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(ck.Name, token, int(ck.MaxAge.Seconds()), "/", "", ck.Secure, true)
}

// Clear expires the cookie immediately.
func (ck Cookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(ck.Name, "", -1, "/", "", ck.Secure, true)
}
