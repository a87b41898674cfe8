package router

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	authhandler "vivimap/internal/feature/auth/transport/handler"
	memhandler "vivimap/internal/feature/memories/transport/handler"
	searchhandler "vivimap/internal/feature/search/transport/handler"
	"vivimap/internal/platform/http/handler"
	jwtmw "vivimap/internal/platform/jwt"
	"vivimap/internal/shared/ratelimiter"
)

// Handlers groups the feature handlers mounted by NewRouter.
type Handlers struct {
	Auth     *authhandler.AuthHandler
	Memories *memhandler.MemoriesHandler
	Search   *searchhandler.SearchHandler
	Health   gin.HandlerFunc
}

type Options struct {
	Tokens     jwtmw.TokenParser
	CookieName string

	// AuthLimiter is shared by every /api/auth route.
	AuthLimiter ratelimiter.Limiter
	LimitWindow time.Duration

	// StaticDir holds the built client. Empty disables static serving.
	StaticDir      string
	UploadsEnabled bool
	// TrustedProxies feed ClientIP; nil trusts none.
	TrustedProxies []string
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	r := gin.Default()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		slog.Warn("invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.GET("/healthz", h.Health)
	r.HEAD("/healthz", h.Health)
	r.OPTIONS("/healthz", h.Health)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.Use(ratelimiter.Middleware(opts.AuthLimiter, opts.LimitWindow))
	{
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/verify-email", h.Auth.VerifyEmail)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/resend-verification", h.Auth.ResendVerification)
		auth.GET("/session", h.Auth.Session)
		auth.POST("/logout", h.Auth.Logout)
	}

	api.GET("/memories", h.Memories.List)
	api.GET("/memories/placement", h.Memories.Placement)
	api.GET("/search", h.Search.Search)

	// session cookie required
	protected := api.Group("/")
	protected.Use(jwtmw.AuthRequired(opts.Tokens, opts.CookieName))
	{
		protected.POST("/memories", h.Memories.Create)
		if opts.UploadsEnabled {
			protected.POST("/memories/uploads", h.Memories.PresignUpload)
		}
	}

	r.NoRoute(handler.SPA(opts.StaticDir))
	return r
}
