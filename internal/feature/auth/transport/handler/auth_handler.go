// Package handler provides the HTTP handlers of the auth feature.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vivimap/internal/feature/auth/domain/entity"
	"vivimap/internal/feature/auth/transport/http/dto"
	"vivimap/internal/feature/auth/usecase"
	jwtmw "vivimap/internal/platform/jwt"
	"vivimap/internal/platform/logging"
	"vivimap/internal/platform/mail"
)

const msgInternal = "Internal server error."

// AuthUsecase is the auth flow as seen by the transport layer.
type AuthUsecase interface {
	Signup(ctx context.Context, in usecase.SignupInput) (*entity.PendingVerification, error)
	VerifyEmail(ctx context.Context, email, code string) (*usecase.AuthResult, error)
	Login(ctx context.Context, email, password string) (*usecase.LoginResult, error)
	ResendVerification(ctx context.Context, email string) (*entity.PendingVerification, error)
	Session(ctx context.Context, userID string) (*entity.User, error)
}

// EmailQueue accepts verification email tasks without blocking on delivery.
type EmailQueue interface {
	Enqueue(ctx context.Context, msg mail.VerificationEmail) error
}

// AuthHandler serves the /api/auth routes.
type AuthHandler struct {
	auth   AuthUsecase
	queue  EmailQueue
	tokens jwtmw.TokenParser
	cookie jwtmw.Cookie
}

// NewAuthHandler wires the usecase, the email queue and the session cookie.
func NewAuthHandler(auth AuthUsecase, queue EmailQueue, tokens jwtmw.TokenParser, cookie jwtmw.Cookie) *AuthHandler {
	return &AuthHandler{auth: auth, queue: queue, tokens: tokens, cookie: cookie}
}

// Signup registers an unverified user and emails a verification code after
// the 201 response is written.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup bind failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Invalid request body."})
		return
	}

	pending, err := h.auth.Signup(c.Request.Context(), usecase.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Username: req.Username,
	})
	if err != nil {
		var vErr *usecase.ValidationError
		switch {
		case errors.As(err, &vErr):
			c.JSON(http.StatusBadRequest, dto.MessageRes{Message: vErr.Message})
		case errors.Is(err, usecase.ErrEmailOrUsernameTaken):
			slog.Warn("signup conflict", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusConflict, dto.MessageRes{Message: "Email or username already in use."})
		default:
			slog.Error("signup failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: msgInternal})
		}
		return
	}

	slog.Info("user signup successful", "email", pending.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.MessageRes{Message: "User created. Please check your email for a verification code."})
	h.dispatch(c, pending)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req dto.VerifyEmailReq
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Code) == "" {
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Email and verification code are required."})
		return
	}

	res, err := h.auth.VerifyEmail(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidOrExpiredCode) {
			slog.Warn("email verification rejected", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Invalid or expired verification code."})
			return
		}
		slog.Error("email verification failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: msgInternal})
		return
	}

	h.cookie.Set(c, res.Token)
	slog.Info("email verified", "email", res.User.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserEnvelope(res.User))
}

// Login signs in verified users. Unverified users get 403 and a fresh code.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginReq
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Email and password are required."})
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCredentials) {
			// do not reveal whether the email exists
			slog.Warn("login failed", "email", req.Email, "remote_addr", c.ClientIP())
			c.JSON(http.StatusUnauthorized, dto.MessageRes{Message: "Invalid credentials."})
			return
		}
		slog.Error("login failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: msgInternal})
		return
	}

	if res.RequiresVerification() {
		slog.Info("login requires verification", "email", res.Pending.Email, "remote_addr", c.ClientIP())
		c.JSON(http.StatusForbidden, dto.VerificationRequiredRes{
			Message:              "Email not verified. We have sent you a new verification code.",
			RequiresVerification: true,
			Email:                res.Pending.Email,
		})
		h.dispatch(c, res.Pending)
		return
	}

	h.cookie.Set(c, res.Token)
	slog.Info("user login successful", "email", res.User.Email, "remote_addr", c.ClientIP())
	c.JSON(http.StatusOK, dto.NewUserEnvelope(res.User))
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req dto.ResendVerificationReq
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Email) == "" {
		c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Email is required."})
		return
	}

	pending, err := h.auth.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrUserNotFound):
			c.JSON(http.StatusNotFound, dto.MessageRes{Message: "User not found."})
		case errors.Is(err, usecase.ErrAlreadyVerified):
			c.JSON(http.StatusBadRequest, dto.MessageRes{Message: "Email is already verified."})
		default:
			slog.Error("resend verification failed", "error", err, "remote_addr", c.ClientIP())
			c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: msgInternal})
		}
		return
	}

	c.JSON(http.StatusOK, dto.MessageRes{Message: "A new verification code has been sent to your email."})
	h.dispatch(c, pending)
}

// Session returns the user behind the session cookie, read fresh from the store.
func (h *AuthHandler) Session(c *gin.Context) {
	tokenStr, err := c.Cookie(h.cookie.Name)
	if err != nil || tokenStr == "" {
		c.JSON(http.StatusUnauthorized, dto.MessageRes{Message: "Not authenticated."})
		return
	}
	claims, err := h.tokens.ParseToken(tokenStr)
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.MessageRes{Message: "Invalid token."})
		return
	}

	user, err := h.auth.Session(c.Request.Context(), claims.User.ID)
	if err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, dto.MessageRes{Message: "User not found."})
			return
		}
		slog.Error("session lookup failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusInternalServerError, dto.MessageRes{Message: msgInternal})
		return
	}
	c.JSON(http.StatusOK, dto.NewUserEnvelope(user))
}

// Logout always succeeds.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.cookie.Clear(c)
	c.JSON(http.StatusOK, dto.MessageRes{Message: "Logged out successfully"})
}

// dispatch enqueues the verification email detached from the request, so a
// client disconnect cannot cancel it and a failure cannot change the response.
func (h *AuthHandler) dispatch(c *gin.Context, p *entity.PendingVerification) {
	// the client has its response before the enqueue runs
	c.Writer.Flush()

	ctx := context.WithoutCancel(c.Request.Context())
	msg := mail.VerificationEmail{To: p.Email, Code: p.Code, ExpiresAt: p.ExpiresAt}
	if err := h.queue.Enqueue(ctx, msg); err != nil {
		logging.Critical(ctx, "failed to enqueue verification email", "email", p.Email, "error", err)
	}
}
