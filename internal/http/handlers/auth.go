package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/geocoder89/bootcamphub/internal/config"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/http/middlewares"
	"github.com/geocoder89/bootcamphub/internal/notifications"
	"github.com/geocoder89/bootcamphub/internal/security"
	"github.com/gin-gonic/gin"
)

const (
	msgInvalidCredentials = "Invalid credentials"
	msgInvalidResetToken  = "Invalid token"
)

type UserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type UserWriter interface {
	Create(ctx context.Context, nu user.NewUser) (user.User, error)
	Update(ctx context.Context, id string, c user.Changes) (user.User, error)
}

// ResetTokenStore holds the hashed reset token of a user.
type ResetTokenStore interface {
	SetResetToken(ctx context.Context, id, hash string, expire time.Time) error
	ClearResetToken(ctx context.Context, id string) error
	GetByResetToken(ctx context.Context, hash string, now time.Time) (user.User, error)
	ResetPassword(ctx context.Context, id, passwordHash string) (user.User, error)
}

type AuthUsers interface {
	UserReader
	UserWriter
	ResetTokenStore
}

type SessionIssuer interface {
	IssueSessionToken(principalID string) (string, error)
}

type AuthHandler struct {
	users  AuthUsers
	tokens SessionIssuer
	mailer notifications.Mailer
	lists  *Lists
	cfg    config.Config
	now    func() time.Time
}

func NewAuthHandler(users AuthUsers, tokens SessionIssuer, mailer notifications.Mailer, lists *Lists, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		mailer: mailer,
		lists:  lists,
		cfg:    cfg,
		now:    time.Now,
	}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		fail(ctx, apperr.Internal(err))
		return
	}

	// default role for new users
	role := req.Role
	if role == "" {
		role = user.RoleUser
	}

	u, err := h.users.Create(cctx, user.NewUser{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		Role:         role,
		PasswordHash: hash,
	})

	if err != nil {
		fail(ctx, classify(err, ""))
		return
	}

	h.lists.invalidate(resourceUsers)
	h.sendTokenResponse(ctx, http.StatusOK, u)
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	if req.Email == "" || req.Password == "" {
		fail(ctx, apperr.Validation("Please provide an email and password"))
		return
	}

	// short timeout for DB lookup
	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	found, err := h.users.GetByEmail(cctx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			fail(ctx, apperr.Authentication(msgInvalidCredentials))
			return
		}
		fail(ctx, apperr.Internal(err))
		return
	}

	// same message as an unknown email, no account enumeration
	if !security.VerifyPassword(found.PasswordHash, req.Password) {
		fail(ctx, apperr.Authentication(msgInvalidCredentials))
		return
	}

	h.sendTokenResponse(ctx, http.StatusOK, found)
}

// Logout expires the token cookie. Bearer tokens stay valid until they expire.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(middlewares.TokenCookie, "", -1, "/", "", h.cfg.IsProduction(), true)

	respondOK(ctx, gin.H{})
}

func (h *AuthHandler) Me(ctx *gin.Context) {
	u, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		fail(ctx, apperr.Authentication("Not authorized to access this route"))
		return
	}

	respondOK(ctx, u)
}

func (h *AuthHandler) UpdateDetails(ctx *gin.Context) {
	principal, _ := middlewares.PrincipalFromContext(ctx)

	var req user.UpdateDetailsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	changes := user.Changes{Name: req.Name}
	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		changes.Email = &email
	}

	u, err := h.users.Update(ctx.Request.Context(), principal.ID, changes)
	if err != nil {
		fail(ctx, classify(err, principal.ID))
		return
	}

	h.lists.invalidate(resourceUsers)
	respondOK(ctx, u)
}

func (h *AuthHandler) UpdatePassword(ctx *gin.Context) {
	principal, _ := middlewares.PrincipalFromContext(ctx)

	var req user.UpdatePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := context.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	// re-read, the stored hash may have changed since the guard loaded the principal
	current, err := h.users.GetByID(cctx, principal.ID)
	if err != nil {
		fail(ctx, classify(err, principal.ID))
		return
	}

	if !security.VerifyPassword(current.PasswordHash, req.CurrentPassword) {
		fail(ctx, apperr.Authentication("Password is incorrect"))
		return
	}

	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		fail(ctx, apperr.Internal(err))
		return
	}

	u, err := h.users.Update(cctx, current.ID, user.Changes{PasswordHash: &hash})
	if err != nil {
		fail(ctx, classify(err, current.ID))
		return
	}

	h.sendTokenResponse(ctx, http.StatusOK, u)
}

// ForgotPassword stores a hashed reset token and mails the plaintext. When
// the mail cannot be sent the stored token is cleared again.
func (h *AuthHandler) ForgotPassword(ctx *gin.Context) {
	var req user.ForgotPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	reqCtx := ctx.Request.Context()

	u, err := h.users.GetByEmail(reqCtx, strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			fail(ctx, apperr.NotFound("There is no user with that email"))
			return
		}
		fail(ctx, apperr.Internal(err))
		return
	}

	tok, err := security.IssueResetToken(h.now())
	if err != nil {
		fail(ctx, apperr.Internal(err))
		return
	}

	if err := h.users.SetResetToken(reqCtx, u.ID, tok.Hash, tok.ExpiresAt); err != nil {
		fail(ctx, classify(err, u.ID))
		return
	}

	resetURL := h.baseURL(ctx) + "/api/v1/auth/resetpassword/" + tok.Plain

	err = h.mailer.Send(reqCtx, notifications.Message{
		To:      u.Email,
		Subject: "Password reset token",
		Text: fmt.Sprintf(
			"You are receiving this email because you (or someone else) has requested the reset of a password. Please make a PUT request to: \n\n %s",
			resetURL,
		),
	})

	if err != nil {
		// an undelivered token must not stay usable
		if clearErr := h.users.ClearResetToken(context.WithoutCancel(reqCtx), u.ID); clearErr != nil {
			slog.Default().ErrorContext(reqCtx, "reset_token_rollback_failed", "user_id", u.ID, "err", clearErr)
		}
		fail(ctx, apperr.Delivery("Email could not be sent", err))
		return
	}

	respondOK(ctx, "Email sent")
}

func (h *AuthHandler) ResetPassword(ctx *gin.Context) {
	presented := ctx.Param("resettoken")

	var req user.ResetPasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	now := h.now()
	reqCtx := ctx.Request.Context()

	u, err := h.users.GetByResetToken(reqCtx, security.HashResetToken(presented), now)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			fail(ctx, apperr.Validation(msgInvalidResetToken))
			return
		}
		fail(ctx, apperr.Internal(err))
		return
	}

	if u.ResetPasswordToken == nil || u.ResetPasswordExpire == nil ||
		!security.MatchResetToken(presented, *u.ResetPasswordToken, *u.ResetPasswordExpire, now) {
		fail(ctx, apperr.Validation(msgInvalidResetToken))
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		fail(ctx, apperr.Internal(err))
		return
	}

	id := u.ID

	u, err = h.users.ResetPassword(reqCtx, id, hash)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	h.sendTokenResponse(ctx, http.StatusOK, u)
}

func (h *AuthHandler) sendTokenResponse(ctx *gin.Context, status int, u user.User) {
	token, err := h.tokens.IssueSessionToken(u.ID)
	if err != nil {
		fail(ctx, apperr.Internal(err))
		return
	}

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.TokenCookie,
		token,
		int(h.cfg.CookieTTL().Seconds()),
		"/",
		"",
		h.cfg.IsProduction(),
		true,
	)

	ctx.JSON(status, gin.H{
		"success": true,
		"token":   token,
	})
}

func (h *AuthHandler) baseURL(ctx *gin.Context) string {
	if h.cfg.PublicBaseURL != "" {
		return strings.TrimRight(h.cfg.PublicBaseURL, "/")
	}

	scheme := "http"
	if ctx.Request.TLS != nil || ctx.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + ctx.Request.Host
}
