package middlewares

import (
	"context"
	"strings"
	"time"

	"github.com/geocoder89/bootcamphub/internal/actorctx"
	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// TokenCookie is the cookie a session token may arrive in when no bearer
// header is present.
const TokenCookie = "token"

const msgNotAuthorized = "Not authorized to access this route"

// Keep these small interfaces so tests can fake them easily.
type TokenVerifier interface {
	VerifySessionToken(token string) (string, error)
}

type PrincipalLoader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// Guard authenticates requests and checks roles.
type Guard struct {
	tokens TokenVerifier
	users  PrincipalLoader
}

func NewGuard(tokens TokenVerifier, users PrincipalLoader) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Protect requires a valid session token and attaches its principal.
func (g *Guard) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := tokenFrom(c)
		if raw == "" {
			abortWith(c, apperr.Authentication(msgNotAuthorized))
			return
		}

		id, err := g.tokens.VerifySessionToken(raw)
		if err != nil {
			abortWith(c, apperr.Authentication(msgNotAuthorized))
			return
		}

		cctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		u, err := g.users.GetByID(cctx, id)
		if err != nil {
			// a token for a deleted user is as good as no token
			abortWith(c, apperr.Wrap(apperr.KindAuthentication, msgNotAuthorized, err))
			return
		}

		c.Set(CtxPrincipal, u)
		c.Request = c.Request.WithContext(actorctx.WithPrincipal(c.Request.Context(), u))

		c.Next()
	}
}

// tokenFrom prefers the bearer header and falls back to the token cookie.
// The cookie is only read when no bearer header was sent; an empty bearer
// token yields "".
func tokenFrom(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	}

	raw, err := c.Cookie(TokenCookie)
	if err != nil {
		return ""
	}
	return raw
}

// Optional helper so handlers don't need to know the magic key.

func PrincipalFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxPrincipal)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}

func abortWith(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
