package middlewares

import (
	"fmt"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// Authorize lets the request through only when the principal holds one of
// roles. It must run after Protect.
func (g *Guard) Authorize(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := PrincipalFromContext(c)
		if !ok {
			abortWith(c, apperr.Authentication(msgNotAuthorized))
			return
		}

		if !u.HasRole(roles...) {
			abortWith(c, apperr.Authorization(fmt.Sprintf("User role %s is not authorized to access this route", u.Role)))
			return
		}

		c.Next()
	}
}
