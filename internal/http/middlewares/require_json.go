package middlewares

import (
	"net/http"
	"strings"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// RequireJSON rejects write requests whose body is not JSON. Routes listed in
// except (gin full paths) are skipped, e.g. multipart uploads.
func RequireJSON(except ...string) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(except))
	for _, p := range except {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.FullPath()]; ok {
			c.Next()
			return
		}

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			// bodiless writes, e.g. PUT with no payload, are left to the handler
			if c.Request.ContentLength == 0 {
				break
			}
			ct := c.GetHeader("Content-Type")
			// allow "application/json; charset=utf-8"
			if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				abortWith(c, apperr.Validation("Content-Type must be application/json"))
				return
			}
		}
		c.Next()
	}
}
