package middlewares

import (
	"log/slog"
	"net/http"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/gin-gonic/gin"
)

// ErrorHandler renders the last error recorded on the context as
// {"success":false,"error":msg}. Internal detail only reaches the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		e := apperr.From(c.Errors.Last().Err)
		status := e.Kind.Status()

		if status >= 500 {
			reqID, _ := c.Get(CtxRequestID)
			slog.Default().ErrorContext(c.Request.Context(), "request_failed",
				"kind", e.Kind.String(),
				"route", c.FullPath(),
				"request_id", reqID,
				"err", e.Error(),
			)
		}

		c.JSON(status, gin.H{
			"success": false,
			"error":   e.Message,
		})
	}
}

// Recovery turns a panic into an internal error response.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		slog.Default().ErrorContext(c.Request.Context(), "panic_recovered", "panic", recovered, "route", c.FullPath())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Server Error",
		})
	})
}
