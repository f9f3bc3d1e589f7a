package handlers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Aggregates recomputes the derived bootcamp fields after child writes.
type Aggregates interface {
	RecomputeAverageCost(ctx context.Context, bootcampID string) error
	RecomputeAverageRating(ctx context.Context, bootcampID string) error
}

// mustOwn allows the owner of a record and admins. It records a 403 and
// returns false otherwise.
func mustOwn(ctx *gin.Context, ownerID, action string) (user.User, bool) {
	principal, ok := middlewares.PrincipalFromContext(ctx)
	if !ok {
		fail(ctx, apperr.Authentication("Not authorized to access this route"))
		return user.User{}, false
	}

	if ownerID != principal.ID && principal.Role != user.RoleAdmin {
		fail(ctx, apperr.Authorization(fmt.Sprintf("User %s is not authorized to %s", principal.ID, action)))
		return user.User{}, false
	}

	return principal, true
}

// recompute runs an aggregate refresh. The write it follows has already
// succeeded, so a failure is logged rather than returned.
func recompute(ctx context.Context, what, bootcampID string, fn func(context.Context, string) error) {
	if err := fn(ctx, bootcampID); err != nil {
		slog.Default().ErrorContext(ctx, "aggregate_recompute_failed", "aggregate", what, "bootcamp_id", bootcampID, "err", err)
	}
}
