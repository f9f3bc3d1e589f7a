package handlers

import (
	"errors"
	"net/http"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/domain/course"
	"github.com/geocoder89/bootcamphub/internal/domain/review"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/gin-gonic/gin"
)

// fail records err for the ErrorHandler middleware and stops the chain.
func fail(ctx *gin.Context, err error) {
	_ = ctx.Error(err)
	ctx.Abort()
}

func respondData(ctx *gin.Context, status int, data any) {
	ctx.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondOK(ctx *gin.Context, data any) {
	respondData(ctx, http.StatusOK, data)
}

// classify maps store and query errors onto the error taxonomy. id is the
// path id the request was about, used in not-found messages.
func classify(err error, id string) error {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return ae
	}

	var qe *query.Error
	if errors.As(err, &qe) {
		return apperr.Wrap(apperr.KindValidation, "Invalid query field "+qe.Key, err)
	}

	switch {
	case errors.Is(err, bootcamp.ErrNotFound):
		return apperr.NotFound("Bootcamp not found with id of " + id)
	case errors.Is(err, course.ErrNotFound):
		return apperr.NotFound("Course not found with id of " + id)
	case errors.Is(err, review.ErrNotFound):
		return apperr.NotFound("Review not found with id of " + id)
	case errors.Is(err, user.ErrNotFound):
		return apperr.NotFound("User not found with id of " + id)
	case errors.Is(err, user.ErrEmailTaken),
		errors.Is(err, bootcamp.ErrNameTaken),
		errors.Is(err, review.ErrAlreadyReviewed):
		return apperr.Wrap(apperr.KindValidation, "Duplicate field value entered", err)
	}

	return apperr.Internal(err)
}
