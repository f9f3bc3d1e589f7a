package handlers

import (
	"context"
	"net/http"

	"github.com/geocoder89/bootcamphub/internal/domain/review"
	"github.com/geocoder89/bootcamphub/internal/http/middlewares"
	"github.com/geocoder89/bootcamphub/internal/results"
	"github.com/gin-gonic/gin"
)

type ReviewStore interface {
	results.Source[review.Review]
	Populate(ctx context.Context, items []review.Review) error
	Create(ctx context.Context, bootcampID, userID string, req review.CreateRequest) (review.Review, error)
	GetByID(ctx context.Context, id string) (review.Review, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]review.Review, error)
	Update(ctx context.Context, id string, req review.UpdateRequest) (review.Review, error)
	Delete(ctx context.Context, id string) error
}

type ReviewsHandler struct {
	store     ReviewStore
	bootcamps BootcampLookup
	lists     *Lists
}

func NewReviewsHandler(store ReviewStore, bootcamps BootcampLookup, lists *Lists) *ReviewsHandler {
	return &ReviewsHandler{store: store, bootcamps: bootcamps, lists: lists}
}

func (h *ReviewsHandler) List(ctx *gin.Context) {
	serveList[review.Review](ctx, h.lists, resourceReviews, h.store, h.store)
}

func (h *ReviewsHandler) ListForBootcamp(ctx *gin.Context) {
	bootcampID := ctx.Param("id")

	items, err := h.store.ListByBootcamp(ctx.Request.Context(), bootcampID)
	if err != nil {
		fail(ctx, classify(err, bootcampID))
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

func (h *ReviewsHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	rv, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	items := []review.Review{rv}
	if err := h.store.Populate(reqCtx, items); err != nil {
		fail(ctx, classify(err, id))
		return
	}

	respondOK(ctx, items[0])
}

// Create adds the caller's review. One review per user and bootcamp.
func (h *ReviewsHandler) Create(ctx *gin.Context) {
	bootcampID := ctx.Param("id")
	reqCtx := ctx.Request.Context()
	principal, _ := middlewares.PrincipalFromContext(ctx)

	var req review.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	b, err := h.bootcamps.GetByID(reqCtx, bootcampID)
	if err != nil {
		fail(ctx, bootcampLookupErr(err, bootcampID))
		return
	}

	rv, err := h.store.Create(reqCtx, b.ID, principal.ID, req)
	if err != nil {
		fail(ctx, classify(err, ""))
		return
	}

	recompute(reqCtx, "average_rating", b.ID, h.bootcamps.RecomputeAverageRating)
	h.lists.invalidate(resourceReviews, resourceBootcamps)

	respondData(ctx, http.StatusCreated, rv)
}

func (h *ReviewsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	rv, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	if _, ok := mustOwn(ctx, rv.User, "update review "+rv.ID); !ok {
		return
	}

	var req review.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rv, err = h.store.Update(reqCtx, id, req)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	recompute(reqCtx, "average_rating", rv.Bootcamp.ID, h.bootcamps.RecomputeAverageRating)
	h.lists.invalidate(resourceReviews, resourceBootcamps)

	respondOK(ctx, rv)
}

func (h *ReviewsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	rv, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	if _, ok := mustOwn(ctx, rv.User, "delete review "+rv.ID); !ok {
		return
	}

	if err := h.store.Delete(reqCtx, id); err != nil {
		fail(ctx, classify(err, id))
		return
	}

	recompute(reqCtx, "average_rating", rv.Bootcamp.ID, h.bootcamps.RecomputeAverageRating)
	h.lists.invalidate(resourceReviews, resourceBootcamps)

	respondOK(ctx, gin.H{})
}
