package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/domain/course"
	"github.com/geocoder89/bootcamphub/internal/results"
	"github.com/gin-gonic/gin"
)

type CourseStore interface {
	results.Source[course.Course]
	Populate(ctx context.Context, items []course.Course) error
	Create(ctx context.Context, bootcampID, userID string, req course.CreateRequest) (course.Course, error)
	GetByID(ctx context.Context, id string) (course.Course, error)
	ListByBootcamp(ctx context.Context, bootcampID string) ([]course.Course, error)
	Update(ctx context.Context, id string, req course.UpdateRequest) (course.Course, error)
	Delete(ctx context.Context, id string) error
}

// BootcampLookup is what child resources need from the bootcamp store.
type BootcampLookup interface {
	GetByID(ctx context.Context, id string) (bootcamp.Bootcamp, error)
	Aggregates
}

type CoursesHandler struct {
	store     CourseStore
	bootcamps BootcampLookup
	lists     *Lists
}

func NewCoursesHandler(store CourseStore, bootcamps BootcampLookup, lists *Lists) *CoursesHandler {
	return &CoursesHandler{store: store, bootcamps: bootcamps, lists: lists}
}

func (h *CoursesHandler) List(ctx *gin.Context) {
	serveList[course.Course](ctx, h.lists, resourceCourses, h.store, h.store)
}

// ListForBootcamp returns every course of one bootcamp, unpaginated.
func (h *CoursesHandler) ListForBootcamp(ctx *gin.Context) {
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

func (h *CoursesHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	c, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	items := []course.Course{c}
	if err := h.store.Populate(reqCtx, items); err != nil {
		fail(ctx, classify(err, id))
		return
	}

	respondOK(ctx, items[0])
}

func (h *CoursesHandler) Create(ctx *gin.Context) {
	bootcampID := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	b, err := h.bootcamps.GetByID(reqCtx, bootcampID)
	if err != nil {
		fail(ctx, bootcampLookupErr(err, bootcampID))
		return
	}

	principal, ok := mustOwn(ctx, b.User, "add a course to bootcamp "+b.ID)
	if !ok {
		return
	}

	var req course.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	c, err := h.store.Create(reqCtx, b.ID, principal.ID, req)
	if err != nil {
		fail(ctx, classify(err, ""))
		return
	}

	recompute(reqCtx, "average_cost", b.ID, h.bootcamps.RecomputeAverageCost)
	h.lists.invalidate(resourceCourses, resourceBootcamps)

	respondOK(ctx, c)
}

func (h *CoursesHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	c, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	if _, ok := mustOwn(ctx, c.User, fmt.Sprintf("update course %s", c.ID)); !ok {
		return
	}

	var req course.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	c, err = h.store.Update(reqCtx, id, req)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	recompute(reqCtx, "average_cost", c.Bootcamp.ID, h.bootcamps.RecomputeAverageCost)
	h.lists.invalidate(resourceCourses, resourceBootcamps)

	respondOK(ctx, c)
}

func (h *CoursesHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	c, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	if _, ok := mustOwn(ctx, c.User, fmt.Sprintf("delete course %s", c.ID)); !ok {
		return
	}

	if err := h.store.Delete(reqCtx, id); err != nil {
		fail(ctx, classify(err, id))
		return
	}

	recompute(reqCtx, "average_cost", c.Bootcamp.ID, h.bootcamps.RecomputeAverageCost)
	h.lists.invalidate(resourceCourses, resourceBootcamps)

	respondOK(ctx, gin.H{})
}

// bootcampLookupErr reports a missing parent on nested routes.
func bootcampLookupErr(err error, id string) error {
	if errors.Is(err, bootcamp.ErrNotFound) {
		return apperr.NotFound("No bootcamp with the id of " + id)
	}
	return classify(err, id)
}
