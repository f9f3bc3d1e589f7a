package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/http/middlewares"
	"github.com/geocoder89/bootcamphub/internal/results"
	"github.com/geocoder89/bootcamphub/internal/storage"
	"github.com/gin-gonic/gin"
)

type BootcampStore interface {
	results.Source[bootcamp.Bootcamp]
	Populate(ctx context.Context, items []bootcamp.Bootcamp) error
	Create(ctx context.Context, userID string, req bootcamp.CreateRequest) (bootcamp.Bootcamp, error)
	GetByID(ctx context.Context, id string) (bootcamp.Bootcamp, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	Update(ctx context.Context, id string, req bootcamp.UpdateRequest) (bootcamp.Bootcamp, error)
	SetPhoto(ctx context.Context, id, photo string) error
	Delete(ctx context.Context, id string) error
}

type BootcampsHandler struct {
	store     BootcampStore
	photos    storage.PhotoStore
	maxUpload int64
	lists     *Lists
}

func NewBootcampsHandler(store BootcampStore, photos storage.PhotoStore, maxUpload int64, lists *Lists) *BootcampsHandler {
	return &BootcampsHandler{store: store, photos: photos, maxUpload: maxUpload, lists: lists}
}

func (h *BootcampsHandler) List(ctx *gin.Context) {
	serveList[bootcamp.Bootcamp](ctx, h.lists, resourceBootcamps, h.store, h.store)
}

func (h *BootcampsHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	b, err := h.store.GetByID(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	respondOK(ctx, b)
}

func (h *BootcampsHandler) Create(ctx *gin.Context) {
	principal, _ := middlewares.PrincipalFromContext(ctx)

	var req bootcamp.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	reqCtx := ctx.Request.Context()

	// a publisher may own a single bootcamp
	if principal.Role != user.RoleAdmin {
		n, err := h.store.CountByUser(reqCtx, principal.ID)
		if err != nil {
			fail(ctx, classify(err, ""))
			return
		}
		if n > 0 {
			fail(ctx, apperr.Validation(fmt.Sprintf("The user with ID %s has already published a bootcamp", principal.ID)))
			return
		}
	}

	b, err := h.store.Create(reqCtx, principal.ID, req)
	if err != nil {
		fail(ctx, classify(err, ""))
		return
	}

	h.lists.invalidate(resourceBootcamps)
	respondData(ctx, http.StatusCreated, b)
}

func (h *BootcampsHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	b, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	if _, ok := mustOwn(ctx, b.User, "update this bootcamp"); !ok {
		return
	}

	var req bootcamp.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	b, err = h.store.Update(reqCtx, id, req)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	h.lists.invalidate(resourceBootcamps, resourceCourses, resourceReviews)
	respondOK(ctx, b)
}

func (h *BootcampsHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	b, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	if _, ok := mustOwn(ctx, b.User, "delete this bootcamp"); !ok {
		return
	}

	if err := h.store.Delete(reqCtx, id); err != nil {
		fail(ctx, classify(err, id))
		return
	}

	// courses and reviews went with it
	h.lists.invalidate()
	respondOK(ctx, gin.H{})
}

// UploadPhoto stores the multipart "file" as photo_<id><ext>.
func (h *BootcampsHandler) UploadPhoto(ctx *gin.Context) {
	id := ctx.Param("id")
	reqCtx := ctx.Request.Context()

	b, err := h.store.GetByID(reqCtx, id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	if _, ok := mustOwn(ctx, b.User, "update this bootcamp"); !ok {
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		fail(ctx, apperr.Wrap(apperr.KindValidation, "Please upload a file", err))
		return
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image") {
		fail(ctx, apperr.Validation("Please upload an image file"))
		return
	}

	if file.Size > h.maxUpload {
		fail(ctx, apperr.Validation(fmt.Sprintf("Please upload an image less than %d", h.maxUpload)))
		return
	}

	name := fmt.Sprintf("photo_%s%s", b.ID, filepath.Ext(file.Filename))

	f, err := file.Open()
	if err != nil {
		fail(ctx, apperr.Internal(err))
		return
	}
	defer f.Close()

	if err := h.photos.Put(reqCtx, name, f, file.Size, contentType); err != nil {
		fail(ctx, apperr.Wrap(apperr.KindInternal, "Problem with file upload", err))
		return
	}

	if err := h.store.SetPhoto(reqCtx, b.ID, name); err != nil {
		fail(ctx, classify(err, id))
		return
	}

	h.lists.invalidate(resourceBootcamps)
	respondOK(ctx, name)
}
