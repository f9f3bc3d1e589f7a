package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/results"
	"github.com/geocoder89/bootcamphub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserStore interface {
	results.Source[user.User]
	UserReader
	UserWriter
	Delete(ctx context.Context, id string) error
}

// UsersHandler is the admin user management surface.
type UsersHandler struct {
	store UserStore
	lists *Lists
}

func NewUsersHandler(store UserStore, lists *Lists) *UsersHandler {
	return &UsersHandler{store: store, lists: lists}
}

func (h *UsersHandler) List(ctx *gin.Context) {
	serveList[user.User](ctx, h.lists, resourceUsers, h.store, nil)
}

func (h *UsersHandler) Get(ctx *gin.Context) {
	id := ctx.Param("id")

	u, err := h.store.GetByID(ctx.Request.Context(), id)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	respondOK(ctx, u)
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.CreateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		fail(ctx, apperr.Internal(err))
		return
	}

	role := req.Role
	if role == "" {
		role = user.RoleUser
	}

	u, err := h.store.Create(ctx.Request.Context(), user.NewUser{
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
	respondData(ctx, http.StatusCreated, u)
}

// Update re-hashes the password only when one is supplied.
func (h *UsersHandler) Update(ctx *gin.Context) {
	id := ctx.Param("id")

	var req user.UpdateRequest

	if !BindJSON(ctx, &req) {
		return
	}

	changes := user.Changes{Name: req.Name, Role: req.Role}

	if req.Email != nil {
		email := strings.ToLower(*req.Email)
		changes.Email = &email
	}

	if req.Password != nil {
		hash, err := security.HashPassword(*req.Password)
		if err != nil {
			fail(ctx, apperr.Internal(err))
			return
		}
		changes.PasswordHash = &hash
	}

	u, err := h.store.Update(ctx.Request.Context(), id, changes)
	if err != nil {
		fail(ctx, classify(err, id))
		return
	}

	h.lists.invalidate(resourceUsers)
	respondOK(ctx, u)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	id := ctx.Param("id")

	if err := h.store.Delete(ctx.Request.Context(), id); err != nil {
		fail(ctx, classify(err, id))
		return
	}

	// owned bootcamps, courses and reviews cascade
	h.lists.invalidate()
	respondOK(ctx, gin.H{})
}
