package user

import (
	"errors"
	"time"

	"github.com/geocoder89/bootcamphub/internal/query"
)

const (
	RoleUser      = "user"
	RolePublisher = "publisher"
	RoleAdmin     = "admin"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailTaken  = errors.New("email already in use")
	ErrInvalidRole = errors.New("invalid role")
)

type User struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Role                string     `json:"role"`
	PasswordHash        string     `json:"-"` // never expose hash in JSON
	ResetPasswordToken  *string    `json:"-"`
	ResetPasswordExpire *time.Time `json:"-"`
	CreatedAt           time.Time  `json:"createdAt"`
}

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RolePublisher, RoleAdmin:
		return true
	default:
		return false
	}
}

// HasRole reports whether the user holds one of roles.
func (u User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

// NewUser is what the store persists on creation. PasswordHash is already hashed.
type NewUser struct {
	Name         string
	Email        string
	Role         string
	PasswordHash string
}

// Changes is a partial update. A nil field is left untouched; in particular a
// nil PasswordHash means the stored hash is not rewritten.
type Changes struct {
	Name         *string
	Email        *string
	Role         *string
	PasswordHash *string
}

func (c Changes) Empty() bool {
	return c.Name == nil && c.Email == nil && c.Role == nil && c.PasswordHash == nil
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user publisher"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateDetailsRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`
	Email *string `json:"email" binding:"omitempty,email"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required,min=6"`
}

// CreateRequest and UpdateRequest are the admin user-management payloads.
type CreateRequest struct {
	Name     string `json:"name" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role" binding:"omitempty,oneof=user publisher admin"`
}

type UpdateRequest struct {
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=6"`
	Role     *string `json:"role" binding:"omitempty,oneof=user publisher admin"`
}

// Schema lists the fields a user listing may filter, select or sort on.
var Schema = query.Schema{
	"id":        {Column: "id", Kind: query.KindID},
	"name":      {Column: "name", Kind: query.KindString},
	"email":     {Column: "email", Kind: query.KindString},
	"role":      {Column: "role", Kind: query.KindString},
	"createdAt": {Column: "created_at", Kind: query.KindTime},
}
