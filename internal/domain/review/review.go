package review

import (
	"errors"
	"time"

	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/query"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("user already reviewed this bootcamp")
)

type Review struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Text      string       `json:"text"`
	Rating    int          `json:"rating"`
	CreatedAt time.Time    `json:"createdAt"`
	Bootcamp  bootcamp.Ref `json:"bootcamp"`
	User      string       `json:"user"`
}

type CreateRequest struct {
	Title  string `json:"title" binding:"required,max=100"`
	Text   string `json:"text" binding:"required"`
	Rating int    `json:"rating" binding:"required,min=1,max=10"`
}

type UpdateRequest struct {
	Title  *string `json:"title" binding:"omitempty,max=100"`
	Text   *string `json:"text"`
	Rating *int    `json:"rating" binding:"omitempty,min=1,max=10"`
}

var Schema = query.Schema{
	"id":        {Column: "id", Kind: query.KindID},
	"title":     {Column: "title", Kind: query.KindString},
	"text":      {Column: "text", Kind: query.KindString},
	"rating":    {Column: "rating", Kind: query.KindNumber},
	"createdAt": {Column: "created_at", Kind: query.KindTime},
	"bootcamp":  {Column: "bootcamp_id", Kind: query.KindID},
	"user":      {Column: "user_id", Kind: query.KindID},
}
