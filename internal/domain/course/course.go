package course

import (
	"errors"
	"time"

	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/query"
)

var ErrNotFound = errors.New("course not found")

type Course struct {
	ID                   string       `json:"id"`
	Title                string       `json:"title"`
	Description          string       `json:"description"`
	Weeks                string       `json:"weeks"`
	Tuition              float64      `json:"tuition"`
	MinimumSkill         string       `json:"minimumSkill"`
	ScholarshipAvailable bool         `json:"scholarshipAvailable"`
	CreatedAt            time.Time    `json:"createdAt"`
	Bootcamp             bootcamp.Ref `json:"bootcamp"`
	User                 string       `json:"user"`
}

type CreateRequest struct {
	Title                string  `json:"title" binding:"required,max=100"`
	Description          string  `json:"description" binding:"required"`
	Weeks                string  `json:"weeks" binding:"required"`
	Tuition              float64 `json:"tuition" binding:"required,gte=0"`
	MinimumSkill         string  `json:"minimumSkill" binding:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

type UpdateRequest struct {
	Title                *string  `json:"title" binding:"omitempty,max=100"`
	Description          *string  `json:"description"`
	Weeks                *string  `json:"weeks"`
	Tuition              *float64 `json:"tuition" binding:"omitempty,gte=0"`
	MinimumSkill         *string  `json:"minimumSkill" binding:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

var Schema = query.Schema{
	"id":                   {Column: "id", Kind: query.KindID},
	"title":                {Column: "title", Kind: query.KindString},
	"description":          {Column: "description", Kind: query.KindString},
	"weeks":                {Column: "weeks", Kind: query.KindString},
	"tuition":              {Column: "tuition", Kind: query.KindNumber},
	"minimumSkill":         {Column: "minimum_skill", Kind: query.KindString},
	"scholarshipAvailable": {Column: "scholarship_available", Kind: query.KindBool},
	"createdAt":            {Column: "created_at", Kind: query.KindTime},
	"bootcamp":             {Column: "bootcamp_id", Kind: query.KindID},
	"user":                 {Column: "user_id", Kind: query.KindID},
}
