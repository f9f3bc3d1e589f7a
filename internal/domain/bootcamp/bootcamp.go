package bootcamp

import (
	"errors"
	"time"

	"github.com/geocoder89/bootcamphub/internal/query"
)

const DefaultPhoto = "no-photo.jpg"

var (
	ErrNotFound  = errors.New("bootcamp not found")
	ErrNameTaken = errors.New("bootcamp name already in use")
)

var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// CourseSummary is the populated form of a bootcamp's courses.
type CourseSummary struct {
	ID                   string    `json:"id"`
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Weeks                string    `json:"weeks"`
	Tuition              float64   `json:"tuition"`
	MinimumSkill         string    `json:"minimumSkill"`
	ScholarshipAvailable bool      `json:"scholarshipAvailable"`
	CreatedAt            time.Time `json:"createdAt"`
	Bootcamp             string    `json:"bootcamp"`
	User                 string    `json:"user"`
}

type Bootcamp struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Slug          string          `json:"slug"`
	Description   string          `json:"description"`
	Website       string          `json:"website,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Email         string          `json:"email,omitempty"`
	Address       string          `json:"address,omitempty"`
	Careers       []string        `json:"careers"`
	AverageRating *float64        `json:"averageRating,omitempty"`
	AverageCost   *float64        `json:"averageCost,omitempty"`
	Photo         string          `json:"photo"`
	Housing       bool            `json:"housing"`
	JobAssistance bool            `json:"jobAssistance"`
	JobGuarantee  bool            `json:"jobGuarantee"`
	AcceptGi      bool            `json:"acceptGi"`
	CreatedAt     time.Time       `json:"createdAt"`
	User          string          `json:"user"`
	Courses       []CourseSummary `json:"courses,omitempty"`
}

// Summary is the populated form of a bootcamp inside courses and reviews.
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreateRequest struct {
	Name          string   `json:"name" binding:"required,max=50"`
	Description   string   `json:"description" binding:"required,max=500"`
	Website       string   `json:"website" binding:"omitempty,url"`
	Phone         string   `json:"phone" binding:"omitempty,max=20"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address" binding:"required"`
	Careers       []string `json:"careers" binding:"required,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' 'Business' 'Other'"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

type UpdateRequest struct {
	Name          *string   `json:"name" binding:"omitempty,max=50"`
	Description   *string   `json:"description" binding:"omitempty,max=500"`
	Website       *string   `json:"website" binding:"omitempty,url"`
	Phone         *string   `json:"phone" binding:"omitempty,max=20"`
	Email         *string   `json:"email" binding:"omitempty,email"`
	Address       *string   `json:"address" binding:"omitempty"`
	Careers       *[]string `json:"careers" binding:"omitempty,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' 'Business' 'Other'"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"jobAssistance"`
	JobGuarantee  *bool     `json:"jobGuarantee"`
	AcceptGi      *bool     `json:"acceptGi"`
}

var Schema = query.Schema{
	"id":            {Column: "id", Kind: query.KindID},
	"name":          {Column: "name", Kind: query.KindString},
	"slug":          {Column: "slug", Kind: query.KindString},
	"description":   {Column: "description", Kind: query.KindString},
	"website":       {Column: "website", Kind: query.KindString},
	"phone":         {Column: "phone", Kind: query.KindString},
	"email":         {Column: "email", Kind: query.KindString},
	"address":       {Column: "address", Kind: query.KindString},
	"careers":       {Column: "careers", Kind: query.KindStringArray},
	"averageRating": {Column: "average_rating", Kind: query.KindNumber},
	"averageCost":   {Column: "average_cost", Kind: query.KindNumber},
	"photo":         {Column: "photo", Kind: query.KindString},
	"housing":       {Column: "housing", Kind: query.KindBool},
	"jobAssistance": {Column: "job_assistance", Kind: query.KindBool},
	"jobGuarantee":  {Column: "job_guarantee", Kind: query.KindBool},
	"acceptGi":      {Column: "accept_gi", Kind: query.KindBool},
	"createdAt":     {Column: "created_at", Kind: query.KindTime},
	"user":          {Column: "user_id", Kind: query.KindID},
	"courses":       {Column: "", Kind: query.KindRelation},
}
