package handlers_test

import (
	"context"
	"io"
	"sort"
	"sync"

	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/domain/course"
	"github.com/geocoder89/bootcamphub/internal/domain/review"
	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/google/uuid"
)

// fakeBootcamps keeps bootcamps in a map and counts store traffic.
type fakeBootcamps struct {
	mu         sync.Mutex
	items      map[string]bootcamp.Bootcamp
	finds      int
	costCalls  []string
	ratingCall []string
}

func newFakeBootcamps(seed ...bootcamp.Bootcamp) *fakeBootcamps {
	f := &fakeBootcamps{items: map[string]bootcamp.Bootcamp{}}
	for _, b := range seed {
		f.items[b.ID] = b
	}
	return f
}

func (f *fakeBootcamps) Find(_ context.Context, d query.Descriptor) ([]bootcamp.Bootcamp, error) {
	if err := bootcamp.Schema.Validate(d); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.finds++

	out := make([]bootcamp.Bootcamp, 0, len(f.items))
	for _, b := range f.items {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	start, end := d.Window()
	if start >= len(out) {
		return []bootcamp.Bootcamp{}, nil
	}
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], nil
}

func (f *fakeBootcamps) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

func (f *fakeBootcamps) Populate(_ context.Context, items []bootcamp.Bootcamp) error {
	for i := range items {
		items[i].Courses = []bootcamp.CourseSummary{}
	}
	return nil
}

func (f *fakeBootcamps) Create(_ context.Context, userID string, req bootcamp.CreateRequest) (bootcamp.Bootcamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.items {
		if b.Name == req.Name {
			return bootcamp.Bootcamp{}, bootcamp.ErrNameTaken
		}
	}

	b := bootcamp.Bootcamp{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Address:     req.Address,
		Careers:     req.Careers,
		Photo:       bootcamp.DefaultPhoto,
		User:        userID,
	}
	f.items[b.ID] = b
	return b, nil
}

func (f *fakeBootcamps) GetByID(_ context.Context, id string) (bootcamp.Bootcamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.items[id]
	if !ok {
		return bootcamp.Bootcamp{}, bootcamp.ErrNotFound
	}
	return b, nil
}

func (f *fakeBootcamps) CountByUser(_ context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, b := range f.items {
		if b.User == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeBootcamps) Update(_ context.Context, id string, req bootcamp.UpdateRequest) (bootcamp.Bootcamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.items[id]
	if !ok {
		return bootcamp.Bootcamp{}, bootcamp.ErrNotFound
	}
	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Description != nil {
		b.Description = *req.Description
	}
	f.items[id] = b
	return b, nil
}

func (f *fakeBootcamps) SetPhoto(_ context.Context, id, photo string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	b, ok := f.items[id]
	if !ok {
		return bootcamp.ErrNotFound
	}
	b.Photo = photo
	f.items[id] = b
	return nil
}

func (f *fakeBootcamps) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return bootcamp.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeBootcamps) RecomputeAverageCost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.costCalls = append(f.costCalls, id)
	return nil
}

func (f *fakeBootcamps) RecomputeAverageRating(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratingCall = append(f.ratingCall, id)
	return nil
}

type fakeCourses struct {
	mu    sync.Mutex
	items map[string]course.Course
}

func newFakeCourses() *fakeCourses {
	return &fakeCourses{items: map[string]course.Course{}}
}

func (f *fakeCourses) Find(_ context.Context, d query.Descriptor) ([]course.Course, error) {
	if err := course.Schema.Validate(d); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]course.Course, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeCourses) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

func (f *fakeCourses) Populate(_ context.Context, items []course.Course) error {
	for i := range items {
		items[i].Bootcamp.Summary = &bootcamp.Summary{ID: items[i].Bootcamp.ID, Name: "populated"}
	}
	return nil
}

func (f *fakeCourses) Create(_ context.Context, bootcampID, userID string, req course.CreateRequest) (course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c := course.Course{
		ID:           uuid.NewString(),
		Title:        req.Title,
		Description:  req.Description,
		Weeks:        req.Weeks,
		Tuition:      req.Tuition,
		MinimumSkill: req.MinimumSkill,
		Bootcamp:     bootcamp.Ref{ID: bootcampID},
		User:         userID,
	}
	f.items[c.ID] = c
	return c, nil
}

func (f *fakeCourses) GetByID(_ context.Context, id string) (course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.items[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	return c, nil
}

func (f *fakeCourses) ListByBootcamp(_ context.Context, bootcampID string) ([]course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []course.Course{}
	for _, c := range f.items {
		if c.Bootcamp.ID == bootcampID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCourses) Update(_ context.Context, id string, req course.UpdateRequest) (course.Course, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.items[id]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	if req.Tuition != nil {
		c.Tuition = *req.Tuition
	}
	if req.Title != nil {
		c.Title = *req.Title
	}
	f.items[id] = c
	return c, nil
}

func (f *fakeCourses) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return course.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeReviews struct {
	mu    sync.Mutex
	items map[string]review.Review
}

func newFakeReviews() *fakeReviews {
	return &fakeReviews{items: map[string]review.Review{}}
}

func (f *fakeReviews) Find(_ context.Context, d query.Descriptor) ([]review.Review, error) {
	if err := review.Schema.Validate(d); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]review.Review, 0, len(f.items))
	for _, rv := range f.items {
		out = append(out, rv)
	}
	return out, nil
}

func (f *fakeReviews) Count(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items), nil
}

func (f *fakeReviews) Populate(context.Context, []review.Review) error { return nil }

func (f *fakeReviews) Create(_ context.Context, bootcampID, userID string, req review.CreateRequest) (review.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rv := range f.items {
		if rv.Bootcamp.ID == bootcampID && rv.User == userID {
			return review.Review{}, review.ErrAlreadyReviewed
		}
	}

	rv := review.Review{
		ID:       uuid.NewString(),
		Title:    req.Title,
		Text:     req.Text,
		Rating:   req.Rating,
		Bootcamp: bootcamp.Ref{ID: bootcampID},
		User:     userID,
	}
	f.items[rv.ID] = rv
	return rv, nil
}

func (f *fakeReviews) GetByID(_ context.Context, id string) (review.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rv, ok := f.items[id]
	if !ok {
		return review.Review{}, review.ErrNotFound
	}
	return rv, nil
}

func (f *fakeReviews) ListByBootcamp(_ context.Context, bootcampID string) ([]review.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := []review.Review{}
	for _, rv := range f.items {
		if rv.Bootcamp.ID == bootcampID {
			out = append(out, rv)
		}
	}
	return out, nil
}

func (f *fakeReviews) Update(_ context.Context, id string, req review.UpdateRequest) (review.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rv, ok := f.items[id]
	if !ok {
		return review.Review{}, review.ErrNotFound
	}
	if req.Rating != nil {
		rv.Rating = *req.Rating
	}
	f.items[id] = rv
	return rv, nil
}

func (f *fakeReviews) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.items[id]; !ok {
		return review.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

// memPhotos records uploaded objects.
type memPhotos struct {
	mu   sync.Mutex
	objs map[string][]byte
}

func (m *memPhotos) Put(_ context.Context, key string, body io.Reader, _ int64, _ string) error {
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.objs == nil {
		m.objs = map[string][]byte{}
	}
	m.objs[key] = b
	return nil
}
