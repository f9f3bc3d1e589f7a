package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/domain/review"
	"github.com/geocoder89/bootcamphub/internal/observability"
	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/geocoder89/bootcamphub/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = `id, title, text, rating, created_at, bootcamp_id, user_id`

type ReviewsRepo struct {
	store
}

func NewReviewsRepo(pool *pgxpool.Pool, prom *observability.Prom) *ReviewsRepo {
	return &ReviewsRepo{store{pool: pool, prom: prom}}
}

func scanReview(row pgx.Row) (review.Review, error) {
	var rv review.Review
	err := row.Scan(
		&rv.ID,
		&rv.Title,
		&rv.Text,
		&rv.Rating,
		&rv.CreatedAt,
		&rv.Bootcamp.ID,
		&rv.User,
	)
	return rv, err
}

func reviewErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return review.ErrNotFound
	}
	// reviews_bootcamp_user_key
	if IsUniqueViolation(err) {
		return review.ErrAlreadyReviewed
	}
	return err
}

func (r *ReviewsRepo) Create(ctx context.Context, bootcampID, userID string, req review.CreateRequest) (review.Review, error) {
	var rv review.Review

	err := r.observe("reviews.create", func() error {
		var err error
		rv, err = scanReview(r.pool.QueryRow(ctx,
			`INSERT INTO reviews (id, title, text, rating, created_at, bootcamp_id, user_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING `+reviewColumns,
			uuid.NewString(), req.Title, req.Text, req.Rating, time.Now().UTC(), bootcampID, userID,
		))
		return err
	})

	if err != nil {
		return review.Review{}, reviewErr(err)
	}
	return rv, nil
}

func (r *ReviewsRepo) GetByID(ctx context.Context, id string) (review.Review, error) {
	if !utils.IsUUID(id) {
		return review.Review{}, review.ErrNotFound
	}

	var rv review.Review
	err := r.observe("reviews.get_by_id", func() error {
		var err error
		rv, err = scanReview(r.pool.QueryRow(ctx, `SELECT `+reviewColumns+` FROM reviews WHERE id = $1`, id))
		return err
	})

	if err != nil {
		return review.Review{}, reviewErr(err)
	}
	return rv, nil
}

func (r *ReviewsRepo) ListByBootcamp(ctx context.Context, bootcampID string) ([]review.Review, error) {
	if !utils.IsUUID(bootcampID) {
		return nil, bootcamp.ErrNotFound
	}

	out := []review.Review{}

	err := r.observe("reviews.list_by_bootcamp", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+reviewColumns+` FROM reviews WHERE bootcamp_id = $1 ORDER BY created_at ASC, id ASC`,
			bootcampID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rv, err := scanReview(rows)
			if err != nil {
				return err
			}
			out = append(out, rv)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReviewsRepo) Update(ctx context.Context, id string, req review.UpdateRequest) (review.Review, error) {
	var sb setBuilder
	if req.Title != nil {
		sb.add("title", *req.Title)
	}
	if req.Text != nil {
		sb.add("text", *req.Text)
	}
	if req.Rating != nil {
		sb.add("rating", *req.Rating)
	}

	if sb.empty() {
		return r.GetByID(ctx, id)
	}

	set, args := sb.sql(id)

	var rv review.Review
	err := r.observe("reviews.update", func() error {
		var err error
		rv, err = scanReview(r.pool.QueryRow(ctx, `UPDATE reviews`+set+` RETURNING `+reviewColumns, args...))
		return err
	})

	if err != nil {
		return review.Review{}, reviewErr(err)
	}
	return rv, nil
}

func (r *ReviewsRepo) Delete(ctx context.Context, id string) error {
	return r.observe("reviews.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return review.ErrNotFound
		}
		return nil
	})
}

func (r *ReviewsRepo) Find(ctx context.Context, d query.Descriptor) ([]review.Review, error) {
	clause, err := compileList(review.Schema, d)
	if err != nil {
		return nil, err
	}

	out := []review.Review{}

	err = r.observe("reviews.find", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+reviewColumns+` FROM reviews`+clause.SQL, clause.Args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			rv, err := scanReview(rows)
			if err != nil {
				return err
			}
			out = append(out, rv)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReviewsRepo) Count(ctx context.Context) (int, error) {
	return r.count(ctx, "reviews.count", "reviews")
}

func (r *ReviewsRepo) Populate(ctx context.Context, items []review.Review) error {
	ids := make([]string, len(items))
	for i, rv := range items {
		ids[i] = rv.Bootcamp.ID
	}

	summaries, err := bootcampSummaries(ctx, r.store, ids)
	if err != nil {
		return err
	}

	for i := range items {
		if s, ok := summaries[items[i].Bootcamp.ID]; ok {
			items[i].Bootcamp.Summary = &s
		}
	}
	return nil
}
