package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/observability"
	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/geocoder89/bootcamphub/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bootcampColumns = `id, name, slug, description, website, phone, email, address, careers,
	average_rating, average_cost, photo, housing, job_assistance, job_guarantee, accept_gi,
	created_at, user_id`

type BootcampsRepo struct {
	store
}

// constructor function

func NewBootcampsRepo(pool *pgxpool.Pool, prom *observability.Prom) *BootcampsRepo {
	return &BootcampsRepo{store{pool: pool, prom: prom}}
}

func scanBootcamp(row pgx.Row) (bootcamp.Bootcamp, error) {
	var b bootcamp.Bootcamp
	err := row.Scan(
		&b.ID,
		&b.Name,
		&b.Slug,
		&b.Description,
		&b.Website,
		&b.Phone,
		&b.Email,
		&b.Address,
		&b.Careers,
		&b.AverageRating,
		&b.AverageCost,
		&b.Photo,
		&b.Housing,
		&b.JobAssistance,
		&b.JobGuarantee,
		&b.AcceptGi,
		&b.CreatedAt,
		&b.User,
	)
	return b, err
}

func bootcampErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return bootcamp.ErrNotFound
	}
	if IsUniqueViolation(err) {
		return bootcamp.ErrNameTaken
	}
	return err
}

func (r *BootcampsRepo) Create(ctx context.Context, userID string, req bootcamp.CreateRequest) (bootcamp.Bootcamp, error) {
	var b bootcamp.Bootcamp

	err := r.observe("bootcamps.create", func() error {
		var err error
		b, err = scanBootcamp(r.pool.QueryRow(ctx,
			`INSERT INTO bootcamps (id, name, slug, description, website, phone, email, address, careers,
				photo, housing, job_assistance, job_guarantee, accept_gi, created_at, user_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)
			RETURNING `+bootcampColumns,
			uuid.NewString(),
			req.Name,
			utils.Slugify(req.Name),
			req.Description,
			req.Website,
			req.Phone,
			req.Email,
			req.Address,
			req.Careers,
			bootcamp.DefaultPhoto,
			req.Housing,
			req.JobAssistance,
			req.JobGuarantee,
			req.AcceptGi,
			time.Now().UTC(),
			userID,
		))
		return err
	})

	if err != nil {
		return bootcamp.Bootcamp{}, bootcampErr(err)
	}
	return b, nil
}

func (r *BootcampsRepo) GetByID(ctx context.Context, id string) (bootcamp.Bootcamp, error) {
	if !utils.IsUUID(id) {
		return bootcamp.Bootcamp{}, bootcamp.ErrNotFound
	}

	var b bootcamp.Bootcamp
	err := r.observe("bootcamps.get_by_id", func() error {
		var err error
		b, err = scanBootcamp(r.pool.QueryRow(ctx, `SELECT `+bootcampColumns+` FROM bootcamps WHERE id = $1`, id))
		return err
	})

	if err != nil {
		return bootcamp.Bootcamp{}, bootcampErr(err)
	}
	return b, nil
}

func (r *BootcampsRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.observe("bootcamps.count_by_user", func() error {
		return r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bootcamps WHERE user_id = $1`, userID).Scan(&n)
	})
	return n, err
}

func (r *BootcampsRepo) Update(ctx context.Context, id string, req bootcamp.UpdateRequest) (bootcamp.Bootcamp, error) {
	var sb setBuilder
	if req.Name != nil {
		sb.add("name", *req.Name)
		sb.add("slug", utils.Slugify(*req.Name))
	}
	if req.Description != nil {
		sb.add("description", *req.Description)
	}
	if req.Website != nil {
		sb.add("website", *req.Website)
	}
	if req.Phone != nil {
		sb.add("phone", *req.Phone)
	}
	if req.Email != nil {
		sb.add("email", *req.Email)
	}
	if req.Address != nil {
		sb.add("address", *req.Address)
	}
	if req.Careers != nil {
		sb.add("careers", *req.Careers)
	}
	if req.Housing != nil {
		sb.add("housing", *req.Housing)
	}
	if req.JobAssistance != nil {
		sb.add("job_assistance", *req.JobAssistance)
	}
	if req.JobGuarantee != nil {
		sb.add("job_guarantee", *req.JobGuarantee)
	}
	if req.AcceptGi != nil {
		sb.add("accept_gi", *req.AcceptGi)
	}

	if sb.empty() {
		return r.GetByID(ctx, id)
	}

	set, args := sb.sql(id)

	var b bootcamp.Bootcamp
	err := r.observe("bootcamps.update", func() error {
		var err error
		b, err = scanBootcamp(r.pool.QueryRow(ctx, `UPDATE bootcamps`+set+` RETURNING `+bootcampColumns, args...))
		return err
	})

	if err != nil {
		return bootcamp.Bootcamp{}, bootcampErr(err)
	}
	return b, nil
}

func (r *BootcampsRepo) SetPhoto(ctx context.Context, id, photo string) error {
	return r.observe("bootcamps.set_photo", func() error {
		tag, err := r.pool.Exec(ctx, `UPDATE bootcamps SET photo = $2 WHERE id = $1`, id, photo)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return bootcamp.ErrNotFound
		}
		return nil
	})
}

// Delete removes the bootcamp. Its courses and reviews go with it (ON DELETE CASCADE).
func (r *BootcampsRepo) Delete(ctx context.Context, id string) error {
	return r.observe("bootcamps.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM bootcamps WHERE id = $1`, id)
		if err != nil {
			return err
		}

		// if no rows were deleted as a result return a not found error
		if tag.RowsAffected() == 0 {
			return bootcamp.ErrNotFound
		}
		return nil
	})
}

func (r *BootcampsRepo) Find(ctx context.Context, d query.Descriptor) ([]bootcamp.Bootcamp, error) {
	clause, err := compileList(bootcamp.Schema, d)
	if err != nil {
		return nil, err
	}

	out := []bootcamp.Bootcamp{}

	err = r.observe("bootcamps.find", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+bootcampColumns+` FROM bootcamps`+clause.SQL, clause.Args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			b, err := scanBootcamp(rows)
			if err != nil {
				return err
			}
			out = append(out, b)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *BootcampsRepo) Count(ctx context.Context) (int, error) {
	return r.count(ctx, "bootcamps.count", "bootcamps")
}

// Populate attaches every course of each bootcamp in items.
func (r *BootcampsRepo) Populate(ctx context.Context, items []bootcamp.Bootcamp) error {
	ids := make([]string, len(items))
	for i, b := range items {
		ids[i] = b.ID
	}

	byBootcamp := make(map[string][]bootcamp.CourseSummary, len(items))

	err := r.observe("bootcamps.populate_courses", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT id, title, description, weeks, tuition, minimum_skill, scholarship_available,
				created_at, bootcamp_id, user_id
			FROM courses
			WHERE bootcamp_id = ANY($1)
			ORDER BY created_at ASC, id ASC`,
			ids,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var c bootcamp.CourseSummary
			if err := rows.Scan(
				&c.ID,
				&c.Title,
				&c.Description,
				&c.Weeks,
				&c.Tuition,
				&c.MinimumSkill,
				&c.ScholarshipAvailable,
				&c.CreatedAt,
				&c.Bootcamp,
				&c.User,
			); err != nil {
				return err
			}
			byBootcamp[c.Bootcamp] = append(byBootcamp[c.Bootcamp], c)
		}
		return rows.Err()
	})

	if err != nil {
		return err
	}

	for i := range items {
		courses := byBootcamp[items[i].ID]
		if courses == nil {
			courses = []bootcamp.CourseSummary{}
		}
		items[i].Courses = courses
	}
	return nil
}

// RecomputeAverageCost rounds the mean tuition up to the next multiple of 10.
// With no courses left the cost becomes NULL.
func (r *BootcampsRepo) RecomputeAverageCost(ctx context.Context, bootcampID string) error {
	return r.observe("bootcamps.recompute_average_cost", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE bootcamps
			SET average_cost = (
				SELECT CEIL(AVG(tuition) / 10) * 10 FROM courses WHERE bootcamp_id = $1
			)
			WHERE id = $1`,
			bootcampID,
		)
		return err
	})
}

func (r *BootcampsRepo) RecomputeAverageRating(ctx context.Context, bootcampID string) error {
	return r.observe("bootcamps.recompute_average_rating", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE bootcamps
			SET average_rating = COALESCE(
				(SELECT AVG(rating)::double precision FROM reviews WHERE bootcamp_id = $1), 0
			)
			WHERE id = $1`,
			bootcampID,
		)
		return err
	})
}

// bootcampSummaries loads the populated form of the given bootcamps.
func bootcampSummaries(ctx context.Context, s store, ids []string) (map[string]bootcamp.Summary, error) {
	out := make(map[string]bootcamp.Summary, len(ids))

	err := s.observe("bootcamps.summaries", func() error {
		rows, err := s.pool.Query(ctx, `SELECT id, name, description FROM bootcamps WHERE id = ANY($1)`, ids)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var sum bootcamp.Summary
			if err := rows.Scan(&sum.ID, &sum.Name, &sum.Description); err != nil {
				return err
			}
			out[sum.ID] = sum
		}
		return rows.Err()
	})

	return out, err
}
