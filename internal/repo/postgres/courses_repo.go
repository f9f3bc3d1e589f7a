package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bootcamphub/internal/domain/bootcamp"
	"github.com/geocoder89/bootcamphub/internal/domain/course"
	"github.com/geocoder89/bootcamphub/internal/observability"
	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/geocoder89/bootcamphub/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const courseColumns = `id, title, description, weeks, tuition, minimum_skill, scholarship_available,
	created_at, bootcamp_id, user_id`

type CoursesRepo struct {
	store
}

func NewCoursesRepo(pool *pgxpool.Pool, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{store{pool: pool, prom: prom}}
}

func scanCourse(row pgx.Row) (course.Course, error) {
	var c course.Course
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.Weeks,
		&c.Tuition,
		&c.MinimumSkill,
		&c.ScholarshipAvailable,
		&c.CreatedAt,
		&c.Bootcamp.ID,
		&c.User,
	)
	return c, err
}

func courseErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return course.ErrNotFound
	}
	return err
}

func (r *CoursesRepo) Create(ctx context.Context, bootcampID, userID string, req course.CreateRequest) (course.Course, error) {
	var c course.Course

	err := r.observe("courses.create", func() error {
		var err error
		c, err = scanCourse(r.pool.QueryRow(ctx,
			`INSERT INTO courses (id, title, description, weeks, tuition, minimum_skill,
				scholarship_available, created_at, bootcamp_id, user_id)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
			RETURNING `+courseColumns,
			uuid.NewString(),
			req.Title,
			req.Description,
			req.Weeks,
			req.Tuition,
			req.MinimumSkill,
			req.ScholarshipAvailable,
			time.Now().UTC(),
			bootcampID,
			userID,
		))
		return err
	})

	if err != nil {
		return course.Course{}, courseErr(err)
	}
	return c, nil
}

func (r *CoursesRepo) GetByID(ctx context.Context, id string) (course.Course, error) {
	if !utils.IsUUID(id) {
		return course.Course{}, course.ErrNotFound
	}

	var c course.Course
	err := r.observe("courses.get_by_id", func() error {
		var err error
		c, err = scanCourse(r.pool.QueryRow(ctx, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id))
		return err
	})

	if err != nil {
		return course.Course{}, courseErr(err)
	}
	return c, nil
}

func (r *CoursesRepo) ListByBootcamp(ctx context.Context, bootcampID string) ([]course.Course, error) {
	if !utils.IsUUID(bootcampID) {
		return nil, bootcamp.ErrNotFound
	}

	out := []course.Course{}

	err := r.observe("courses.list_by_bootcamp", func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+courseColumns+` FROM courses WHERE bootcamp_id = $1 ORDER BY created_at ASC, id ASC`,
			bootcampID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCourse(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CoursesRepo) Update(ctx context.Context, id string, req course.UpdateRequest) (course.Course, error) {
	var sb setBuilder
	if req.Title != nil {
		sb.add("title", *req.Title)
	}
	if req.Description != nil {
		sb.add("description", *req.Description)
	}
	if req.Weeks != nil {
		sb.add("weeks", *req.Weeks)
	}
	if req.Tuition != nil {
		sb.add("tuition", *req.Tuition)
	}
	if req.MinimumSkill != nil {
		sb.add("minimum_skill", *req.MinimumSkill)
	}
	if req.ScholarshipAvailable != nil {
		sb.add("scholarship_available", *req.ScholarshipAvailable)
	}

	if sb.empty() {
		return r.GetByID(ctx, id)
	}

	set, args := sb.sql(id)

	var c course.Course
	err := r.observe("courses.update", func() error {
		var err error
		c, err = scanCourse(r.pool.QueryRow(ctx, `UPDATE courses`+set+` RETURNING `+courseColumns, args...))
		return err
	})

	if err != nil {
		return course.Course{}, courseErr(err)
	}
	return c, nil
}

func (r *CoursesRepo) Delete(ctx context.Context, id string) error {
	return r.observe("courses.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return course.ErrNotFound
		}
		return nil
	})
}

func (r *CoursesRepo) Find(ctx context.Context, d query.Descriptor) ([]course.Course, error) {
	clause, err := compileList(course.Schema, d)
	if err != nil {
		return nil, err
	}

	out := []course.Course{}

	err = r.observe("courses.find", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+courseColumns+` FROM courses`+clause.SQL, clause.Args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			c, err := scanCourse(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CoursesRepo) Count(ctx context.Context) (int, error) {
	return r.count(ctx, "courses.count", "courses")
}

// Populate replaces each course's bootcamp id with its summary.
func (r *CoursesRepo) Populate(ctx context.Context, items []course.Course) error {
	ids := make([]string, len(items))
	for i, c := range items {
		ids[i] = c.Bootcamp.ID
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
