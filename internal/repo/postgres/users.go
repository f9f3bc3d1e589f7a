package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/observability"
	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/geocoder89/bootcamphub/internal/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const userColumns = `id, name, email, role, password_hash, reset_password_token, reset_password_expire, created_at`

type UsersRepo struct {
	store
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{store{pool: pool, prom: prom}}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Role,
		&u.PasswordHash,
		&u.ResetPasswordToken,
		&u.ResetPasswordExpire,
		&u.CreatedAt,
	)
	return u, err
}

func userErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}
	if IsUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) Create(ctx context.Context, nu user.NewUser) (user.User, error) {
	var u user.User

	err := r.observe("users.create", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`INSERT INTO users (id, name, email, role, password_hash, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+userColumns,
			uuid.NewString(), nu.Name, nu.Email, nu.Role, nu.PasswordHash, time.Now().UTC(),
		))
		return err
	})

	if err != nil {
		return user.User{}, userErr(err)
	}
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if !utils.IsUUID(id) {
		return user.User{}, user.ErrNotFound
	}

	var u user.User
	err := r.observe("users.get_by_id", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})

	if err != nil {
		return user.User{}, userErr(err)
	}
	return u, nil
}

// GetByEmail includes the password hash, it backs login.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User
	err := r.observe("users.get_by_email", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})

	if err != nil {
		return user.User{}, userErr(err)
	}
	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, c user.Changes) (user.User, error) {
	if c.Empty() {
		return r.GetByID(ctx, id)
	}
	if !utils.IsUUID(id) {
		return user.User{}, user.ErrNotFound
	}

	var b setBuilder
	if c.Name != nil {
		b.add("name", *c.Name)
	}
	if c.Email != nil {
		b.add("email", *c.Email)
	}
	if c.Role != nil {
		b.add("role", *c.Role)
	}
	if c.PasswordHash != nil {
		b.add("password_hash", *c.PasswordHash)
	}

	set, args := b.sql(id)

	var u user.User
	err := r.observe("users.update", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx, `UPDATE users`+set+` RETURNING `+userColumns, args...))
		return err
	})

	if err != nil {
		return user.User{}, userErr(err)
	}
	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	if !utils.IsUUID(id) {
		return user.ErrNotFound
	}

	return r.observe("users.delete", func() error {
		tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

// SetResetToken stores the hash of a reset token and its expiry.
func (r *UsersRepo) SetResetToken(ctx context.Context, id, hash string, expire time.Time) error {
	return r.observe("users.set_reset_token", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET reset_password_token = $2, reset_password_expire = $3 WHERE id = $1`,
			id, hash, expire,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return user.ErrNotFound
		}
		return nil
	})
}

func (r *UsersRepo) ClearResetToken(ctx context.Context, id string) error {
	return r.observe("users.clear_reset_token", func() error {
		_, err := r.pool.Exec(ctx,
			`UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL WHERE id = $1`,
			id,
		)
		return err
	})
}

// GetByResetToken finds the user holding hash with an expiry after now.
func (r *UsersRepo) GetByResetToken(ctx context.Context, hash string, now time.Time) (user.User, error) {
	var u user.User
	err := r.observe("users.get_by_reset_token", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`SELECT `+userColumns+` FROM users
			WHERE reset_password_token = $1 AND reset_password_expire > $2`,
			hash, now,
		))
		return err
	})

	if err != nil {
		return user.User{}, userErr(err)
	}
	return u, nil
}

// ResetPassword stores the new hash and clears the reset fields in one statement.
func (r *UsersRepo) ResetPassword(ctx context.Context, id, passwordHash string) (user.User, error) {
	var u user.User
	err := r.observe("users.reset_password", func() error {
		var err error
		u, err = scanUser(r.pool.QueryRow(ctx,
			`UPDATE users
			SET password_hash = $2, reset_password_token = NULL, reset_password_expire = NULL
			WHERE id = $1
			RETURNING `+userColumns,
			id, passwordHash,
		))
		return err
	})

	if err != nil {
		return user.User{}, userErr(err)
	}
	return u, nil
}

func (r *UsersRepo) ClearExpiredResetTokens(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	err := r.observe("users.clear_expired_reset_tokens", func() error {
		tag, err := r.pool.Exec(ctx,
			`UPDATE users SET reset_password_token = NULL, reset_password_expire = NULL
			WHERE reset_password_expire IS NOT NULL AND reset_password_expire <= $1`,
			now,
		)
		n = tag.RowsAffected()
		return err
	})
	return n, err
}

func (r *UsersRepo) Find(ctx context.Context, d query.Descriptor) ([]user.User, error) {
	clause, err := compileList(user.Schema, d)
	if err != nil {
		return nil, err
	}

	out := []user.User{}

	err = r.observe("users.find", func() error {
		rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users`+clause.SQL, clause.Args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	return r.count(ctx, "users.count", "users")
}
