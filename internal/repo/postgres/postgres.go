package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/geocoder89/bootcamphub/internal/observability"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// store is embedded by every repo: the pool plus the db metrics hook.
type store struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func (s store) observe(op string, fn func() error) error {
	if s.prom != nil {
		return s.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (s store) count(ctx context.Context, op, table string) (int, error) {
	var n int
	err := s.observe(op, func() error {
		return s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
	})
	return n, err
}

func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return false
}

// setBuilder collects the SET clause of a partial update.
type setBuilder struct {
	sets []string
	args []any
}

func (b *setBuilder) add(col string, v any) {
	b.args = append(b.args, v)
	b.sets = append(b.sets, col+" = $"+strconv.Itoa(len(b.args)))
}

func (b *setBuilder) empty() bool { return len(b.sets) == 0 }

// sql renders "SET ... WHERE id = $n" with id appended as the last argument.
func (b *setBuilder) sql(id string) (string, []any) {
	args := append(b.args, id)
	return " SET " + strings.Join(b.sets, ", ") + " WHERE id = $" + strconv.Itoa(len(args)), args
}
