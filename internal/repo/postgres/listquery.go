package postgres

import (
	"strconv"
	"strings"
	"time"

	"github.com/geocoder89/bootcamphub/internal/query"
)

var sqlOps = map[query.Op]string{
	query.OpEq:  "=",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// listClause is the tail of a list query: WHERE, ORDER BY, LIMIT and OFFSET.
type listClause struct {
	SQL  string
	Args []any
}

// compileList turns a validated descriptor into SQL. Column names only ever
// come from the schema; every user supplied value travels as a bind argument.
func compileList(schema query.Schema, d query.Descriptor) (listClause, error) {
	if err := schema.Validate(d); err != nil {
		return listClause{}, err
	}

	var (
		conds []string
		args  []any
	)

	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	for _, field := range d.Filter.FilterFields() {
		col := schema[field]

		for _, op := range d.Filter.Ops(field) {
			cond, err := compileCondition(field, col, op, d.Filter[field][op], next)
			if err != nil {
				return listClause{}, err
			}
			conds = append(conds, cond)
		}
	}

	var b strings.Builder

	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	order := make([]string, 0, len(d.Sort)+1)
	hasID := false
	for _, k := range d.Sort {
		c := schema[k.Field].Column
		if c == "id" {
			hasID = true
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		order = append(order, c+" "+dir)
	}

	// stable ordering for pagination
	if !hasID {
		order = append(order, "id ASC")
	}

	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(order, ", "))

	start, end := d.Window()
	b.WriteString(" LIMIT " + next(end-start))
	b.WriteString(" OFFSET " + next(start))

	return listClause{SQL: b.String(), Args: args}, nil
}

func compileCondition(field string, col query.Field, op query.Op, raw any, next func(any) string) (string, error) {
	if err := query.CheckOp(field, col.Kind, op); err != nil {
		return "", err
	}

	if col.Kind == query.KindStringArray {
		if op == query.OpIn {
			vals, err := query.CoerceList(field, col.Kind, raw)
			if err != nil {
				return "", err
			}
			return col.Column + " && " + next(toStrings(vals)), nil
		}

		v, err := query.Coerce(field, col.Kind, raw)
		if err != nil {
			return "", err
		}
		return next(v) + " = ANY(" + col.Column + ")", nil
	}

	if op == query.OpIn {
		vals, err := query.CoerceList(field, col.Kind, raw)
		if err != nil {
			return "", err
		}
		return col.Column + " = ANY(" + next(typedSlice(col.Kind, vals)) + ")", nil
	}

	v, err := query.Coerce(field, col.Kind, raw)
	if err != nil {
		return "", err
	}

	return col.Column + " " + sqlOps[op] + " " + next(v), nil
}

func typedSlice(kind query.Kind, vals []any) any {
	switch kind {
	case query.KindNumber:
		out := make([]float64, len(vals))
		for i, v := range vals {
			out[i] = v.(float64)
		}
		return out
	case query.KindBool:
		out := make([]bool, len(vals))
		for i, v := range vals {
			out[i] = v.(bool)
		}
		return out
	case query.KindTime:
		out := make([]time.Time, len(vals))
		for i, v := range vals {
			out[i] = v.(time.Time)
		}
		return out
	default:
		return toStrings(vals)
	}
}

func toStrings(vals []any) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.(string)
	}
	return out
}
