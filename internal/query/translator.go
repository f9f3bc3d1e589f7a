package query

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidQuery is the root of every error Parse returns.
var ErrInvalidQuery = errors.New("invalid query")

// Error describes the offending parameter.
type Error struct {
	Key    string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid query parameter %q: %s", e.Key, e.Reason)
}

func (e *Error) Unwrap() error {
	return ErrInvalidQuery
}

var reserved = map[string]struct{}{
	"select": {},
	"sort":   {},
	"page":   {},
	"limit":  {},
}

var allowedOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

var fieldName = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Parse turns raw list-endpoint parameters into a Descriptor. Only the first
// value of a repeated key is used. Filter keys take the form field or
// field[op] with op in gt, gte, lt, lte, in; anything else is rejected.
// page and limit never fail: malformed or non-positive values fall back to
// the defaults and oversized ones are clamped to MaxPage and MaxLimit.
func Parse(params url.Values) (Descriptor, error) {
	page, limit := Bounds(
		positiveInt(first(params, "page"), DefaultPage),
		positiveInt(first(params, "limit"), DefaultLimit),
	)

	d := Descriptor{
		Filter: Filter{},
		Page:   page,
		Limit:  limit,
	}

	for key := range params {
		if _, ok := reserved[key]; ok {
			continue
		}

		field, op, err := splitKey(key)
		if err != nil {
			return Descriptor{}, err
		}

		raw := first(params, key)

		preds, ok := d.Filter[field]
		if !ok {
			preds = map[Op]any{}
			d.Filter[field] = preds
		}

		if op == OpIn {
			preds[op] = splitList(raw)
			continue
		}
		preds[op] = coerce(raw)
	}

	sel, err := parseSelect(first(params, "select"))
	if err != nil {
		return Descriptor{}, err
	}
	d.Select = sel

	keys, err := parseSort(first(params, "sort"))
	if err != nil {
		return Descriptor{}, err
	}
	d.Sort = keys

	return d, nil
}

// ParseMap is Parse for a flat single-valued map.
func ParseMap(params map[string]string) (Descriptor, error) {
	v := make(url.Values, len(params))
	for k, val := range params {
		v.Set(k, val)
	}
	return Parse(v)
}

func splitKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open == -1 {
		if !fieldName.MatchString(key) {
			return "", "", &Error{Key: key, Reason: "malformed field name"}
		}
		return key, OpEq, nil
	}

	if !strings.HasSuffix(key, "]") {
		return "", "", &Error{Key: key, Reason: "unterminated operator"}
	}

	field := key[:open]
	token := key[open+1 : len(key)-1]

	if !fieldName.MatchString(field) {
		return "", "", &Error{Key: key, Reason: "malformed field name"}
	}

	op, ok := allowedOps[token]
	if !ok {
		return "", "", &Error{Key: key, Reason: "unsupported operator"}
	}

	return field, op, nil
}

func parseSelect(raw string) ([]string, error) {
	var out []string
	seen := map[string]struct{}{}

	for _, part := range strings.Split(raw, ",") {
		f := strings.TrimSpace(part)
		if f == "" {
			continue
		}
		if !fieldName.MatchString(f) {
			return nil, &Error{Key: "select", Reason: "malformed field " + strconv.Quote(f)}
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}

	return out, nil
}

func parseSort(raw string) ([]SortKey, error) {
	var out []SortKey

	for _, part := range strings.Split(raw, ",") {
		// a literal "+" arrives as a space once the query string is decoded
		f := strings.TrimSpace(part)
		if f == "" {
			continue
		}

		key := SortKey{Field: f}
		switch f[0] {
		case '-':
			key = SortKey{Field: f[1:], Desc: true}
		case '+':
			key = SortKey{Field: f[1:]}
		}

		if !fieldName.MatchString(key.Field) {
			return nil, &Error{Key: "sort", Reason: "malformed field " + strconv.Quote(f)}
		}
		out = append(out, key)
	}

	if len(out) == 0 {
		out = []SortKey{{Field: "createdAt", Desc: true}}
	}

	return out, nil
}

func splitList(raw string) []any {
	out := []any{}
	for _, part := range strings.Split(raw, ",") {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}
		out = append(out, coerce(p))
	}
	return out
}

// coerce turns numeric and boolean literals into typed values. A literal only
// converts when it round-trips exactly, so "007" or "1.50" stay strings.
func coerce(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil && strconv.FormatInt(n, 10) == raw {
		return n
	}

	if f, err := strconv.ParseFloat(raw, 64); err == nil && strconv.FormatFloat(f, 'f', -1, 64) == raw {
		return f
	}

	switch raw {
	case "true":
		return true
	case "false":
		return false
	}

	return raw
}

func positiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return n
	}
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func first(params url.Values, key string) string {
	vals := params[key]
	if len(vals) == 0 {
		return ""
	}
	return vals[0]
}
