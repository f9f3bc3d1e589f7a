package query

import (
	"sort"
	"strconv"
	"strings"
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	DefaultSort  = "-createdAt"

	// MaxLimit and MaxPage keep page*limit far below the int range.
	MaxLimit = 100
	MaxPage  = 1_000_000
)

// Bounds normalizes a page and page size: non-positive values take the
// defaults and oversized ones are clamped to MaxPage and MaxLimit.
func Bounds(page, limit int) (int, int) {
	switch {
	case page < 1:
		page = DefaultPage
	case page > MaxPage:
		page = MaxPage
	}

	switch {
	case limit < 1:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return page, limit
}

// Filter maps a field to its operator predicates, e.g. price -> {gt: 100}.
// An OpIn value is always a []any.
type Filter map[string]map[Op]any

type SortKey struct {
	Field string
	Desc  bool
}

func (k SortKey) String() string {
	if k.Desc {
		return "-" + k.Field
	}
	return k.Field
}

// Descriptor is the normalized form of a list request.
type Descriptor struct {
	Filter Filter
	Select []string
	Sort   []SortKey
	Page   int
	Limit  int
}

// Window returns the zero-based [start, end) item range of the requested page.
func (d Descriptor) Window() (start, end int) {
	page, limit := Bounds(d.Page, d.Limit)
	return (page - 1) * limit, page * limit
}

// Fields lists every field name the descriptor touches, sorted and de-duplicated.
func (d Descriptor) Fields() []string {
	seen := make(map[string]struct{})

	for f := range d.Filter {
		seen[f] = struct{}{}
	}
	for _, f := range d.Select {
		seen[f] = struct{}{}
	}
	for _, k := range d.Sort {
		seen[k.Field] = struct{}{}
	}

	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)

	return out
}

// FilterFields returns the filtered field names in a stable order.
func (f Filter) FilterFields() []string {
	out := make([]string, 0, len(f))
	for k := range f {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ops returns the operators of one field in a stable order.
func (f Filter) Ops(field string) []Op {
	preds := f[field]
	out := make([]Op, 0, len(preds))
	for op := range preds {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Canonical renders the descriptor deterministically; used for cache keys.
func (d Descriptor) Canonical() string {
	var b strings.Builder

	for _, field := range d.Filter.FilterFields() {
		for _, op := range d.Filter.Ops(field) {
			b.WriteString(field)
			b.WriteByte('[')
			b.WriteString(string(op))
			b.WriteString("]=")
			b.WriteString(formatValue(d.Filter[field][op]))
			b.WriteByte('&')
		}
	}

	b.WriteString("select=")
	b.WriteString(strings.Join(d.Select, ","))

	keys := make([]string, len(d.Sort))
	for i, k := range d.Sort {
		keys[i] = k.String()
	}
	b.WriteString("&sort=")
	b.WriteString(strings.Join(keys, ","))

	b.WriteString("&page=")
	b.WriteString(strconv.Itoa(d.Page))
	b.WriteString("&limit=")
	b.WriteString(strconv.Itoa(d.Limit))

	return b.String()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case []any:
		parts := make([]string, len(x))
		for i, p := range x {
			parts[i] = formatValue(p)
		}
		return strings.Join(parts, ",")
	case string:
		return strconv.Quote(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
