package query_test

import (
	"net/url"
	"testing"

	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMap_FullDescriptor(t *testing.T) {
	d, err := query.ParseMap(map[string]string{
		"price[gt]": "100",
		"select":    "name,price",
		"sort":      "-price",
		"page":      "2",
		"limit":     "10",
	})
	require.NoError(t, err)

	assert.Equal(t, query.Filter{"price": {query.OpGt: int64(100)}}, d.Filter)
	assert.Equal(t, []string{"name", "price"}, d.Select)
	assert.Equal(t, []query.SortKey{{Field: "price", Desc: true}}, d.Sort)
	assert.Equal(t, 2, d.Page)
	assert.Equal(t, 10, d.Limit)
}

func TestParse_Defaults(t *testing.T) {
	d, err := query.Parse(url.Values{})
	require.NoError(t, err)

	assert.Empty(t, d.Filter)
	assert.Nil(t, d.Select)
	assert.Equal(t, []query.SortKey{{Field: "createdAt", Desc: true}}, d.Sort)
	assert.Equal(t, query.DefaultPage, d.Page)
	assert.Equal(t, query.DefaultLimit, d.Limit)
}

func TestParse_PageAndLimitCoercion(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit int
	}{
		{"abc", "xyz", 1, 25},
		{"0", "0", 1, 25},
		{"-3", "-10", 1, 25},
		{" 4 ", "50", 4, 50},
		{"", "", 1, 25},
		{"1.5", "2e3", 1, 25},
		{"3074457345618258603", "3", query.MaxPage, 3},
		{"2", "900000000000000000", 2, query.MaxLimit},
		{"99999999999999999999999", "99999999999999999999999", query.MaxPage, query.MaxLimit},
		{"-99999999999999999999999", "101", 1, query.MaxLimit},
	}

	for _, tt := range tests {
		d, err := query.ParseMap(map[string]string{"page": tt.page, "limit": tt.limit})
		require.NoError(t, err)
		assert.Equal(t, tt.wantPage, d.Page, "page=%q", tt.page)
		assert.Equal(t, tt.wantLimit, d.Limit, "limit=%q", tt.limit)
	}
}

func TestParse_Operators(t *testing.T) {
	v := url.Values{}
	v.Set("averageCost[gte]", "5000")
	v.Set("averageCost[lte]", "12000.5")
	v.Set("careers[in]", "Business, UI/UX,,Other")
	v.Set("housing", "true")
	v.Set("name", "Devworks Bootcamp")

	d, err := query.Parse(v)
	require.NoError(t, err)

	assert.Equal(t, query.Filter{
		"averageCost": {query.OpGte: int64(5000), query.OpLte: 12000.5},
		"careers":     {query.OpIn: []any{"Business", "UI/UX", "Other"}},
		"housing":     {query.OpEq: true},
		"name":        {query.OpEq: "Devworks Bootcamp"},
	}, d.Filter)
}

func TestParse_InIsAlwaysAList(t *testing.T) {
	d, err := query.ParseMap(map[string]string{"tuition[in]": "8000"})
	require.NoError(t, err)
	assert.Equal(t, []any{int64(8000)}, d.Filter["tuition"][query.OpIn])

	d, err = query.ParseMap(map[string]string{"tuition[in]": ""})
	require.NoError(t, err)
	assert.Equal(t, []any{}, d.Filter["tuition"][query.OpIn])
}

func TestParse_LiteralsThatStayStrings(t *testing.T) {
	d, err := query.ParseMap(map[string]string{
		"phone":  "0123",
		"weeks":  "1.50",
		"title":  "True",
		"rating": "1e3",
	})
	require.NoError(t, err)

	assert.Equal(t, "0123", d.Filter["phone"][query.OpEq])
	assert.Equal(t, "1.50", d.Filter["weeks"][query.OpEq])
	assert.Equal(t, "True", d.Filter["title"][query.OpEq])
	assert.Equal(t, "1e3", d.Filter["rating"][query.OpEq])
}

func TestParse_RejectsOperatorsOutsideAllowList(t *testing.T) {
	for _, key := range []string{
		"price[ne]",
		"price[$gt]",
		"price[where]",
		"price[regex]",
		"price[]",
		"price[gt",
		"[gt]",
		"$where",
		"price[gt][lt]",
		"a.b",
	} {
		_, err := query.ParseMap(map[string]string{key: "1"})
		assert.ErrorIs(t, err, query.ErrInvalidQuery, key)

		var qe *query.Error
		assert.ErrorAs(t, err, &qe, key)
	}
}

func TestParse_SelectAndSort(t *testing.T) {
	d, err := query.ParseMap(map[string]string{
		"select": " name, ,description,name",
		"sort":   "name, -createdAt,+averageCost",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "description"}, d.Select)
	assert.Equal(t, []query.SortKey{
		{Field: "name"},
		{Field: "createdAt", Desc: true},
		{Field: "averageCost"},
	}, d.Sort)

	_, err = query.ParseMap(map[string]string{"select": "name;drop"})
	assert.ErrorIs(t, err, query.ErrInvalidQuery)

	_, err = query.ParseMap(map[string]string{"sort": "--name"})
	assert.ErrorIs(t, err, query.ErrInvalidQuery)
}

func TestParse_RepeatedKeyUsesFirstValue(t *testing.T) {
	d, err := query.Parse(url.Values{"limit": {"5", "500"}, "name": {"a", "b"}})
	require.NoError(t, err)

	assert.Equal(t, 5, d.Limit)
	assert.Equal(t, "a", d.Filter["name"][query.OpEq])
}

func TestDescriptor_Window(t *testing.T) {
	d := query.Descriptor{Page: 2, Limit: 10}
	start, end := d.Window()
	assert.Equal(t, 10, start)
	assert.Equal(t, 20, end)
}

func TestDescriptor_Canonical(t *testing.T) {
	a, err := query.Parse(url.Values{"b[gt]": {"1"}, "a": {"x"}, "select": {"a,b"}})
	require.NoError(t, err)
	b, err := query.Parse(url.Values{"a": {"x"}, "select": {"a,b"}, "b[gt]": {"1"}})
	require.NoError(t, err)

	assert.Equal(t, a.Canonical(), b.Canonical())
	assert.Equal(t, `a[eq]="x"&b[gt]=1&select=a,b&sort=-createdAt&page=1&limit=25`, a.Canonical())
}

func TestSchema_Validate(t *testing.T) {
	schema := query.Schema{
		"name":      {Column: "name", Kind: query.KindString},
		"createdAt": {Column: "created_at", Kind: query.KindTime},
	}

	d, err := query.ParseMap(map[string]string{"name": "x", "select": "name"})
	require.NoError(t, err)
	assert.NoError(t, schema.Validate(d))

	d, err = query.ParseMap(map[string]string{"password": "x"})
	require.NoError(t, err)
	assert.ErrorIs(t, schema.Validate(d), query.ErrInvalidQuery)

	d, err = query.ParseMap(map[string]string{"sort": "password"})
	require.NoError(t, err)
	assert.ErrorIs(t, schema.Validate(d), query.ErrInvalidQuery)
}

func TestDescriptor_WindowStaysInRange(t *testing.T) {
	d, err := query.ParseMap(map[string]string{"page": "3074457345618258603", "limit": "3"})
	require.NoError(t, err)

	start, end := d.Window()
	assert.GreaterOrEqual(t, start, 0)
	assert.Equal(t, start+d.Limit, end)

	// a hand-built descriptor is bounded the same way
	start, end = query.Descriptor{Page: 1 << 62, Limit: 1 << 62}.Window()
	assert.Equal(t, (query.MaxPage-1)*query.MaxLimit, start)
	assert.Equal(t, query.MaxPage*query.MaxLimit, end)
}

func TestBounds(t *testing.T) {
	page, limit := query.Bounds(0, 0)
	assert.Equal(t, query.DefaultPage, page)
	assert.Equal(t, query.DefaultLimit, limit)

	page, limit = query.Bounds(query.MaxPage+1, query.MaxLimit+1)
	assert.Equal(t, query.MaxPage, page)
	assert.Equal(t, query.MaxLimit, limit)

	page, limit = query.Bounds(7, 40)
	assert.Equal(t, 7, page)
	assert.Equal(t, 40, limit)
}
