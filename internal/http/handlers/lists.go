package handlers

import (
	"net/http"

	"github.com/geocoder89/bootcamphub/internal/query"
	"github.com/geocoder89/bootcamphub/internal/results"
	"github.com/geocoder89/bootcamphub/internal/utils"
	"github.com/gin-gonic/gin"
)

const (
	resourceBootcamps = "bootcamps"
	resourceCourses   = "courses"
	resourceReviews   = "reviews"
	resourceUsers     = "users"
)

// ListCache is the slice of cache.Cache the list endpoints use.
type ListCache interface {
	Get(key string) (any, bool)
	Set(key string, val any)
	DeletePrefix(prefix string)
	Clear()
}

// Lists serves advanced-results listings and owns their response cache.
// A nil cache disables caching.
type Lists struct {
	cache ListCache
}

func NewLists(cache ListCache) *Lists {
	return &Lists{cache: cache}
}

// invalidate drops cached pages of resources, or everything when none are named.
func (l *Lists) invalidate(resources ...string) {
	if l == nil || l.cache == nil {
		return
	}
	if len(resources) == 0 {
		l.cache.Clear()
		return
	}
	for _, r := range resources {
		l.cache.DeletePrefix(utils.ListCachePrefix(r))
	}
}

// serveList parses the query string, fetches one page from src and writes
// it with an ETag.
func serveList[T any](ctx *gin.Context, l *Lists, resource string, src results.Source[T], populate results.Populator[T]) {
	d, err := query.Parse(ctx.Request.URL.Query())
	if err != nil {
		fail(ctx, classify(err, ""))
		return
	}

	key := utils.BuildListCacheKey(resource, d)

	if l != nil && l.cache != nil {
		if v, ok := l.cache.Get(key); ok {
			if r, ok := v.(renderedJSON); ok {
				writeWithETag(ctx, http.StatusOK, r)
				return
			}
		}
	}

	page, err := results.Fetch(ctx.Request.Context(), src, d, populate)
	if err != nil {
		fail(ctx, classify(err, ""))
		return
	}

	r, err := renderJSON(page)
	if err != nil {
		fail(ctx, classify(err, ""))
		return
	}

	if l != nil && l.cache != nil {
		l.cache.Set(key, r)
	}

	writeWithETag(ctx, http.StatusOK, r)
}
