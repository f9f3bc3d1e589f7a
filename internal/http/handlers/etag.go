package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// renderedJSON is a marshaled response body with its strong ETag. List pages
// are cached in this form.
type renderedJSON struct {
	body []byte
	etag string
}

func renderJSON(payload any) (renderedJSON, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return renderedJSON{}, err
	}

	sum := sha256.Sum256(b)

	return renderedJSON{body: b, etag: `"` + hex.EncodeToString(sum[:]) + `"`}, nil
}

// writeWithETag answers 304 when the client already holds the body.
func writeWithETag(ctx *gin.Context, status int, r renderedJSON) {
	ctx.Header("ETag", r.etag)

	if ifNoneMatchMatches(ctx.GetHeader("If-None-Match"), r.etag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.Data(status, "application/json; charset=utf-8", r.body)
}

func ifNoneMatchMatches(headerValue, currentETag string) bool {
	if strings.TrimSpace(headerValue) == "" || strings.TrimSpace(currentETag) == "" {
		return false
	}

	if strings.TrimSpace(headerValue) == "*" {
		return true
	}

	current := normalizeETag(currentETag)

	for _, part := range strings.Split(headerValue, ",") {
		if normalizeETag(part) == current {
			return true
		}
	}

	return false
}

func normalizeETag(raw string) string {
	v := strings.TrimSpace(raw)

	// RFC allows weak validators like W/"abc".
	if strings.HasPrefix(v, "W/") {
		v = strings.TrimSpace(strings.TrimPrefix(v, "W/"))
	}

	return v
}
