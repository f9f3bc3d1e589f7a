package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/bootcamphub/internal/actorctx"
	"github.com/geocoder89/bootcamphub/internal/apperr"
	"github.com/geocoder89/bootcamphub/internal/auth"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/http/middlewares"
	"github.com/geocoder89/bootcamphub/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers struct {
	getFn func(ctx context.Context, id string) (user.User, error)
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

type errorBody struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func guardRouter(jwt *auth.Manager, users middlewares.PrincipalLoader, roles ...string) *gin.Engine {
	g := middlewares.NewGuard(jwt, users)

	r := gin.New()
	r.Use(middlewares.ErrorHandler())

	chain := []gin.HandlerFunc{g.Protect()}
	if len(roles) > 0 {
		chain = append(chain, g.Authorize(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		u, ok := actorctx.PrincipalFrom(c.Request.Context())
		if !ok {
			c.Status(http.StatusTeapot)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": u.ID})
	})

	r.GET("/private", chain...)
	return r
}

func TestGuard(t *testing.T) {
	jwt := auth.NewManager("test-secret", time.Hour)

	publisher := user.User{ID: "u-pub", Role: user.RolePublisher}
	users := &fakeUsers{getFn: func(ctx context.Context, id string) (user.User, error) {
		if id == publisher.ID {
			return publisher, nil
		}
		return user.User{}, user.ErrNotFound
	}}

	valid, err := jwt.IssueSessionToken(publisher.ID)
	require.NoError(t, err)

	expiredMgr := jwt.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	expired, err := expiredMgr.IssueSessionToken(publisher.ID)
	require.NoError(t, err)

	orphan, err := jwt.IssueSessionToken("deleted-user")
	require.NoError(t, err)

	tests := []struct {
		name       string
		roles      []string
		header     string
		cookie     string
		wantStatus int
		wantError  string
	}{
		{name: "no_token", wantStatus: http.StatusUnauthorized, wantError: "Not authorized to access this route"},
		{name: "malformed_header", header: "Token " + valid, wantStatus: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantStatus: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer abc.def.ghi", wantStatus: http.StatusUnauthorized},
		{name: "unknown_principal", header: "Bearer " + orphan, wantStatus: http.StatusUnauthorized},
		{name: "bearer_ok", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "cookie_fallback", cookie: valid, wantStatus: http.StatusOK},
		{name: "empty_bearer_ignores_cookie", header: "Bearer ", cookie: valid, wantStatus: http.StatusUnauthorized},
		{name: "bare_bearer_ignores_cookie", header: "Bearer", cookie: valid, wantStatus: http.StatusUnauthorized},
		{name: "other_scheme_uses_cookie", header: "Basic dXNlcjpwdw==", cookie: valid, wantStatus: http.StatusOK},
		{name: "role_allowed", roles: []string{user.RolePublisher, user.RoleAdmin}, header: "Bearer " + valid, wantStatus: http.StatusOK},
		{
			name:       "role_denied",
			roles:      []string{user.RoleAdmin},
			header:     "Bearer " + valid,
			wantStatus: http.StatusForbidden,
			wantError:  "User role publisher is not authorized to access this route",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := guardRouter(jwt, users, tt.roles...)

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: middlewares.TokenCookie, Value: tt.cookie})
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())

			if tt.wantStatus != http.StatusOK {
				body := decodeError(t, w)
				assert.False(t, body.Success)
				if tt.wantError != "" {
					assert.Equal(t, tt.wantError, body.Error)
				}
			} else {
				assert.JSONEq(t, `{"id":"u-pub"}`, w.Body.String())
			}
		})
	}
}

func TestErrorHandler_MapsTaxonomy(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"validation", apperr.Validation("Please add a name"), http.StatusBadRequest, "Please add a name"},
		{"not_found", apperr.NotFound("Bootcamp not found with id of 1"), http.StatusNotFound, "Bootcamp not found with id of 1"},
		{"delivery", apperr.Delivery("Email could not be sent", errors.New("dial tcp: refused")), http.StatusInternalServerError, "Email could not be sent"},
		{"unclassified", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.ErrorHandler())
			r.GET("/x", func(c *gin.Context) { _ = c.Error(tt.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decodeError(t, w)
			assert.False(t, body.Success)
			assert.Equal(t, tt.wantMsg, body.Error)
			assert.NotContains(t, w.Body.String(), "dial tcp")
		})
	}
}

func TestRecovery(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server Error"}`, w.Body.String())
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.ErrorHandler())
	r.Use(middlewares.RequireJSON("/upload"))
	ok := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	r.POST("/things", ok)
	r.PUT("/upload", ok)

	do := func(method, path, ct, body string) int {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		if ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/things", "application/json; charset=utf-8", `{}`))
	assert.Equal(t, http.StatusBadRequest, do(http.MethodPost, "/things", "text/plain", `hi`))
	assert.Equal(t, http.StatusNoContent, do(http.MethodPost, "/things", "", ``))
	assert.Equal(t, http.StatusNoContent, do(http.MethodPut, "/upload", "multipart/form-data; boundary=x", `--x--`))
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RateLimit(ratelimit.NewMemory(2, time.Minute), middlewares.KeyByIP))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		last = httptest.NewRecorder()
		r.ServeHTTP(last, req)
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{200, 200, 429}, codes)
	assert.Equal(t, "60", last.Header().Get("Retry-After"))
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis down")
}

func TestRateLimit_FailsOpen(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RateLimit(brokenLimiter{}, middlewares.KeyByIP))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.SecurityHeaders(false))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"))
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"https://app.example.com"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
