package http

import (
	"context"

	"github.com/geocoder89/bootcamphub/internal/auth"
	"github.com/geocoder89/bootcamphub/internal/config"
	"github.com/geocoder89/bootcamphub/internal/domain/user"
	"github.com/geocoder89/bootcamphub/internal/http/handlers"
	"github.com/geocoder89/bootcamphub/internal/http/middlewares"
	"github.com/geocoder89/bootcamphub/internal/notifications"
	"github.com/geocoder89/bootcamphub/internal/observability"
	"github.com/geocoder89/bootcamphub/internal/ratelimit"
	"github.com/geocoder89/bootcamphub/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	serviceName = "bootcamphub"
	photoRoute  = "/api/v1/bootcamps/:id/photo"
)

// UserRepo is everything the auth, guard and admin handlers need from the
// principal store.
type UserRepo interface {
	handlers.AuthUsers
	handlers.UserStore
}

type BootcampRepo interface {
	handlers.BootcampStore
	handlers.Aggregates
}

// Deps are the collaborators the router wires into handlers. Optional ones
// may be nil: Ping (readiness always passes), Prom (no request metrics),
// Limiter (no rate limit), Cache (list caching off).
type Deps struct {
	Config    config.Config
	Ping      func(ctx context.Context) error
	Prom      *observability.Prom
	Gatherer  prometheus.Gatherer
	Tokens    *auth.Manager
	Users     UserRepo
	Bootcamps BootcampRepo
	Courses   handlers.CourseStore
	Reviews   handlers.ReviewStore
	Mailer    notifications.Mailer
	Photos    storage.PhotoStore
	Limiter   ratelimit.Limiter
	Cache     handlers.ListCache
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(middlewares.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(otelgin.Middleware(serviceName))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders(d.Config.IsProduction()))
	r.Use(middlewares.CORSMiddleware(d.Config.CORSOrigins))
	// uploads need room for the file plus multipart framing
	r.Use(middlewares.MaxBodyBytes(d.Config.MaxFileUpload + 1<<20))
	if d.Limiter != nil {
		r.Use(middlewares.RateLimit(d.Limiter, middlewares.KeyByIP))
	}
	r.Use(middlewares.ErrorHandler())
	r.Use(middlewares.RequireJSON(photoRoute))

	// ops
	h := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// wire up handlers
	lists := handlers.NewLists(d.Cache)
	guard := middlewares.NewGuard(d.Tokens, d.Users)

	authHandler := handlers.NewAuthHandler(d.Users, d.Tokens, d.Mailer, lists, d.Config)
	bootcampsHandler := handlers.NewBootcampsHandler(d.Bootcamps, d.Photos, d.Config.MaxFileUpload, lists)
	coursesHandler := handlers.NewCoursesHandler(d.Courses, d.Bootcamps, lists)
	reviewsHandler := handlers.NewReviewsHandler(d.Reviews, d.Bootcamps, lists)
	usersHandler := handlers.NewUsersHandler(d.Users, lists)

	protect := guard.Protect()
	publishers := guard.Authorize(user.RolePublisher, user.RoleAdmin)
	reviewers := guard.Authorize(user.RoleUser, user.RoleAdmin)

	v1 := r.Group("/api/v1")

	a := v1.Group("/auth")
	a.POST("/register", authHandler.Register)
	a.POST("/login", authHandler.Login)
	a.GET("/logout", authHandler.Logout)
	a.GET("/me", protect, authHandler.Me)
	a.PUT("/updatedetails", protect, authHandler.UpdateDetails)
	a.PUT("/updatepassword", protect, authHandler.UpdatePassword)
	a.POST("/forgotpassword", authHandler.ForgotPassword)
	a.PUT("/resetpassword/:resettoken", authHandler.ResetPassword)

	// nested routes share the :id wildcard with /bootcamps/:id
	b := v1.Group("/bootcamps")
	b.GET("", bootcampsHandler.List)
	b.POST("", protect, publishers, bootcampsHandler.Create)
	b.GET("/:id", bootcampsHandler.Get)
	b.PUT("/:id", protect, publishers, bootcampsHandler.Update)
	b.DELETE("/:id", protect, publishers, bootcampsHandler.Delete)
	b.PUT("/:id/photo", protect, publishers, bootcampsHandler.UploadPhoto)
	b.GET("/:id/courses", coursesHandler.ListForBootcamp)
	b.POST("/:id/courses", protect, publishers, coursesHandler.Create)
	b.GET("/:id/reviews", reviewsHandler.ListForBootcamp)
	b.POST("/:id/reviews", protect, reviewers, reviewsHandler.Create)

	c := v1.Group("/courses")
	c.GET("", coursesHandler.List)
	c.GET("/:id", coursesHandler.Get)
	c.PUT("/:id", protect, publishers, coursesHandler.Update)
	c.DELETE("/:id", protect, publishers, coursesHandler.Delete)

	rv := v1.Group("/reviews")
	rv.GET("", reviewsHandler.List)
	rv.GET("/:id", reviewsHandler.Get)
	rv.PUT("/:id", protect, reviewers, reviewsHandler.Update)
	rv.DELETE("/:id", protect, reviewers, reviewsHandler.Delete)

	u := v1.Group("/users", protect, guard.Authorize(user.RoleAdmin))
	u.GET("", usersHandler.List)
	u.POST("", usersHandler.Create)
	u.GET("/:id", usersHandler.Get)
	u.PUT("/:id", usersHandler.Update)
	u.DELETE("/:id", usersHandler.Delete)

	return r
}
