package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/bootcamphub/internal/auth"
	"github.com/geocoder89/bootcamphub/internal/cache"
	"github.com/geocoder89/bootcamphub/internal/config"
	"github.com/geocoder89/bootcamphub/internal/db"
	httpx "github.com/geocoder89/bootcamphub/internal/http"
	"github.com/geocoder89/bootcamphub/internal/notifications"
	"github.com/geocoder89/bootcamphub/internal/observability"
	"github.com/geocoder89/bootcamphub/internal/ratelimit"
	"github.com/geocoder89/bootcamphub/internal/redisclient"
	"github.com/geocoder89/bootcamphub/internal/repo/postgres"
	"github.com/geocoder89/bootcamphub/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load the config set up
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	// start up the observability logger, trace ids on every line
	base := observability.NewLogger(cfg.Env, "bootcamphub-api")
	log := slog.New(observability.NewContextHandler(base.Handler()))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("api stopped with error", "err", err)
		os.Exit(1)
	}

	log.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "bootcamphub-api",
			Environment: cfg.Env,
			Endpoint:    cfg.OTLPEndpoint,
		})
		if err != nil {
			return err
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(sctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// wire up repositories
	users := postgres.NewUsersRepo(pool, prom)
	bootcamps := postgres.NewBootcampsRepo(pool, prom)
	courses := postgres.NewCoursesRepo(pool, prom)
	reviews := postgres.NewReviewsRepo(pool, prom)

	if err := db.EnsureAdminUser(ctx, users, cfg); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	mailer := newMailer(cfg, log)

	photos, err := newPhotoStore(ctx, cfg)
	if err != nil {
		return fmt.Errorf("photo store: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	var limiter ratelimit.Limiter
	if cfg.RedisAddr != "" {
		rc := redisclient.New(redisclient.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rc.Close()

		if err := rc.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		limiter = ratelimit.NewRedis(rc.Raw(), cfg.RateLimitCount, cfg.RateLimitWindow)
	} else {
		mem := ratelimit.NewMemory(cfg.RateLimitCount, cfg.RateLimitWindow)
		limiter = mem

		g.Go(func() error {
			ticker := time.NewTicker(cfg.RateLimitWindow)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					mem.Sweep()
				}
			}
		})
	}

	router := httpx.NewRouter(httpx.Deps{
		Config:    cfg,
		Ping:      pool.Ping,
		Prom:      prom,
		Gatherer:  reg,
		Tokens:    auth.NewManager(cfg.JWTSecret, cfg.JWTExpire),
		Users:     users,
		Bootcamps: bootcamps,
		Courses:   courses,
		Reviews:   reviews,
		Mailer:    mailer,
		Photos:    photos,
		Limiter:   limiter,
		Cache:     cache.New(10 * time.Second),
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g.Go(func() error {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("server shutting down")

		sctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

func newMailer(cfg config.Config, log *slog.Logger) notifications.Mailer {
	var inner notifications.Mailer

	switch cfg.MailerBackend {
	case "smtp":
		inner = notifications.NewSMTPMailer(notifications.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			FromName: cfg.FromName,
			FromAddr: cfg.FromEmail,
		})
	default:
		inner = notifications.NewLogMailer(log)
	}

	return notifications.NewProtectedMailer(inner, notifications.ProtectedMailerConfig{
		Timeout:          5 * time.Second,
		FailureThreshold: 3,
		Cooldown:         30 * time.Second,
	})
}

// newPhotoStore uses S3 when a bucket is configured and the local upload
// directory otherwise.
func newPhotoStore(ctx context.Context, cfg config.Config) (storage.PhotoStore, error) {
	if cfg.S3Bucket == "" {
		return storage.NewDiskStore(cfg.UploadDir)
	}

	return storage.NewS3Store(ctx, storage.S3Config{
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
	})
}
