package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const defaultConfigFile = "config/config.env"

// Config is built once at startup and handed to the components that need it.
// Nothing below reads the environment after Load returns.
type Config struct {
	Env  string `envconfig:"APP_ENV" default:"dev"`
	Port int    `envconfig:"PORT" default:"5000"`

	DBURL      string `envconfig:"DB_URL"`
	DBHost     string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"bootcamphub"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"bootcamphub"`
	DBName     string `envconfig:"DB_NAME" default:"bootcamphub"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	JWTSecret           string        `envconfig:"JWT_SECRET"`
	JWTExpire           time.Duration `envconfig:"JWT_EXPIRE" default:"720h"`
	JWTCookieExpireDays int           `envconfig:"JWT_COOKIE_EXPIRE" default:"30"`

	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	RedisPassword   string        `envconfig:"REDIS_PASSWORD"`
	RedisDB         int           `envconfig:"REDIS_DB" default:"0"`
	RateLimitCount  int           `envconfig:"RATE_LIMIT_COUNT" default:"100"`
	RateLimitWindow time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"10m"`

	SMTPHost      string `envconfig:"SMTP_HOST" default:"127.0.0.1"`
	SMTPPort      int    `envconfig:"SMTP_PORT" default:"1025"`
	SMTPUser      string `envconfig:"SMTP_EMAIL"`
	SMTPPassword  string `envconfig:"SMTP_PASSWORD"`
	FromEmail     string `envconfig:"FROM_EMAIL" default:"noreply@bootcamphub.local"`
	FromName      string `envconfig:"FROM_NAME" default:"BootcampHub"`
	MailerBackend string `envconfig:"MAILER" default:"log"`

	S3Bucket      string `envconfig:"S3_BUCKET"`
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint    string `envconfig:"S3_ENDPOINT"`
	S3AccessKey   string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey   string `envconfig:"S3_SECRET_KEY"`
	MaxFileUpload int64  `envconfig:"MAX_FILE_UPLOAD" default:"1000000"`
	UploadDir     string `envconfig:"FILE_UPLOAD_PATH" default:"./public/uploads"`

	OTLPEndpoint  string   `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	CORSOrigins   []string `envconfig:"CORS_ORIGINS"`
	PublicBaseURL string   `envconfig:"PUBLIC_BASE_URL"`

	AdminEmail    string `envconfig:"ADMIN_EMAIL"`
	AdminPassword string `envconfig:"ADMIN_PASSWORD"`
	AdminName     string `envconfig:"ADMIN_NAME" default:"Admin"`

	SweepInterval    time.Duration `envconfig:"RESET_SWEEP_INTERVAL" default:"1m"`
	WorkerHealthPort int           `envconfig:"WORKER_HEALTH_PORT" default:"5001"`
}

// Load reads an optional env file and then the process environment.
func Load() (Config, error) {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		path = defaultConfigFile
	}

	// a missing file is fine, the environment may already be populated
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}

	if cfg.DBURL == "" {
		cfg.DBURL = cfg.buildDBURL()
	}

	return cfg, nil
}

func (c Config) buildDBURL() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func (c Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// CookieTTL is the lifetime of the session cookie.
func (c Config) CookieTTL() time.Duration {
	return time.Duration(c.JWTCookieExpireDays) * 24 * time.Hour
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}
