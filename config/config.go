package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type App struct {
	Env      string `envconfig:"APP_ENV" default:"dev"`
	HTTPAddr string `envconfig:"HTTP_ADDR" default:":8080"`

	// DB
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBUser     string `envconfig:"DB_USER" default:"postgres"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"healthmanager"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// JWT
	JWTSecret    string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireMin int    `envconfig:"JWT_EXPIRE_MIN" default:"4320"`

	// AWS; empty bucket / sender / ARN disables the matching integration
	AWSRegion     string `envconfig:"AWS_REGION" default:"ap-southeast-1"`
	S3Region      string `envconfig:"S3_REGION"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	CloudFrontURL string `envconfig:"CLOUDFRONT_URL"`
	SESEmail      string `envconfig:"SES_EMAIL"`
	SNSFCMArn     string `envconfig:"SNS_FCM_ARN"`

	// Events
	RabbitURL      string `envconfig:"RABBIT_URL"`
	RabbitExchange string `envconfig:"RABBIT_EXCHANGE" default:"healthmanager.events"`

	// Observability
	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	LogLevel     string `envconfig:"LOG_LEVEL" default:"info"`

	ReminderSchedule  string `envconfig:"REMINDER_SCHEDULE" default:"@every 1m"`
	LoginRatePerMin   int    `envconfig:"LOGIN_RATE_PER_MIN" default:"10"`
	UploadMaxMemoryMB int64  `envconfig:"UPLOAD_MAX_MEMORY_MB" default:"8"`
}

// Load reads an optional .env file, then the process environment.
func Load() (App, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return App{}, err
	}
	var c App
	err := envconfig.Process("", &c)
	return c, err
}

func (c App) JWTTTL() time.Duration {
	return time.Duration(c.JWTExpireMin) * time.Minute
}

func (c App) S3RegionOrDefault() string {
	if c.S3Region != "" {
		return c.S3Region
	}
	return c.AWSRegion
}
