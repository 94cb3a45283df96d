package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"

	"github.com/unclebandit/framestorm-backend/internal/logger"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `env:",prefix=SERVER_"`
	Database   DatabaseConfig   `env:",prefix=DB_"`
	App        AppConfig        `env:",prefix=APP_"`
	Log        logger.Config    `env:",prefix=LOG_"`
	Auth       AuthConfig       `env:",prefix=AUTH_"`
	Storage    StorageConfig    `env:",prefix=STORAGE_"`
	Generation GenerationConfig `env:",prefix=GENERATION_"`
	Social     SocialConfig     `env:",prefix=SOCIAL_"`
	Queue      QueueConfig      `env:",prefix=QUEUE_"`
	Session    SessionConfig    `env:",prefix=SESSION_"`
	RateLimit  RateLimitConfig  `env:",prefix=RATE_LIMIT_"`
}

type ServerConfig struct {
	Port            string        `env:"PORT,default=8080"`
	Host            string        `env:"HOST,default=0.0.0.0"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT,default=30s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT,default=30s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT,default=30s"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `env:"HOST,default=localhost"`
	Port     string `env:"PORT,default=5432"`
	User     string `env:"USER,default=postgres"`
	Password string `env:"PASSWORD,default=postgres"`
	Name     string `env:"NAME,default=framestorm"`
	SSLMode  string `env:"SSL_MODE,default=disable"`
	MaxConns int    `env:"MAX_CONNS,default=25"`
	MinConns int    `env:"MIN_CONNS,default=5"`
}

type AppConfig struct {
	Environment string `env:"ENVIRONMENT,default=development"`
	Debug       bool   `env:"DEBUG,default=false"`
}

type AuthConfig struct {
	JWTSecret string `env:"JWT_SECRET"`
	Issuer    string `env:"ISSUER"`
}

type StorageConfig struct {
	Backend        string `env:"BACKEND,default=postgres"` // postgres or disk
	Bucket         string `env:"BUCKET,default=campaign-assets"`
	DiskRoot       string `env:"DISK_ROOT,default=data/blobs"`
	MaxUploadBytes int64  `env:"MAX_UPLOAD_BYTES,default=52428800"`
}

type GenerationConfig struct {
	Backend        string        `env:"BACKEND,default=simulated"` // simulated or gemini
	VideoDelay     time.Duration `env:"VIDEO_DELAY,default=6s"`
	InstagramDelay time.Duration `env:"INSTAGRAM_DELAY,default=4s"`
	BlogDelay      time.Duration `env:"BLOG_DELAY,default=3s"`
	GeminiAPIKey   string        `env:"GEMINI_API_KEY"`
	GeminiModel    string        `env:"GEMINI_MODEL,default=gemini-2.5-flash"`
}

type SocialConfig struct {
	UploadDelay time.Duration `env:"UPLOAD_DELAY,default=2s"`
}

type QueueConfig struct {
	URL   string `env:"URL"` // empty selects the in-memory queue
	Topic string `env:"TOPIC,default=campaign_activity"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `env:"IDLE_TTL,default=30m"`
	SweepSchedule string        `env:"SWEEP_SCHEDULE,default=@every 5m"`
}

type RateLimitConfig struct {
	RPS   float64 `env:"RPS,default=5"`
	Burst int     `env:"BURST,default=10"`
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}
	return &cfg, nil
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("AUTH_JWT_SECRET is required"))
	}
	switch c.Storage.Backend {
	case "postgres", "disk":
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend))
	}
	switch c.Generation.Backend {
	case "simulated":
	case "gemini":
		if c.Generation.GeminiAPIKey == "" {
			errs = append(errs, errors.New("GENERATION_GEMINI_API_KEY is required for the gemini backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown GENERATION_BACKEND %q", c.Generation.Backend))
	}
	if c.Generation.VideoDelay <= 0 || c.Generation.InstagramDelay <= 0 || c.Generation.BlogDelay <= 0 {
		errs = append(errs, errors.New("generation delays must be positive"))
	}
	if c.RateLimit.RPS <= 0 || c.RateLimit.Burst <= 0 {
		errs = append(errs, errors.New("rate limit must be positive"))
	}
	return errors.Join(errs...)
}

// GetDatabaseURL returns the PostgreSQL connection URL
func (c *DatabaseConfig) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// GetServerAddr returns the server address
func (c *ServerConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func (c *AppConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
