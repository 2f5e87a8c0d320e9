package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/utafrali/shopfront/internal/auth"
	pkgconfig "github.com/utafrali/shopfront/pkg/config"
)

// Catalog backends.
const (
	CatalogPostgres = "postgres"
	CatalogMongo    = "mongo"
	CatalogMemory   = "memory"
)

// Image stores.
const (
	ImageStoreMemory     = "memory"
	ImageStoreCloudinary = "cloudinary"
)

// PaymentProviderMock is the only built-in payment provider.
const PaymentProviderMock = "mock"

const (
	environmentDevelopment = "development"
	environmentProduction  = "production"
	minJWTSecretLength     = 32
)

// Config holds all configuration for the storefront API.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"HTTP_PORT" envDefault:"4000"`

	// PostgreSQL
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"ecommerce"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"ecommerce_secret"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"shopfront"`
	PostgresSSL  string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`

	// Database pool
	DBMaxConns            int32 `env:"DB_MAX_CONNS" envDefault:"25"`
	DBMinConns            int32 `env:"DB_MIN_CONNS" envDefault:"5"`
	DBMaxConnLifetimeMins int   `env:"DB_MAX_CONN_LIFETIME_MINUTES" envDefault:"60"`
	DBMaxConnIdleTimeMins int   `env:"DB_MAX_CONN_IDLE_TIME_MINUTES" envDefault:"30"`

	// Slow query logging
	SlowQueryThresholdMs int `env:"LOG_SLOW_QUERY_MS" envDefault:"500"`

	// Catalog store
	CatalogBackend string `env:"CATALOG_BACKEND" envDefault:"postgres"`
	MongoURI       string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDB        string `env:"MONGO_DB" envDefault:"shopfront"`

	// Redis (session revocation). Without a host revocations are kept in
	// process memory.
	RedisHost     string `env:"REDIS_HOST"`
	RedisPort     int    `env:"REDIS_PORT" envDefault:"6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka. Without brokers events are not published.
	KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`

	// OpenTelemetry
	OTELEnabled    bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTELEndpoint   string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"`
	OTELSampleRate float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1.0"`

	// Sessions
	JWTSecret    string `env:"JWT_SECRET" envDefault:"dev-only-insecure-secret"`
	JWTExpire    string `env:"JWT_EXPIRE" envDefault:"5d"`
	CookieExpire string `env:"COOKIE_EXPIRE,required,notEmpty"`

	// CORS
	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envDefault:"http://localhost:5173,http://localhost:3000,http://localhost:4000" envSeparator:","`

	// Credential endpoint throttling, per client IP. Zero RPS disables it.
	AuthRateLimitRPS   float64 `env:"AUTH_RATE_LIMIT_RPS" envDefault:"1"`
	AuthRateLimitBurst int     `env:"AUTH_RATE_LIMIT_BURST" envDefault:"10"`
	TrustForwardedFor  bool    `env:"TRUST_FORWARDED_FOR" envDefault:"false"`

	// Catalog listing
	ProductsPerPage int `env:"PRODUCTS_PER_PAGE" envDefault:"8"`

	// Images
	ImageStore          string `env:"IMAGE_STORE" envDefault:"memory"`
	CloudinaryName      string `env:"CLOUDINARY_NAME"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET"`

	// Payments
	PaymentProvider string `env:"PAYMENT_PROVIDER" envDefault:"mock"`
	PaymentCurrency string `env:"PAYMENT_CURRENCY" envDefault:"inr"`
	StripeAPIKey    string `env:"STRIPE_API_KEY"`

	// Parsed by Validate.
	cookieDays int
	jwtExpiry  time.Duration
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load shopfront config: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field rules and parses the session lifetimes. It is
// called by Load so a bad COOKIE_EXPIRE stops the process before it serves.
func (c *Config) Validate() error {
	var errs []error

	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP port: %d", c.HTTPPort))
	}
	if c.PostgresHost == "" {
		errs = append(errs, errors.New("POSTGRES_HOST is required"))
	}
	if c.PostgresUser == "" {
		errs = append(errs, errors.New("POSTGRES_USER is required"))
	}
	if c.OTELSampleRate < 0 || c.OTELSampleRate > 1.0 {
		errs = append(errs, fmt.Errorf("OTEL_SAMPLE_RATE must be between 0.0 and 1.0, got %f", c.OTELSampleRate))
	}
	if c.AuthRateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_RPS must not be negative, got %f", c.AuthRateLimitRPS))
	}
	if c.AuthRateLimitRPS > 0 && c.AuthRateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("AUTH_RATE_LIMIT_BURST must be positive, got %d", c.AuthRateLimitBurst))
	}
	if c.ProductsPerPage < 1 {
		errs = append(errs, fmt.Errorf("PRODUCTS_PER_PAGE must be positive, got %d", c.ProductsPerPage))
	}

	days, err := auth.ParseDays(c.CookieExpire)
	if err != nil {
		errs = append(errs, fmt.Errorf("COOKIE_EXPIRE: %w", err))
	}
	c.cookieDays = days

	expiry, err := auth.ParseExpiry(c.JWTExpire)
	if err != nil {
		errs = append(errs, fmt.Errorf("JWT_EXPIRE: %w", err))
	}
	c.jwtExpiry = expiry

	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if !c.IsDevelopment() && len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters outside development", minJWTSecretLength))
	}

	switch c.CatalogBackend {
	case CatalogPostgres:
	case CatalogMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required when CATALOG_BACKEND=mongo"))
		}
	case CatalogMemory:
		if !c.IsDevelopment() {
			errs = append(errs, errors.New("CATALOG_BACKEND=memory is only allowed in development"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CATALOG_BACKEND %q", c.CatalogBackend))
	}

	switch c.ImageStore {
	case ImageStoreMemory:
	case ImageStoreCloudinary:
		if c.CloudinaryName == "" || c.CloudinaryAPIKey == "" || c.CloudinaryAPISecret == "" {
			errs = append(errs, errors.New("CLOUDINARY_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required when IMAGE_STORE=cloudinary"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown IMAGE_STORE %q", c.ImageStore))
	}

	if c.PaymentProvider != PaymentProviderMock {
		errs = append(errs, fmt.Errorf("unknown PAYMENT_PROVIDER %q", c.PaymentProvider))
	}

	return errors.Join(errs...)
}

// IsDevelopment reports whether the process runs in development mode.
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, environmentDevelopment)
}

// IsProduction reports whether the process runs in production mode. Session
// cookies are only marked Secure in production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, environmentProduction)
}

// CookieDays returns the session cookie lifetime in days.
func (c *Config) CookieDays() int {
	return c.cookieDays
}

// JWTExpiry returns the session token lifetime.
func (c *Config) JWTExpiry() time.Duration {
	return c.jwtExpiry
}

// KafkaEnabled reports whether any broker is configured.
func (c *Config) KafkaEnabled() bool {
	for _, b := range c.KafkaBrokers {
		if strings.TrimSpace(b) != "" {
			return true
		}
	}
	return false
}

// SlowQueryThreshold returns the slow query logging threshold.
func (c *Config) SlowQueryThreshold() time.Duration {
	return time.Duration(c.SlowQueryThresholdMs) * time.Millisecond
}
