package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultJWTSecret is the development fallback for AUTH_JWT_SECRET.
// Load refuses it in production.
const DefaultJWTSecret = "your-secret-key"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	CORS      CORSConfig
	Stripe    StripeConfig
	Redis     RedisConfig
	Scheduler SchedulerConfig
}

type ServerConfig struct {
	Port        string
	GinMode     string
	Environment string
	PublicURL   string
}

type DatabaseConfig struct {
	Driver     string // postgres, sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

// AuthConfig describes how bearer tokens issued by the identity provider are verified.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type StripeConfig struct {
	SecretKey         string
	WebhookSecret     string
	Currency          string
	SuccessURL        string
	CancelURL         string
	APIBaseURL        string
	WebhookTolerance  time.Duration
	MaxNetworkRetries int64
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type SchedulerConfig struct {
	PaymentEventRetention time.Duration
}

func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	publicURL := strings.TrimRight(getEnv("PUBLIC_URL", "http://localhost:3000"), "/")

	config := &Config{
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			GinMode:     getEnv("GIN_MODE", "debug"),
			Environment: getEnv("ENVIRONMENT", "development"),
			PublicURL:   publicURL,
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "storefront"),
			Password:   getEnv("DB_PASSWORD", "storefront"),
			DBName:     getEnv("DB_NAME", "storefront"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "storefront.db"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("AUTH_JWT_SECRET", DefaultJWTSecret),
			Issuer:    getEnv("AUTH_ISSUER", ""),
			Audience:  getEnv("AUTH_AUDIENCE", ""),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Stripe: StripeConfig{
			SecretKey:         getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret:     getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:          getEnv("STRIPE_CURRENCY", "usd"),
			SuccessURL:        getEnv("STRIPE_SUCCESS_URL", publicURL+"/orders/success?session_id={CHECKOUT_SESSION_ID}"),
			CancelURL:         getEnv("STRIPE_CANCEL_URL", publicURL+"/cart"),
			APIBaseURL:        getEnv("STRIPE_API_BASE_URL", "https://api.stripe.com"),
			WebhookTolerance:  parseDuration(getEnv("STRIPE_WEBHOOK_TOLERANCE", "5m"), 5*time.Minute),
			MaxNetworkRetries: int64(parseInt(getEnv("STRIPE_MAX_NETWORK_RETRIES", "2"), 2)),
		},
		Redis: RedisConfig{
			Enabled:  getEnv("REDIS_ENABLED", "false") == "true",
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       parseInt(getEnv("REDIS_DB", "0"), 0),
		},
		Scheduler: SchedulerConfig{
			PaymentEventRetention: parseDuration(getEnv("PAYMENT_EVENT_RETENTION", "720h"), 720*time.Hour),
		},
	}

	if config.Database.Driver != "postgres" && config.Database.Driver != "sqlite" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", config.Database.Driver)
	}

	if config.Server.Environment == "production" && config.Auth.JWTSecret == DefaultJWTSecret {
		return nil, errors.New("AUTH_JWT_SECRET must be set in production")
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
