package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "dev-secret"

// Config aggregates runtime configuration for the service.
type Config struct {
	App          AppConfig
	Postgres     PostgresConfig
	Redis        RedisConfig
	Logger       LoggerConfig
	Auth         AuthConfig
	Mail         MailConfig
	RateLimit    RateLimitConfig
	Cache        CacheConfig
	ImageKit     ImageKitConfig
	Push         PushConfig
	AI           AIConfig
	Notification NotificationConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSOrigins           string
	BodyLimitBytes        int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret        string
	TokenTTLMinutes  int
	CodeTTLMinutes   int
	BcryptCost       int
	MinPasswordChars int
}

// MailConfig configures the SMTP relay.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// RateLimitConfig bounds requests per client IP on auth routes.
type RateLimitConfig struct {
	MaxRequests   int
	WindowMinutes int
}

// CacheConfig controls catalogue caching.
type CacheConfig struct {
	ProductTTLSeconds int
}

// ImageKitConfig holds CDN credentials.
type ImageKitConfig struct {
	PublicKey     string
	PrivateKey    string
	URLEndpoint   string
	UploadBaseURL string
	APIBaseURL    string
	DefaultFolder string
}

// PushConfig holds VAPID credentials.
type PushConfig struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string
	TTLSeconds      int
	Concurrency     int
}

// AIConfig configures the Gemini chat assistant.
type AIConfig struct {
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
}

// NotificationConfig toggles event driven notifications.
type NotificationConfig struct {
	PushOnNewProduct bool
	QueueSize        int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "storefront-api"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "5000"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSOrigins:           getEnv("CORS_ORIGINS", "*"),
			BodyLimitBytes:        getEnvAsInt("HTTP_BODY_LIMIT_BYTES", 10*1024*1024),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       os.Getenv("LOG_FILE"),
			MaxSizeMB:  getEnvAsInt("LOG_FILE_MAX_SIZE_MB", 100),
			MaxBackups: getEnvAsInt("LOG_FILE_MAX_BACKUPS", 5),
			MaxAgeDays: getEnvAsInt("LOG_FILE_MAX_AGE_DAYS", 14),
		},
		Auth: AuthConfig{
			JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
			TokenTTLMinutes:  getEnvAsInt("JWT_TTL_MINUTES", 7*24*60),
			CodeTTLMinutes:   getEnvAsInt("OTP_TTL_MINUTES", 10),
			BcryptCost:       getEnvAsInt("BCRYPT_COST", 10),
			MinPasswordChars: getEnvAsInt("PASSWORD_MIN_LENGTH", 6),
		},
		Mail: MailConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getEnvAsInt("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     getEnv("MAIL_FROM", "noreply@example.com"),
			FromName: getEnv("MAIL_FROM_NAME", "Storefront"),
		},
		RateLimit: RateLimitConfig{
			MaxRequests:   getEnvAsInt("AUTH_RATE_LIMIT_MAX", 100),
			WindowMinutes: getEnvAsInt("AUTH_RATE_LIMIT_WINDOW_MINUTES", 15),
		},
		Cache: CacheConfig{
			ProductTTLSeconds: getEnvAsInt("CACHE_PRODUCT_TTL_SECONDS", 60),
		},
		ImageKit: ImageKitConfig{
			PublicKey:     os.Getenv("IMAGEKIT_PUBLIC_KEY"),
			PrivateKey:    os.Getenv("IMAGEKIT_PRIVATE_KEY"),
			URLEndpoint:   os.Getenv("IMAGEKIT_URL_ENDPOINT"),
			UploadBaseURL: getEnv("IMAGEKIT_UPLOAD_BASE_URL", "https://upload.imagekit.io"),
			APIBaseURL:    getEnv("IMAGEKIT_API_BASE_URL", "https://api.imagekit.io"),
			DefaultFolder: getEnv("IMAGEKIT_DEFAULT_FOLDER", "/products"),
		},
		Push: PushConfig{
			VAPIDPublicKey:  os.Getenv("VAPID_PUBLIC_KEY"),
			VAPIDPrivateKey: os.Getenv("VAPID_PRIVATE_KEY"),
			Subject:         getEnv("VAPID_SUBJECT", "mailto:admin@example.com"),
			TTLSeconds:      getEnvAsInt("PUSH_TTL_SECONDS", 60),
			Concurrency:     getEnvAsInt("PUSH_CONCURRENCY", 16),
		},
		AI: AIConfig{
			GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
			GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
			GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com"),
		},
		Notification: NotificationConfig{
			PushOnNewProduct: getEnvAsBool("NOTIFY_PUSH_ON_NEW_PRODUCT", true),
			QueueSize:        getEnvAsInt("NOTIFY_QUEUE_SIZE", 256),
		},
	}

	return cfg, nil
}

// Validate reports every configuration problem that would prevent a safe start.
func (c *Config) Validate() error {
	var problems []error

	if strings.TrimSpace(c.Postgres.DSN) == "" {
		problems = append(problems, errors.New("POSTGRES_DSN is required"))
	}
	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		problems = append(problems, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost))
	}
	if c.Auth.CodeTTLMinutes <= 0 {
		problems = append(problems, errors.New("OTP_TTL_MINUTES must be positive"))
	}
	if c.RateLimit.MaxRequests <= 0 || c.RateLimit.WindowMinutes <= 0 {
		problems = append(problems, errors.New("AUTH_RATE_LIMIT_MAX and AUTH_RATE_LIMIT_WINDOW_MINUTES must be positive"))
	}
	if c.Push.VAPIDPublicKey != "" && c.Push.VAPIDPrivateKey == "" {
		problems = append(problems, errors.New("VAPID_PRIVATE_KEY is required when VAPID_PUBLIC_KEY is set"))
	}
	if c.ImageKit.PrivateKey != "" && (c.ImageKit.PublicKey == "" || c.ImageKit.URLEndpoint == "") {
		problems = append(problems, errors.New("IMAGEKIT_PUBLIC_KEY and IMAGEKIT_URL_ENDPOINT are required with IMAGEKIT_PRIVATE_KEY"))
	}

	if c.App.IsProduction() {
		if c.Auth.JWTSecret == defaultJWTSecret || len(c.Auth.JWTSecret) < 32 {
			problems = append(problems, errors.New("JWT_SECRET must be set to at least 32 characters in production"))
		}
		if !c.Mail.Enabled() {
			problems = append(problems, errors.New("SMTP_HOST is required in production"))
		}
	}

	return errors.Join(problems...)
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// IsProduction reports whether APP_ENV selects production behaviour.
func (a AppConfig) IsProduction() bool {
	return strings.EqualFold(a.Env, "production")
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the session token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLMinutes) * time.Minute
}

// CodeTTL returns how long a one-time code stays valid.
func (a AuthConfig) CodeTTL() time.Duration {
	return time.Duration(a.CodeTTLMinutes) * time.Minute
}

func (m MailConfig) Enabled() bool { return strings.TrimSpace(m.Host) != "" }

// Window returns the rate limit window.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowMinutes) * time.Minute
}

func (c CacheConfig) ProductTTL() time.Duration {
	return time.Duration(c.ProductTTLSeconds) * time.Second
}

func (i ImageKitConfig) Enabled() bool { return i.PrivateKey != "" }

func (p PushConfig) Enabled() bool { return p.VAPIDPublicKey != "" && p.VAPIDPrivateKey != "" }

func (a AIConfig) Enabled() bool { return a.GeminiAPIKey != "" }

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
