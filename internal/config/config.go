package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
	FrontendURL     string        `mapstructure:"frontend_url"`
	PublicEventURL  string        `mapstructure:"public_event_url"` // QR kod linki, örn: https://guestlens.app/e/
	CookieSecure    bool          `mapstructure:"cookie_secure"`
	CookieDomain    string        `mapstructure:"cookie_domain"`
	BodyLimitMB     int           `mapstructure:"body_limit_mb"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	RateLimitPerMin int           `mapstructure:"rate_limit_per_min"`
	AuthLimitPerMin int           `mapstructure:"auth_limit_per_min"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"url"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	Seed         bool   `mapstructure:"seed"`
}

type AuthConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	CSRFTTL      time.Duration `mapstructure:"csrf_ttl"`
	LoginLimiter string        `mapstructure:"login_limiter"` // memory | db
	MaxFailures  int           `mapstructure:"max_failures"`
	LockWindow   time.Duration `mapstructure:"lock_window"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secret_key"`
	WebhookSecret string `mapstructure:"webhook_secret"`
	SuccessURL    string `mapstructure:"success_url"`
	CancelURL     string `mapstructure:"cancel_url"`
}

type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // local | s3
	LocalPath string `mapstructure:"local_path"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
}

type UploadConfig struct {
	MaxFileMB       int    `mapstructure:"max_file_mb"`
	AllowedPrefixes string `mapstructure:"allowed_prefixes"`
	FFmpegPath      string `mapstructure:"ffmpeg_path"`
	FFprobePath     string `mapstructure:"ffprobe_path"`
	RetentionDays   int    `mapstructure:"retention_days"`
}

type EmailConfig struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

type CaptchaConfig struct {
	TurnstileSecret string `mapstructure:"turnstile_secret"`
}

type SentryConfig struct {
	DSN string `mapstructure:"dsn"`
}

// LimitsConfig free kullanıcı limitleri (aktif plan yoksa)
type LimitsConfig struct {
	FreeMaxEvents    int `mapstructure:"free_max_events"`
	FreeMaxGuests    int `mapstructure:"free_max_guests"`
	FreeMaxStorageMB int `mapstructure:"free_max_storage_mb"`
}

type Config struct {
	Env      string         `mapstructure:"env"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Stripe   StripeConfig   `mapstructure:"stripe"`
	Storage  StorageConfig  `mapstructure:"storage"`
	S3       S3Config       `mapstructure:"s3"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Email    EmailConfig    `mapstructure:"email"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Limits   LimitsConfig   `mapstructure:"limits"`
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// AllowedMimePrefixes splits UPLOAD_ALLOWED_PREFIXES.
func (c *Config) AllowedMimePrefixes() []string {
	var out []string
	for _, p := range strings.Split(c.Upload.AllowedPrefixes, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type binding struct {
	key string
	env string
	def interface{}
}

var bindings = []binding{
	{"env", "APP_ENV", "production"},

	{"server.port", "PORT", "8080"},
	{"server.allowed_origins", "ALLOWED_ORIGINS", "http://localhost:5173"},
	{"server.frontend_url", "FRONTEND_URL", "http://localhost:5173"},
	{"server.public_event_url", "PUBLIC_EVENT_URL", "http://localhost:5173/e/"},
	{"server.cookie_secure", "COOKIE_SECURE", true},
	{"server.cookie_domain", "COOKIE_DOMAIN", ""},
	{"server.body_limit_mb", "BODY_LIMIT_MB", 512},
	{"server.shutdown_timeout", "SHUTDOWN_TIMEOUT", "15s"},
	{"server.rate_limit_per_min", "RATE_LIMIT_PER_MIN", 120},
	{"server.auth_limit_per_min", "AUTH_RATE_LIMIT_PER_MIN", 10},

	{"database.url", "DATABASE_URL", ""},
	{"database.max_open_conns", "DB_MAX_OPEN_CONNS", 25},
	{"database.max_idle_conns", "DB_MAX_IDLE_CONNS", 10},
	{"database.seed", "DB_SEED", true},

	{"auth.jwt_secret", "JWT_SECRET", ""},
	{"auth.token_ttl", "SESSION_TTL", "168h"},
	{"auth.csrf_ttl", "CSRF_TTL", "12h"},
	{"auth.login_limiter", "LOGIN_LIMITER", "memory"},
	{"auth.max_failures", "LOGIN_MAX_FAILURES", 5},
	{"auth.lock_window", "LOGIN_LOCK_WINDOW", "15m"},

	{"stripe.secret_key", "STRIPE_SECRET_KEY", ""},
	{"stripe.webhook_secret", "STRIPE_WEBHOOK_SECRET", ""},
	{"stripe.success_url", "STRIPE_SUCCESS_URL", "http://localhost:5173/billing/success?session_id={CHECKOUT_SESSION_ID}"},
	{"stripe.cancel_url", "STRIPE_CANCEL_URL", "http://localhost:5173/billing/cancel"},

	{"storage.driver", "STORAGE_DRIVER", "local"},
	{"storage.local_path", "STORAGE_LOCAL_PATH", "./data/uploads"},

	{"s3.endpoint", "S3_ENDPOINT", ""},
	{"s3.region", "S3_REGION", "auto"},
	{"s3.bucket", "S3_BUCKET", ""},
	{"s3.access_key_id", "S3_ACCESS_KEY_ID", ""},
	{"s3.secret_access_key", "S3_SECRET_ACCESS_KEY", ""},

	{"upload.max_file_mb", "UPLOAD_MAX_FILE_MB", 200},
	{"upload.allowed_prefixes", "UPLOAD_ALLOWED_PREFIXES", "image/,video/"},
	{"upload.ffmpeg_path", "FFMPEG_PATH", "ffmpeg"},
	{"upload.ffprobe_path", "FFPROBE_PATH", "ffprobe"},
	{"upload.retention_days", "TRASH_RETENTION_DAYS", 30},

	{"email.resend_api_key", "RESEND_API_KEY", ""},
	{"email.from_address", "EMAIL_FROM_ADDRESS", "no-reply@guestlens.app"},
	{"email.from_name", "EMAIL_FROM_NAME", "GuestLens"},

	{"captcha.turnstile_secret", "CF_TURNSTILE_SECRET_KEY", ""},

	{"sentry.dsn", "SENTRY_DSN", ""},

	{"limits.free_max_events", "FREE_MAX_EVENTS", 1},
	{"limits.free_max_guests", "FREE_MAX_GUESTS", 50},
	{"limits.free_max_storage_mb", "FREE_MAX_STORAGE_MB", 500},
}

// LoadConfig .env dosyasını (varsa) okur, environment'tan Config'i doldurur.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for _, b := range bindings {
		v.SetDefault(b.key, b.def)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, errors.New("failed to bind " + b.env + ": " + err.Error())
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.New("failed to unmarshal config: " + err.Error())
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Storage.Driver {
	case "local":
	case "s3":
		if c.S3.Bucket == "" || c.S3.AccessKeyID == "" || c.S3.SecretAccessKey == "" {
			return errors.New("S3_BUCKET, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY are required when STORAGE_DRIVER=s3")
		}
	default:
		return errors.New("STORAGE_DRIVER must be local or s3")
	}
	switch c.Auth.LoginLimiter {
	case "memory", "db":
	default:
		return errors.New("LOGIN_LIMITER must be memory or db")
	}
	return nil
}
