package config

import (
	"log/slog"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Session   SessionConfig
	Backend   BackendConfig
	WakeUp    WakeUpConfig
	Invoice   InvoiceConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type LogConfig struct {
	Level string
}

type DatabaseConfig struct {
	Driver     string // "postgres" or "sqlite"
	SQLitePath string
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	Timezone   string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours time.Duration
}

// SessionConfig controls how backend tokens are sealed at rest.
type SessionConfig struct {
	Secret string
	Salt   string
}

type BackendConfig struct {
	BaseURL    string
	HealthPath string
	Timeout    time.Duration
	CatalogTTL time.Duration
}

// WakeUpConfig tunes the cold-start shim in front of every backend call.
type WakeUpConfig struct {
	Enabled      bool
	ProbeTimeout time.Duration
	CheckTimeout time.Duration
	Cooldown     time.Duration
	Grace        time.Duration
	BackoffStep  time.Duration
	MaxRetries   int
}

type InvoiceConfig struct {
	CompanyName       string
	ExchangeRate      string
	SecondaryCurrency string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		slog.Warn(".env file not found, using environment variables", "error", err)
	}

	viper.SetDefault("APP_NAME", "staffdesk")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DB_DRIVER", "sqlite")
	viper.SetDefault("DB_SQLITE_PATH", "staffdesk.db")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "staffdesk")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "Africa/Accra")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("SESSION_SECRET", "change-this-session-secret")
	viper.SetDefault("SESSION_SALT", "staffdesk-session-v1")
	viper.SetDefault("BACKEND_URL", "http://localhost:8000/api")
	viper.SetDefault("BACKEND_HEALTH_PATH", "/health/")
	viper.SetDefault("BACKEND_TIMEOUT_SECONDS", 30)
	viper.SetDefault("BACKEND_CATALOG_TTL_SECONDS", 300)
	viper.SetDefault("WAKEUP_ENABLED", true)
	viper.SetDefault("WAKEUP_PROBE_TIMEOUT_MS", 10000)
	viper.SetDefault("WAKEUP_CHECK_TIMEOUT_MS", 5000)
	viper.SetDefault("WAKEUP_COOLDOWN_MS", 55000)
	viper.SetDefault("WAKEUP_GRACE_MS", 2000)
	viper.SetDefault("WAKEUP_BACKOFF_STEP_MS", 3000)
	viper.SetDefault("WAKEUP_MAX_RETRIES", 2)
	viper.SetDefault("INVOICE_COMPANY_NAME", "ROCKMAN LOGISTICS")
	viper.SetDefault("INVOICE_EXCHANGE_RATE", "7.3")
	viper.SetDefault("INVOICE_SECONDARY_CURRENCY", "RMB")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Driver:     viper.GetString("DB_DRIVER"),
			SQLitePath: viper.GetString("DB_SQLITE_PATH"),
			Host:       viper.GetString("DB_HOST"),
			Port:       viper.GetString("DB_PORT"),
			Name:       viper.GetString("DB_NAME"),
			User:       viper.GetString("DB_USER"),
			Password:   viper.GetString("DB_PASSWORD"),
			SSLMode:    viper.GetString("DB_SSL_MODE"),
			Timezone:   viper.GetString("DB_TIMEZONE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
		},
		Session: SessionConfig{
			Secret: viper.GetString("SESSION_SECRET"),
			Salt:   viper.GetString("SESSION_SALT"),
		},
		Backend: BackendConfig{
			BaseURL:    viper.GetString("BACKEND_URL"),
			HealthPath: viper.GetString("BACKEND_HEALTH_PATH"),
			Timeout:    time.Duration(viper.GetInt("BACKEND_TIMEOUT_SECONDS")) * time.Second,
			CatalogTTL: time.Duration(viper.GetInt("BACKEND_CATALOG_TTL_SECONDS")) * time.Second,
		},
		WakeUp: WakeUpConfig{
			Enabled:      viper.GetBool("WAKEUP_ENABLED"),
			ProbeTimeout: millis("WAKEUP_PROBE_TIMEOUT_MS"),
			CheckTimeout: millis("WAKEUP_CHECK_TIMEOUT_MS"),
			Cooldown:     millis("WAKEUP_COOLDOWN_MS"),
			Grace:        millis("WAKEUP_GRACE_MS"),
			BackoffStep:  millis("WAKEUP_BACKOFF_STEP_MS"),
			MaxRetries:   viper.GetInt("WAKEUP_MAX_RETRIES"),
		},
		Invoice: InvoiceConfig{
			CompanyName:       viper.GetString("INVOICE_COMPANY_NAME"),
			ExchangeRate:      viper.GetString("INVOICE_EXCHANGE_RATE"),
			SecondaryCurrency: viper.GetString("INVOICE_SECONDARY_CURRENCY"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

func millis(key string) time.Duration {
	return time.Duration(viper.GetInt(key)) * time.Millisecond
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}
