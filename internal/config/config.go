package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	Environment string
	ListenAddr  string
	SiteURL     string

	CookieSecure bool
	SessionTTL   int64 // seconds

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RedisURL string

	ProviderMerchantID string
	ProviderAPIKey     string
	ProviderCreateURL  string
	ProviderStatusURL  string

	TelegramLoginBot   string
	TelegramLoginToken string
	StatusBotLink      string

	AdminIDs []int64

	SeedDemo bool
}

var Module = fx.Provide(Load, NewSettingsHolder)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	cookieSecure := environment == "production"
	if !cookieSecure {
		cookieSecure = getenvBool("COOKIE_SECURE", false)
	}

	return Config{
		AppName:     getenv("APP_NAME", "telestore"),
		Environment: environment,
		ListenAddr:  getenv("LISTEN_ADDR", ":8080"),
		SiteURL:     strings.TrimRight(getenv("SITE_URL", "http://localhost:8080"), "/"),

		CookieSecure: cookieSecure,
		SessionTTL:   getenvInt64("SESSION_TTL", 30*24*3600),

		DBType:            getenv("DB_TYPE", "sqlite"),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBName:            getenv("DB_NAME", "telestore"),
		DBUser:            getenv("DB_USER", "telestore"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		DBMaxIdleConn:     int(getenvInt64("DB_MAX_IDLE_CONN", 5)),
		DBMaxOpenConn:     int(getenvInt64("DB_MAX_OPEN_CONN", 25)),
		DBConnMaxLifetime: int(getenvInt64("DB_CONN_MAX_LIFETIME", 3600)),
		DBConnMaxIdleTime: int(getenvInt64("DB_CONN_MAX_IDLE_TIME", 600)),

		RedisURL: getenv("REDIS_URL", "redis://localhost:6379/0"),

		ProviderMerchantID: getenv("PROVIDER_MERCHANT_ID", "TEST_MERCHANT_ID"),
		ProviderAPIKey:     getenv("PROVIDER_API_KEY", "TEST_SECRET_KEY"),
		ProviderCreateURL:  getenv("PROVIDER_CREATE_URL", "https://app.platega.io/transaction/process"),
		ProviderStatusURL:  getenv("PROVIDER_STATUS_URL", "https://app.platega.io/transaction/{payment_id}"),

		TelegramLoginBot:   getenv("TELEGRAM_LOGIN_BOT", ""),
		TelegramLoginToken: getenv("TELEGRAM_LOGIN_TOKEN", ""),
		StatusBotLink:      getenv("STATUS_BOT_LINK", ""),

		AdminIDs: parseAdmins(getenv("ADMINS", "")),

		SeedDemo: getenvBool("SEED_DEMO", false),
	}
}

// IsAdmin reports whether the given Telegram id is in the static allow-list.
func (c Config) IsAdmin(tgID int64) bool {
	for _, id := range c.AdminIDs {
		if id == tgID {
			return true
		}
	}
	return false
}

func parseAdmins(raw string) []int64 {
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		out = append(out, id)
	}
	return out
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}
