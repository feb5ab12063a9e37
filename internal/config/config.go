package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPAddr    string
	LogLevel    string

	// SiteURL is the base URL of the storefront the payer is returned to
	// after the hosted payment page.
	SiteURL string

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

	Email EmailConfig

	YooKassa YooKassaConfig
}

type EmailConfig struct {
	Enabled      bool
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// YooKassaConfig carries the provider credentials and the webhook trust
// settings. TrustedNetworks and RelaxedIPCheck may also come from the
// provider config file (see provider.go); env values win.
type YooKassaConfig struct {
	ShopID          string
	SecretKey       string
	APIBaseURL      string
	TrustedNetworks []string
	RelaxedIPCheck  bool
}

// Configured reports whether the shop credentials are present. Payment
// creation is refused with service_unavailable when they are not.
func (c YooKassaConfig) Configured() bool {
	return c.ShopID != "" && c.SecretKey != ""
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")

	cfg := Config{
		AppName:           getenv("APP_SERVICE", "bat3d-payments"),
		AppVersion:        getenv("APP_VERSION", "0.1.0"),
		Environment:       environment,
		HTTPAddr:          getenv("HTTP_ADDR", ":8080"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		SiteURL:           strings.TrimRight(getenv("SITE_URL", "http://localhost:3000"), "/"),
		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "bat3d"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		Email: EmailConfig{
			Enabled:      getenvBool("EMAIL_ENABLED", false),
			SMTPHost:     getenv("SMTP_HOST", "localhost"),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "noreply@bat3d.store"),
		},
		YooKassa: YooKassaConfig{
			ShopID:         strings.TrimSpace(getenv("YOOKASSA_SHOP_ID", "")),
			SecretKey:      strings.TrimSpace(getenv("YOOKASSA_SECRET_KEY", "")),
			APIBaseURL:     strings.TrimRight(getenv("YOOKASSA_API_URL", "https://api.yookassa.ru/v3"), "/"),
			RelaxedIPCheck: getenvBool("YOOKASSA_RELAXED_IP_CHECK", environment != "production"),
		},
	}

	provider := loadProviderFile()
	if len(cfg.YooKassa.TrustedNetworks) == 0 {
		cfg.YooKassa.TrustedNetworks = provider.TrustedNetworks
	}
	if raw := strings.TrimSpace(os.Getenv("YOOKASSA_TRUSTED_NETWORKS")); raw != "" {
		cfg.YooKassa.TrustedNetworks = splitList(raw)
	}

	return cfg
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

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
