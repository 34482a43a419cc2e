package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cast"
)

type AppConfig struct {
	Port        string
	Environment string

	// FrontendURL is a comma-separated allowlist of origins; the first entry
	// is also used to build PayPal return/cancel URLs unless BaseURL is set.
	FrontendURL string
	BaseURL     string

	// GatewayTimeout bounds every outbound call to the payment processor.
	GatewayTimeout time.Duration

	Database struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
	}

	PayPal struct {
		ClientID     string
		ClientSecret string
		Environment  string // sandbox or live
		WebhookID    string
		BrandName    string
	}

	SMTP struct {
		Host       string
		Port       int
		Username   string
		Password   string
		FromName   string
		FromEmail  string
		AdminEmail string
	}

	RedisAddr string
}

var Config *AppConfig

// Load reads configuration from the environment. An optional .env file is
// applied first without overriding variables already set by the host.
func Load() (*AppConfig, error) {
	if err := loadEnvFile(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	cfg := &AppConfig{}
	cfg.Port = getenv("PORT", "5000")
	cfg.Environment = getenv("NODE_ENV", "development")
	cfg.FrontendURL = getenv("FRONTEND_URL", "http://localhost:3000")
	cfg.BaseURL = getenv("BASE_URL", "")
	cfg.GatewayTimeout = cast.ToDuration(getenv("GATEWAY_TIMEOUT", "15s"))
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 15 * time.Second
	}

	cfg.Database.Host = getenv("DB_HOST", "127.0.0.1")
	cfg.Database.Port = cast.ToInt(getenv("DB_PORT", "3306"))
	cfg.Database.User = os.Getenv("DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Database.Name = getenv("DB_NAME", "seedsofhope_main")

	cfg.PayPal.ClientID = os.Getenv("PAYPAL_CLIENT_ID")
	cfg.PayPal.ClientSecret = os.Getenv("PAYPAL_CLIENT_SECRET")
	cfg.PayPal.Environment = getenv("PAYPAL_ENVIRONMENT", "sandbox")
	cfg.PayPal.WebhookID = os.Getenv("PAYPAL_WEBHOOK_ID")
	cfg.PayPal.BrandName = getenv("PAYPAL_BRAND_NAME", "Seeds of Hope")

	cfg.SMTP.Host = os.Getenv("SMTP_HOST")
	cfg.SMTP.Port = cast.ToInt(getenv("SMTP_PORT", "587"))
	cfg.SMTP.Username = os.Getenv("SMTP_USER")
	cfg.SMTP.Password = os.Getenv("SMTP_PASS")
	cfg.SMTP.FromName = getenv("FROM_NAME", "Seeds of Hope")
	cfg.SMTP.FromEmail = os.Getenv("FROM_EMAIL")
	cfg.SMTP.AdminEmail = os.Getenv("TO_EMAIL")

	cfg.RedisAddr = os.Getenv("REDIS_ADDR")

	if cfg.PayPal.ClientID == "" || cfg.PayPal.ClientSecret == "" {
		return nil, fmt.Errorf("PayPal credentials not configured: set PAYPAL_CLIENT_ID and PAYPAL_CLIENT_SECRET")
	}

	Config = cfg
	return cfg, nil
}

// PublicBaseURL is the base for PayPal return/cancel redirects.
func (c *AppConfig) PublicBaseURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	first := strings.Split(c.FrontendURL, ",")[0]
	return strings.TrimRight(strings.TrimSpace(first), "/")
}

// AllowedOrigins returns the CORS origin allowlist.
func (c *AppConfig) AllowedOrigins() []string {
	parts := strings.Split(c.FrontendURL, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}

// DSN builds the MySQL connection string for gorm.
func (c *AppConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		c.Database.User, c.Database.Password, c.Database.Host, c.Database.Port, c.Database.Name)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadEnvFile(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return scanner.Err()
}
