package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Config holds every setting read at process start.
type Config struct {
	Env  string
	Port string

	// ProxyHeader names the header holding the client IP behind a reverse
	// proxy, e.g. X-Forwarded-For. Empty means the connection address is used.
	ProxyHeader string
	// TrustedProxies limits ProxyHeader to requests from these IPs or CIDRs.
	TrustedProxies []string

	DBDriver string
	DBDSN    string

	JWTSecret  string
	SessionTTL time.Duration

	RabbitMQURL string
	RedisAddr   string
	RedisPass   string

	Storage StorageConfig
	SMTP    SMTPConfig
	Site    SiteConfig
	Pricing PricingConfig
	Limits  LimitsConfig

	AdminEmail    string
	AdminPassword string
}

// StorageConfig points at an S3-compatible bucket.
type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

// Enabled reports whether object storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// SMTPConfig configures outgoing mail.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether an SMTP relay is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// SiteConfig is the public storefront information.
type SiteConfig struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	WalletName   string `json:"wallet_name"`
	WalletNumber string `json:"wallet_number"`
	AnalyticsID  string `json:"analytics_id,omitempty"`
}

// PricingConfig holds the checkout fees and rates.
type PricingConfig struct {
	TaxRate               float64
	ShippingFee           float64
	FreeShippingThreshold float64
	CODFee                float64
}

// LimitsConfig holds fixed-window rate limits.
type LimitsConfig struct {
	APIRequests     int
	APIWindow       time.Duration
	AuthRequests    int
	AuthWindow      time.Duration
	ContactRequests int
	ContactWindow   time.Duration
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("PROXY_HEADER", "")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("DB_DRIVER", "sqlite")
	v.SetDefault("DATABASE_DSN", "ticktee.db")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")

	v.SetDefault("MINIO_ENDPOINT", "")
	v.SetDefault("MINIO_ACCESS_KEY", "")
	v.SetDefault("MINIO_SECRET_KEY", "")
	v.SetDefault("MINIO_BUCKET", "ticktee")
	v.SetDefault("MINIO_USE_SSL", false)
	v.SetDefault("MINIO_PUBLIC_URL", "")

	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "noreply@ticktee.style")

	v.SetDefault("SITE_NAME", "TickTee Style")
	v.SetDefault("SITE_URL", "http://localhost:3000")
	v.SetDefault("CONTACT_EMAIL", "")
	v.SetDefault("CONTACT_PHONE", "")
	v.SetDefault("WALLET_NAME", "TickTee Style")
	v.SetDefault("WALLET_NUMBER", "")
	v.SetDefault("ANALYTICS_ID", "")

	v.SetDefault("TAX_RATE", 0.10)
	v.SetDefault("SHIPPING_FEE", 250)
	v.SetDefault("FREE_SHIPPING_THRESHOLD", 10000)
	v.SetDefault("COD_FEE", 100)

	v.SetDefault("RATE_LIMIT_API", 100)
	v.SetDefault("RATE_LIMIT_API_WINDOW", "1m")
	v.SetDefault("RATE_LIMIT_AUTH", 10)
	v.SetDefault("RATE_LIMIT_AUTH_WINDOW", "15m")
	v.SetDefault("RATE_LIMIT_CONTACT", 5)
	v.SetDefault("RATE_LIMIT_CONTACT_WINDOW", "10m")

	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")
}

// Load reads configuration from the environment, after loading envFile if it exists.
// Pass "" to skip the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Env:         strings.ToLower(v.GetString("APP_ENV")),
		Port:        v.GetString("APP_PORT"),
		ProxyHeader: v.GetString("PROXY_HEADER"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:       v.GetString("DATABASE_DSN"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		SessionTTL:  v.GetDuration("SESSION_TTL"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RedisPass:   v.GetString("REDIS_PASSWORD"),
		Storage: StorageConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
			PublicURL: v.GetString("MINIO_PUBLIC_URL"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Site: SiteConfig{
			Name:         v.GetString("SITE_NAME"),
			URL:          v.GetString("SITE_URL"),
			ContactEmail: v.GetString("CONTACT_EMAIL"),
			ContactPhone: v.GetString("CONTACT_PHONE"),
			WalletName:   v.GetString("WALLET_NAME"),
			WalletNumber: v.GetString("WALLET_NUMBER"),
			AnalyticsID:  v.GetString("ANALYTICS_ID"),
		},
		Pricing: PricingConfig{
			TaxRate:               v.GetFloat64("TAX_RATE"),
			ShippingFee:           v.GetFloat64("SHIPPING_FEE"),
			FreeShippingThreshold: v.GetFloat64("FREE_SHIPPING_THRESHOLD"),
			CODFee:                v.GetFloat64("COD_FEE"),
		},
		Limits: LimitsConfig{
			APIRequests:     v.GetInt("RATE_LIMIT_API"),
			APIWindow:       v.GetDuration("RATE_LIMIT_API_WINDOW"),
			AuthRequests:    v.GetInt("RATE_LIMIT_AUTH"),
			AuthWindow:      v.GetDuration("RATE_LIMIT_AUTH_WINDOW"),
			ContactRequests: v.GetInt("RATE_LIMIT_CONTACT"),
			ContactWindow:   v.GetDuration("RATE_LIMIT_CONTACT_WINDOW"),
		},
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),
	}
	cfg.TrustedProxies = splitList(v.GetString("TRUSTED_PROXIES"))
	return cfg, nil
}

// splitList parses a comma-separated setting, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Missing returns the names of settings a production deployment should set.
func (c *Config) Missing() []string {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.Site.ContactEmail == "" {
		missing = append(missing, "CONTACT_EMAIL")
	}
	if c.Site.WalletNumber == "" {
		missing = append(missing, "WALLET_NUMBER")
	}
	if !c.Storage.Enabled() {
		missing = append(missing, "MINIO_ENDPOINT")
	}
	if !c.SMTP.Enabled() {
		missing = append(missing, "SMTP_HOST")
	}
	return missing
}

// WarnMissing logs a development-mode warning for unset values. It never fails.
func (c *Config) WarnMissing(log logrus.FieldLogger) {
	if !c.IsDevelopment() {
		return
	}
	for _, name := range c.Missing() {
		log.WithField("setting", name).Warn("configuration value not set")
	}
}
