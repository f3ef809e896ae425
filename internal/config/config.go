package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Supabase
	SupabaseURL            string
	SupabasePublishableKey string
	SupabaseJWTSecret      string
	SupabaseStorageBucket  string

	// Database
	DatabaseURL string

	// Server
	Port        string
	Environment string
	BaseURL     string

	// Admin gate
	SessionKey      []byte
	CookieSecure    bool
	OwnerPhones     []string
	AdminPassword   string
	RequireIdentity bool

	// Business contact
	BusinessPhone           string
	BusinessPhoneDisplay    string
	BusinessPhoneAlt        string
	BusinessPhoneAltDisplay string
	WhatsAppNumber          string
	WhatsAppGreeting        string

	// Events
	KafkaBrokers []string
	KafkaTopic   string

	// Backend calls
	RetryMaxAttempts int
	RetryBaseDelay   time.Duration

	// Uploads
	ImageBudgetBytes  int
	ImageMaxDimension int
}

var defaults = map[string]any{
	"SUPABASE_STORAGE_BUCKET": "saree-images",

	"PORT":        "8080",
	"ENVIRONMENT": "development",
	"BASE_URL":    "http://localhost:8080",

	"COOKIE_SECURE":       false,
	"OWNER_PHONE_NUMBERS": "9573147399,7981314611,7981324611",
	"REQUIRE_IDENTITY":    true,

	"BUSINESS_PHONE":             "9573147399",
	"BUSINESS_PHONE_DISPLAY":     "+91 95731 47399",
	"BUSINESS_PHONE_ALT":         "7981324611",
	"BUSINESS_PHONE_ALT_DISPLAY": "+91 79813 24611",
	"WHATSAPP_NUMBER":            "919573147399",
	"WHATSAPP_GREETING":          "Hello KBR Silks, I am interested in your sarees. Please help me choose.",

	"KAFKA_TOPIC": "kbr-silks.events",

	"RETRY_MAX_ATTEMPTS": 3,
	"RETRY_BASE_DELAY":   "1s",

	"IMAGE_BUDGET_BYTES":  14 * 1024 * 1024 / 10,
	"IMAGE_MAX_DIMENSION": 1200,
}

// Load reads configuration from the environment and an optional config.yaml
// in the working directory. Environment variables win.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return FromViper(v)
}

func FromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		SupabaseURL:            v.GetString("SUPABASE_URL"),
		SupabasePublishableKey: v.GetString("SUPABASE_PUBLISHABLE_KEY"),
		SupabaseJWTSecret:      v.GetString("SUPABASE_JWT_SECRET"),
		SupabaseStorageBucket:  v.GetString("SUPABASE_STORAGE_BUCKET"),

		DatabaseURL: v.GetString("DATABASE_URL"),

		Port:        v.GetString("PORT"),
		Environment: v.GetString("ENVIRONMENT"),
		BaseURL:     v.GetString("BASE_URL"),

		CookieSecure:    v.GetBool("COOKIE_SECURE"),
		OwnerPhones:     stringList(v, "OWNER_PHONE_NUMBERS"),
		AdminPassword:   v.GetString("ADMIN_PASSWORD"),
		RequireIdentity: v.GetBool("REQUIRE_IDENTITY"),

		BusinessPhone:           v.GetString("BUSINESS_PHONE"),
		BusinessPhoneDisplay:    v.GetString("BUSINESS_PHONE_DISPLAY"),
		BusinessPhoneAlt:        v.GetString("BUSINESS_PHONE_ALT"),
		BusinessPhoneAltDisplay: v.GetString("BUSINESS_PHONE_ALT_DISPLAY"),
		WhatsAppNumber:          v.GetString("WHATSAPP_NUMBER"),
		WhatsAppGreeting:        v.GetString("WHATSAPP_GREETING"),

		KafkaBrokers: stringList(v, "KAFKA_BROKERS"),
		KafkaTopic:   v.GetString("KAFKA_TOPIC"),

		RetryMaxAttempts: v.GetInt("RETRY_MAX_ATTEMPTS"),
		RetryBaseDelay:   v.GetDuration("RETRY_BASE_DELAY"),

		ImageBudgetBytes:  v.GetInt("IMAGE_BUDGET_BYTES"),
		ImageMaxDimension: v.GetInt("IMAGE_MAX_DIMENSION"),
	}

	cfg.SessionKey = sessionKey(v.GetString("SESSION_KEY"))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.SupabaseURL == "" {
		return fmt.Errorf("SUPABASE_URL is required")
	}
	if c.SupabasePublishableKey == "" {
		return fmt.Errorf("SUPABASE_PUBLISHABLE_KEY is required")
	}
	if c.RequireIdentity && c.SupabaseJWTSecret == "" {
		return fmt.Errorf("SUPABASE_JWT_SECRET is required when REQUIRE_IDENTITY is set")
	}
	if len(c.OwnerPhones) == 0 && c.AdminPassword == "" {
		return fmt.Errorf("OWNER_PHONE_NUMBERS or ADMIN_PASSWORD is required")
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("RETRY_MAX_ATTEMPTS must be at least 1")
	}
	if c.ImageBudgetBytes <= 0 || c.ImageMaxDimension <= 0 {
		return fmt.Errorf("IMAGE_BUDGET_BYTES and IMAGE_MAX_DIMENSION must be positive")
	}
	return nil
}

// WhatsAppLink is the click-to-chat deep link for the primary number.
func (c *Config) WhatsAppLink() string {
	return fmt.Sprintf("https://wa.me/%s?text=%s", c.WhatsAppNumber, url.QueryEscape(c.WhatsAppGreeting))
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func stringList(v *viper.Viper, key string) []string {
	var out []string
	for _, item := range v.GetStringSlice(key) {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// sessionKey decodes SESSION_KEY or falls back to a random key, which
// invalidates every admin session on restart.
func sessionKey(encoded string) []byte {
	if encoded != "" {
		key, err := base64.StdEncoding.DecodeString(encoded)
		if err == nil && len(key) >= 32 {
			return key
		}
		slog.Warn("SESSION_KEY is invalid or shorter than 32 bytes, generating a random key")
	} else {
		slog.Warn("SESSION_KEY not set, generating a random key; admin sessions will not survive a restart")
	}

	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("failed to generate session key: %v", err))
	}
	return key
}
