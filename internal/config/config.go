package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Env string `mapstructure:"env"`

	Server struct {
		Port            string        `mapstructure:"port"`
		BaseURL         string        `mapstructure:"base_url"`
		FrontendOrigin  string        `mapstructure:"frontend_origin"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"server"`

	Database struct {
		DSN         string `mapstructure:"dsn"`
		ReadOnlyDSN string `mapstructure:"readonly_dsn"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
	} `mapstructure:"database"`

	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		DB       int           `mapstructure:"db"`
		TTL      time.Duration `mapstructure:"ttl"`
	} `mapstructure:"redis"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`

	Auth struct {
		JWTSecret string        `mapstructure:"jwt_secret"`
		TokenTTL  time.Duration `mapstructure:"token_ttl"`
	} `mapstructure:"auth"`

	OAuth struct {
		GoogleClientID     string `mapstructure:"google_client_id"`
		GoogleClientSecret string `mapstructure:"google_client_secret"`
		GoogleRedirectURL  string `mapstructure:"google_redirect_url"`
	} `mapstructure:"oauth"`

	Shop struct {
		Name    string `mapstructure:"name"`
		Email   string `mapstructure:"email"`
		Phone   string `mapstructure:"phone"`
		Address string `mapstructure:"address"`
	} `mapstructure:"shop"`

	Pricing struct {
		FreeShippingThreshold string `mapstructure:"free_shipping_threshold"`
		FlatShippingFee       string `mapstructure:"flat_shipping_fee"`
		TaxRate               string `mapstructure:"tax_rate"`
		Currency              string `mapstructure:"currency"`
	} `mapstructure:"pricing"`

	Uploads struct {
		PublicDir string `mapstructure:"public_dir"`
		MaxBytes  int64  `mapstructure:"max_bytes"`
	} `mapstructure:"uploads"`

	Worker struct {
		Interval      time.Duration `mapstructure:"interval"`
		PaymentWindow time.Duration `mapstructure:"payment_window"`
	} `mapstructure:"worker"`

	Assistant struct {
		GeminiAPIKey string `mapstructure:"gemini_api_key"`
		Model        string `mapstructure:"model"`
	} `mapstructure:"assistant"`
}

// Load reads an optional .env file and then resolves configuration from
// defaults overridden by APP_* environment variables (APP_DATABASE_DSN,
// APP_KAFKA_BROKERS, ...).
func Load() (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.frontend_origin", "http://localhost:3000")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.dsn", "root:@tcp(127.0.0.1:3306)/antique_nepal?parseTime=true&charset=utf8mb4")
	v.SetDefault("database.readonly_dsn", "")
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "orders")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 72*time.Hour)

	v.SetDefault("oauth.google_client_id", "")
	v.SetDefault("oauth.google_client_secret", "")
	v.SetDefault("oauth.google_redirect_url", "http://localhost:8080/v1/auth/google/callback")

	v.SetDefault("shop.name", "Antique Nepal")
	v.SetDefault("shop.email", "hello@antiquenepal.com")
	v.SetDefault("shop.phone", "")
	v.SetDefault("shop.address", "Kathmandu, Nepal")

	v.SetDefault("pricing.free_shipping_threshold", "5000")
	v.SetDefault("pricing.flat_shipping_fee", "150")
	v.SetDefault("pricing.tax_rate", "0.13")
	v.SetDefault("pricing.currency", "NPR")

	v.SetDefault("uploads.public_dir", "./public")
	v.SetDefault("uploads.max_bytes", 5<<20)

	v.SetDefault("worker.interval", 10*time.Minute)
	v.SetDefault("worker.payment_window", 48*time.Hour)

	v.SetDefault("assistant.gemini_api_key", "")
	v.SetDefault("assistant.model", "gemini-1.5-flash")
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return fmt.Errorf("APP_AUTH_JWT_SECRET must be set outside development")
		}
		c.Auth.JWTSecret = "dev-only-secret-change-me"
	}

	for name, raw := range map[string]string{
		"pricing.free_shipping_threshold": c.Pricing.FreeShippingThreshold,
		"pricing.flat_shipping_fee":       c.Pricing.FlatShippingFee,
		"pricing.tax_rate":                c.Pricing.TaxRate,
	} {
		if _, err := decimal.NewFromString(raw); err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
