package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	SMTP      SMTPConfig      `mapstructure:"smtp"`
	Mail      MailConfig      `mapstructure:"mail"`
	Payment   PaymentConfig   `mapstructure:"payment"`
	Archive   ArchiveConfig   `mapstructure:"archive"`
	RateLimit RateLimitConfig `mapstructure:"ratelimit"`
	Auth      AuthConfig      `mapstructure:"auth"`
}

// APIConfig holds HTTP server configuration.
type APIConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// AllowedOrigins lists the storefront origins allowed to call the
	// public endpoints from a browser. "*" allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// TrustProxyHeaders derives the client address from forwarding
	// headers. Leave it off unless a proxy overwrites them.
	TrustProxyHeaders bool `mapstructure:"trust_proxy_headers"`
}

// DatabaseConfig holds PostgreSQL connection configuration.
type DatabaseConfig struct {
	URL            string        `mapstructure:"url"`
	PoolMin        int32         `mapstructure:"pool_min"`
	PoolMax        int32         `mapstructure:"pool_max"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Output     string `mapstructure:"output"` // stdout (default) or file
	FilePath   string `mapstructure:"file_path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxFiles   int    `mapstructure:"max_files"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SMTPConfig holds the outbound mail transport configuration.
type SMTPConfig struct {
	// Type selects the transport: "smtp", "stdout" or "file".
	Type           string        `mapstructure:"type"`
	Host           string        `mapstructure:"host"`
	Port           int           `mapstructure:"port"`
	TLSMode        string        `mapstructure:"tls_mode"` // starttls, tls, none
	Username       string        `mapstructure:"username"`
	Password       string        `mapstructure:"password"`
	LocalName      string        `mapstructure:"local_name"`
	CommandTimeout time.Duration `mapstructure:"command_timeout"`
	SubmitTimeout  time.Duration `mapstructure:"submit_timeout"`
	OutputDir      string        `mapstructure:"output_dir"`
}

// MailConfig holds the fixed identities and storefront details used in messages.
type MailConfig struct {
	StoreName       string `mapstructure:"store_name"`
	SenderName      string `mapstructure:"sender_name"`
	SenderAddress   string `mapstructure:"sender_address"`
	SystemName      string `mapstructure:"system_name"`
	OperatorName    string `mapstructure:"operator_name"`
	OperatorAddress string `mapstructure:"operator_address"`
	SupportPhone    string `mapstructure:"support_phone"`
	SiteURL         string `mapstructure:"site_url"`
}

// PaymentConfig holds payment verification settings.
type PaymentConfig struct {
	ConfirmURL       string            `mapstructure:"confirm_url"`
	TokenSigningKey  string            `mapstructure:"token_signing_key"`
	TokenExpiry      time.Duration     `mapstructure:"token_expiry"`
	ExpectedAccounts map[string]string `mapstructure:"expected_accounts"`
}

// ArchiveConfig holds rendered-message archive configuration.
type ArchiveConfig struct {
	Type       string `mapstructure:"type"` // "" (disabled), local, s3
	Path       string `mapstructure:"path"`
	S3Bucket   string `mapstructure:"s3_bucket"`
	S3Prefix   string `mapstructure:"s3_prefix"`
	S3Endpoint string `mapstructure:"s3_endpoint"`
	S3Region   string `mapstructure:"s3_region"`
}

// RateLimitConfig holds contact form rate limiting configuration.
type RateLimitConfig struct {
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	ContactLimit  int           `mapstructure:"contact_limit"`
	ContactWindow time.Duration `mapstructure:"contact_window"`
}

// AuthConfig holds operator authentication configuration.
type AuthConfig struct {
	// OperatorKeyHash is the bcrypt hash of the operator API key.
	OperatorKeyHash string `mapstructure:"operator_key_hash"`
}

// Load reads configuration from the given config directory path.
// It looks for a file named "config.yaml" in that directory.
// Environment variables with prefix STOREFRONT_NOTIFY_ override file values.
// For example, STOREFRONT_NOTIFY_SMTP_PASSWORD overrides smtp.password.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configPath)

	v.SetEnvPrefix("STOREFRONT_NOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", 10*time.Second)
	v.SetDefault("api.write_timeout", 60*time.Second)
	v.SetDefault("api.trust_proxy_headers", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("smtp.type", "stdout")
	v.SetDefault("smtp.tls_mode", "starttls")
	v.SetDefault("smtp.command_timeout", 30*time.Second)
	v.SetDefault("smtp.submit_timeout", 2*time.Minute)
	v.SetDefault("payment.token_expiry", 7*24*time.Hour)
	v.SetDefault("ratelimit.contact_limit", 5)
	v.SetDefault("ratelimit.contact_window", time.Hour)
}

// Validate checks the configuration for combinations that cannot work.
func (c *Config) Validate() error {
	switch c.SMTP.Type {
	case "smtp":
		if c.SMTP.Host == "" {
			return errors.New("smtp.host is required for smtp transport")
		}
		if c.SMTP.Port == 0 {
			return errors.New("smtp.port is required for smtp transport")
		}
		switch c.SMTP.TLSMode {
		case "starttls", "tls", "none":
		default:
			return fmt.Errorf("smtp.tls_mode %q is not one of starttls, tls, none", c.SMTP.TLSMode)
		}
	case "stdout", "file":
	default:
		return fmt.Errorf("smtp.type %q is not one of smtp, stdout, file", c.SMTP.Type)
	}

	if c.Mail.SenderAddress == "" {
		return errors.New("mail.sender_address is required")
	}
	if c.Mail.OperatorAddress == "" {
		return errors.New("mail.operator_address is required")
	}

	switch c.Archive.Type {
	case "", "local":
	case "s3":
		if c.Archive.S3Bucket == "" {
			return errors.New("archive.s3_bucket is required for s3 archive")
		}
	default:
		return fmt.Errorf("archive.type %q is not one of local, s3", c.Archive.Type)
	}

	return nil
}
