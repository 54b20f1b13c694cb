// Package config loads server settings from an optional file and TECHDAY_* environment variables using Viper.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. TECHDAY_ADDR.
const EnvPrefix = "TECHDAY"

// Config holds server settings.
type Config struct {
	Addr   string `mapstructure:"addr"`
	DBPath string `mapstructure:"db_path"`
	// Env is "development" or "production". Production requires a CSRF key and secure cookies.
	Env     string `mapstructure:"env"`
	CSRFKey string `mapstructure:"csrf_key"` // 64 hex chars
	// TrustedOrigins lists extra hosts allowed to post forms, e.g. a staging front end.
	TrustedOrigins []string `mapstructure:"trusted_origins"`

	SessionTTL      time.Duration `mapstructure:"session_ttl"`
	LockoutAttempts int           `mapstructure:"lockout_threshold"`
	LockoutDuration time.Duration `mapstructure:"lockout_duration"`

	RateLimitPerMinute     int           `mapstructure:"rate_limit_per_minute"`
	AuthRateLimitPerMinute int           `mapstructure:"auth_rate_limit_per_minute"`
	SlowQuery              time.Duration `mapstructure:"slow_query"`
	SlowRequest            time.Duration `mapstructure:"slow_request"`

	ResendKey string `mapstructure:"resend_key"`
	EmailFrom string `mapstructure:"email_from"`
	ReplyTo   string `mapstructure:"reply_to"`

	EventName  string `mapstructure:"event_name"`
	EventDate  string `mapstructure:"event_date"`
	EventVenue string `mapstructure:"event_venue"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"` // "text" or "json"
}

// Production reports whether the server runs in production.
func (c *Config) Production() bool {
	return c.Env == "production"
}

// CSRFKeyBytes decodes CSRFKey. Empty keys yield nil.
func (c *Config) CSRFKeyBytes() ([]byte, error) {
	if c.CSRFKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.CSRFKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("config: csrf_key must be 64 hex characters")
	}
	return key, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_path", "techday.db")
	v.SetDefault("env", "development")
	v.SetDefault("csrf_key", "")
	v.SetDefault("trusted_origins", []string{})
	v.SetDefault("session_ttl", 12*time.Hour)
	v.SetDefault("lockout_threshold", 5)
	v.SetDefault("lockout_duration", 15*time.Minute)
	v.SetDefault("rate_limit_per_minute", 600)
	v.SetDefault("auth_rate_limit_per_minute", 20)
	v.SetDefault("slow_query", 50*time.Millisecond)
	v.SetDefault("slow_request", 200*time.Millisecond)
	v.SetDefault("resend_key", "")
	v.SetDefault("email_from", "Tech Day <hello@techday.example>")
	v.SetDefault("reply_to", "hello@techday.example")
	v.SetDefault("event_name", "Tech Day")
	v.SetDefault("event_date", "")
	v.SetDefault("event_venue", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

// Load reads file (if non-empty) then the environment. Environment values win.
// A missing file named explicitly is an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return errors.New("config: addr must be set")
	}
	if c.DBPath == "" {
		return errors.New("config: db_path must be set")
	}
	switch c.Env {
	case "development", "production", "test":
	default:
		return fmt.Errorf("config: env %q must be development, production or test", c.Env)
	}
	if _, err := c.CSRFKeyBytes(); err != nil {
		return err
	}
	if c.Production() && c.CSRFKey == "" {
		return errors.New("config: csrf_key is required in production")
	}
	if c.SessionTTL <= 0 {
		return errors.New("config: session_ttl must be positive")
	}
	if c.LockoutAttempts < 1 {
		return errors.New("config: lockout_threshold must be at least 1")
	}
	if c.RateLimitPerMinute < 1 || c.AuthRateLimitPerMinute < 1 {
		return errors.New("config: rate limits must be at least 1 per minute")
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("config: log_format %q must be text or json", c.LogFormat)
	}
	return nil
}
