package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Log      LogConfig
	Console  ConsoleConfig
	Content  ContentConfig
	SMTP     SMTPConfig
	Contact  ContactConfig
	Admin    AdminConfig
	Privacy  PrivacyConfig
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port string
	Mode string
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds zap settings.
type LogConfig struct {
	Level       string
	Development bool
}

// ConsoleConfig tunes the console widget host.
type ConsoleConfig struct {
	ExitDelay     time.Duration `mapstructure:"exit_delay"`
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// ContentConfig points at an optional on-disk content document.
type ContentConfig struct {
	Path  string
	Watch bool
}

// SMTPConfig holds outgoing mail settings for the contact form.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
}

// ContactConfig holds contact form settings.
type ContactConfig struct {
	ToEmail       string  `mapstructure:"to_email"`
	RatePerMinute float64 `mapstructure:"rate_per_minute"`
}

// AdminConfig holds admin dashboard credentials.
type AdminConfig struct {
	Username string
	Password string
}

// PrivacyConfig controls visitor data retention.
type PrivacyConfig struct {
	Retention time.Duration
}

// Load reads configuration from file and env. Env var overrides use
// prefix PORTFOLIO_; the bare PORT, SMTP_*, TO_EMAIL and ADMIN_* variables
// are honored too. path may be empty.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.path", "portfolio.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("console.exit_delay", "500ms")
	v.SetDefault("console.idle_ttl", "30m")
	v.SetDefault("console.sweep_interval", "1m")
	v.SetDefault("content.path", "")
	v.SetDefault("content.watch", false)
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", "587")
	v.SetDefault("smtp.user", "")
	v.SetDefault("smtp.pass", "")
	v.SetDefault("contact.to_email", "n-hunter@hotmail.com")
	v.SetDefault("contact.rate_per_minute", 3.0)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")
	v.SetDefault("privacy.retention", "8760h")

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv("PORTFOLIO_CONFIG")
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("portfolio")
	}

	v.SetEnvPrefix("PORTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Variables the site has always read without a prefix.
	legacy := map[string][]string{
		"server.port":      {"PORTFOLIO_SERVER_PORT", "PORT"},
		"smtp.host":        {"PORTFOLIO_SMTP_HOST", "SMTP_HOST"},
		"smtp.port":        {"PORTFOLIO_SMTP_PORT", "SMTP_PORT"},
		"smtp.user":        {"PORTFOLIO_SMTP_USER", "SMTP_USER"},
		"smtp.pass":        {"PORTFOLIO_SMTP_PASS", "SMTP_PASS"},
		"contact.to_email": {"PORTFOLIO_CONTACT_TO_EMAIL", "TO_EMAIL"},
		"admin.username":   {"PORTFOLIO_ADMIN_USERNAME", "ADMIN_USERNAME"},
		"admin.password":   {"PORTFOLIO_ADMIN_PASSWORD", "ADMIN_PASSWORD"},
	}
	for key, envs := range legacy {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the server cannot run with.
func (c Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	switch c.Server.Mode {
	case "release", "debug", "test":
	default:
		return fmt.Errorf("server.mode %q: want release, debug or test", c.Server.Mode)
	}
	if c.Console.ExitDelay < 0 {
		return fmt.Errorf("console.exit_delay must not be negative")
	}
	if c.Contact.RatePerMinute <= 0 {
		return fmt.Errorf("contact.rate_per_minute must be positive")
	}
	return nil
}

// SMTPConfigured reports whether mail credentials are present.
func (c Config) SMTPConfigured() bool {
	return c.SMTP.User != "" && c.SMTP.Pass != ""
}
