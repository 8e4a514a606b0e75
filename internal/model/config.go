package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig selects the storage backend.
type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver" yaml:"driver"`

	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`

	// DSN is the Postgres connection string.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// RateLimitConfig bounds requests per client IP on the auth endpoints.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps" yaml:"rps"`
	Burst int     `mapstructure:"burst" yaml:"burst"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Host       string          `mapstructure:"host" yaml:"host"`
	Port       int             `mapstructure:"port" yaml:"port"`
	SessionTTL time.Duration   `mapstructure:"session_ttl" yaml:"session_ttl"`
	CookieName string          `mapstructure:"cookie_name" yaml:"cookie_name"`
	RateLimit  RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit"`
}

// OAuthConfig configures the optional OAuth sign-in provider.
// ClientSecret may be left empty and stored in the keyring instead.
type OAuthConfig struct {
	Provider     string   `mapstructure:"provider" yaml:"provider"`
	ClientID     string   `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string   `mapstructure:"client_secret" yaml:"client_secret"`
	AuthURL      string   `mapstructure:"auth_url" yaml:"auth_url"`
	TokenURL     string   `mapstructure:"token_url" yaml:"token_url"`
	UserInfoURL  string   `mapstructure:"user_info_url" yaml:"user_info_url"`
	RedirectURL  string   `mapstructure:"redirect_url" yaml:"redirect_url"`
	Scopes       []string `mapstructure:"scopes" yaml:"scopes"`
}

// Enabled reports whether enough of the provider is configured to use it.
func (c OAuthConfig) Enabled() bool {
	return c.ClientID != "" && c.AuthURL != "" && c.TokenURL != ""
}

// AggregationConfig controls the weekly analytics job.
type AggregationConfig struct {
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
	Weeks    int           `mapstructure:"weeks" yaml:"weeks"`
}

// MailConfig configures mail-in note capture over IMAP.
// The password is read from the keyring under MailPasswordKey.
type MailConfig struct {
	Enabled      bool          `mapstructure:"enabled" yaml:"enabled"`
	Host         string        `mapstructure:"host" yaml:"host"`
	Port         string        `mapstructure:"port" yaml:"port"`
	Username     string        `mapstructure:"username" yaml:"username"`
	Mailbox      string        `mapstructure:"mailbox" yaml:"mailbox"`
	TLS          bool          `mapstructure:"tls" yaml:"tls"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	UserEmail    string        `mapstructure:"user_email" yaml:"user_email"`
}

// MailPasswordKey is the keyring key holding the IMAP password.
const MailPasswordKey = "mail-password"

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme    string `mapstructure:"theme" yaml:"theme"`
	ViewMode string `mapstructure:"view_mode" yaml:"view_mode"`
}

// LoggingConfig selects log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	OAuth       OAuthConfig       `mapstructure:"oauth" yaml:"oauth"`
	Aggregation AggregationConfig `mapstructure:"aggregation" yaml:"aggregation"`
	Mail        MailConfig        `mapstructure:"mail" yaml:"mail"`
	Display     DisplayConfig     `mapstructure:"display" yaml:"display"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/toodoo/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// DefaultDatabasePath returns ~/.config/toodoo/toodoo.db.
func DefaultDatabasePath() string {
	return filepath.Join(configDir(), "toodoo.db")
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "toodoo")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   DefaultDatabasePath(),
		},
		Server: ServerConfig{
			Host:       "localhost",
			Port:       8080,
			SessionTTL: 7 * 24 * time.Hour,
			CookieName: "toodoo_session",
			RateLimit:  RateLimitConfig{RPS: 1, Burst: 10},
		},
		OAuth: OAuthConfig{
			Scopes: []string{"email"},
		},
		Aggregation: AggregationConfig{
			Interval: 24 * time.Hour,
			Weeks:    5,
		},
		Mail: MailConfig{
			Port:         "993",
			Mailbox:      "INBOX",
			TLS:          true,
			PollInterval: 5 * time.Minute,
		},
		Display: DisplayConfig{
			Theme:    "dark",
			ViewMode: string(ViewModeTask),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() *AppConfig {
	return defaultAppConfig()
}

// setDefaults mirrors defaultAppConfig so that missing keys in a partial
// file and TOODOO_* variables resolve correctly.
func setDefaults(v *viper.Viper, d *AppConfig) {
	v.SetDefault("database.driver", d.Database.Driver)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("database.dsn", d.Database.DSN)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.session_ttl", d.Server.SessionTTL)
	v.SetDefault("server.cookie_name", d.Server.CookieName)
	v.SetDefault("server.rate_limit.rps", d.Server.RateLimit.RPS)
	v.SetDefault("server.rate_limit.burst", d.Server.RateLimit.Burst)
	v.SetDefault("oauth.scopes", d.OAuth.Scopes)
	v.SetDefault("oauth.client_id", "")
	v.SetDefault("oauth.client_secret", "")
	v.SetDefault("aggregation.interval", d.Aggregation.Interval)
	v.SetDefault("aggregation.weeks", d.Aggregation.Weeks)
	v.SetDefault("mail.enabled", false)
	v.SetDefault("mail.port", d.Mail.Port)
	v.SetDefault("mail.mailbox", d.Mail.Mailbox)
	v.SetDefault("mail.tls", d.Mail.TLS)
	v.SetDefault("mail.poll_interval", d.Mail.PollInterval)
	v.SetDefault("display.theme", d.Display.Theme)
	v.SetDefault("display.view_mode", d.Display.ViewMode)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.format", d.Logging.Format)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, defaults plus environment overrides are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TOODOO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, defaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks values that would otherwise fail late at startup.
func (c *AppConfig) Validate() error {
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("database.driver must be 'sqlite' or 'postgres', got %q", c.Database.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Server.SessionTTL <= 0 {
		return fmt.Errorf("server.session_ttl must be > 0")
	}
	if c.Aggregation.Weeks < 2 {
		return fmt.Errorf("aggregation.weeks must be >= 2, got %d", c.Aggregation.Weeks)
	}
	if c.Mail.Enabled && (c.Mail.Host == "" || c.Mail.Username == "" || c.Mail.UserEmail == "") {
		return fmt.Errorf("mail.host, mail.username and mail.user_email are required when mail is enabled")
	}
	return nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("server", cfg.Server)
	v.Set("oauth", cfg.OAuth)
	v.Set("aggregation", cfg.Aggregation)
	v.Set("mail", cfg.Mail)
	v.Set("display", cfg.Display)
	v.Set("logging", cfg.Logging)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
