package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig    `mapstructure:"server"`
	Database DatabasesConfig `mapstructure:"database"`
	Logging  LoggingConfig   `mapstructure:"logging"`
	Aspsp    AspspConfig     `mapstructure:"aspsp"`
	Cache    CacheConfig     `mapstructure:"cache"`
	Metrics  MetricsConfig   `mapstructure:"metrics"`
	Security SecurityConfig  `mapstructure:"security"`
	CORS     CORSConfig      `mapstructure:"cors"`
	SPI      SPIConfig       `mapstructure:"spi"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"readTimeout"`
	WriteTimeout time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout  time.Duration `mapstructure:"idleTimeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Consent DatabaseConfig `mapstructure:"consent"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// AspspConfig holds the ASPSP profile settings that drive consent and SCA rules.
type AspspConfig struct {
	MaxConsentValidityDays              int      `mapstructure:"max_consent_validity_days"`
	NotConfirmedConsentExpirationTimeMs int64    `mapstructure:"not_confirmed_consent_expiration_time_ms"`
	NotConfirmedPaymentExpirationTimeMs int64    `mapstructure:"not_confirmed_payment_expiration_time_ms"`
	RedirectURLExpirationTimeMs         int64    `mapstructure:"redirect_url_expiration_time_ms"`
	AuthorisationExpirationTimeMs       int64    `mapstructure:"authorisation_expiration_time_ms"`
	ScaRedirectOkURL                    string   `mapstructure:"sca_redirect_ok_url"`
	ScaRedirectNokURL                   string   `mapstructure:"sca_redirect_nok_url"`
	SupportedScaApproaches              []string `mapstructure:"supported_sca_approaches"`
	MultilevelScaRequired               bool     `mapstructure:"multilevel_sca_required"`
	PsuInInitialRequestMandated         bool     `mapstructure:"psu_in_initial_request_mandated"`
	ChecksumVerificationEnabled         bool     `mapstructure:"checksum_verification_enabled"`
}

// SPIConfig points the SCA flows at the ASPSP connector. An empty BaseURL
// selects the built-in mock with fixed test credentials.
type SPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds configuration for the usage counter cache
type CacheConfig struct {
	Driver   string        `mapstructure:"driver"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// MetricsConfig holds Prometheus exposition configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	Port    int    `mapstructure:"port"`
}

// SecurityConfig holds security configuration
type SecurityConfig struct {
	BasicAuth BasicAuthConfig `mapstructure:"basic_auth"`
}

// BasicAuthConfig holds basic authentication configuration
type BasicAuthConfig struct {
	Enabled bool            `mapstructure:"enabled"`
	Users   []BasicAuthUser `mapstructure:"users"`
}

// BasicAuthUser represents a basic auth user
type BasicAuthUser struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

var globalConfig *Config

var validScaApproaches = map[string]bool{
	"REDIRECT":  true,
	"DECOUPLED": true,
	"EMBEDDED":  true,
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default configuration lookup order:
		// 1. ./repository/conf/deployment.yaml (production - relative to binary)
		// 2. ./cmd/server/repository/conf/deployment.yaml (development)
		v.SetConfigName("deployment")
		v.SetConfigType("yaml")
		v.AddConfigPath("./repository/conf")
		v.AddConfigPath("./cmd/server/repository/conf")
		v.AddConfigPath("../repository/conf")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CONSENT_MGT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.hostname", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("cache.driver", "memory")
	v.SetDefault("cache.prefix", "cms")
	v.SetDefault("cache.ttl", 24*time.Hour)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("spi.timeout", 30*time.Second)
	v.SetDefault("aspsp.supported_sca_approaches", []string{"REDIRECT"})
	v.SetDefault("aspsp.redirect_url_expiration_time_ms", 600000)
	v.SetDefault("aspsp.authorisation_expiration_time_ms", 86400000)
	v.SetDefault("aspsp.not_confirmed_consent_expiration_time_ms", 86400000)
	v.SetDefault("aspsp.not_confirmed_payment_expiration_time_ms", 86400000)
	v.SetDefault("aspsp.checksum_verification_enabled", true)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Consent.Hostname == "" && !config.Database.Consent.IsSQLite() {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Consent.Database == "" {
		return fmt.Errorf("database name is required")
	}

	return config.Aspsp.Validate()
}

// Validate checks the ASPSP profile for values the lifecycle cannot work with.
func (a *AspspConfig) Validate() error {
	if a.MaxConsentValidityDays < 0 {
		return fmt.Errorf("max consent validity days cannot be negative: %d", a.MaxConsentValidityDays)
	}
	if a.NotConfirmedConsentExpirationTimeMs < 0 || a.NotConfirmedPaymentExpirationTimeMs < 0 {
		return fmt.Errorf("confirmation expiration time cannot be negative")
	}
	if len(a.SupportedScaApproaches) == 0 {
		return fmt.Errorf("at least one SCA approach must be supported")
	}
	for _, approach := range a.SupportedScaApproaches {
		if !validScaApproaches[strings.ToUpper(approach)] {
			return fmt.Errorf("unsupported SCA approach: %s", approach)
		}
	}
	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// DriverName returns the database/sql driver registered for the configured type.
func (d *DatabaseConfig) DriverName() string {
	switch strings.ToLower(d.Type) {
	case "postgres", "postgresql":
		return "pgx"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return "mysql"
	}
}

// IsSQLite reports whether the database is a local SQLite file.
func (d *DatabaseConfig) IsSQLite() bool {
	return d.DriverName() == "sqlite3"
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	switch d.DriverName() {
	case "pgx":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			url.QueryEscape(d.User),
			url.QueryEscape(d.Password),
			d.Hostname,
			d.Port,
			d.Database,
		)
	case "sqlite3":
		return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", d.Database)
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			d.User,
			d.Password,
			d.Hostname,
			d.Port,
			d.Database,
		)
	}
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}

// IsBasicAuthEnabled returns whether basic auth is enabled
func (s *SecurityConfig) IsBasicAuthEnabled() bool {
	return s.BasicAuth.Enabled
}

// Accounts returns the configured basic auth users as a username to password map
func (s *SecurityConfig) Accounts() map[string]string {
	accounts := make(map[string]string, len(s.BasicAuth.Users))
	for _, user := range s.BasicAuth.Users {
		accounts[user.Username] = user.Password
	}
	return accounts
}
