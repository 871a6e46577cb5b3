// Package config loads readlog configuration from flags, environment variables and .env files.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "READLOG_"

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Server   ServerConfig
	Lookup   LookupConfig
	Tracing  TracingConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string // json or pretty; empty picks by environment
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string // sqlite or postgres
	DSN    string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string
	Port         string
	CORSOrigins  []string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// LookupConfig configures the metadata provider used by import resolution.
type LookupConfig struct {
	Provider          string // openlibrary or none
	BaseURL           string
	Timeout           time.Duration // per row
	Concurrency       int
	RequestsPerSecond float64
	Burst             int
	MaxRetries        int
}

// TracingConfig configures OpenTelemetry export.
type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

// Database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Lookup providers.
const (
	ProviderOpenLibrary = "openlibrary"
	ProviderNone        = "none"
)

// Flags holds raw command-line values. Empty strings fall through to the
// environment.
type Flags struct {
	Env         string
	LogLevel    string
	LogFormat   string
	DBDriver    string
	DBDSN       string
	Host        string
	Port        string
	Lookup      string
	LookupURL   string
	Concurrency string
	EnvFile     string
}

// RegisterFlags binds Flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Env, "env", "", "Environment (development, staging, production)")
	fs.StringVar(&f.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&f.LogFormat, "log-format", "", "Log format (json, pretty)")
	fs.StringVar(&f.DBDriver, "db-driver", "", "Database driver (sqlite, postgres)")
	fs.StringVar(&f.DBDSN, "db-dsn", "", "Database DSN or sqlite file path")
	fs.StringVar(&f.Host, "host", "", "Listen host")
	fs.StringVar(&f.Port, "port", "", "Server port (default: 8080)")
	fs.StringVar(&f.Lookup, "lookup-provider", "", "Metadata provider (openlibrary, none)")
	fs.StringVar(&f.LookupURL, "lookup-url", "", "Metadata provider base URL")
	fs.StringVar(&f.Concurrency, "lookup-concurrency", "", "Concurrent lookups per import (default: 4)")
	fs.StringVar(&f.EnvFile, "env-file", ".env", "Path to .env file")
	return f
}

// LoadConfig parses os.Args with the default flag set and loads configuration.
func LoadConfig() (*Config, error) {
	flags := RegisterFlags(flag.CommandLine)
	flag.Parse()
	return Load(flags)
}

// Load resolves configuration with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(flags *Flags) (*Config, error) {
	if flags == nil {
		flags = &Flags{}
	}

	dotenv, err := readEnvFile(flags.EnvFile)
	if err != nil {
		return nil, err
	}
	r := resolver{dotenv: dotenv}

	cfg := &Config{
		App: AppConfig{
			Environment: r.str(flags.Env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level:  r.str(flags.LogLevel, "LOG_LEVEL", "info"),
			Format: r.str(flags.LogFormat, "LOG_FORMAT", ""),
		},
		Database: DatabaseConfig{
			Driver: r.str(flags.DBDriver, "DB_DRIVER", DriverSQLite),
			DSN:    r.str(flags.DBDSN, "DB_DSN", "readlog.db"),
		},
		Server: ServerConfig{
			Host:        r.str(flags.Host, "SERVER_HOST", ""),
			Port:        r.str(flags.Port, "SERVER_PORT", "8080"),
			CORSOrigins: splitCSV(r.str("", "CORS_ORIGINS", "*")),
		},
		Lookup: LookupConfig{
			Provider:   r.str(flags.Lookup, "LOOKUP_PROVIDER", ProviderOpenLibrary),
			BaseURL:    r.str(flags.LookupURL, "LOOKUP_BASE_URL", "https://openlibrary.org"),
			Burst:      r.intValue("", "LOOKUP_BURST", 5),
			MaxRetries: r.intValue("", "LOOKUP_MAX_RETRIES", 3),
		},
		Tracing: TracingConfig{
			Enabled:     r.boolValue("", "TRACING_ENABLED", false),
			Endpoint:    r.str("", "TRACING_ENDPOINT", "localhost:4318"),
			ServiceName: r.str("", "TRACING_SERVICE_NAME", "readlog"),
		},
	}

	if cfg.Lookup.Concurrency, err = r.intStrict(flags.Concurrency, "LOOKUP_CONCURRENCY", 4); err != nil {
		return nil, err
	}
	if cfg.Lookup.RequestsPerSecond, err = r.float("", "LOOKUP_RPS", 5); err != nil {
		return nil, err
	}

	durations := []struct {
		dst  *time.Duration
		key  string
		def  string
		name string
	}{
		{&cfg.Server.ReadTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout"},
		{&cfg.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT", "60s", "write timeout"},
		{&cfg.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout"},
		{&cfg.Lookup.Timeout, "LOOKUP_TIMEOUT", "10s", "lookup timeout"},
	}
	for _, d := range durations {
		raw := r.str("", d.key, d.def)
		v, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.name, raw, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks that all config values are present and in range.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	switch c.Logger.Format {
	case "", "json", "pretty":
	default:
		return fmt.Errorf("invalid log format: %s (must be json or pretty)", c.Logger.Format)
	}

	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("invalid database driver: %s (must be sqlite or postgres)", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database DSN cannot be empty")
	}

	switch c.Lookup.Provider {
	case ProviderOpenLibrary, ProviderNone:
	default:
		return fmt.Errorf("invalid lookup provider: %s (must be openlibrary or none)", c.Lookup.Provider)
	}
	if c.Lookup.Concurrency < 1 {
		return fmt.Errorf("lookup concurrency must be at least 1, got %d", c.Lookup.Concurrency)
	}
	if c.Lookup.Timeout <= 0 {
		return errors.New("lookup timeout must be positive")
	}
	if c.Lookup.RequestsPerSecond <= 0 || c.Lookup.Burst < 1 {
		return errors.New("lookup rate limit must be positive")
	}
	if c.Lookup.MaxRetries < 0 {
		return errors.New("lookup max retries cannot be negative")
	}

	if c.Tracing.Enabled && c.Tracing.Endpoint == "" {
		return errors.New("tracing endpoint is required when tracing is enabled")
	}
	return nil
}

// readEnvFile loads key/value pairs from a .env file. A missing file is not
// an error.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

// resolver looks values up by flag, then environment, then .env, then default.
type resolver struct {
	dotenv map[string]string
}

func (r resolver) str(flagValue, key, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(EnvPrefix + key); v != "" {
		return v
	}
	if v := r.dotenv[EnvPrefix+key]; v != "" {
		return v
	}
	return defaultValue
}

// boolValue accepts "true", "1", "yes" (case-insensitive) as true.
func (r resolver) boolValue(flagValue, key string, defaultValue bool) bool {
	v := r.str(flagValue, key, "")
	if v == "" {
		return defaultValue
	}
	v = strings.ToLower(v)
	return v == "true" || v == "1" || v == "yes"
}

// intValue falls back to the default on unparsable input.
func (r resolver) intValue(flagValue, key string, defaultValue int) int {
	n, err := strconv.Atoi(r.str(flagValue, key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}

func (r resolver) intStrict(flagValue, key string, defaultValue int) (int, error) {
	raw := r.str(flagValue, key, strconv.Itoa(defaultValue))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, raw, err)
	}
	return n, nil
}

func (r resolver) float(flagValue, key string, defaultValue float64) (float64, error) {
	raw := r.str(flagValue, key, strconv.FormatFloat(defaultValue, 'f', -1, 64))
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, key, raw, err)
	}
	return f, nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
