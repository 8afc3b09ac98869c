// Package config loads service settings.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// TASKMGMT_* environment variables, then command-line flags.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"taskmgmt/internal/auth"
	"taskmgmt/internal/storage"
	"taskmgmt/internal/util"
)

// MinSecretLength is the shortest accepted token signing secret, in bytes.
const MinSecretLength = 32

// Config is the complete service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Log       LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	Addr              string        `yaml:"addr"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`

	// TrustedProxies lists the IPs or CIDRs whose X-Forwarded-For header is
	// believed. Empty means the peer address is always the client.
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type DatabaseConfig struct {
	// Driver is sqlite3 or postgres.
	Driver string `yaml:"driver"`
	// DSN is a file path for sqlite3 and a connection URL for postgres.
	DSN string `yaml:"dsn"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	Issuer    string        `yaml:"issuer"`
	Audience  string        `yaml:"audience"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// PasswordScheme is bcrypt, or sha256 to keep writing digests in the
	// legacy unsalted format.
	PasswordScheme string `yaml:"password_scheme"`
	BcryptCost     int    `yaml:"bcrypt_cost"`
}

// RateLimitConfig throttles the public auth routes. Empty RedisAddr disables it.
type RateLimitConfig struct {
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	KeyPrefix     string        `yaml:"key_prefix"`
	Limit         int           `yaml:"limit"`
	Window        time.Duration `yaml:"window"`
}

// Enabled reports whether a Redis backend is configured.
func (r RateLimitConfig) Enabled() bool {
	return r.RedisAddr != ""
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:              ":8080",
			ReadHeaderTimeout: 10 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver: storage.DriverSQLite,
			DSN:    "data/taskmgmt.db",
		},
		Auth: AuthConfig{
			Issuer:         "TaskManagement.API",
			Audience:       "TaskManagement.Client",
			TokenTTL:       24 * time.Hour,
			PasswordScheme: auth.SchemeBcrypt,
			BcryptCost:     auth.DefaultBcryptCost,
		},
		RateLimit: RateLimitConfig{
			KeyPrefix: "taskmgmt:ratelimit:",
			Limit:     10,
			Window:    time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTP.Addr = util.EnvOrDefault("TASKMGMT_ADDR", c.HTTP.Addr)
	if proxies := util.EnvOrDefault("TASKMGMT_TRUSTED_PROXIES", ""); proxies != "" {
		c.HTTP.TrustedProxies = splitList(proxies)
	}
	c.Database.Driver = util.EnvOrDefault("TASKMGMT_DB_DRIVER", c.Database.Driver)
	c.Database.DSN = util.EnvOrDefault("TASKMGMT_DB_DSN", c.Database.DSN)
	c.Auth.JWTSecret = util.EnvOrDefault("TASKMGMT_JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.Issuer = util.EnvOrDefault("TASKMGMT_JWT_ISSUER", c.Auth.Issuer)
	c.Auth.Audience = util.EnvOrDefault("TASKMGMT_JWT_AUDIENCE", c.Auth.Audience)
	c.Auth.PasswordScheme = util.EnvOrDefault("TASKMGMT_PASSWORD_SCHEME", c.Auth.PasswordScheme)
	c.RateLimit.RedisAddr = util.EnvOrDefault("TASKMGMT_REDIS_ADDR", c.RateLimit.RedisAddr)
	c.RateLimit.RedisPassword = util.EnvOrDefault("TASKMGMT_REDIS_PASSWORD", c.RateLimit.RedisPassword)
	c.Log.Level = util.EnvOrDefault("TASKMGMT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = util.EnvOrDefault("TASKMGMT_LOG_FORMAT", c.Log.Format)

	var errs []error
	intVar := func(dst *int, key string) {
		v, err := util.EnvIntOrDefault(key, *dst)
		errs = append(errs, err)
		*dst = v
	}
	durationVar := func(dst *time.Duration, key string) {
		v, err := util.EnvDurationOrDefault(key, *dst)
		errs = append(errs, err)
		*dst = v
	}
	intVar(&c.Auth.BcryptCost, "TASKMGMT_BCRYPT_COST")
	intVar(&c.RateLimit.RedisDB, "TASKMGMT_REDIS_DB")
	intVar(&c.RateLimit.Limit, "TASKMGMT_RATE_LIMIT")
	durationVar(&c.Auth.TokenTTL, "TASKMGMT_TOKEN_TTL")
	durationVar(&c.RateLimit.Window, "TASKMGMT_RATE_WINDOW")
	durationVar(&c.HTTP.ShutdownTimeout, "TASKMGMT_SHUTDOWN_TIMEOUT")

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid environment: %w", err)
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.HTTP.Addr == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must be positive"))
	}
	for _, proxy := range c.HTTP.TrustedProxies {
		if !validProxy(proxy) {
			errs = append(errs, fmt.Errorf("http.trusted_proxies: %q is not an IP or CIDR", proxy))
		}
	}
	switch c.Database.Driver {
	case storage.DriverSQLite, storage.DriverPostgres:
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn is required"))
	}
	if len(c.Auth.JWTSecret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("auth.jwt_secret must be at least %d bytes", MinSecretLength))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	switch c.Auth.PasswordScheme {
	case auth.SchemeBcrypt:
		if _, err := auth.NewPasswordHasher(c.Auth.BcryptCost); err != nil {
			errs = append(errs, fmt.Errorf("auth.bcrypt_cost: %w", err))
		}
	case auth.SchemeSHA256:
	default:
		errs = append(errs, fmt.Errorf("auth.password_scheme %q is not supported", c.Auth.PasswordScheme))
	}
	if c.RateLimit.Enabled() {
		if c.RateLimit.Limit <= 0 {
			errs = append(errs, errors.New("rate_limit.limit must be positive"))
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("rate_limit.window must be positive"))
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not supported", c.Log.Format))
	}
	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func validProxy(v string) bool {
	if strings.Contains(v, "/") {
		_, _, err := net.ParseCIDR(v)
		return err == nil
	}
	return net.ParseIP(v) != nil
}

func parseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level %q is not supported", level)
	}
	return l, nil
}

// NewLogger builds the process logger described by the log settings.
func (l LogConfig) NewLogger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(l.Level)
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Flags holds command-line overrides. Only flags set explicitly are applied.
type Flags struct {
	fs *pflag.FlagSet

	addr      string
	driver    string
	dsn       string
	logLevel  string
	logFormat string
	redisAddr string
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.addr, "addr", "", "HTTP listen address")
	fs.StringVar(&f.driver, "db-driver", "", "database driver (sqlite3 or postgres)")
	fs.StringVar(&f.dsn, "db-dsn", "", "sqlite file path or postgres connection URL")
	fs.StringVar(&f.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	fs.StringVar(&f.logFormat, "log-format", "", "log format (text or json)")
	fs.StringVar(&f.redisAddr, "redis-addr", "", "Redis address for auth rate limiting; empty disables it")
	return f
}

// Apply copies explicitly set flags onto cfg.
func (f *Flags) Apply(cfg *Config) {
	set := func(name string, dst *string, v string) {
		if f.fs.Changed(name) {
			*dst = v
		}
	}
	set("addr", &cfg.HTTP.Addr, f.addr)
	set("db-driver", &cfg.Database.Driver, f.driver)
	set("db-dsn", &cfg.Database.DSN, f.dsn)
	set("log-level", &cfg.Log.Level, f.logLevel)
	set("log-format", &cfg.Log.Format, f.logFormat)
	set("redis-addr", &cfg.RateLimit.RedisAddr, f.redisAddr)
}
