// Package config loads server configuration from command-line flags,
// environment variables, and an optional .env file.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Store drivers.
const (
	DriverBadger   = "badger"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Tasting policies.
const (
	// PolicyOnePerCigar refuses to start a tasting for a cigar that already has one in progress.
	PolicyOnePerCigar = "one-per-cigar"
	// PolicyConcurrent allows any number of in-progress tastings per cigar.
	PolicyConcurrent = "concurrent"
)

// Review modes.
const (
	ReviewMinimal = "minimal"
	ReviewFull    = "full"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Store     StoreConfig
	Tasting   TastingConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

// StoreConfig selects and locates the persistence backend.
type StoreConfig struct {
	Driver string
	// DataPath is the badger directory or the sqlite file's directory.
	DataPath    string
	PostgresDSN string
}

// TastingConfig holds tasting lifecycle policy.
type TastingConfig struct {
	Policy     string
	ReviewMode string
}

// AuthConfig holds token configuration.
type AuthConfig struct {
	// KeyPath is where the PASETO v4 symmetric key is stored (default: {data}/auth.key).
	KeyPath       string
	TokenDuration time.Duration
	Issuer        string
}

// RateLimitConfig holds per-user API rate limits.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoadConfig parses os.Args and the environment.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load builds a Config with precedence:
// 1. Command-line flags.
// 2. Environment variables.
// 3. .env file.
// 4. Defaults.
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("humidor", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	port := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	corsOrigins := fs.String("cors-origins", "", "Comma separated allowed origins (default: *)")

	driver := fs.String("store", "", "Store driver: badger, sqlite or postgres (default: badger)")
	dataPath := fs.String("data-path", "", "Directory for local data (default: ~/Humidor/data)")
	pgDSN := fs.String("postgres-dsn", "", "Postgres connection string")

	policy := fs.String("tasting-policy", "", "one-per-cigar or concurrent (default: one-per-cigar)")
	reviewMode := fs.String("review-mode", "", "minimal or full (default: minimal)")

	keyPath := fs.String("auth-key-path", "", "Path to the token key file")
	tokenDuration := fs.String("token-duration", "", "Token lifetime (default: 720h)")

	rps := fs.String("rate-limit-rps", "", "Requests per second per user (default: 20)")
	burst := fs.String("rate-limit-burst", "", "Burst per user (default: 40)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// A missing .env file is fine.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:        getConfigValue(*port, "SERVER_PORT", "8080"),
			CORSOrigins: splitList(getConfigValue(*corsOrigins, "CORS_ORIGINS", "*")),
		},
		Store: StoreConfig{
			Driver:      strings.ToLower(getConfigValue(*driver, "STORE_DRIVER", DriverBadger)),
			DataPath:    getConfigValue(*dataPath, "DATA_PATH", ""),
			PostgresDSN: getConfigValue(*pgDSN, "POSTGRES_DSN", ""),
		},
		Tasting: TastingConfig{
			Policy:     getConfigValue(*policy, "TASTING_POLICY", PolicyOnePerCigar),
			ReviewMode: getConfigValue(*reviewMode, "REVIEW_MODE", ReviewMinimal),
		},
		Auth: AuthConfig{
			KeyPath: getConfigValue(*keyPath, "AUTH_KEY_PATH", ""),
			Issuer:  "humidor",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getFloatConfigValue(*rps, "RATE_LIMIT_RPS", 20),
			Burst:             getIntConfigValue(*burst, "RATE_LIMIT_BURST", 40),
		},
	}

	var err error
	if cfg.Server.ReadTimeout, err = getDurationConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.WriteTimeout, err = getDurationConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s"); err != nil {
		return nil, err
	}
	if cfg.Server.IdleTimeout, err = getDurationConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"); err != nil {
		return nil, err
	}
	if cfg.Auth.TokenDuration, err = getDurationConfigValue(*tokenDuration, "TOKEN_DURATION", "720h"); err != nil {
		return nil, err
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and consistent.
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

	switch c.Store.Driver {
	case DriverBadger, DriverSQLite:
		if c.Store.DataPath == "" {
			return fmt.Errorf("store %s requires a data path", c.Store.Driver)
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return errors.New("store postgres requires POSTGRES_DSN")
		}
	default:
		return fmt.Errorf("invalid store driver: %s (must be badger, sqlite, or postgres)", c.Store.Driver)
	}

	if c.Tasting.Policy != PolicyOnePerCigar && c.Tasting.Policy != PolicyConcurrent {
		return fmt.Errorf("invalid tasting policy: %s (must be one-per-cigar or concurrent)", c.Tasting.Policy)
	}
	if c.Tasting.ReviewMode != ReviewMinimal && c.Tasting.ReviewMode != ReviewFull {
		return fmt.Errorf("invalid review mode: %s (must be minimal or full)", c.Tasting.ReviewMode)
	}

	if c.Auth.TokenDuration <= 0 {
		return errors.New("token duration must be positive")
	}
	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0 {
		return errors.New("rate limit must be positive")
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// An empty path yields defaultPath unchanged.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("get absolute path: %w", err)
	}
	return filepath.Clean(abs), nil
}

func (c *Config) expandPaths() error {
	defaultData := ""
	if home, err := os.UserHomeDir(); err == nil {
		defaultData = filepath.Join(home, "Humidor", "data")
	}

	var err error
	if c.Store.DataPath, err = expandPath(c.Store.DataPath, defaultData); err != nil {
		return err
	}

	defaultKey := ""
	if c.Store.DataPath != "" {
		defaultKey = filepath.Join(c.Store.DataPath, "auth.key")
	}
	c.Auth.KeyPath, err = expandPath(c.Auth.KeyPath, defaultKey)
	return err
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unparseable values fall back to the default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return v
}

func getFloatConfigValue(flagValue, envKey string, defaultValue float64) float64 {
	s := getConfigValue(flagValue, envKey, "")
	if s == "" {
		return defaultValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	s := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", strings.ToLower(envKey), s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads KEY=value lines from path. Variables already present in
// the environment are left alone.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set env var %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}
