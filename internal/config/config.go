// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Catalog   CatalogConfig
	Discovery DiscoveryConfig
	Store     StoreConfig
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
	Name         string
	Port         string        // Server port (default: 8080)
	ReadTimeout  time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout time.Duration // HTTP write timeout (default: 15s)
	IdleTimeout  time.Duration // HTTP idle timeout (default: 60s)
}

// CatalogConfig holds external book catalog configuration.
type CatalogConfig struct {
	// BaseURL of the volumes search endpoint (default: Google Books).
	BaseURL string
	// Timeout for a single catalog request (default: 30s).
	Timeout time.Duration
	// RequestsPerSecond limits outgoing catalog traffic (default: 2).
	RequestsPerSecond float64
	// Burst is the rate limiter burst size (default: 5).
	Burst int
}

// DiscoveryConfig holds the tunables of the recommendation engine.
// These were embedded literals in earlier revisions; named fields keep
// the retrieval loop and the categorizer independently adjustable.
type DiscoveryConfig struct {
	// TargetQuota is the number of novel candidates a ranked run collects (default: 10).
	TargetQuota int
	// MaxAttempts bounds catalog pages fetched per run (default: 3).
	MaxAttempts int
	// PageSize is the catalog page size per attempt (default: 10).
	PageSize int
	// CategoryTarget is the per-genre bucket size for the browse view (default: 4).
	CategoryTarget int
	// CategoryWorkers bounds concurrent per-genre runs (default: 4, 1 = sequential).
	CategoryWorkers int
	// SearchPageSize is the plain-search result count (default: 20).
	SearchPageSize int
}

// StoreConfig holds optional persistence configuration.
type StoreConfig struct {
	// Path of the Badger database for persisted dismissals.
	// Empty means dismissals stay in memory for the session.
	Path string
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	catalogBaseURL := flag.String("catalog-url", "", "Base URL of the book catalog volumes endpoint")
	catalogTimeout := flag.String("catalog-timeout", "", "Catalog request timeout (default: 30s)")

	targetQuota := flag.String("target-quota", "", "Novel candidates per ranked run (default: 10)")
	maxAttempts := flag.String("max-attempts", "", "Catalog pages fetched per run (default: 3)")
	pageSize := flag.String("page-size", "", "Catalog page size per attempt (default: 10)")
	categoryTarget := flag.String("category-target", "", "Candidates per genre bucket (default: 4)")
	categoryWorkers := flag.String("category-workers", "", "Concurrent per-genre runs (default: 4)")

	storePath := flag.String("store-path", "", "Badger database path for persisted dismissals (default: in-memory)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name: getConfigValue(*serverName, "SERVER_NAME", "BookHaven Server"),
			Port: getConfigValue(*serverPort, "SERVER_PORT", "8080"),
		},
		Catalog: CatalogConfig{
			BaseURL:           getConfigValue(*catalogBaseURL, "CATALOG_URL", "https://www.googleapis.com/books/v1/volumes"),
			RequestsPerSecond: 2,
			Burst:             5,
		},
		Discovery: DiscoveryConfig{
			TargetQuota:     getIntConfigValue(*targetQuota, "DISCOVERY_TARGET_QUOTA", 10),
			MaxAttempts:     getIntConfigValue(*maxAttempts, "DISCOVERY_MAX_ATTEMPTS", 3),
			PageSize:        getIntConfigValue(*pageSize, "DISCOVERY_PAGE_SIZE", 10),
			CategoryTarget:  getIntConfigValue(*categoryTarget, "DISCOVERY_CATEGORY_TARGET", 4),
			CategoryWorkers: getIntConfigValue(*categoryWorkers, "DISCOVERY_CATEGORY_WORKERS", 4),
			SearchPageSize:  getIntConfigValue("", "DISCOVERY_SEARCH_PAGE_SIZE", 20),
		},
		Store: StoreConfig{
			Path: getConfigValue(*storePath, "STORE_PATH", ""),
		},
	}

	// Parse server timeouts.
	readTimeoutStr := getConfigValue(*readTimeout, "SERVER_READ_TIMEOUT", "15s")
	readTimeoutDuration, err := time.ParseDuration(readTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid read timeout %q: %w", readTimeoutStr, err)
	}
	cfg.Server.ReadTimeout = readTimeoutDuration

	writeTimeoutStr := getConfigValue(*writeTimeout, "SERVER_WRITE_TIMEOUT", "15s")
	writeTimeoutDuration, err := time.ParseDuration(writeTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid write timeout %q: %w", writeTimeoutStr, err)
	}
	cfg.Server.WriteTimeout = writeTimeoutDuration

	idleTimeoutStr := getConfigValue(*idleTimeout, "SERVER_IDLE_TIMEOUT", "60s")
	idleTimeoutDuration, err := time.ParseDuration(idleTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid idle timeout %q: %w", idleTimeoutStr, err)
	}
	cfg.Server.IdleTimeout = idleTimeoutDuration

	catalogTimeoutStr := getConfigValue(*catalogTimeout, "CATALOG_TIMEOUT", "30s")
	catalogTimeoutDuration, err := time.ParseDuration(catalogTimeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog timeout %q: %w", catalogTimeoutStr, err)
	}
	cfg.Catalog.Timeout = catalogTimeoutDuration

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Catalog.BaseURL == "" {
		return errors.New("catalog base URL cannot be empty")
	}

	if c.Discovery.TargetQuota < 1 {
		return fmt.Errorf("target quota must be positive, got %d", c.Discovery.TargetQuota)
	}
	if c.Discovery.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be positive, got %d", c.Discovery.MaxAttempts)
	}
	if c.Discovery.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.Discovery.PageSize)
	}
	if c.Discovery.CategoryWorkers < 1 {
		return fmt.Errorf("category workers must be positive, got %d", c.Discovery.CategoryWorkers)
	}

	return nil
}

// getConfigValue returns a string from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=value.
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Only set if not already present in the environment.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
