package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the catalog engine configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Database   DatabaseConfig   `yaml:"database"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Lexical    LexicalConfig    `yaml:"lexical"`
	Visual     VisualConfig     `yaml:"visual"`
	ImageFetch ImageFetchConfig `yaml:"image_fetch"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxUploadBytes  int64 `yaml:"max_upload_bytes"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: redis)
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// ForecastConfig holds price forecasting settings. The ±5 % label thresholds are fixed.
type ForecastConfig struct {
	LookbackDays     int `yaml:"lookback_days"`
	HorizonDays      int `yaml:"horizon_days"`
	MinPoints        int `yaml:"min_points"`
	HistoryRetention int `yaml:"history_retention"`
}

// LexicalConfig holds intent search settings.
type LexicalConfig struct {
	MaxFeatures   int     `yaml:"max_features"`
	MinSimilarity float64 `yaml:"min_similarity"`
	DefaultTopK   int     `yaml:"default_top_k"`
	GroupTopN     int     `yaml:"group_top_n"`
}

// VisualConfig holds image similarity settings.
type VisualConfig struct {
	DefaultTopK int `yaml:"default_top_k"`
}

// ImageFetchConfig holds image download and circuit breaker settings.
type ImageFetchConfig struct {
	TimeoutSec int           `yaml:"timeout_sec"`
	MaxBytes   int64         `yaml:"max_bytes"`
	Breaker    BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker thresholds.
type BreakerConfig struct {
	MaxRequests    uint32  `yaml:"max_requests"`
	IntervalSec    int     `yaml:"interval_sec"`
	OpenTimeoutSec int     `yaml:"open_timeout_sec"`
	MinRequests    uint32  `yaml:"min_requests"`
	FailureRatio   float64 `yaml:"failure_ratio"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	KeyPrefix string `yaml:"key_prefix"`
}

// LoadDotEnv loads variables from the given .env files (default ".env") without overriding
// the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if !fileExists(p) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads configuration from a YAML file by environment name (local, docker, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxUploadBytes <= 0 {
		c.HTTP.MaxUploadBytes = 10 << 20
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "redis"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Forecast.LookbackDays <= 0 {
		c.Forecast.LookbackDays = 60
	}
	if c.Forecast.HorizonDays <= 0 {
		c.Forecast.HorizonDays = 7
	}
	if c.Forecast.MinPoints <= 0 {
		c.Forecast.MinPoints = 5
	}
	if c.Forecast.HistoryRetention <= 0 {
		c.Forecast.HistoryRetention = 100
	}
	if c.Lexical.MaxFeatures <= 0 {
		c.Lexical.MaxFeatures = 1000
	}
	if c.Lexical.MinSimilarity <= 0 {
		c.Lexical.MinSimilarity = 0.1
	}
	if c.Lexical.DefaultTopK <= 0 {
		c.Lexical.DefaultTopK = 5
	}
	if c.Lexical.GroupTopN <= 0 {
		c.Lexical.GroupTopN = 20
	}
	if c.Visual.DefaultTopK <= 0 {
		c.Visual.DefaultTopK = 5
	}
	if c.ImageFetch.TimeoutSec <= 0 {
		c.ImageFetch.TimeoutSec = 10
	}
	if c.ImageFetch.MaxBytes <= 0 {
		c.ImageFetch.MaxBytes = 10 << 20
	}
	b := &c.ImageFetch.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 3
	}
	if b.IntervalSec <= 0 {
		b.IntervalSec = 60
	}
	if b.OpenTimeoutSec <= 0 {
		b.OpenTimeoutSec = 30
	}
	if b.MinRequests == 0 {
		b.MinRequests = 10
	}
	if b.FailureRatio <= 0 {
		b.FailureRatio = 0.6
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "catalog:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "redis":
		if len(c.Database.Addrs) == 0 {
			return fmt.Errorf("database.addrs is required for the redis driver")
		}
	case "memory":
	default:
		return fmt.Errorf("database.driver must be \"redis\" or \"memory\", got %q", c.Database.Driver)
	}
	if c.Forecast.MinPoints < 2 {
		return fmt.Errorf("forecast.min_points must be at least 2, got %d", c.Forecast.MinPoints)
	}
	if c.Forecast.LookbackDays < c.Forecast.MinPoints {
		return fmt.Errorf("forecast.lookback_days (%d) must cover forecast.min_points (%d)",
			c.Forecast.LookbackDays, c.Forecast.MinPoints)
	}
	if c.Lexical.MinSimilarity >= 1 {
		return fmt.Errorf("lexical.min_similarity must be below 1, got %v", c.Lexical.MinSimilarity)
	}
	if r := c.ImageFetch.Breaker.FailureRatio; r > 1 {
		return fmt.Errorf("image_fetch.breaker.failure_ratio must be in (0, 1], got %v", r)
	}
	if !strings.HasSuffix(c.Storage.KeyPrefix, ":") {
		return fmt.Errorf("storage.key_prefix must end with ':', got %q", c.Storage.KeyPrefix)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
