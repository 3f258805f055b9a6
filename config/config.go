package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envFile = ".env"

// maxAlternativesCap is the largest alternatives list a lookup may return
const maxAlternativesCap = 6

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts"`
	WebSearch     WebSearchConfig     `mapstructure:"websearch"`
	Estimator     EstimatorConfig     `mapstructure:"estimator"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	// MaxBodyBytes caps request bodies; images arrive inline as data URLs
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// OpenFoodFactsConfig holds Open Food Facts API configuration
type OpenFoodFactsConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	UserAgent         string        `mapstructure:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// WebSearchConfig holds Brave Search configuration
type WebSearchConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
}

// EstimatorConfig selects the generative model provider
type EstimatorConfig struct {
	Provider string        `mapstructure:"provider"` // "gemini", "anthropic" or "none"
	APIKey   string        `mapstructure:"api_key"`
	Model    string        `mapstructure:"model"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// RateLimitConfig holds inbound rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"` // requests per minute
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// PipelineConfig tunes the lookup pipeline
type PipelineConfig struct {
	IncludeDiagnostics bool `mapstructure:"include_diagnostics"`
	MaxAlternatives    int  `mapstructure:"max_alternatives"`
	MinAlternatives    int  `mapstructure:"min_alternatives"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error loading %s file: %w", envFile, err)
	}

	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/greenscanner/")

	// GREENSCANNER_WEBSEARCH_API_KEY -> websearch.api_key
	v.SetEnvPrefix("GREENSCANNER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a local .env file if present. Variables already set in
// the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(envFile); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return godotenv.Load(envFile)
}

// setDefaults sets default configuration values.
// Every key needs a default so AutomaticEnv can bind it during Unmarshal.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*"})
	v.SetDefault("server.max_body_bytes", 10<<20)

	// Open Food Facts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "GreenScanner/1.0 (sustainability lookup)")
	v.SetDefault("openfoodfacts.timeout", "10s")
	v.SetDefault("openfoodfacts.max_attempts", 2)
	v.SetDefault("openfoodfacts.requests_per_minute", 100)

	// Web search defaults
	v.SetDefault("websearch.api_key", "")
	v.SetDefault("websearch.base_url", "https://api.search.brave.com")
	v.SetDefault("websearch.timeout", "4s")
	v.SetDefault("websearch.requests_per_second", 1.0)

	// Estimator defaults
	v.SetDefault("estimator.provider", "gemini")
	v.SetDefault("estimator.api_key", "")
	v.SetDefault("estimator.model", "")
	v.SetDefault("estimator.timeout", "6s")

	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("logging.level", "info")

	// Pipeline defaults
	v.SetDefault("pipeline.include_diagnostics", false)
	v.SetDefault("pipeline.max_alternatives", 6)
	v.SetDefault("pipeline.min_alternatives", 3)
}

// validate validates the configuration. Missing estimator or web search
// credentials are allowed; those gateways then contribute nothing.
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if config.OpenFoodFacts.BaseURL == "" {
		return fmt.Errorf("Open Food Facts base URL is required (set GREENSCANNER_OPENFOODFACTS_BASE_URL)")
	}

	switch config.Estimator.Provider {
	case "gemini", "anthropic", "none", "":
	default:
		return fmt.Errorf("estimator provider must be 'gemini', 'anthropic' or 'none', got: %s", config.Estimator.Provider)
	}

	switch config.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging level must be one of debug, info, warn, error, got: %s", config.Logging.Level)
	}

	if config.Pipeline.MaxAlternatives < 1 || config.Pipeline.MaxAlternatives > maxAlternativesCap {
		return fmt.Errorf("pipeline.max_alternatives must be between 1 and %d, got: %d", maxAlternativesCap, config.Pipeline.MaxAlternatives)
	}

	if config.Pipeline.MinAlternatives < 1 || config.Pipeline.MinAlternatives > config.Pipeline.MaxAlternatives {
		return fmt.Errorf("pipeline.min_alternatives must be between 1 and max_alternatives, got: %d", config.Pipeline.MinAlternatives)
	}

	if config.RateLimit.PerIP <= 0 {
		return fmt.Errorf("ratelimit.per_ip must be positive, got: %d", config.RateLimit.PerIP)
	}

	return nil
}
