package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	// Clean up environment before tests
	cleanupEnv := func() {
		for _, key := range []string{
			"GREENSCANNER_SERVER_PORT",
			"GREENSCANNER_SERVER_ENVIRONMENT",
			"GREENSCANNER_SERVER_MAX_BODY_BYTES",
			"GREENSCANNER_OPENFOODFACTS_BASE_URL",
			"GREENSCANNER_OPENFOODFACTS_TIMEOUT",
			"GREENSCANNER_WEBSEARCH_API_KEY",
			"GREENSCANNER_ESTIMATOR_PROVIDER",
			"GREENSCANNER_ESTIMATOR_API_KEY",
			"GREENSCANNER_ESTIMATOR_TIMEOUT",
			"GREENSCANNER_RATELIMIT_PER_IP",
			"GREENSCANNER_LOGGING_LEVEL",
			"GREENSCANNER_PIPELINE_MAX_ALTERNATIVES",
			"GREENSCANNER_PIPELINE_MIN_ALTERNATIVES",
			"GREENSCANNER_PIPELINE_INCLUDE_DIAGNOSTICS",
		} {
			os.Unsetenv(key)
		}
	}

	t.Run("loads with defaults when no env vars set", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		t.Chdir(t.TempDir())

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "8080" {
			t.Errorf("Server.Port = %s, want 8080", cfg.Server.Port)
		}
		if cfg.Server.Environment != "development" {
			t.Errorf("Server.Environment = %s, want development", cfg.Server.Environment)
		}
		if cfg.Server.MaxBodyBytes != 10<<20 {
			t.Errorf("Server.MaxBodyBytes = %d, want %d", cfg.Server.MaxBodyBytes, 10<<20)
		}
		if cfg.OpenFoodFacts.BaseURL != "https://world.openfoodfacts.org" {
			t.Errorf("OpenFoodFacts.BaseURL = %s, want https://world.openfoodfacts.org", cfg.OpenFoodFacts.BaseURL)
		}
		if cfg.OpenFoodFacts.Timeout != 10*time.Second {
			t.Errorf("OpenFoodFacts.Timeout = %v, want 10s", cfg.OpenFoodFacts.Timeout)
		}
		if cfg.WebSearch.Timeout != 4*time.Second {
			t.Errorf("WebSearch.Timeout = %v, want 4s", cfg.WebSearch.Timeout)
		}
		if cfg.Estimator.Timeout != 6*time.Second {
			t.Errorf("Estimator.Timeout = %v, want 6s", cfg.Estimator.Timeout)
		}
		if cfg.Estimator.Provider != "gemini" {
			t.Errorf("Estimator.Provider = %s, want gemini", cfg.Estimator.Provider)
		}
		if cfg.RateLimit.PerIP != 100 {
			t.Errorf("RateLimit.PerIP = %d, want 100", cfg.RateLimit.PerIP)
		}
		if cfg.Pipeline.MaxAlternatives != 6 {
			t.Errorf("Pipeline.MaxAlternatives = %d, want 6", cfg.Pipeline.MaxAlternatives)
		}
		if cfg.Pipeline.MinAlternatives != 3 {
			t.Errorf("Pipeline.MinAlternatives = %d, want 3", cfg.Pipeline.MinAlternatives)
		}
		if cfg.Pipeline.IncludeDiagnostics {
			t.Errorf("Pipeline.IncludeDiagnostics = true, want false")
		}
	})

	t.Run("loads custom values from environment variables", func(t *testing.T) {
		cleanupEnv()
		t.Chdir(t.TempDir())
		os.Setenv("GREENSCANNER_SERVER_PORT", "9090")
		os.Setenv("GREENSCANNER_SERVER_ENVIRONMENT", "production")
		os.Setenv("GREENSCANNER_OPENFOODFACTS_BASE_URL", "https://off.example.com")
		os.Setenv("GREENSCANNER_OPENFOODFACTS_TIMEOUT", "3s")
		os.Setenv("GREENSCANNER_WEBSEARCH_API_KEY", "brave-key")
		os.Setenv("GREENSCANNER_ESTIMATOR_PROVIDER", "anthropic")
		os.Setenv("GREENSCANNER_ESTIMATOR_API_KEY", "model-key")
		os.Setenv("GREENSCANNER_RATELIMIT_PER_IP", "200")
		os.Setenv("GREENSCANNER_LOGGING_LEVEL", "debug")
		os.Setenv("GREENSCANNER_PIPELINE_INCLUDE_DIAGNOSTICS", "true")
		defer cleanupEnv()

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}

		if cfg.Server.Port != "9090" {
			t.Errorf("Server.Port = %s, want 9090", cfg.Server.Port)
		}
		if cfg.Server.Environment != "production" {
			t.Errorf("Server.Environment = %s, want production", cfg.Server.Environment)
		}
		if cfg.OpenFoodFacts.BaseURL != "https://off.example.com" {
			t.Errorf("OpenFoodFacts.BaseURL = %s, want https://off.example.com", cfg.OpenFoodFacts.BaseURL)
		}
		if cfg.OpenFoodFacts.Timeout != 3*time.Second {
			t.Errorf("OpenFoodFacts.Timeout = %v, want 3s", cfg.OpenFoodFacts.Timeout)
		}
		if cfg.WebSearch.APIKey != "brave-key" {
			t.Errorf("WebSearch.APIKey = %s, want brave-key", cfg.WebSearch.APIKey)
		}
		if cfg.Estimator.Provider != "anthropic" {
			t.Errorf("Estimator.Provider = %s, want anthropic", cfg.Estimator.Provider)
		}
		if cfg.Estimator.APIKey != "model-key" {
			t.Errorf("Estimator.APIKey = %s, want model-key", cfg.Estimator.APIKey)
		}
		if cfg.RateLimit.PerIP != 200 {
			t.Errorf("RateLimit.PerIP = %d, want 200", cfg.RateLimit.PerIP)
		}
		if cfg.Logging.Level != "debug" {
			t.Errorf("Logging.Level = %s, want debug", cfg.Logging.Level)
		}
		if !cfg.Pipeline.IncludeDiagnostics {
			t.Errorf("Pipeline.IncludeDiagnostics = false, want true")
		}
	})

	t.Run("missing credentials are not an error", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		t.Chdir(t.TempDir())

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.WebSearch.APIKey != "" || cfg.Estimator.APIKey != "" {
			t.Errorf("expected empty credentials, got %q / %q", cfg.WebSearch.APIKey, cfg.Estimator.APIKey)
		}
	})

	t.Run("fails validation for unknown estimator provider", func(t *testing.T) {
		cleanupEnv()
		t.Chdir(t.TempDir())
		os.Setenv("GREENSCANNER_ESTIMATOR_PROVIDER", "oracle")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for unknown provider")
		}
	})

	t.Run("fails validation when min alternatives exceeds max", func(t *testing.T) {
		cleanupEnv()
		t.Chdir(t.TempDir())
		os.Setenv("GREENSCANNER_PIPELINE_MAX_ALTERNATIVES", "2")
		os.Setenv("GREENSCANNER_PIPELINE_MIN_ALTERNATIVES", "3")
		defer cleanupEnv()

		_, err := Load()
		if err == nil {
			t.Error("Load() error = nil, want error for min > max alternatives")
		}
	})

	t.Run("reads config.yaml from working directory", func(t *testing.T) {
		cleanupEnv()
		defer cleanupEnv()
		t.Chdir(t.TempDir())

		yaml := "server:\n  port: \"7070\"\npipeline:\n  max_alternatives: 4\n"
		if err := os.WriteFile("config.yaml", []byte(yaml), 0644); err != nil {
			t.Fatalf("Failed to write config.yaml: %v", err)
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() error = %v, want nil", err)
		}
		if cfg.Server.Port != "7070" {
			t.Errorf("Server.Port = %s, want 7070", cfg.Server.Port)
		}
		if cfg.Pipeline.MaxAlternatives != 4 {
			t.Errorf("Pipeline.MaxAlternatives = %d, want 4", cfg.Pipeline.MaxAlternatives)
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("returns nil when .env file doesn't exist", func(t *testing.T) {
		t.Chdir(t.TempDir())

		err := loadEnvFile()
		if err != nil {
			t.Errorf("loadEnvFile() error = %v, want nil when file doesn't exist", err)
		}
	})

	t.Run("loads variables from .env file", func(t *testing.T) {
		t.Chdir(t.TempDir())

		envContent := `
# Comment line
TEST_VAR_1=value1
TEST_VAR_2=value2

# Another comment
TEST_VAR_3=value3
`
		if err := os.WriteFile(".env", []byte(envContent), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		os.Unsetenv("TEST_VAR_1")
		os.Unsetenv("TEST_VAR_2")
		os.Unsetenv("TEST_VAR_3")
		defer func() {
			os.Unsetenv("TEST_VAR_1")
			os.Unsetenv("TEST_VAR_2")
			os.Unsetenv("TEST_VAR_3")
		}()

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		for key, want := range map[string]string{"TEST_VAR_1": "value1", "TEST_VAR_2": "value2", "TEST_VAR_3": "value3"} {
			if got := os.Getenv(key); got != want {
				t.Errorf("%s = %s, want %s", key, got, want)
			}
		}
	})

	t.Run("doesn't override existing environment variables", func(t *testing.T) {
		t.Chdir(t.TempDir())
		t.Setenv("TEST_OVERRIDE", "existing-value")

		if err := os.WriteFile(".env", []byte("TEST_OVERRIDE=new-value"), 0644); err != nil {
			t.Fatalf("Failed to create test .env file: %v", err)
		}

		if err := loadEnvFile(); err != nil {
			t.Fatalf("loadEnvFile() error = %v, want nil", err)
		}

		if os.Getenv("TEST_OVERRIDE") != "existing-value" {
			t.Errorf("TEST_OVERRIDE = %s, want existing-value (should not override)", os.Getenv("TEST_OVERRIDE"))
		}
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:        ServerConfig{Port: "8080"},
			OpenFoodFacts: OpenFoodFactsConfig{BaseURL: "https://world.openfoodfacts.org"},
			Estimator:     EstimatorConfig{Provider: "gemini"},
			RateLimit:     RateLimitConfig{PerIP: 100},
			Logging:       LoggingConfig{Level: "info"},
			Pipeline:      PipelineConfig{MaxAlternatives: 6, MinAlternatives: 3},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid configuration", mutate: func(*Config) {}},
		{name: "estimator disabled", mutate: func(c *Config) { c.Estimator.Provider = "none" }},
		{name: "anthropic provider", mutate: func(c *Config) { c.Estimator.Provider = "anthropic" }},
		{name: "empty port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "empty base URL", mutate: func(c *Config) { c.OpenFoodFacts.BaseURL = "" }, wantErr: true},
		{name: "unknown provider", mutate: func(c *Config) { c.Estimator.Provider = "oracle" }, wantErr: true},
		{name: "unknown log level", mutate: func(c *Config) { c.Logging.Level = "verbose" }, wantErr: true},
		{name: "zero max alternatives", mutate: func(c *Config) { c.Pipeline.MaxAlternatives = 0 }, wantErr: true},
		{name: "max alternatives at cap", mutate: func(c *Config) { c.Pipeline.MaxAlternatives = 6 }},
		{name: "max alternatives above cap", mutate: func(c *Config) { c.Pipeline.MaxAlternatives = 7 }, wantErr: true},
		{name: "min above max", mutate: func(c *Config) { c.Pipeline.MaxAlternatives, c.Pipeline.MinAlternatives = 2, 3 }, wantErr: true},
		{name: "zero min alternatives", mutate: func(c *Config) { c.Pipeline.MinAlternatives = 0 }, wantErr: true},
		{name: "zero per-IP rate", mutate: func(c *Config) { c.RateLimit.PerIP = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
