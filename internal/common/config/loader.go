// internal/common/config/loader.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// legacyBaseURLKey is API_URL under [DEFAULT] in an INI config file.
const legacyBaseURLKey = "default.api_url"

var defaults = map[string]interface{}{
	"app.name":                "subscription-manager",
	"app.environment":         "development",
	"record_store.base_url":   "",
	"record_store.timeout":    "10s",
	"logging.level":           "info",
	"logging.format":          "console",
	"redis.enabled":           false,
	"redis.address":           "localhost:6379",
	"redis.password":          "",
	"redis.db":                0,
	"journal.max_entries":     50,
	"camunda.broker_address":  "localhost:26500",
	"camunda.plaintext":       true,
	"camunda.max_jobs_active": 5,
	"camunda.timeout":         "30s",
	"metrics.address":         ":9090",
}

// Load reads .env, then config.{yaml,json,ini,...} from ./configs or the working directory,
// then environment overrides such as RECORD_STORE_BASE_URL or API_URL.
func Load() (*Config, error) {
	loadEnvFile()
	return LoadWith(viper.New(), "./configs", ".")
}

// LoadWith loads configuration into v from the given search paths without touching .env.
func LoadWith(v *viper.Viper, paths ...string) (*Config, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("record_store.base_url", "RECORD_STORE_BASE_URL", "API_URL"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.RecordStore.BaseURL == "" {
		cfg.RecordStore.BaseURL = v.GetString(legacyBaseURLKey)
	}

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks struct constraints on cfg.
func Validate(cfg *Config) error {
	return validator.New().Struct(cfg)
}

func loadEnvFile() {
	possiblePaths := []string{".env"}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up from the working directory to the nearest go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
