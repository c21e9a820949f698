// internal/common/config/config.go
package config

import "time"

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	RecordStore RecordStoreConfig `mapstructure:"record_store"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Redis       RedisConfig       `mapstructure:"redis"`
	Journal     JournalConfig     `mapstructure:"journal"`
	Camunda     CamundaConfig     `mapstructure:"camunda"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// RecordStoreConfig locates the customer record store. Records are read and written at
// {base_url}/{customer_id}/.
type RecordStoreConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=json console"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address" validate:"required_if=Enabled true"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db" validate:"gte=0"`
}

// JournalConfig bounds the per-customer transition journal kept in Redis.
type JournalConfig struct {
	MaxEntries int64 `mapstructure:"max_entries" validate:"gte=1"`
}

type CamundaConfig struct {
	BrokerAddress string        `mapstructure:"broker_address"`
	Plaintext     bool          `mapstructure:"plaintext"`
	MaxJobsActive int           `mapstructure:"max_jobs_active" validate:"gte=1"`
	Timeout       time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

type MetricsConfig struct {
	Address string `mapstructure:"address"`
}
