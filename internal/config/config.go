// Package config provides unified configuration loading for the disease
// prediction service. Supports YAML files, environment variables, and
// programmatic overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for training and serving.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Paths         PathsConfig         `yaml:"paths"`
	Model         ModelConfig         `yaml:"model"`
	Training      TrainingConfig      `yaml:"training"`
	Inference     InferenceConfig     `yaml:"inference"`
	Cache         CacheConfig         `yaml:"cache"`
	Audit         AuditConfig         `yaml:"audit"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host             string        `yaml:"host"`
	Port             int           `yaml:"port"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	GracefulShutdown time.Duration `yaml:"graceful_shutdown"`
}

// PathsConfig holds filesystem locations for data and artifacts.
type PathsConfig struct {
	ModelsDir   string `yaml:"models_dir"`
	DatasetPath string `yaml:"dataset_path"`
	MedicalInfo string `yaml:"medical_info_path"`
	ReportPath  string `yaml:"report_path"`
}

// ModelConfig holds vectorizer and classifier hyperparameters.
type ModelConfig struct {
	MaxFeatures    int     `yaml:"max_features"`
	NGramMin       int     `yaml:"ngram_min"`
	NGramMax       int     `yaml:"ngram_max"`
	MinDocFreq     int     `yaml:"min_doc_freq"`
	MaxDocFreqFrac float64 `yaml:"max_doc_freq_frac"`
	SmoothingAlpha float64 `yaml:"smoothing_alpha"`
}

// TrainingConfig holds training pipeline settings.
type TrainingConfig struct {
	TestFraction  float64 `yaml:"test_fraction"`
	Seed          int64   `yaml:"seed"`
	MaxCVFolds    int     `yaml:"max_cv_folds"`
	AccuracyFloor float64 `yaml:"accuracy_floor"`
}

// InferenceConfig holds request-path settings.
type InferenceConfig struct {
	MaxInputLength int     `yaml:"max_input_length"`
	MaxBatchSize   int     `yaml:"max_batch_size"`
	TopK           int     `yaml:"top_k"`
	DisclaimerBar  float64 `yaml:"disclaimer_bar"`
}

// CacheConfig holds prediction cache settings.
type CacheConfig struct {
	Driver     string        `yaml:"driver"` // memory or redis
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
	Redis      RedisConfig   `yaml:"redis"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// AuditConfig holds prediction audit store settings.
type AuditConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Driver   string         `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// SQLiteConfig holds SQLite-specific settings.
type SQLiteConfig struct {
	Path         string `yaml:"path"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// PostgresConfig holds Postgres-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	ServiceName string `yaml:"service_name"`
}

// Load reads configuration from a YAML file and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:             "127.0.0.1",
			Port:             5000,
			ReadTimeout:      30 * time.Second,
			WriteTimeout:     30 * time.Second,
			IdleTimeout:      120 * time.Second,
			GracefulShutdown: 10 * time.Second,
		},
		Paths: PathsConfig{
			ModelsDir:   "models",
			DatasetPath: "data/decease.csv",
			MedicalInfo: "data/med.csv",
			ReportPath:  "models/training_report.txt",
		},
		Model: ModelConfig{
			MaxFeatures:    5000,
			NGramMin:       1,
			NGramMax:       2,
			MinDocFreq:     1,
			MaxDocFreqFrac: 0.95,
			SmoothingAlpha: 0.1,
		},
		Training: TrainingConfig{
			TestFraction:  0.2,
			Seed:          42,
			MaxCVFolds:    5,
			AccuracyFloor: 0.4,
		},
		Inference: InferenceConfig{
			MaxInputLength: 1000,
			MaxBatchSize:   10,
			TopK:           3,
			DisclaimerBar:  0.6,
		},
		Cache: CacheConfig{
			Driver:     "memory",
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
			Redis: RedisConfig{
				Addr:     "localhost:6379",
				DB:       0,
				PoolSize: 10,
			},
		},
		Audit: AuditConfig{
			Enabled: false,
			Driver:  "sqlite",
			SQLite: SQLiteConfig{
				Path:         "data/predictions.db",
				MaxOpenConns: 1,
			},
			Postgres: PostgresConfig{
				MaxOpenConns:    25,
				MaxIdleConns:    5,
				ConnMaxLifetime: 5 * time.Minute,
			},
		},
		Observability: ObservabilityConfig{
			LogLevel:    "info",
			LogFormat:   "json",
			ServiceName: "medalyze",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Cache.Driver != "memory" && c.Cache.Driver != "redis" {
		return fmt.Errorf("invalid cache driver: %s", c.Cache.Driver)
	}

	if c.Audit.Driver != "sqlite" && c.Audit.Driver != "postgres" {
		return fmt.Errorf("invalid audit driver: %s", c.Audit.Driver)
	}

	if c.Model.MaxFeatures < 1 {
		return fmt.Errorf("max_features must be positive")
	}

	if c.Model.NGramMin < 1 || c.Model.NGramMax < c.Model.NGramMin {
		return fmt.Errorf("invalid ngram range: (%d, %d)", c.Model.NGramMin, c.Model.NGramMax)
	}

	if c.Model.MaxDocFreqFrac <= 0 || c.Model.MaxDocFreqFrac > 1 {
		return fmt.Errorf("max_doc_freq_frac must be in (0, 1]")
	}

	if c.Training.TestFraction <= 0 || c.Training.TestFraction >= 1 {
		return fmt.Errorf("test_fraction must be in (0, 1)")
	}

	if c.Inference.MaxBatchSize < 1 {
		return fmt.Errorf("max_batch_size must be positive")
	}

	if c.Inference.TopK < 1 {
		return fmt.Errorf("top_k must be positive")
	}

	return nil
}

// AuditDSN returns the connection string for the configured audit driver.
func (c *Config) AuditDSN() string {
	if c.Audit.Driver == "sqlite" {
		return c.Audit.SQLite.Path
	}
	return c.Audit.Postgres.DSN
}

// applyEnvOverrides applies environment variable overrides to config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}

	if v := os.Getenv("PORT"); v != "" {
		var port int
		if _, err := fmt.Sscanf(v, "%d", &port); err == nil {
			cfg.Server.Port = port
		}
	}

	if v := os.Getenv("MODELS_DIR"); v != "" {
		cfg.Paths.ModelsDir = v
	}

	if v := os.Getenv("DATASET_PATH"); v != "" {
		cfg.Paths.DatasetPath = v
	}

	if v := os.Getenv("MEDICAL_INFO_PATH"); v != "" {
		cfg.Paths.MedicalInfo = v
	}

	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Cache.Driver = "redis"
		cfg.Cache.Redis.Addr = strings.TrimPrefix(v, "redis://")
	}

	if v := os.Getenv("AUDIT_DATABASE_URL"); v != "" {
		cfg.Audit.Enabled = true
		if strings.HasPrefix(v, "sqlite:") {
			cfg.Audit.Driver = "sqlite"
			cfg.Audit.SQLite.Path = strings.TrimPrefix(v, "sqlite:")
		} else if strings.HasPrefix(v, "postgres") {
			cfg.Audit.Driver = "postgres"
			cfg.Audit.Postgres.DSN = v
		}
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = strings.ToLower(v)
	}

	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Observability.LogFormat = v
	}
}
