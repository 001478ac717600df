// Package config centralizes how recordkeeper reads environment variables
// and exposes them as strongly typed values. A Config is built once at
// startup and handed to constructors; nothing reads the environment later.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Storage strategy names accepted in RECORDKEEPER_STORAGE.
const (
	StrategyLocal    = "local"
	StrategyBuffered = "buffered"
	StrategyStreamed = "streamed"
	StrategyStaged   = "staged"
)

// Config represents runtime configuration for the service.
type Config struct {
	Address         string `env:"RECORDKEEPER_ADDRESS" envDefault:":8080"`
	MongoURL        string `env:"RECORDKEEPER_MONGO_URL,required,notEmpty"`
	Database        string `env:"RECORDKEEPER_DB" envDefault:"recordkeeper"`
	StorageStrategy string `env:"RECORDKEEPER_STORAGE" envDefault:"streamed"`
	UploadDir       string `env:"RECORDKEEPER_UPLOAD_DIR" envDefault:"uploads"`
	StagingDir      string `env:"RECORDKEEPER_STAGING_DIR"`
	MaxFileSize     int64  `env:"RECORDKEEPER_MAX_FILE_BYTES" envDefault:"26214400"`

	S3Endpoint  string `env:"RECORDKEEPER_S3_ENDPOINT"`
	S3AccessKey string `env:"RECORDKEEPER_S3_ACCESS_KEY"`
	S3SecretKey string `env:"RECORDKEEPER_S3_SECRET_KEY"`
	S3Bucket    string `env:"RECORDKEEPER_S3_BUCKET" envDefault:"recordkeeper"`
	S3Region    string `env:"RECORDKEEPER_S3_REGION"`
	S3UseSSL    bool   `env:"RECORDKEEPER_S3_USE_SSL" envDefault:"true"`
}

// Load reads configuration from a .env file (if present) and the
// environment, then validates the selected storage strategy.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StorageStrategy {
	case StrategyLocal:
		if c.UploadDir == "" {
			return errors.New("local storage requires RECORDKEEPER_UPLOAD_DIR")
		}
	case StrategyBuffered, StrategyStreamed, StrategyStaged:
		if c.S3Endpoint == "" || c.S3AccessKey == "" || c.S3SecretKey == "" {
			return fmt.Errorf("%s storage requires RECORDKEEPER_S3_ENDPOINT, RECORDKEEPER_S3_ACCESS_KEY and RECORDKEEPER_S3_SECRET_KEY", c.StorageStrategy)
		}
	default:
		return fmt.Errorf("unknown storage strategy %q", c.StorageStrategy)
	}
	if c.MaxFileSize <= 0 {
		return errors.New("RECORDKEEPER_MAX_FILE_BYTES must be positive")
	}
	return nil
}

// RemoteStorage reports whether the selected strategy talks to the object
// store rather than the local filesystem.
func (c *Config) RemoteStorage() bool {
	return c.StorageStrategy != StrategyLocal
}
