// Package config provides YAML/environment configuration for the server.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure.
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	Query   QueryConfig   `yaml:"query"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int    `yaml:"port"`
	BindAddress  string `yaml:"bindAddress"`
	EnableCORS   bool   `yaml:"enableCors"`
	AllowOrigins string `yaml:"allowOrigins"`
	ReadTimeout  int    `yaml:"readTimeoutSeconds"`
	WriteTimeout int    `yaml:"writeTimeoutSeconds"`
	IdleTimeout  int    `yaml:"idleTimeoutSeconds"`
}

// StorageConfig contains R2 bucket access settings. Every field can be
// overridden by the matching R2_* environment variable.
type StorageConfig struct {
	AccountID       string `yaml:"accountId"`
	AccessKeyID     string `yaml:"accessKeyId"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	Bucket          string `yaml:"bucket"`
	EndpointURL     string `yaml:"endpointUrl"`
}

// Endpoint returns the configured endpoint URL, deriving the standard R2
// endpoint from the account ID when none is set explicitly.
func (s StorageConfig) Endpoint() string {
	if s.EndpointURL != "" {
		return s.EndpointURL
	}
	return fmt.Sprintf("https://%s.r2.cloudflarestorage.com", s.AccountID)
}

// QueryConfig contains query execution limits.
type QueryConfig struct {
	DefaultLimit     int `yaml:"defaultLimit"`     // entries returned per query unless overridden
	MaxFilesPerQuery int `yaml:"maxFilesPerQuery"` // files scanned by search/errors
	StatsFileLimit   int `yaml:"statsFileLimit"`   // files scanned by stats
	LatestFileCount  int `yaml:"latestFileCount"`  // files read by latest
	FetchConcurrency int `yaml:"fetchConcurrency"` // parallel object downloads
}

// LoggingConfig contains log output settings.
type LoggingConfig struct {
	Level          string `yaml:"level"`
	RequestLogging bool   `yaml:"requestLogging"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8080,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  30,
			WriteTimeout: 60,
			IdleTimeout:  120,
		},
		Query: QueryConfig{
			DefaultLimit:     50,
			MaxFilesPerQuery: 100,
			StatsFileLimit:   200,
			LatestFileCount:  5,
			FetchConcurrency: 4,
		},
		Logging: LoggingConfig{
			Level:          "info",
			RequestLogging: true,
		},
	}
}

// Load reads configuration from the given YAML file (if it exists) on top
// of the defaults, then applies environment overrides. A missing file is
// not an error; a malformed one is.
func Load(path string) (*AppConfig, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded configuration.
func (c *AppConfig) applyEnv() {
	setString(&c.Storage.AccountID, "R2_ACCOUNT_ID")
	setString(&c.Storage.AccessKeyID, "R2_ACCESS_KEY_ID")
	setString(&c.Storage.SecretAccessKey, "R2_SECRET_ACCESS_KEY")
	setString(&c.Storage.Bucket, "R2_BUCKET_NAME")
	setString(&c.Storage.EndpointURL, "R2_ENDPOINT_URL")
	setString(&c.Logging.Level, "LOG_LEVEL")
	setInt(&c.Server.Port, "PORT")
}

// GetServerAddr returns the address the HTTP server should listen on.
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// Validate checks that the settings required to reach the bucket are set.
func (c *AppConfig) Validate() error {
	if c.Storage.Bucket == "" {
		return fmt.Errorf("storage bucket is required (set storage.bucket or R2_BUCKET_NAME)")
	}
	if c.Storage.AccountID == "" && c.Storage.EndpointURL == "" {
		return fmt.Errorf("storage account ID or endpoint URL is required")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
