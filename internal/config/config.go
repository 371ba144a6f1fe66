package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v2"
)

// DatabaseConfig holds the database connection information.
type DatabaseConfig struct {
	Type string `yaml:"type"`
	DSN  string `yaml:"dsn"`
}

// GeminiConfig holds the upstream model configuration.
type GeminiConfig struct {
	// APIKeys is the pool of provider keys. Attempts rotate across them so
	// a single bad key cannot consume every retry.
	APIKeys []string `yaml:"api_keys"`
	Model   string   `yaml:"model"`
}

// ExtractionConfig bounds the extraction pipeline.
type ExtractionConfig struct {
	// MaxPayloadBytes caps the base64-encoded document size.
	MaxPayloadBytes int `yaml:"max_payload_bytes"`
	// RequestTimeout bounds the model call including all retries, as a Go
	// duration string ("90s", "2m").
	RequestTimeout string `yaml:"request_timeout"`
	// Timeout is the parsed form of RequestTimeout.
	Timeout time.Duration `yaml:"-"`
}

// AdminConfig holds configuration for the admin endpoints.
type AdminConfig struct {
	Password string `yaml:"password"`
}

// Config holds the configuration for the gateway.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Admin      AdminConfig      `yaml:"admin"`
	Port       int              `yaml:"port"`
	Debug      bool             `yaml:"debug"`
}

// LoadConfig reads and parses the configuration file. It returns the config
// and a potential warning message. A missing file is not an error; the
// config is then built from defaults and environment variables.
var LoadConfig = func(path string) (*Config, string, error) {
	var config Config
	var warning string

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, "", fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, "", fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment overrides win over file values.
	if dsn := os.Getenv("DOCGATE_DATABASE_DSN"); dsn != "" {
		config.Database.DSN = dsn
	}
	if dbType := os.Getenv("DOCGATE_DATABASE_TYPE"); dbType != "" {
		config.Database.Type = dbType
	}
	if key := os.Getenv("DOCGATE_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKeys = append(config.Gemini.APIKeys, key)
	}
	if port := os.Getenv("DOCGATE_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Port = p
		}
	}
	if password := os.Getenv("DOCGATE_ADMIN_PASSWORD"); password != "" {
		config.Admin.Password = password
	}
	if debug := os.Getenv("DOCGATE_DEBUG"); debug != "" {
		config.Debug = (debug == "true")
	}

	// Defaults
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Gemini.Model == "" {
		config.Gemini.Model = "gemini-2.5-flash-lite"
	}
	if config.Extraction.MaxPayloadBytes == 0 {
		config.Extraction.MaxPayloadBytes = 14_000_000
	}
	if config.Extraction.RequestTimeout != "" {
		timeout, err := time.ParseDuration(config.Extraction.RequestTimeout)
		if err != nil {
			return nil, "", fmt.Errorf("invalid extraction.request_timeout: %w", err)
		}
		config.Extraction.Timeout = timeout
	} else {
		config.Extraction.Timeout = 2 * time.Minute
		warning = "extraction.request_timeout not set, using default of 2m"
	}

	// Final validation after overrides
	if config.Database.Type == "" || config.Database.DSN == "" {
		return nil, "", fmt.Errorf("database type and dsn must be configured in config.yaml or via environment variables")
	}
	if len(config.Gemini.APIKeys) == 0 {
		return nil, "", fmt.Errorf("at least one gemini api key must be configured in config.yaml or via DOCGATE_GEMINI_API_KEY")
	}

	return &config, warning, nil
}
