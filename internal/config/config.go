package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/shiplabel-dev/shiplabel/internal/storage"
)

// FileName is the optional configuration file read from the working directory
const FileName = "shiplabel.yaml"

// DefaultAPIURL is used when no API URL is configured
const DefaultAPIURL = "http://localhost:3000"

// Config holds all configuration for the application
type Config struct {
	// APIURL is the root of the shipping-label API
	APIURL string `yaml:"api_url"`

	// Storage Configuration
	Storage StorageConfig `yaml:"storage"`

	// Logging Configuration
	Logging LoggingConfig `yaml:"log"`

	// HTTP client Configuration
	HTTP HTTPConfig `yaml:"http"`

	// Local shell Configuration
	Shell ShellConfig `yaml:"shell"`
}

// StorageConfig selects where session state is persisted
type StorageConfig struct {
	Backend string `yaml:"backend"` // file, sqlite, memory
	Path    string `yaml:"path"`    // directory; defaults to ~/.config/shiplabel
}

// LoggingConfig holds logging-related configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`  // empty selects the binary's default
	Format string `yaml:"format"` // json, console
}

// HTTPConfig holds API client settings
type HTTPConfig struct {
	Timeout time.Duration `yaml:"timeout"` // zero means no timeout
}

// ShellConfig holds the local HTTP shell settings
type ShellConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		APIURL: DefaultAPIURL,
		Storage: StorageConfig{
			Backend: storage.BackendFile,
		},
		Logging: LoggingConfig{
			Format: "console",
		},
		Shell: ShellConfig{
			Addr:           "127.0.0.1:8090",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
	}
}

// Load loads configuration from .env files, shiplabel.yaml and environment variables.
// Environment variables take precedence over the file.
func Load() (*Config, error) {
	// Load .env files (fails silently if files don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	return LoadFile(FileName)
}

// LoadFile loads configuration from the YAML file at path, then applies environment
// overrides. A missing file is not an error.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("SHIPLABEL_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := os.Getenv("SHIPLABEL_STORAGE_BACKEND"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("SHIPLABEL_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("SHIPLABEL_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SHIPLABEL_HTTP_TIMEOUT %q: %w", v, err)
		}
		cfg.HTTP.Timeout = d
	}
	if v := os.Getenv("SHIPLABEL_SHELL_ADDR"); v != "" {
		cfg.Shell.Addr = v
	}
	if v := os.Getenv("SHIPLABEL_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.Shell.AllowedOrigins = origins
	}
	return nil
}

// Validate checks values that would otherwise fail later with a less helpful error
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return errors.New("api_url must not be empty")
	}
	switch c.Storage.Backend {
	case storage.BackendFile, storage.BackendSQLite, storage.BackendMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.HTTP.Timeout < 0 {
		return errors.New("http.timeout must not be negative")
	}
	return nil
}
