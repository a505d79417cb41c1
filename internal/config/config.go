package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config holds the server settings.
type Config struct {
	Port         string `yaml:"port"`
	DBDriver     string `yaml:"db_driver"`
	DBPath       string `yaml:"db_path"`
	DatabaseURL  string `yaml:"database_url"`
	CORSOrigin   string `yaml:"cors_origin"`
	JWTKey       string `yaml:"jwt_key"`
	SeedDemo     bool   `yaml:"seed_demo"`
	WSSendBuffer int    `yaml:"ws_send_buffer"`
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		Port:         "3000",
		DBDriver:     DriverSQLite,
		DBPath:       "./data/tasker.db",
		CORSOrigin:   "*",
		WSSendBuffer: 64,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// CONFIG_FILE, then the environment. A .env file in the working directory is
// loaded into the environment first; existing variables win.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Port = getEnv("PORT", c.Port)
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBPath = getEnv("DB_PATH", c.DBPath)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.CORSOrigin = getEnv("CORS_ORIGIN", c.CORSOrigin)
	c.JWTKey = getEnv("JWT_KEY", c.JWTKey)

	if v := os.Getenv("SEED_DEMO"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SEED_DEMO %q: %w", v, err)
		}
		c.SeedDemo = seed
	}

	if v := os.Getenv("WS_SEND_BUFFER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WS_SEND_BUFFER %q: %w", v, err)
		}
		c.WSSendBuffer = n
	}

	return nil
}

// Validate checks that the configuration can start a server.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			return errors.New("db_path is required for sqlite3")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required for postgres")
		}
	default:
		return fmt.Errorf("db_driver must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver)
	}

	if c.WSSendBuffer <= 0 {
		return errors.New("ws_send_buffer must be positive")
	}

	return nil
}

// AuthEnabled reports whether bearer tokens are required.
func (c *Config) AuthEnabled() bool {
	return c.JWTKey != ""
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
