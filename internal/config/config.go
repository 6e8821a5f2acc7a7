package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kdimtricp/videocatalog/internal/database"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the service.
type Config struct {
	Env            string          `yaml:"env"`
	Server         ServerConfig    `yaml:"server"`
	Database       database.Config `yaml:"database"`
	Log            LogConfig       `yaml:"log"`
	MigrationsPath string          `yaml:"migrations_path"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		Env: "development",
		Server: ServerConfig{
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: database.Config{
			Type:       database.TypeSQLite,
			Host:       "localhost",
			Port:       5432,
			User:       "videocatalog",
			Password:   "videocatalog_dev",
			Name:       "videocatalog",
			SQLitePath: "./videocatalog.db",
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration with the following priority:
// environment variables (including .env files) > YAML file > defaults.
// An empty path falls back to CONFIG_PATH; with neither set no file is read.
func Load(path string) (*Config, error) {
	loadEnvFiles(path)

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
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

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server port %q", c.Server.Port)
	}

	switch c.Database.Type {
	case database.TypeSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("sqlite path is required")
		}
	case database.TypePostgres:
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			return fmt.Errorf("invalid database port %d", c.Database.Port)
		}
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("postgres host and database name are required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	return nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Env, "APP_ENV")
	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.MigrationsPath, "MIGRATIONS_PATH")

	setString(&cfg.Database.Type, "DB_TYPE")
	setString(&cfg.Database.Host, "DB_HOST")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.SQLitePath, "DB_PATH")

	if v := os.Getenv("DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid DB_PORT: %w", err)
		}
		cfg.Database.Port = port
	}

	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.Server.ShutdownTimeout = d
	}

	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// loadEnvFiles best-effort loads .env.local and .env from the config file's directory and the
// working directory. Variables already set in the environment win.
func loadEnvFiles(path string) {
	var dirs []string
	if path != "" {
		dirs = append(dirs, filepath.Dir(path))
	}
	dirs = append(dirs, ".")

	seen := make(map[string]bool)
	var files []string
	for _, dir := range dirs {
		for _, name := range []string{".env.local", ".env"} {
			candidate, err := filepath.Abs(filepath.Join(dir, name))
			if err != nil || seen[candidate] {
				continue
			}
			seen[candidate] = true
			if _, err := os.Stat(candidate); err == nil {
				files = append(files, candidate)
			}
		}
	}

	if len(files) > 0 {
		_ = godotenv.Load(files...)
	}
}
