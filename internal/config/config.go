package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/inkforge/docsync/internal/domain/backup"
	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Store  StoreConfig  `yaml:"store"`
	Backup BackupConfig `yaml:"backup"`
	Watch  WatchConfig  `yaml:"watch"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type StoreConfig struct {
	Root string `yaml:"root"`
}

type BackupConfig struct {
	MaxPerFile int    `yaml:"max_per_file"`
	MaxAge     string `yaml:"max_age"`
}

type WatchConfig struct {
	Enabled bool `yaml:"enabled"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Policy converts the backup settings into a retention policy.
func (b BackupConfig) Policy() (backup.Policy, error) {
	policy := backup.Policy{MaxPerFile: b.MaxPerFile}
	if b.MaxAge != "" {
		maxAge, err := time.ParseDuration(b.MaxAge)
		if err != nil {
			return backup.Policy{}, fmt.Errorf("invalid backup.max_age: %w", err)
		}
		policy.MaxAge = maxAge
	}
	return policy, nil
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "docsync.db",
		},
		Store: StoreConfig{
			Root: "data",
		},
		Backup: BackupConfig{
			MaxPerFile: 20,
		},
		Watch: WatchConfig{
			Enabled: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if path := os.Getenv("DOCSYNC_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("DOCSYNC_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("DOCSYNC_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DOCSYNC_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("DOCSYNC_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if root := os.Getenv("DOCSYNC_STORE_ROOT"); root != "" {
		cfg.Store.Root = root
	}
	if maxStr := os.Getenv("DOCSYNC_BACKUP_MAX_PER_FILE"); maxStr != "" {
		maxPerFile, err := strconv.Atoi(maxStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DOCSYNC_BACKUP_MAX_PER_FILE: %w", err)
		}
		cfg.Backup.MaxPerFile = maxPerFile
	}
	if maxAge := os.Getenv("DOCSYNC_BACKUP_MAX_AGE"); maxAge != "" {
		cfg.Backup.MaxAge = maxAge
	}
	if enabled := os.Getenv("DOCSYNC_WATCH_ENABLED"); enabled != "" {
		parsed, err := strconv.ParseBool(enabled)
		if err != nil {
			return Config{}, fmt.Errorf("invalid DOCSYNC_WATCH_ENABLED: %w", err)
		}
		cfg.Watch.Enabled = parsed
	}
	if level := os.Getenv("DOCSYNC_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("DOCSYNC_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
