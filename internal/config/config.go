package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/creatorstation/tracker/internal/backup"
	"github.com/creatorstation/tracker/internal/notice"
)

// DefaultPath is read when no config file is given and it exists.
const DefaultPath = "tracker.yaml"

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Server  ServerConfig  `yaml:"server"`
	Backup  BackupConfig  `yaml:"backup"`
	Notices NoticeConfig  `yaml:"notices"`
	Logging LoggingConfig `yaml:"logging"`
}

type StorageConfig struct {
	URL string `yaml:"url"`
}

type ServerConfig struct {
	Port          string `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

type BackupConfig struct {
	Dir      string `yaml:"dir"`
	Schedule string `yaml:"schedule"`
}

type NoticeConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{URL: "sqlite://tracker.db"},
		Server:  ServerConfig{Port: "8080"},
		Backup:  BackupConfig{Schedule: backup.DefaultSchedule},
		Notices: NoticeConfig{TTL: notice.DefaultTTL},
	}
}

// Load builds the configuration from defaults, the YAML file at path, a .env
// file in the working directory and finally the process environment. An empty
// path reads DefaultPath if present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("TRACKER_STORAGE_URL"); v != "" {
		c.Storage.URL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ALLOWED_ORIGIN"); v != "" {
		c.Server.AllowedOrigin = v
	}
	if v := os.Getenv("TRACKER_BACKUP_DIR"); v != "" {
		c.Backup.Dir = v
	}
	if v := os.Getenv("TRACKER_BACKUP_SCHEDULE"); v != "" {
		c.Backup.Schedule = v
	}
	if v := os.Getenv("TRACKER_NOTICE_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRACKER_NOTICE_TTL: %w", err)
		}
		c.Notices.TTL = ttl
	}
	if v := os.Getenv("TRACKER_DEBUG"); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRACKER_DEBUG: %w", err)
		}
		c.Logging.Debug = debug
	}
	return nil
}
