// Package config loads visitsync settings from an optional YAML file and
// VISITSYNC_* environment variables. Environment values win over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kbvlyon/visitsync/internal/reconcile"
	"github.com/kbvlyon/visitsync/internal/sheets"
	"github.com/kbvlyon/visitsync/internal/store"
)

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
)

// Config holds the application configuration.
type Config struct {
	Store   string        `yaml:"store"`
	DB      DBConfig      `yaml:"db"`
	Backups BackupsConfig `yaml:"backups"`
	Import  ImportConfig  `yaml:"import"`
	Redis   RedisConfig   `yaml:"redis"`
	Sheets  SheetsConfig  `yaml:"sheets"`
	Log     LogConfig     `yaml:"log"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type BackupsConfig struct {
	Max int `yaml:"max"`
}

type ImportConfig struct {
	DefaultTime    string                         `yaml:"default_time"`
	CrossPartition reconcile.CrossPartitionPolicy `yaml:"cross_partition"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type SheetsConfig struct {
	BaseURL string       `yaml:"base_url"`
	SheetID string       `yaml:"sheet_id"`
	Tabs    []sheets.Tab `yaml:"tabs"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Store:   BackendSQLite,
		DB:      DBConfig{Path: "visitsync.db"},
		Backups: BackupsConfig{Max: store.DefaultMaxBackups},
		Import: ImportConfig{
			DefaultTime:    reconcile.DefaultVisitTime,
			CrossPartition: reconcile.KeepBoth,
		},
		Redis:  RedisConfig{Addr: "localhost:6379", Prefix: "visitsync:"},
		Sheets: SheetsConfig{BaseURL: sheets.DefaultBaseURL},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, then applies environment overrides.
// An empty path skips the file. Unknown YAML keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Store = getEnv("VISITSYNC_STORE", c.Store)
	c.DB.Path = getEnv("VISITSYNC_DB", c.DB.Path)
	c.Import.DefaultTime = getEnv("VISITSYNC_DEFAULT_TIME", c.Import.DefaultTime)
	c.Import.CrossPartition = reconcile.CrossPartitionPolicy(getEnv("VISITSYNC_CROSS_PARTITION", string(c.Import.CrossPartition)))
	c.Redis.Addr = getEnv("VISITSYNC_REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("VISITSYNC_REDIS_PASSWORD", c.Redis.Password)
	c.Redis.Prefix = getEnv("VISITSYNC_REDIS_PREFIX", c.Redis.Prefix)
	c.Sheets.SheetID = getEnv("VISITSYNC_SHEET_ID", c.Sheets.SheetID)
	c.Log.Level = getEnv("VISITSYNC_LOG_LEVEL", c.Log.Level)

	if v := os.Getenv("VISITSYNC_BACKUPS_MAX"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VISITSYNC_BACKUPS_MAX: %w", err)
		}
		c.Backups.Max = n
	}
	if v := os.Getenv("VISITSYNC_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VISITSYNC_REDIS_DB: %w", err)
		}
		c.Redis.DB = n
	}
	return nil
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string
	switch c.Store {
	case BackendSQLite, BackendRedis:
	default:
		problems = append(problems, fmt.Sprintf("store must be %q or %q, got %q", BackendSQLite, BackendRedis, c.Store))
	}
	if c.Store == BackendSQLite && c.DB.Path == "" {
		problems = append(problems, "db.path is required")
	}
	if c.Backups.Max < 1 {
		problems = append(problems, "backups.max must be at least 1")
	}
	if !reconcile.ValidCrossPartitionPolicies[c.Import.CrossPartition] {
		problems = append(problems, fmt.Sprintf("import.cross_partition %q is not supported", c.Import.CrossPartition))
	}
	for i, tab := range c.Sheets.Tabs {
		if tab.GID == "" {
			problems = append(problems, fmt.Sprintf("sheets.tabs[%d] has no gid", i))
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
