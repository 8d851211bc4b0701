// Package config loads the popis configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// BackupConfig points the backup command at an S3-compatible bucket. The
// secret key is kept in the OS keyring, never in the file.
type BackupConfig struct {
	Bucket       string `mapstructure:"bucket" yaml:"bucket"`
	Region       string `mapstructure:"region" yaml:"region"`
	Endpoint     string `mapstructure:"endpoint" yaml:"endpoint"`
	Prefix       string `mapstructure:"prefix" yaml:"prefix"`
	AccessKey    string `mapstructure:"access_key" yaml:"access_key"`
	UsePathStyle bool   `mapstructure:"use_path_style" yaml:"use_path_style"`
}

// Config is the top-level configuration.
type Config struct {
	DBPath    string       `mapstructure:"db_path" yaml:"db_path"`
	PhotosDir string       `mapstructure:"photos_dir" yaml:"photos_dir"`
	Addr      string       `mapstructure:"addr" yaml:"addr"`
	LogFile   string       `mapstructure:"log_file" yaml:"log_file"`
	Backup    BackupConfig `mapstructure:"backup" yaml:"backup"`
}

// DefaultPath returns ~/.config/popis/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "popis", "config.yaml")
}

// dataDir returns ~/.local/share/popis, or the working directory when the
// home directory is unknown.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "popis")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	dir := dataDir()
	return &Config{
		DBPath:    filepath.Join(dir, "popis.sqlite3"),
		PhotosDir: filepath.Join(dir, "photos"),
		Addr:      "127.0.0.1:8080",
		Backup: BackupConfig{
			Region: "us-east-1",
			Prefix: "popis",
		},
	}
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// POPIS_DB_PATH, POPIS_BACKUP_BUCKET and so on override the file.
	v.SetEnvPrefix("popis")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("photos_dir", d.PhotosDir)
	v.SetDefault("addr", d.Addr)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("backup.bucket", d.Backup.Bucket)
	v.SetDefault("backup.region", d.Backup.Region)
	v.SetDefault("backup.endpoint", d.Backup.Endpoint)
	v.SetDefault("backup.prefix", d.Backup.Prefix)
	v.SetDefault("backup.access_key", d.Backup.AccessKey)
	v.SetDefault("backup.use_path_style", d.Backup.UsePathStyle)
	return v
}

// Load reads the YAML file at path. A missing file yields the defaults,
// still subject to environment overrides.
func Load(path string) (*Config, error) {
	v := newViper(path)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to a YAML file at path, creating parent directories.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("db_path", cfg.DBPath)
	v.Set("photos_dir", cfg.PhotosDir)
	v.Set("addr", cfg.Addr)
	v.Set("log_file", cfg.LogFile)
	v.Set("backup", map[string]any{
		"bucket":         cfg.Backup.Bucket,
		"region":         cfg.Backup.Region,
		"endpoint":       cfg.Backup.Endpoint,
		"prefix":         cfg.Backup.Prefix,
		"access_key":     cfg.Backup.AccessKey,
		"use_path_style": cfg.Backup.UsePathStyle,
	})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
