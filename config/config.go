// Package config loads the trimline-cli YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	Player   PlayerConfig   `yaml:"player"`
	Timeline TimelineConfig `yaml:"timeline"`
	Resolver ResolverConfig `yaml:"resolver"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Log      LogConfig      `yaml:"log"`
}

// PlayerConfig contains mpv settings
type PlayerConfig struct {
	SocketPath string `yaml:"socket_path"`
	Binary     string `yaml:"binary"`
}

// TimelineConfig contains trim timeline interaction settings
type TimelineConfig struct {
	MinGapCells         int     `yaml:"min_gap_cells"`
	PlaceholderDuration float64 `yaml:"placeholder_duration"`
	RestartEpsilon      float64 `yaml:"restart_epsilon"`
	NudgeStep           float64 `yaml:"nudge_step"`
}

// ResolverConfig contains duration discovery endpoints, tried in order.
// Each URL may contain {id}, replaced by the asset ID.
type ResolverConfig struct {
	LifecycleURL string        `yaml:"lifecycle_url"`
	MetadataURL  string        `yaml:"metadata_url"`
	InfoURL      string        `yaml:"info_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ServerConfig contains local HTTP service settings
type ServerConfig struct {
	Listen    string `yaml:"listen"`
	BaseURL   string `yaml:"base_url"`
	RateLimit int    `yaml:"rate_limit"`
	OutputDir string `yaml:"output_dir"`
}

// DatabaseConfig contains the sqlite location
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Player: PlayerConfig{
			SocketPath: "/tmp/trimline-mpv.sock",
			Binary:     "mpv",
		},
		Timeline: TimelineConfig{
			MinGapCells:         2,
			PlaceholderDuration: 60,
			RestartEpsilon:      0.1,
			NudgeStep:           0.1,
		},
		Resolver: ResolverConfig{
			InfoURL: "http://127.0.0.1:8787/api/assets/{id}/info",
			Timeout: 5 * time.Second,
		},
		Server: ServerConfig{
			Listen:    "127.0.0.1:8787",
			BaseURL:   "http://127.0.0.1:8787",
			RateLimit: 120,
			OutputDir: filepath.Join(dataDir(), "trims"),
		},
		Database: DatabaseConfig{
			Path: filepath.Join(dataDir(), "data.db"),
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dataDir(), "trimline.log"),
		},
	}
}

// DefaultPath returns ~/.config/trimline-cli/config.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "trimline-cli", "config.yaml"), nil
}

// Load reads the configuration from the specified YAML file on top of Default and
// applies TRIMLINE_* environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
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

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Timeline.MinGapCells < 0 {
		errs = append(errs, errors.New("timeline.min_gap_cells must be >= 0"))
	}
	if c.Timeline.PlaceholderDuration <= 0 {
		errs = append(errs, errors.New("timeline.placeholder_duration must be > 0"))
	}
	if c.Timeline.RestartEpsilon < 0 {
		errs = append(errs, errors.New("timeline.restart_epsilon must be >= 0"))
	}
	if c.Timeline.NudgeStep <= 0 {
		errs = append(errs, errors.New("timeline.nudge_step must be > 0"))
	}
	if c.Resolver.Timeout <= 0 {
		errs = append(errs, errors.New("resolver.timeout must be > 0"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must be >= 0"))
	}
	if c.Database.Path == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"TRIMLINE_MPV_SOCKET":    &c.Player.SocketPath,
		"TRIMLINE_MPV_BINARY":    &c.Player.Binary,
		"TRIMLINE_LIFECYCLE_URL": &c.Resolver.LifecycleURL,
		"TRIMLINE_METADATA_URL":  &c.Resolver.MetadataURL,
		"TRIMLINE_INFO_URL":      &c.Resolver.InfoURL,
		"TRIMLINE_LISTEN":        &c.Server.Listen,
		"TRIMLINE_BASE_URL":      &c.Server.BaseURL,
		"TRIMLINE_OUTPUT_DIR":    &c.Server.OutputDir,
		"TRIMLINE_DB":            &c.Database.Path,
		"TRIMLINE_LOG_LEVEL":     &c.Log.Level,
		"TRIMLINE_LOG_FILE":      &c.Log.File,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv("TRIMLINE_RESOLVER_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRIMLINE_RESOLVER_TIMEOUT: %w", err)
		}
		c.Resolver.Timeout = d
	}
	if v, ok := os.LookupEnv("TRIMLINE_RESTART_EPSILON"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("TRIMLINE_RESTART_EPSILON: %w", err)
		}
		c.Timeline.RestartEpsilon = f
	}
	return nil
}

func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "trimline-cli")
}
