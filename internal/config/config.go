package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Home      string          `yaml:"home"`
	Sync      SyncConfig      `yaml:"sync"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type SyncConfig struct {
	Command        string `yaml:"command"`
	TimeoutMinutes int    `yaml:"timeout_minutes"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// Timeout returns the wall-clock budget for one sync run.
func (s SyncConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMinutes) * time.Minute
}

// Default returns the configuration used when no file or overrides are present.
// Home is left empty, meaning the current user's home directory.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 8080},
		Sync:   SyncConfig{Command: "garmindb_cli.py", TimeoutMinutes: 60},
		Tailscale: TailscaleConfig{
			Hostname: "garmindash",
		},
	}
}

// Load reads config from a YAML file over the defaults, then applies
// environment variable overrides. Env vars use the prefix GARMINDASH_ and
// underscore-separated paths:
//
//	GARMINDASH_SERVER_HOST, GARMINDASH_SERVER_PORT, GARMINDASH_HOME,
//	GARMINDASH_SYNC_COMMAND, GARMINDASH_SYNC_TIMEOUT_MINUTES,
//	GARMINDASH_TS_ENABLED, GARMINDASH_TS_HOSTNAME, GARMINDASH_TS_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault behaves like Load, except that a missing file is not an
// error: the defaults (plus env overrides) are used instead. This is what
// the binaries call for the implicit ./config.yaml path.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		applyEnvOverrides(cfg)
		if err := cfg.validate(); err != nil {
			return nil, fmt.Errorf("config validation: %w", err)
		}
		return cfg, nil
	}
	return Load(path)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("GARMINDASH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("GARMINDASH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("GARMINDASH_HOME"); v != "" {
		cfg.Home = v
	}
	if v := os.Getenv("GARMINDASH_SYNC_COMMAND"); v != "" {
		cfg.Sync.Command = v
	}
	if v := os.Getenv("GARMINDASH_SYNC_TIMEOUT_MINUTES"); v != "" {
		if mins, err := strconv.Atoi(v); err == nil {
			cfg.Sync.TimeoutMinutes = mins
		}
	}
	if v := os.Getenv("GARMINDASH_TS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("GARMINDASH_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("GARMINDASH_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Sync.Command == "" {
		return fmt.Errorf("sync.command is required")
	}
	if c.Sync.TimeoutMinutes <= 0 {
		return fmt.Errorf("sync.timeout_minutes must be positive")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required when tailscale is enabled")
	}
	return nil
}
