package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the YAML configuration of the bake tools. Every field is
// optional; getters fall back to an environment variable and then to a
// default.
type Config struct {
	Assets  AssetsConfig  `yaml:"assets"`
	Bake    BakeConfig    `yaml:"bake"`
	Metrics MetricsConfig `yaml:"metrics"`
	World   WorldConfig   `yaml:"world"`
}

type AssetsConfig struct {
	Path   string        `yaml:"path"`
	Blocks []BlockConfig `yaml:"blocks"`
}

// BlockConfig names a block to register from the assets directory.
type BlockConfig struct {
	Name        string `yaml:"name"`
	Transparent bool   `yaml:"transparent"`
}

type BakeConfig struct {
	Workers        int `yaml:"workers"`
	QueueSize      int `yaml:"queue_size"`
	DeviceBudgetMB int `yaml:"device_budget_mb"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type WorldConfig struct {
	Seed   int64 `yaml:"seed"`
	Radius int   `yaml:"radius"`
}

// AssetsPath returns the assets directory: config, then BAKE_ASSETS, then "assets".
func (c *Config) AssetsPath() string {
	return stringWithEnvFallback(c.Assets.Path, "BAKE_ASSETS", "assets")
}

// Workers returns the bake worker count: config, then BAKE_WORKERS, then the CPU count.
func (c *Config) Workers() int {
	return intWithEnvFallback(c.Bake.Workers, "BAKE_WORKERS", runtime.NumCPU())
}

// QueueSize returns the bake queue capacity.
func (c *Config) QueueSize() int {
	return intWithEnvFallback(c.Bake.QueueSize, "BAKE_QUEUE_SIZE", 64)
}

// DeviceBudgetBytes caps GPU memory used for uploads; zero is unlimited.
func (c *Config) DeviceBudgetBytes() int {
	return intWithEnvFallback(c.Bake.DeviceBudgetMB, "BAKE_DEVICE_BUDGET_MB", 0) * 1024 * 1024
}

// MetricsAddr is the Prometheus listen address; empty disables the endpoint.
func (c *Config) MetricsAddr() string {
	return stringWithEnvFallback(c.Metrics.Addr, "BAKE_METRICS_ADDR", "")
}

// stringWithEnvFallback returns the value with priority config -> env -> default
func stringWithEnvFallback(value, envVar, def string) string {
	if value != "" {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		return envVal
	}
	return def
}

// intWithEnvFallback returns the value with priority config -> env -> default.
// Non-positive values count as unset.
func intWithEnvFallback(value int, envVar string, def int) int {
	if value > 0 {
		return value
	}
	if envVal := os.Getenv(envVar); envVal != "" {
		if n, err := strconv.Atoi(envVal); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// Load reads a YAML config file. With an empty path it reads BAKE_CONFIG; if
// that is unset too it returns an empty Config so every getter uses its
// fallback.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("BAKE_CONFIG")
		if path == "" {
			return &Config{}, nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
