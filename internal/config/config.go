// Package config loads the service configuration from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// Notifier backends.
const (
	LiveBus   = "bus"
	LiveRedis = "redis"
)

// Trace exporters.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Config is the full service configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Log       LogConfig       `yaml:"log"`
	Auth      AuthConfig      `yaml:"auth"`
	Live      LiveConfig      `yaml:"live"`
	Photos    PhotosConfig    `yaml:"photos"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	System    SystemConfig    `yaml:"system"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// LogConfig controls the optional log file. Sizes are in megabytes.
type LogConfig struct {
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
	Compress   bool   `yaml:"compress"`
}

type AuthConfig struct {
	TokenTTL time.Duration `yaml:"token_ttl"`
}

type LiveConfig struct {
	Backend  string `yaml:"backend"`
	RedisURL string `yaml:"redis_url"`
	Prefix   string `yaml:"prefix"`
}

type PhotosConfig struct {
	MaxDimension int `yaml:"max_dimension"`
	Quality      int `yaml:"quality"`
}

type TelemetryConfig struct {
	Exporter       string        `yaml:"exporter"`
	Endpoint       string        `yaml:"endpoint"`
	ServiceName    string        `yaml:"service_name"`
	// MetricInterval is how often metrics are pushed to the exporter.
	MetricInterval time.Duration `yaml:"metric_interval"`
}

type SystemConfig struct {
	// Location is the IANA time zone that decides when a day starts.
	Location string `yaml:"location"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{Path: "pantrypal.sqlite3"},
		Log: LogConfig{
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
		},
		Auth: AuthConfig{TokenTTL: 7 * 24 * time.Hour},
		Live: LiveConfig{
			Backend: LiveBus,
			Prefix:  "pantrypal",
		},
		Photos: PhotosConfig{
			MaxDimension: 512,
			Quality:      80,
		},
		Telemetry: TelemetryConfig{
			Exporter:       ExporterNone,
			ServiceName:    "pantrypal",
			MetricInterval: time.Minute,
		},
		System: SystemConfig{Location: "Local"},
	}
}

// Load reads the YAML file at path over the defaults. An empty path returns
// the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by the YAML decoder.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}
	if c.Database.Path == "" {
		return errors.New("database.path is required")
	}

	switch c.Live.Backend {
	case LiveBus:
	case LiveRedis:
		if c.Live.RedisURL == "" {
			return errors.New("live.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown live.backend %q", c.Live.Backend)
	}

	switch c.Telemetry.Exporter {
	case ExporterNone, ExporterStdout:
	case ExporterOTLP:
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry.endpoint is required for the otlp exporter")
		}
	default:
		return fmt.Errorf("unknown telemetry.exporter %q", c.Telemetry.Exporter)
	}

	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location returns the configured time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.System.Location)
	if err != nil {
		return nil, fmt.Errorf("system.location: %w", err)
	}
	return loc, nil
}
