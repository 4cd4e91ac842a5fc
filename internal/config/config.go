// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads flows-aws configuration from a YAML file with
// environment variable overrides.
//
// Precedence, lowest first: built-in defaults, the config file, environment
// variables. The app section holds the AWS execution context and is re-read
// on every invocation through AppSource; everything else is read once at
// startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/spacelift-io/flows-app-aws-api/internal/log"
	"github.com/spacelift-io/flows-app-aws-api/internal/secrets"
	"github.com/spacelift-io/flows-app-aws-api/internal/tracing"
)

// Config is the complete flows-aws configuration.
type Config struct {
	Log     LogConfig      `yaml:"log"`
	Server  ServerConfig   `yaml:"server"`
	Metrics MetricsConfig  `yaml:"metrics"`
	Tracing tracing.Config `yaml:"tracing"`
	Catalog CatalogConfig  `yaml:"catalog"`
	Secrets SecretsConfig  `yaml:"secrets"`

	// App is the application-level AWS configuration. Values may be secret
	// references.
	App AppConfig `yaml:"app"`

	// path is the file the configuration was loaded from, if any.
	path string
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is trace, debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is json or text.
	Format string `yaml:"format"`

	AddSource bool `yaml:"add_source"`
}

// ServerConfig configures the HTTP host.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// MetricsConfig configures the Prometheus endpoint of the HTTP host.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// CatalogConfig selects which blocks are exposed.
type CatalogConfig struct {
	// Include holds glob patterns matched against block IDs
	// (e.g. "cloudwatch.*", "ec2.Describe*"). Empty exposes every block.
	Include []string `yaml:"include"`
}

// SecretsConfig configures secret reference resolution.
type SecretsConfig struct {
	KeychainService string             `yaml:"keychain_service"`
	File            secrets.FileConfig `yaml:"file"`
}

// AppConfig is the application-level AWS configuration.
type AppConfig struct {
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	SessionToken    string `yaml:"session_token,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: string(log.FormatJSON),
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: tracing.DefaultConfig(),
		Secrets: SecretsConfig{
			KeychainService: AppName,
		},
	}
}

// Load reads configuration from configPath, applies environment overrides
// and validates the result. An empty configPath uses the default path when
// that file exists and defaults otherwise.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	path, err := resolvePath(configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := cfg.loadFromFile(path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		cfg.path = path
	}

	cfg.applyDefaults()
	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// resolvePath picks the file to read. An explicit path must exist; the
// default path is optional.
func resolvePath(configPath string) (string, error) {
	if configPath != "" {
		return expandHome(configPath)
	}
	if env := os.Getenv("FLOWS_CONFIG"); env != "" {
		return expandHome(env)
	}
	def, err := ConfigPath()
	if err != nil {
		return "", nil
	}
	if _, err := os.Stat(def); err != nil {
		return "", nil
	}
	return def, nil
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// applyDefaults fills in zero values so minimal files work.
func (c *Config) applyDefaults() {
	defaults := Default()

	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Server.Addr == "" {
		c.Server.Addr = defaults.Server.Addr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = defaults.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = defaults.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = defaults.Server.ShutdownTimeout
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = defaults.Metrics.Path
	}
	if c.Tracing.Exporter == "" {
		c.Tracing.Exporter = defaults.Tracing.Exporter
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = defaults.Tracing.ServiceName
	}
	if c.Secrets.KeychainService == "" {
		c.Secrets.KeychainService = defaults.Secrets.KeychainService
	}
}

// loadFromEnv applies environment variable overrides.
func (c *Config) loadFromEnv() {
	logCfg := c.LogConfig()
	log.ApplyEnv(logCfg)
	c.Log.Level = logCfg.Level
	c.Log.Format = string(logCfg.Format)
	c.Log.AddSource = logCfg.AddSource

	if val := os.Getenv("FLOWS_SERVER_ADDR"); val != "" {
		c.Server.Addr = val
	}
	if val := os.Getenv("FLOWS_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			c.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("FLOWS_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("FLOWS_TRACING_EXPORTER"); val != "" {
		c.Tracing.Exporter = strings.ToLower(val)
	}
	if val := os.Getenv("FLOWS_TRACING_ENDPOINT"); val != "" {
		c.Tracing.Endpoint = val
	}
	if val := os.Getenv("FLOWS_TRACING_INSECURE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Tracing.Insecure = b
		}
	}
	if val := os.Getenv("FLOWS_CATALOG_INCLUDE"); val != "" {
		c.Catalog.Include = splitList(val)
	}

	c.App = c.App.withEnv()
}

// withEnv overlays the FLOWS_AWS_* variables.
func (a AppConfig) withEnv() AppConfig {
	if val := os.Getenv("FLOWS_AWS_ACCESS_KEY_ID"); val != "" {
		a.AccessKeyID = val
	}
	if val := os.Getenv("FLOWS_AWS_SECRET_ACCESS_KEY"); val != "" {
		a.SecretAccessKey = val
	}
	if val := os.Getenv("FLOWS_AWS_SESSION_TOKEN"); val != "" {
		a.SessionToken = val
	}
	if val := os.Getenv("FLOWS_AWS_ENDPOINT"); val != "" {
		a.Endpoint = val
	}
	return a
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate checks the configuration. The app section is checked per
// invocation instead, since it may change while the process runs.
func (c *Config) Validate() error {
	var errs []error

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Errorf("log.level must be one of [trace, debug, info, warn, error], got %q", c.Log.Level))
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Log.Format] {
		errs = append(errs, fmt.Errorf("log.format must be one of [json, text], got %q", c.Log.Format))
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must be positive, got %v", c.Server.ShutdownTimeout))
	}
	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path))
	}
	if err := c.Tracing.Validate(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// LogConfig converts the log section for log.New.
func (c *Config) LogConfig() *log.Config {
	return &log.Config{
		Level:     c.Log.Level,
		Format:    log.Format(c.Log.Format),
		AddSource: c.Log.AddSource,
	}
}

// SecretRegistry builds the secret registry described by the secrets section.
func (c *Config) SecretRegistry() *secrets.Registry {
	return secrets.NewDefaultRegistry(secrets.Options{
		KeychainService: c.Secrets.KeychainService,
		File:            c.Secrets.File,
	})
}
