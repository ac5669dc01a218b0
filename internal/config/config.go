package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/pgbulk/pkg/pgbulk"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the project configuration file looked up in the working directory.
const ConfigFileName = "pgbulk.yaml"

// ConnectionConfig holds connection defaults. Flags and PG* environment
// variables take precedence over these values.
type ConnectionConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Database       string `yaml:"database"`
	SSLMode        string `yaml:"sslmode"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
}

// LoadDefaults holds defaults for `pgbulk load`.
type LoadDefaults struct {
	Model  string `yaml:"model"`
	Schema string `yaml:"schema"`
}

// ProjectConfig is the content of pgbulk.yaml.
//
//	connection:
//	  host: localhost
//	  database: app
//	load:
//	  model: model.yaml
//	  schema: sales
//	timeout: 10m
type ProjectConfig struct {
	Connection ConnectionConfig `yaml:"connection"`
	Load       LoadDefaults     `yaml:"load"`
	Timeout    string           `yaml:"timeout"`
}

// Load reads ConfigFileName from dir. Relative paths in the file are
// resolved against dir.
func Load(dir string) (*ProjectConfig, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %v: %w", configPath, err, pgbulk.ErrInvalidConfig)
	}
	if cfg.Load.Model != "" && !filepath.IsAbs(cfg.Load.Model) {
		cfg.Load.Model = filepath.Join(dir, cfg.Load.Model)
	}
	return &cfg, nil
}

// TimeoutOrDefault parses Timeout, returning def when it is empty.
func (c *ProjectConfig) TimeoutOrDefault(def time.Duration) (time.Duration, error) {
	if c == nil || c.Timeout == "" {
		return def, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in %s: %w", c.Timeout, ConfigFileName, pgbulk.ErrInvalidConfig)
	}
	return d, nil
}
