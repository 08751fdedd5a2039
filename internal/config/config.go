// Package config loads the server's HCL configuration file.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// Config is the top-level server configuration.
type Config struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string `hcl:"addr,optional"`

	// LogLevel is the hclog level name (trace, debug, info, warn, error).
	LogLevel string `hcl:"log_level,optional"`

	Postgres *Postgres `hcl:"postgres,block"`
}

// Postgres configures the database connection.
type Postgres struct {
	Host     string `hcl:"host"`
	Port     int    `hcl:"port,optional"`
	User     string `hcl:"user"`
	Password string `hcl:"password,optional"`
	DBName   string `hcl:"dbname"`
	SSLMode  string `hcl:"sslmode,optional"`
}

// NewConfig parses a configuration file and applies defaults.
func NewConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration file path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	var cfg Config
	if err := hclsimple.DecodeFile(path, nil, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if cfg.Addr == "" {
		cfg.Addr = ":8000"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Postgres == nil {
		return nil, fmt.Errorf("configuration requires a postgres block")
	}
	if cfg.Postgres.Port == 0 {
		cfg.Postgres.Port = 5432
	}
	if cfg.Postgres.SSLMode == "" {
		cfg.Postgres.SSLMode = "disable"
	}

	return &cfg, nil
}
