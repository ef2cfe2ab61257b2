// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 LumaChat Contributors

// Package config loads server configuration from defaults, an optional
// YAML file, and command-line flags, in increasing order of precedence.
package config

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/lumachat/lumachat/internal/identity"
)

// Store backend names accepted by Config.Store.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config holds all server settings.
type Config struct {
	// Addr is the listen address for the API server.
	Addr string `koanf:"addr"`
	// MetricsAddr is the listen address for the observability server.
	MetricsAddr string `koanf:"metrics_addr"`
	// Store selects the storage backend: "memory" or "postgres".
	Store string `koanf:"store"`
	// DatabaseURL is the PostgreSQL connection string. Required when
	// Store is "postgres".
	DatabaseURL string `koanf:"database_url"`
	// LogFormat selects log output: "text" or "json".
	LogFormat string `koanf:"log_format"`
	// LogLevel sets the minimum log level: "debug", "info", "warn", "error".
	LogLevel string `koanf:"log_level"`
	// MessageCap is the maximum number of messages retained per user.
	MessageCap int `koanf:"message_cap"`
	// KDFIterations is the PBKDF2 iteration count for new password hashes.
	KDFIterations int `koanf:"kdf_iterations"`
}

// Default returns a Config populated with default values.
func Default() Config {
	return Config{
		Addr:          "127.0.0.1:8080",
		MetricsAddr:   "127.0.0.1:9100",
		Store:         StoreMemory,
		LogFormat:     "text",
		LogLevel:      "info",
		MessageCap:    100,
		KDFIterations: identity.DefaultKDFIterations,
	}
}

// Load builds a Config from defaults, then the YAML file at path (if path
// is non-empty and the file exists), then any flags changed on flags.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	k := koanf.New(".")

	cfg := Default()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return Config{}, oops.
					Code("CONFIG_LOAD_FAILED").
					With("path", path).
					Wrapf(err, "loading config file")
			}
		} else if !os.IsNotExist(err) {
			return Config{}, oops.With("path", path).Wrap(err)
		}
	}

	if flags != nil {
		// Passing k makes posflag skip flags left at their default, so
		// file values are only overridden by flags set explicitly.
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return Config{}, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "loading flags")
		}
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, oops.Code("CONFIG_LOAD_FAILED").Wrapf(err, "unmarshaling config")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	errb := oops.Code("CONFIG_INVALID")

	if c.Addr == "" {
		return errb.Errorf("addr must not be empty")
	}
	if c.MetricsAddr == "" {
		return errb.Errorf("metrics_addr must not be empty")
	}

	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errb.Errorf("database_url is required when store is %q", StorePostgres)
		}
	default:
		return errb.With("store", c.Store).Errorf("store must be %q or %q", StoreMemory, StorePostgres)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return errb.With("log_format", c.LogFormat).Errorf("log_format must be \"text\" or \"json\"")
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return errb.With("log_level", c.LogLevel).Errorf("log_level must be one of debug, info, warn, error")
	}

	if c.MessageCap <= 0 {
		return errb.With("message_cap", c.MessageCap).Errorf("message_cap must be positive")
	}
	if c.KDFIterations < identity.MinKDFIterations {
		return errb.With("kdf_iterations", c.KDFIterations).
			Errorf("kdf_iterations must be at least %d", identity.MinKDFIterations)
	}

	return nil
}
