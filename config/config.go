/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config loads holidaykeeper settings from YAML or TOML files and
// the environment.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/tomoncle/holidaykeeper/database"
	"github.com/tomoncle/holidaykeeper/source/nager"
	"github.com/tomoncle/holidaykeeper/syncer"
	"github.com/tomoncle/holidaykeeper/utils"
)

const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Config is the root configuration.
type Config struct {
	Database database.Config `yaml:"database" toml:"database"`
	Source   nager.Config    `yaml:"source" toml:"source"`
	Sync     SyncConfig      `yaml:"sync" toml:"sync"`
	Log      LogConfig       `yaml:"log" toml:"log"`
}

// SyncConfig holds the orchestrator ceiling and the initial load range.
type SyncConfig struct {
	Concurrency     int           `yaml:"concurrency" toml:"concurrency"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout" toml:"fetch_timeout"`
	InitialFromYear int           `yaml:"initial_from_year" toml:"initial_from_year"`
	InitialToYear   int           `yaml:"initial_to_year" toml:"initial_to_year"`
}

type LogConfig struct {
	Level          string `yaml:"level" toml:"level"`
	Format         string `yaml:"format" toml:"format"` // text or json
	FileDir        string `yaml:"file_dir" toml:"file_dir"`
	FileMaxAgeDays int    `yaml:"file_max_age_days" toml:"file_max_age_days"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: *database.DefaultConfig(),
		Source:   nager.DefaultConfig(),
		Sync: SyncConfig{
			Concurrency:     syncer.DefaultConcurrency,
			FetchTimeout:    syncer.DefaultFetchTimeout,
			InitialFromYear: 2020,
			InitialToYear:   2025,
		},
		Log: LogConfig{
			Level:          "info",
			Format:         "text",
			FileMaxAgeDays: 7,
		},
	}
}

// FormatOf picks the decoder for path by its extension. Anything that is not
// .toml is read as YAML.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Read decodes r on top of the defaults.
func Read(r io.Reader, format string) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to decode toml config: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to decode yaml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return cfg, nil
}

// Write encodes cfg in the given format.
func Write(w io.Writer, cfg *Config, format string) error {
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(w).Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode toml config: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode yaml config: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported config format %q", format)
	}
	return nil
}

// Load reads the file at path, or the defaults when path is empty, and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		if cfg, err = Read(f, FormatOf(path)); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from DB_*, HOLIDAY_* and log variables.
func (c *Config) ApplyEnv() {
	database.OverrideFromEnv(&c.Database.ConnectionConfig)
	c.Database.DataMigrateConfig.EnableMigrateOnStartup = utils.EnvDefaultBool("DB_MIGRATE_ON_STARTUP", c.Database.DataMigrateConfig.EnableMigrateOnStartup)

	c.Source.BaseURL = utils.EnvDefaultString("HOLIDAY_SOURCE_URL", c.Source.BaseURL)
	c.Source.RequestTimeout = utils.EnvDefaultDuration("HOLIDAY_SOURCE_TIMEOUT", c.Source.RequestTimeout)
	c.Source.MaxRetries = uint64(utils.EnvDefaultInt("HOLIDAY_SOURCE_RETRIES", int(c.Source.MaxRetries)))

	c.Sync.Concurrency = utils.EnvDefaultInt("HOLIDAY_SYNC_CONCURRENCY", c.Sync.Concurrency)
	c.Sync.FetchTimeout = utils.EnvDefaultDuration("HOLIDAY_SYNC_FETCH_TIMEOUT", c.Sync.FetchTimeout)
	c.Sync.InitialFromYear = utils.EnvDefaultInt("HOLIDAY_INITIAL_FROM_YEAR", c.Sync.InitialFromYear)
	c.Sync.InitialToYear = utils.EnvDefaultInt("HOLIDAY_INITIAL_TO_YEAR", c.Sync.InitialToYear)

	c.Log.Level = utils.EnvDefaultString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = utils.EnvDefaultString("CONSOLE_LOG_FORMAT", c.Log.Format)
	c.Log.FileDir = utils.EnvDefaultString("FILE_LOG_DIR", c.Log.FileDir)
}

func (c *Config) Validate() error {
	if c.Sync.Concurrency <= 0 {
		return fmt.Errorf("sync.concurrency must be positive, got %d", c.Sync.Concurrency)
	}
	if c.Sync.FetchTimeout <= 0 {
		return fmt.Errorf("sync.fetch_timeout must be positive, got %s", c.Sync.FetchTimeout)
	}
	if c.Sync.InitialFromYear > c.Sync.InitialToYear {
		return fmt.Errorf("sync.initial_from_year %d is after initial_to_year %d", c.Sync.InitialFromYear, c.Sync.InitialToYear)
	}
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	return nil
}

// SyncOptions converts the sync section for the orchestrator.
func (c *Config) SyncOptions() syncer.Options {
	return syncer.Options{
		Concurrency:  c.Sync.Concurrency,
		FetchTimeout: c.Sync.FetchTimeout,
	}
}

// ApplyLogging configures the process-wide loggers.
func (c *Config) ApplyLogging() {
	utils.ConfigureLogLevel(c.Log.Level)
	utils.ConfigureConsoleLogFormat(c.Log.Format)
	if c.Log.FileDir != "" {
		utils.ConfigureFileLog(c.Log.FileDir, c.Log.FileMaxAgeDays)
	}
}
