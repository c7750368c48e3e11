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

package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlConfig = `
database:
  connection:
    type: postgres
    host: db.local
    port: 5432
    dbname: holidays
    slow_query_time: 500ms
  migrate:
    enable_migrate_on_startup: false
source:
  base_url: http://nager.local/api/v3
  max_retries: 4
sync:
  concurrency: 3
  fetch_timeout: 2s
  initial_from_year: 2022
log:
  level: debug
`

const tomlConfig = `
[database.connection]
type = "mysql"
host = "mysql.local"
charset = "utf8mb4"

[sync]
concurrency = 6
initial_to_year = 2026
`

func TestReadYAMLKeepsUnsetDefaults(t *testing.T) {
	cfg, err := Read(strings.NewReader(yamlConfig), FormatYAML)
	require.NoError(t, err)

	conn := cfg.Database.ConnectionConfig
	assert.Equal(t, "postgres", conn.Type)
	assert.Equal(t, "db.local", conn.Host)
	assert.Equal(t, 5432, conn.Port)
	assert.Equal(t, 500*time.Millisecond, conn.SlowQueryTime)
	assert.Equal(t, 10, conn.MaxIdleConns)
	assert.False(t, cfg.Database.DataMigrateConfig.EnableMigrateOnStartup)

	assert.Equal(t, "http://nager.local/api/v3", cfg.Source.BaseURL)
	assert.EqualValues(t, 4, cfg.Source.MaxRetries)
	assert.Equal(t, 10*time.Second, cfg.Source.RequestTimeout)

	assert.Equal(t, 3, cfg.Sync.Concurrency)
	assert.Equal(t, 2*time.Second, cfg.Sync.FetchTimeout)
	assert.Equal(t, 2022, cfg.Sync.InitialFromYear)
	assert.Equal(t, 2025, cfg.Sync.InitialToYear)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestReadTOML(t *testing.T) {
	cfg, err := Read(strings.NewReader(tomlConfig), FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.ConnectionConfig.Type)
	assert.Equal(t, "utf8mb4", cfg.Database.ConnectionConfig.Charset)
	assert.Equal(t, 6, cfg.Sync.Concurrency)
	assert.Equal(t, 2020, cfg.Sync.InitialFromYear)
	assert.Equal(t, 2026, cfg.Sync.InitialToYear)
}

func TestReadEmptyYAMLIsDefault(t *testing.T) {
	cfg, err := Read(strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWriteRoundTrip(t *testing.T) {
	for _, format := range []string{FormatYAML, FormatTOML} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Write(&buf, Default(), format))
			cfg, err := Read(&buf, format)
			require.NoError(t, err)
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "holidaykeeper.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlConfig), 0o600))

	t.Setenv("DB_HOST", "override.local")
	t.Setenv("HOLIDAY_SYNC_CONCURRENCY", "8")
	t.Setenv("HOLIDAY_SOURCE_URL", "http://mirror.local/api/v3")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "override.local", cfg.Database.ConnectionConfig.Host)
	assert.Equal(t, 8, cfg.Sync.Concurrency)
	assert.Equal(t, "http://mirror.local/api/v3", cfg.Source.BaseURL)

	opts := cfg.SyncOptions()
	assert.Equal(t, 8, opts.Concurrency)
	assert.Equal(t, 2*time.Second, opts.FetchTimeout)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[sync]\ninitial_from_year = 2030\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "initial_from_year")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFormatOf(t *testing.T) {
	assert.Equal(t, FormatTOML, FormatOf("conf/app.TOML"))
	assert.Equal(t, FormatYAML, FormatOf("conf/app.yml"))
	assert.Equal(t, FormatYAML, FormatOf("conf/app"))
}
