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

package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/holidaykeeper/utils"
)

// driverAliases maps accepted database.type values to the canonical name.
var driverAliases = map[string]string{
	"mysql":      "mysql",
	"postgres":   "postgres",
	"postgresql": "postgres",
	"pg":         "postgres",
	"sqlite":     "sqlite",
	"sqlite3":    "sqlite",
}

// NormalizeType returns the canonical driver name for typ, or false when
// the store cannot run on it.
func NormalizeType(typ string) (string, bool) {
	canonical, ok := driverAliases[strings.ToLower(strings.TrimSpace(typ))]
	return canonical, ok
}

// BaseDatabaseFactory owns one manager for the lifetime of a process.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{logger: GetLogger()}
}

// CreateFromConfig applies DB_* overrides to cfg, canonicalizes its type and
// builds the manager.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *ConnectionConfig) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	OverrideFromEnv(cfg)

	canonical, ok := NormalizeType(cfg.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported database type %q (use mysql, postgres or sqlite)", cfg.Type)
	}
	cfg.Type = canonical

	f.manager = NewDatabaseManager(cfg)
	f.manager.SetLogger(f.logger)
	return f.manager, nil
}

// OverrideFromEnv applies DB_* variables to cfg. Durations accept Go
// syntax ("90s") or a bare number of seconds.
func OverrideFromEnv(cfg *ConnectionConfig) {
	cfg.Type = utils.EnvDefaultString("DB_TYPE", cfg.Type)
	cfg.Host = utils.EnvDefaultString("DB_HOST", cfg.Host)
	cfg.Port = utils.EnvDefaultInt("DB_PORT", cfg.Port)
	cfg.Username = utils.EnvDefaultString("DB_USERNAME", cfg.Username)
	cfg.Password = utils.EnvDefaultString("DB_PASSWORD", cfg.Password)
	cfg.DBName = utils.EnvDefaultString("DB_NAME", cfg.DBName)
	cfg.SSLMode = utils.EnvDefaultString("DB_SSLMODE", cfg.SSLMode)
	cfg.Charset = utils.EnvDefaultString("DB_CHARSET", cfg.Charset)

	cfg.MaxIdleConns = utils.EnvDefaultInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns)
	cfg.MaxOpenConns = utils.EnvDefaultInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns)
	cfg.ConnMaxLifetime = envSeconds("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime)

	cfg.EnableReconnect = utils.EnvDefaultBool("DB_ENABLE_RECONNECT", cfg.EnableReconnect)
	cfg.ReconnectInterval = envSeconds("DB_RECONNECT_INTERVAL", cfg.ReconnectInterval)
	cfg.EnableQueryLog = utils.EnvDefaultBool("DB_ENABLE_QUERY_LOG", cfg.EnableQueryLog)
	cfg.SlowQueryTime = envSeconds("DB_SLOW_QUERY_TIME", cfg.SlowQueryTime)
}

func envSeconds(key string, def time.Duration) time.Duration {
	v := utils.EnvDefaultString(key, "")
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return utils.EnvDefaultDuration(key, def)
}

// InitializeDatabase connects and, when asked, migrates.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, runMigrations bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if !runMigrations {
		return nil
	}
	if err := f.manager.RunMigrations(ctx); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	return nil
}

func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager { return f.manager }

// GetDB returns nil before CreateFromConfig.
func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{LastError: "database not initialized", LastCheckTime: time.Now()}
	}
	return f.manager.HealthCheck(ctx)
}

func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
