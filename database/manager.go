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
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/schema"
)

// MemoryDBName selects a private in-memory SQLite database.
const MemoryDBName = ":memory:"

type defaultDatabaseManager struct {
	config          *ConnectionConfig
	db              *bun.DB
	sqlDB           *sql.DB
	logger          Logger
	mu              sync.RWMutex
	connected       bool
	lastError       error
	lastHealthCheck time.Time
	healthStatus    *HealthStatus
	reconnectTries  int
	// stopHealthCheck is closed by Disconnect; nil while no loop runs.
	stopHealthCheck chan struct{}
}

// NewDatabaseManager returns an AbstractDatabaseManager backed by Bun. A nil
// config selects DefaultConnectionConfig.
func NewDatabaseManager(config *ConnectionConfig) AbstractDatabaseManager {
	if config == nil {
		config = DefaultConnectionConfig()
	}
	return &defaultDatabaseManager{
		config:       config,
		healthStatus: &HealthStatus{},
	}
}

func (dm *defaultDatabaseManager) Connect(ctx context.Context) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if dm.connected && dm.db != nil {
		return nil
	}
	if dm.logger == nil {
		dm.logger = GetLogger()
	}

	var err error
	dm.sqlDB, dm.db, err = dm.createConnection()
	if err != nil {
		dm.lastError = err
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	dm.configureConnectionPool()

	ctxTimeout, cancel := context.WithTimeout(ctx, dm.config.ConnectTimeout)
	defer cancel()

	if err := dm.db.PingContext(ctxTimeout); err != nil {
		dm.lastError = err
		return fmt.Errorf("database connection test failed: %w", err)
	}

	dm.connected = true
	dm.lastError = nil
	dm.reconnectTries = 0

	if dm.config.HealthCheckInterval > 0 {
		dm.startHealthCheck()
	}

	dm.logger.Info("database connected", "type", dm.config.Type, "host", dm.config.Host, "dbname", dm.config.DBName)
	return nil
}

func (dm *defaultDatabaseManager) createConnection() (*sql.DB, *bun.DB, error) {
	if dm.config.ConnectTimeout <= 0 {
		dm.config.ConnectTimeout = 30 * time.Second
	}

	driverName, dsn, dialect, err := dm.driverSpec()
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, nil, err
	}
	db := bun.NewDB(sqlDB, dialect)

	// BUNDEBUG=1 logs failed queries, BUNDEBUG=2 logs all of them.
	db.AddQueryHook(bundebug.NewQueryHook(bundebug.FromEnv("BUNDEBUG")))
	if dm.config.EnableQueryLog {
		db.AddQueryHook(NewQueryHook(nil, true))
	}
	if dm.config.SlowQueryTime > 0 {
		db.AddQueryHook(NewSlowQueryHook(dm.config.SlowQueryTime, dm.logger))
	}
	return sqlDB, db, nil
}

// driverSpec picks the database/sql driver, DSN and Bun dialect for the
// configured type.
func (dm *defaultDatabaseManager) driverSpec() (string, string, schema.Dialect, error) {
	switch dm.config.Type {
	case "mysql":
		return "mysql", mysqlDSN(dm.config), mysqldialect.New(), nil
	case "postgres", "postgresql":
		return "postgres", postgresDSN(dm.config), pgdialect.New(), nil
	case "sqlite", "sqlite3":
		return sqliteshim.ShimName, sqliteDSN(dm.config.DBName), sqlitedialect.New(), nil
	default:
		return "", "", nil, fmt.Errorf("unsupported database type: %s", dm.config.Type)
	}
}

// mysqlDSN stores and reads times in UTC; holiday dates are plain text so
// the zone only affects created_at.
func mysqlDSN(c *ConnectionConfig) string {
	charset := c.Charset
	if charset == "" {
		charset = "utf8mb4"
	}
	mc := mysql.NewConfig()
	mc.User = c.Username
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Loc = time.UTC
	mc.Timeout = c.ConnectTimeout
	mc.ReadTimeout = c.ReadTimeout
	mc.WriteTimeout = c.WriteTimeout
	mc.Params = map[string]string{"charset": charset}
	return mc.FormatDSN()
}

func postgresDSN(c *ConnectionConfig) string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	q := url.Values{}
	q.Set("sslmode", sslMode)
	q.Set("connect_timeout", fmt.Sprint(int(c.ConnectTimeout.Seconds())))
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Username, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// sqliteDSN maps a configured name to a file path; names without an
// extension get ".db" appended.
func sqliteDSN(name string) string {
	name = strings.TrimSpace(name)
	switch {
	case name == "" || name == MemoryDBName:
		return MemoryDBName
	case strings.HasPrefix(name, "file:"):
		return name
	case filepath.Ext(name) == "":
		return name + ".db"
	default:
		return name
	}
}

func (dm *defaultDatabaseManager) configureConnectionPool() {
	if dm.sqlDB == nil {
		return
	}

	// SQLite allows one writer; an in-memory database also lives only as
	// long as its single connection.
	if dm.config.Type == "sqlite" || dm.config.Type == "sqlite3" {
		dm.sqlDB.SetMaxOpenConns(1)
		dm.sqlDB.SetMaxIdleConns(1)
		dm.sqlDB.SetConnMaxLifetime(0)
		dm.sqlDB.SetConnMaxIdleTime(0)
		return
	}

	dm.sqlDB.SetMaxIdleConns(dm.config.MaxIdleConns)
	dm.sqlDB.SetMaxOpenConns(dm.config.MaxOpenConns)
	dm.sqlDB.SetConnMaxLifetime(dm.config.ConnMaxLifetime)
	dm.sqlDB.SetConnMaxIdleTime(dm.config.ConnMaxIdleTime)
}

func (dm *defaultDatabaseManager) Disconnect() error {
	return dm.close(true)
}

// close drops the connection. The health loop survives a reconnect so it
// can keep retrying when the new connection fails.
func (dm *defaultDatabaseManager) close(stopHealthCheck bool) error {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	if stopHealthCheck && dm.stopHealthCheck != nil {
		close(dm.stopHealthCheck)
		dm.stopHealthCheck = nil
	}
	if dm.db == nil {
		return nil
	}

	err := dm.db.Close()
	dm.db = nil
	dm.sqlDB = nil
	dm.connected = false

	if dm.logger != nil {
		if err != nil {
			dm.logger.Error("failed to close database connection", "error", err)
		} else {
			dm.logger.Info("database connection closed")
		}
	}
	return err
}

func (dm *defaultDatabaseManager) Reconnect(ctx context.Context) error {
	if dm.logger != nil {
		dm.logger.Info("reconnecting to the database")
	}
	if err := dm.close(false); err != nil && dm.logger != nil {
		dm.logger.Warn("error disconnecting existing connection", "error", err)
	}
	return dm.Connect(ctx)
}

func (dm *defaultDatabaseManager) Ping(ctx context.Context) error {
	dm.mu.RLock()
	db := dm.db
	dm.mu.RUnlock()

	if db == nil {
		return fmt.Errorf("database not connected")
	}
	return db.PingContext(ctx)
}

func (dm *defaultDatabaseManager) GetDB() *bun.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.db
}

func (dm *defaultDatabaseManager) GetSQLDB() *sql.DB {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	return dm.sqlDB
}

// HealthCheck pings with a 5s budget and records the outcome together with
// the current pool usage.
func (dm *defaultDatabaseManager) HealthCheck(ctx context.Context) *HealthStatus {
	dm.mu.Lock()
	defer dm.mu.Unlock()

	now := time.Now()
	status := &HealthStatus{LastCheckTime: now}
	defer func() {
		dm.healthStatus = status
		dm.lastHealthCheck = now
	}()

	if dm.db == nil {
		status.LastError = "database not initialized"
		return status
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	dm.lastError = dm.db.PingContext(pingCtx)
	status.ResponseTime = time.Since(now)
	status.Connected = dm.lastError == nil
	status.Healthy = status.Connected
	if dm.lastError != nil {
		status.LastError = dm.lastError.Error()
	}

	pool := dm.sqlDB.Stats()
	status.ActiveConns = pool.InUse
	status.IdleConns = pool.Idle
	status.MaxOpenConns = pool.MaxOpenConnections
	return status
}

// startHealthCheck runs the periodic ping for the current connection. The
// caller holds dm.mu.
func (dm *defaultDatabaseManager) startHealthCheck() {
	if dm.stopHealthCheck != nil {
		return
	}
	stop := make(chan struct{})
	dm.stopHealthCheck = stop

	go func() {
		ticker := time.NewTicker(dm.config.HealthCheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				status := dm.HealthCheck(ctx)
				cancel()
				if !status.Healthy && dm.config.EnableReconnect {
					dm.handleReconnect()
				}
			case <-stop:
				return
			}
		}
	}()
}

// handleReconnect retries Reconnect every ReconnectInterval, at most
// MaxReconnectTries times.
func (dm *defaultDatabaseManager) handleReconnect() {
	tries := dm.config.MaxReconnectTries
	if tries <= 0 {
		return
	}
	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(dm.config.ReconnectInterval), uint64(tries-1))

	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), dm.config.ConnectTimeout)
		defer cancel()
		return dm.Reconnect(ctx)
	}, policy)

	dm.mu.Lock()
	dm.reconnectTries = attempt
	dm.mu.Unlock()
	if err != nil {
		dm.logger.Error("database reconnect gave up", "tries", attempt, "error", err)
		return
	}
	dm.logger.Info("database reconnected", "tries", attempt)
}

func (dm *defaultDatabaseManager) GetStats() *DBStats {
	dm.mu.RLock()
	sqlDB := dm.sqlDB
	dm.mu.RUnlock()

	if sqlDB == nil {
		return &DBStats{}
	}

	stats := sqlDB.Stats()
	return &DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

func (dm *defaultDatabaseManager) RunMigrations(ctx context.Context) error {
	db := dm.GetDB()
	if db == nil {
		return fmt.Errorf("database not initialized")
	}
	return NewMigrationManager(db, dm.logger).RunMigrations(ctx)
}

func (dm *defaultDatabaseManager) SetLogger(logger Logger) {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	dm.logger = logger
}
