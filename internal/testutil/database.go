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

package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/tomoncle/holidaykeeper/database"
	_ "github.com/tomoncle/holidaykeeper/model"
)

// NewTestDB opens a private in-memory SQLite database with every migration
// applied. It is closed when the test completes.
func NewTestDB(t *testing.T) *bun.DB {
	t.Helper()

	cfg := database.DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = database.MemoryDBName
	cfg.HealthCheckInterval = 0
	cfg.SlowQueryTime = 0

	manager := database.NewDatabaseManager(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := manager.Connect(ctx); err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		_ = manager.Disconnect()
	})

	if err := manager.RunMigrations(ctx); err != nil {
		t.Fatalf("failed to apply migrations: %v", err)
	}
	return manager.GetDB()
}
