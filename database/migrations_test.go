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

package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/holidaykeeper/database"
	"github.com/tomoncle/holidaykeeper/internal/testutil"
	"github.com/tomoncle/holidaykeeper/model"
)

func TestMigrationsAreIdempotent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	mm := database.NewMigrationManager(db, nil)
	require.NoError(t, mm.RunMigrations(ctx))

	applied, err := mm.GetAppliedMigrations(ctx)
	require.NoError(t, err)
	require.Len(t, applied, 2)
	assert.Equal(t, "001", applied[0].Version)
	assert.Equal(t, "002", applied[1].Version)

	_, err = db.NewInsert().Model(&model.Country{Code: "KR", Name: "Korea"}).Exec(ctx)
	require.NoError(t, err)
	n, err := db.NewSelect().Model((*model.Holiday)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRegisteredModelsAreOrderedByPriority(t *testing.T) {
	models := database.GetRegisteredModels()
	require.GreaterOrEqual(t, len(models), 2)
	for i := 1; i < len(models); i++ {
		assert.LessOrEqual(t, models[i-1].Priority(), models[i].Priority())
	}
}

func TestUniqueCountryCodeIsClassified(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()

	_, err := db.NewInsert().Model(&model.Country{Code: "DE", Name: "Germany"}).Exec(ctx)
	require.NoError(t, err)
	_, err = db.NewInsert().Model(&model.Country{Code: "DE", Name: "Germany"}).Exec(ctx)
	require.Error(t, err)

	is, class := database.IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, database.DuplicateKeyErr, class)
}

func TestHealthStatusOfUninitializedDatabase(t *testing.T) {
	status := database.GetHealthStatus(context.Background())
	assert.False(t, status.Healthy)
}

func TestSqliteManagerUsesSingleConnection(t *testing.T) {
	cfg := database.DefaultConnectionConfig()
	cfg.DBName = database.MemoryDBName
	cfg.HealthCheckInterval = 0

	manager := database.NewDatabaseManager(cfg)
	ctx := context.Background()
	require.NoError(t, manager.Connect(ctx))
	defer manager.Disconnect()

	status := manager.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, manager.GetSQLDB().Stats().MaxOpenConnections)
}
