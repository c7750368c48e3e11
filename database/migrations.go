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
	"sort"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// MigrationManager applies the versioned schema steps exactly once each.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
	models []SQLModel
}

// Migration is an applied migration record.
type Migration struct {
	bun.BaseModel `bun:"table:holiday_migrations"`

	Version     string    `bun:"version,pk,type:varchar(32)"`
	Name        string    `bun:"name,notnull"`
	AppliedAt   time.Time `bun:"applied_at,notnull"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

// NewMigrationManager migrates the models in the default registry.
func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	if logger == nil {
		logger = GetLogger()
	}
	return &MigrationManager{db: db, logger: logger, models: GetRegisteredModels()}
}

// WithModels replaces the registry snapshot, mainly for tests.
func (mm *MigrationManager) WithModels(models ...SQLModel) *MigrationManager {
	mm.models = models
	return mm
}

// RunMigrations creates the tracking table if needed and executes every
// pending migration in ascending version order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}

	if _, err := mm.db.NewCreateTable().Model((*Migration)(nil)).IfNotExists().Exec(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations := mm.getAllMigrations()
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}

	mm.logger.Info("database migrations completed")
	return nil
}

func (mm *MigrationManager) getAllMigrations() []MigrationItem {
	return []MigrationItem{
		{
			Version:     "001",
			Name:        "create_base_tables",
			Description: "Create countries and holidays tables",
			Up:          mm.createBaseTables,
		},
		{
			Version:     "002",
			Name:        "create_keyset_indexes",
			Description: "Create composite indexes backing keyset pagination and unit deletes",
			Up:          mm.createIndexes,
		},
	}
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	tx, err := mm.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				mm.logger.Error("failed to rollback migration", "version", migration.Version, "error", rollbackErr)
			}
		}
	}()

	if err := migration.Up(ctx, tx); err != nil {
		return err
	}

	record := &Migration{
		Version:     migration.Version,
		Name:        migration.Name,
		AppliedAt:   time.Now().UTC(),
		Description: migration.Description,
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	mm.logger.Info("migration applied", "version", migration.Version, "name", migration.Name)
	return nil
}

func (mm *MigrationManager) createBaseTables(ctx context.Context, db bun.IDB) error {
	for _, model := range mm.models {
		_, err := db.NewCreateTable().
			Model(model.Instance()).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create table %T: %w", model.Instance(), err)
		}
	}
	return nil
}

func (mm *MigrationManager) createIndexes(ctx context.Context, db bun.IDB) error {
	// MySQL has no CREATE INDEX IF NOT EXISTS.
	mysql := db.Dialect().Name() == dialect.MySQL
	for _, model := range mm.models {
		indexed, ok := model.(IndexedModel)
		if !ok {
			continue
		}
		for _, idx := range indexed.Indexes() {
			q := db.NewCreateIndex().
				Model(model.Instance()).
				Index(idx.Name).
				Column(idx.Columns...)
			if idx.Unique {
				q = q.Unique()
			}
			if !mysql {
				q = q.IfNotExists()
			}
			if _, err := q.Exec(ctx); err != nil {
				if is, kind := IsSqlError(err); is && kind == ExistIndexErr {
					continue
				}
				return fmt.Errorf("failed to create index %s: %w", idx.Name, err)
			}
		}
	}
	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}
