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

package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/holidaykeeper/database"
	"github.com/tomoncle/holidaykeeper/types"
)

type baseRepositoryImpl[T any] struct {
	db     *bun.DB
	logger database.Logger
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db, logger: database.GetLogger()}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	var entity T
	if err := r.db.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx); err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.db.NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, filter *types.QueryFilter, orders ...string) ([]*T, error) {
	entities := make([]*T, 0)
	query := r.db.NewSelect().Model(&entities)
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	if len(orders) > 0 {
		query = query.Order(orders...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context, filter *types.QueryFilter) (int, error) {
	query := r.db.NewSelect().Model((*T)(nil))
	if filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}
	return query.Count(ctx)
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := append([]*T(nil), entity...)
	_, err := r.db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx bun.Tx, entity ...*T) error {
	if len(entity) == 0 {
		return nil
	}
	entities := append([]*T(nil), entity...)
	_, err := tx.NewInsert().Model(&entities).Exec(ctx)
	return err
}

// InsertIgnore inserts entities, skipping rows that collide on
// conflictKeys, and returns the number actually inserted.
func (r *baseRepositoryImpl[T]) InsertIgnore(ctx context.Context, conflictKeys []string, entity ...*T) (int, error) {
	if len(entity) == 0 {
		return 0, nil
	}
	entities := append([]*T(nil), entity...)
	query := r.db.NewInsert().Model(&entities)

	switch {
	case r.db.HasFeature(feature.InsertOnConflict):
		if len(conflictKeys) == 0 {
			conflictKeys = []string{"id"}
		}
		query = query.On(fmt.Sprintf("CONFLICT (%s) DO NOTHING", strings.Join(conflictKeys, ",")))
	case r.db.HasFeature(feature.InsertIgnore):
		query = query.Ignore()
	default:
		return r.insertIgnoreFallback(ctx, entities)
	}

	res, err := query.Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(entities), nil
	}
	return int(n), nil
}

func (r *baseRepositoryImpl[T]) insertIgnoreFallback(ctx context.Context, entities []*T) (int, error) {
	inserted := 0
	for _, entity := range entities {
		if _, err := r.db.NewInsert().Model(entity).Exec(ctx); err != nil {
			if is, kind := database.IsSqlError(err); is && kind == database.DuplicateKeyErr {
				continue
			}
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func (r *baseRepositoryImpl[T]) DeleteByIDs(ctx context.Context, ids []string) (int, error) {
	deleted := 0
	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		n, err := r.DeleteByIDsWithTx(ctx, tx, ids)
		deleted = n
		return err
	})
	return deleted, err
}

func (r *baseRepositoryImpl[T]) DeleteByIDsWithTx(ctx context.Context, tx bun.Tx, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := tx.NewDelete().Model((*T)(nil)).Where("id IN (?)", bun.In(ids)).Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return len(ids), nil
	}
	return int(n), nil
}

// RunInTx runs fn in a transaction that is committed when fn returns nil
// and rolled back otherwise.
func (r *baseRepositoryImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && r.logger != nil {
				r.logger.Error("failed to rollback transaction", "error", rollbackErr)
			}
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// storeError wraps a persistence failure with its SQL class.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	msg := op
	if is, kind := database.IsSqlError(err); is {
		msg = fmt.Sprintf("%s (%s)", op, kind)
	}
	return types.NewError(types.CodeStore, msg, err)
}
