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

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"

	"github.com/tomoncle/holidaykeeper/types"
)

// CrudRepository defines basic operations for a generic entity type.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	List(ctx context.Context, filter *types.QueryFilter, orders ...string) ([]*T, error)

	Count(ctx context.Context, filter *types.QueryFilter) (int, error)

	Create(ctx context.Context, entity ...*T) error

	InsertIgnore(ctx context.Context, conflictKeys []string, entity ...*T) (int, error)

	DeleteByIDs(ctx context.Context, ids []string) (int, error)
}

// TransactionRepository defines operations executed within a transaction.
type TransactionRepository[T any] interface {
	CreateWithTx(ctx context.Context, tx bun.Tx, entity ...*T) error
	DeleteByIDsWithTx(ctx context.Context, tx bun.Tx, ids []string) (int, error)
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
}

// Repository combines CRUD and transactional operations and exposes the
// Bun query builders for entity-specific queries.
type Repository[T any] interface {
	CrudRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewDelete() *bun.DeleteQuery
}
