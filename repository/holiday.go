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
	"strings"

	"github.com/uptrace/bun"

	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/types"
)

// HolidayRepository persists holidays. Every write is one transaction
// scoped to a single (country, year).
type HolidayRepository struct {
	Repository[model.Holiday]
	db *bun.DB
}

func NewHolidayRepository(db *bun.DB) *HolidayRepository {
	return &HolidayRepository{Repository: NewRepository[model.Holiday](db), db: db}
}

// SaveBatch replaces the stored holidays of (countryCode, year) with
// holidays in one transaction and returns the number saved.
func (r *HolidayRepository) SaveBatch(ctx context.Context, countryCode string, year int, holidays []*model.Holiday) (int, error) {
	if len(holidays) == 0 {
		return 0, nil
	}
	from, to := types.FirstDayOfYear(year), types.LastDayOfYear(year)
	for _, h := range holidays {
		if h.ID == "" {
			h.ID = model.NewID()
		}
	}

	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*model.Holiday)(nil)).
			Where("country_code = ?", countryCode).
			Where("date BETWEEN ? AND ?", from, to).
			Exec(ctx); err != nil {
			return err
		}
		return r.CreateWithTx(ctx, tx, holidays...)
	})
	if err != nil {
		return 0, storeError("save holidays of "+countryCode, err)
	}
	return len(holidays), nil
}

// FindByCountryAndYear returns the holidays of one unit ordered by date.
func (r *HolidayRepository) FindByCountryAndYear(ctx context.Context, countryCode string, year int) ([]*model.Holiday, error) {
	holidays, err := r.List(ctx,
		types.NewQueryFilter("country_code = ? AND date BETWEEN ? AND ?",
			countryCode, types.FirstDayOfYear(year), types.LastDayOfYear(year)),
		"date ASC", "id ASC",
	)
	if err != nil {
		return nil, storeError("find holidays", err)
	}
	return holidays, nil
}

// DeleteByCountryAndYear collects the ids of the unit's holidays and deletes
// them in one transaction.
func (r *HolidayRepository) DeleteByCountryAndYear(ctx context.Context, countryCode string, year int) (int, error) {
	deleted := 0
	err := r.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var ids []string
		if err := tx.NewSelect().
			Model((*model.Holiday)(nil)).
			Column("id").
			Where("country_code = ?", countryCode).
			Where("date BETWEEN ? AND ?", types.FirstDayOfYear(year), types.LastDayOfYear(year)).
			Scan(ctx, &ids); err != nil {
			return err
		}
		n, err := r.DeleteByIDsWithTx(ctx, tx, ids)
		deleted = n
		return err
	})
	if err != nil {
		return 0, storeError("delete holidays of "+countryCode, err)
	}
	return deleted, nil
}

// FindWithSeek returns at most q.Limit holidays matching q.Filter, ordered
// by (sort column, id ASC) and starting at q.Seek when set.
func (r *HolidayRepository) FindWithSeek(ctx context.Context, q types.SeekQuery) ([]*model.Holiday, error) {
	holidays := make([]*model.Holiday, 0, q.Limit)
	col := bun.Ident("h." + q.SortField.Column())
	id := bun.Ident("h.id")

	query := applyFilter(r.db.NewSelect().Model(&holidays), q.Filter)
	if q.Seek != nil {
		op := ">"
		if q.Direction == types.Descending {
			op = "<"
		}
		seek := q.Seek
		query = query.WhereGroup(" AND ", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Where("? "+op+" ?", col, seek.Value).
				WhereGroup(" OR ", func(sq *bun.SelectQuery) *bun.SelectQuery {
					return sq.Where("? = ?", col, seek.Value).Where("? >= ?", id, seek.ID)
				})
		})
	}

	err := query.
		OrderExpr("? "+q.Direction.String(), col).
		OrderExpr("? ASC", id).
		Limit(q.Limit).
		Scan(ctx)
	if err != nil {
		return nil, storeError("seek holidays", err)
	}
	return holidays, nil
}

// CountMatching counts every holiday matching f, ignoring any cursor.
func (r *HolidayRepository) CountMatching(ctx context.Context, f types.HolidayFilter) (int, error) {
	n, err := applyFilter(r.db.NewSelect().Model((*model.Holiday)(nil)), f).Count(ctx)
	if err != nil {
		return 0, storeError("count holidays", err)
	}
	return n, nil
}

func applyFilter(q *bun.SelectQuery, f types.HolidayFilter) *bun.SelectQuery {
	if code := strings.TrimSpace(f.CountryCode); code != "" {
		q = q.Where("h.country_code = ?", strings.ToUpper(code))
	}
	if f.HasDateRange() {
		q = q.Where("h.date BETWEEN ? AND ?", *f.DateFrom, *f.DateTo)
	}
	if s := strings.TrimSpace(f.HolidayType); s != "" {
		q = q.Where("h.types_folded LIKE ? ESCAPE '!'", containsPattern(s))
	}
	if s := strings.TrimSpace(f.NameContains); s != "" {
		q = q.Where("h.name_folded LIKE ? ESCAPE '!'", containsPattern(s))
	}
	return q
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern builds a substring LIKE pattern for the folded columns,
// folded the same way, with the metacharacters of s escaped.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
