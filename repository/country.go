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
	"database/sql"
	"errors"
	"strings"

	"github.com/uptrace/bun"

	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/types"
)

type CountryRepository struct {
	Repository[model.Country]
}

func NewCountryRepository(db *bun.DB) *CountryRepository {
	return &CountryRepository{Repository: NewRepository[model.Country](db)}
}

// All returns every stored country ordered by code.
func (r *CountryRepository) All(ctx context.Context) ([]*model.Country, error) {
	countries, err := r.List(ctx, nil, "code ASC")
	if err != nil {
		return nil, storeError("list countries", err)
	}
	return countries, nil
}

// FindByCode resolves a country by its code, case-insensitively. A missing
// code is reported as ErrUnknownCountry.
func (r *CountryRepository) FindByCode(ctx context.Context, code string) (*model.Country, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	country := new(model.Country)
	err := r.NewSelect().Model(country).Where("code = ?", code).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.NewError(types.CodeUnknownCountry, "country code "+code+" does not exist", nil)
	}
	if err != nil {
		return nil, storeError("find country", err)
	}
	return country, nil
}

// InsertMissing stores the countries whose codes are not stored yet and
// returns how many were inserted.
func (r *CountryRepository) InsertMissing(ctx context.Context, countries []*model.Country) (int, error) {
	var existing []string
	if err := r.NewSelect().Model((*model.Country)(nil)).Column("code").Scan(ctx, &existing); err != nil {
		return 0, storeError("list country codes", err)
	}
	seen := make(map[string]struct{}, len(existing)+len(countries))
	for _, code := range existing {
		seen[code] = struct{}{}
	}

	missing := make([]*model.Country, 0, len(countries))
	for _, c := range countries {
		c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
		if c.Code == "" {
			continue
		}
		if _, ok := seen[c.Code]; ok {
			continue
		}
		seen[c.Code] = struct{}{}
		if c.ID == "" {
			c.ID = model.NewID()
		}
		missing = append(missing, c)
	}

	n, err := r.InsertIgnore(ctx, []string{"code"}, missing...)
	if err != nil {
		return 0, storeError("insert countries", err)
	}
	return n, nil
}
