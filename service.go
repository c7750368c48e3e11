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

package holidaykeeper

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"

	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/pagination"
	"github.com/tomoncle/holidaykeeper/repository"
	"github.com/tomoncle/holidaykeeper/source"
	"github.com/tomoncle/holidaykeeper/syncer"
	"github.com/tomoncle/holidaykeeper/types"
	"github.com/tomoncle/holidaykeeper/utils"
)

type Service interface {
	// Bootstrap stores the provider's countries that are not stored yet.
	Bootstrap(ctx context.Context) (int, error)

	// Countries returns the stored countries ordered by code.
	Countries(ctx context.Context) ([]*model.Country, error)

	// LoadYears synchronizes every stored country for each year in [from, to].
	LoadYears(ctx context.Context, from, to int) (*syncer.Report, error)

	// RefreshYear synchronizes every stored country for one year.
	RefreshYear(ctx context.Context, year int) (*syncer.Report, error)

	// RefreshRecent synchronizes the year of now and the year before.
	RefreshRecent(ctx context.Context, now time.Time) (*syncer.Report, error)

	// RefreshCountry synchronizes one stored country for one year.
	RefreshCountry(ctx context.Context, countryCode string, year int) (*syncer.Report, error)

	// Search returns one keyset page of holidays.
	Search(ctx context.Context, req *types.PageRequest) (*types.Page[model.Holiday], error)

	// Delete removes every holiday of a stored country in one year.
	Delete(ctx context.Context, countryCode string, year int) (int, error)
}

// Keeper wires the remote source, the store, the synchronization engine and
// the pagination engine together.
type Keeper struct {
	countries    *repository.CountryRepository
	holidays     *repository.HolidayRepository
	source       source.HolidaySource
	orchestrator *syncer.Orchestrator
	pages        *pagination.Engine
	logger       *logrus.Logger
}

var _ Service = (*Keeper)(nil)

func NewKeeper(db *bun.DB, src source.HolidaySource, opts syncer.Options) *Keeper {
	holidays := repository.NewHolidayRepository(db)
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewLogger("KEEPER")
	}
	return &Keeper{
		countries:    repository.NewCountryRepository(db),
		holidays:     holidays,
		source:       src,
		orchestrator: syncer.New(src, holidays, opts),
		pages:        pagination.NewEngine(holidays),
		logger:       logger,
	}
}

func (k *Keeper) Bootstrap(ctx context.Context) (int, error) {
	raw, err := k.source.AvailableCountries(ctx)
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		k.logger.Warn("holiday source returned no countries")
		return 0, nil
	}

	countries := make([]*model.Country, 0, len(raw))
	for _, r := range raw {
		countries = append(countries, r.ToCountry())
	}
	inserted, err := k.countries.InsertMissing(ctx, countries)
	if err != nil {
		return 0, err
	}
	k.logger.WithFields(logrus.Fields{"available": len(raw), "inserted": inserted}).Info("countries bootstrapped")
	return inserted, nil
}

func (k *Keeper) Countries(ctx context.Context) ([]*model.Country, error) {
	return k.countries.All(ctx)
}

func (k *Keeper) LoadYears(ctx context.Context, from, to int) (*syncer.Report, error) {
	if from > to {
		return nil, fmt.Errorf("invalid year range %d..%d", from, to)
	}
	years := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, y)
	}
	return k.syncAll(ctx, years)
}

func (k *Keeper) RefreshYear(ctx context.Context, year int) (*syncer.Report, error) {
	return k.syncAll(ctx, []int{year})
}

func (k *Keeper) RefreshRecent(ctx context.Context, now time.Time) (*syncer.Report, error) {
	return k.syncAll(ctx, []int{now.Year() - 1, now.Year()})
}

func (k *Keeper) RefreshCountry(ctx context.Context, countryCode string, year int) (*syncer.Report, error) {
	country, err := k.countries.FindByCode(ctx, countryCode)
	if err != nil {
		return nil, err
	}
	return k.orchestrator.RunOne(ctx, country, year), nil
}

func (k *Keeper) Search(ctx context.Context, req *types.PageRequest) (*types.Page[model.Holiday], error) {
	return k.pages.Search(ctx, req)
}

func (k *Keeper) Delete(ctx context.Context, countryCode string, year int) (int, error) {
	country, err := k.countries.FindByCode(ctx, countryCode)
	if err != nil {
		return 0, err
	}
	deleted, err := k.holidays.DeleteByCountryAndYear(ctx, country.Code, year)
	if err != nil {
		return 0, err
	}
	k.logger.WithFields(logrus.Fields{"country": country.Code, "year": year, "deleted": deleted}).Info("holidays deleted")
	return deleted, nil
}

func (k *Keeper) syncAll(ctx context.Context, years []int) (*syncer.Report, error) {
	countries, err := k.countries.All(ctx)
	if err != nil {
		return nil, err
	}
	return k.orchestrator.Run(ctx, countries, years), nil
}
