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
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/holidaykeeper/internal/testutil"
	"github.com/tomoncle/holidaykeeper/source"
	"github.com/tomoncle/holidaykeeper/syncer"
	"github.com/tomoncle/holidaykeeper/types"
)

type stubSource struct {
	countries []source.RawCountry
	perUnit   int
}

func (s *stubSource) PublicHolidays(_ context.Context, code string, year int) ([]source.RawHoliday, error) {
	out := make([]source.RawHoliday, 0, s.perUnit)
	for i := 0; i < s.perUnit; i++ {
		out = append(out, source.RawHoliday{
			Date:        fmt.Sprintf("%d-%02d-01", year, i+1),
			Name:        fmt.Sprintf("%s holiday %d", code, i+1),
			CountryCode: code,
			Global:      true,
			Types:       []string{"Public"},
		})
	}
	return out, nil
}

func (s *stubSource) AvailableCountries(context.Context) ([]source.RawCountry, error) {
	return s.countries, nil
}

func newTestKeeper(t *testing.T, src *stubSource) *Keeper {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return NewKeeper(testutil.NewTestDB(t), src, syncer.Options{Concurrency: 4, Logger: logger})
}

func TestBootstrapInsertsOnlyMissing(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{countries: []source.RawCountry{{CountryCode: "KR", Name: "South Korea"}, {CountryCode: "DE", Name: "Germany"}}}
	k := newTestKeeper(t, src)

	n, err := k.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	src.countries = append(src.countries, source.RawCountry{CountryCode: "US", Name: "United States"})
	n, err = k.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	src.countries = nil
	n, err = k.Bootstrap(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	countries, err := k.Countries(ctx)
	require.NoError(t, err)
	assert.Len(t, countries, 3)
}

func TestLoadYearsAndRefreshAreIdempotent(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{perUnit: 3, countries: []source.RawCountry{{CountryCode: "KR", Name: "South Korea"}, {CountryCode: "DE", Name: "Germany"}}}
	k := newTestKeeper(t, src)
	_, err := k.Bootstrap(ctx)
	require.NoError(t, err)

	report, err := k.LoadYears(ctx, 2023, 2025)
	require.NoError(t, err)
	assert.Equal(t, 6, report.Units())
	assert.Equal(t, int64(6), report.UnitsSucceeded())
	assert.Equal(t, int64(18), report.TotalRecordsSaved())

	report, err = k.RefreshRecent(ctx, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 4, report.Units())

	page, err := k.Search(ctx, &types.PageRequest{PageSize: 1})
	require.NoError(t, err)
	assert.Equal(t, 18, page.TotalMatching)

	_, err = k.LoadYears(ctx, 2025, 2023)
	assert.Error(t, err)
}

func TestLoadWithoutCountriesReportsNothingToDo(t *testing.T) {
	k := newTestKeeper(t, &stubSource{perUnit: 1})

	report, err := k.RefreshYear(context.Background(), 2024)
	require.NoError(t, err)
	assert.Zero(t, report.Units())
	assert.NotEmpty(t, report.Message())
}

func TestRefreshCountry(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{perUnit: 2, countries: []source.RawCountry{{CountryCode: "KR", Name: "South Korea"}}}
	k := newTestKeeper(t, src)
	_, err := k.Bootstrap(ctx)
	require.NoError(t, err)

	report, err := k.RefreshCountry(ctx, "kr", 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.TotalRecordsSaved())

	_, err = k.RefreshCountry(ctx, "ZZ", 2024)
	assert.ErrorIs(t, err, types.ErrUnknownCountry)
}

func TestDeleteRemovesOnlyThatCountryYear(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{perUnit: 2, countries: []source.RawCountry{{CountryCode: "KR", Name: "South Korea"}, {CountryCode: "DE", Name: "Germany"}}}
	k := newTestKeeper(t, src)
	_, err := k.Bootstrap(ctx)
	require.NoError(t, err)
	_, err = k.LoadYears(ctx, 2024, 2025)
	require.NoError(t, err)

	deleted, err := k.Delete(ctx, "KR", 2024)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	count := func(code string) int {
		page, err := k.Search(ctx, &types.PageRequest{PageSize: 10, Filter: types.HolidayFilter{CountryCode: code}})
		require.NoError(t, err)
		return page.TotalMatching
	}
	assert.Equal(t, 2, count("KR"))
	assert.Equal(t, 4, count("DE"))

	_, err = k.Delete(ctx, "ZZ", 2024)
	assert.ErrorIs(t, err, types.ErrUnknownCountry)
}
