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

package pagination

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomoncle/holidaykeeper/internal/testutil"
	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/repository"
	"github.com/tomoncle/holidaykeeper/types"
)

func newEngine(t *testing.T, holidays ...*model.Holiday) *Engine {
	t.Helper()
	repo := repository.NewHolidayRepository(testutil.NewTestDB(t))
	byUnit := map[string][]*model.Holiday{}
	for _, h := range holidays {
		k := fmt.Sprintf("%s/%d", h.CountryCode, h.Year())
		byUnit[k] = append(byUnit[k], h)
	}
	for _, batch := range byUnit {
		_, err := repo.SaveBatch(context.Background(), batch[0].CountryCode, batch[0].Year(), batch)
		require.NoError(t, err)
	}
	return NewEngine(repo)
}

// countingFinder records whether any query ran.
type countingFinder struct {
	calls int
}

func (f *countingFinder) FindWithSeek(context.Context, types.SeekQuery) ([]*model.Holiday, error) {
	f.calls++
	return nil, nil
}

func (f *countingFinder) CountMatching(context.Context, types.HolidayFilter) (int, error) {
	f.calls++
	return 0, nil
}

func TestExampleWithSharedDates(t *testing.T) {
	e := newEngine(t,
		testutil.Holiday("A", "KR", "a", "2024-01-01"),
		testutil.Holiday("B", "KR", "b", "2024-01-01"),
		testutil.Holiday("C", "KR", "c", "2024-06-01"),
	)
	ctx := context.Background()

	first, err := e.Search(ctx, &types.PageRequest{SortField: types.SortByDate, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids(first.Items))
	assert.True(t, first.HasNext)
	assert.Equal(t, "2024-06-01", first.NextCursor)
	assert.Equal(t, "C", first.NextCursorID)
	assert.Equal(t, 3, first.TotalMatching)
	assert.Equal(t, "date", first.SortField)
	assert.Equal(t, "ASC", first.SortDirection)

	second, err := e.Search(ctx, &types.PageRequest{
		SortField: types.SortByDate, PageSize: 2,
		Cursor: first.NextCursor, CursorID: first.NextCursorID,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"C"}, ids(second.Items))
	assert.False(t, second.HasNext)
	assert.Empty(t, second.NextCursor)
	assert.Empty(t, second.NextCursorID)
	assert.Equal(t, 3, second.TotalMatching)
}

func TestRoundTripHasNoGapsOrDuplicates(t *testing.T) {
	gen := testutil.NewStubIDGenerator()
	var all []*model.Holiday
	names := []string{"Alpha", "Bravo", "Alpha", "Charlie", "Bravo", "Alpha"}
	codes := []string{"KR", "DE", "US"}
	for i := 0; i < 30; i++ {
		date := fmt.Sprintf("2024-%02d-01", i%4+1)
		all = append(all, testutil.Holiday(gen.New(), codes[i%len(codes)], names[i%len(names)], date))
	}
	e := newEngine(t, all...)

	for _, field := range []types.SortField{types.SortByName, types.SortByDate, types.SortByCountryCode} {
		for _, dir := range []types.SortDirection{types.Ascending, types.Descending} {
			t.Run(field.Name()+"_"+dir.Name(), func(t *testing.T) {
				want := expectedOrder(all, field, dir)
				var got []string
				req := &types.PageRequest{SortField: field, SortDirection: dir, PageSize: 4}
				for pages := 0; ; pages++ {
					require.Less(t, pages, 20, "pagination did not terminate")
					page, err := e.Search(context.Background(), req)
					require.NoError(t, err)
					require.LessOrEqual(t, len(page.Items), 4)
					assert.Equal(t, len(all), page.TotalMatching)
					got = append(got, ids(page.Items)...)
					if !page.HasNext {
						break
					}
					req.Cursor, req.CursorID = page.NextCursor, page.NextCursorID
				}
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestFilteredTotalIsStableAcrossPages(t *testing.T) {
	gen := testutil.NewStubIDGenerator()
	var all []*model.Holiday
	for i := 0; i < 12; i++ {
		code := "KR"
		if i%3 == 0 {
			code = "DE"
		}
		all = append(all, testutil.Holiday(gen.New(), code, fmt.Sprintf("Day %02d", i), fmt.Sprintf("2024-%02d-15", i+1)))
	}
	e := newEngine(t, all...)

	req := &types.PageRequest{Filter: types.HolidayFilter{CountryCode: "KR"}, SortField: types.SortByDate, SortDirection: types.Descending, PageSize: 3}
	seen := 0
	for {
		page, err := e.Search(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, 8, page.TotalMatching)
		for _, h := range page.Items {
			assert.Equal(t, "KR", h.CountryCode)
		}
		seen += len(page.Items)
		if !page.HasNext {
			break
		}
		req.Cursor, req.CursorID = page.NextCursor, page.NextCursorID
	}
	assert.Equal(t, 8, seen)
}

func TestPartialCursorStartsAtFirstPage(t *testing.T) {
	e := newEngine(t,
		testutil.Holiday("A", "KR", "a", "2024-01-01"),
		testutil.Holiday("B", "KR", "b", "2024-02-01"),
	)
	for _, req := range []*types.PageRequest{
		{PageSize: 1, Cursor: "b"},
		{PageSize: 1, CursorID: "B"},
	} {
		page, err := e.Search(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, ids(page.Items))
		assert.Equal(t, "b", page.NextCursor)
	}
}

func TestInvertedDateRangeMatchesNothing(t *testing.T) {
	e := newEngine(t,
		testutil.Holiday("A", "KR", "a", "2024-03-01"),
		testutil.Holiday("B", "KR", "b", "2024-09-01"),
	)
	from, to := types.NewDate(2024, 12, 31), types.NewDate(2024, 1, 1)

	page, err := e.Search(context.Background(), &types.PageRequest{
		Filter:   types.HolidayFilter{DateFrom: &from, DateTo: &to},
		PageSize: 5,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasNext)
	assert.Zero(t, page.TotalMatching)

	req, err := Params{DateFrom: "2024-12-31", DateTo: "2024-01-01", Size: 5}.Request()
	require.NoError(t, err)
	assert.True(t, req.Filter.HasDateRange())
}

func TestInvalidRequestsRunNoQuery(t *testing.T) {
	finder := &countingFinder{}
	e := NewEngine(finder)
	ctx := context.Background()

	for _, req := range []*types.PageRequest{
		nil,
		{PageSize: 0},
		{PageSize: -5},
		{PageSize: 10, SortDirection: types.SortDirection(9)},
		{PageSize: 10, SortField: types.SortByDate, Cursor: "yesterday", CursorID: "A"},
	} {
		_, err := e.Search(ctx, req)
		assert.ErrorIs(t, err, types.ErrInvalidPageRequest)
	}
	assert.Zero(t, finder.calls)
}

func TestUnknownSortFieldFallsBackToName(t *testing.T) {
	e := newEngine(t,
		testutil.Holiday("A", "KR", "zeta", "2024-01-01"),
		testutil.Holiday("B", "KR", "alpha", "2024-02-01"),
	)
	page, err := e.Search(context.Background(), &types.PageRequest{SortField: types.SortField(42), PageSize: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A"}, ids(page.Items))
	assert.Equal(t, "name", page.SortField)
}

func TestParamsRequest(t *testing.T) {
	req, err := Params{SortBy: "date", SortDirection: "desc", Size: 5, DateFrom: "2024-01-01", DateTo: "2024-12-31"}.Request()
	require.NoError(t, err)
	assert.Equal(t, types.SortByDate, req.SortField)
	assert.Equal(t, types.Descending, req.SortDirection)
	assert.True(t, req.Filter.HasDateRange())

	_, err = Params{SortDirection: "sideways", Size: 5}.Request()
	assert.ErrorIs(t, err, types.ErrInvalidPageRequest)

	_, err = Params{DateFrom: "01/02/2024", Size: 5}.Request()
	assert.ErrorIs(t, err, types.ErrInvalidPageRequest)

	_, err = Params{Size: 0}.Request()
	assert.ErrorIs(t, err, types.ErrInvalidPageRequest)
}

func expectedOrder(all []*model.Holiday, field types.SortField, dir types.SortDirection) []string {
	sorted := append([]*model.Holiday(nil), all...)
	key := func(h *model.Holiday) string { return cursorValue(h, field) }
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := key(sorted[i]), key(sorted[j])
		if a != b {
			if dir == types.Descending {
				return a > b
			}
			return a < b
		}
		return sorted[i].ID < sorted[j].ID
	})
	return ids(sorted)
}

func ids(rows []*model.Holiday) []string {
	out := make([]string, len(rows))
	for i, h := range rows {
		out[i] = h.ID
	}
	return out
}
