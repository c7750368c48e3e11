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
	"fmt"
	"strings"

	"github.com/tomoncle/holidaykeeper/types"
)

const DefaultPageSize = 20

// Params is the textual form of a page request, as received from a command
// line or a query string.
type Params struct {
	CountryCode   string
	DateFrom      string
	DateTo        string
	HolidayType   string
	NameContains  string
	SortBy        string
	SortDirection string
	Size          int
	Cursor        string
	CursorID      string
}

// Request parses p. Unknown sort fields fall back to name; unknown
// directions and malformed dates are rejected.
func (p Params) Request() (*types.PageRequest, error) {
	dir, ok := types.ParseSortDirection(p.SortDirection)
	if !ok {
		return nil, types.NewError(types.CodeInvalidPageRequest, fmt.Sprintf("unsupported sort direction %q", p.SortDirection), nil)
	}

	req := &types.PageRequest{
		Filter: types.HolidayFilter{
			CountryCode:  strings.TrimSpace(p.CountryCode),
			HolidayType:  p.HolidayType,
			NameContains: p.NameContains,
		},
		SortField:     types.ParseSortField(p.SortBy),
		SortDirection: dir,
		PageSize:      p.Size,
		Cursor:        p.Cursor,
		CursorID:      p.CursorID,
	}

	var err error
	if req.Filter.DateFrom, err = parseOptionalDate("dateFrom", p.DateFrom); err != nil {
		return nil, err
	}
	if req.Filter.DateTo, err = parseOptionalDate("dateTo", p.DateTo); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

func parseOptionalDate(name, s string) (*types.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := types.ParseDate(s)
	if err != nil {
		return nil, types.NewError(types.CodeInvalidPageRequest, fmt.Sprintf("%s %q is not an ISO date", name, s), err)
	}
	return &d, nil
}
