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

// Package pagination serves keyset (cursor) pages of holidays.
package pagination

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/types"
	"github.com/tomoncle/holidaykeeper/utils"
)

// HolidayFinder is the read side of the holiday store.
type HolidayFinder interface {
	FindWithSeek(ctx context.Context, q types.SeekQuery) ([]*model.Holiday, error)
	CountMatching(ctx context.Context, f types.HolidayFilter) (int, error)
}

// Engine answers page requests. It keeps no state between calls.
type Engine struct {
	finder HolidayFinder
	logger *logrus.Logger
}

func NewEngine(finder HolidayFinder) *Engine {
	return &Engine{finder: finder, logger: utils.NewLogger("PAGINATION")}
}

// Search returns the page that starts at the request's cursor, or the first
// page when the cursor is incomplete. Invalid requests fail before any
// query runs.
func (e *Engine) Search(ctx context.Context, req *types.PageRequest) (*types.Page[model.Holiday], error) {
	if req == nil {
		return nil, types.NewError(types.CodeInvalidPageRequest, "page request is required", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	field := req.SortField
	if !field.IsValid() {
		field = types.SortByName
	}
	seek, err := seekFor(req, field)
	if err != nil {
		return nil, err
	}

	rows, err := e.finder.FindWithSeek(ctx, types.SeekQuery{
		Filter:    req.Filter,
		SortField: field,
		Direction: req.SortDirection,
		Seek:      seek,
		Limit:     req.PageSize + 1,
	})
	if err != nil {
		return nil, err
	}

	page := types.NewEmptyPage[model.Holiday](field, req.SortDirection)
	if len(rows) > req.PageSize {
		next := rows[req.PageSize]
		page.HasNext = true
		page.NextCursor = cursorValue(next, field)
		page.NextCursorID = next.ID
		rows = rows[:req.PageSize]
	}
	page.Items = rows

	total, err := e.finder.CountMatching(ctx, req.Filter)
	if err != nil {
		return nil, err
	}
	page.TotalMatching = total

	e.logger.WithFields(logrus.Fields{
		"sort":     field.Name(),
		"dir":      req.SortDirection.Name(),
		"returned": len(page.Items),
		"total":    total,
		"hasNext":  page.HasNext,
	}).Debug("holiday page served")
	return page, nil
}

func seekFor(req *types.PageRequest, field types.SortField) (*types.Seek, error) {
	if !req.HasCursor() {
		return nil, nil
	}
	cursor := strings.TrimSpace(req.Cursor)
	seek := &types.Seek{Value: cursor, ID: strings.TrimSpace(req.CursorID)}
	if field == types.SortByDate {
		d, err := types.ParseDate(cursor)
		if err != nil {
			return nil, types.NewError(types.CodeInvalidPageRequest, fmt.Sprintf("cursor %q is not an ISO date", cursor), err)
		}
		seek.Value = d
	}
	return seek, nil
}

// cursorValue renders the sort-field value of h in its canonical form.
func cursorValue(h *model.Holiday, field types.SortField) string {
	switch field {
	case types.SortByDate:
		return h.Date.String()
	case types.SortByCountryCode:
		return h.CountryCode
	default:
		return h.Name
	}
}
