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

package types

import (
	"fmt"
	"strings"
)

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// HolidayFilter holds the optional predicates of a holiday search. Zero
// values are inactive. The date range applies only when both ends are set.
type HolidayFilter struct {
	CountryCode  string
	DateFrom     *Date
	DateTo       *Date
	HolidayType  string
	NameContains string
}

// HasDateRange reports whether the inclusive date range predicate is active.
func (f HolidayFilter) HasDateRange() bool {
	return f.DateFrom != nil && f.DateTo != nil
}

// PageRequest asks for one keyset page of holidays.
type PageRequest struct {
	Filter        HolidayFilter
	SortField     SortField
	SortDirection SortDirection
	PageSize      int

	// Cursor is the sort-field value of the first record of the requested
	// page, CursorID that record's id. Both or neither must be set.
	Cursor   string
	CursorID string
}

// HasCursor reports whether both halves of the cursor are present. Partial
// cursor state is treated as a first-page request.
func (p *PageRequest) HasCursor() bool {
	return strings.TrimSpace(p.Cursor) != "" && strings.TrimSpace(p.CursorID) != ""
}

// Validate rejects requests that must never reach the store.
func (p *PageRequest) Validate() error {
	if p.PageSize <= 0 {
		return NewError(CodeInvalidPageRequest, fmt.Sprintf("page size must be positive, got %d", p.PageSize), nil)
	}
	if !p.SortDirection.IsValid() {
		return NewError(CodeInvalidPageRequest, fmt.Sprintf("unsupported sort direction %d", int(p.SortDirection)), nil)
	}
	return nil
}

// Seek anchors a keyset query at the first row of the requested page. Value
// is typed for the sort column (Date for date, string otherwise).
type Seek struct {
	Value interface{}
	ID    string
}

// SeekQuery is what the pagination engine hands to the store.
type SeekQuery struct {
	Filter    HolidayFilter
	SortField SortField
	Direction SortDirection
	Seek      *Seek
	Limit     int
}

// Page is one keyset page of results.
type Page[T any] struct {
	Items         []*T   `json:"items"`
	NextCursor    string `json:"nextCursor,omitempty"`
	NextCursorID  string `json:"nextCursorId,omitempty"`
	HasNext       bool   `json:"hasNext"`
	TotalMatching int    `json:"totalMatching"`
	SortField     string `json:"sortField"`
	SortDirection string `json:"sortDirection"`
}

// NewEmptyPage constructs a page container with no items.
func NewEmptyPage[T any](field SortField, dir SortDirection) *Page[T] {
	return &Page[T]{
		Items:         make([]*T, 0),
		SortField:     field.Name(),
		SortDirection: dir.Name(),
	}
}
