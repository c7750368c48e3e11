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

import "strings"

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// SortField is the column a holiday page is ordered by.
type SortField int

const (
	SortByName SortField = iota
	SortByDate
	SortByCountryCode
)

var sortFieldNames = map[SortField]string{
	SortByName:        "name",
	SortByDate:        "date",
	SortByCountryCode: "countryCode",
}

var sortFieldColumns = map[SortField]string{
	SortByName:        "name",
	SortByDate:        "date",
	SortByCountryCode: "country_code",
}

// ParseSortField maps a request value to a SortField. Unknown or empty values
// fall back to SortByName.
func ParseSortField(s string) SortField {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return SortByDate
	case "countrycode", "country_code", "country":
		return SortByCountryCode
	default:
		return SortByName
	}
}

func (f SortField) IsValid() bool {
	_, ok := sortFieldNames[f]
	return ok
}

func (f SortField) Number() int {
	if !f.IsValid() {
		return IllegalValue
	}
	return int(f)
}

func (f SortField) String() string { return f.Name() }

func (f SortField) Name() string {
	if n, ok := sortFieldNames[f]; ok {
		return n
	}
	return IllegalName
}

func (f SortField) Desc() string {
	switch f {
	case SortByName:
		return "holiday english name"
	case SortByDate:
		return "holiday date"
	case SortByCountryCode:
		return "ISO 3166-1 alpha-2 country code"
	default:
		return IllegalDesc
	}
}

// Column returns the storage column backing the field. Invalid values map to
// the name column.
func (f SortField) Column() string {
	if c, ok := sortFieldColumns[f]; ok {
		return c
	}
	return sortFieldColumns[SortByName]
}

// SortDirection is ASC or DESC.
type SortDirection int

const (
	Ascending SortDirection = iota
	Descending
)

// ParseSortDirection accepts "ASC"/"DESC" in any case; empty means ASC.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "ASC":
		return Ascending, true
	case "DESC":
		return Descending, true
	default:
		return SortDirection(IllegalValue), false
	}
}

func (d SortDirection) IsValid() bool { return d == Ascending || d == Descending }

func (d SortDirection) Number() int {
	if !d.IsValid() {
		return IllegalValue
	}
	return int(d)
}

func (d SortDirection) String() string { return d.Name() }

func (d SortDirection) Name() string {
	switch d {
	case Ascending:
		return "ASC"
	case Descending:
		return "DESC"
	default:
		return IllegalName
	}
}

func (d SortDirection) Desc() string {
	switch d {
	case Ascending:
		return "ascending"
	case Descending:
		return "descending"
	default:
		return IllegalDesc
	}
}

var (
	_ BaseEnum = SortField(0)
	_ BaseEnum = SortDirection(0)
)
