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

// Package source defines the remote holiday source consumed by the
// synchronization engine.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/types"
)

// HolidaySource fetches holiday data from a remote provider. Implementations
// must be safe for concurrent use; each call is independent.
type HolidaySource interface {
	// PublicHolidays returns the holidays of one country and year. An empty
	// result with a nil error means the provider publishes none.
	PublicHolidays(ctx context.Context, countryCode string, year int) ([]RawHoliday, error)

	// AvailableCountries lists the countries the provider knows about.
	AvailableCountries(ctx context.Context) ([]RawCountry, error)
}

// RawHoliday is a holiday as delivered by the provider.
type RawHoliday struct {
	Date        string   `json:"date"`
	LocalName   string   `json:"localName"`
	Name        string   `json:"name"`
	CountryCode string   `json:"countryCode"`
	Fixed       bool     `json:"fixed"`
	Global      bool     `json:"global"`
	Counties    []string `json:"counties"`
	LaunchYear  *int     `json:"launchYear"`
	Types       []string `json:"types"`
}

// RawCountry is a country as delivered by the provider.
type RawCountry struct {
	CountryCode string `json:"countryCode"`
	Name        string `json:"name"`
}

// ToHoliday converts r into a new, unsaved holiday. fallbackCode is used
// when the provider omits the country code.
func (r RawHoliday) ToHoliday(fallbackCode string) (*model.Holiday, error) {
	date, err := types.ParseDate(r.Date)
	if err != nil {
		return nil, fmt.Errorf("holiday %q: %w", r.Name, err)
	}
	code := strings.ToUpper(strings.TrimSpace(r.CountryCode))
	if code == "" {
		code = strings.ToUpper(fallbackCode)
	}
	return &model.Holiday{
		Date:         date,
		LocalName:    r.LocalName,
		Name:         r.Name,
		CountryCode:  code,
		Fixed:        r.Fixed,
		Global:       r.Global,
		Subdivisions: types.StringList(r.Counties),
		LaunchYear:   r.LaunchYear,
		Types:        types.StringList(r.Types),
	}, nil
}

// ToCountry converts r into a new, unsaved country.
func (r RawCountry) ToCountry() *model.Country {
	return &model.Country{
		Code: strings.ToUpper(strings.TrimSpace(r.CountryCode)),
		Name: strings.TrimSpace(r.Name),
	}
}
