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

package syncer

import (
	"sort"
	"strings"

	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/source"
)

// unit is one (country, year) fetch-and-save task of a run.
type unit struct {
	countryCode string
	year        int
}

// planUnits builds the cross-product of distinct country codes and
// distinct years, in a stable order.
func planUnits(countries []*model.Country, years []int) (codes []string, distinctYears []int, units []unit) {
	seenCodes := make(map[string]struct{}, len(countries))
	for _, c := range countries {
		if c == nil {
			continue
		}
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if code == "" {
			continue
		}
		if _, ok := seenCodes[code]; ok {
			continue
		}
		seenCodes[code] = struct{}{}
		codes = append(codes, code)
	}

	seenYears := make(map[int]struct{}, len(years))
	for _, y := range years {
		if _, ok := seenYears[y]; ok {
			continue
		}
		seenYears[y] = struct{}{}
		distinctYears = append(distinctYears, y)
	}
	sort.Ints(distinctYears)

	units = make([]unit, 0, len(codes)*len(distinctYears))
	for _, code := range codes {
		for _, y := range distinctYears {
			units = append(units, unit{countryCode: code, year: y})
		}
	}
	return codes, distinctYears, units
}

// convert maps raw records to holidays; one bad record fails the unit.
func convert(raw []source.RawHoliday, countryCode string) ([]*model.Holiday, error) {
	holidays := make([]*model.Holiday, 0, len(raw))
	for _, r := range raw {
		h, err := r.ToHoliday(countryCode)
		if err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, nil
}
