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

package testutil

import (
	"fmt"
	"sync"

	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/types"
)

// StubIDGenerator returns sequential, lexically ordered IDs: "id-0001",
// "id-0002", etc.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%04d", g.counter)
}

// Holiday builds an unsaved holiday; date must be ISO formatted.
func Holiday(id, countryCode, name, date string, holidayTypes ...string) *model.Holiday {
	d, err := types.ParseDate(date)
	if err != nil {
		panic(err)
	}
	if len(holidayTypes) == 0 {
		holidayTypes = []string{"Public"}
	}
	return &model.Holiday{
		ID:          id,
		Date:        d,
		LocalName:   name,
		Name:        name,
		CountryCode: countryCode,
		Global:      true,
		Types:       types.StringList(holidayTypes),
	}
}
