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

package model

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tomoncle/holidaykeeper/database"
	"github.com/tomoncle/holidaykeeper/types"
)

// Holiday is one public holiday of one country. Records are never mutated
// in place; a refresh of their (country, year) replaces them.
type Holiday struct {
	bun.BaseModel `bun:"table:holidays,alias:h"`

	ID           string           `bun:"id,pk,type:varchar(36)" json:"id"`
	Date         types.Date       `bun:"date,type:date,notnull" json:"date"`
	LocalName    string           `bun:"local_name,type:varchar(255)" json:"localName"`
	Name         string           `bun:"name,type:varchar(255),notnull" json:"name"`
	CountryCode  string           `bun:"country_code,type:varchar(8),notnull" json:"countryCode"`
	Fixed        bool             `bun:"fixed,notnull" json:"fixed"`
	Global       bool             `bun:"global,notnull" json:"global"`
	Subdivisions types.StringList `bun:"subdivisions,type:varchar(1024)" json:"subdivisions"`
	LaunchYear   *int             `bun:"launch_year" json:"launchYear,omitempty"`
	Types        types.StringList `bun:"types,type:varchar(255)" json:"types"`
	CreatedAt    time.Time        `bun:"created_at,notnull" json:"createdAt"`

	// Lower-cased copies for the case-insensitive filters. SQL LOWER() only
	// folds ASCII on SQLite, so folding happens here for every dialect.
	NameFolded  string `bun:"name_folded,type:varchar(255),notnull" json:"-"`
	TypesFolded string `bun:"types_folded,type:varchar(255)" json:"-"`
}

var _ bun.BeforeAppendModelHook = (*Holiday)(nil)

// BeforeAppendModel assigns identity and creation time on first insert and
// refreshes the folded search columns on every write.
func (h *Holiday) BeforeAppendModel(_ context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery, *bun.UpdateQuery:
		h.NameFolded = strings.ToLower(h.Name)
		h.TypesFolded = strings.ToLower(h.Types.String())
	}
	if _, ok := query.(*bun.InsertQuery); ok {
		if h.ID == "" {
			h.ID = NewID()
		}
		if h.CreatedAt.IsZero() {
			h.CreatedAt = time.Now().UTC()
		}
	}
	return nil
}

// Year is the calendar year the holiday falls in.
func (h *Holiday) Year() int { return h.Date.Year }

// NewID returns a time-ordered UUIDv7 string, so ids compare consistently
// in every supported database.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Holiday)(nil), 10,
		database.IndexSpec{Name: "idx_holidays_name_id", Columns: []string{"name", "id"}},
		database.IndexSpec{Name: "idx_holidays_date_id", Columns: []string{"date", "id"}},
		database.IndexSpec{Name: "idx_holidays_country_code_id", Columns: []string{"country_code", "id"}},
		database.IndexSpec{Name: "idx_holidays_country_code_date", Columns: []string{"country_code", "date"}},
	))
}
