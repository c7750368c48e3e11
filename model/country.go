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

	"github.com/uptrace/bun"

	"github.com/tomoncle/holidaykeeper/database"
)

// Country is created once at bootstrap and only referenced afterwards.
type Country struct {
	bun.BaseModel `bun:"table:countries,alias:c"`

	ID   string `bun:"id,pk,type:varchar(36)" json:"id"`
	Code string `bun:"code,type:varchar(8),notnull,unique" json:"countryCode"`
	Name string `bun:"name,type:varchar(255),notnull" json:"name"`
}

var _ bun.BeforeAppendModelHook = (*Country)(nil)

func (c *Country) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok && c.ID == "" {
		c.ID = NewID()
	}
	return nil
}

func init() {
	database.RegisteredModel(database.NewModelAdapter((*Country)(nil), 0))
}
