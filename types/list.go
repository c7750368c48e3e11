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
	"database/sql/driver"
	"errors"
	"strings"
)

// StringList is an ordered list of short codes stored as one comma-joined
// column, which keeps substring filters (LIKE) portable across dialects.
type StringList []string

// String returns the stored form.
func (l StringList) String() string { return strings.Join(l, ",") }

// Value implements driver.Valuer for StringList.
func (l StringList) Value() (driver.Value, error) {
	return l.String(), nil
}

// Scan implements sql.Scanner for StringList.
func (l *StringList) Scan(value interface{}) error {
	var s string
	switch v := value.(type) {
	case nil:
		*l = StringList{}
		return nil
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return errors.New("type assertion must be string or []byte")
	}
	*l = SplitList(s)
	return nil
}

// SplitList splits a comma-joined column back into trimmed items.
func SplitList(s string) StringList {
	if strings.TrimSpace(s) == "" {
		return StringList{}
	}
	parts := strings.Split(s, ",")
	out := make(StringList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
