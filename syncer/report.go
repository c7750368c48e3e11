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
	"encoding/json"
	"sync/atomic"
	"time"
)

// Report aggregates the outcome of one run. Counters are only ever
// incremented atomically, so units may finish in any order.
type Report struct {
	totalRecordsSaved atomic.Int64
	unitsSucceeded    atomic.Int64
	unitsFailed       atomic.Int64

	units   int
	elapsed time.Duration
	message string
}

func (r *Report) succeeded(saved int) {
	r.totalRecordsSaved.Add(int64(saved))
	r.unitsSucceeded.Add(1)
}

func (r *Report) failed() {
	r.unitsFailed.Add(1)
}

func (r *Report) TotalRecordsSaved() int64 { return r.totalRecordsSaved.Load() }

func (r *Report) UnitsSucceeded() int64 { return r.unitsSucceeded.Load() }

func (r *Report) UnitsFailed() int64 { return r.unitsFailed.Load() }

// Units is the number of distinct (country, year) units of the run.
func (r *Report) Units() int { return r.units }

// Elapsed is wall-clock time from invocation to the last unit finishing.
func (r *Report) Elapsed() time.Duration { return r.elapsed }

// Message explains a run that had nothing to do.
func (r *Report) Message() string { return r.message }

// Complete reports whether every unit reached an outcome.
func (r *Report) Complete() bool {
	return r.UnitsSucceeded()+r.UnitsFailed() == int64(r.units)
}

func (r *Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TotalRecordsSaved int64  `json:"totalRecordsSaved"`
		UnitsSucceeded    int64  `json:"unitsSucceeded"`
		UnitsFailed       int64  `json:"unitsFailed"`
		Units             int    `json:"units"`
		Elapsed           string `json:"elapsed"`
		Message           string `json:"message,omitempty"`
	}{
		TotalRecordsSaved: r.TotalRecordsSaved(),
		UnitsSucceeded:    r.UnitsSucceeded(),
		UnitsFailed:       r.UnitsFailed(),
		Units:             r.units,
		Elapsed:           r.elapsed.String(),
		Message:           r.message,
	})
}
