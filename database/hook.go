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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var (
	selectColor = color.New(color.FgGreen)
	insertColor = color.New(color.FgBlue)
	deleteColor = color.New(color.FgMagenta)
	updateColor = color.New(color.FgYellow)
	otherColor  = color.New(color.FgRed)
	tagColor    = color.New(color.FgCyan)
	errColor    = color.New(color.BgRed, color.FgWhite)
)

// QueryHookEnv overrides the query hook at runtime: "0" or empty disables
// it, "1" prints failed queries only, "2" prints every query.
const QueryHookEnv = "HOLIDAY_SQL_LOG"

// QueryHook prints colored SQL statements with their duration.
type QueryHook struct {
	verbose bool
	writer  io.Writer
}

var _ bun.QueryHook = (*QueryHook)(nil)

// NewQueryHook returns a hook that writes to w (stdout when nil). With
// verbose false only failing statements are printed.
func NewQueryHook(w io.Writer, verbose bool) *QueryHook {
	if w == nil {
		w = os.Stdout
	}
	return &QueryHook{verbose: verbose, writer: w}
}

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	verbose := h.verbose
	if env, ok := os.LookupEnv(QueryHookEnv); ok {
		if env == "" || env == "0" {
			return
		}
		verbose = env == "2"
	}
	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		tagColor.Sprint("[BUN]"),
		fmt.Sprintf("%12s", now.Sub(event.StartTime).Round(time.Microsecond)),
		operationColor(event.Operation()).Sprint(event.Query),
	}
	if event.Err != nil {
		args = append(args, errColor.Sprintf(" %T: %s ", event.Err, event.Err))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func operationColor(op string) *color.Color {
	switch op {
	case "SELECT":
		return selectColor
	case "INSERT":
		return insertColor
	case "UPDATE":
		return updateColor
	case "DELETE":
		return deleteColor
	default:
		return otherColor
	}
}

// SlowQueryHook warns through the database logger when a successful
// statement takes longer than threshold.
type SlowQueryHook struct {
	threshold time.Duration
	logger    Logger
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func NewSlowQueryHook(threshold time.Duration, logger Logger) *SlowQueryHook {
	return &SlowQueryHook{threshold: threshold, logger: logger}
}

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if event.Err != nil || h.logger == nil {
		return
	}
	if d := time.Since(event.StartTime); d > h.threshold {
		h.logger.Warn("slow query",
			"duration", d.Round(time.Microsecond),
			"threshold", h.threshold,
			"query", event.Query,
		)
	}
}
