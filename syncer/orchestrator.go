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

// Package syncer fetches holidays for many (country, year) units
// concurrently and persists each unit independently.
package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/tomoncle/holidaykeeper/model"
	"github.com/tomoncle/holidaykeeper/source"
	"github.com/tomoncle/holidaykeeper/types"
	"github.com/tomoncle/holidaykeeper/utils"
)

const (
	DefaultConcurrency  = 10
	DefaultFetchTimeout = 10 * time.Second
)

// HolidayStore saves one unit's holidays atomically, replacing whatever was
// stored for that unit before.
type HolidayStore interface {
	SaveBatch(ctx context.Context, countryCode string, year int, holidays []*model.Holiday) (int, error)
}

type Options struct {
	// Concurrency caps both in-flight remote calls and in-flight saves.
	Concurrency int
	// FetchTimeout bounds each remote call.
	FetchTimeout time.Duration
	Logger       *logrus.Logger
}

type Orchestrator struct {
	source       source.HolidaySource
	store        HolidayStore
	concurrency  int
	fetchTimeout time.Duration
	logger       *logrus.Logger
}

func New(src source.HolidaySource, store HolidayStore, opts Options) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewLogger("SYNC")
	}
	return &Orchestrator{
		source:       src,
		store:        store,
		concurrency:  opts.Concurrency,
		fetchTimeout: opts.FetchTimeout,
		logger:       opts.Logger,
	}
}

// RunOne synchronizes a single (country, year).
func (o *Orchestrator) RunOne(ctx context.Context, country *model.Country, year int) *Report {
	return o.Run(ctx, []*model.Country{country}, []int{year})
}

// Run synchronizes every (country, year) of the cross-product and returns
// once each unit has succeeded or failed. Unit failures are logged and
// counted, never returned. Cancelling ctx makes units that have not started
// fail immediately.
func (o *Orchestrator) Run(ctx context.Context, countries []*model.Country, years []int) *Report {
	start := time.Now()
	report := &Report{}
	defer func() { report.elapsed = time.Since(start) }()

	codes, distinctYears, units := planUnits(countries, years)
	switch {
	case len(codes) == 0:
		report.message = "no countries to synchronize; bootstrap the country list first"
		o.logger.Warn(report.message)
		return report
	case len(distinctYears) == 0:
		report.message = "no years to synchronize"
		o.logger.Warn(report.message)
		return report
	}
	report.units = len(units)

	o.logger.WithFields(logrus.Fields{
		"countries":   len(codes),
		"years":       len(distinctYears),
		"units":       len(units),
		"concurrency": o.concurrency,
	}).Info("synchronization started")

	fetchSlots := semaphore.NewWeighted(int64(o.concurrency))
	var persist errgroup.Group
	persist.SetLimit(o.concurrency)

	var fetchers sync.WaitGroup
	for _, u := range units {
		if err := fetchSlots.Acquire(ctx, 1); err != nil {
			o.fail(report, u, "dispatch", err)
			continue
		}
		fetchers.Add(1)
		go func(u unit) {
			defer fetchers.Done()
			o.runUnit(ctx, u, fetchSlots, &persist, report)
		}(u)
	}

	fetchers.Wait()
	_ = persist.Wait()

	o.logger.WithFields(logrus.Fields{
		"saved":     report.TotalRecordsSaved(),
		"succeeded": report.UnitsSucceeded(),
		"failed":    report.UnitsFailed(),
		"elapsed":   time.Since(start).Round(time.Millisecond),
	}).Info("synchronization finished")
	return report
}

// runUnit fetches under its own deadline while holding a fetch slot, then
// hands non-empty results to the persistence pool.
func (o *Orchestrator) runUnit(ctx context.Context, u unit, fetchSlots *semaphore.Weighted, persist *errgroup.Group, report *Report) {
	raw, err := o.fetch(ctx, u)
	fetchSlots.Release(1)
	if err != nil {
		o.fail(report, u, "fetch", err)
		return
	}
	if len(raw) == 0 {
		o.logger.WithFields(logrus.Fields{"country": u.countryCode, "year": u.year}).Debug("no holidays published")
		report.succeeded(0)
		return
	}

	holidays, err := convert(raw, u.countryCode)
	if err != nil {
		o.fail(report, u, "decode", types.NewError(types.CodeRemoteFetch, "malformed holiday record", err))
		return
	}

	persist.Go(func() error {
		saved, err := o.save(ctx, u, holidays)
		if err != nil {
			o.fail(report, u, "save", err)
			return nil
		}
		report.succeeded(saved)
		o.logger.WithFields(logrus.Fields{"country": u.countryCode, "year": u.year, "saved": saved}).Debug("unit synchronized")
		return nil
	})
}

func (o *Orchestrator) fetch(ctx context.Context, u unit) (raw []source.RawHoliday, err error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("holiday source panicked: %v", r)
		}
	}()
	return o.source.PublicHolidays(fetchCtx, u.countryCode, u.year)
}

func (o *Orchestrator) save(ctx context.Context, u unit, holidays []*model.Holiday) (saved int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("holiday store panicked: %v", r)
		}
	}()
	return o.store.SaveBatch(ctx, u.countryCode, u.year, holidays)
}

func (o *Orchestrator) fail(report *Report, u unit, stage string, err error) {
	report.failed()
	o.logger.WithFields(logrus.Fields{
		"country": u.countryCode,
		"year":    u.year,
		"stage":   stage,
		"code":    types.CodeOf(err),
	}).WithError(err).Error("synchronization unit failed")
}
