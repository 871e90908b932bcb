// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package stats aggregates cases over the category forest and over
// fixed-length time buckets.
package stats

import (
	"context"
	"fmt"
	"math"
	"time"

	"casetracker/internal/apperr"
	"casetracker/internal/filter"
	"casetracker/internal/models"
	"casetracker/internal/tree"
)

// CategoryLister lists every category.
type CategoryLister interface {
	List(ctx context.Context) ([]models.Category, error)
}

// CaseCounter counts and sums cases.
type CaseCounter interface {
	Count(ctx context.Context, p filter.Predicate) (int64, error)
	TotalsByCategory(ctx context.Context, from, to time.Time) (map[int64]models.CaseTotals, error)
}

// Engine computes case statistics.
type Engine struct {
	categories CategoryLister
	cases      CaseCounter
}

// NewEngine creates an Engine.
func NewEngine(categories CategoryLister, cases CaseCounter) *Engine {
	return &Engine{categories: categories, cases: cases}
}

// CategoryStats is the rollup for one category: its own cases plus those
// of every descendant. Durations are in seconds.
type CategoryStats struct {
	CategoryID     int64           `json:"category_id"`
	CategoryName   string          `json:"category_name"`
	Count          int64           `json:"count"`
	CustomerTime   float64         `json:"customer_time"`
	AdditionalTime float64         `json:"additional_time"`
	FormFillTime   float64         `json:"form_fill_time"`
	Subcategories  []CategoryStats `json:"subcategories"`
}

// ByCategory returns the rollup forest for cases created in [start, end].
// When start is after end every total is zero.
func (e *Engine) ByCategory(ctx context.Context, start, end time.Time) ([]CategoryStats, error) {
	cats, err := e.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	roots, err := tree.Build(cats)
	if err != nil {
		return nil, err
	}

	totals, err := e.cases.TotalsByCategory(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}

	out := make([]CategoryStats, len(roots))
	for i, r := range roots {
		out[i], _ = rollup(r, totals)
	}
	return out, nil
}

// rollup computes n's stats post-order and returns them with the raw
// totals so parents can sum without float drift.
func rollup(n *tree.Node, direct map[int64]models.CaseTotals) (CategoryStats, models.CaseTotals) {
	sum := direct[n.ID]
	subs := make([]CategoryStats, len(n.Children))
	for i, child := range n.Children {
		var childTotals models.CaseTotals
		subs[i], childTotals = rollup(child, direct)
		sum.Add(childTotals)
	}
	return CategoryStats{
		CategoryID:     n.ID,
		CategoryName:   n.Name,
		Count:          sum.Count,
		CustomerTime:   sum.CustomerTime.Seconds(),
		AdditionalTime: sum.AdditionalTime.Seconds(),
		FormFillTime:   sum.FormFillTime.Seconds(),
		Subcategories:  subs,
	}, sum
}

// Period is one time bucket. Start and End are reported as computed, so
// End precedes Start when the step is negative.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Count int64     `json:"count"`
}

// Periods splits time into count buckets of length delta beginning at
// start and counts the cases created in each. A bucket's bounds are
// ordered before querying, so a negative delta walks backwards in time.
func (e *Engine) Periods(ctx context.Context, start time.Time, delta time.Duration, count int) ([]Period, error) {
	if count < 0 || count > MaxIntervals {
		return nil, apperr.Validationf("invalid intervals %d: must be between 0 and %d", count, MaxIntervals)
	}
	if count > 0 && (delta > math.MaxInt64/time.Duration(count) || delta < -math.MaxInt64/time.Duration(count)) {
		return nil, apperr.Validationf("invalid delta %v: %d intervals overflow the time range", delta, count)
	}

	out := make([]Period, 0, count)
	for i := 0; i < count; i++ {
		a := start.Add(delta * time.Duration(i))
		b := a.Add(delta)
		lo, hi := a, b
		if hi.Before(lo) {
			lo, hi = hi, lo
		}
		n, err := e.cases.Count(ctx, filter.Predicate{CreatedFrom: &lo, CreatedTo: &hi})
		if err != nil {
			return nil, fmt.Errorf("count period %d: %w", i, err)
		}
		out = append(out, Period{Start: a, End: b, Count: n})
	}
	return out, nil
}

// MediumCounts is the number of cases received through each channel.
type MediumCounts struct {
	Phone int64 `json:"phone"`
	Email int64 `json:"email"`
}

// MediumCounts counts cases per medium created in [start, end].
func (e *Engine) MediumCounts(ctx context.Context, start, end time.Time) (*MediumCounts, error) {
	count := func(m models.Medium) (int64, error) {
		n, err := e.cases.Count(ctx, filter.Predicate{CreatedFrom: &start, CreatedTo: &end, Medium: &m})
		if err != nil {
			return 0, fmt.Errorf("count %s cases: %w", m, err)
		}
		return n, nil
	}

	phone, err := count(models.MediumPhone)
	if err != nil {
		return nil, err
	}
	email, err := count(models.MediumEmail)
	if err != nil {
		return nil, err
	}
	return &MediumCounts{Phone: phone, Email: email}, nil
}
