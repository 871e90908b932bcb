// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package filter turns client query parameters into a validated case
// predicate and pagination window. Only a closed set of parameter names is
// recognised; each name maps to its own Param variant with its own parser.
package filter

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"casetracker/internal/apperr"
	"casetracker/internal/models"
)

// DefaultPerPage is the page size used when per-page is not supplied.
const DefaultPerPage = 100

// Predicate restricts which cases a query matches. Nil fields match
// everything. Time bounds are inclusive.
type Predicate struct {
	ID          *int64
	CaseID      *int64
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	CategoryID  *int64
	Medium      *models.Medium
}

// Window is a page of results. PerPage 0 means unbounded.
type Window struct {
	PerPage int
	Page    int
}

// Offset is the number of matching rows skipped before the page starts.
func (w Window) Offset() int {
	if w.PerPage == 0 {
		return 0
	}
	return w.PerPage * (w.Page - 1)
}

// Limit is the number of rows to fetch: one more than the page size so the
// caller can tell whether another page exists. 0 means no limit.
func (w Window) Limit() int {
	if w.PerPage == 0 {
		return 0
	}
	return w.PerPage + 1
}

// Query is a validated predicate plus pagination window.
type Query struct {
	Predicate
	Window
}

// CategoryFinder resolves category ids. FindByID returns nil, nil when the
// category does not exist.
type CategoryFinder interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

// Build parses params and returns the query they describe. Any unknown key,
// malformed value or reference to a missing category fails the whole call
// with an apperr.ErrValidation error; nothing is partially applied.
func Build(ctx context.Context, params map[string]string, categories CategoryFinder) (Query, error) {
	parsed, err := Parse(params)
	if err != nil {
		return Query{}, err
	}

	q := Query{Window: Window{PerPage: DefaultPerPage, Page: 1}}
	for _, p := range parsed {
		if c, ok := p.(ByCategory); ok {
			cat, err := categories.FindByID(ctx, c.CategoryID)
			if err != nil {
				return Query{}, fmt.Errorf("resolve category-id: %w", err)
			}
			if cat == nil {
				return Query{}, apperr.Validationf("category %d does not exist", c.CategoryID)
			}
		}
		p.apply(&q)
	}
	// Offset plus Limit is PerPage*Page + 1 and must stay representable.
	if q.PerPage > 0 && q.PerPage > (math.MaxInt-1)/q.Page {
		return Query{}, apperr.Validationf("invalid pagination: page %d with per-page %d is out of range", q.Page, q.PerPage)
	}
	return q, nil
}

// Parse converts raw parameters into their typed variants without touching
// any store. Keys are processed in sorted order so the reported error is
// deterministic.
func Parse(params map[string]string) ([]Param, error) {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Param, 0, len(keys))
	for _, k := range keys {
		parse, ok := parsers[k]
		if !ok {
			return nil, apperr.Validationf("unknown parameter %q", k)
		}
		p, err := parse(params[k])
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Keys returns the recognised parameter names in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(parsers))
	for k := range parsers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
