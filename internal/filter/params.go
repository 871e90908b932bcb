// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package filter

import (
	"strconv"
	"strings"
	"time"

	"casetracker/internal/apperr"
	"casetracker/internal/models"
)

// Param is one recognised query parameter with its typed value. The set of
// implementations is closed: only this package can add variants.
type Param interface {
	Key() string
	apply(q *Query)
}

// ByID matches the case with the given id.
type ByID struct{ ID int64 }

// ByCaseID matches cases carrying the given external correlation id.
type ByCaseID struct{ CaseID int64 }

// TimeStart is the inclusive lower bound on created_at.
type TimeStart struct{ At time.Time }

// TimeEnd is the inclusive upper bound on created_at.
type TimeEnd struct{ At time.Time }

// ByCategory matches cases filed directly under the category. Cases in
// subcategories are not included.
type ByCategory struct{ CategoryID int64 }

// ByMedium matches cases received through the given medium.
type ByMedium struct{ Medium models.Medium }

// PerPage sets the page size; 0 returns every match.
type PerPage struct{ N int }

// Page selects the 1-based page.
type Page struct{ N int }

func (ByID) Key() string       { return "id" }
func (ByCaseID) Key() string   { return "case-id" }
func (TimeStart) Key() string  { return "time-start" }
func (TimeEnd) Key() string    { return "time-end" }
func (ByCategory) Key() string { return "category-id" }
func (ByMedium) Key() string   { return "medium" }
func (PerPage) Key() string    { return "per-page" }
func (Page) Key() string       { return "page" }

func (p ByID) apply(q *Query)       { q.ID = &p.ID }
func (p ByCaseID) apply(q *Query)   { q.CaseID = &p.CaseID }
func (p TimeStart) apply(q *Query)  { q.CreatedFrom = &p.At }
func (p TimeEnd) apply(q *Query)    { q.CreatedTo = &p.At }
func (p ByCategory) apply(q *Query) { q.CategoryID = &p.CategoryID }
func (p ByMedium) apply(q *Query)   { q.Medium = &p.Medium }
func (p PerPage) apply(q *Query)    { q.PerPage = p.N }
func (p Page) apply(q *Query)       { q.Page = p.N }

var parsers = map[string]func(string) (Param, error){
	"id": func(v string) (Param, error) {
		n, err := parseInt64("id", v)
		return ByID{ID: n}, err
	},
	"case-id": func(v string) (Param, error) {
		n, err := parseInt64("case-id", v)
		return ByCaseID{CaseID: n}, err
	},
	"time-start": func(v string) (Param, error) {
		t, err := ParseTime(v)
		if err != nil {
			return nil, apperr.Validationf("invalid time-start: %v", err)
		}
		return TimeStart{At: t}, nil
	},
	"time-end": func(v string) (Param, error) {
		t, err := ParseTime(v)
		if err != nil {
			return nil, apperr.Validationf("invalid time-end: %v", err)
		}
		return TimeEnd{At: t}, nil
	},
	"category-id": func(v string) (Param, error) {
		n, err := parseInt64("category-id", v)
		return ByCategory{CategoryID: n}, err
	},
	"medium": func(v string) (Param, error) {
		m, err := models.ParseMedium(v)
		if err != nil {
			return nil, apperr.Validationf("%v", err)
		}
		return ByMedium{Medium: m}, nil
	},
	"per-page": func(v string) (Param, error) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, apperr.Validationf("invalid per-page %q: must be a non-negative integer", v)
		}
		return PerPage{N: n}, nil
	},
	"page": func(v string) (Param, error) {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 1 {
			return nil, apperr.Validationf("invalid page %q: must be a positive integer", v)
		}
		return Page{N: n}, nil
	},
}

func parseInt64(key, v string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, apperr.Validationf("invalid %s %q: must be an integer", key, v)
	}
	return n, nil
}

// timeLayouts are the ISO-8601 renderings accepted from clients. Layouts
// without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTime parses an ISO-8601 instant.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, &time.ParseError{Layout: time.RFC3339, Value: s, Message: ": not an ISO-8601 time"}
}
