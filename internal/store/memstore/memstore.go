// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package memstore is an in-memory implementation of the category and case
// stores with the same ordering, filtering and error semantics as the
// PostgreSQL stores. It backs service and handler tests.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"casetracker/internal/apperr"
	"casetracker/internal/filter"
	"casetracker/internal/models"
)

// Store holds categories and cases behind one lock.
type Store struct {
	mu         sync.RWMutex
	categories []models.Category
	cases      map[int64]models.Case
	nextCat    int64
	nextCase   int64

	// Now stamps created_at and edited_at. Tests may replace it.
	Now func() time.Time
}

// New returns an empty store.
func New() *Store {
	return &Store{cases: make(map[int64]models.Case), Now: time.Now}
}

// Categories returns the category view of the store.
func (s *Store) Categories() *CategoryStore { return &CategoryStore{s: s} }

// Cases returns the case view of the store.
func (s *Store) Cases() *CaseStore { return &CaseStore{s: s} }

// CategoryStore is the category view of a Store.
type CategoryStore struct{ s *Store }

// List returns every category ordered by id.
func (c *CategoryStore) List(_ context.Context) ([]models.Category, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	out := make([]models.Category, len(c.s.categories))
	copy(out, c.s.categories)
	return out, nil
}

// FindByID returns the category or nil if it does not exist.
func (c *CategoryStore) FindByID(_ context.Context, id int64) (*models.Category, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	if cat, ok := c.s.findCategory(id); ok {
		return &cat, nil
	}
	return nil, nil
}

// Create adds a category under parentID with its level computed from the
// parent.
func (c *CategoryStore) Create(_ context.Context, name string, parentID *int64) (*models.Category, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	level := 1
	if parentID != nil {
		parent, ok := c.s.findCategory(*parentID)
		if !ok {
			return nil, apperr.Validationf("parent category %d does not exist", *parentID)
		}
		level = parent.Level + 1
	}
	c.s.nextCat++
	cat := models.Category{ID: c.s.nextCat, Name: name, ParentID: copyPtr(parentID), Level: level}
	c.s.categories = append(c.s.categories, cat)
	return &cat, nil
}

// Add inserts a category verbatim, including its id and parent link. It
// performs no checks so tests can build inconsistent data.
func (c *CategoryStore) Add(cat models.Category) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	c.s.categories = append(c.s.categories, cat)
	sort.Slice(c.s.categories, func(i, j int) bool { return c.s.categories[i].ID < c.s.categories[j].ID })
	if cat.ID > c.s.nextCat {
		c.s.nextCat = cat.ID
	}
}

// Delete removes a category unless a case or subcategory references it.
func (c *CategoryStore) Delete(_ context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	idx := -1
	for i, cat := range c.s.categories {
		if cat.ID == id {
			idx = i
		}
		if cat.ParentID != nil && *cat.ParentID == id {
			return apperr.Validationf("category %d is still referenced by cases or subcategories", id)
		}
	}
	if idx < 0 {
		return apperr.NotFoundf("category %d does not exist", id)
	}
	for _, cs := range c.s.cases {
		if cs.CategoryID != nil && *cs.CategoryID == id {
			return apperr.Validationf("category %d is still referenced by cases or subcategories", id)
		}
	}
	c.s.categories = append(c.s.categories[:idx], c.s.categories[idx+1:]...)
	return nil
}

func (s *Store) findCategory(id int64) (models.Category, bool) {
	for _, cat := range s.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return models.Category{}, false
}

// CaseStore is the case view of a Store.
type CaseStore struct{ s *Store }

// Find returns cases matching p, newest first with ties broken by id
// descending. A limit of 0 returns every match.
func (c *CaseStore) Find(_ context.Context, p filter.Predicate, limit, offset int) ([]models.Case, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	matches := c.s.match(p)
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})

	if limit > 0 {
		if offset >= len(matches) {
			return []models.Case{}, nil
		}
		end := len(matches)
		if limit < end-offset {
			end = offset + limit
		}
		matches = matches[offset:end]
	}
	return matches, nil
}

// FindByID returns the case or nil if it does not exist.
func (c *CaseStore) FindByID(_ context.Context, id int64) (*models.Case, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	cs, ok := c.s.cases[id]
	if !ok {
		return nil, nil
	}
	cs = clone(cs)
	return &cs, nil
}

// Count returns the number of cases matching p.
func (c *CaseStore) Count(_ context.Context, p filter.Predicate) (int64, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return int64(len(c.s.match(p))), nil
}

// TotalsByCategory aggregates cases created in [from, to] per category.
func (c *CaseStore) TotalsByCategory(_ context.Context, from, to time.Time) (map[int64]models.CaseTotals, error) {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()

	totals := make(map[int64]models.CaseTotals)
	for _, cs := range c.s.match(filter.Predicate{CreatedFrom: &from, CreatedTo: &to}) {
		if cs.CategoryID == nil {
			continue
		}
		t := totals[*cs.CategoryID]
		t.Add(models.CaseTotals{
			Count:          1,
			CustomerTime:   deref(cs.CustomerTime),
			AdditionalTime: deref(cs.AdditionalTime),
			FormFillTime:   deref(cs.FormFillTime),
		})
		totals[*cs.CategoryID] = t
	}
	return totals, nil
}

// Create stores a copy of cs with a new id and timestamps.
func (c *CaseStore) Create(_ context.Context, cs *models.Case, createdBy *int64) (*models.Case, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if err := c.s.checkCategory(cs.CategoryID); err != nil {
		return nil, err
	}
	c.s.nextCase++
	stored := clone(*cs)
	stored.ID = c.s.nextCase
	stored.CreatedAt = c.s.Now()
	stored.EditedAt = stored.CreatedAt
	stored.CreatedBy = copyPtr(createdBy)
	stored.EditedBy = nil
	c.s.cases[stored.ID] = stored

	out := clone(stored)
	return &out, nil
}

// Put stores cs verbatim, keeping its id and timestamps. It is meant for
// test fixtures that need control over created_at.
func (c *CaseStore) Put(cs models.Case) models.Case {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if cs.ID == 0 {
		c.s.nextCase++
		cs.ID = c.s.nextCase
	} else if cs.ID > c.s.nextCase {
		c.s.nextCase = cs.ID
	}
	if cs.CreatedAt.IsZero() {
		cs.CreatedAt = c.s.Now()
	}
	if cs.EditedAt.IsZero() {
		cs.EditedAt = cs.CreatedAt
	}
	c.s.cases[cs.ID] = clone(cs)
	return cs
}

// Update overwrites the mutable fields of the stored case and records
// editor.
func (c *CaseStore) Update(_ context.Context, cs *models.Case, editor *int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	stored, ok := c.s.cases[cs.ID]
	if !ok {
		return apperr.NotFoundf("case %d does not exist", cs.ID)
	}
	if err := c.s.checkCategory(cs.CategoryID); err != nil {
		return err
	}

	stored.Notes = copyPtr(cs.Notes)
	stored.Medium = copyPtr(cs.Medium)
	stored.CustomerTime = copyPtr(cs.CustomerTime)
	stored.AdditionalTime = copyPtr(cs.AdditionalTime)
	stored.FormFillTime = copyPtr(cs.FormFillTime)
	stored.CaseID = copyPtr(cs.CaseID)
	stored.CategoryID = copyPtr(cs.CategoryID)
	stored.EditedAt = c.s.Now()
	if editor != nil && !contains(stored.EditedBy, *editor) {
		stored.EditedBy = append(stored.EditedBy, *editor)
	}
	c.s.cases[cs.ID] = stored

	cs.EditedAt = stored.EditedAt
	cs.EditedBy = append([]int64(nil), stored.EditedBy...)
	return nil
}

// Delete removes a case by id.
func (c *CaseStore) Delete(_ context.Context, id int64) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if _, ok := c.s.cases[id]; !ok {
		return apperr.NotFoundf("case %d does not exist", id)
	}
	delete(c.s.cases, id)
	return nil
}

// ClearNotesBefore nulls notes on cases last edited before cutoff.
func (c *CaseStore) ClearNotesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	var n int64
	for id, cs := range c.s.cases {
		if cs.Notes != nil && cs.EditedAt.Before(cutoff) {
			cs.Notes = nil
			c.s.cases[id] = cs
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored cases.
func (c *CaseStore) Len() int {
	c.s.mu.RLock()
	defer c.s.mu.RUnlock()
	return len(c.s.cases)
}

func (s *Store) checkCategory(id *int64) error {
	if id == nil {
		return nil
	}
	if _, ok := s.findCategory(*id); !ok {
		return apperr.Validationf("case references a category or user that does not exist")
	}
	return nil
}

// match returns copies of every case satisfying p, in no particular order.
func (s *Store) match(p filter.Predicate) []models.Case {
	out := make([]models.Case, 0)
	for _, cs := range s.cases {
		if matches(cs, p) {
			out = append(out, clone(cs))
		}
	}
	return out
}

func matches(cs models.Case, p filter.Predicate) bool {
	switch {
	case p.ID != nil && cs.ID != *p.ID:
		return false
	case p.CaseID != nil && (cs.CaseID == nil || *cs.CaseID != *p.CaseID):
		return false
	case p.CreatedFrom != nil && cs.CreatedAt.Before(*p.CreatedFrom):
		return false
	case p.CreatedTo != nil && cs.CreatedAt.After(*p.CreatedTo):
		return false
	case p.CategoryID != nil && (cs.CategoryID == nil || *cs.CategoryID != *p.CategoryID):
		return false
	case p.Medium != nil && (cs.Medium == nil || *cs.Medium != *p.Medium):
		return false
	}
	return true
}

func clone(cs models.Case) models.Case {
	cs.Notes = copyPtr(cs.Notes)
	cs.Medium = copyPtr(cs.Medium)
	cs.CustomerTime = copyPtr(cs.CustomerTime)
	cs.AdditionalTime = copyPtr(cs.AdditionalTime)
	cs.FormFillTime = copyPtr(cs.FormFillTime)
	cs.CaseID = copyPtr(cs.CaseID)
	cs.CategoryID = copyPtr(cs.CategoryID)
	cs.CreatedBy = copyPtr(cs.CreatedBy)
	cs.EditedBy = append([]int64(nil), cs.EditedBy...)
	return cs
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func deref(d *time.Duration) time.Duration {
	if d == nil {
		return 0
	}
	return *d
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
