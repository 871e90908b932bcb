// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package cases implements listing, validation and deletion of cases.
// Create and Update validate and fill a case but do not persist it;
// storing the result and recording who made the change is up to the
// caller.
package cases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"casetracker/internal/apperr"
	"casetracker/internal/filter"
	"casetracker/internal/models"
	"casetracker/internal/tree"
)

// CategoryStore is the category lookup the service needs.
type CategoryStore interface {
	List(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id int64) (*models.Category, error)
}

// CaseStore is the case persistence the service needs.
type CaseStore interface {
	Find(ctx context.Context, p filter.Predicate, limit, offset int) ([]models.Case, error)
	FindByID(ctx context.Context, id int64) (*models.Case, error)
	Delete(ctx context.Context, id int64) error
}

// Service is the case query service.
type Service struct {
	categories CategoryStore
	cases      CaseStore
}

// NewService creates a Service.
func NewService(categories CategoryStore, cases CaseStore) *Service {
	return &Service{categories: categories, cases: cases}
}

// View is the client-facing shape of a case. Durations are in seconds.
type View struct {
	ID                 int64          `json:"id"`
	Notes              *string        `json:"notes"`
	Medium             *models.Medium `json:"medium"`
	CustomerTime       *float64       `json:"customer_time"`
	AdditionalTime     *float64       `json:"additional_time"`
	FormFillTime       *float64       `json:"form_fill_time"`
	CreatedAt          time.Time      `json:"created_at"`
	EditedAt           time.Time      `json:"edited_at"`
	CaseID             *int64         `json:"case_id"`
	CategoryID         *int64         `json:"category_id"`
	CategoryName       *string        `json:"category_name"`
	ParentCategoryName *string        `json:"parent_category_name"`
	CreatedBy          *int64         `json:"created_by"`
	EditedBy           []int64        `json:"edited_by"`
}

// Page is one page of List results.
type Page struct {
	ResultCount int    `json:"result_count"`
	HasMore     bool   `json:"has_more"`
	Cases       []View `json:"cases"`
}

// List returns the page of cases selected by params. See filter.Build for
// the accepted parameters.
func (s *Service) List(ctx context.Context, params map[string]string) (*Page, error) {
	q, err := filter.Build(ctx, params, s.categories)
	if err != nil {
		return nil, err
	}

	rows, err := s.cases.Find(ctx, q.Predicate, q.Limit(), q.Offset())
	if err != nil {
		return nil, fmt.Errorf("find cases: %w", err)
	}

	hasMore := false
	if q.PerPage > 0 && len(rows) > q.PerPage {
		hasMore = true
		rows = rows[:q.PerPage]
	}

	byID, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]View, len(rows))
	for i, c := range rows {
		views[i] = newView(c, byID)
	}
	return &Page{ResultCount: len(views), HasMore: hasMore, Cases: views}, nil
}

// Describe returns the view of a single case with its category names
// resolved.
func (s *Service) Describe(ctx context.Context, c models.Case) (View, error) {
	byID, err := s.categoryIndex(ctx)
	if err != nil {
		return View{}, err
	}
	return newView(c, byID), nil
}

func (s *Service) categoryIndex(ctx context.Context) (map[int64]models.Category, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	byID := make(map[int64]models.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	return byID, nil
}

// newView converts c for output. A category id that no longer resolves
// yields null names.
func newView(c models.Case, byID map[int64]models.Category) View {
	v := View{
		ID:             c.ID,
		Notes:          c.Notes,
		Medium:         c.Medium,
		CustomerTime:   models.Seconds(c.CustomerTime),
		AdditionalTime: models.Seconds(c.AdditionalTime),
		FormFillTime:   models.Seconds(c.FormFillTime),
		CreatedAt:      c.CreatedAt,
		EditedAt:       c.EditedAt,
		CaseID:         c.CaseID,
		CategoryID:     c.CategoryID,
		CreatedBy:      c.CreatedBy,
		EditedBy:       c.EditedBy,
	}
	if v.EditedBy == nil {
		v.EditedBy = []int64{}
	}
	if c.CategoryID == nil {
		return v
	}
	cat, ok := byID[*c.CategoryID]
	if !ok {
		return v
	}
	name := cat.Name
	v.CategoryName = &name
	if cat.ParentID != nil {
		if parent, ok := byID[*cat.ParentID]; ok {
			pname := parent.Name
			v.ParentCategoryName = &pname
		}
	}
	return v
}

// Create validates raw and returns a new, unsaved case built from it.
// Durations that are not supplied start at zero.
func (s *Service) Create(ctx context.Context, raw map[string]json.RawMessage) (*models.Case, error) {
	f, err := ParseFields(raw)
	if err != nil {
		return nil, err
	}

	var zero time.Duration
	c := &models.Case{
		CustomerTime:   ptr(zero),
		AdditionalTime: ptr(zero),
		FormFillTime:   ptr(zero),
	}
	if err := s.fill(ctx, c, f); err != nil {
		return nil, err
	}
	return c, nil
}

// Update validates raw and returns the case with the given id with raw
// applied. The stored case is not modified.
func (s *Service) Update(ctx context.Context, id int64, raw map[string]json.RawMessage) (*models.Case, error) {
	f, err := ParseFields(raw)
	if err != nil {
		return nil, err
	}

	c, err := s.cases.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}
	if c == nil {
		return nil, apperr.NotFoundf("case %d does not exist", id)
	}
	if err := s.fill(ctx, c, f); err != nil {
		return nil, err
	}
	return c, nil
}

// fill applies the supplied fields to c. On error c is left unchanged.
func (s *Service) fill(ctx context.Context, c *models.Case, f Fields) error {
	if f.CategoryID.Set && f.CategoryID.Value != nil {
		cat, err := s.categories.FindByID(ctx, *f.CategoryID.Value)
		if err != nil {
			return fmt.Errorf("resolve category_id: %w", err)
		}
		if cat == nil {
			return apperr.Validationf("category %d does not exist", *f.CategoryID.Value)
		}
	}

	if f.Notes.Set {
		c.Notes = f.Notes.Value
	}
	if f.Medium.Set {
		c.Medium = f.Medium.Value
	}
	if f.CategoryID.Set {
		c.CategoryID = f.CategoryID.Value
	}
	if f.CaseID.Set {
		c.CaseID = f.CaseID.Value
	}
	setDuration(&c.CustomerTime, f.CustomerTime)
	setDuration(&c.AdditionalTime, f.AdditionalTime)
	setDuration(&c.FormFillTime, f.FormFillTime)
	return nil
}

// setDuration writes a seconds field into dst. Null means zero.
func setDuration(dst **time.Duration, f Field[float64]) {
	if !f.Set {
		return
	}
	var d time.Duration
	if f.Value != nil {
		d = models.FromSeconds(*f.Value)
	}
	*dst = &d
}

// Delete removes the case with the given id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	c, err := s.cases.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("find case: %w", err)
	}
	if c == nil {
		return apperr.NotFoundf("case %d does not exist", id)
	}
	return s.cases.Delete(ctx, id)
}

// Categories returns the two-level category listing.
func (s *Service) Categories(ctx context.Context) ([]tree.Root, error) {
	cats, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return tree.Nested(cats)
}

func ptr[T any](v T) *T { return &v }
