// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"casetracker/internal/apperr"
	"casetracker/internal/filter"
	"casetracker/internal/models"
)

// CaseStore handles all case-related database operations.
type CaseStore struct {
	db *sql.DB
}

// NewCaseStore creates a new CaseStore with the given database connection.
func NewCaseStore(db *sql.DB) *CaseStore {
	return &CaseStore{db: db}
}

const caseColumns = `id, notes, medium, customer_time, additional_time, form_fill_time,
	created_at, edited_at, case_id, category_id, created_by_id`

// scanCase scans a row into a Case struct. Durations are stored as seconds.
func scanCase(scanner rowScanner) (*models.Case, error) {
	var (
		c                          models.Case
		medium                     sql.NullString
		customer, additional, form sql.NullFloat64
	)
	err := scanner.Scan(
		&c.ID, &c.Notes, &medium, &customer, &additional, &form,
		&c.CreatedAt, &c.EditedAt, &c.CaseID, &c.CategoryID, &c.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	if medium.Valid {
		m := models.Medium(medium.String)
		c.Medium = &m
	}
	c.CustomerTime = nullDuration(customer)
	c.AdditionalTime = nullDuration(additional)
	c.FormFillTime = nullDuration(form)
	return &c, nil
}

func nullDuration(v sql.NullFloat64) *time.Duration {
	if !v.Valid {
		return nil
	}
	d := models.FromSeconds(v.Float64)
	return &d
}

// secondsArg converts a duration to the value bound for a seconds column.
func secondsArg(d *time.Duration) any {
	if d == nil {
		return nil
	}
	return d.Seconds()
}

func mediumArg(m *models.Medium) any {
	if m == nil {
		return nil
	}
	return string(*m)
}

// wherePredicate renders p as a WHERE clause with positional arguments.
func wherePredicate(p filter.Predicate) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if p.ID != nil {
		add("id = $%d", *p.ID)
	}
	if p.CaseID != nil {
		add("case_id = $%d", *p.CaseID)
	}
	if p.CreatedFrom != nil {
		add("created_at >= $%d", *p.CreatedFrom)
	}
	if p.CreatedTo != nil {
		add("created_at <= $%d", *p.CreatedTo)
	}
	if p.CategoryID != nil {
		add("category_id = $%d", *p.CategoryID)
	}
	if p.Medium != nil {
		add("medium = $%d", string(*p.Medium))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Find returns cases matching p, newest first with ties broken by id
// descending. A limit of 0 returns every match.
func (s *CaseStore) Find(ctx context.Context, p filter.Predicate, limit, offset int) ([]models.Case, error) {
	where, args := wherePredicate(p)
	query := `SELECT ` + caseColumns + ` FROM cases` + where + ` ORDER BY created_at DESC, id DESC`
	if limit > 0 {
		args = append(args, limit, offset)
		query += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find cases: %w", err)
	}
	defer rows.Close()

	items := make([]models.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find cases: %w", err)
	}

	if err := s.loadEditors(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// loadEditors fills EditedBy for every case in items with one query.
func (s *CaseStore) loadEditors(ctx context.Context, items []models.Case) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]int64, len(items))
	pos := make(map[int64]int, len(items))
	for i, c := range items {
		ids[i] = c.ID
		pos[c.ID] = i
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT case_id, user_id FROM case_editors
		WHERE case_id = ANY($1)
		ORDER BY case_id, user_id
	`, ids)
	if err != nil {
		return fmt.Errorf("load case editors: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var caseID, userID int64
		if err := rows.Scan(&caseID, &userID); err != nil {
			return fmt.Errorf("scan case editor: %w", err)
		}
		i := pos[caseID]
		items[i].EditedBy = append(items[i].EditedBy, userID)
	}
	return rows.Err()
}

// FindByID retrieves a case by id. Returns nil if not found.
func (s *CaseStore) FindByID(ctx context.Context, id int64) (*models.Case, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, id)
	c, err := scanCase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find case by id: %w", err)
	}

	items := []models.Case{*c}
	if err := s.loadEditors(ctx, items); err != nil {
		return nil, err
	}
	return &items[0], nil
}

// Count returns the number of cases matching p.
func (s *CaseStore) Count(ctx context.Context, p filter.Predicate) (int64, error) {
	where, args := wherePredicate(p)
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cases`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cases: %w", err)
	}
	return n, nil
}

// TotalsByCategory returns, per category id, the number of cases created in
// [from, to] and the sum of each duration. Categories without matching cases
// are absent from the map. from after to yields an empty map.
func (s *CaseStore) TotalsByCategory(ctx context.Context, from, to time.Time) (map[int64]models.CaseTotals, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_id, COUNT(*),
		       COALESCE(SUM(customer_time), 0),
		       COALESCE(SUM(additional_time), 0),
		       COALESCE(SUM(form_fill_time), 0)
		FROM cases
		WHERE category_id IS NOT NULL AND created_at >= $1 AND created_at <= $2
		GROUP BY category_id
	`, from, to)
	if err != nil {
		return nil, fmt.Errorf("case totals by category: %w", err)
	}
	defer rows.Close()

	totals := make(map[int64]models.CaseTotals)
	for rows.Next() {
		var (
			id                         int64
			t                          models.CaseTotals
			customer, additional, form float64
		)
		if err := rows.Scan(&id, &t.Count, &customer, &additional, &form); err != nil {
			return nil, fmt.Errorf("scan case totals: %w", err)
		}
		t.CustomerTime = models.FromSeconds(customer)
		t.AdditionalTime = models.FromSeconds(additional)
		t.FormFillTime = models.FromSeconds(form)
		totals[id] = t
	}
	return totals, rows.Err()
}

// Create inserts a new case attributed to createdBy (may be nil) and returns
// the stored row.
func (s *CaseStore) Create(ctx context.Context, c *models.Case, createdBy *int64) (*models.Case, error) {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO cases (notes, medium, customer_time, additional_time, form_fill_time,
		                   case_id, category_id, created_by_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+caseColumns,
		c.Notes, mediumArg(c.Medium),
		secondsArg(c.CustomerTime), secondsArg(c.AdditionalTime), secondsArg(c.FormFillTime),
		c.CaseID, c.CategoryID, createdBy,
	)
	created, err := scanCase(row)
	if isForeignKeyViolation(err) {
		return nil, apperr.Validationf("case references a category or user that does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("create case: %w", err)
	}
	return created, nil
}

// Update writes every mutable field of c, bumps edited_at and records
// editor (may be nil) as having edited the case, in one transaction.
func (s *CaseStore) Update(ctx context.Context, c *models.Case, editor *int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		UPDATE cases SET
			notes = $1, medium = $2, customer_time = $3, additional_time = $4,
			form_fill_time = $5, case_id = $6, category_id = $7, edited_at = NOW()
		WHERE id = $8
		RETURNING edited_at
	`, c.Notes, mediumArg(c.Medium),
		secondsArg(c.CustomerTime), secondsArg(c.AdditionalTime), secondsArg(c.FormFillTime),
		c.CaseID, c.CategoryID, c.ID,
	).Scan(&c.EditedAt)
	if err == sql.ErrNoRows {
		return apperr.NotFoundf("case %d does not exist", c.ID)
	}
	if isForeignKeyViolation(err) {
		return apperr.Validationf("case references a category that does not exist")
	}
	if err != nil {
		return fmt.Errorf("update case: %w", err)
	}

	if editor != nil {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO case_editors (case_id, user_id) VALUES ($1, $2)
			ON CONFLICT DO NOTHING
		`, c.ID, *editor)
		if isForeignKeyViolation(err) {
			return apperr.Validationf("user %d does not exist", *editor)
		}
		if err != nil {
			return fmt.Errorf("record case editor: %w", err)
		}
		if !containsID(c.EditedBy, *editor) {
			c.EditedBy = append(c.EditedBy, *editor)
		}
	}

	return tx.Commit()
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Delete removes a case by id. Editor links are removed by cascade.
func (s *CaseStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM cases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete case: %w", err)
	}
	if n == 0 {
		return apperr.NotFoundf("case %d does not exist", id)
	}
	return nil
}

// ClearNotesBefore nulls the notes of every case last edited before cutoff
// and returns how many cases were cleared. edited_at is left untouched.
func (s *CaseStore) ClearNotesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE cases SET notes = NULL
		WHERE notes IS NOT NULL AND edited_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("clear old notes: %w", err)
	}
	return res.RowsAffected()
}
