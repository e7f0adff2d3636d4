// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"mailcanvas/internal/models"
)

// TemplateStore handles saved email templates in PostgreSQL. Styles and
// canvas elements are stored as JSONB in their wire shape.
type TemplateStore struct {
	db *sql.DB
}

// NewTemplateStore creates a new TemplateStore with the given database connection.
func NewTemplateStore(db *sql.DB) *TemplateStore {
	return &TemplateStore{db: db}
}

// templateColumns lists the columns selected in template queries.
const templateColumns = `id, name, title, template_type, styles, canvas_elements,
	html_content, generated_html, created_at, updated_at`

// scanTemplate scans a template row from the result set.
func scanTemplate(scanner interface{ Scan(...any) error }) (*models.Template, error) {
	var (
		t        models.Template
		id       uuid.UUID
		styles   []byte
		elements []byte
	)
	err := scanner.Scan(
		&id, &t.Name, &t.Title, &t.TemplateType, &styles, &elements,
		&t.HTMLContent, &t.GeneratedHTML, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	t.ID = id.String()
	if err := json.Unmarshal(styles, &t.Styles); err != nil {
		return nil, fmt.Errorf("decode styles: %w", err)
	}
	if err := json.Unmarshal(elements, &t.CanvasElements); err != nil {
		return nil, fmt.Errorf("decode canvas elements: %w", err)
	}
	return &t, nil
}

// Create inserts a template and returns it with its generated ID and
// timestamps.
func (s *TemplateStore) Create(ctx context.Context, t *models.Template) (*models.Template, error) {
	if t.TemplateType == "" {
		t.TemplateType = models.DefaultTemplateType
	}
	if t.CanvasElements == nil {
		t.CanvasElements = []models.StoredElement{}
	}
	styles, err := json.Marshal(t.Styles)
	if err != nil {
		return nil, fmt.Errorf("encode styles: %w", err)
	}
	elements, err := json.Marshal(t.CanvasElements)
	if err != nil {
		return nil, fmt.Errorf("encode canvas elements: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO email_templates (name, title, template_type, styles, canvas_elements,
			html_content, generated_html)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+templateColumns,
		t.Name, t.Title, t.TemplateType, styles, elements, t.HTMLContent, t.GeneratedHTML,
	)
	created, err := scanTemplate(row)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	return created, nil
}

// FindByID retrieves a template by its ID. Returns nil if not found,
// including when id is not a UUID.
func (s *TemplateStore) FindByID(ctx context.Context, id string) (*models.Template, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, uid)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find template by id: %w", err)
	}
	return t, nil
}

// List returns templates newest first, with pagination.
func (s *TemplateStore) List(ctx context.Context, limit, offset int) ([]models.Template, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+templateColumns+`
		FROM email_templates
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		templates = append(templates, *t)
	}
	return templates, rows.Err()
}

// Delete removes a template. It reports whether a row was deleted.
func (s *TemplateStore) Delete(ctx context.Context, id string) (bool, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return false, nil
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM email_templates WHERE id = $1`, uid)
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete template: %w", err)
	}
	return n > 0, nil
}
