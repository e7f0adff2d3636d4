package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"mailcanvas/internal/catalog"
	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/models"
)

// Seed populates an empty template table with one saved template per
// catalog entry, rendered with gen, so a fresh development install has
// something to download. The entries are written in one transaction.
func Seed(ctx context.Context, db *sql.DB, cat *catalog.Catalog, gen *htmlgen.Generator) error {
	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM email_templates").Scan(&count); err != nil {
		return fmt.Errorf("seed check templates: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	for _, entry := range cat.List() {
		styles, err := json.Marshal(entry.Styles)
		if err != nil {
			return fmt.Errorf("seed marshal styles: %w", err)
		}
		elements, err := json.Marshal(models.NewStoredElements(entry.Elements))
		if err != nil {
			return fmt.Errorf("seed marshal elements: %w", err)
		}
		fragment := gen.Fragment(entry.Elements)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO email_templates (name, title, template_type, styles, canvas_elements, html_content, generated_html)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, entry.Name, entry.Name, entry.ID, styles, elements, fragment, htmlgen.Document(fragment))
		if err != nil {
			return fmt.Errorf("seed insert %s: %w", entry.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	slog.Info("database seeded with catalog templates", "count", len(cat.List()))
	return nil
}
