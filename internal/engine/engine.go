// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package engine renders saved templates into downloadable standalone
// documents. Rendering is deterministic in the stored record, so results
// are cached in memory (L1) and, when configured, in Valkey (L2).
package engine

import (
	"context"
	"fmt"
	"time"

	"mailcanvas/internal/cache"
	"mailcanvas/internal/canvas"
	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/models"
	"mailcanvas/internal/slug"
)

// TemplateFinder loads saved templates. Both the PostgreSQL and MongoDB
// stores satisfy it.
type TemplateFinder interface {
	FindByID(ctx context.Context, id string) (*models.Template, error)
}

// SharedCache is the L2 document cache.
type SharedCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, doc []byte)
}

// Download is a rendered template ready to be sent as an attachment.
type Download struct {
	Filename string
	Body     []byte
	Template *models.Template
}

// Engine renders saved templates.
type Engine struct {
	templates TemplateFinder
	gen       *htmlgen.Generator
	l1        *documentCache
	l2        SharedCache
}

// New creates an engine with an empty L1 cache.
func New(templates TemplateFinder, gen *htmlgen.Generator) *Engine {
	return &Engine{
		templates: templates,
		gen:       gen,
		l1:        newDocumentCache(),
	}
}

// SetSharedCache enables the L2 cache. Call after New when Valkey is available.
func (e *Engine) SetSharedCache(l2 SharedCache) {
	e.l2 = l2
}

// Invalidate drops a template from the L1 cache. L2 keys carry the update
// time and need no invalidation.
func (e *Engine) Invalidate(id string) {
	e.l1.invalidate(id)
}

// Render returns the standalone document for a template. The stored
// fragment is wrapped as saved, so the download matches the generated HTML
// whatever escaping mode produced it. Records without a fragment fall back
// to their generated HTML, then to rendering the stored elements.
func (e *Engine) Render(t *models.Template) []byte {
	switch {
	case t.HTMLContent != "":
		return []byte(htmlgen.Document(t.HTMLContent))
	case len(t.CanvasElements) == 0 && t.GeneratedHTML != "":
		return []byte(t.GeneratedHTML)
	}
	return []byte(e.gen.Document(t.Elements()))
}

// Download loads a template and renders it, consulting L1 then L2.
// A missing template yields canvas.ErrNotFound.
func (e *Engine) Download(ctx context.Context, id string) (*Download, error) {
	t, err := e.templates.FindByID(ctx, id)
	if err != nil {
		return nil, &canvas.IOError{Op: "load template", Err: err}
	}
	if t == nil {
		return nil, fmt.Errorf("template %q: %w", id, canvas.ErrNotFound)
	}

	return &Download{
		Filename: slug.Filename(t.Name),
		Body:     e.cached(ctx, t),
		Template: t,
	}, nil
}

func (e *Engine) cached(ctx context.Context, t *models.Template) []byte {
	version := t.UpdatedAt
	if version.IsZero() {
		version = time.Unix(0, 0)
	}

	if doc := e.l1.get(t.ID, version); doc != nil {
		return doc
	}

	key := cache.DocumentKey(t.ID, version)
	if e.l2 != nil {
		if doc, ok := e.l2.Get(ctx, key); ok {
			e.l1.put(t.ID, version, doc)
			return doc
		}
	}

	doc := e.Render(t)
	e.l1.put(t.ID, version, doc)
	if e.l2 != nil {
		e.l2.Set(ctx, key, doc)
	}
	return doc
}
