// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides the server-rendered editor pages: the template
// catalog, the preview page and the code page. It supports full-page and
// HTMX partial rendering, detected via the HX-Request header.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

//go:embed templates/*.html
var pagesFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title     string         // Page title for <title> tag
	Section   string         // Active navigation entry ("catalog", "preview", "code")
	SessionID string         // Editor session shown on the page, if any
	Data      map[string]any // Page-specific data
}

// Renderer parses and executes the page templates.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New parses every page template from the embedded filesystem, each
// paired with the base layout.
func New() (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target any) string {
				if fmt.Sprint(current) == fmt.Sprint(target) {
					return "active"
				}
				return ""
			},
		},
	}

	entries, err := pagesFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" {
			continue
		}
		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			pagesFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Page renders a full page, or only its "content" block for HTMX requests.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	execName := "base.html"
	if isHTMX(r) {
		execName = "content"
	}
	if err := executeTemplate(w, tmpl, execName, data); err != nil {
		slog.Error("page render failed", "page", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func executeTemplate(w io.Writer, tmpl *template.Template, name string, data any) error {
	return tmpl.ExecuteTemplate(w, name, data)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
