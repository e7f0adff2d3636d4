package handlers

import (
	"errors"
	"html"
	"html/template"
	"log/slog"
	"net/http"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/editor"
	"mailcanvas/internal/render"
)

// Pages groups the server-rendered editor pages.
type Pages struct {
	editor   *Editor
	renderer *render.Renderer
}

// NewPages creates the page handler group. Sessions are resolved the same
// way as by the JSON endpoints of ed.
func NewPages(ed *Editor, renderer *render.Renderer) *Pages {
	return &Pages{editor: ed, renderer: renderer}
}

// Catalog renders the starter template picker.
func (p *Pages) Catalog(w http.ResponseWriter, r *http.Request) {
	p.renderer.Page(w, r, "catalog", &render.PageData{
		Title:   "Templates",
		Section: "catalog",
		Data:    map[string]any{"Entries": p.editor.manager.Catalog().List()},
	})
}

// Preview renders the standalone document in a desktop or mobile frame.
// The "device" query parameter switches the frame.
func (p *Pages) Preview(w http.ResponseWriter, r *http.Request) {
	s, ok := p.session(w, r)
	if !ok {
		return
	}
	if d := r.URL.Query().Get("device"); d != "" {
		if err := s.SetDevice(editor.Device(d)); err != nil {
			http.Error(w, "Unknown device", http.StatusBadRequest)
			return
		}
	}
	v, err := s.SetView(editor.ViewPreview)
	if err != nil {
		slog.Error("preview view failed", "session", s.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	p.renderer.Page(w, r, "preview", &render.PageData{
		Title:     "Preview",
		Section:   "preview",
		SessionID: s.ID,
		Data: map[string]any{
			"Device":     string(v.Device),
			"Document":   v.Document,
			"FrameWidth": frameWidth(v.Device),
		},
	})
}

// Code renders the formatted document with syntax highlighting.
func (p *Pages) Code(w http.ResponseWriter, r *http.Request) {
	s, ok := p.session(w, r)
	if !ok {
		return
	}
	v, err := s.SetView(editor.ViewCode)
	if err != nil {
		slog.Error("code view failed", "session", s.ID, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	highlighted := v.Highlighted
	if highlighted == "" {
		highlighted = "<pre>" + html.EscapeString(v.Code) + "</pre>"
	}
	p.renderer.Page(w, r, "code", &render.PageData{
		Title:     "Code",
		Section:   "code",
		SessionID: s.ID,
		Data: map[string]any{
			"Code":        v.Code,
			"Highlighted": template.HTML(highlighted),
		},
	})
}

func (p *Pages) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	s, err := p.editor.lookup(r)
	switch {
	case errors.Is(err, canvas.ErrNotFound):
		http.Error(w, "Editor session not found", http.StatusNotFound)
		return nil, false
	case err != nil:
		slog.Error("resume editor session failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return nil, false
	}
	return s, true
}
