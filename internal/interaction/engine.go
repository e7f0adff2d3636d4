// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package interaction turns pointer, keyboard and drop input into mutations
// of a canvas model. It owns selection and drag state.
//
// An Engine is not safe for concurrent use; the editor session serializes
// calls into it.
package interaction

import (
	"context"
	"fmt"
	"io"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/models"
)

// Modality identifies the input device driving a drag.
type Modality string

const (
	Mouse Modality = "mouse"
	Touch Modality = "touch"
)

// Valid reports whether m is a known modality.
func (m Modality) Valid() bool {
	return m == Mouse || m == Touch
}

// Point is a pointer position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type drag struct {
	id       string
	modality Modality
	offset   Point
}

// Engine applies interactions to a Model.
type Engine struct {
	model    *canvas.Model
	factory  *canvas.Factory
	selected string
	drag     *drag
}

// New creates an Engine over model. New elements get ids from factory.
func New(model *canvas.Model, factory *canvas.Factory) *Engine {
	return &Engine{model: model, factory: factory}
}

// Selected returns the selected element, if any.
func (e *Engine) Selected() (models.Element, bool) {
	if e.selected == "" {
		return models.Element{}, false
	}
	return e.model.Find(e.selected)
}

// SelectedID returns the id of the selected element or "".
func (e *Engine) SelectedID() string {
	return e.selected
}

// Dragging returns the id and modality of the live drag.
func (e *Engine) Dragging() (string, Modality, bool) {
	if e.drag == nil {
		return "", "", false
	}
	return e.drag.id, e.drag.modality, true
}

// Select makes id the only selected element.
func (e *Engine) Select(id string) (models.Element, error) {
	el, ok := e.model.Find(id)
	if !ok {
		return models.Element{}, fmt.Errorf("element %q: %w", id, canvas.ErrNotFound)
	}
	e.selected = id
	return el, nil
}

// ClearSelection deselects whatever is selected.
func (e *Engine) ClearSelection() {
	e.selected = ""
}

// PointerDown selects the element under the pointer and starts dragging it.
// The offset between pointer and element origin is kept for the whole drag.
// While a drag driven by another modality is live the event is ignored and
// the returned bool is false.
func (e *Engine) PointerDown(id string, m Modality, p Point) (models.Element, bool, error) {
	if !m.Valid() {
		return models.Element{}, false, &canvas.ValidationError{Field: "modality", Message: fmt.Sprintf("unknown input modality %q", m)}
	}
	if e.drag != nil && e.drag.modality != m {
		return models.Element{}, false, nil
	}
	el, err := e.Select(id)
	if err != nil {
		return models.Element{}, false, err
	}
	e.drag = &drag{id: id, modality: m, offset: Point{X: p.X - el.X, Y: p.Y - el.Y}}
	return el, true, nil
}

// PointerMove moves the dragged element so that it keeps its offset to the
// pointer. Moves from a modality other than the one that started the drag,
// or with no drag live, are ignored. Only x and y of the element change.
func (e *Engine) PointerMove(m Modality, p Point) (bool, error) {
	if e.drag == nil || e.drag.modality != m {
		return false, nil
	}
	if err := e.model.Move(e.drag.id, p.X-e.drag.offset.X, p.Y-e.drag.offset.Y); err != nil {
		e.drag = nil
		return false, err
	}
	return true, nil
}

// PointerMoveBatch applies the samples collected during one frame. Only the
// last sample affects the final position, so it is the only one applied.
func (e *Engine) PointerMoveBatch(m Modality, samples []Point) (bool, error) {
	if len(samples) == 0 {
		return false, nil
	}
	return e.PointerMove(m, samples[len(samples)-1])
}

// PointerUp ends the drag started by m. Selection is kept.
func (e *Engine) PointerUp(m Modality) bool {
	if e.drag == nil || e.drag.modality != m {
		return false
	}
	e.drag = nil
	return true
}

// CommitText stores edited text when an inline editor loses focus. Empty
// text is accepted.
func (e *Engine) CommitText(id, text string) error {
	el, ok := e.model.Find(id)
	if !ok {
		return fmt.Errorf("element %q: %w", id, canvas.ErrNotFound)
	}
	if !el.IsText() {
		return &canvas.ValidationError{Field: "id", Message: "only text elements can be edited inline"}
	}
	return e.model.SetText(id, text)
}

// Delete removes an element. Deleting the selected or dragged element
// clears that state.
func (e *Engine) Delete(id string) error {
	if err := e.model.Remove(id); err != nil {
		return err
	}
	if e.selected == id {
		e.selected = ""
	}
	if e.drag != nil && e.drag.id == id {
		e.drag = nil
	}
	return nil
}

// DeleteSelected removes the selected element. It fails when nothing is
// selected.
func (e *Engine) DeleteSelected() (string, error) {
	if e.selected == "" {
		return "", &canvas.ValidationError{Field: "selection", Message: "no element selected"}
	}
	id := e.selected
	if err := e.Delete(id); err != nil {
		e.selected = ""
		return "", err
	}
	return id, nil
}

// RestyleSelected applies styles to the selected text element and nothing
// else. It reports false when no text element is selected.
func (e *Engine) RestyleSelected(styles models.StyleSet) (models.Element, bool, error) {
	el, ok := e.Selected()
	if !ok || !el.IsText() {
		return models.Element{}, false, nil
	}
	updated := canvas.Restyle(el, styles)
	if updated == el {
		return el, false, nil
	}
	if err := e.model.Replace(updated); err != nil {
		return models.Element{}, false, err
	}
	return updated, true, nil
}

// AddTitle creates and inserts a title element.
func (e *Engine) AddTitle(value string, styles models.StyleSet) (models.Element, error) {
	el, err := e.factory.NewTitle(value, styles)
	if err != nil {
		return models.Element{}, err
	}
	return el, e.model.Add(el)
}

// AddContent creates and inserts a body text element.
func (e *Engine) AddContent(value string, styles models.StyleSet) (models.Element, error) {
	el, err := e.factory.NewContent(value, styles)
	if err != nil {
		return models.Element{}, err
	}
	return el, e.model.Add(el)
}

// AddImageURL inserts an image element pointing at a remote URL.
func (e *Engine) AddImageURL(src string) (models.Element, error) {
	el, err := e.factory.NewImage(src)
	if err != nil {
		return models.Element{}, err
	}
	return el, e.model.Add(el)
}

// PrepareImage validates and encodes a dropped or picked file into an image
// element without inserting it. Only image content types are accepted.
// It touches no engine state and may run off the session's goroutine.
func PrepareImage(ctx context.Context, factory *canvas.Factory, r io.Reader, contentType string) (models.Element, error) {
	if contentType != "" && !canvas.IsImageType(contentType) {
		return models.Element{}, &canvas.ValidationError{Field: "file", Message: "only image files can be dropped on the canvas"}
	}
	uri, err := canvas.EncodeDataURI(ctx, r, contentType)
	if err != nil {
		return models.Element{}, err
	}
	return factory.NewImage(uri)
}

// Drop handles a file dropped onto the canvas surface. It is the same path
// as picking an image file, run synchronously.
func (e *Engine) Drop(ctx context.Context, r io.Reader, contentType string) (models.Element, error) {
	el, err := PrepareImage(ctx, e.factory, r, contentType)
	if err != nil {
		return models.Element{}, err
	}
	return el, e.model.Add(el)
}
