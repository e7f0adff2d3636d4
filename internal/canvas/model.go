// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package canvas

import (
	"fmt"
	"slices"
	"sync"

	"mailcanvas/internal/models"
)

// Model is the ordered element list of one editing session. Order is
// insertion order, which is also serialization and paint order. Ids are
// unique at all times.
//
// Every mutation replaces the backing slice, so lists returned by Elements
// are never modified afterwards.
type Model struct {
	mu       sync.RWMutex
	elements []models.Element
}

// NewModel returns a model seeded with elements. Duplicate ids are rejected.
func NewModel(elements []models.Element) (*Model, error) {
	m := &Model{}
	seen := make(map[string]bool, len(elements))
	for _, el := range elements {
		if el.ID == "" {
			return nil, &ValidationError{Field: "id", Message: "element id is required"}
		}
		if seen[el.ID] {
			return nil, &ValidationError{Field: "id", Message: fmt.Sprintf("duplicate element id %q", el.ID)}
		}
		seen[el.ID] = true
	}
	m.elements = append([]models.Element{}, elements...)
	return m, nil
}

// Elements returns the current list. The slice must not be modified.
func (m *Model) Elements() []models.Element {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.elements
}

// Len returns the number of elements.
func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.elements)
}

// Find returns the element with the given id.
func (m *Model) Find(id string) (models.Element, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if i := m.index(id); i >= 0 {
		return m.elements[i], true
	}
	return models.Element{}, false
}

// Add appends el.
func (m *Model) Add(el models.Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el.ID == "" {
		return &ValidationError{Field: "id", Message: "element id is required"}
	}
	if m.index(el.ID) >= 0 {
		return &ValidationError{Field: "id", Message: fmt.Sprintf("duplicate element id %q", el.ID)}
	}
	next := make([]models.Element, len(m.elements), len(m.elements)+1)
	copy(next, m.elements)
	m.elements = append(next, el)
	return nil
}

// Replace swaps the element whose id matches el.ID, keeping its position.
func (m *Model) Replace(el models.Element) error {
	return m.update(el.ID, func(models.Element) models.Element { return el })
}

// Move sets the position of one element. Nothing else changes.
func (m *Model) Move(id string, x, y float64) error {
	return m.update(id, func(el models.Element) models.Element {
		el.X, el.Y = x, y
		return el
	})
}

// SetText replaces the text of one element. Empty text is allowed.
func (m *Model) SetText(id, text string) error {
	return m.update(id, func(el models.Element) models.Element {
		el.Text = text
		return el
	})
}

// Remove deletes the element with the given id, keeping the order of the
// rest.
func (m *Model) Remove(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("element %q: %w", id, ErrNotFound)
	}
	m.elements = slices.Delete(slices.Clone(m.elements), i, i+1)
	return nil
}

func (m *Model) update(id string, fn func(models.Element) models.Element) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return fmt.Errorf("element %q: %w", id, ErrNotFound)
	}
	next := slices.Clone(m.elements)
	updated := fn(next[i])
	updated.ID = id
	next[i] = updated
	m.elements = next
	return nil
}

func (m *Model) index(id string) int {
	return slices.IndexFunc(m.elements, func(el models.Element) bool { return el.ID == id })
}

// Renderer turns an element list into markup.
type Renderer interface {
	Fragment(elements []models.Element) string
}

// Handle is the read-only capability handed to consumers outside the
// editing session.
type Handle struct {
	model    *Model
	renderer Renderer
}

// Handle returns a capability over m rendered through r.
func (m *Model) Handle(r Renderer) *Handle {
	return &Handle{model: m, renderer: r}
}

// Generate renders the current element list as a canvas fragment.
func (h *Handle) Generate() string {
	return h.renderer.Fragment(h.model.Elements())
}

// Snapshot returns a copy of the current element list.
func (h *Handle) Snapshot() []models.Element {
	return slices.Clone(h.model.Elements())
}
