// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package editor composes the canvas model, the interaction engine and the
// HTML generator into editing sessions.
package editor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/facade"
	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/interaction"
	"mailcanvas/internal/models"
)

// ViewMode selects how the element list is presented.
type ViewMode string

const (
	ViewEdit    ViewMode = "edit"
	ViewPreview ViewMode = "preview"
	ViewCode    ViewMode = "code"
)

// Device selects the preview frame width.
type Device string

const (
	DeviceDesktop Device = "desktop"
	DeviceMobile  Device = "mobile"
)

// MobilePreviewWidth is the frame width of the mobile preview in pixels.
const MobilePreviewWidth = 375

// Options configures a new Session.
type Options struct {
	Generator   *htmlgen.Generator
	Persistence facade.Facade
	Sinks       []SnapshotSink
}

// Session is one template being edited. All mutations are serialized by the
// session lock and applied in call order.
type Session struct {
	ID        string
	CatalogID string
	CreatedAt time.Time

	mu          sync.Mutex
	draft       models.Draft
	model       *canvas.Model
	factory     *canvas.Factory
	engine      *interaction.Engine
	gen         *htmlgen.Generator
	handle      *canvas.Handle
	persistence facade.Facade
	publisher   *publisher
	view        ViewMode
	device      Device
	layout      string
	snapshot    models.CanvasSnapshot
	lastActive  time.Time
	now         func() time.Time
}

// NewSession starts a session over draft. Element ids already present in the
// draft are reserved so new ids never collide with them.
func NewSession(id string, draft models.Draft, opts Options) (*Session, error) {
	model, err := canvas.NewModel(draft.Elements)
	if err != nil {
		return nil, fmt.Errorf("seeding canvas: %w", err)
	}
	gen := opts.Generator
	if gen == nil {
		gen = htmlgen.New(true)
	}

	ids := canvas.NewIDGenerator()
	for _, el := range draft.Elements {
		ids.Observe(el.ID)
	}
	factory := canvas.NewFactory(ids)

	draft.Elements = nil
	if draft.TemplateType == "" {
		draft.TemplateType = models.DefaultTemplateType
	}

	s := &Session{
		ID:          id,
		CreatedAt:   time.Now(),
		draft:       draft,
		model:       model,
		factory:     factory,
		engine:      interaction.New(model, factory),
		gen:         gen,
		handle:      model.Handle(gen),
		persistence: opts.Persistence,
		publisher:   newPublisher(id, opts.Sinks),
		view:        ViewEdit,
		device:      DeviceDesktop,
		now:         time.Now,
	}
	s.lastActive = s.CreatedAt
	s.mu.Lock()
	s.publishLocked()
	s.mu.Unlock()
	return s, nil
}

// Handle returns the read-only capability over this session's canvas.
func (s *Session) Handle() *canvas.Handle {
	return s.handle
}

// Close stops snapshot delivery after flushing the last snapshot.
func (s *Session) Close() {
	s.publisher.close()
}

// State is a consistent view of a session.
type State struct {
	ID         string                `json:"id"`
	CatalogID  string                `json:"catalogId,omitempty"`
	Name       string                `json:"name"`
	Title      string                `json:"title"`
	Type       string                `json:"templateType"`
	Styles     models.StyleSet       `json:"styles"`
	Elements   []models.Element      `json:"elements"`
	SelectedID string                `json:"selectedId,omitempty"`
	DraggingID string                `json:"draggingId,omitempty"`
	View       ViewMode              `json:"view"`
	Device     Device                `json:"device"`
	Snapshot   models.CanvasSnapshot `json:"snapshot"`
}

// State returns the current session state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) stateLocked() State {
	dragging, _, _ := s.engine.Dragging()
	return State{
		ID:         s.ID,
		CatalogID:  s.CatalogID,
		Name:       s.draft.Name,
		Title:      s.draft.Title,
		Type:       s.draft.TemplateType,
		Styles:     s.draft.Styles,
		Elements:   s.handle.Snapshot(),
		SelectedID: s.engine.SelectedID(),
		DraggingID: dragging,
		View:       s.view,
		Device:     s.device,
		Snapshot:   s.snapshot,
	}
}

// Snapshot returns the last published canvas snapshot.
func (s *Session) Snapshot() models.CanvasSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

// LastActive reports when the session was last touched.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Meta is a partial update of the template's identifying fields.
type Meta struct {
	Name         *string `json:"name,omitempty"`
	Title        *string `json:"title,omitempty"`
	TemplateType *string `json:"templateType,omitempty"`
}

// SetMeta updates name, title and template type.
func (s *Session) SetMeta(m Meta) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if m.Name != nil {
		s.draft.Name = *m.Name
	}
	if m.Title != nil {
		s.draft.Title = *m.Title
	}
	if m.TemplateType != nil && *m.TemplateType != "" {
		s.draft.TemplateType = *m.TemplateType
	}
	return s.stateLocked()
}

// AddTitle inserts a title element styled from the session's style set.
func (s *Session) AddTitle(value string) (models.Element, error) {
	return s.mutate(func() (models.Element, error) {
		return s.engine.AddTitle(value, s.draft.Styles)
	})
}

// AddContent inserts a body text element styled from the session's style set.
func (s *Session) AddContent(value string) (models.Element, error) {
	return s.mutate(func() (models.Element, error) {
		return s.engine.AddContent(value, s.draft.Styles)
	})
}

// AddImageURL inserts an image element for a remote URL right away.
func (s *Session) AddImageURL(src string) (models.Element, error) {
	return s.mutate(func() (models.Element, error) {
		return s.engine.AddImageURL(src)
	})
}

// AddImageFile encodes an image file to a data URI in the background and
// inserts it when done. The element list does not change until encoding
// succeeds; other edits may land in between. Cancelling ctx after the call
// returns does not abort the insertion.
func (s *Session) AddImageFile(ctx context.Context, data []byte, contentType string) *Pending {
	p := newPending()
	ctx = context.WithoutCancel(ctx)
	go func() {
		el, err := interaction.PrepareImage(ctx, s.factory, bytes.NewReader(data), contentType)
		if err != nil {
			p.finish(models.Element{}, err)
			return
		}
		el, err = s.mutate(func() (models.Element, error) {
			return el, s.model.Add(el)
		})
		p.finish(el, err)
	}()
	return p
}

// Drop handles a file dropped onto the canvas. Non-image files are rejected
// immediately; images take the AddImageFile path.
func (s *Session) Drop(ctx context.Context, data []byte, contentType string) (*Pending, error) {
	if !canvas.IsImageType(contentType) {
		return nil, &canvas.ValidationError{Field: "file", Message: "only image files can be dropped on the canvas"}
	}
	return s.AddImageFile(ctx, data, contentType), nil
}

// AddImageUpload hosts an image through the persistence facade and inserts
// an element pointing at the hosted URL. A failed upload changes nothing.
func (s *Session) AddImageUpload(ctx context.Context, data []byte, filename string) (models.Element, error) {
	if s.persistence == nil {
		return models.Element{}, &canvas.IOError{Op: "upload image", Err: errors.New("image hosting is not configured")}
	}
	res, err := s.persistence.UploadImage(ctx, data, filename)
	if err != nil {
		if canvas.IsValidation(err) || canvas.IsIO(err) {
			return models.Element{}, err
		}
		return models.Element{}, &canvas.IOError{Op: "upload image", Err: err}
	}
	return s.AddImageURL(res.ImageURL)
}

// Select makes id the selected element and loads its look into the style
// set.
func (s *Session) Select(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	el, err := s.engine.Select(id)
	if err != nil {
		return State{}, err
	}
	s.projectSelection(el)
	return s.stateLocked(), nil
}

// ClearSelection deselects the selected element.
func (s *Session) ClearSelection() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.engine.ClearSelection()
	return s.stateLocked()
}

func (s *Session) projectSelection(el models.Element) {
	if el.IsText() {
		s.draft.Styles = canvas.DeriveStyleSet(el).Apply(s.draft.Styles)
	}
}

// PointerDown selects and starts dragging an element.
func (s *Session) PointerDown(id string, m interaction.Modality, p interaction.Point) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	el, accepted, err := s.engine.PointerDown(id, m, p)
	if err != nil {
		return State{}, err
	}
	if accepted {
		s.projectSelection(el)
	}
	return s.stateLocked(), nil
}

// PointerMove moves the dragged element.
func (s *Session) PointerMove(m interaction.Modality, samples ...interaction.Point) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	moved, err := s.engine.PointerMoveBatch(m, samples)
	if err != nil {
		return State{}, err
	}
	if moved {
		s.publishLocked()
	}
	return s.stateLocked(), nil
}

// PointerUp ends the drag.
func (s *Session) PointerUp(m interaction.Modality) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.engine.PointerUp(m)
	return s.stateLocked()
}

// CommitText stores inline-edited text.
func (s *Session) CommitText(id, text string) (models.Element, error) {
	return s.mutate(func() (models.Element, error) {
		if err := s.engine.CommitText(id, text); err != nil {
			return models.Element{}, err
		}
		el, _ := s.model.Find(id)
		return el, nil
	})
}

// Delete removes an element by id.
func (s *Session) Delete(id string) error {
	_, err := s.mutate(func() (models.Element, error) {
		return models.Element{}, s.engine.Delete(id)
	})
	return err
}

// DeleteSelected removes the selected element.
func (s *Session) DeleteSelected() (string, error) {
	var id string
	_, err := s.mutate(func() (models.Element, error) {
		var err error
		id, err = s.engine.DeleteSelected()
		return models.Element{}, err
	})
	return id, err
}

// UpdateStyles changes the style set and re-applies it to the selected
// element only.
func (s *Session) UpdateStyles(patch models.StylePatch) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if patch.ContentSize != nil && *patch.ContentSize != "" && !canvas.IsSizeToken(*patch.ContentSize) {
		return State{}, &canvas.ValidationError{Field: "contentSize", Message: fmt.Sprintf("unknown size %q", *patch.ContentSize)}
	}
	s.draft.Styles = patch.Apply(s.draft.Styles)
	_, changed, err := s.engine.RestyleSelected(s.draft.Styles)
	if err != nil {
		return State{}, err
	}
	if changed {
		s.publishLocked()
	}
	return s.stateLocked(), nil
}

// SetDevice switches the preview frame.
func (s *Session) SetDevice(d Device) error {
	if d != DeviceDesktop && d != DeviceMobile {
		return &canvas.ValidationError{Field: "device", Message: fmt.Sprintf("unknown device %q", d)}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.device = d
	return nil
}

// View is the rendering of a session in one view mode.
type View struct {
	Mode     ViewMode         `json:"mode"`
	Device   Device           `json:"device,omitempty"`
	Elements []models.Element `json:"elements,omitempty"`
	Document string           `json:"document,omitempty"`
	Code     string           `json:"code,omitempty"`
	// Highlighted is the code rendered as syntax-highlighted HTML.
	Highlighted string `json:"highlighted,omitempty"`
}

// SetView switches the view mode and renders it.
func (s *Session) SetView(mode ViewMode) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	v := View{Mode: mode}
	switch mode {
	case ViewEdit:
		v.Elements = s.handle.Snapshot()
	case ViewPreview:
		v.Device = s.device
		v.Document = htmlgen.Document(s.snapshot.HTML)
	case ViewCode:
		v.Code = htmlgen.FormatCode(htmlgen.Document(s.snapshot.HTML))
		hl, err := htmlgen.Highlight(v.Code)
		if err != nil {
			slog.Warn("highlighting code view", "session", s.ID, "error", err)
		}
		v.Highlighted = hl
	default:
		return View{}, &canvas.ValidationError{Field: "view", Message: fmt.Sprintf("unknown view %q", mode)}
	}
	s.view = mode
	return v, nil
}

// Document returns the standalone document of the current canvas.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return htmlgen.Document(s.snapshot.HTML)
}

// Code returns the formatted document used for copy and download.
func (s *Session) Code() string {
	return htmlgen.FormatCode(s.Document())
}

// LoadLayout fetches the email layout through the persistence facade. The
// layout is optional; failures are logged and the previous value is kept.
func (s *Session) LoadLayout(ctx context.Context) string {
	if s.persistence == nil {
		return ""
	}
	layout, err := s.persistence.FetchLayout(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		slog.Warn("fetching email layout", "session", s.ID, "error", err)
		return s.layout
	}
	s.layout = layout
	return layout
}

// Save validates the template and submits it with its current elements,
// fragment and document. Name and title must be non-blank; otherwise the
// persistence facade is never called.
func (s *Session) Save(ctx context.Context) (*facade.SaveResult, error) {
	s.mu.Lock()
	s.touch()
	if strings.TrimSpace(s.draft.Name) == "" || strings.TrimSpace(s.draft.Title) == "" {
		s.mu.Unlock()
		templateSaves.WithLabelValues("invalid").Inc()
		return nil, &canvas.ValidationError{Field: "name", Message: "please fill in template name and title"}
	}
	elements := s.handle.Snapshot()
	fragment := s.handle.Generate()
	req := facade.SaveRequest{
		Name:           s.draft.Name,
		Title:          s.draft.Title,
		TemplateType:   s.draft.TemplateType,
		Styles:         s.draft.Styles,
		CanvasElements: models.NewStoredElements(elements),
		HTMLContent:    fragment,
		GeneratedHTML:  htmlgen.Document(fragment),
	}
	s.mu.Unlock()

	if s.persistence == nil {
		templateSaves.WithLabelValues("error").Inc()
		return nil, &canvas.IOError{Op: "save template", Err: errors.New("persistence is not configured")}
	}
	res, err := s.persistence.SaveTemplate(ctx, req)
	if err != nil {
		templateSaves.WithLabelValues("error").Inc()
		return nil, err
	}
	templateSaves.WithLabelValues("ok").Inc()
	slog.Info("template saved", "session", s.ID, "name", req.Name, "elements", len(req.CanvasElements))
	return res, nil
}

// mutate runs fn under the session lock and republishes the snapshot when
// fn succeeded.
func (s *Session) mutate(fn func() (models.Element, error)) (models.Element, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	el, err := fn()
	if err != nil {
		return models.Element{}, err
	}
	s.publishLocked()
	return el, nil
}

func (s *Session) publishLocked() {
	s.snapshot = models.CanvasSnapshot{
		HTML:       s.handle.Generate(),
		Elements:   s.handle.Snapshot(),
		LastUpdate: s.now(),
	}
	s.publisher.offer(s.snapshot)
}

func (s *Session) touch() {
	s.lastActive = s.now()
}
