// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/editor"
	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/imaging"
	"mailcanvas/internal/interaction"
	"mailcanvas/internal/models"
	"mailcanvas/internal/session"
)

const msgEditorFailed = "Error updating canvas"

// Bindings ties a browser to its editor session across reloads.
// *session.Store implements it.
type Bindings interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Editor groups the editing session endpoints.
type Editor struct {
	manager  *editor.Manager
	bindings Bindings
}

// NewEditor creates the editor handler group. bindings may be nil, in
// which case sessions cannot be resumed through the cookie.
func NewEditor(manager *editor.Manager, bindings Bindings) *Editor {
	return &Editor{manager: manager, bindings: bindings}
}

// elementResponse is returned by operations that insert or change one
// element.
type elementResponse struct {
	Element models.Element `json:"element"`
	State   editor.State   `json:"state"`
}

// Catalog lists the starter templates.
func (e *Editor) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"entries": e.manager.Catalog().List()})
}

// CreateSession starts a session from a catalog entry. Form posts from the
// catalog page are redirected to the preview page; JSON callers get the
// session state.
func (e *Editor) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fromForm := !isJSON(r)

	var catalogID string
	if fromForm {
		catalogID = strings.TrimSpace(r.FormValue("catalogId"))
	} else {
		var body struct {
			CatalogID string `json:"catalogId"`
		}
		if err := decodeJSON(w, r, maxJSONBodySize, &body); err != nil {
			writeError(w, r, err, msgEditorFailed)
			return
		}
		catalogID = strings.TrimSpace(body.CatalogID)
	}

	s, err := e.manager.Create(ctx, catalogID)
	if err != nil {
		writeError(w, r, err, "Error creating session")
		return
	}

	if e.bindings != nil {
		if _, err := e.bindings.Create(ctx, w, &session.Data{EditorID: s.ID, CatalogID: catalogID}); err != nil {
			slog.Warn("binding editor session failed", "session", s.ID, "error", err)
		}
	}

	if fromForm {
		http.Redirect(w, r, "/editor/"+s.ID+"/preview", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, s.State())
}

// Current resumes the session bound to the request cookie.
func (e *Editor) Current(w http.ResponseWriter, r *http.Request) {
	if e.bindings == nil {
		writeMessage(w, http.StatusNotFound, "No editor session", "")
		return
	}
	data, err := e.bindings.Get(r.Context(), r)
	if err != nil {
		writeError(w, r, &canvas.IOError{Op: "load session binding", Err: err}, msgEditorFailed)
		return
	}
	if data == nil {
		writeMessage(w, http.StatusNotFound, "No editor session", "")
		return
	}
	s, err := e.manager.Resume(r.Context(), data.EditorID, data.CatalogID)
	if err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// State returns the session state.
func (e *Editor) State(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// Discard drops the session without touching saved templates.
func (e *Editor) Discard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	discarded := e.manager.Discard(ctx, id)
	if e.bindings != nil {
		if data, err := e.bindings.Get(ctx, r); err == nil && data != nil && data.EditorID == id {
			if err := e.bindings.Destroy(ctx, w, r); err != nil {
				slog.Warn("destroying editor binding failed", "session", id, "error", err)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "discarded": discarded})
}

// SetMeta updates name, title and template type.
func (e *Editor) SetMeta(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	var meta editor.Meta
	if err := decodeJSON(w, r, maxJSONBodySize, &meta); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	if msg := validateMeta(meta.Name, meta.Title); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg, "")
		return
	}
	writeJSON(w, http.StatusOK, s.SetMeta(meta))
}

type textBody struct {
	Text string `json:"text"`
}

// AddTitle inserts a title element.
func (e *Editor) AddTitle(w http.ResponseWriter, r *http.Request) {
	e.addText(w, r, (*editor.Session).AddTitle)
}

// AddContent inserts a body text element.
func (e *Editor) AddContent(w http.ResponseWriter, r *http.Request) {
	e.addText(w, r, (*editor.Session).AddContent)
}

func (e *Editor) addText(w http.ResponseWriter, r *http.Request, add func(*editor.Session, string) (models.Element, error)) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	var body textBody
	if err := decodeJSON(w, r, maxJSONBodySize, &body); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	if msg := validateText(body.Text); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg, "text")
		return
	}
	el, err := add(s, body.Text)
	e.respondElement(w, r, s, el, err)
}

// AddImageURL inserts an image element for a remote URL.
func (e *Editor) AddImageURL(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Src string `json:"src"`
	}
	if err := decodeJSON(w, r, maxJSONBodySize, &body); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	if msg := validateImageURL(body.Src); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg, "src")
		return
	}
	el, err := s.AddImageURL(body.Src)
	e.respondElement(w, r, s, el, err)
}

// AddImageFile encodes the raw request body as a data URI image. The
// request waits for the insertion; a client that disconnects early does not
// abort it.
func (e *Editor) AddImageFile(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadSize))
	if err != nil {
		writeMessage(w, http.StatusRequestEntityTooLarge, "File too large (max 10 MB)", "")
		return
	}
	if len(data) == 0 {
		writeMessage(w, http.StatusBadRequest, msgNoFile, "")
		return
	}
	p := s.AddImageFile(r.Context(), data, contentType(data, r.Header.Get("Content-Type")))
	el, err := p.Wait(r.Context())
	e.respondElement(w, r, s, el, err)
}

// UploadImage hosts the multipart "image" field and inserts the hosted URL.
func (e *Editor) UploadImage(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	data, filename, ok := readMultipartFile(w, r, "image")
	if !ok {
		return
	}
	el, err := s.AddImageUpload(r.Context(), data, filename)
	if err != nil {
		writeError(w, r, err, msgUploadFailed)
		return
	}
	e.respondElement(w, r, s, el, nil)
}

// Drop handles a file dropped onto the canvas (multipart field "file").
func (e *Editor) Drop(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	data, _, ok := readMultipartFile(w, r, "file")
	if !ok {
		return
	}
	declared := ""
	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["file"]; len(files) > 0 {
			declared = files[0].Header.Get("Content-Type")
		}
	}
	p, err := s.Drop(r.Context(), data, contentType(data, declared))
	if err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	el, err := p.Wait(r.Context())
	e.respondElement(w, r, s, el, err)
}

type pointerBody struct {
	ID       string               `json:"id"`
	Modality interaction.Modality `json:"modality"`
	X        float64              `json:"x"`
	Y        float64              `json:"y"`
	Samples  []interaction.Point  `json:"samples"`
}

// PointerDown selects an element and starts dragging it.
func (e *Editor) PointerDown(w http.ResponseWriter, r *http.Request) {
	s, body, ok := e.pointer(w, r)
	if !ok {
		return
	}
	st, err := s.PointerDown(body.ID, body.Modality, interaction.Point{X: body.X, Y: body.Y})
	e.respondState(w, r, st, err)
}

// PointerMove moves the dragged element. A frame's samples may be sent
// together; a single x/y pair is accepted too.
func (e *Editor) PointerMove(w http.ResponseWriter, r *http.Request) {
	s, body, ok := e.pointer(w, r)
	if !ok {
		return
	}
	samples := body.Samples
	if len(samples) == 0 {
		samples = []interaction.Point{{X: body.X, Y: body.Y}}
	}
	st, err := s.PointerMove(body.Modality, samples...)
	e.respondState(w, r, st, err)
}

// PointerUp ends the drag.
func (e *Editor) PointerUp(w http.ResponseWriter, r *http.Request) {
	s, body, ok := e.pointer(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.PointerUp(body.Modality))
}

func (e *Editor) pointer(w http.ResponseWriter, r *http.Request) (*editor.Session, pointerBody, bool) {
	var body pointerBody
	s, ok := e.session(w, r)
	if !ok {
		return nil, body, false
	}
	if err := decodeJSON(w, r, maxJSONBodySize, &body); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return nil, body, false
	}
	if body.Modality == "" {
		body.Modality = interaction.Mouse
	}
	return s, body, true
}

// CommitText stores inline-edited text of an element.
func (e *Editor) CommitText(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	var body textBody
	if err := decodeJSON(w, r, maxJSONBodySize, &body); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	if msg := validateText(body.Text); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg, "text")
		return
	}
	el, err := s.CommitText(chi.URLParam(r, "elementID"), body.Text)
	if err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	writeJSON(w, http.StatusOK, elementResponse{Element: el, State: s.State()})
}

// Select makes an element the selection.
func (e *Editor) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	var body struct {
		ID string `json:"id"`
	}
	if err := decodeJSON(w, r, maxJSONBodySize, &body); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	st, err := s.Select(body.ID)
	e.respondState(w, r, st, err)
}

// ClearSelection deselects the selected element.
func (e *Editor) ClearSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.ClearSelection())
}

// DeleteElement removes an element by id.
func (e *Editor) DeleteElement(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	if err := s.Delete(chi.URLParam(r, "elementID")); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// DeleteSelected removes the selected element, as the Delete and Backspace
// keys do outside inline editing.
func (e *Editor) DeleteSelected(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	id, err := s.DeleteSelected()
	if err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id, "state": s.State()})
}

// UpdateStyles changes the style set and restyles the selected element.
func (e *Editor) UpdateStyles(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	var patch models.StylePatch
	if err := decodeJSON(w, r, maxJSONBodySize, &patch); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	st, err := s.UpdateStyles(patch)
	e.respondState(w, r, st, err)
}

// SetDevice switches the preview frame between desktop and mobile.
func (e *Editor) SetDevice(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	var body struct {
		Device editor.Device `json:"device"`
	}
	if err := decodeJSON(w, r, maxJSONBodySize, &body); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	if err := s.SetDevice(body.Device); err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	writeJSON(w, http.StatusOK, s.State())
}

// View renders the session in the mode named by the "mode" query parameter
// (edit by default).
func (e *Editor) View(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	mode := editor.ViewMode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = editor.ViewEdit
	}
	v, err := s.SetView(mode)
	if err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Layout returns the email layout loaded for the session.
func (e *Editor) Layout(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"layout": s.LoadLayout(r.Context())})
}

// DownloadCode sends the formatted document as canvas-design.html.
func (e *Editor) DownloadCode(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	writeAttachment(w, htmlgen.DownloadFilename, []byte(s.Code()))
}

// Save persists the session's template.
func (e *Editor) Save(w http.ResponseWriter, r *http.Request) {
	s, ok := e.session(w, r)
	if !ok {
		return
	}
	st := s.State()
	if msg := validateMeta(&st.Name, &st.Title); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg, "")
		return
	}
	res, err := s.Save(r.Context())
	if err != nil {
		writeError(w, r, err, msgSaveFailed)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// session resolves the {id} URL parameter to a live session, resuming it
// from its mirrored snapshot when it is no longer in memory.
func (e *Editor) session(w http.ResponseWriter, r *http.Request) (*editor.Session, bool) {
	s, err := e.lookup(r)
	if err != nil {
		writeError(w, r, err, msgEditorFailed)
		return nil, false
	}
	return s, true
}

func (e *Editor) lookup(r *http.Request) (*editor.Session, error) {
	id := chi.URLParam(r, "id")
	if s, ok := e.manager.Get(id); ok {
		return s, nil
	}

	var catalogID string
	if e.bindings != nil {
		if data, err := e.bindings.Get(r.Context(), r); err == nil && data != nil && data.EditorID == id {
			catalogID = data.CatalogID
		}
	}
	return e.manager.Resume(r.Context(), id, catalogID)
}

func (e *Editor) respondElement(w http.ResponseWriter, r *http.Request, s *editor.Session, el models.Element, err error) {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		slog.Info("client left before image insertion finished", "session", s.ID)
		return
	}
	if err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	writeJSON(w, http.StatusCreated, elementResponse{Element: el, State: s.State()})
}

func (e *Editor) respondState(w http.ResponseWriter, r *http.Request, st editor.State, err error) {
	if err != nil {
		writeError(w, r, err, msgEditorFailed)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func isJSON(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// contentType prefers the type sniffed from the file's magic bytes over
// the one the client declared.
func contentType(data []byte, declared string) string {
	if ct, err := imaging.Sniff(data); err == nil {
		return ct
	}
	if declared == "image/svg+xml" {
		return declared
	}
	return http.DetectContentType(data)
}

func frameWidth(d editor.Device) string {
	if d == editor.DeviceMobile {
		return fmt.Sprintf("%dpx", editor.MobilePreviewWidth)
	}
	return "100%"
}
