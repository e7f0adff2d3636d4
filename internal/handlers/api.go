// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/engine"
	"mailcanvas/internal/facade"
	"mailcanvas/internal/models"
)

// Messages of the persistence endpoints. Editors built against the first
// version of the server match on them.
const (
	msgLayoutFailed    = "Error reading layout file"
	msgNoFile          = "No file uploaded"
	msgUploadFailed    = "Error uploading image"
	msgSaveFailed      = "Error saving template"
	msgTemplateMissing = "Template not found"
	msgFetchFailed     = "Error fetching template"
	msgDeleteFailed    = "Error deleting template"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// TemplateLibrary reads and removes saved templates. Both template stores
// implement it.
type TemplateLibrary interface {
	engine.TemplateFinder
	List(ctx context.Context, limit, offset int) ([]models.Template, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// API groups the persistence endpoints: layout, image hosting, template
// save, lookup and download.
type API struct {
	persistence facade.Facade
	templates   TemplateLibrary
	engine      *engine.Engine
}

// NewAPI creates the persistence handler group.
func NewAPI(persistence facade.Facade, templates TemplateLibrary, eng *engine.Engine) *API {
	return &API{
		persistence: persistence,
		templates:   templates,
		engine:      eng,
	}
}

// GetEmailLayout returns the email layout document.
func (a *API) GetEmailLayout(w http.ResponseWriter, r *http.Request) {
	layout, err := a.persistence.FetchLayout(r.Context())
	if err != nil {
		slog.Error("fetch email layout failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgLayoutFailed, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "layout": layout})
}

// UploadImage hosts the multipart "image" field and returns its URL.
func (a *API) UploadImage(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := readMultipartFile(w, r, "image")
	if !ok {
		return
	}

	res, err := a.persistence.UploadImage(r.Context(), data, filename)
	if err != nil {
		writeError(w, r, err, msgUploadFailed)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// UploadEmailConfig saves a template record.
func (a *API) UploadEmailConfig(w http.ResponseWriter, r *http.Request) {
	var req facade.SaveRequest
	if err := decodeJSON(w, r, maxJSONBodySize, &req); err != nil {
		writeError(w, r, err, msgSaveFailed)
		return
	}
	if msg := validateSave(&req); msg != "" {
		writeMessage(w, http.StatusBadRequest, msg, "")
		return
	}

	res, err := a.persistence.SaveTemplate(r.Context(), req)
	if err != nil {
		writeError(w, r, err, msgSaveFailed)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// RenderAndDownloadTemplate returns a saved template record.
func (a *API) RenderAndDownloadTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	t, err := a.templates.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find template failed", "error", err, "id", id)
		writeMessage(w, http.StatusInternalServerError, msgFetchFailed, err.Error())
		return
	}
	if t == nil {
		writeMessage(w, http.StatusNotFound, msgTemplateMissing, "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "template": t})
}

// DownloadTemplate sends a saved template as a standalone HTML attachment.
func (a *API) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dl, err := a.engine.Download(r.Context(), id)
	if errors.Is(err, canvas.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, msgTemplateMissing, "")
		return
	}
	if err != nil {
		writeError(w, r, err, msgFetchFailed)
		return
	}
	writeAttachment(w, dl.Filename, dl.Body)
}

// ListTemplates returns saved templates newest first. Pagination uses the
// limit and offset query parameters.
func (a *API) ListTemplates(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultListLimit)
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	offset := max(queryInt(r, "offset", 0), 0)

	list, err := a.templates.List(r.Context(), limit, offset)
	if err != nil {
		slog.Error("list templates failed", "error", err)
		writeMessage(w, http.StatusInternalServerError, msgFetchFailed, err.Error())
		return
	}
	if list == nil {
		list = []models.Template{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "templates": list})
}

// DeleteTemplate removes a saved template and drops its cached document.
func (a *API) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ok, err := a.templates.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete template failed", "error", err, "id", id)
		writeMessage(w, http.StatusInternalServerError, msgDeleteFailed, err.Error())
		return
	}
	if !ok {
		writeMessage(w, http.StatusNotFound, msgTemplateMissing, "")
		return
	}
	a.engine.Invalidate(id)
	slog.Info("template deleted", "id", id)
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Template deleted"})
}

func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}

func writeAttachment(w http.ResponseWriter, filename string, body []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Write(body)
}

// readMultipartFile reads one file field of a multipart form. On failure
// the response has been written and ok is false.
func readMultipartFile(w http.ResponseWriter, r *http.Request, field string) (data []byte, filename string, ok bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "File too large (max 10 MB)", "")
			return nil, "", false
		}
		writeMessage(w, http.StatusBadRequest, msgNoFile, "")
		return nil, "", false
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, msgNoFile, "")
		return nil, "", false
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeMessage(w, http.StatusRequestEntityTooLarge, "File too large (max 10 MB)", "")
		return nil, "", false
	}
	data, err = io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Failed to read uploaded file", err.Error())
		return nil, "", false
	}
	return data, header.Filename, true
}
