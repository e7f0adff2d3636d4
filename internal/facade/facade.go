// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package facade is the persistence contract the editor talks to: fetch the
// email layout, host an uploaded image, save a template. Local implements it
// in-process over the stores; Client implements it over HTTP.
package facade

import (
	"context"

	"mailcanvas/internal/models"
)

// Facade is the narrow persistence contract consumed by editing sessions.
type Facade interface {
	// FetchLayout returns the email layout document. Callers treat failure
	// as non-fatal.
	FetchLayout(ctx context.Context) (string, error)
	// UploadImage hosts an image and returns its public URL.
	UploadImage(ctx context.Context, data []byte, filename string) (*UploadResult, error)
	// SaveTemplate persists a template record.
	SaveTemplate(ctx context.Context, req SaveRequest) (*SaveResult, error)
}

// UploadResult is the response of an image upload.
type UploadResult struct {
	ImageURL string `json:"imageUrl"`
}

// SaveRequest is the body of a template save. Field names are the wire
// names of the template record.
type SaveRequest struct {
	Name           string                 `json:"name"`
	Title          string                 `json:"title"`
	TemplateType   string                 `json:"templateType,omitempty"`
	Styles         models.StyleSet        `json:"styles"`
	CanvasElements []models.StoredElement `json:"canvasElements"`
	HTMLContent    string                 `json:"htmlContent"`
	GeneratedHTML  string                 `json:"generatedHtml"`
}

// SaveResult is the response of a successful save.
type SaveResult struct {
	Success  bool             `json:"success"`
	Message  string           `json:"message,omitempty"`
	Template *models.Template `json:"template"`
}

// SavedMessage is reported on every successful save.
const SavedMessage = "Template saved successfully"
