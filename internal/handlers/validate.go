package handlers

import (
	"fmt"
	"unicode/utf8"

	"mailcanvas/internal/facade"
)

// Validation limits for template and element fields.
const (
	maxNameLen      = 200
	maxTitleLen     = 300
	maxElements     = 500
	maxTextLen      = 10_000
	maxSrcURLLen    = 2_048
	maxDocumentLen  = 5_000_000
	maxJSONBodySize = 16 << 20

	// maxUploadSize caps multipart image uploads and dropped files (10 MB).
	maxUploadSize = 10 << 20
)

// validateSave checks the limits of a save request and returns the first
// error found. Blank name and title are left to the facade, which answers
// with the wire-compatible message.
func validateSave(req *facade.SaveRequest) string {
	if utf8.RuneCountInString(req.Name) > maxNameLen {
		return fmt.Sprintf("Template name is too long (max %d characters).", maxNameLen)
	}
	if utf8.RuneCountInString(req.Title) > maxTitleLen {
		return fmt.Sprintf("Template title is too long (max %d characters).", maxTitleLen)
	}
	if len(req.CanvasElements) > maxElements {
		return fmt.Sprintf("Too many canvas elements (max %d).", maxElements)
	}
	for _, el := range req.CanvasElements {
		if utf8.RuneCountInString(el.Text) > maxTextLen {
			return fmt.Sprintf("Element %s text is too long (max %d characters).", el.ID, maxTextLen)
		}
	}
	if len(req.HTMLContent) > maxDocumentLen || len(req.GeneratedHTML) > maxDocumentLen {
		return "Generated HTML is too large."
	}
	return ""
}

// validateMeta checks name and title edits made in the editor.
func validateMeta(name, title *string) string {
	if name != nil && utf8.RuneCountInString(*name) > maxNameLen {
		return fmt.Sprintf("Template name is too long (max %d characters).", maxNameLen)
	}
	if title != nil && utf8.RuneCountInString(*title) > maxTitleLen {
		return fmt.Sprintf("Template title is too long (max %d characters).", maxTitleLen)
	}
	return ""
}

// validateText checks a text element value.
func validateText(text string) string {
	if utf8.RuneCountInString(text) > maxTextLen {
		return fmt.Sprintf("Text is too long (max %d characters).", maxTextLen)
	}
	return ""
}

// validateImageURL checks a remote image source.
func validateImageURL(src string) string {
	if len(src) > maxSrcURLLen {
		return fmt.Sprintf("Image URL is too long (max %d characters).", maxSrcURLLen)
	}
	return ""
}
