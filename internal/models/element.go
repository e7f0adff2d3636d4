// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"
)

// ElementKind is the variant tag of a canvas element.
type ElementKind string

const (
	ElementText  ElementKind = "text"
	ElementImage ElementKind = "image"
)

// Element is a single absolutely positioned object on the canvas.
// Text fields are only meaningful for ElementText, Src only for ElementImage.
type Element struct {
	ID   string      `json:"id" yaml:"id,omitempty" bson:"id"`
	Type ElementKind `json:"type" yaml:"type,omitempty" bson:"type"`
	X    float64     `json:"x" yaml:"x,omitempty" bson:"x"`
	Y    float64     `json:"y" yaml:"y,omitempty" bson:"y"`

	Text           string  `json:"text,omitempty" yaml:"text,omitempty" bson:"text,omitempty"`
	FontSize       float64 `json:"fontSize,omitempty" yaml:"fontSize,omitempty" bson:"fontSize,omitempty"`
	FontFamily     string  `json:"fontFamily,omitempty" yaml:"fontFamily,omitempty" bson:"fontFamily,omitempty"`
	Fill           string  `json:"fill,omitempty" yaml:"fill,omitempty" bson:"fill,omitempty"`
	TextAlign      string  `json:"textAlign,omitempty" yaml:"textAlign,omitempty" bson:"textAlign,omitempty"`
	FontStyle      string  `json:"fontStyle,omitempty" yaml:"fontStyle,omitempty" bson:"fontStyle,omitempty"`
	FontWeight     string  `json:"fontWeight,omitempty" yaml:"fontWeight,omitempty" bson:"fontWeight,omitempty"`
	TextDecoration string  `json:"textDecoration,omitempty" yaml:"textDecoration,omitempty" bson:"textDecoration,omitempty"`

	Src string `json:"src,omitempty" yaml:"src,omitempty" bson:"src,omitempty"`
}

// IsText reports whether the element is a text element.
func (e *Element) IsText() bool {
	return e.Type == ElementText
}

// IsImage reports whether the element is an image element.
func (e *Element) IsImage() bool {
	return e.Type == ElementImage
}

// StoredElement is an element as written to the template record. ElementType
// repeats the id namespace ("title", "content", "image") for compatibility
// with records produced by the first version of the editor.
type StoredElement struct {
	Element     `bson:",inline"`
	ElementType string `json:"elementType" bson:"elementType"`
}

// IDPrefix returns the part of an element id before the first "-".
// An id without a separator is returned unchanged.
func IDPrefix(id string) string {
	prefix, _, _ := strings.Cut(id, "-")
	return prefix
}

// NewStoredElements denormalizes a live element list for persistence.
func NewStoredElements(elements []Element) []StoredElement {
	out := make([]StoredElement, len(elements))
	for i, el := range elements {
		out[i] = StoredElement{Element: el, ElementType: IDPrefix(el.ID)}
	}
	return out
}

// CanvasSnapshot is the derived view published every time the element list
// changes. It backs the preview and code views and is mirrored to Valkey so
// a reload can pick up where the editor left off.
type CanvasSnapshot struct {
	HTML       string    `json:"html"`
	Elements   []Element `json:"elements"`
	LastUpdate time.Time `json:"lastUpdate"`
}
