// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// DefaultTemplateType is used when a save request does not name one.
const DefaultTemplateType = "custom"

// Draft is the template being edited in a session. It is seeded from a
// catalog entry and only reaches storage through a save.
type Draft struct {
	Name         string    `json:"name"`
	Title        string    `json:"title"`
	TemplateType string    `json:"templateType"`
	Styles       StyleSet  `json:"styles"`
	Elements     []Element `json:"elements"`
}

// Template is a saved email template record. The JSON and BSON field names
// match the documents of the MongoDB templates collection.
type Template struct {
	ID             string          `json:"_id" bson:"_id,omitempty"`
	Name           string          `json:"name" bson:"name"`
	Title          string          `json:"title" bson:"title"`
	TemplateType   string          `json:"templateType" bson:"templateType"`
	Styles         StyleSet        `json:"styles" bson:"styles"`
	CanvasElements []StoredElement `json:"canvasElements" bson:"canvasElements"`
	HTMLContent    string          `json:"htmlContent" bson:"htmlContent"`
	GeneratedHTML  string          `json:"generatedHtml" bson:"generatedHtml"`
	CreatedAt      time.Time       `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt" bson:"updatedAt"`
}

// Elements strips the denormalized element type and returns the live
// element list stored in the record.
func (t *Template) Elements() []Element {
	out := make([]Element, len(t.CanvasElements))
	for i, el := range t.CanvasElements {
		out[i] = el.Element
	}
	return out
}
