// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package htmlgen serializes a canvas element list to HTML. Output is a pure
// function of its input: the same elements always produce the same bytes.
package htmlgen

import (
	"html"
	"strconv"
	"strings"

	"mailcanvas/internal/models"
)

// ContainerOpen is the opening tag of the fixed-width canvas container.
const ContainerOpen = `<div class="canvas-container" style="position:relative;width:800px;margin:0 auto;min-height:600px;">`

const containerClose = `</div>`

// Generator renders canvas fragments.
//
// In strict mode text content and image sources are HTML-escaped and style
// values that would terminate their declaration are dropped. With strict off
// values are interpolated verbatim, reproducing the markup of the first
// editor release byte for byte, including its markup-injection hole.
type Generator struct {
	Strict bool
}

// New creates a Generator.
func New(strict bool) *Generator {
	return &Generator{Strict: strict}
}

// Fragment renders the container with every known element in list order,
// one element per line. Elements of unknown type are skipped.
func (g *Generator) Fragment(elements []models.Element) string {
	var b strings.Builder
	b.WriteString(ContainerOpen)
	b.WriteByte('\n')
	n := 0
	for i := range elements {
		s := g.Element(&elements[i])
		if s == "" {
			continue
		}
		if n > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(s)
		n++
	}
	if n > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(containerClose)
	return b.String()
}

// Element renders a single element, or "" for an unknown type.
func (g *Generator) Element(el *models.Element) string {
	switch el.Type {
	case models.ElementText:
		return `<div style="` + g.attr(g.textStyle(el)) + `">` + g.text(el.Text) + `</div>`
	case models.ElementImage:
		return `<img src="` + g.attr(el.Src) + `" style="` + g.attr(positionStyle(el)) + `" alt="" />`
	default:
		return ""
	}
}

func positionStyle(el *models.Element) string {
	return "position:absolute;left:" + FormatNumber(el.X) + "px;top:" + FormatNumber(el.Y) + "px;"
}

func (g *Generator) textStyle(el *models.Element) string {
	var b strings.Builder
	b.WriteString(positionStyle(el))
	g.decl(&b, "font-family", el.FontFamily)
	if el.FontSize != 0 {
		b.WriteString("font-size:" + FormatNumber(el.FontSize) + "px;")
	}
	g.decl(&b, "color", el.Fill)
	g.decl(&b, "text-align", el.TextAlign)
	g.decl(&b, "font-style", orDefault(el.FontStyle, "normal"))
	g.decl(&b, "font-weight", orDefault(el.FontWeight, "normal"))
	g.decl(&b, "text-decoration", orDefault(el.TextDecoration, "none"))
	return b.String()
}

// decl writes "prop:value;" unless value is empty or, in strict mode, unsafe.
func (g *Generator) decl(b *strings.Builder, prop, value string) {
	if value == "" {
		return
	}
	if g.Strict && !SafeStyleValue(value) {
		return
	}
	b.WriteString(prop)
	b.WriteByte(':')
	b.WriteString(value)
	b.WriteByte(';')
}

func (g *Generator) text(s string) string {
	if g.Strict {
		return html.EscapeString(s)
	}
	return s
}

func (g *Generator) attr(s string) string {
	if g.Strict {
		return html.EscapeString(s)
	}
	return s
}

// FormatNumber prints a coordinate or size in its shortest decimal form.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
