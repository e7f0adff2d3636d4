// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug turns template names into URL and file name friendly slugs.
package slug

import (
	"strings"

	gslug "github.com/gosimple/slug"
)

// maxLength caps generated slugs; long template names make unwieldy files.
const maxLength = 80

// Fallback is used when a name has no sluggable characters.
const Fallback = "template"

// Generate creates a slug from the given string, transliterating accents.
// Example: "Spring Sale! 2026" → "spring-sale-2026"
func Generate(s string) string {
	result := gslug.Make(s)
	if len(result) > maxLength {
		result = strings.TrimRight(result[:maxLength], "-")
	}
	return result
}

// Filename returns the download file name for a template, e.g.
// "spring-sale.html". Names that slug to nothing use Fallback.
func Filename(name string) string {
	s := Generate(name)
	if s == "" {
		s = Fallback
	}
	return s + ".html"
}
