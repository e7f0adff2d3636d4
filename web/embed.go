// Package web provides the embedded email layout served to editors. The
// layout wraps a generated canvas fragment for sending; {{title}} and
// {{content}} are its placeholders.
package web

import (
	_ "embed"
	"strings"
)

// EmailLayout is the email layout document.
//
//go:embed templates/layout.html
var EmailLayout string

// Wrap fills the layout placeholders with title and a canvas fragment.
func Wrap(layout, title, fragment string) string {
	return strings.NewReplacer("{{title}}", title, "{{content}}", fragment).Replace(layout)
}
