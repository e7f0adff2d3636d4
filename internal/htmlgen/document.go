package htmlgen

import (
	"regexp"
	"strings"

	"mailcanvas/internal/models"
)

const documentHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Canvas Preview</title>
    <style>
        body { margin: 0; padding: 20px; }
        .canvas-container {
            position: relative;
            width: 800px;
            margin: 0 auto;
            min-height: 600px;
            background: #ffffff;
            box-shadow: 0 0 10px rgba(0,0,0,0.1);
        }
        @media (max-width: 820px) {
            .canvas-container {
                width: 100%;
                transform: scale(1);
                transform-origin: top center;
            }
        }
    </style>
</head>
<body>
    `

const documentTail = `
</body>
</html>`

// DownloadFilename is the name offered when the code view is saved to disk.
const DownloadFilename = "canvas-design.html"

// Document wraps a fragment in the standalone document used for preview,
// the code view and downloads.
func Document(fragment string) string {
	var b strings.Builder
	b.Grow(len(documentHead) + len(fragment) + len(documentTail))
	b.WriteString(documentHead)
	b.WriteString(fragment)
	b.WriteString(documentTail)
	return b.String()
}

// Document renders elements straight to a standalone document.
func (g *Generator) Document(elements []models.Element) string {
	return Document(g.Fragment(elements))
}

var leadingSpace = regexp.MustCompile(`(?m)^\s+`)

// FormatCode normalizes indentation for display, copy and download: any
// run of leading whitespace becomes four spaces.
func FormatCode(doc string) string {
	return leadingSpace.ReplaceAllString(doc, "    ")
}
