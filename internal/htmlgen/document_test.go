package htmlgen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/models"
)

func TestDocument(t *testing.T) {
	frag := htmlgen.New(true).Fragment([]models.Element{{ID: "image-1", Type: models.ElementImage, Src: "a.png"}})
	doc := htmlgen.Document(frag)

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE html>\n<html>\n<head>"))
	assert.True(t, strings.HasSuffix(doc, "</body>\n</html>"))
	assert.Contains(t, doc, `<meta name="viewport" content="width=device-width, initial-scale=1.0">`)
	assert.Contains(t, doc, "@media (max-width: 820px)")
	assert.Contains(t, doc, "<body>\n    "+frag+"\n</body>")
}

func TestGeneratorDocumentMatchesWrappedFragment(t *testing.T) {
	elements := []models.Element{{ID: "content-1", Type: models.ElementText, Text: "x", FontSize: 18}}
	g := htmlgen.New(true)
	assert.Equal(t, htmlgen.Document(g.Fragment(elements)), g.Document(elements))
}

func TestFormatCode(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "no indent", in: "a\nb", want: "a\nb"},
		{name: "deep indent", in: "a\n            b", want: "a\n    b"},
		{name: "tabs", in: "\t\tx", want: "    x"},
		{name: "blank lines fold into indent", in: "a\n\n  b", want: "a\n    b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, htmlgen.FormatCode(tt.in))
		})
	}
}

func TestFormatCodeDocument(t *testing.T) {
	doc := htmlgen.New(true).Document(nil)
	formatted := htmlgen.FormatCode(doc)

	for _, line := range strings.Split(formatted, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		indent := len(line) - len(trimmed)
		assert.True(t, indent == 0 || indent == 4, "line %q has indent %d", line, indent)
	}
	assert.Equal(t, formatted, htmlgen.FormatCode(formatted))
}

func TestHighlight(t *testing.T) {
	out, err := htmlgen.Highlight(`<div class="x">hi</div>`)
	require.NoError(t, err)
	assert.Contains(t, out, "<pre")
	assert.Contains(t, out, "hi")
	assert.NotContains(t, out, `<div class="x">`)
}

func TestDocumentRoundTrip(t *testing.T) {
	elements := []models.Element{
		{ID: "title-1", Type: models.ElementText, Text: "Welcome", X: 50, Y: 50, FontSize: 32, FontFamily: "Arial", Fill: "#333333", TextAlign: "center", FontWeight: "bold"},
		{ID: "image-2", Type: models.ElementImage, Src: "https://images.example.com/a.jpg", X: 50, Y: 150},
	}
	g := htmlgen.New(true)

	htmlContent := g.Fragment(elements)
	generated := htmlgen.Document(htmlContent)

	stored := models.Template{CanvasElements: models.NewStoredElements(elements), HTMLContent: htmlContent, GeneratedHTML: generated}
	assert.Equal(t, stored.GeneratedHTML, g.Document(stored.Elements()))
	assert.Equal(t, stored.HTMLContent, g.Fragment(stored.Elements()))
}
