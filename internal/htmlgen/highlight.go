package htmlgen

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// HighlightStyle is the chroma style used by the code view.
const HighlightStyle = "monokai"

// Highlight renders HTML source as a syntax-highlighted <pre> block with
// inline colors, ready to embed in the code view.
func Highlight(code string) (string, error) {
	lexer := lexers.Get("html")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(HighlightStyle)
	if style == nil {
		style = styles.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return "", fmt.Errorf("tokenising code: %w", err)
	}

	formatter := chromahtml.New(chromahtml.WithLineNumbers(true), chromahtml.TabWidth(4))
	var buf bytes.Buffer
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return "", fmt.Errorf("formatting code: %w", err)
	}
	return buf.String(), nil
}
