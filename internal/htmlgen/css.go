package htmlgen

import (
	"io"
	"strings"

	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

var colorFunctions = map[string]bool{
	"rgb(":  true,
	"rgba(": true,
	"hsl(":  true,
	"hsla(": true,
}

// SafeStyleValue reports whether v can be placed after "prop:" in an inline
// style attribute without ending the declaration or opening a block.
func SafeStyleValue(v string) bool {
	if strings.ContainsAny(v, "<>\\") {
		return false
	}
	l := css.NewLexer(parse.NewInputString(v))
	for {
		tt, data := l.Next()
		switch tt {
		case css.ErrorToken:
			return l.Err() == io.EOF
		case css.SemicolonToken, css.LeftBraceToken, css.RightBraceToken,
			css.BadStringToken, css.BadURLToken, css.CDOToken, css.CDCToken,
			css.ColonToken, css.AtKeywordToken:
			return false
		case css.URLToken:
			return false
		case css.FunctionToken:
			if !colorFunctions[strings.ToLower(string(data))] {
				return false
			}
		}
	}
}
