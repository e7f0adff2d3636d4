package canvas

// DefaultFontSize is used for unknown size tokens.
const DefaultFontSize = 16

// DefaultSizeToken is reported for pixel sizes outside the token table.
const DefaultSizeToken = "sm"

var sizeTokens = map[string]float64{
	"xxs": 12,
	"xs":  14,
	"sm":  16,
	"md":  18,
	"lg":  24,
	"xl":  32,
}

// SizeTokens lists the size tokens from smallest to largest.
var SizeTokens = []string{"xxs", "xs", "sm", "md", "lg", "xl"}

// FontSize resolves a size token to pixels.
func FontSize(token string) float64 {
	if px, ok := sizeTokens[token]; ok {
		return px
	}
	return DefaultFontSize
}

// SizeToken buckets a pixel size back to its token. Only exact table values
// match; anything else is reported as DefaultSizeToken.
func SizeToken(px float64) string {
	for token, v := range sizeTokens {
		if v == px {
			return token
		}
	}
	return DefaultSizeToken
}

// IsSizeToken reports whether token is in the size table.
func IsSizeToken(token string) bool {
	_, ok := sizeTokens[token]
	return ok
}
