package canvas

import "mailcanvas/internal/models"

// Restyle returns a copy of el with its typography taken from styles. Exactly
// fontFamily, fontSize, fill, textAlign, fontStyle, fontWeight and
// textDecoration are written. The size always goes through the token table,
// so an empty or unknown token gives DefaultFontSize; an empty font, color
// or alignment keeps the element's own. The caller replaces the element in
// its list by id.
func Restyle(el models.Element, styles models.StyleSet) models.Element {
	out := el
	out.FontFamily = orDefault(styles.ContentFont, el.FontFamily)
	out.FontSize = FontSize(styles.ContentSize)
	out.Fill = orDefault(styles.TextColor, el.Fill)
	out.TextAlign = orDefault(styles.Alignment, el.TextAlign)

	out.FontStyle = "normal"
	if styles.IsItalic {
		out.FontStyle = "italic"
	}
	out.FontWeight = "normal"
	if styles.IsBold {
		out.FontWeight = "bold"
	}
	out.TextDecoration = ""
	if styles.IsUnderline {
		out.TextDecoration = "underline"
	}
	return out
}

// DeriveStyleSet is the inverse projection used on select: it describes el's
// current look as style-panel values. Fields the panel does not control are
// left zero.
func DeriveStyleSet(el models.Element) models.StylePatch {
	size := SizeToken(el.FontSize)
	bold := el.FontWeight == "bold"
	italic := el.FontStyle == "italic"
	underline := el.TextDecoration == "underline"

	patch := models.StylePatch{
		ContentSize: &size,
		IsBold:      &bold,
		IsItalic:    &italic,
		IsUnderline: &underline,
	}
	if el.FontFamily != "" {
		font := el.FontFamily
		patch.ContentFont = &font
	}
	if el.Fill != "" {
		fill := el.Fill
		patch.TextColor = &fill
	}
	if el.TextAlign != "" {
		align := el.TextAlign
		patch.Alignment = &align
	}
	return patch
}
