package canvas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/models"
)

func TestRestyle(t *testing.T) {
	el := models.Element{
		ID: "content-1", Type: models.ElementText, X: 10, Y: 20, Text: "Hello",
		FontSize: 16, FontFamily: "Arial", Fill: "#000000", TextAlign: "left",
	}
	styles := models.StyleSet{
		ContentFont: "Georgia", ContentSize: "xl", TextColor: "#ff0000", Alignment: "right",
		IsBold: true, IsItalic: true, IsUnderline: true,
	}

	got := canvas.Restyle(el, styles)

	want := el
	want.FontFamily = "Georgia"
	want.FontSize = 32
	want.Fill = "#ff0000"
	want.TextAlign = "right"
	want.FontStyle = "italic"
	want.FontWeight = "bold"
	want.TextDecoration = "underline"
	assert.Equal(t, want, got)
	assert.Equal(t, "Arial", el.FontFamily, "input must not be modified")
}

func TestRestyle_EmptyStyleKeepsFontColorAlignment(t *testing.T) {
	el := models.Element{
		ID: "title-1", Type: models.ElementText, Text: "T",
		FontSize: 24, FontFamily: "Helvetica", Fill: "#ff4444", TextAlign: "center",
		FontWeight: "bold", TextDecoration: "underline",
	}

	got := canvas.Restyle(el, models.StyleSet{})

	assert.Equal(t, float64(canvas.DefaultFontSize), got.FontSize, "size follows the token table")
	assert.Equal(t, "Helvetica", got.FontFamily)
	assert.Equal(t, "#ff4444", got.Fill)
	assert.Equal(t, "center", got.TextAlign)
	assert.Equal(t, "normal", got.FontStyle)
	assert.Equal(t, "normal", got.FontWeight)
	assert.Equal(t, "", got.TextDecoration)
	assert.Equal(t, "T", got.Text)
}

func TestDeriveStyleSet(t *testing.T) {
	el := models.Element{
		ID: "content-1", Type: models.ElementText,
		FontSize: 18, FontFamily: "Georgia", Fill: "#222222", TextAlign: "justify",
		FontStyle: "italic", FontWeight: "bold",
	}

	got := canvas.DeriveStyleSet(el).Apply(models.StyleSet{TitleFont: "Arial", ContentSize: "xl", IsUnderline: true})

	assert.Equal(t, models.StyleSet{
		TitleFont:   "Arial",
		ContentFont: "Georgia",
		ContentSize: "md",
		TextColor:   "#222222",
		Alignment:   "justify",
		IsBold:      true,
		IsItalic:    true,
		IsUnderline: false,
	}, got)
}

func TestDeriveStyleSet_UnknownPixelSize(t *testing.T) {
	got := canvas.DeriveStyleSet(models.Element{FontSize: 36}).Apply(models.StyleSet{})
	assert.Equal(t, "sm", got.ContentSize)
}

func TestDeriveThenRestyleIsStable(t *testing.T) {
	el := models.Element{
		ID: "content-1", Type: models.ElementText, Text: "x",
		FontSize: 24, FontFamily: "Arial", Fill: "#333333", TextAlign: "left",
		FontStyle: "normal", FontWeight: "bold", TextDecoration: "",
	}
	styles := canvas.DeriveStyleSet(el).Apply(models.StyleSet{})
	assert.Equal(t, el, canvas.Restyle(el, styles))
}

func TestRestyle_SizeAlwaysFromTokenTable(t *testing.T) {
	el := models.Element{ID: "content-1", Type: models.ElementText, Text: "Body", FontSize: 32}

	for _, token := range []string{"", "giant"} {
		got := canvas.Restyle(el, models.StyleSet{ContentSize: token})
		assert.Equal(t, float64(16), got.FontSize, "token %q", token)
	}
	assert.Equal(t, canvas.FontSize("lg"), canvas.Restyle(el, models.StyleSet{ContentSize: "lg"}).FontSize)
}
