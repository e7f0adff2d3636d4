package interaction_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/interaction"
	"mailcanvas/internal/models"
)

func newEngine(t *testing.T) (*interaction.Engine, *canvas.Model) {
	t.Helper()
	m, err := canvas.NewModel([]models.Element{
		{ID: "title-1", Type: models.ElementText, Text: "Title", X: 50, Y: 50, FontSize: 24, FontFamily: "Arial", Fill: "#000", TextAlign: "center", FontWeight: "bold"},
		{ID: "image-2", Type: models.ElementImage, Src: "http://x/y.png", X: 100, Y: 200},
		{ID: "content-3", Type: models.ElementText, Text: "Body", X: 50, Y: 120, FontSize: 16},
	})
	require.NoError(t, err)
	return interaction.New(m, canvas.NewFactory(canvas.NewIDGenerator())), m
}

func TestPointerDown_SelectsExclusively(t *testing.T) {
	e, _ := newEngine(t)

	_, ok, err := e.PointerDown("title-1", interaction.Mouse, interaction.Point{X: 60, Y: 55})
	require.NoError(t, err)
	require.True(t, ok)
	e.PointerUp(interaction.Mouse)

	_, _, err = e.PointerDown("image-2", interaction.Mouse, interaction.Point{X: 110, Y: 210})
	require.NoError(t, err)

	assert.Equal(t, "image-2", e.SelectedID())
}

func TestDrag_OnlyPositionChanges(t *testing.T) {
	e, m := newEngine(t)
	before, _ := m.Find("image-2")

	_, _, err := e.PointerDown("image-2", interaction.Mouse, interaction.Point{X: 110, Y: 215})
	require.NoError(t, err)

	moved, err := e.PointerMove(interaction.Mouse, interaction.Point{X: 10, Y: -5})
	require.NoError(t, err)
	assert.True(t, moved)

	after, _ := m.Find("image-2")
	want := before
	want.X, want.Y = 0, -20
	assert.Equal(t, want, after)

	assert.True(t, e.PointerUp(interaction.Mouse))
	assert.Equal(t, "image-2", e.SelectedID(), "selection survives pointer up")

	moved, err = e.PointerMove(interaction.Mouse, interaction.Point{X: 500, Y: 500})
	require.NoError(t, err)
	assert.False(t, moved, "no drag after pointer up")
	after, _ = m.Find("image-2")
	assert.Equal(t, float64(0), after.X)
}

func TestDrag_SingleModality(t *testing.T) {
	e, m := newEngine(t)

	_, ok, err := e.PointerDown("content-3", interaction.Touch, interaction.Point{X: 50, Y: 120})
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = e.PointerDown("title-1", interaction.Mouse, interaction.Point{X: 0, Y: 0})
	require.NoError(t, err)
	assert.False(t, ok, "mouse down during a touch drag is ignored")
	assert.Equal(t, "content-3", e.SelectedID())

	moved, _ := e.PointerMove(interaction.Mouse, interaction.Point{X: 999, Y: 999})
	assert.False(t, moved)
	assert.False(t, e.PointerUp(interaction.Mouse))

	moved, _ = e.PointerMove(interaction.Touch, interaction.Point{X: 70, Y: 140})
	assert.True(t, moved)
	el, _ := m.Find("content-3")
	assert.Equal(t, float64(70), el.X)
	assert.Equal(t, float64(140), el.Y)
}

func TestPointerMoveBatch_AppliesLastSample(t *testing.T) {
	e, m := newEngine(t)
	_, _, err := e.PointerDown("title-1", interaction.Mouse, interaction.Point{X: 50, Y: 50})
	require.NoError(t, err)

	moved, err := e.PointerMoveBatch(interaction.Mouse, []interaction.Point{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 300, Y: 400}})
	require.NoError(t, err)
	assert.True(t, moved)

	el, _ := m.Find("title-1")
	assert.Equal(t, float64(300), el.X)
	assert.Equal(t, float64(400), el.Y)

	moved, err = e.PointerMoveBatch(interaction.Mouse, nil)
	require.NoError(t, err)
	assert.False(t, moved)
}

func TestPointerDown_Errors(t *testing.T) {
	e, _ := newEngine(t)

	_, _, err := e.PointerDown("missing", interaction.Mouse, interaction.Point{})
	assert.True(t, errors.Is(err, canvas.ErrNotFound))

	_, _, err = e.PointerDown("title-1", "pen", interaction.Point{})
	assert.True(t, canvas.IsValidation(err))
}

func TestCommitText(t *testing.T) {
	e, m := newEngine(t)

	require.NoError(t, e.CommitText("content-3", "Edited"))
	el, _ := m.Find("content-3")
	assert.Equal(t, "Edited", el.Text)

	require.NoError(t, e.CommitText("content-3", ""))
	el, _ = m.Find("content-3")
	assert.Equal(t, "", el.Text)

	assert.True(t, canvas.IsValidation(e.CommitText("image-2", "nope")))
	assert.True(t, errors.Is(e.CommitText("missing", "x"), canvas.ErrNotFound))
}

func TestDelete(t *testing.T) {
	e, m := newEngine(t)

	_, err := e.DeleteSelected()
	assert.True(t, canvas.IsValidation(err), "nothing selected")
	assert.Equal(t, 3, m.Len())

	_, _, err = e.PointerDown("image-2", interaction.Mouse, interaction.Point{})
	require.NoError(t, err)

	id, err := e.DeleteSelected()
	require.NoError(t, err)
	assert.Equal(t, "image-2", id)
	assert.Equal(t, "", e.SelectedID())
	_, _, dragging := e.Dragging()
	assert.False(t, dragging)

	got := m.Elements()
	require.Len(t, got, 2)
	assert.Equal(t, "title-1", got[0].ID)
	assert.Equal(t, "content-3", got[1].ID)
}

func TestDelete_OtherElementKeepsSelection(t *testing.T) {
	e, _ := newEngine(t)
	_, err := e.Select("title-1")
	require.NoError(t, err)

	require.NoError(t, e.Delete("content-3"))
	assert.Equal(t, "title-1", e.SelectedID())
}

func TestRestyleSelected(t *testing.T) {
	e, m := newEngine(t)
	styles := models.StyleSet{ContentFont: "Georgia", ContentSize: "lg", TextColor: "#111", Alignment: "right", IsItalic: true}

	_, changed, err := e.RestyleSelected(styles)
	require.NoError(t, err)
	assert.False(t, changed, "nothing selected")

	_, err = e.Select("content-3")
	require.NoError(t, err)
	el, changed, err := e.RestyleSelected(styles)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "Georgia", el.FontFamily)
	assert.Equal(t, float64(24), el.FontSize)
	assert.Equal(t, "italic", el.FontStyle)

	title, _ := m.Find("title-1")
	assert.Equal(t, "Arial", title.FontFamily, "unselected elements are never restyled")

	_, err = e.Select("image-2")
	require.NoError(t, err)
	_, changed, err = e.RestyleSelected(styles)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestAddTitle_EmptyAddsNothing(t *testing.T) {
	e, m := newEngine(t)
	_, err := e.AddTitle("", models.StyleSet{})
	assert.True(t, canvas.IsValidation(err))
	assert.Equal(t, 3, m.Len())
}

func TestAddContentAndImage(t *testing.T) {
	e, m := newEngine(t)

	c, err := e.AddContent("Hello", models.StyleSet{ContentSize: "md"})
	require.NoError(t, err)
	img, err := e.AddImageURL("https://cdn.example.com/a.png")
	require.NoError(t, err)

	got := m.Elements()
	require.Len(t, got, 5)
	assert.Equal(t, c.ID, got[3].ID)
	assert.Equal(t, img.ID, got[4].ID)
	assert.NotEqual(t, c.ID, img.ID)
}

func TestDrop(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects non-image", func(t *testing.T) {
		e, m := newEngine(t)
		_, err := e.Drop(ctx, strings.NewReader("%PDF-1.4"), "application/pdf")
		assert.True(t, canvas.IsValidation(err))
		assert.Equal(t, 3, m.Len())
	})

	t.Run("image becomes data uri element", func(t *testing.T) {
		e, m := newEngine(t)
		el, err := e.Drop(ctx, strings.NewReader("GIF89a"), "image/gif")
		require.NoError(t, err)
		assert.Equal(t, models.ElementImage, el.Type)
		assert.True(t, strings.HasPrefix(el.Src, "data:image/gif;base64,"))
		assert.Equal(t, 4, m.Len())
	})
}
