package editor_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailcanvas/internal/canvas"
	"mailcanvas/internal/editor"
	"mailcanvas/internal/facade"
	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/interaction"
	"mailcanvas/internal/models"
)

type fakeFacade struct {
	mu        sync.Mutex
	saves     []facade.SaveRequest
	uploads   int
	layout    string
	layoutErr error
	uploadErr error
	saveErr   error
}

func (f *fakeFacade) FetchLayout(context.Context) (string, error) {
	return f.layout, f.layoutErr
}

func (f *fakeFacade) UploadImage(_ context.Context, _ []byte, filename string) (*facade.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return &facade.UploadResult{ImageURL: "https://cdn.example.com/media/" + filename}, nil
}

func (f *fakeFacade) SaveTemplate(_ context.Context, req facade.SaveRequest) (*facade.SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saves = append(f.saves, req)
	return &facade.SaveResult{Success: true, Message: facade.SavedMessage, Template: &models.Template{ID: "t1", Name: req.Name}}, nil
}

type recordingSink struct {
	mu    sync.Mutex
	snaps []models.CanvasSnapshot
	err   error
}

func (r *recordingSink) PublishSnapshot(_ context.Context, _ string, snap models.CanvasSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snaps = append(r.snaps, snap)
	return r.err
}

func (r *recordingSink) last() (models.CanvasSnapshot, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snaps) == 0 {
		return models.CanvasSnapshot{}, 0
	}
	return r.snaps[len(r.snaps)-1], len(r.snaps)
}

func seedDraft() models.Draft {
	return models.Draft{
		Name:         "Welcome Email",
		TemplateType: "email",
		Styles:       models.StyleSet{ContentFont: "Arial", ContentSize: "md", TextColor: "#333333", Alignment: "left"},
		Elements: []models.Element{
			{ID: "title-welcome", Type: models.ElementText, Text: "Welcome!", X: 50, Y: 50, FontSize: 32, FontFamily: "Arial", Fill: "#333333", TextAlign: "center", FontWeight: "bold"},
			{ID: "image-welcome", Type: models.ElementImage, Src: "https://images.example.com/a.jpg", X: 50, Y: 120},
		},
	}
}

func newSession(t *testing.T, f facade.Facade, sinks ...editor.SnapshotSink) *editor.Session {
	t.Helper()
	s, err := editor.NewSession("s1", seedDraft(), editor.Options{
		Generator:   htmlgen.New(true),
		Persistence: f,
		Sinks:       sinks,
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestNewSession_PublishesInitialSnapshot(t *testing.T) {
	s := newSession(t, &fakeFacade{})
	snap := s.Snapshot()

	require.Len(t, snap.Elements, 2)
	assert.Equal(t, s.Handle().Generate(), snap.HTML)
	assert.False(t, snap.LastUpdate.IsZero())
}

func TestNewSession_RejectsDuplicateIDs(t *testing.T) {
	d := seedDraft()
	d.Elements = append(d.Elements, d.Elements[0])
	_, err := editor.NewSession("s1", d, editor.Options{})
	assert.True(t, canvas.IsValidation(err))
}

func TestAddTitle_EmptyIsRejected(t *testing.T) {
	s := newSession(t, &fakeFacade{})
	before := s.Snapshot()

	_, err := s.AddTitle("")
	assert.True(t, canvas.IsValidation(err))
	assert.Equal(t, before, s.Snapshot())
}

func TestAddContent_RepublishesSnapshot(t *testing.T) {
	sink := &recordingSink{}
	s := newSession(t, &fakeFacade{}, sink)

	el, err := s.AddContent("Hello")
	require.NoError(t, err)

	snap := s.Snapshot()
	require.Len(t, snap.Elements, 3)
	assert.Equal(t, el.ID, snap.Elements[2].ID)
	assert.Contains(t, snap.HTML, ">Hello</div>")
	assert.Contains(t, snap.HTML, "font-size:18px;")

	assert.Eventually(t, func() bool {
		last, _ := sink.last()
		return len(last.Elements) == 3
	}, time.Second, 5*time.Millisecond)
}

func TestSinkFailureIsIgnored(t *testing.T) {
	sink := &recordingSink{err: errors.New("valkey down")}
	s := newSession(t, &fakeFacade{}, sink)

	_, err := s.AddContent("still works")
	require.NoError(t, err)
	assert.Len(t, s.Snapshot().Elements, 3)
}

func TestSelectProjectsStylesAndStyleChangeRestylesSelectedOnly(t *testing.T) {
	s := newSession(t, &fakeFacade{})
	content, err := s.AddContent("Body")
	require.NoError(t, err)

	st, err := s.Select("title-welcome")
	require.NoError(t, err)
	assert.Equal(t, "xl", st.Styles.ContentSize)
	assert.True(t, st.Styles.IsBold)
	assert.Equal(t, "center", st.Styles.Alignment)

	color := "#ff0000"
	st, err = s.UpdateStyles(models.StylePatch{TextColor: &color})
	require.NoError(t, err)

	byID := map[string]models.Element{}
	for _, el := range st.Elements {
		byID[el.ID] = el
	}
	assert.Equal(t, "#ff0000", byID["title-welcome"].Fill)
	assert.Equal(t, float64(32), byID["title-welcome"].FontSize)
	assert.Equal(t, "Welcome!", byID["title-welcome"].Text)
	assert.Equal(t, content.Fill, byID[content.ID].Fill, "unselected element untouched")
	assert.Contains(t, s.Snapshot().HTML, "color:#ff0000;")
}

func TestUpdateStyles_UnknownSize(t *testing.T) {
	s := newSession(t, &fakeFacade{})
	size := "giant"
	_, err := s.UpdateStyles(models.StylePatch{ContentSize: &size})
	assert.True(t, canvas.IsValidation(err))
}

func TestDragUpdatesSnapshot(t *testing.T) {
	s := newSession(t, &fakeFacade{})

	_, err := s.PointerDown("image-welcome", interaction.Mouse, interaction.Point{X: 60, Y: 130})
	require.NoError(t, err)
	st, err := s.PointerMove(interaction.Mouse, interaction.Point{X: 100, Y: 100}, interaction.Point{X: 210, Y: 330})
	require.NoError(t, err)
	assert.Equal(t, "image-welcome", st.DraggingID)

	st = s.PointerUp(interaction.Mouse)
	assert.Empty(t, st.DraggingID)
	assert.Equal(t, "image-welcome", st.SelectedID)
	assert.Contains(t, s.Snapshot().HTML, "left:200px;top:320px;")
}

func TestDeleteSelected(t *testing.T) {
	s := newSession(t, &fakeFacade{})

	_, err := s.DeleteSelected()
	assert.True(t, canvas.IsValidation(err))

	_, err = s.Select("title-welcome")
	require.NoError(t, err)
	id, err := s.DeleteSelected()
	require.NoError(t, err)
	assert.Equal(t, "title-welcome", id)

	st := s.State()
	assert.Empty(t, st.SelectedID)
	require.Len(t, st.Elements, 1)
	assert.Equal(t, "image-welcome", st.Elements[0].ID)
	assert.NotContains(t, st.Snapshot.HTML, "Welcome!")
}

func TestCommitText(t *testing.T) {
	s := newSession(t, &fakeFacade{})
	el, err := s.CommitText("title-welcome", "")
	require.NoError(t, err)
	assert.Equal(t, "", el.Text)
	assert.Contains(t, s.Snapshot().HTML, `text-decoration:none;"></div>`)
}

func TestAddImageFile(t *testing.T) {
	s := newSession(t, &fakeFacade{})
	ctx := context.Background()

	el, err := s.AddImageFile(ctx, []byte("GIF89a"), "image/gif").Wait(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(el.Src, "data:image/gif;base64,"))
	assert.Len(t, s.State().Elements, 3)

	_, err = s.AddImageFile(ctx, []byte("plain"), "text/plain").Wait(ctx)
	assert.True(t, canvas.IsValidation(err))
	assert.Len(t, s.State().Elements, 3, "failed encode leaves the list unchanged")
}

func TestAddImageFile_InterleavesWithEdits(t *testing.T) {
	s := newSession(t, &fakeFacade{})
	ctx := context.Background()

	p := s.AddImageFile(ctx, []byte("GIF89a"), "image/gif")
	_, err := s.AddContent("typed meanwhile")
	require.NoError(t, err)
	img, err := p.Wait(ctx)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, el := range s.State().Elements {
		assert.False(t, ids[el.ID])
		ids[el.ID] = true
	}
	assert.True(t, ids[img.ID])
	assert.Len(t, ids, 4)
}

func TestDrop_RejectsNonImage(t *testing.T) {
	s := newSession(t, &fakeFacade{})
	_, err := s.Drop(context.Background(), []byte("%PDF"), "application/pdf")
	assert.True(t, canvas.IsValidation(err))
}

func TestAddImageUpload(t *testing.T) {
	f := &fakeFacade{}
	s := newSession(t, f)

	el, err := s.AddImageUpload(context.Background(), []byte("GIF89a"), "a.gif")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/media/a.gif", el.Src)

	f.uploadErr = errors.New("bucket unreachable")
	_, err = s.AddImageUpload(context.Background(), []byte("GIF89a"), "b.gif")
	assert.True(t, canvas.IsIO(err))
	assert.Len(t, s.State().Elements, 3)
}

func TestSave_EmptyNameNeverCallsFacade(t *testing.T) {
	f := &fakeFacade{}
	s := newSession(t, f)
	empty := ""
	s.SetMeta(editor.Meta{Name: &empty})

	_, err := s.Save(context.Background())
	assert.True(t, canvas.IsValidation(err))
	assert.Empty(t, f.saves)

	title := "   "
	name := "n"
	s.SetMeta(editor.Meta{Name: &name, Title: &title})
	_, err = s.Save(context.Background())
	assert.True(t, canvas.IsValidation(err))
	assert.Empty(t, f.saves)
}

func TestSave(t *testing.T) {
	f := &fakeFacade{}
	s := newSession(t, f)
	title := "Hello there"
	s.SetMeta(editor.Meta{Title: &title})

	res, err := s.Save(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Success)

	require.Len(t, f.saves, 1)
	req := f.saves[0]
	assert.Equal(t, "Welcome Email", req.Name)
	assert.Equal(t, "Hello there", req.Title)
	assert.Equal(t, "email", req.TemplateType)
	require.Len(t, req.CanvasElements, 2)
	assert.Equal(t, "title", req.CanvasElements[0].ElementType)
	assert.Equal(t, "image", req.CanvasElements[1].ElementType)
	assert.Equal(t, s.Handle().Generate(), req.HTMLContent)
	assert.Equal(t, htmlgen.Document(req.HTMLContent), req.GeneratedHTML)
}

func TestSave_FailureKeepsSessionEditable(t *testing.T) {
	f := &fakeFacade{saveErr: errors.New("server said no")}
	s := newSession(t, f)
	title := "T"
	s.SetMeta(editor.Meta{Title: &title})

	_, err := s.Save(context.Background())
	require.Error(t, err)

	_, err = s.AddContent("more")
	require.NoError(t, err)

	f.saveErr = nil
	_, err = s.Save(context.Background())
	require.NoError(t, err)
	assert.Len(t, f.saves[0].CanvasElements, 3)
}

func TestViews(t *testing.T) {
	s := newSession(t, &fakeFacade{})

	v, err := s.SetView(editor.ViewEdit)
	require.NoError(t, err)
	assert.Len(t, v.Elements, 2)

	require.NoError(t, s.SetDevice(editor.DeviceMobile))
	v, err = s.SetView(editor.ViewPreview)
	require.NoError(t, err)
	assert.Equal(t, editor.DeviceMobile, v.Device)
	assert.Equal(t, s.Document(), v.Document)

	v, err = s.SetView(editor.ViewCode)
	require.NoError(t, err)
	assert.Equal(t, s.Code(), v.Code)
	assert.Contains(t, v.Highlighted, "<pre")
	assert.Equal(t, editor.ViewCode, s.State().View)

	_, err = s.SetView("split")
	assert.True(t, canvas.IsValidation(err))
	assert.True(t, canvas.IsValidation(s.SetDevice("watch")))
}

func TestLoadLayout(t *testing.T) {
	f := &fakeFacade{layout: "<html>layout</html>"}
	s := newSession(t, f)
	assert.Equal(t, "<html>layout</html>", s.LoadLayout(context.Background()))

	f.layoutErr = errors.New("offline")
	assert.Equal(t, "<html>layout</html>", s.LoadLayout(context.Background()))
}
