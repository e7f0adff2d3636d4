// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Handlers run against in-memory stores; the PostgreSQL round trip in
// api_test.go is skipped when the database is unavailable.
package handlers

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"mailcanvas/internal/catalog"
	"mailcanvas/internal/database"
	"mailcanvas/internal/editor"
	"mailcanvas/internal/engine"
	"mailcanvas/internal/facade"
	"mailcanvas/internal/htmlgen"
	"mailcanvas/internal/models"
	"mailcanvas/internal/render"
	"mailcanvas/internal/session"
)

const testLayout = "<!DOCTYPE html><html><body>{{content}}</body></html>"

// memTemplates is an in-memory template repository.
type memTemplates struct {
	mu    sync.Mutex
	byID  map[string]*models.Template
	seq   int
	err   error
	saved int
}

func newMemTemplates() *memTemplates {
	return &memTemplates{byID: make(map[string]*models.Template)}
}

func (m *memTemplates) Create(_ context.Context, t *models.Template) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.seq++
	c := *t
	c.ID = fmt.Sprintf("tpl-%d", m.seq)
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.byID[c.ID] = &c
	m.saved++
	return &c, nil
}

func (m *memTemplates) FindByID(_ context.Context, id string) (*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (m *memTemplates) List(_ context.Context, limit, offset int) ([]models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	all := make([]models.Template, 0, len(m.byID))
	for _, t := range m.byID {
		all = append(all, *t)
	}
	slices.SortFunc(all, func(a, b models.Template) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (m *memTemplates) Delete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.byID[id]
	delete(m.byID, id)
	return ok, nil
}

// memBindings is an in-memory cookie binding store.
type memBindings struct {
	mu   sync.Mutex
	data map[string]session.Data
	seq  int
}

func newMemBindings() *memBindings {
	return &memBindings{data: make(map[string]session.Data)}
}

func (b *memBindings) Create(_ context.Context, w http.ResponseWriter, data *session.Data) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.seq++
	token := fmt.Sprintf("token-%d", b.seq)
	b.data[token] = *data
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: token, Path: "/"})
	return token, nil
}

func (b *memBindings) Get(_ context.Context, r *http.Request) (*session.Data, error) {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	d, ok := b.data[cookie.Value]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (b *memBindings) Destroy(_ context.Context, w http.ResponseWriter, r *http.Request) error {
	cookie, err := r.Cookie(session.CookieName)
	if err != nil {
		return nil
	}
	b.mu.Lock()
	delete(b.data, cookie.Value)
	b.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: session.CookieName, Value: "", Path: "/", MaxAge: -1})
	return nil
}

func (b *memBindings) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// stubFacade answers uploads with a fixed URL and delegates the rest.
type stubFacade struct {
	facade.Facade
	uploaded []string
}

func (s *stubFacade) UploadImage(_ context.Context, data []byte, filename string) (*facade.UploadResult, error) {
	s.uploaded = append(s.uploaded, filename)
	return &facade.UploadResult{ImageURL: "https://cdn.test/uploads/" + filename}, nil
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Templates   *memTemplates
	Bindings    *memBindings
	Persistence facade.Facade
	Engine      *engine.Engine
	Manager     *editor.Manager
	Renderer    *render.Renderer
	API         *API
	Editor      *Editor
	Pages       *Pages
}

// newTestEnv creates a complete test environment. persistence may be nil,
// in which case a Local facade over the in-memory templates is used.
func newTestEnv(t *testing.T, persistence facade.Facade) *testEnv {
	t.Helper()

	templates := newMemTemplates()
	if persistence == nil {
		persistence = facade.NewLocal(templates, facade.WithLayout(testLayout))
	}

	renderer, err := render.New()
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	gen := htmlgen.New(true)
	eng := engine.New(templates, gen)
	manager := editor.NewManager(catalog.MustLoad(), editor.Options{
		Generator:   gen,
		Persistence: persistence,
	}, nil, 0)
	t.Cleanup(manager.Close)

	bindings := newMemBindings()
	ed := NewEditor(manager, bindings)

	return &testEnv{
		Templates:   templates,
		Bindings:    bindings,
		Persistence: persistence,
		Engine:      eng,
		Manager:     manager,
		Renderer:    renderer,
		API:         NewAPI(persistence, templates, eng),
		Editor:      ed,
		Pages:       NewPages(ed, renderer),
	}
}

// serve routes one request to h mounted at pattern.
func serve(method, pattern string, h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.MethodFunc(method, pattern, h)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func multipartRequest(t *testing.T, path, field, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		h := make(map[string][]string)
		h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)}
		if contentType != "" {
			h["Content-Type"] = []string{contentType}
		}
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		part.Write(data)
	} else {
		mw.WriteField("other", "value")
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	decodeBody(t, rec, &body)
	return body.Error
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(b)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "mailcanvas")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "mailcanvas")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := database.Connect(t.Context(), database.Config{DSN: dsn})
	if err != nil {
		t.Skipf("skipping: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := database.Migrate(t.Context(), db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// createSession starts a session through the JSON endpoint and returns its
// state and binding cookie.
func createSession(t *testing.T, env *testEnv, catalogID string) (editor.State, *http.Cookie) {
	t.Helper()
	rec := serve(http.MethodPost, "/api/editor/sessions", env.Editor.CreateSession,
		jsonRequest(http.MethodPost, "/api/editor/sessions", map[string]string{"catalogId": catalogID}))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var st editor.State
	decodeBody(t, rec, &st)

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == session.CookieName {
			cookie = c
		}
	}
	return st, cookie
}

// sessionPath builds a path below a session.
func sessionPath(id string, parts ...string) string {
	return "/api/editor/sessions/" + id + strings.Join(append([]string{""}, parts...), "/")
}
