package view

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/hitoshi/tutorplanet/internal/model"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	return r
}

func render(t *testing.T, r *Renderer, page string, data PageData) string {
	t.Helper()
	var buf bytes.Buffer
	if err := r.Render(&buf, page, data); err != nil {
		t.Fatalf("Render(%s) failed: %v", page, err)
	}
	return buf.String()
}

func TestNewRenderer_LoadsAllPages(t *testing.T) {
	r := newTestRenderer(t)

	pages := []string{
		PageIndex, PageBrowseTutors, PageTutorProfile, PageTutorSignup,
		PageTutorLogin, PageTutorAccount, PagePermissionDenied, PageNotFound, PageError,
	}
	for _, p := range pages {
		if _, ok := r.templates[p]; !ok {
			t.Errorf("page %q not loaded", p)
		}
	}
}

func TestRender_Index(t *testing.T) {
	body := render(t, newTestRenderer(t), PageIndex, PageData{})

	for _, want := range []string{
		"<h1>Tutor Planet</h1>",
		"<h2>Welcome to Tutor Planet!</h2>",
		`id="goToBrowseTutorsButton"`,
		`id="goToSignUpAsTutorButton"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestRender_Signup(t *testing.T) {
	body := render(t, newTestRenderer(t), PageTutorSignup, PageData{Title: "Sign up"})

	if !strings.Contains(body, `<form id="tutor-signup-form">`) {
		t.Error("signup page missing form")
	}
	if !strings.Contains(body, `<button type="submit">Sign Up</button>`) {
		t.Error("signup page missing submit button")
	}
	if !strings.Contains(body, "<title>Sign up | Tutor Planet</title>") {
		t.Error("signup page missing title")
	}
}

func TestRender_BrowseTutors_ListsProfiles(t *testing.T) {
	body := render(t, newTestRenderer(t), PageBrowseTutors, PageData{
		Tutors: []model.TutorProfile{
			{ID: 1, Name: "John Doe", Email: "john.doe@tutorplanet.co.uk"},
			{ID: 2, Name: "Jane Smith", Email: "jane.smith@tutorplanet.co.uk"},
		},
	})

	for _, want := range []string{`href="/tutor-1-profile"`, "John Doe", `href="/tutor-2-profile"`, "Jane Smith"} {
		if !strings.Contains(body, want) {
			t.Errorf("browse page missing %q", want)
		}
	}
}

func TestRender_BrowseTutors_Empty(t *testing.T) {
	body := render(t, newTestRenderer(t), PageBrowseTutors, PageData{})
	if !strings.Contains(body, "No tutors have signed up yet.") {
		t.Error("expected empty-state message")
	}
}

func TestRender_EscapesTutorName(t *testing.T) {
	body := render(t, newTestRenderer(t), PageTutorProfile, PageData{
		Tutor: &model.TutorProfile{ID: 3, Name: "<script>alert(1)</script>", Email: "x@example.com"},
	})

	if strings.Contains(body, "<script>alert(1)</script>") {
		t.Error("tutor name should be escaped")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Error("expected escaped markup in output")
	}
}

func TestRender_Account(t *testing.T) {
	body := render(t, newTestRenderer(t), PageTutorAccount, PageData{
		Identity: model.Authenticated(1, model.PrincipalTutor),
		Tutor:    &model.TutorProfile{ID: 1, Name: "John Doe", Email: "john.doe@tutorplanet.co.uk"},
	})

	for _, want := range []string{"My account", "John Doe", "john.doe@tutorplanet.co.uk", `id="logoutButton"`} {
		if !strings.Contains(body, want) {
			t.Errorf("account page missing %q", want)
		}
	}
}

func TestRender_NavigationReflectsIdentity(t *testing.T) {
	r := newTestRenderer(t)

	anonymous := render(t, r, PageIndex, PageData{})
	if strings.Contains(anonymous, "logoutButton") {
		t.Error("anonymous page should not show logout")
	}
	if !strings.Contains(anonymous, `href="/tutor-login"`) {
		t.Error("anonymous page should link to login")
	}

	loggedIn := render(t, r, PageIndex, PageData{Identity: model.Authenticated(2, model.PrincipalTutor)})
	if !strings.Contains(loggedIn, `href="/tutor-2-account"`) {
		t.Error("logged-in page should link to own account")
	}
}

func TestRender_PermissionDenied(t *testing.T) {
	body := render(t, newTestRenderer(t), PagePermissionDenied, PageData{})
	if !strings.Contains(body, "Permission denied") {
		t.Error("expected permission denied heading")
	}
}

func TestRender_UnknownPage_ReturnsError(t *testing.T) {
	r := newTestRenderer(t)
	if err := r.Render(io.Discard, "missing", PageData{}); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestRenderHTTP_WritesStatusAndContentType(t *testing.T) {
	r := newTestRenderer(t)
	w := httptest.NewRecorder()

	if err := r.RenderHTTP(w, http.StatusForbidden, PagePermissionDenied, PageData{}); err != nil {
		t.Fatalf("RenderHTTP failed: %v", err)
	}
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRenderHTTP_UnknownPage_WritesNothing(t *testing.T) {
	r := newTestRenderer(t)
	w := httptest.NewRecorder()

	if err := r.RenderHTTP(w, http.StatusOK, "missing", PageData{}); err == nil {
		t.Fatal("expected error")
	}
	if w.Body.Len() != 0 {
		t.Error("nothing should be written on render failure")
	}
}

func TestNewRenderer_ParseError(t *testing.T) {
	fsys := fstest.MapFS{
		"shared/layout.html": {Data: []byte(`{{define "layout"}}{{template "content" .}}{{end}}`)},
		"broken.html":        {Data: []byte(`{{template "layout" .}}{{define "content"}}{{.Title}{{end}}`)},
	}
	if _, err := newRenderer(fsys); err == nil {
		t.Error("expected parse error")
	}
}

func TestStaticHandler_ServesScript(t *testing.T) {
	h := StaticHandler("/static/")

	req := httptest.NewRequest(http.MethodGet, "/static/script.js", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "goToBrowseTutorsButton") {
		t.Error("unexpected script content")
	}
}

func TestStaticHandler_Missing_Returns404(t *testing.T) {
	h := StaticHandler("/static/")

	req := httptest.NewRequest(http.MethodGet, "/static/nope.js", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
