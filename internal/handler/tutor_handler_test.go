package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/tutor"
)

// --- モック定義 ---

type mockTutorService struct {
	signupFn  func(ctx context.Context, input tutor.SignupInput) (*tutor.SignupResult, error)
	profileFn func(ctx context.Context, id int64) (*model.TutorProfile, error)
	browseFn  func(ctx context.Context) ([]model.TutorProfile, error)
}

func (m *mockTutorService) Signup(ctx context.Context, input tutor.SignupInput) (*tutor.SignupResult, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, input)
	}
	return &tutor.SignupResult{Message: model.MessageSignupSucceeded, TutorID: 1}, nil
}

func (m *mockTutorService) Profile(ctx context.Context, id int64) (*model.TutorProfile, error) {
	if m.profileFn != nil {
		return m.profileFn(ctx, id)
	}
	return nil, model.NewTutorNotFoundError(id)
}

func (m *mockTutorService) Browse(ctx context.Context) ([]model.TutorProfile, error) {
	if m.browseFn != nil {
		return m.browseFn(ctx)
	}
	return []model.TutorProfile{}, nil
}

func newSignupFormRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/tutor-signup", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// --- テスト ---

func TestTutorHandler_Index(t *testing.T) {
	h := NewTutorHandler(&mockTutorService{}, newTestRenderer(t))

	w := httptest.NewRecorder()
	h.Index(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	for _, want := range []string{"Welcome to Tutor Planet", "goToBrowseTutorsButton", "goToSignUpAsTutorButton"} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestTutorHandler_Browse(t *testing.T) {
	svc := &mockTutorService{
		browseFn: func(context.Context) ([]model.TutorProfile, error) {
			return []model.TutorProfile{
				{ID: 1, Name: "John Doe", Email: "john.doe@tutorplanet.co.uk"},
				{ID: 2, Name: "<b>Jane</b>", Email: "jane.smith@tutorplanet.co.uk"},
			}, nil
		},
	}
	h := NewTutorHandler(svc, newTestRenderer(t))

	w := httptest.NewRecorder()
	h.Browse(w, httptest.NewRequest(http.MethodGet, "/browse-tutors", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "John Doe") || !strings.Contains(body, "/tutor-2-profile") {
		t.Error("browse page should list all tutors with profile links")
	}
	if strings.Contains(body, "<b>Jane</b>") {
		t.Error("names must be escaped on output")
	}
}

func TestTutorHandler_Browse_Error(t *testing.T) {
	svc := &mockTutorService{
		browseFn: func(context.Context) ([]model.TutorProfile, error) {
			return nil, errors.New("no such table: tutors")
		},
	}
	h := NewTutorHandler(svc, newTestRenderer(t))

	w := httptest.NewRecorder()
	h.Browse(w, httptest.NewRequest(http.MethodGet, "/browse-tutors", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
	if strings.Contains(w.Body.String(), "no such table") {
		t.Error("error details must not leak")
	}
}

func serveProfile(h *TutorHandler, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/tutor-{id}-profile", h.Profile)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestTutorHandler_Profile(t *testing.T) {
	svc := &mockTutorService{
		profileFn: func(_ context.Context, id int64) (*model.TutorProfile, error) {
			if id != 2 {
				return nil, model.NewTutorNotFoundError(id)
			}
			return &model.TutorProfile{ID: 2, Name: "Jane Smith", Email: "jane.smith@tutorplanet.co.uk"}, nil
		},
	}
	h := NewTutorHandler(svc, newTestRenderer(t))

	w := serveProfile(h, "/tutor-2-profile")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Jane Smith") {
		t.Error("profile page should show the name")
	}

	for _, path := range []string{"/tutor-3-profile", "/tutor-x-profile"} {
		if w := serveProfile(h, path); w.Code != http.StatusNotFound {
			t.Errorf("%s: status = %d, want 404", path, w.Code)
		}
	}
}

func TestTutorHandler_Profile_StoreError(t *testing.T) {
	svc := &mockTutorService{
		profileFn: func(context.Context, int64) (*model.TutorProfile, error) {
			return nil, errors.New("connection reset")
		},
	}
	h := NewTutorHandler(svc, newTestRenderer(t))

	if w := serveProfile(h, "/tutor-1-profile"); w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestTutorHandler_SignupPage(t *testing.T) {
	h := NewTutorHandler(&mockTutorService{}, newTestRenderer(t))

	w := httptest.NewRecorder()
	h.SignupPage(w, httptest.NewRequest(http.MethodGet, "/tutor-signup", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Sign Up") {
		t.Error("signup button missing")
	}
}

func TestTutorHandler_Signup_Success(t *testing.T) {
	var got tutor.SignupInput
	svc := &mockTutorService{
		signupFn: func(_ context.Context, input tutor.SignupInput) (*tutor.SignupResult, error) {
			got = input
			return &tutor.SignupResult{Message: model.MessageSignupSucceeded, TutorID: 3}, nil
		},
	}
	h := NewTutorHandler(svc, newTestRenderer(t))

	w := httptest.NewRecorder()
	h.Signup(w, newSignupFormRequest(url.Values{
		"name":     {"Alice"},
		"email":    {"alice@tutorplanet.co.uk"},
		"password": {"secret"},
	}))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if got.Name != "Alice" || got.Email != "alice@tutorplanet.co.uk" || got.Password != "secret" {
		t.Errorf("input = %+v", got)
	}
	body := decodeMessageResponse(t, w)
	if body["message"] != "You've successfully signed up as a tutor!" {
		t.Errorf("message = %v", body["message"])
	}
	if body["tutor_id"] != float64(3) {
		t.Errorf("tutor_id = %v, want 3", body["tutor_id"])
	}
	if len(w.Result().Cookies()) != 0 {
		t.Error("signup must not touch the session")
	}
}

func TestTutorHandler_Signup_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"malformed", model.NewMalformedRequestError("name is a required field"), http.StatusBadRequest, model.ErrCodeMalformedRequest},
		{"email_taken", model.NewEmailTakenError(), http.StatusConflict, model.ErrCodeEmailTaken},
		{"signup_failed", model.NewSignupFailedError(), http.StatusInternalServerError, model.ErrCodeInternal},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, model.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockTutorService{
				signupFn: func(context.Context, tutor.SignupInput) (*tutor.SignupResult, error) {
					return nil, tt.err
				},
			}
			h := NewTutorHandler(svc, newTestRenderer(t))

			w := httptest.NewRecorder()
			h.Signup(w, newSignupFormRequest(url.Values{"name": {"A"}, "email": {"a@b.c"}, "password": {"p"}}))

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			body := decodeMessageResponse(t, w)
			if body["code"] != tt.wantCode {
				t.Errorf("code = %v, want %s", body["code"], tt.wantCode)
			}
		})
	}
}

func TestTutorHandler_Signup_EmailTakenMessage(t *testing.T) {
	svc := &mockTutorService{
		signupFn: func(context.Context, tutor.SignupInput) (*tutor.SignupResult, error) {
			return nil, model.NewEmailTakenError()
		},
	}
	h := NewTutorHandler(svc, newTestRenderer(t))

	w := httptest.NewRecorder()
	h.Signup(w, newSignupFormRequest(url.Values{"name": {"A"}, "email": {"a@b.c"}, "password": {"p"}}))

	body := decodeMessageResponse(t, w)
	if body["message"] != "The email you have entered is already in use for an existing tutor account." {
		t.Errorf("message = %v", body["message"])
	}
}
