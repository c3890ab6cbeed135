package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/hitoshi/tutorplanet/internal/middleware"
	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/tutor"
	"github.com/hitoshi/tutorplanet/internal/view"
)

// TutorServiceInterface は講師ハンドラーが必要とするサービスインターフェース。
type TutorServiceInterface interface {
	Signup(ctx context.Context, input tutor.SignupInput) (*tutor.SignupResult, error)
	Profile(ctx context.Context, id int64) (*model.TutorProfile, error)
	Browse(ctx context.Context) ([]model.TutorProfile, error)
}

// TutorHandler はトップページ、講師一覧、プロフィール、サインアップのHTTPハンドラー。
type TutorHandler struct {
	service TutorServiceInterface
	pages   pages
}

// NewTutorHandler はTutorHandlerを生成する。
func NewTutorHandler(service TutorServiceInterface, renderer PageRenderer) *TutorHandler {
	return &TutorHandler{
		service: service,
		pages:   pages{renderer: renderer},
	}
}

// Index はトップページを表示する。
// GET /
func (h *TutorHandler) Index(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, view.PageIndex, view.PageData{})
}

// Browse は全講師の一覧を表示する。
// GET /browse-tutors
func (h *TutorHandler) Browse(w http.ResponseWriter, r *http.Request) {
	tutors, err := h.service.Browse(r.Context())
	if err != nil {
		h.pages.serverError(w, r, err)
		return
	}

	h.pages.render(w, r, http.StatusOK, view.PageBrowseTutors, view.PageData{
		Title:  "Browse tutors",
		Tutors: tutors,
	})
}

// Profile は講師の公開プロフィールを表示する。ログインは不要。
// GET /tutor-{id}-profile
func (h *TutorHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := tutorIDParam(r)
	if !ok {
		h.pages.notFound(w, r)
		return
	}

	profile, err := h.service.Profile(r.Context(), id)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeTutorNotFound {
			h.pages.notFound(w, r)
			return
		}
		h.pages.serverError(w, r, err)
		return
	}

	h.pages.render(w, r, http.StatusOK, view.PageTutorProfile, view.PageData{
		Title: profile.Name,
		Tutor: profile,
	})
}

// SignupPage はサインアップフォームを表示する。
// GET /tutor-signup
func (h *TutorHandler) SignupPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, view.PageTutorSignup, view.PageData{Title: "Sign up as a tutor"})
}

// Signup は講師アカウントを作成する。セッションには触れない。
// POST /tutor-signup
func (h *TutorHandler) Signup(w http.ResponseWriter, r *http.Request) {
	input, err := decodeBody(w, r, signupInputFromForm)
	if err != nil {
		middleware.WriteAPIError(w, bodyError(err))
		return
	}

	result, err := h.service.Signup(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	id := result.TutorID
	writeJSON(w, http.StatusCreated, messageResponse{
		Message: result.Message,
		TutorID: &id,
	})
}

func signupInputFromForm(v url.Values) tutor.SignupInput {
	return tutor.SignupInput{
		Name:     v.Get("name"),
		Email:    v.Get("email"),
		Password: v.Get("password"),
	}
}
