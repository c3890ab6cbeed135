// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tutorplanet/internal/auth"
	"github.com/hitoshi/tutorplanet/internal/middleware"
	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/session"
	"github.com/hitoshi/tutorplanet/internal/view"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, sess *session.Session, email, password string) (auth.LoginResult, error)
	Logout(sess *session.Session) auth.LogoutResult
	Account(ctx context.Context, sess *session.Session, tutorID int64) (*model.Tutor, auth.Decision, error)
}

// InputValidator はリクエスト入力を検証するインターフェース。
type InputValidator interface {
	Struct(s interface{}) error
}

// AuthHandler はログイン・ログアウト・アカウントページのHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	store     session.Store
	validator InputValidator
	pages     pages
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, store session.Store, validator InputValidator, renderer PageRenderer) *AuthHandler {
	return &AuthHandler{
		service:   service,
		store:     store,
		validator: validator,
		pages:     pages{renderer: renderer},
	}
}

// LoginPage はログインフォームを表示する。
// GET /tutor-login
func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	h.pages.render(w, r, http.StatusOK, view.PageTutorLogin, view.PageData{Title: "Tutor login"})
}

// Login はメールアドレスとパスワードでログインする。
// POST /tutor-login
//
// 資格情報が一致しない場合も200を返し、tutor_idはnullになる。
// 照合の前にセッションは未認証に戻るため、結果にかかわらずセッションを保存する。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeBody(w, r, loginRequestFromForm)
	if err != nil {
		middleware.WriteAPIError(w, bodyError(err))
		return
	}
	if err := h.validator.Struct(req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewMalformedRequestError(err.Error()))
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	result, loginErr := h.service.Login(r.Context(), sess, req.Email, req.Password)

	if err := h.store.Save(w, r, sess); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if loginErr != nil {
		handleServiceError(w, r, loginErr)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: result.Message,
		TutorID: result.TutorID,
	})
}

// Logout はセッションを未認証に戻す。ログインしていなくても成功する。
// POST /tutor-logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	result := h.service.Logout(sess)

	if err := h.store.Save(w, r, sess); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, logoutResponse{Message: result.Message})
}

// Account は講師本人のアカウントページを表示する。
// GET /tutor-{id}-account
//
// 未ログインと別の講師によるアクセスは、どちらも同じ403ページを返す。
func (h *AuthHandler) Account(w http.ResponseWriter, r *http.Request) {
	tutorID, ok := tutorIDParam(r)
	if !ok {
		h.pages.notFound(w, r)
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	tutor, decision, err := h.service.Account(r.Context(), sess, tutorID)
	switch {
	case errors.Is(err, auth.ErrTutorNotFound):
		slog.Warn("account of logged-in tutor no longer exists", slog.Int64("tutor_id", tutorID))
		h.pages.notFound(w, r)
		return
	case err != nil:
		h.pages.serverError(w, r, err)
		return
	case !decision.Allowed():
		h.pages.permissionDenied(w, r)
		return
	}

	profile := tutor.Profile()
	h.pages.render(w, r, http.StatusOK, view.PageTutorAccount, view.PageData{
		Title: "My account",
		Tutor: &profile,
	})
}

// tutorIDParam はURLパラメータidを講師IDとして解釈する。
func tutorIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
