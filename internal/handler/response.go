package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/tutorplanet/internal/middleware"
	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/view"
)

// messageResponse はログイン・サインアップ・ログアウトのJSONレスポンス。
// 失敗したログインではtutor_idはnullになる。
type messageResponse struct {
	Message string `json:"message"`
	TutorID *int64 `json:"tutor_id"`
}

// logoutResponse はログアウトのJSONレスポンス。
type logoutResponse struct {
	Message string `json:"message"`
}

// writeJSON は値をJSONで書き出す。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// handleServiceError はサービス層から返されたエラーを統一エラーフォーマットで返す。
// APIError以外のエラーは詳細を隠して500を返す。
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	slog.Error("unexpected service error",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	middleware.WriteInternalServerError(w)
}

// PageRenderer はHTMLページを描画するインターフェース。
type PageRenderer interface {
	RenderHTTP(w http.ResponseWriter, status int, page string, data view.PageData) error
}

// pages はページ描画の共通処理をまとめる。
type pages struct {
	renderer PageRenderer
}

// render はリクエストのセッションのIdentityを埋めてページを描画する。
// 描画に失敗した場合はプレーンテキストの500を返す。
func (p pages) render(w http.ResponseWriter, r *http.Request, status int, page string, data view.PageData) {
	data.Identity = middleware.IdentityFromContext(r.Context())
	if err := p.renderer.RenderHTTP(w, status, page, data); err != nil {
		slog.Error("failed to render page",
			slog.String("page", page),
			slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (p pages) notFound(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusNotFound, view.PageNotFound, view.PageData{Title: "Not found"})
}

func (p pages) permissionDenied(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusForbidden, view.PagePermissionDenied, view.PageData{Title: "Permission denied"})
}

func (p pages) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("request failed",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.RequestIDFromContext(r.Context())),
		slog.String("error", err.Error()),
	)
	p.errorPage(w, r)
}

// errorPage はログを残さずに500のエラーページを描画する。panic回復時にも使う。
func (p pages) errorPage(w http.ResponseWriter, r *http.Request) {
	p.render(w, r, http.StatusInternalServerError, view.PageError, view.PageData{Title: "Error"})
}
