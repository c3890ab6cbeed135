package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はpanicを回復して500を返すミドルウェアを生成する。
//
// ページの閲覧（GET, HEAD）でerrorPageが指定されている場合はそのページを描画し、
// ログイン・サインアップなどのJSONエンドポイントには統一エラーフォーマットを返す。
// http.ErrAbortHandlerはサーバーに接続の中断を伝えるため、そのまま再panicする。
func NewRecoveryMiddleware(errorPage http.Handler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				attrs := []slog.Attr{
					slog.Any("panic", rec),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				}
				attrs = append(attrs, identityAttrs(r.Context())...)
				attrs = append(attrs, slog.String("stack", string(debug.Stack())))
				slog.Default().LogAttrs(r.Context(), slog.LevelError, "panic recovered", attrs...)

				if errorPage != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
					errorPage.ServeHTTP(w, r)
					return
				}
				WriteInternalServerError(w)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// identityAttrs はセッションが認証済みの場合に講師のIDと種別をログ属性として返す。
func identityAttrs(ctx context.Context) []slog.Attr {
	identity := IdentityFromContext(ctx)
	userID, ok := identity.UserID()
	if !ok {
		return nil
	}
	return []slog.Attr{
		slog.Int64("user_id", userID),
		slog.String("user_type", string(identity.Kind())),
	}
}
