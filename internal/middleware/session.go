// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/tutorplanet/internal/model"
	"github.com/hitoshi/tutorplanet/internal/session"
)

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションを格納するためのキー。
var sessionContextKey = contextKey("session")

// NewSessionMiddleware はストアからセッションを読み込み、リクエストコンテキストに注入するミドルウェアを返す。
// 未認証のリクエストも拒否しない。アクセス可否の判定はハンドラーが行う。
// 改ざん・期限切れのセッションは未認証として扱い、警告ログを残す。
func NewSessionMiddleware(store session.Store) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := store.Load(r)
			if err != nil {
				level := slog.LevelError
				if errors.Is(err, session.ErrInvalidSession) {
					level = slog.LevelWarn
				}
				slog.Log(r.Context(), level, "failed to load session",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
			}
			if sess == nil {
				sess = session.New()
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
// セッションミドルウェアを通過していない場合は新しい未認証セッションを返す。
func SessionFromContext(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(sessionContextKey).(*session.Session); ok && sess != nil {
		return sess
	}
	return session.New()
}

// IdentityFromContext はリクエストコンテキストのセッションが保持するIdentityを返す。
func IdentityFromContext(ctx context.Context) model.Identity {
	if sess, ok := ctx.Value(sessionContextKey).(*session.Session); ok && sess != nil {
		return sess.Identity
	}
	return model.Unauthenticated()
}

// ContextWithSession はコンテキストにセッションを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, sess)
}
