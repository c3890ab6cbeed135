package middleware

import (
	"net/http"
	"strings"
)

// contentSecurityPolicy は埋め込み静的ファイルのみを読み込むページ向けのCSP。
const contentSecurityPolicy = "default-src 'self'; script-src 'self'; style-src 'self'; img-src 'self' data:; form-action 'self'; frame-ancestors 'none'"

// NewSecurityHeadersMiddleware はセキュリティ関連のHTTPレスポンスヘッダーを付与するミドルウェアを返す。
//
// ページのナビゲーションやアカウント表示はセッションの認証状態によって内容が変わるため、
// staticPrefix配下の埋め込みファイル以外はキャッシュさせない。
// ログアウト後にブラウザの戻る操作でアカウントページが再表示されることを防ぐ。
func NewSecurityHeadersMiddleware(staticPrefix string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
			h.Set("Content-Security-Policy", contentSecurityPolicy)
			if staticPrefix == "" || !strings.HasPrefix(r.URL.Path, staticPrefix) {
				h.Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	}
}
