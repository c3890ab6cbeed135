package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/tutorplanet/internal/model"
)

// MaxRequestBodyBytes はログイン・サインアップ・ログアウトのボディ上限。
// フォームの3項目とCSRFトークンには十分な大きさ。
const MaxRequestBodyBytes int64 = 1 << 16

// NewBodyLimitMiddleware は状態変更リクエストのボディをlimitバイトに制限するミドルウェアを返す。
// Content-Lengthで上限超過が分かる場合は本文を読まずに413を返す。
// CSRFミドルウェアがフォームを読む前に適用すること。
func NewBodyLimitMiddleware(limit int64) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isSafeMethod(r.Method) || r.Body == nil {
				next.ServeHTTP(w, r)
				return
			}

			if r.ContentLength > limit {
				rejectTooLarge(w, r, limit)
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

func rejectTooLarge(w http.ResponseWriter, r *http.Request, limit int64) {
	slog.Warn("request body too large",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Int64("content_length", r.ContentLength),
		slog.String("request_id", RequestIDFromContext(r.Context())),
	)
	WriteAPIError(w, model.NewRequestTooLargeError(limit))
}
