package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tutorplanet/internal/metrics"
	"github.com/hitoshi/tutorplanet/internal/middleware"
	"github.com/hitoshi/tutorplanet/internal/session"
	"github.com/hitoshi/tutorplanet/internal/view"
)

// staticPrefix は埋め込み静的ファイルを配信するパスの接頭辞。
const staticPrefix = "/static/"

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionStore      session.Store
	CORSAllowedOrigin string
	CSRF              middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// メトリクス
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// ドメインサービス
	AuthService  AuthServiceInterface
	TutorService TutorServiceInterface

	// 表示・入力
	Renderer  PageRenderer
	Validator InputValidator

	HealthChecker HealthChecker
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Session → Logging → Recovery → SecurityHeaders → CORS → Metrics → BodyLimit → CSRF
//
// ログにハンドラー実行後の認証状態を残すため、SessionはLoggingの外側に置く。
// CSRFがフォームを読む前にボディの上限を設定するため、BodyLimitはCSRFの直前に置く。
// ログインとサインアップのPOSTには、さらに個別のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.SessionStore, deps.Validator, deps.Renderer)
	tutorHandler := NewTutorHandler(deps.TutorService, deps.Renderer)

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewSessionMiddleware(deps.SessionStore))
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewRecoveryMiddleware(http.HandlerFunc(authHandler.pages.errorPage)))
	r.Use(middleware.NewSecurityHeadersMiddleware(staticPrefix))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(metrics.NewHTTPMiddleware(collector))
	r.Use(middleware.NewBodyLimitMiddleware(middleware.MaxRequestBodyBytes))
	r.Use(middleware.NewCSRFMiddleware(deps.CSRF))

	r.NotFound(authHandler.pages.notFound)

	// --- 公開ページ ---
	r.Get("/", tutorHandler.Index)
	r.Get("/browse-tutors", tutorHandler.Browse)
	r.Get("/tutor-{id}-profile", tutorHandler.Profile)

	// --- サインアップ ---
	r.Get("/tutor-signup", tutorHandler.SignupPage)
	r.With(deps.RateLimiter.SignupMiddleware()).Post("/tutor-signup", tutorHandler.Signup)

	// --- ログイン・ログアウト ---
	r.Get("/tutor-login", authHandler.LoginPage)
	r.With(deps.RateLimiter.LoginMiddleware()).Post("/tutor-login", authHandler.Login)
	r.Post("/tutor-logout", authHandler.Logout)

	// --- 本人のみ閲覧可能 ---
	r.Get("/tutor-{id}-account", authHandler.Account)

	// --- 運用・補助 ---
	r.Get("/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRF).ServeHTTP)
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}
	r.Method(http.MethodGet, staticPrefix+"*", view.StaticHandler(staticPrefix))

	return r
}
