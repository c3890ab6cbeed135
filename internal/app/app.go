package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/tutorplanet/internal/auth"
	"github.com/hitoshi/tutorplanet/internal/config"
	"github.com/hitoshi/tutorplanet/internal/database"
	"github.com/hitoshi/tutorplanet/internal/handler"
	"github.com/hitoshi/tutorplanet/internal/logger"
	"github.com/hitoshi/tutorplanet/internal/metrics"
	"github.com/hitoshi/tutorplanet/internal/middleware"
	"github.com/hitoshi/tutorplanet/internal/repository"
	"github.com/hitoshi/tutorplanet/internal/session"
	"github.com/hitoshi/tutorplanet/internal/tutor"
	"github.com/hitoshi/tutorplanet/internal/validation"
	"github.com/hitoshi/tutorplanet/internal/view"
)

// Init はアプリケーションの初期化を行う。
// .envファイルと環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
// 返すio.CloserはLOG_PATHのログファイルを閉じる。
func Init(w io.Writer) (*config.Config, io.Closer, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 設定を読み込む
	cfg, err := config.Load(config.DefaultEnvFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定に従ってログレベルと出力先を切り替える
	logCloser, err := logger.Configure(w, cfg.LogLevel, cfg.LogPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to configure logger: %w", err)
	}

	return cfg, logCloser, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMで停止する。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return run(ctx, w, args)
}

func run(ctx context.Context, w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	if cmd == CommandHelp {
		return WriteUsage(w)
	}

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, logCloser, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer logCloser.Close()

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("database_driver", cfg.DatabaseDriver),
		slog.String("session_backend", cfg.SessionBackend),
		slog.String("port", cfg.ServerPort),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	case CommandSeed:
		return runSeed(ctx, cfg)
	default:
		return runServe(ctx, cfg)
	}
}

// application はWebサーバーが使う依存関係をまとめる。
type application struct {
	db          *sql.DB
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	closers     []io.Closer
}

// newApplication はDB接続を開き、全依存関係をワイヤリングする。
// SQLiteの場合は起動時にマイグレーションを適用する。
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	// 1. DB接続
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &application{db: db, closers: []io.Closer{db}}

	if cfg.DatabaseDriver == database.DriverSQLite {
		if err := database.MigrateSQLite(db); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}

	// 2. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 3. リポジトリとドメインサービス
	tutorRepo := newTutorRepository(db, cfg.DatabaseDriver)
	validator := validation.New()
	tutorService := tutor.NewService(tutorRepo, validator,
		tutor.WithMetrics(collector),
	)
	authService := auth.NewService(tutorRepo, collector)

	if cfg.SeedOnStart {
		if err := tutorService.Seed(ctx); err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to seed tutors: %w", err)
		}
	}

	// 4. セッションストア
	store, storeCloser, err := newSessionStore(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	if storeCloser != nil {
		app.closers = append(app.closers, storeCloser)
	}

	// 5. 表示
	renderer, err := view.NewRenderer()
	if err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	// 6. ルーターの構築
	trustedProxies, err := middleware.ParseTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		app.Close()
		return nil, err
	}
	rateLimits := middleware.NewRateLimiterConfig(cfg.RateLimitLogin, cfg.RateLimitSignup)
	rateLimits.TrustedProxies = trustedProxies
	app.rateLimiter = middleware.NewRateLimiter(rateLimits)
	app.handler = handler.NewRouter(&handler.RouterDeps{
		Logger:            slog.Default(),
		SessionStore:      store,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter:     app.rateLimiter,
		Metrics:         collector,
		MetricsGatherer: registry,
		AuthService:     authService,
		TutorService:    tutorService,
		Renderer:        renderer,
		Validator:       validator,
		HealthChecker:   db,
	})

	return app, nil
}

// Close はバックグラウンド処理を止め、接続を閉じる。
func (a *application) Close() error {
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openDatabase は設定のドライバでDB接続を開き、疎通を確認する。
func openDatabase(ctx context.Context, cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established",
		slog.String("driver", cfg.DatabaseDriver),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)
	return db, nil
}

// newTutorRepository はドライバに応じたTutorRepositoryを返す。
func newTutorRepository(db *sql.DB, driver string) repository.TutorRepository {
	if driver == database.DriverPostgres {
		return repository.NewPostgresTutorRepo(db)
	}
	return repository.NewSQLiteTutorRepo(db)
}

// newSessionStore はSESSION_BACKENDに応じたセッションストアを返す。
// Redisの場合は疎通を確認し、クライアントを閉じるio.Closerを返す。
func newSessionStore(ctx context.Context, cfg *config.Config) (session.Store, io.Closer, error) {
	opts := session.CookieOptions{
		Domain: cfg.CookieDomain,
		Secure: cfg.CookieSecure,
		MaxAge: cfg.SessionMaxAge,
	}

	if cfg.SessionBackend != config.SessionBackendRedis {
		return session.NewCookieStore([]byte(cfg.SessionSecret), opts), nil, nil
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("redis session store connected", slog.String("addr", redisOpts.Addr))
	return session.NewRedisStore(client, opts), client, nil
}

// runServe はWebサーバーモードで起動する。
// 全依存関係をワイヤリングし、ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	app, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      app.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("web server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("web server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("driver", cfg.DatabaseDriver),
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.DatabaseDriver, cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runSeed は講師テーブルを初期化し、開発用の講師を投入する。
// SQLiteの場合は先にマイグレーションを適用する。
func runSeed(ctx context.Context, cfg *config.Config) error {
	db, err := openDatabase(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.DatabaseDriver == database.DriverSQLite {
		if err := database.MigrateSQLite(db); err != nil {
			return fmt.Errorf("failed to migrate sqlite database: %w", err)
		}
	}

	svc := tutor.NewService(newTutorRepository(db, cfg.DatabaseDriver), validation.New())
	if err := svc.Seed(ctx); err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}

	slog.Info("seed completed", slog.Int("tutors", len(tutor.SeedTutors)))
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "***"
	}
	return u.Redacted()
}
