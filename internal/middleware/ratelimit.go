package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"net/netip"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hitoshi/tutorplanet/internal/model"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	LoginRate       rate.Limit    // ログイン試行のレート（req/sec）
	LoginBurst      int           // ログイン試行のバーストサイズ
	SignupRate      rate.Limit    // サインアップのレート（req/sec）
	SignupBurst     int           // サインアップのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔

	// TrustedProxies は転送ヘッダーを信用する接続元。空なら接続元アドレスだけで識別する。
	TrustedProxies []netip.Prefix
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// ログイン 10 req/min/client、サインアップ 5 req/min/client。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return NewRateLimiterConfig(10, 5)
}

// NewRateLimiterConfig は1分あたりの許容回数からレート制限設定を生成する。
// 0以下の値はその操作の制限を無効にする。
func NewRateLimiterConfig(loginPerMinute, signupPerMinute int) RateLimiterConfig {
	return RateLimiterConfig{
		LoginRate:       perMinute(loginPerMinute),
		LoginBurst:      max(loginPerMinute, 1),
		SignupRate:      perMinute(signupPerMinute),
		SignupBurst:     max(signupPerMinute, 1),
		CleanupInterval: 5 * time.Minute,
	}
}

func perMinute(n int) rate.Limit {
	if n <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(n) / 60.0)
}

// clientLimiter はクライアントごとのレートリミッターとアクセス時刻を保持する。
type clientLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// limiterGroup は1種類の操作に対するクライアントごとのリミッター群。
type limiterGroup struct {
	name  string
	rate  rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*clientLimiter
}

func newLimiterGroup(name string, r rate.Limit, burst int) *limiterGroup {
	return &limiterGroup{
		name:     name,
		rate:     r,
		burst:    burst,
		limiters: make(map[string]*clientLimiter),
	}
}

// get はクライアントのリミッターを取得または作成する。
func (g *limiterGroup) get(key string, now time.Time) *rate.Limiter {
	g.mu.Lock()
	defer g.mu.Unlock()

	if cl, ok := g.limiters[key]; ok {
		cl.lastAccess = now
		return cl.limiter
	}

	limiter := rate.NewLimiter(g.rate, g.burst)
	g.limiters[key] = &clientLimiter{limiter: limiter, lastAccess: now}
	return limiter
}

// evict はttlより長くアクセスのないエントリを削除する。
func (g *limiterGroup) evict(now time.Time, ttl time.Duration) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for key, cl := range g.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(g.limiters, key)
		}
	}
}

func (g *limiterGroup) count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.limiters)
}

// middleware はこのグループでレート制限するミドルウェアを返す。
// クライアントの識別はclientAddrに従う。
func (g *limiterGroup) middleware(trusted []netip.Prefix) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := clientAddr(r, trusted)

			if !g.get(clientIP, time.Now()).Allow() {
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", clientIP),
					slog.String("limit_type", g.name),
					slog.String("request_id", RequestIDFromContext(r.Context())),
				)
				writeRateLimitResponse(w, g.rate)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimiter はクライアントIPごとのレート制限を管理する。
// ログイン試行とサインアップの2種類を独立に制限する。
type RateLimiter struct {
	config RateLimiterConfig
	login  *limiterGroup
	signup *limiterGroup

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config: config,
		login:  newLimiterGroup("login", config.LoginRate, config.LoginBurst),
		signup: newLimiterGroup("signup", config.SignupRate, config.SignupBurst),
		stopCh: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。複数回呼んでもよい。
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

// LoginMiddleware はログイン試行のレート制限ミドルウェアを返す。
func (rl *RateLimiter) LoginMiddleware() func(next http.Handler) http.Handler {
	return rl.login.middleware(rl.config.TrustedProxies)
}

// SignupMiddleware はサインアップのレート制限ミドルウェアを返す。
func (rl *RateLimiter) SignupMiddleware() func(next http.Handler) http.Handler {
	return rl.signup.middleware(rl.config.TrustedProxies)
}

// LoginLimiterCount は現在管理されているログイン用リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) LoginLimiterCount() int {
	return rl.login.count()
}

// SignupLimiterCount は現在管理されているサインアップ用リミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (rl *RateLimiter) SignupLimiterCount() int {
	return rl.signup.count()
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup(time.Now())
		case <-rl.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (rl *RateLimiter) cleanup(now time.Time) {
	ttl := rl.config.CleanupInterval * 2
	rl.login.evict(now, ttl)
	rl.signup.evict(now, ttl)
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
// Retry-Afterヘッダーにはトークンが補充されるまでの推定秒数を設定する。
func writeRateLimitResponse(w http.ResponseWriter, r rate.Limit) {
	retryAfterSec := 1
	if r > 0 && r != rate.Inf {
		retryAfterSec = max(int(math.Ceil(1.0/float64(r))), 1)
	}

	w.Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
	WriteErrorResponse(w, http.StatusTooManyRequests, &model.APIError{
		Code:     model.ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	})
}
