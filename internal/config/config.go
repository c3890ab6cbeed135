package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultEnvFile は設定を読み込む.envファイルの既定パス。存在しなくてもよい。
const DefaultEnvFile = ".env"

// セッションの保存先。
const (
	SessionBackendCookie = "cookie"
	SessionBackendRedis  = "redis"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseDriver string `env:"DATABASE_DRIVER" env-default:"sqlite3" env-description:"postgres or sqlite3"`
	DatabaseURL    string `env:"DATABASE_URL" env-required:"true"`

	// Session
	SessionSecret  string `env:"SESSION_SECRET" env-required:"true"`
	SessionBackend string `env:"SESSION_BACKEND" env-default:"cookie" env-description:"cookie or redis"`
	SessionMaxAge  int    `env:"SESSION_MAX_AGE" env-default:"86400" env-description:"seconds, 0 for browser session"`
	RedisURL       string `env:"REDIS_URL"`

	// Server
	ServerPort string `env:"SERVER_PORT" env-default:"8080"`
	BaseURL    string `env:"BASE_URL" env-default:"http://localhost:8080"`

	// Cookie
	CookieDomain string `env:"COOKIE_DOMAIN"`
	CookieSecure bool   // BASE_URLがhttpsの場合にtrue

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" env-default:"info"`
	LogPath  string `env:"LOG_PATH" env-description:"file appended to in addition to stdout"`

	// Rate Limit（req/min/client、0以下で無効）
	RateLimitLogin  int `env:"RATE_LIMIT_LOGIN" env-default:"10"`
	RateLimitSignup int `env:"RATE_LIMIT_SIGNUP" env-default:"5"`

	// 転送ヘッダー（X-Forwarded-For / X-Real-IP）を信用するプロキシのCIDRまたはIP
	TrustedProxies []string `env:"TRUSTED_PROXIES" env-separator:","`

	// Seed
	SeedOnStart bool `env:"SEED_ON_START" env-default:"false"`
}

// Load は.envファイル（存在する場合）と環境変数からConfigを読み込む。
// 必須項目が未設定の場合や値が不正な場合はエラーを返す。
func Load(envFile string) (*Config, error) {
	var cfg Config

	if err := cleanenv.ReadConfig(envFile, &cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}

	switch c.SessionBackend {
	case SessionBackendCookie:
	case SessionBackendRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required when SESSION_BACKEND is redis")
		}
	default:
		return fmt.Errorf("unsupported SESSION_BACKEND %q", c.SessionBackend)
	}

	if c.SessionMaxAge < 0 {
		return fmt.Errorf("SESSION_MAX_AGE must not be negative: %d", c.SessionMaxAge)
	}
	return nil
}
