package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKeyPrefix はRedis上のセッションキーの既定プレフィックス。
const DefaultRedisKeyPrefix = "tutorplanet:session:"

// RedisClient はRedisStoreが使用するコマンドの部分集合。
// *redis.Clientがこれを満たす。
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore はセッション状態をRedisに保持し、CookieにはランダムなセッションIDのみを格納する。
type RedisStore struct {
	client    RedisClient
	opts      CookieOptions
	keyPrefix string
}

// NewRedisStore はRedisStoreを生成する。
func NewRedisStore(client RedisClient, opts CookieOptions) *RedisStore {
	return &RedisStore{
		client:    client,
		opts:      opts,
		keyPrefix: DefaultRedisKeyPrefix,
	}
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

// Load はCookieのセッションIDでRedisからセッションを取得する。
// キーが存在しない場合（期限切れを含む）は新しい未認証セッションを返す。
func (s *RedisStore) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(s.opts.name())
	if err != nil || cookie.Value == "" {
		return New(), nil
	}

	data, err := s.client.Get(r.Context(), s.key(cookie.Value)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return New(), fmt.Errorf("failed to load session: %w", err)
	}

	var wire wireIdentity
	if err := json.Unmarshal(data, &wire); err != nil {
		return New(), fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	return &Session{id: cookie.Value, Identity: decodeIdentity(wire)}, nil
}

// Save はセッションをRedisに書き込む。
// 認証済みのセッションは保存のたびに新しいIDを発行し、古いキーを削除する。
// 未認証のセッションはキーとCookieを削除する。
func (s *RedisStore) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	ctx := r.Context()
	oldID := sess.id

	if !sess.Identity.IsAuthenticated() {
		if oldID != "" {
			if err := s.client.Del(ctx, s.key(oldID)).Err(); err != nil {
				return fmt.Errorf("failed to delete session: %w", err)
			}
		}
		sess.id = ""
		s.opts.clearCookie(w)
		return nil
	}

	data, err := json.Marshal(encodeIdentity(sess.Identity))
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	newID, err := generateSessionID()
	if err != nil {
		return fmt.Errorf("failed to generate session ID: %w", err)
	}

	if err := s.client.Set(ctx, s.key(newID), data, s.opts.lifetime()).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	if oldID != "" {
		if err := s.client.Del(ctx, s.key(oldID)).Err(); err != nil {
			return fmt.Errorf("failed to delete previous session: %w", err)
		}
	}

	sess.id = newID
	http.SetCookie(w, s.opts.cookie(newID, s.opts.MaxAge))
	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
