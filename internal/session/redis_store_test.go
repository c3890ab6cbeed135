package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/tutorplanet/internal/model"
)

// --- モック定義 ---

type fakeRedis struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{
		data: make(map[string]string),
		ttls: make(map[string]time.Duration),
	}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

// *redis.ClientがRedisClientを満たすことを検証
var _ RedisClient = (*redis.Client)(nil)

// --- テスト ---

func TestRedisStore_SaveThenLoad_RoundTrip(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, CookieOptions{MaxAge: 600})

	w := httptest.NewRecorder()
	sess := New()
	sess.Identity = model.Authenticated(4, model.PrincipalTutor)
	if err := store.Save(w, httptest.NewRequest(http.MethodPost, "/tutor-login", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if sess.ID() == "" {
		t.Fatal("expected session ID to be assigned")
	}
	key := DefaultRedisKeyPrefix + sess.ID()
	if _, ok := rdb.data[key]; !ok {
		t.Fatalf("expected key %q in redis", key)
	}
	if rdb.ttls[key] != 600*time.Second {
		t.Errorf("ttl = %v, want 600s", rdb.ttls[key])
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	cookiesFrom(w, req)

	loaded, err := store.Load(req)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Identity != model.Authenticated(4, model.PrincipalTutor) {
		t.Errorf("Identity = %v, want Tutor:4", loaded.Identity)
	}
	if loaded.ID() != sess.ID() {
		t.Errorf("ID = %q, want %q", loaded.ID(), sess.ID())
	}
}

func TestRedisStore_Save_BrowserSessionCookieStillExpiresInRedis(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, CookieOptions{MaxAge: 0})

	w := httptest.NewRecorder()
	sess := New()
	sess.Identity = model.Authenticated(1, model.PrincipalTutor)
	if err := store.Save(w, httptest.NewRequest(http.MethodPost, "/tutor-login", nil), sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if got := rdb.ttls[DefaultRedisKeyPrefix+sess.ID()]; got != BrowserSessionTTL {
		t.Errorf("ttl = %v, want %v", got, BrowserSessionTTL)
	}
	if cookie := findCookie(w, DefaultCookieName); cookie == nil || cookie.MaxAge != 0 {
		t.Errorf("cookie = %+v, want browser-session cookie (MaxAge 0)", cookie)
	}
}

func TestRedisStore_Save_RotatesID(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, CookieOptions{})
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	sess := &Session{Identity: model.Authenticated(1, model.PrincipalTutor)}
	if err := store.Save(httptest.NewRecorder(), req, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	first := sess.ID()

	sess.Identity = model.Authenticated(2, model.PrincipalTutor)
	if err := store.Save(httptest.NewRecorder(), req, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if sess.ID() == first {
		t.Error("expected a new session ID after re-authentication")
	}
	if _, ok := rdb.data[DefaultRedisKeyPrefix+first]; ok {
		t.Error("previous session key should be deleted")
	}
	if len(rdb.data) != 1 {
		t.Errorf("redis keys = %d, want 1", len(rdb.data))
	}
}

func TestRedisStore_Save_Unauthenticated_DeletesKeyAndCookie(t *testing.T) {
	rdb := newFakeRedis()
	store := NewRedisStore(rdb, CookieOptions{})
	req := httptest.NewRequest(http.MethodPost, "/", nil)

	sess := &Session{Identity: model.Authenticated(1, model.PrincipalTutor)}
	if err := store.Save(httptest.NewRecorder(), req, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	sess.Clear()
	w := httptest.NewRecorder()
	if err := store.Save(w, req, sess); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if len(rdb.data) != 0 {
		t.Errorf("redis keys = %d, want 0", len(rdb.data))
	}
	if sess.ID() != "" {
		t.Errorf("ID = %q, want empty", sess.ID())
	}
	cookie := findCookie(w, DefaultCookieName)
	if cookie == nil || cookie.MaxAge >= 0 {
		t.Error("expected clearing cookie")
	}
}

func TestRedisStore_Load_UnknownID_ReturnsNewSession(t *testing.T) {
	store := NewRedisStore(newFakeRedis(), CookieOptions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "expired-or-unknown"})

	sess, err := store.Load(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Identity.IsAuthenticated() {
		t.Error("expected unauthenticated session")
	}
}

func TestRedisStore_Load_CorruptValue_ReturnsInvalidSession(t *testing.T) {
	rdb := newFakeRedis()
	rdb.data[DefaultRedisKeyPrefix+"abc"] = "{not json"
	store := NewRedisStore(rdb, CookieOptions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "abc"})

	sess, err := store.Load(req)
	if !errors.Is(err, ErrInvalidSession) {
		t.Errorf("err = %v, want ErrInvalidSession", err)
	}
	if sess.Identity.IsAuthenticated() {
		t.Error("expected unauthenticated session")
	}
}

func TestRedisStore_Load_RedisError_ReturnsError(t *testing.T) {
	rdb := newFakeRedis()
	rdb.getErr = errors.New("connection refused")
	store := NewRedisStore(rdb, CookieOptions{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: DefaultCookieName, Value: "abc"})

	sess, err := store.Load(req)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrInvalidSession) {
		t.Error("backend failure should not be reported as an invalid session")
	}
	if sess == nil || sess.Identity.IsAuthenticated() {
		t.Error("expected unauthenticated fallback session")
	}
}
