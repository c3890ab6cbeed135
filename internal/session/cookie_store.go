package session

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const tokenIssuer = "tutorplanet"

// sessionClaims はCookieに署名付きで格納するクレーム。
type sessionClaims struct {
	wireIdentity
	jwt.RegisteredClaims
}

// CookieStore はセッション状態をHS256署名付きトークンとしてCookieに保持する。
// サーバー側に状態を持たない。
type CookieStore struct {
	secret []byte
	opts   CookieOptions
	now    func() time.Time
}

// NewCookieStore はCookieStoreを生成する。
func NewCookieStore(secret []byte, opts CookieOptions) *CookieStore {
	return &CookieStore{
		secret: secret,
		opts:   opts,
		now:    time.Now,
	}
}

// Load はCookieのトークンを検証し、セッションを復元する。
func (s *CookieStore) Load(r *http.Request) (*Session, error) {
	cookie, err := r.Cookie(s.opts.name())
	if err != nil || cookie.Value == "" {
		return New(), nil
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(cookie.Value, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithTimeFunc(s.now),
	)

	switch {
	case err == nil && token.Valid:
		return &Session{Identity: decodeIdentity(claims.wireIdentity)}, nil
	case errors.Is(err, jwt.ErrTokenExpired):
		return New(), fmt.Errorf("%w: token expired", ErrInvalidSession)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return New(), fmt.Errorf("%w: signature invalid", ErrInvalidSession)
	default:
		return New(), fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
}

// Save は認証済みのセッションを署名してCookieに書き込む。
// 未認証のセッションはCookieを削除する。
func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, sess *Session) error {
	if !sess.Identity.IsAuthenticated() {
		s.opts.clearCookie(w)
		return nil
	}

	now := s.now()
	claims := &sessionClaims{
		wireIdentity: encodeIdentity(sess.Identity),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.lifetime())),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return fmt.Errorf("failed to sign session: %w", err)
	}

	http.SetCookie(w, s.opts.cookie(signed, s.opts.MaxAge))
	return nil
}
